package ofdm

import (
	"math"
	"math/cmplx"
)

// Blind symbol-start detection. The coarse stage exploits the defining
// property of the cyclic prefix: in the demodulated baseband, the first
// CyclicPrefix samples of a symbol repeat exactly NFFT samples later. The
// fine stage re-demodulates trial symbols around the coarse hit and picks
// the offset whose pilots come out purely real.

// SyncResult describes a located symbol start.
type SyncResult struct {
	// Offset is the index, in the real input stream, of the first sample
	// of the symbol's cyclic prefix. Symbol k of the transmission starts
	// at Offset + k*SymbolSamples().
	Offset int
	// Metric is the normalized squared prefix correlation |P|^2/R^2 at the
	// coarse candidate, 1 for a clean aligned capture.
	Metric float64
	// PilotError is the residual summed squared imaginary part of the
	// pilots at Offset, near zero when the lock is good.
	PilotError float64
	// Phase is the rotation selected from the phase grid, in radians.
	// Zero unless SyncConfig.PhaseSteps enables the grid.
	Phase float64
}

// FindSymbolStart locates the first OFDM symbol in a continuous real
// sample stream. On failure no low-confidence guess is returned: the
// error is a *SyncError carrying the best rejected candidate.
func (c *Codec) FindSymbolStart(stream []float64) (SyncResult, error) {
	n := c.cfg.NFFT
	cp := c.cfg.CyclicPrefix
	threshold := c.cfg.Sync.Threshold

	base, err := Demodulate(stream[:len(stream)&^1])
	if err != nil {
		return SyncResult{}, err
	}
	if len(base) < n+cp {
		return SyncResult{}, &SyncError{Offset: 0, Metric: 0, Threshold: threshold}
	}

	bestT, bestMetric := c.coarseSearch(base)
	if bestMetric <= threshold {
		return SyncResult{}, &SyncError{Offset: 2 * bestT, Metric: bestMetric, Threshold: threshold}
	}

	offset, pilotErr, phase := c.fineSearch(stream, 2*bestT)
	return SyncResult{
		Offset:     offset,
		Metric:     bestMetric,
		PilotError: pilotErr,
		Phase:      phase,
	}, nil
}

// coarseTieTolerance treats metrics this close, relatively, as equal. In a
// clean multi-symbol stream every symbol boundary peaks at 1 up to float
// rounding; the tolerance makes the earliest of those peaks win instead of
// whichever rounded highest.
const coarseTieTolerance = 1e-9

// coarseSearch slides a window of width CyclicPrefix over the baseband and
// correlates it with the window NFFT samples later. The metric |P|^2/R^2
// is scale free and 1 at a clean boundary; silence contributes nothing.
// The earliest offset at the global maximum wins.
func (c *Codec) coarseSearch(base []complex128) (int, float64) {
	n := c.cfg.NFFT
	cp := c.cfg.CyclicPrefix

	limit := len(base) - (n + cp)
	if r := c.cfg.Sync.CoarseRange / 2; c.cfg.Sync.CoarseRange > 0 && r < limit {
		limit = r
	}

	bestT := 0
	bestMetric := 0.0
	for t := 0; t <= limit; t++ {
		var corr complex128
		var energy float64
		for j := 0; j < cp; j++ {
			a := base[t+j]
			b := base[t+n+j]
			corr += a * cmplx.Conj(b)
			energy += real(b)*real(b) + imag(b)*imag(b)
		}
		if energy < 1e-20 {
			continue
		}
		p := cmplx.Abs(corr)
		if metric := p * p / (energy * energy); metric > bestMetric*(1+coarseTieTolerance) {
			bestMetric = metric
			bestT = t
		}
	}
	return bestT, bestMetric
}

// fineSearch re-demodulates one trial symbol per candidate offset around
// the coarse hit, searching real-sample offsets so that captures starting
// on an odd sample remain reachable, and minimizes the pilot imaginary
// energy. Trial windows without pilot energy (silence) are not trusted.
func (c *Codec) fineSearch(stream []float64, center int) (int, float64, float64) {
	symLen := c.cfg.SymbolSamples()
	if len(c.cfg.PilotCarriers) == 0 {
		return center, 0, 0
	}

	phases := []float64{0}
	if steps := c.cfg.Sync.PhaseSteps; steps > 1 {
		phases = make([]float64, steps)
		for i := range phases {
			phases[i] = math.Pi * float64(i) / float64(steps)
		}
	}

	bestOff := center
	bestErr := math.Inf(1)
	bestPhase := 0.0
	for off := center - c.cfg.Sync.FineRange; off <= center+c.cfg.Sync.FineRange; off++ {
		if off < 0 || off+symLen > len(stream) {
			continue
		}
		trial, err := Demodulate(stream[off : off+symLen])
		if err != nil {
			continue
		}
		spectrum := c.deframe(trial)

		var power float64
		for _, k := range c.cfg.PilotCarriers {
			p := spectrum[k]
			power += real(p)*real(p) + imag(p)*imag(p)
		}
		if power < 1e-20 {
			continue
		}

		for _, phase := range phases {
			if e := pilotImagEnergy(spectrum, c.cfg.PilotCarriers, phase); e < bestErr {
				bestErr = e
				bestOff = off
				bestPhase = phase
			}
		}
	}
	if math.IsInf(bestErr, 1) {
		bestErr = 0
	}
	return bestOff, bestErr, bestPhase
}

// pilotImagEnergy sums the squared imaginary parts of the pilot bins after
// rotating the symbol by phase.
func pilotImagEnergy(spectrum []complex128, pilots []int, phase float64) float64 {
	rot := complex(1, 0)
	if phase != 0 {
		rot = cmplx.Exp(complex(0, phase))
	}
	var e float64
	for _, k := range pilots {
		im := imag(spectrum[k] * rot)
		e += im * im
	}
	return e
}
