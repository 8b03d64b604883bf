package ofdm

import "math"

// Nyquist quadrature modulator. The complex baseband is interleaved into a
// real sequence at twice the rate as +Re, +Im, -Re, -Im, ... which shifts
// the signal to a quarter of the output sample rate. Both directions are
// stateless and exact inverses of each other.

// Modulate converts complex baseband samples into double-rate real
// samples.
func Modulate(samples []complex128) []float64 {
	out := make([]float64, 2*len(samples))
	s := 1.0
	for i, v := range samples {
		out[2*i] = s * real(v)
		out[2*i+1] = s * imag(v)
		s = -s
	}
	return out
}

// Demodulate reconstructs the complex baseband from double-rate real
// samples, restarting the interleave sign at the buffer head. The input
// length must be even.
func Demodulate(samples []float64) ([]complex128, error) {
	if len(samples)%2 != 0 {
		return nil, &InvalidLengthError{What: "real sample", Got: len(samples), Want: 2}
	}

	out := make([]complex128, len(samples)/2)
	s := 1.0
	for i := range out {
		out[i] = complex(s*samples[2*i], s*samples[2*i+1])
		s = -s
	}
	return out, nil
}

// NormalizeAmplitude scales samples in place so the largest magnitude
// equals peak, preventing clipping on the way to a sound card or a 16-bit
// file. Silence is left untouched. The decoder does not care because the
// pilot equalizer absorbs any flat gain.
func NormalizeAmplitude(samples []float64, peak float64) {
	maxAbs := 0.0
	for _, s := range samples {
		if abs := math.Abs(s); abs > maxAbs {
			maxAbs = abs
		}
	}
	if maxAbs == 0 {
		return
	}
	scale := peak / maxAbs
	for i := range samples {
		samples[i] *= scale
	}
}
