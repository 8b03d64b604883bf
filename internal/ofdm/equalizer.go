package ofdm

import "math/cmplx"

// equalize estimates the common complex gain of a received symbol from its
// pilots and divides it out of the data carriers. A flat channel, gain
// change or phase rotation (including the sign ambiguity the quadrature
// interleave leaves behind) is removed exactly; an aligned noiseless
// capture estimates h == 1 and the data passes through untouched. The
// estimate is returned for diagnostics.
func (c *Codec) equalize(spectrum []complex128) complex128 {
	var acc complex128
	var power float64
	for i, k := range c.cfg.PilotCarriers {
		p := c.cfg.PilotValues[i]
		acc += spectrum[k] * cmplx.Conj(p)
		power += real(p)*real(p) + imag(p)*imag(p)
	}
	if power == 0 {
		return 1
	}

	h := acc / complex(power, 0)
	if cmplx.Abs(h) < 1e-10 {
		return h
	}
	inv := 1 / h
	for _, k := range c.cfg.DataCarriers {
		spectrum[k] *= inv
	}
	return h
}
