package ofdm

import "github.com/mjibson/go-dsp/fft"

// frame transforms one frequency-domain symbol to the time domain and
// prepends the cyclic prefix, a copy of the last CyclicPrefix samples.
// The inverse transform carries the 1/N scaling, so deframe(frame(x))
// reproduces x up to rounding.
func (c *Codec) frame(spectrum []complex128) []complex128 {
	block := fft.IFFT(spectrum)
	cp := c.cfg.CyclicPrefix
	symbol := make([]complex128, cp+len(block))
	copy(symbol, block[len(block)-cp:])
	copy(symbol[cp:], block)
	return symbol
}

// deframe drops the cyclic prefix and transforms back to the frequency
// domain.
func (c *Codec) deframe(symbol []complex128) []complex128 {
	return fft.FFT(symbol[c.cfg.CyclicPrefix:])
}
