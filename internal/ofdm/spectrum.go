package ofdm

// build assembles one frequency-domain symbol: mapped data points on the
// data carriers in ascending bin order, known values on the pilot bins,
// zero at DC and on the guard bins.
func (c *Codec) build(bits []byte) ([]complex128, error) {
	want := c.cfg.DataBitsPerSymbol()
	if len(bits) != want {
		return nil, &InvalidLengthError{What: "data bit", Got: len(bits), Want: want}
	}

	spectrum := make([]complex128, c.cfg.NFFT)
	for i, k := range c.cfg.PilotCarriers {
		spectrum[k] = c.cfg.PilotValues[i]
	}
	order := c.cfg.Order
	for i, k := range c.cfg.DataCarriers {
		spectrum[k] = c.mapper.Map(bits[i*order : (i+1)*order])
	}
	return spectrum, nil
}

// extract demaps the data carriers in the same ascending order build used.
// Each carrier demaps independently, so corruption of one bin cannot leak
// into another bin's bits.
func (c *Codec) extract(spectrum []complex128) ([]byte, error) {
	if len(spectrum) != c.cfg.NFFT {
		return nil, &InvalidLengthError{What: "spectrum", Got: len(spectrum), Want: c.cfg.NFFT}
	}

	bits := make([]byte, 0, c.cfg.DataBitsPerSymbol())
	for _, k := range c.cfg.DataCarriers {
		bits = append(bits, c.mapper.Demap(spectrum[k])...)
	}
	return bits, nil
}
