package ofdm

import "fmt"

// Mapper is the constellation the codec consumes: a fixed bijection
// between groups of Bits() bit values and complex points.
type Mapper interface {
	Bits() int
	Map(bits []byte) complex128
	Demap(point complex128) []byte
}

// Codec is the OFDM encoder/decoder facade. It is stateless between calls
// and safe for concurrent use on independent buffers.
type Codec struct {
	cfg    Config
	mapper Mapper
}

// NewCodec validates the configuration, applies the sync defaults and
// binds the constellation mapper.
func NewCodec(cfg Config, m Mapper) (*Codec, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, &ConfigurationError{Reason: "no constellation mapper"}
	}
	if m.Bits() != cfg.Order {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("mapper carries %d bits per point, configuration wants %d",
			m.Bits(), cfg.Order)}
	}
	return &Codec{cfg: cfg.withDefaults(), mapper: m}, nil
}

// DataBitsPerSymbol returns the payload bits carried by one OFDM symbol.
func (c *Codec) DataBitsPerSymbol() int {
	return c.cfg.DataBitsPerSymbol()
}

// SymbolSamples returns the real samples occupied by one modulated symbol.
func (c *Codec) SymbolSamples() int {
	return c.cfg.SymbolSamples()
}

// Encode turns data bits (values 0 or 1) into the real transmit sequence.
// The length must be a multiple of DataBitsPerSymbol; each symbol is
// encoded independently and the outputs concatenated.
func (c *Codec) Encode(bits []byte) ([]float64, error) {
	bitsPerSymbol := c.cfg.DataBitsPerSymbol()
	if len(bits)%bitsPerSymbol != 0 {
		return nil, &InvalidLengthError{What: "data bit", Got: len(bits), Want: bitsPerSymbol}
	}

	out := make([]float64, 0, len(bits)/bitsPerSymbol*c.cfg.SymbolSamples())
	for start := 0; start < len(bits); start += bitsPerSymbol {
		spectrum, err := c.build(bits[start : start+bitsPerSymbol])
		if err != nil {
			return nil, err
		}
		out = append(out, Modulate(c.frame(spectrum))...)
	}
	return out, nil
}

// Decode recovers data bits from already-aligned real samples. The length
// must be a multiple of SymbolSamples; each symbol is decoded
// independently.
func (c *Codec) Decode(samples []float64) ([]byte, error) {
	symLen := c.cfg.SymbolSamples()
	if len(samples)%symLen != 0 {
		return nil, &InvalidLengthError{What: "sample", Got: len(samples), Want: symLen}
	}

	bits := make([]byte, 0, len(samples)/symLen*c.cfg.DataBitsPerSymbol())
	for start := 0; start < len(samples); start += symLen {
		symbolBits, err := c.decodeSymbol(samples[start : start+symLen])
		if err != nil {
			return nil, err
		}
		bits = append(bits, symbolBits...)
	}
	return bits, nil
}

func (c *Codec) decodeSymbol(samples []float64) ([]byte, error) {
	base, err := Demodulate(samples)
	if err != nil {
		return nil, err
	}
	spectrum := c.deframe(base)
	c.equalize(spectrum)
	return c.extract(spectrum)
}

// BytesToBits expands bytes into bit values, least significant bit first.
func BytesToBits(data []byte) []byte {
	bits := make([]byte, len(data)*8)
	for i, b := range data {
		for j := 0; j < 8; j++ {
			bits[i*8+j] = (b >> uint(j)) & 1
		}
	}
	return bits
}

// BitsToBytes packs bit values back into bytes, least significant bit
// first. Trailing bits short of a byte are dropped.
func BitsToBytes(bits []byte) []byte {
	data := make([]byte, len(bits)/8)
	for i := range data {
		var b byte
		for j := 0; j < 8; j++ {
			b |= (bits[i*8+j] & 1) << uint(j)
		}
		data[i] = b
	}
	return data
}
