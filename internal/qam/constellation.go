package qam

import (
	"fmt"
	"math"
)

// Order is the modulation order expressed as bits per constellation symbol.
type Order int

const (
	BPSK  Order = 1
	QPSK  Order = 2
	QAM16 Order = 4
	QAM64 Order = 6
)

// Bits returns the number of bits carried by one constellation symbol.
func (o Order) Bits() int {
	return int(o)
}

// String returns the modulation name.
func (o Order) String() string {
	switch o {
	case BPSK:
		return "BPSK"
	case QPSK:
		return "QPSK"
	case QAM16:
		return "16-QAM"
	case QAM64:
		return "64-QAM"
	default:
		return "Unknown"
	}
}

// Constellation is a fixed Gray-coded bijection between bit groups and
// complex constellation points, normalized to unit average power.
type Constellation struct {
	Order  Order
	points []complex128
	scale  float64
}

// New creates a constellation for the given modulation order.
func New(order Order) (*Constellation, error) {
	c := &Constellation{Order: order}
	switch order {
	case BPSK:
		c.points = []complex128{complex(1, 0), complex(-1, 0)}
	case QPSK:
		// Gray-coded QPSK: 00, 01, 11, 10
		c.points = []complex128{
			complex(1, 1),
			complex(-1, 1),
			complex(-1, -1),
			complex(1, -1),
		}
	case QAM16:
		c.points = squareQAM(4)
	case QAM64:
		c.points = squareQAM(8)
	default:
		return nil, fmt.Errorf("unsupported modulation order %d", order)
	}
	c.normalize()
	return c, nil
}

// squareQAM builds a levels x levels grid with Gray-coded coordinates.
func squareQAM(levels int) []complex128 {
	points := make([]complex128, levels*levels)
	for i := range points {
		row := i / levels
		col := i % levels
		grayRow := row ^ (row >> 1)
		grayCol := col ^ (col >> 1)
		x := float64(2*grayCol - levels + 1)
		y := float64(2*grayRow - levels + 1)
		points[i] = complex(x, y)
	}
	return points
}

func (c *Constellation) normalize() {
	var avgPower float64
	for _, p := range c.points {
		avgPower += real(p)*real(p) + imag(p)*imag(p)
	}
	avgPower /= float64(len(c.points))

	c.scale = 1.0 / math.Sqrt(avgPower)
	for i := range c.points {
		c.points[i] = complex(real(c.points[i])*c.scale, imag(c.points[i])*c.scale)
	}
}

// Bits returns the bits per symbol, satisfying the codec's mapper interface.
func (c *Constellation) Bits() int {
	return c.Order.Bits()
}

// Map maps one group of Bits() bits (values 0 or 1, MSB first) to a
// constellation point.
func (c *Constellation) Map(bits []byte) complex128 {
	idx := bitsToIndex(bits)
	if idx >= len(c.points) {
		idx = 0
	}
	return c.points[idx]
}

// Demap finds the closest constellation point and returns its bit group.
func (c *Constellation) Demap(symbol complex128) []byte {
	minDist := math.MaxFloat64
	minIdx := 0

	for i, p := range c.points {
		d := real(symbol-p)*real(symbol-p) + imag(symbol-p)*imag(symbol-p)
		if d < minDist {
			minDist = d
			minIdx = i
		}
	}

	return indexToBits(minIdx, c.Bits())
}

// MapBits maps a bit stream to a sequence of constellation symbols.
// The length must be a multiple of Bits().
func (c *Constellation) MapBits(bits []byte) []complex128 {
	bps := c.Bits()
	symbols := make([]complex128, len(bits)/bps)
	for i := range symbols {
		symbols[i] = c.Map(bits[i*bps : (i+1)*bps])
	}
	return symbols
}

// DemapSymbols demaps a sequence of constellation symbols back to bits.
func (c *Constellation) DemapSymbols(symbols []complex128) []byte {
	bps := c.Bits()
	bits := make([]byte, 0, len(symbols)*bps)
	for _, s := range symbols {
		bits = append(bits, c.Demap(s)...)
	}
	return bits
}

func bitsToIndex(bits []byte) int {
	idx := 0
	for _, b := range bits {
		idx = (idx << 1) | int(b&1)
	}
	return idx
}

func indexToBits(idx, numBits int) []byte {
	bits := make([]byte, numBits)
	for i := numBits - 1; i >= 0; i-- {
		bits[i] = byte(idx & 1)
		idx >>= 1
	}
	return bits
}
