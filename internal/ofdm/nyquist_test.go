package ofdm

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestModulateInterleave(t *testing.T) {
	in := []complex128{complex(0.5, -0.25), complex(-0.125, 1)}
	out := Modulate(in)

	want := []float64{0.5, -0.25, 0.125, -1}
	if len(out) != len(want) {
		t.Fatalf("length %d, want %d", len(out), len(want))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestModulateDemodulateRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	in := make([]complex128, 257) // odd count exercises the final sign
	for i := range in {
		in[i] = complex(rng.Float64()*2-1, rng.Float64()*2-1)
	}

	out, err := Demodulate(Modulate(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("length %d, want %d", len(out), len(in))
	}
	// Multiplying by +1/-1 twice is exact in floating point.
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("sample %d = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestDemodulateOddLength(t *testing.T) {
	_, err := Demodulate(make([]float64, 7))
	if err == nil {
		t.Fatal("Demodulate accepted an odd-length buffer")
	}
	var le *InvalidLengthError
	if !errors.As(err, &le) {
		t.Fatalf("error is %T, want *InvalidLengthError", err)
	}
	if le.Got != 7 {
		t.Errorf("error Got = %d, want 7", le.Got)
	}
}

func TestModulateEmpty(t *testing.T) {
	if out := Modulate(nil); len(out) != 0 {
		t.Errorf("Modulate(nil) returned %d samples", len(out))
	}
	out, err := Demodulate(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Errorf("Demodulate(nil) returned %d samples", len(out))
	}
}

func TestNormalizeAmplitude(t *testing.T) {
	samples := []float64{0.1, -0.4, 0.2, -0.05}
	NormalizeAmplitude(samples, 0.8)

	maxAbs := 0.0
	for _, s := range samples {
		if abs := math.Abs(s); abs > maxAbs {
			maxAbs = abs
		}
	}
	if math.Abs(maxAbs-0.8) > 1e-12 {
		t.Errorf("peak after normalizing = %v, want 0.8", maxAbs)
	}
	// Relative structure is preserved.
	if math.Abs(samples[0]/samples[2]-0.5) > 1e-12 {
		t.Errorf("sample ratio changed: %v / %v", samples[0], samples[2])
	}

	silence := make([]float64, 16)
	NormalizeAmplitude(silence, 0.8)
	for i, s := range silence {
		if s != 0 {
			t.Fatalf("silence sample %d became %v", i, s)
		}
	}
}
