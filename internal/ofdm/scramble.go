package ofdm

import "math/rand"

// Scrambler whitens payload bytes by XOR with a seeded pseudo-random
// sequence (energy dispersal), so constant payloads still spread energy
// across the carriers. Applying it twice with the same seed restores the
// input.
type Scrambler struct {
	seed int64
}

// NewScrambler creates a scrambler for the given seed. Transmitter and
// receiver must agree on the seed.
func NewScrambler(seed int64) *Scrambler {
	return &Scrambler{seed: seed}
}

// Apply returns data XORed with the dispersal sequence. The sequence
// restarts at the seed on every call.
func (s *Scrambler) Apply(data []byte) []byte {
	rng := rand.New(rand.NewSource(s.seed))
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ byte(rng.Intn(256))
	}
	return out
}
