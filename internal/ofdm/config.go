package ofdm

import "fmt"

// Default synchronization policy, used where SyncConfig fields are zero.
const (
	// DefaultThreshold is the minimum normalized prefix correlation
	// accepted as a symbol start.
	DefaultThreshold = 0.7
	// DefaultFineRange is the half-width, in real samples, of the pilot
	// search around the coarse candidate.
	DefaultFineRange = 16
)

// SyncConfig tunes the blind symbol-start search. The zero value selects
// the defaults above with no phase-rotation grid and an unbounded coarse
// scan.
type SyncConfig struct {
	// Threshold is the minimum normalized prefix correlation; candidates
	// at or below it are rejected.
	Threshold float64
	// CoarseRange limits the coarse scan to the first CoarseRange real
	// samples of the stream. Zero scans the whole stream.
	CoarseRange int
	// FineRange is the half-width, in real samples, of the pilot search
	// around the coarse candidate.
	FineRange int
	// PhaseSteps is the size of the optional phase-rotation grid tried
	// per fine candidate. Values below 2 disable the grid.
	PhaseSteps int
}

// Config describes one OFDM configuration. It is fixed at construction and
// shared read-only by every component; NewCodec copies the index slices so
// later caller mutation cannot reach the codec.
type Config struct {
	// NFFT is the subcarrier count, a power of two.
	NFFT int
	// CyclicPrefix is the prefix length in baseband samples, 0 < cp < NFFT.
	CyclicPrefix int
	// DataCarriers lists the data subcarrier bins in ascending order,
	// which is also the canonical bit-mapping order.
	DataCarriers []int
	// PilotCarriers lists the pilot bins in ascending order.
	PilotCarriers []int
	// PilotValues holds the known pilot value for each pilot bin. They are
	// real by convention so that an aligned capture recovers purely real
	// pilots.
	PilotValues []complex128
	// Order is the number of bits carried per data subcarrier.
	Order int
	// Sync carries the symbol-start search policy.
	Sync SyncConfig
}

// DataBitsPerSymbol returns the payload bits carried by one OFDM symbol.
func (c Config) DataBitsPerSymbol() int {
	return len(c.DataCarriers) * c.Order
}

// SymbolSamples returns the real samples occupied by one modulated symbol,
// twice the baseband length of prefix plus transform block.
func (c Config) SymbolSamples() int {
	return 2 * (c.NFFT + c.CyclicPrefix)
}

func (c Config) validate() error {
	if c.NFFT < 2 || c.NFFT&(c.NFFT-1) != 0 {
		return &ConfigurationError{Reason: fmt.Sprintf("NFFT %d is not a power of two", c.NFFT)}
	}
	if c.CyclicPrefix < 1 || c.CyclicPrefix >= c.NFFT {
		return &ConfigurationError{Reason: fmt.Sprintf("cyclic prefix %d outside [1, %d)", c.CyclicPrefix, c.NFFT)}
	}
	if c.Order < 1 {
		return &ConfigurationError{Reason: fmt.Sprintf("modulation order %d below 1", c.Order)}
	}
	if len(c.DataCarriers) == 0 {
		return &ConfigurationError{Reason: "no data carriers"}
	}
	if len(c.PilotCarriers) != len(c.PilotValues) {
		return &ConfigurationError{Reason: fmt.Sprintf("%d pilot carriers but %d pilot values",
			len(c.PilotCarriers), len(c.PilotValues))}
	}

	seen := make(map[int]string, len(c.DataCarriers)+len(c.PilotCarriers))
	check := func(name string, indices []int) error {
		prev := -1
		for _, k := range indices {
			if k <= 0 || k >= c.NFFT {
				if k == 0 {
					return &ConfigurationError{Reason: fmt.Sprintf("%s carrier at DC (bin 0)", name)}
				}
				return &ConfigurationError{Reason: fmt.Sprintf("%s carrier %d outside [1, %d)", name, k, c.NFFT)}
			}
			if k <= prev {
				return &ConfigurationError{Reason: fmt.Sprintf("%s carriers not in ascending order at bin %d", name, k)}
			}
			prev = k
			if other, dup := seen[k]; dup {
				return &ConfigurationError{Reason: fmt.Sprintf("bin %d used as both %s and %s carrier", k, other, name)}
			}
			seen[k] = name
		}
		return nil
	}
	if err := check("data", c.DataCarriers); err != nil {
		return err
	}
	if err := check("pilot", c.PilotCarriers); err != nil {
		return err
	}
	return nil
}

// withDefaults returns a copy owning its slices, with zero sync fields
// replaced by the package defaults.
func (c Config) withDefaults() Config {
	out := c
	out.DataCarriers = append([]int(nil), c.DataCarriers...)
	out.PilotCarriers = append([]int(nil), c.PilotCarriers...)
	out.PilotValues = append([]complex128(nil), c.PilotValues...)
	if out.Sync.Threshold == 0 {
		out.Sync.Threshold = DefaultThreshold
	}
	if out.Sync.FineRange == 0 {
		out.Sync.FineRange = DefaultFineRange
	}
	return out
}
