package ofdm

import (
	"fmt"
	"sort"
)

// Subcarrier layout presets. A layout is the pair of index sets plus the
// known pilot values; it feeds Config.DataCarriers, PilotCarriers and
// PilotValues.

// WiFiLayout returns the 802.11a-style 64-bin layout: 48 data carriers on
// bins 1-26 and 38-63, four pilots at bins 7, 21, 43 and 57 with polarity
// +1, -1, +1, +1, DC and the outer guard band unused.
func WiFiLayout() (data, pilots []int, values []complex128) {
	pilots = []int{7, 21, 43, 57}
	values = []complex128{1, -1, 1, 1}
	for k := 1; k <= 26; k++ {
		if k != 7 && k != 21 {
			data = append(data, k)
		}
	}
	for k := 38; k <= 63; k++ {
		if k != 43 && k != 57 {
			data = append(data, k)
		}
	}
	return data, pilots, values
}

// CenteredLayout winds dataSlots data carriers symmetrically around DC:
// the walk starts in the negative half of the spectrum, wraps past the
// highest bin into the positive half, and reserves every pilotDistance-th
// slot for a pilot carrying pilotValue, with the pilot counter primed at
// pilotDistance/2. DC is skipped. The returned sets are sorted ascending.
func CenteredLayout(nFFT, dataSlots, pilotDistance int, pilotValue complex128) (data, pilots []int, values []complex128, err error) {
	if nFFT < 2 || nFFT&(nFFT-1) != 0 {
		return nil, nil, nil, fmt.Errorf("centered layout: NFFT %d is not a power of two", nFFT)
	}
	if dataSlots < 1 {
		return nil, nil, nil, fmt.Errorf("centered layout: %d data slots", dataSlots)
	}
	if pilotDistance < 2 {
		return nil, nil, nil, fmt.Errorf("centered layout: pilot distance %d below 2", pilotDistance)
	}

	k := nFFT - nFFT/(2*pilotDistance) - dataSlots/2
	if k < 1 || k >= nFFT {
		return nil, nil, nil, fmt.Errorf("centered layout: %d data slots do not fit into %d bins", dataSlots, nFFT)
	}

	advance := func() {
		k++
		if k >= nFFT {
			k = 0
		}
		if k == 0 {
			k = 1
		}
	}

	pilotCounter := pilotDistance / 2
	for slot := 0; slot < dataSlots; slot++ {
		pilotCounter--
		if pilotCounter == 0 {
			pilotCounter = pilotDistance
			pilots = append(pilots, k)
			advance()
		}
		data = append(data, k)
		advance()
	}

	if len(data)+len(pilots) > nFFT-1 {
		return nil, nil, nil, fmt.Errorf("centered layout: %d data slots plus %d pilots exceed %d usable bins",
			len(data), len(pilots), nFFT-1)
	}

	sort.Ints(data)
	sort.Ints(pilots)
	values = make([]complex128, len(pilots))
	for i := range values {
		values[i] = pilotValue
	}
	return data, pilots, values, nil
}
