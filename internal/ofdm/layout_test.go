package ofdm

import (
	"sort"
	"testing"
)

func TestWiFiLayout(t *testing.T) {
	data, pilots, values := WiFiLayout()

	if len(data) != 48 {
		t.Errorf("data carriers = %d, want 48", len(data))
	}
	if len(pilots) != 4 || len(values) != 4 {
		t.Errorf("pilots = %d values = %d, want 4 each", len(pilots), len(values))
	}

	wantPilots := []int{7, 21, 43, 57}
	for i, k := range wantPilots {
		if pilots[i] != k {
			t.Errorf("pilot %d at bin %d, want %d", i, pilots[i], k)
		}
	}
	wantValues := []complex128{1, -1, 1, 1}
	for i, v := range wantValues {
		if values[i] != v {
			t.Errorf("pilot value %d = %v, want %v", i, values[i], v)
		}
	}

	checkLayout(t, 64, data, pilots)
}

func TestCenteredLayoutSmall(t *testing.T) {
	data, pilots, values, err := CenteredLayout(64, 12, 8, complex(2, 0))
	if err != nil {
		t.Fatal(err)
	}

	// Hand-walked: the winding starts at bin 54, wraps past bin 63 into
	// the positive half skipping DC, and reserves slots 3 and 11 for
	// pilots.
	wantData := []int{1, 2, 4, 54, 55, 56, 58, 59, 60, 61, 62, 63}
	wantPilots := []int{3, 57}

	if len(data) != len(wantData) {
		t.Fatalf("data carriers = %v, want %v", data, wantData)
	}
	for i := range wantData {
		if data[i] != wantData[i] {
			t.Errorf("data[%d] = %d, want %d", i, data[i], wantData[i])
		}
	}
	if len(pilots) != len(wantPilots) {
		t.Fatalf("pilots = %v, want %v", pilots, wantPilots)
	}
	for i := range wantPilots {
		if pilots[i] != wantPilots[i] {
			t.Errorf("pilots[%d] = %d, want %d", i, pilots[i], wantPilots[i])
		}
		if values[i] != complex(2, 0) {
			t.Errorf("values[%d] = %v, want (2+0i)", i, values[i])
		}
	}

	checkLayout(t, 64, data, pilots)
}

func TestCenteredLayoutLarge(t *testing.T) {
	data, pilots, _, err := CenteredLayout(2048, 1024, 16, complex(2, 0))
	if err != nil {
		t.Fatal(err)
	}

	if len(data) != 1024 {
		t.Errorf("data carriers = %d, want 1024", len(data))
	}
	// Pilot counter primed at 8, then one pilot every 16 data slots.
	if len(pilots) != 64 {
		t.Errorf("pilots = %d, want 64", len(pilots))
	}
	checkLayout(t, 2048, data, pilots)
}

func TestCenteredLayoutErrors(t *testing.T) {
	if _, _, _, err := CenteredLayout(60, 12, 8, 1); err == nil {
		t.Error("accepted NFFT that is not a power of two")
	}
	if _, _, _, err := CenteredLayout(64, 0, 8, 1); err == nil {
		t.Error("accepted zero data slots")
	}
	if _, _, _, err := CenteredLayout(64, 12, 1, 1); err == nil {
		t.Error("accepted pilot distance below 2")
	}
	if _, _, _, err := CenteredLayout(16, 20, 4, 1); err == nil {
		t.Error("accepted more slots than usable bins")
	}
}

// checkLayout verifies the invariants every layout must satisfy: sorted
// ascending, pairwise disjoint, DC excluded, all bins inside [1, nFFT).
func checkLayout(t *testing.T, nFFT int, data, pilots []int) {
	t.Helper()

	if !sort.IntsAreSorted(data) {
		t.Error("data carriers not sorted")
	}
	if !sort.IntsAreSorted(pilots) {
		t.Error("pilot carriers not sorted")
	}

	seen := make(map[int]bool)
	for _, set := range [][]int{data, pilots} {
		for _, k := range set {
			if k <= 0 || k >= nFFT {
				t.Errorf("bin %d outside [1, %d)", k, nFFT)
			}
			if seen[k] {
				t.Errorf("bin %d used twice", k)
			}
			seen[k] = true
		}
	}
}
