package ofdm

import "fmt"

// InvalidLengthError reports a bit or sample buffer whose length does not
// match the configured symbol geometry.
type InvalidLengthError struct {
	What string
	Got  int
	Want int
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("invalid %s length %d, want a multiple of %d", e.What, e.Got, e.Want)
}

// ConfigurationError reports an inconsistent Config. It is raised at
// construction only, never per symbol.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "ofdm configuration: " + e.Reason
}

// SyncError reports that no cyclic-prefix correlation peak cleared the
// detection threshold. Offset and Metric describe the best rejected
// candidate so the caller can retry with a wider window or a lower
// threshold.
type SyncError struct {
	Offset    int
	Metric    float64
	Threshold float64
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("symbol start not found: best metric %.3f at offset %d is below threshold %.3f",
		e.Metric, e.Offset, e.Threshold)
}
