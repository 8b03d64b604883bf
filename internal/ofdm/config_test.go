package ofdm

import (
	"errors"
	"testing"

	"github.com/berndporr/go-ofdm/internal/qam"
)

func wifiConfig(order int) Config {
	data, pilots, values := WiFiLayout()
	return Config{
		NFFT:          64,
		CyclicPrefix:  16,
		DataCarriers:  data,
		PilotCarriers: pilots,
		PilotValues:   values,
		Order:         order,
	}
}

func TestConfigValidation(t *testing.T) {
	mapper, err := qam.New(qam.QPSK)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"nfft not power of two", func(c *Config) { c.NFFT = 60 }},
		{"nfft zero", func(c *Config) { c.NFFT = 0 }},
		{"prefix zero", func(c *Config) { c.CyclicPrefix = 0 }},
		{"prefix not below nfft", func(c *Config) { c.CyclicPrefix = 64 }},
		{"order zero", func(c *Config) { c.Order = 0 }},
		{"no data carriers", func(c *Config) { c.DataCarriers = nil }},
		{"pilot value count mismatch", func(c *Config) { c.PilotValues = c.PilotValues[:3] }},
		{"data carrier at DC", func(c *Config) { c.DataCarriers = append([]int{0}, c.DataCarriers...) }},
		{"pilot at DC", func(c *Config) {
			c.PilotCarriers = []int{0, 21, 43, 57}
		}},
		{"carrier out of range", func(c *Config) { c.DataCarriers[len(c.DataCarriers)-1] = 64 }},
		{"data carriers unsorted", func(c *Config) {
			c.DataCarriers[0], c.DataCarriers[1] = c.DataCarriers[1], c.DataCarriers[0]
		}},
		{"duplicate data carrier", func(c *Config) { c.DataCarriers[1] = c.DataCarriers[0] }},
		{"pilot overlaps data", func(c *Config) { c.PilotCarriers = []int{1, 21, 43, 57} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := wifiConfig(2)
			cfg.DataCarriers = append([]int(nil), cfg.DataCarriers...)
			cfg.PilotCarriers = append([]int(nil), cfg.PilotCarriers...)
			cfg.PilotValues = append([]complex128(nil), cfg.PilotValues...)
			tt.mutate(&cfg)

			_, err := NewCodec(cfg, mapper)
			if err == nil {
				t.Fatal("NewCodec accepted an invalid configuration")
			}
			var ce *ConfigurationError
			if !errors.As(err, &ce) {
				t.Errorf("error is %T, want *ConfigurationError", err)
			}
		})
	}
}

func TestConfigMapperMismatch(t *testing.T) {
	mapper, err := qam.New(qam.QPSK)
	if err != nil {
		t.Fatal(err)
	}

	cfg := wifiConfig(4)
	if _, err := NewCodec(cfg, mapper); err == nil {
		t.Error("NewCodec accepted a mapper with the wrong bit width")
	}

	if _, err := NewCodec(wifiConfig(2), nil); err == nil {
		t.Error("NewCodec accepted a nil mapper")
	}
}

func TestConfigSyncDefaults(t *testing.T) {
	mapper, err := qam.New(qam.QPSK)
	if err != nil {
		t.Fatal(err)
	}

	c, err := NewCodec(wifiConfig(2), mapper)
	if err != nil {
		t.Fatal(err)
	}

	if c.cfg.Sync.Threshold != DefaultThreshold {
		t.Errorf("threshold default = %v, want %v", c.cfg.Sync.Threshold, DefaultThreshold)
	}
	if c.cfg.Sync.FineRange != DefaultFineRange {
		t.Errorf("fine range default = %v, want %v", c.cfg.Sync.FineRange, DefaultFineRange)
	}
	if c.cfg.Sync.CoarseRange != 0 {
		t.Errorf("coarse range default = %v, want 0 (whole stream)", c.cfg.Sync.CoarseRange)
	}

	cfg := wifiConfig(2)
	cfg.Sync = SyncConfig{Threshold: 0.5, CoarseRange: 4000, FineRange: 8, PhaseSteps: 4}
	c, err = NewCodec(cfg, mapper)
	if err != nil {
		t.Fatal(err)
	}
	if c.cfg.Sync != cfg.Sync {
		t.Errorf("explicit sync settings not kept: %+v", c.cfg.Sync)
	}
}

func TestConfigDerivedCounts(t *testing.T) {
	cfg := wifiConfig(2)
	if got := cfg.DataBitsPerSymbol(); got != 96 {
		t.Errorf("DataBitsPerSymbol = %d, want 96", got)
	}
	if got := cfg.SymbolSamples(); got != 160 {
		t.Errorf("SymbolSamples = %d, want 160", got)
	}
}

func TestConfigCopiedAtConstruction(t *testing.T) {
	mapper, err := qam.New(qam.QPSK)
	if err != nil {
		t.Fatal(err)
	}

	cfg := wifiConfig(2)
	c, err := NewCodec(cfg, mapper)
	if err != nil {
		t.Fatal(err)
	}

	cfg.DataCarriers[0] = 63
	cfg.PilotValues[0] = complex(9, 9)

	if c.cfg.DataCarriers[0] == 63 {
		t.Error("codec shares the caller's data carrier slice")
	}
	if c.cfg.PilotValues[0] == complex(9, 9) {
		t.Error("codec shares the caller's pilot value slice")
	}
}
