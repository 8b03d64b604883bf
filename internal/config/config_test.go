package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/berndporr/go-ofdm/internal/qam"
)

func TestLoadConfig(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "go-ofdm-config-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	t.Run("Valid Config", func(t *testing.T) {
		configContent := `
modem:
  nfft: 2048
  cyclic_prefix: 512
  modulation: "qam16"
  layout: "centered"
  data_slots: 1024
  pilot_distance: 16
  pilot_amplitude: 2.0
  scramble_seed: 12345

sync:
  threshold: 0.85
  fine_range: 8

audio:
  sample_rate: 48000
  buffer_size: 2048
  amplitude: 0.5

logging:
  level: "debug"
  file: "/tmp/ofdm.log"
  console: true

monitor:
  enabled: true
  port: 9090
`
		configPath := filepath.Join(tempDir, "valid.yaml")
		if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		if config.Modem.NFFT != 2048 {
			t.Errorf("Expected nfft 2048, got %d", config.Modem.NFFT)
		}
		if config.Modem.CyclicPrefix != 512 {
			t.Errorf("Expected cyclic prefix 512, got %d", config.Modem.CyclicPrefix)
		}
		if config.Modem.Modulation != "qam16" {
			t.Errorf("Expected modulation qam16, got %s", config.Modem.Modulation)
		}
		if config.Modem.ScrambleSeed != 12345 {
			t.Errorf("Expected scramble seed 12345, got %d", config.Modem.ScrambleSeed)
		}
		if config.Sync.Threshold != 0.85 {
			t.Errorf("Expected threshold 0.85, got %v", config.Sync.Threshold)
		}
		if config.Sync.FineRange != 8 {
			t.Errorf("Expected fine range 8, got %d", config.Sync.FineRange)
		}
		if config.Audio.SampleRate != 48000 {
			t.Errorf("Expected sample rate 48000, got %d", config.Audio.SampleRate)
		}
		if config.Audio.Amplitude != 0.5 {
			t.Errorf("Expected amplitude 0.5, got %v", config.Audio.Amplitude)
		}
		if !config.Monitor.Enabled {
			t.Error("Expected monitor enabled")
		}
		if config.Monitor.Port != 9090 {
			t.Errorf("Expected monitor port 9090, got %d", config.Monitor.Port)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("Expected valid config, got: %v", err)
		}
	})

	t.Run("Config With Defaults", func(t *testing.T) {
		configContent := `
modem:
  modulation: "qam64"
`
		configPath := filepath.Join(tempDir, "minimal.yaml")
		if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		if config.Modem.NFFT != 64 {
			t.Errorf("Expected default nfft 64, got %d", config.Modem.NFFT)
		}
		if config.Modem.CyclicPrefix != 16 {
			t.Errorf("Expected default cyclic prefix 16, got %d", config.Modem.CyclicPrefix)
		}
		if config.Modem.Modulation != "qam64" {
			t.Errorf("Expected modulation qam64, got %s", config.Modem.Modulation)
		}
		if config.Modem.Layout != "wifi" {
			t.Errorf("Expected default layout wifi, got %s", config.Modem.Layout)
		}
		if config.Sync.Threshold != 0.7 {
			t.Errorf("Expected default threshold 0.7, got %v", config.Sync.Threshold)
		}
		if config.Sync.FineRange != 16 {
			t.Errorf("Expected default fine range 16, got %d", config.Sync.FineRange)
		}
		if config.Audio.SampleRate != 44100 {
			t.Errorf("Expected default sample rate 44100, got %d", config.Audio.SampleRate)
		}
		if config.Audio.Amplitude != 0.8 {
			t.Errorf("Expected default amplitude 0.8, got %v", config.Audio.Amplitude)
		}
		if config.Logging.Level != "info" {
			t.Errorf("Expected default log level info, got %s", config.Logging.Level)
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(tempDir, "does-not-exist.yaml")); err == nil {
			t.Error("Expected an error for a missing file")
		}
	})

	t.Run("Invalid YAML", func(t *testing.T) {
		configPath := filepath.Join(tempDir, "broken.yaml")
		if err := os.WriteFile(configPath, []byte("modem: [not: closed"), 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}
		if _, err := LoadConfig(configPath); err == nil {
			t.Error("Expected an error for invalid YAML")
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown modulation", func(c *Config) { c.Modem.Modulation = "qam512" }},
		{"unknown layout", func(c *Config) { c.Modem.Layout = "hexagonal" }},
		{"wifi layout off 64 bins", func(c *Config) { c.Modem.NFFT = 128 }},
		{"threshold above one", func(c *Config) { c.Sync.Threshold = 1.5 }},
		{"negative threshold", func(c *Config) { c.Sync.Threshold = -0.1 }},
		{"zero sample rate", func(c *Config) { c.Audio.SampleRate = -1 }},
		{"amplitude above one", func(c *Config) { c.Audio.Amplitude = 1.2 }},
		{"monitor port out of range", func(c *Config) { c.Monitor.Port = 70000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			if err := config.Validate(); err == nil {
				t.Error("Expected a validation error")
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("Expected the default config to validate, got: %v", err)
	}
}

func TestOrder(t *testing.T) {
	tests := []struct {
		modulation string
		want       qam.Order
	}{
		{"bpsk", qam.BPSK},
		{"qpsk", qam.QPSK},
		{"QPSK", qam.QPSK},
		{"qam16", qam.QAM16},
		{"qam64", qam.QAM64},
	}

	for _, tt := range tests {
		config := Default()
		config.Modem.Modulation = tt.modulation
		order, err := config.Order()
		if err != nil {
			t.Errorf("%s: %v", tt.modulation, err)
			continue
		}
		if order != tt.want {
			t.Errorf("%s: got order %v, want %v", tt.modulation, order, tt.want)
		}
	}
}

func TestNewCodec(t *testing.T) {
	t.Run("Default WiFi", func(t *testing.T) {
		codec, err := Default().NewCodec()
		if err != nil {
			t.Fatal(err)
		}
		if got := codec.DataBitsPerSymbol(); got != 96 {
			t.Errorf("Expected 96 data bits per symbol, got %d", got)
		}
		if got := codec.SymbolSamples(); got != 160 {
			t.Errorf("Expected 160 samples per symbol, got %d", got)
		}
	})

	t.Run("Centered", func(t *testing.T) {
		config := Default()
		config.Modem.NFFT = 2048
		config.Modem.CyclicPrefix = 512
		config.Modem.Layout = "centered"
		config.Modem.DataSlots = 1024
		config.Modem.PilotDistance = 16

		codec, err := config.NewCodec()
		if err != nil {
			t.Fatal(err)
		}
		if got := codec.DataBitsPerSymbol(); got != 2048 {
			t.Errorf("Expected 2048 data bits per symbol, got %d", got)
		}
	})

	t.Run("Bad Modulation", func(t *testing.T) {
		config := Default()
		config.Modem.Modulation = "am"
		if _, err := config.NewCodec(); err == nil {
			t.Error("Expected an error for an unknown modulation")
		}
	})
}
