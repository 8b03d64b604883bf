package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/berndporr/go-ofdm/internal/ofdm"
	"github.com/berndporr/go-ofdm/internal/qam"
)

// Config represents the modem configuration
type Config struct {
	Modem struct {
		NFFT           int     `yaml:"nfft"`
		CyclicPrefix   int     `yaml:"cyclic_prefix"`
		Modulation     string  `yaml:"modulation"` // bpsk, qpsk, qam16, qam64
		Layout         string  `yaml:"layout"`     // wifi, centered
		DataSlots      int     `yaml:"data_slots"` // centered layout only
		PilotDistance  int     `yaml:"pilot_distance"`
		PilotAmplitude float64 `yaml:"pilot_amplitude"`
		ScrambleSeed   int64   `yaml:"scramble_seed"`
	} `yaml:"modem"`

	Sync struct {
		Threshold   float64 `yaml:"threshold"`
		CoarseRange int     `yaml:"coarse_range"`
		FineRange   int     `yaml:"fine_range"`
		PhaseSteps  int     `yaml:"phase_steps"`
	} `yaml:"sync"`

	Audio struct {
		SampleRate   int     `yaml:"sample_rate"`
		BufferSize   int     `yaml:"buffer_size"`
		InputDevice  string  `yaml:"input_device"`
		OutputDevice string  `yaml:"output_device"`
		Amplitude    float64 `yaml:"amplitude"` // peak level of the transmitted waveform
	} `yaml:"audio"`

	Logging struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSize    int    `yaml:"max_size"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAge     int    `yaml:"max_age"`
		Compress   bool   `yaml:"compress"`
		Console    bool   `yaml:"console"`
	} `yaml:"logging"`

	Monitor struct {
		Enabled     bool   `yaml:"enabled"`
		Port        int    `yaml:"port"`
		BindAddress string `yaml:"bind_address"`
	} `yaml:"monitor"`
}

// Default returns the configuration used when no file is given: the
// 802.11a carrier layout on a 64-bin FFT with QPSK data.
func Default() *Config {
	var config Config
	config.applyDefaults()
	return &config
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.applyDefaults()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Modem.NFFT == 0 {
		c.Modem.NFFT = 64
	}
	if c.Modem.CyclicPrefix == 0 {
		c.Modem.CyclicPrefix = c.Modem.NFFT / 4
	}
	if c.Modem.Modulation == "" {
		c.Modem.Modulation = "qpsk"
	}
	if c.Modem.Layout == "" {
		c.Modem.Layout = "wifi"
	}
	if c.Modem.DataSlots == 0 {
		c.Modem.DataSlots = c.Modem.NFFT / 2
	}
	if c.Modem.PilotDistance == 0 {
		c.Modem.PilotDistance = 16
	}
	if c.Modem.PilotAmplitude == 0 {
		c.Modem.PilotAmplitude = 2
	}
	if c.Sync.Threshold == 0 {
		c.Sync.Threshold = ofdm.DefaultThreshold
	}
	if c.Sync.FineRange == 0 {
		c.Sync.FineRange = ofdm.DefaultFineRange
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 44100
	}
	if c.Audio.BufferSize == 0 {
		c.Audio.BufferSize = 1024
	}
	if c.Audio.InputDevice == "" {
		c.Audio.InputDevice = "default"
	}
	if c.Audio.OutputDevice == "" {
		c.Audio.OutputDevice = "default"
	}
	if c.Audio.Amplitude == 0 {
		c.Audio.Amplitude = 0.8
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Monitor.Port == 0 {
		c.Monitor.Port = 8080
	}
	if c.Monitor.BindAddress == "" {
		c.Monitor.BindAddress = "0.0.0.0"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := c.Order(); err != nil {
		return err
	}
	switch strings.ToLower(c.Modem.Layout) {
	case "wifi", "centered":
	default:
		return fmt.Errorf("unknown carrier layout %q", c.Modem.Layout)
	}
	if strings.ToLower(c.Modem.Layout) == "wifi" && c.Modem.NFFT != 64 {
		return fmt.Errorf("the wifi layout needs nfft 64, not %d", c.Modem.NFFT)
	}
	if c.Sync.Threshold <= 0 || c.Sync.Threshold > 1 {
		return fmt.Errorf("sync threshold %v is outside (0, 1]", c.Sync.Threshold)
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("sample rate %d is not positive", c.Audio.SampleRate)
	}
	if c.Audio.Amplitude <= 0 || c.Audio.Amplitude > 1 {
		return fmt.Errorf("amplitude %v is outside (0, 1]", c.Audio.Amplitude)
	}
	if c.Monitor.Port < 1 || c.Monitor.Port > 65535 {
		return fmt.Errorf("monitor port %d is out of range", c.Monitor.Port)
	}
	return nil
}

// Order maps the modulation name to a constellation order.
func (c *Config) Order() (qam.Order, error) {
	switch strings.ToLower(c.Modem.Modulation) {
	case "bpsk":
		return qam.BPSK, nil
	case "qpsk":
		return qam.QPSK, nil
	case "qam16":
		return qam.QAM16, nil
	case "qam64":
		return qam.QAM64, nil
	default:
		return 0, fmt.Errorf("unknown modulation %q", c.Modem.Modulation)
	}
}

// NewCodec assembles the OFDM codec described by the configuration.
func (c *Config) NewCodec() (*ofdm.Codec, error) {
	order, err := c.Order()
	if err != nil {
		return nil, err
	}
	mapper, err := qam.New(order)
	if err != nil {
		return nil, err
	}

	var data, pilots []int
	var values []complex128
	switch strings.ToLower(c.Modem.Layout) {
	case "wifi":
		data, pilots, values = ofdm.WiFiLayout()
	case "centered":
		data, pilots, values, err = ofdm.CenteredLayout(
			c.Modem.NFFT, c.Modem.DataSlots, c.Modem.PilotDistance,
			complex(c.Modem.PilotAmplitude, 0))
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown carrier layout %q", c.Modem.Layout)
	}

	cfg := ofdm.Config{
		NFFT:          c.Modem.NFFT,
		CyclicPrefix:  c.Modem.CyclicPrefix,
		DataCarriers:  data,
		PilotCarriers: pilots,
		PilotValues:   values,
		Order:         order.Bits(),
		Sync: ofdm.SyncConfig{
			Threshold:   c.Sync.Threshold,
			CoarseRange: c.Sync.CoarseRange,
			FineRange:   c.Sync.FineRange,
			PhaseSteps:  c.Sync.PhaseSteps,
		},
	}
	return ofdm.NewCodec(cfg, mapper)
}
