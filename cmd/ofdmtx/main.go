package main

import (
	"flag"
	"log"
	"os"

	"github.com/berndporr/go-ofdm/internal/audio"
	"github.com/berndporr/go-ofdm/internal/config"
	"github.com/berndporr/go-ofdm/internal/logging"
	"github.com/berndporr/go-ofdm/internal/ofdm"
	"github.com/berndporr/go-ofdm/internal/wave"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	text := flag.String("text", "", "payload text to transmit")
	inPath := flag.String("in", "", "payload file to transmit")
	outPath := flag.String("out", "", "WAV file to write")
	play := flag.Bool("play", false, "play the waveform on the default output device")
	listDevices := flag.Bool("list-devices", false, "list audio devices and exit")
	nfft := flag.Int("nfft", 0, "FFT size, overrides the config")
	prefix := flag.Int("prefix", 0, "cyclic prefix length, overrides the config")
	order := flag.String("order", "", "modulation: bpsk, qpsk, qam16 or qam64")
	layout := flag.String("layout", "", "carrier layout: wifi or centered")
	seed := flag.Int64("seed", 0, "scrambler seed, overrides the config")
	pad := flag.Int("pad", 1000, "leading silence in samples")
	gain := flag.Float64("gain", 0, "peak amplitude in (0, 1], overrides the config")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	logFile := flag.String("log-file", "", "log file path")
	flag.Parse()

	if *listDevices {
		if err := audio.Init(); err != nil {
			log.Fatalf("Failed to initialize PortAudio: %v", err)
		}
		defer audio.Terminate()
		if err := audio.PrintDevices(os.Stdout); err != nil {
			log.Fatalf("Failed to list devices: %v", err)
		}
		return
	}

	cfg := loadConfig(*configPath)
	if *nfft > 0 {
		cfg.Modem.NFFT = *nfft
	}
	if *prefix > 0 {
		cfg.Modem.CyclicPrefix = *prefix
	}
	if *order != "" {
		cfg.Modem.Modulation = *order
	}
	if *layout != "" {
		cfg.Modem.Layout = *layout
	}
	if *seed != 0 {
		cfg.Modem.ScrambleSeed = *seed
	}
	if *gain != 0 {
		cfg.Audio.Amplitude = *gain
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logFile != "" {
		cfg.Logging.File = *logFile
		cfg.Logging.Console = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := logging.InitGlobal(logging.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
		Console:    cfg.Logging.Console,
	}); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logging.CloseGlobal()

	payload := readPayload(*text, *inPath)
	codec, err := cfg.NewCodec()
	if err != nil {
		log.Fatalf("Failed to build the codec: %v", err)
	}

	scrambled := ofdm.NewScrambler(cfg.Modem.ScrambleSeed).Apply(payload)
	bits := ofdm.BytesToBits(scrambled)
	perSymbol := codec.DataBitsPerSymbol()
	if rem := len(bits) % perSymbol; rem != 0 {
		bits = append(bits, make([]byte, perSymbol-rem)...)
	}

	burst, err := codec.Encode(bits)
	if err != nil {
		log.Fatalf("Failed to encode: %v", err)
	}

	stream := make([]float64, 0, *pad+len(burst)+codec.SymbolSamples())
	stream = append(stream, make([]float64, *pad)...)
	stream = append(stream, burst...)
	stream = append(stream, make([]float64, codec.SymbolSamples())...)
	ofdm.NormalizeAmplitude(stream, cfg.Audio.Amplitude)

	logging.Infof("tx", "%d payload bytes as %d symbols, %d samples at %d Hz",
		len(payload), len(bits)/perSymbol, len(stream), cfg.Audio.SampleRate)

	wrote := false
	if *outPath != "" {
		if err := wave.Write(*outPath, stream, cfg.Audio.SampleRate); err != nil {
			log.Fatalf("Failed to write %s: %v", *outPath, err)
		}
		logging.Infof("tx", "wrote %s", *outPath)
		wrote = true
	}
	if *play {
		if err := playStream(stream, cfg); err != nil {
			log.Fatalf("Failed to play: %v", err)
		}
		logging.Infof("tx", "playback finished")
		wrote = true
	}
	if !wrote {
		log.Fatalf("Nothing to do: give -out and/or -play")
	}
}

func loadConfig(path string) *config.Config {
	if path == "" {
		return config.Default()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func readPayload(text, path string) []byte {
	switch {
	case text != "" && path != "":
		log.Fatalf("Give either -text or -in, not both")
	case text != "":
		return []byte(text)
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Failed to read payload: %v", err)
		}
		return data
	}
	log.Fatalf("No payload: give -text or -in")
	return nil
}

func playStream(stream []float64, cfg *config.Config) error {
	if err := audio.Init(); err != nil {
		return err
	}
	defer audio.Terminate()

	io := audio.New(cfg.Audio.SampleRate, cfg.Audio.BufferSize)
	if err := io.OpenOutput(); err != nil {
		return err
	}
	defer io.Close()
	return io.Play(stream)
}
