package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/berndporr/go-ofdm/internal/audio"
	"github.com/berndporr/go-ofdm/internal/config"
	"github.com/berndporr/go-ofdm/internal/logging"
	"github.com/berndporr/go-ofdm/internal/monitor"
	"github.com/berndporr/go-ofdm/internal/ofdm"
	"github.com/berndporr/go-ofdm/internal/wave"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	inPath := flag.String("in", "", "WAV file to decode")
	listen := flag.Bool("listen", false, "capture from the default input device")
	seconds := flag.Float64("seconds", 10, "capture duration with -listen")
	listDevices := flag.Bool("list-devices", false, "list audio devices and exit")
	nfft := flag.Int("nfft", 0, "FFT size, overrides the config")
	prefix := flag.Int("prefix", 0, "cyclic prefix length, overrides the config")
	order := flag.String("order", "", "modulation: bpsk, qpsk, qam16 or qam64")
	layout := flag.String("layout", "", "carrier layout: wifi or centered")
	seed := flag.Int64("seed", 0, "scrambler seed, overrides the config")
	symbols := flag.Int("symbols", 0, "symbols to decode, 0 decodes as many as fit")
	expect := flag.String("expect", "", "reference payload text for a bit error ratio")
	expectFile := flag.String("expect-file", "", "reference payload file for a bit error ratio")
	outPath := flag.String("out", "", "write the recovered payload to this file")
	monitorAddr := flag.String("monitor", "", "serve live monitoring on this address")
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

	codec, err := cfg.NewCodec()
	if err != nil {
		log.Fatalf("Failed to build the codec: %v", err)
	}

	hub := startMonitor(cfg, *monitorAddr)

	samples := acquire(cfg, *inPath, *listen, *seconds)
	logging.Infof("rx", "%d samples to search", len(samples))
	if hub != nil {
		hub.Status("searching", fmt.Sprintf("%d samples", len(samples)))
	}

	result, err := codec.FindSymbolStart(samples)
	if err != nil {
		var se *ofdm.SyncError
		if errors.As(err, &se) {
			logging.Errorf("rx", "no symbol start: best metric %.3f at offset %d, threshold %.3f",
				se.Metric, se.Offset, se.Threshold)
			if hub != nil {
				hub.Status("nosync", err.Error())
			}
			os.Exit(1)
		}
		log.Fatalf("Sync failed: %v", err)
	}
	logging.Infof("rx", "symbol start at %d, metric %.3f, pilot error %.3g, phase %.3f",
		result.Offset, result.Metric, result.PilotError, result.Phase)
	if hub != nil {
		hub.Sync(result.Offset, result.Metric, result.PilotError)
	}

	symbolSamples := codec.SymbolSamples()
	available := (len(samples) - result.Offset) / symbolSamples
	count := available
	if *symbols > 0 && *symbols < count {
		count = *symbols
	}

	expected := readExpected(*expect, *expectFile)
	if expected != nil && *symbols == 0 {
		// Without an explicit count, stop once the reference is covered.
		need := (len(expected)*8 + codec.DataBitsPerSymbol() - 1) / codec.DataBitsPerSymbol()
		if need < count {
			count = need
		}
	}
	if count < 1 {
		log.Fatalf("The stream ends %d samples after the symbol start, one symbol needs %d",
			len(samples)-result.Offset, symbolSamples)
	}

	var bits []byte
	for k := 0; k < count; k++ {
		start := result.Offset + k*symbolSamples
		symbolBits, err := codec.Decode(samples[start : start+symbolSamples])
		if err != nil {
			log.Fatalf("Failed to decode symbol %d: %v", k, err)
		}
		bits = append(bits, symbolBits...)
	}

	payload := ofdm.NewScrambler(cfg.Modem.ScrambleSeed).Apply(ofdm.BitsToBytes(bits))
	if expected != nil && len(payload) > len(expected) {
		payload = payload[:len(expected)] // the rest is symbol padding
	}
	logging.Infof("rx", "decoded %d symbols, %d payload bytes", count, len(payload))

	bitErrors, ber := -1, 0.0
	if expected != nil {
		bitErrors, ber = compareBits(payload, expected)
		logging.Infof("rx", "%d bit errors, BER %.6f", bitErrors, ber)
	}
	if hub != nil {
		hub.Decode(count, len(payload), bitErrors, ber)
		hub.Status("done", "")
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, payload, 0644); err != nil {
			log.Fatalf("Failed to write %s: %v", *outPath, err)
		}
		logging.Infof("rx", "wrote %s", *outPath)
	} else {
		fmt.Printf("%s\n", payload)
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

// acquire returns the sample stream from a WAV file or the sound card.
func acquire(cfg *config.Config, inPath string, listen bool, seconds float64) []float64 {
	switch {
	case inPath != "" && listen:
		log.Fatalf("Give either -in or -listen, not both")
	case inPath != "":
		samples, rate, err := wave.Read(inPath)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", inPath, err)
		}
		if rate != cfg.Audio.SampleRate {
			logging.Warnf("rx", "%s is %d Hz, config says %d Hz", inPath, rate, cfg.Audio.SampleRate)
		}
		return samples
	case listen:
		return capture(cfg, seconds)
	}
	log.Fatalf("No input: give -in or -listen")
	return nil
}

func capture(cfg *config.Config, seconds float64) []float64 {
	if err := audio.Init(); err != nil {
		log.Fatalf("Failed to initialize PortAudio: %v", err)
	}
	defer audio.Terminate()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nAborted.")
		audio.Terminate()
		os.Exit(1)
	}()

	io := audio.New(cfg.Audio.SampleRate, cfg.Audio.BufferSize)
	if err := io.OpenInput(); err != nil {
		log.Fatalf("Failed to open the input device: %v", err)
	}
	defer io.Close()

	n := int(seconds * float64(cfg.Audio.SampleRate))
	logging.Infof("rx", "capturing %d samples (%.1f s)", n, seconds)
	samples, err := io.Record(n)
	if err != nil {
		log.Fatalf("Failed to record: %v", err)
	}
	signal.Stop(sigCh)
	return samples
}

func startMonitor(cfg *config.Config, addr string) *monitor.Hub {
	if addr == "" {
		if !cfg.Monitor.Enabled {
			return nil
		}
		addr = fmt.Sprintf("%s:%d", cfg.Monitor.BindAddress, cfg.Monitor.Port)
	}

	hub := monitor.NewHub()
	go func() {
		if err := monitor.NewServer(addr, hub).Start(); err != nil {
			logging.Errorf("monitor", "server stopped: %v", err)
		}
	}()
	return hub
}

func readExpected(text, path string) []byte {
	switch {
	case text != "" && path != "":
		log.Fatalf("Give either -expect or -expect-file, not both")
	case text != "":
		return []byte(text)
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Failed to read the reference payload: %v", err)
		}
		return data
	}
	return nil
}

func compareBits(got, want []byte) (int, float64) {
	gotBits := ofdm.BytesToBits(got)
	wantBits := ofdm.BytesToBits(want)

	n := len(wantBits)
	if len(gotBits) < n {
		n = len(gotBits)
	}
	bitErrors := 0
	for i := 0; i < n; i++ {
		if gotBits[i] != wantBits[i] {
			bitErrors++
		}
	}
	// Bits the capture never produced count as errors too.
	bitErrors += len(wantBits) - n
	if len(wantBits) == 0 {
		return 0, 0
	}
	return bitErrors, float64(bitErrors) / float64(len(wantBits))
}
