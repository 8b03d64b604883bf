// Package audio plays and captures the modem waveform through PortAudio.
// The modem works in float64, the sound card in float32; conversion
// happens at this boundary.
package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// Init initializes PortAudio.
func Init() error {
	return portaudio.Initialize()
}

// Terminate cleans up PortAudio.
func Terminate() error {
	return portaudio.Terminate()
}

// IO wraps the default PortAudio input and output streams at a fixed
// sample rate.
type IO struct {
	sampleRate int
	frames     int

	inputStream  *portaudio.Stream
	outputStream *portaudio.Stream
	inputBuf     []float32
	outputBuf    []float32
	mu           sync.Mutex
}

// New creates an IO working in chunks of framesPerBuffer mono samples.
func New(sampleRate, framesPerBuffer int) *IO {
	return &IO{
		sampleRate: sampleRate,
		frames:     framesPerBuffer,
		inputBuf:   make([]float32, framesPerBuffer),
		outputBuf:  make([]float32, framesPerBuffer),
	}
}

// OpenInput opens and starts the default capture stream.
func (a *IO) OpenInput() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(a.sampleRate), a.frames, a.inputBuf)
	if err != nil {
		return fmt.Errorf("open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("start input stream: %w", err)
	}
	a.inputStream = stream
	return nil
}

// OpenOutput opens and starts the default playback stream.
func (a *IO) OpenOutput() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	stream, err := portaudio.OpenDefaultStream(0, 1, float64(a.sampleRate), a.frames, a.outputBuf)
	if err != nil {
		return fmt.Errorf("open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("start output stream: %w", err)
	}
	a.outputStream = stream
	return nil
}

// Play writes the whole waveform to the output stream in chunks, padding
// the final chunk with silence.
func (a *IO) Play(samples []float64) error {
	if a.outputStream == nil {
		return fmt.Errorf("output stream not opened")
	}

	for i := 0; i < len(samples); i += a.frames {
		end := i + a.frames
		if end > len(samples) {
			end = len(samples)
		}
		for j := range a.outputBuf {
			a.outputBuf[j] = 0
		}
		for j, s := range samples[i:end] {
			a.outputBuf[j] = float32(s)
		}
		if err := a.outputStream.Write(); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
	return nil
}

// Record captures exactly n samples from the input stream.
func (a *IO) Record(n int) ([]float64, error) {
	if a.inputStream == nil {
		return nil, fmt.Errorf("input stream not opened")
	}

	result := make([]float64, 0, n)
	for len(result) < n {
		if err := a.inputStream.Read(); err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		for _, s := range a.inputBuf {
			result = append(result, float64(s))
		}
	}
	return result[:n], nil
}

// Close stops and closes any open streams.
func (a *IO) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if a.inputStream != nil {
		a.inputStream.Stop()
		if err := a.inputStream.Close(); err != nil {
			errs = append(errs, err)
		}
		a.inputStream = nil
	}
	if a.outputStream != nil {
		a.outputStream.Stop()
		if err := a.outputStream.Close(); err != nil {
			errs = append(errs, err)
		}
		a.outputStream = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
