// Package wave reads and writes the modem waveform as mono 16-bit PCM
// WAV files. Samples are float64 in [-1, 1] inside the modem and int16
// on disk.
package wave

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	bitDepth  = 16
	pcmFormat = 1
)

// Write stores samples at the given rate. Samples outside [-1, 1] are
// clipped.
func Write(path string, samples []float64, sampleRate int) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	enc := wav.NewEncoder(file, sampleRate, bitDepth, 1, pcmFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: bitDepth,
		Data:           make([]int, len(samples)),
	}
	for i, s := range samples {
		buf.Data[i] = quantize(s)
	}

	if err := enc.Write(buf); err != nil {
		file.Close()
		return fmt.Errorf("failed to write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		file.Close()
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return file.Close()
}

// Read loads a 16-bit PCM WAV file and returns the samples and the
// sample rate. Multichannel files contribute only their first channel.
func Read(path string) ([]float64, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, 0, fmt.Errorf("%s is not a valid WAV file", path)
	}
	if err := decoder.FwdToPCM(); err != nil {
		return nil, 0, fmt.Errorf("failed to seek to PCM data: %w", err)
	}
	if decoder.BitDepth != bitDepth {
		return nil, 0, fmt.Errorf("%s is %d bit, only %d bit is supported", path, decoder.BitDepth, bitDepth)
	}

	chans := int(decoder.NumChans)
	if chans < 1 {
		return nil, 0, fmt.Errorf("%s declares %d channels", path, chans)
	}

	var samples []float64
	buf := &audio.IntBuffer{Format: decoder.Format(), Data: make([]int, 4096)}
	for {
		n, err := decoder.PCMBuffer(buf)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read samples: %w", err)
		}
		if n == 0 {
			break
		}
		for i := 0; i < n; i += chans {
			samples = append(samples, float64(buf.Data[i])/32768.0)
		}
		// PCMBuffer shrinks the slice on the last partial read.
		buf.Data = buf.Data[:cap(buf.Data)]
	}

	return samples, int(decoder.SampleRate), nil
}

func quantize(s float64) int {
	v := math.Round(s * 32767)
	if v > 32767 {
		v = 32767
	}
	if v < -32768 {
		v = -32768
	}
	return int(v)
}
