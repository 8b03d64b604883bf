package audio

import (
	"fmt"
	"io"

	"github.com/gordonklaus/portaudio"
)

// DeviceInfo holds audio device information.
type DeviceInfo struct {
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
	IsDefault         bool
}

// ListDevices returns all available audio devices.
func ListDevices() ([]DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	var defaultInName, defaultOutName string
	if d, err := portaudio.DefaultInputDevice(); err == nil {
		defaultInName = d.Name
	}
	if d, err := portaudio.DefaultOutputDevice(); err == nil {
		defaultOutName = d.Name
	}

	var result []DeviceInfo
	for _, d := range devices {
		result = append(result, DeviceInfo{
			Name:              d.Name,
			MaxInputChannels:  d.MaxInputChannels,
			MaxOutputChannels: d.MaxOutputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
			IsDefault:         d.Name == defaultInName || d.Name == defaultOutName,
		})
	}
	return result, nil
}

// HasInputDevice returns true if a default input device is available.
func HasInputDevice() bool {
	_, err := portaudio.DefaultInputDevice()
	return err == nil
}

// HasOutputDevice returns true if a default output device is available.
func HasOutputDevice() bool {
	_, err := portaudio.DefaultOutputDevice()
	return err == nil
}

// PrintDevices writes a listing of all audio devices to w.
func PrintDevices(w io.Writer) error {
	devices, err := ListDevices()
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Audio devices:")
	if len(devices) == 0 {
		fmt.Fprintln(w, "  (no devices found)")
		return nil
	}
	for i, d := range devices {
		marker := ""
		if d.IsDefault {
			marker = " [default]"
		}
		fmt.Fprintf(w, "  %d: %s (in:%d out:%d rate:%.0f)%s\n",
			i, d.Name, d.MaxInputChannels, d.MaxOutputChannels, d.DefaultSampleRate, marker)
	}

	if !HasInputDevice() {
		fmt.Fprintln(w, "  warning: no default input device, receiving is unavailable")
	}
	if !HasOutputDevice() {
		fmt.Fprintln(w, "  warning: no default output device, transmitting is unavailable")
	}
	return nil
}
