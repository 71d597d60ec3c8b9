package main

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
	"github.com/rotisserie/eris"

	"github.com/cybre/matrix-sound-meter/internal/ui"
)

// selectDevice returns the requested input device, or asks for one when
// requested is negative.
func selectDevice(devices []*portaudio.DeviceInfo, requested int) (*portaudio.DeviceInfo, error) {
	if len(devices) == 0 {
		return nil, eris.New("no input devices available")
	}

	if requested >= 0 {
		if requested >= len(devices) {
			return nil, eris.Errorf("invalid device index %d", requested)
		}
		return devices[requested], nil
	}

	choice, err := ui.RunDeviceSetup(buildDeviceChoices(devices, defaultInputIndex(devices)))
	if err != nil && !eris.Is(err, ui.ErrNoInteractiveTTY) {
		return nil, err
	}
	return devices[choice], nil
}

// defaultInputIndex locates the host's default input device in devices, or
// returns -1.
func defaultInputIndex(devices []*portaudio.DeviceInfo) int {
	def, err := portaudio.DefaultInputDevice()
	if err != nil || def == nil {
		return -1
	}
	for i, dev := range devices {
		if dev == def || (dev.Name == def.Name && dev.HostApi == def.HostApi) {
			return i
		}
	}
	return -1
}

func buildDeviceChoices(devices []*portaudio.DeviceInfo, defaultIndex int) []ui.DeviceChoice {
	choices := make([]ui.DeviceChoice, len(devices))
	for i, dev := range devices {
		choices[i] = ui.DeviceChoice{
			Name:       dev.Name,
			SampleRate: dev.DefaultSampleRate,
			Channels:   dev.MaxInputChannels,
			Latency:    dev.DefaultLowInputLatency,
			Default:    i == defaultIndex,
		}
	}
	return choices
}

func describeDevice(i int, dev *portaudio.DeviceInfo) string {
	return fmt.Sprintf(
		"[%d] %s · %.0fHz · in:%d · latency:%.1fms",
		i,
		dev.Name,
		dev.DefaultSampleRate,
		dev.MaxInputChannels,
		dev.DefaultLowInputLatency.Seconds()*1000,
	)
}
