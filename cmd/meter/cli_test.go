package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "sound-meter.yaml")
	require.NoError(t, os.WriteFile(file, []byte(body), 0o600))
	return file
}

func runConfigCmd(t *testing.T, args ...string) map[string]any {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs(append([]string{"config"}, args...))
	require.NoError(t, root.Execute())

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &doc))
	return doc
}

func TestConfigCommandFileAndFlags(t *testing.T) {
	file := writeConfig(t, "mode: digits\nled:\n  port: /dev/ttyACM0\n")

	doc := runConfigCmd(t, "--config", file, "--poll-interval", "50ms", "--source", "tone")

	assert.Equal(t, "digits", doc["mode"])
	assert.Equal(t, "50ms", doc["poll_interval"])

	audio := doc["audio"].(map[string]any)
	assert.Equal(t, "tone", audio["source"])
	led := doc["led"].(map[string]any)
	assert.Equal(t, "/dev/ttyACM0", led["port"])
}

func TestConfigCommandFlagOverridesFile(t *testing.T) {
	file := writeConfig(t, "mode: digits\n")

	doc := runConfigCmd(t, "--config", file, "--mode", "meter")
	assert.Equal(t, "meter", doc["mode"])
}

func TestConfigCommandRejectsInvalidValues(t *testing.T) {
	file := writeConfig(t, "audio:\n  source: microphone\n")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"config", "--config", file})
	assert.Error(t, root.Execute())
}

func TestBuildDeviceChoices(t *testing.T) {
	devices := []*portaudio.DeviceInfo{
		{Name: "a", MaxInputChannels: 2, DefaultSampleRate: 48000},
		{Name: "b", MaxInputChannels: 1, DefaultSampleRate: 44100, DefaultLowInputLatency: time.Millisecond},
	}

	choices := buildDeviceChoices(devices, 1)
	require.Len(t, choices, 2)
	assert.False(t, choices[0].Default)
	assert.True(t, choices[1].Default)
	assert.Equal(t, 1, choices[1].Channels)
	assert.Equal(t, time.Millisecond, choices[1].Latency)

	assert.False(t, buildDeviceChoices(devices, -1)[0].Default)
}

func TestSelectDeviceByIndex(t *testing.T) {
	devices := []*portaudio.DeviceInfo{{Name: "a"}, {Name: "b"}}

	dev, err := selectDevice(devices, 1)
	require.NoError(t, err)
	assert.Equal(t, "b", dev.Name)

	_, err = selectDevice(devices, 2)
	assert.Error(t, err)

	_, err = selectDevice(nil, 0)
	assert.Error(t, err)
}

func TestPrintDevices(t *testing.T) {
	devices := []*portaudio.DeviceInfo{{
		Name:                   "USB Mic",
		MaxInputChannels:       1,
		DefaultSampleRate:      48000,
		DefaultLowInputLatency: 5 * time.Millisecond,
	}}

	var out bytes.Buffer
	printDevices(&out, devices, nil)

	assert.Contains(t, out.String(), "[0] USB Mic · 48000Hz · in:1 · latency:5.0ms")
	assert.Contains(t, out.String(), "Serial ports:\n  (none)")
}
