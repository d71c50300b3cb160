package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upsctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
source: hidraw
poll_interval: 2s
hidraw:
  path: /dev/hidraw3
mqtt:
  enabled: true
  topic: home/ups
sim:
  load_amps: 1.5
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SourceHIDRaw, cfg.Source)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, "/dev/hidraw3", cfg.HIDRaw.Path)
	assert.Equal(t, "home/ups", cfg.MQTT.Topic)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker, "unset keys keep defaults")
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Device)
	assert.Equal(t, float32(1.5), cfg.Sim.LoadAmps)
	assert.Equal(t, float32(11), cfg.Sim.MainsVolts)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"unknown source": "source: usb\n",
		"zero baud":      "serial:\n  baud: 0\n",
		"bad qos":        "mqtt:\n  enabled: true\n  qos: 3\n",
		"zero interval":  "poll_interval: 0s\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Cause(err)))
}
