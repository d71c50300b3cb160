// Package config loads the host daemon configuration.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"upsfw/host/sim"
)

// Source kinds.
const (
	SourceSerial = "serial"
	SourceHIDRaw = "hidraw"
	SourceSim    = "sim"
)

type Config struct {
	Source       string        `yaml:"source"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Serial       SerialConfig  `yaml:"serial"`
	HIDRaw       HIDRawConfig  `yaml:"hidraw"`
	HTTP         HTTPConfig    `yaml:"http"`
	MQTT         MQTTConfig    `yaml:"mqtt"`
	Log          LogConfig     `yaml:"log"`
	Sim          sim.Profile   `yaml:"sim"`
}

type SerialConfig struct {
	Device      string        `yaml:"device"`
	Baud        int           `yaml:"baud"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

type HIDRawConfig struct {
	Path string `yaml:"path"`
}

type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Topic    string `yaml:"topic"`
	QoS      byte   `yaml:"qos"`
	Retained bool   `yaml:"retained"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Source:       SourceSerial,
		PollInterval: 5 * time.Second,
		Serial: SerialConfig{
			Device:      "/dev/ttyACM0",
			Baud:        2400,
			ReadTimeout: 500 * time.Millisecond,
		},
		HIDRaw: HIDRawConfig{
			Path: "/dev/hidraw0",
		},
		HTTP: HTTPConfig{
			Listen: "127.0.0.1:9105",
		},
		MQTT: MQTTConfig{
			Broker:   "tcp://localhost:1883",
			ClientID: "upsctl",
			Topic:    "ups/state",
			QoS:      1,
			Retained: true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Sim: sim.DefaultProfile(),
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config file %s", path)
	}
	return cfg, nil
}

// Validate checks the fields the daemon depends on.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceSerial:
		if c.Serial.Device == "" {
			return errors.New("serial.device is required")
		}
		if c.Serial.Baud <= 0 {
			return errors.Errorf("serial.baud must be positive, got %d", c.Serial.Baud)
		}
	case SourceHIDRaw:
		if c.HIDRaw.Path == "" {
			return errors.New("hidraw.path is required")
		}
	case SourceSim:
	default:
		return errors.Errorf("unknown source %q", c.Source)
	}
	if c.PollInterval <= 0 {
		return errors.New("poll_interval must be positive")
	}
	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" || c.MQTT.Topic == "" {
			return errors.New("mqtt.broker and mqtt.topic are required when mqtt is enabled")
		}
		if c.MQTT.QoS > 2 {
			return errors.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
		}
	}
	return nil
}
