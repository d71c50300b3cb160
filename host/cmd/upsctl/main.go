package main

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"upsfw/host/config"
	"upsfw/protocol"
)

var (
	configPath string
	logLevel   string
	sourceFlag string
	deviceFlag string
)

func setupLogger(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrap(err, "failed to parse log level")
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return nil
}

// loadConfig applies the config file (if any) and the command-line
// overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("log-level") || configPath == "" {
		cfg.Log.Level = logLevel
	}
	if sourceFlag != "" {
		cfg.Source = sourceFlag
	}
	if deviceFlag != "" {
		switch cfg.Source {
		case config.SourceHIDRaw:
			cfg.HIDRaw.Path = deviceFlag
		default:
			cfg.Serial.Device = deviceFlag
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := setupLogger(cfg.Log.Level); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	if err := NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "upsctl",
		Short:   "upsctl talks to the USB UPS firmware",
		Long:    `upsctl reads a USB UPS over its legacy serial protocol or its HID power-device reports, simulates the firmware, and runs a metrics daemon.`,
		Version: protocol.Version,

		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file")
	cmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().StringVarP(&sourceFlag, "source", "s", "", "UPS source: serial, hidraw or sim")
	cmd.PersistentFlags().StringVarP(&deviceFlag, "device", "d", "", "serial device or hidraw node")

	cmd.AddCommand(
		NewQueryCommand(),
		NewStatusCommand(),
		NewWatchCommand(),
		NewSimulateCommand(),
		NewDaemonCommand(),
		NewCommandsCommand(),
	)
	return cmd
}
