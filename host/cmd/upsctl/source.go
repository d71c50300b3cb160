package main

import (
	"github.com/pkg/errors"

	"upsfw/core"
	"upsfw/host/config"
	"upsfw/host/serial"
	"upsfw/host/sim"
	"upsfw/host/ups"
)

// openSource opens the UPS named by cfg.
func openSource(cfg *config.Config) (ups.Source, error) {
	switch cfg.Source {
	case config.SourceSerial:
		client, err := openLegacy(cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.SourceHIDRaw:
		return ups.OpenHID(cfg.HIDRaw.Path)
	case config.SourceSim:
		return sim.NewSource(core.DefaultParams(), cfg.Sim, cfg.PollInterval)
	}
	return nil, errors.Errorf("unknown source %q", cfg.Source)
}

func openLegacy(cfg *config.Config) (*ups.LegacyClient, error) {
	port, err := serial.Open(&serial.Config{
		Device:      cfg.Serial.Device,
		Baud:        cfg.Serial.Baud,
		ReadTimeout: cfg.Serial.ReadTimeout,
	})
	if err != nil {
		return nil, err
	}
	if err := port.Flush(); err != nil {
		port.Close()
		return nil, err
	}
	return ups.NewLegacyClient(port, cfg.PollInterval), nil
}
