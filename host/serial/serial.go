// Package serial opens the CDC port of a UPS running the legacy protocol.
package serial

import (
	"io"
	"time"
)

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - Mock serial (for testing)
type Port interface {
	io.ReadWriteCloser

	// Flush discards unread input.
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate. USB CDC ignores it; real smart-protocol UPSes run at 2400.
	Baud int

	// ReadTimeout bounds a single read (0 = blocking)
	ReadTimeout time.Duration
}

// DefaultConfig returns the smart-protocol line settings.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        2400,
		ReadTimeout: 500 * time.Millisecond,
	}
}
