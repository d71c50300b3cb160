// Package ups reads UPS state on the host, either by polling the legacy
// smart protocol over serial or by decoding the power-device report stream
// from hidraw.
package ups

import (
	"context"
	"time"

	"upsfw/core"
	"upsfw/protocol"
)

// Reading is the host's view of the UPS.
type Reading struct {
	Time            time.Time   `json:"time"`
	Status          core.Status `json:"status"`
	Flags           []string    `json:"flags"`
	CapacityPercent uint8       `json:"capacity_percent"`
	RuntimeSeconds  uint16      `json:"runtime_seconds"`
	RuntimeKnown    bool        `json:"runtime_known"`

	// Telemetry is only available from the legacy protocol.
	BatteryVoltage float32 `json:"battery_voltage,omitempty"`
	InputVoltage   float32 `json:"input_voltage,omitempty"`
	Current        float32 `json:"current,omitempty"`
}

// OnBattery reports whether mains is absent.
func (r Reading) OnBattery() bool {
	return !r.Status.Has(core.ACPresent)
}

// Source produces readings until it is closed.
type Source interface {
	// Next blocks until a new reading is available.
	Next(ctx context.Context) (Reading, error)
	Close() error
}

// Accumulator folds individual input reports into a Reading.
type Accumulator struct {
	r Reading
}

// Apply updates the reading with one report.
func (a *Accumulator) Apply(rep protocol.Report, now time.Time) {
	switch rep.ID {
	case protocol.IDPresentStatus:
		a.r.Status = core.Status(rep.Value())
		a.r.Flags = a.r.Status.Names()
	case protocol.IDRemainingCapacity:
		a.r.CapacityPercent = uint8(rep.Value())
	case protocol.IDRunTimeToEmpty:
		a.r.RuntimeSeconds = rep.Value()
		a.r.RuntimeKnown = rep.Value() != core.RuntimeUnknown
	default:
		return
	}
	a.r.Time = now
}

// Reading returns a copy of the accumulated state.
func (a *Accumulator) Reading() Reading {
	r := a.r
	r.Flags = append([]string(nil), a.r.Flags...)
	return r
}
