package core

import "time"

// Params collects every hardware-contract and policy constant of the pipeline.
// Targets start from DefaultParams and override what their board differs in.
type Params struct {
	Calibration Calibration
	Scales      Scales
	Battery     BatteryParams

	// SettleDelay is the wait after each polled read before the next
	// conversion is triggered.
	SettleDelay time.Duration

	// ReportPeriod paces the monitor between report kinds.
	ReportPeriod time.Duration

	// StatusHeartbeat forces a status resend even when nothing changed.
	StatusHeartbeat time.Duration

	// EchoTelemetry makes the legacy-mode sink print a diagnostic line per cycle.
	EchoTelemetry bool
}

// DefaultParams returns the constants of the reference board: 12-bit
// converter on a 3.3 V reference, ×12/3.4 dividers, 33 mV/A current sense and
// a two-cell lithium pack.
func DefaultParams() Params {
	return Params{
		Calibration: Calibration{
			VRefMilliVolts: 3300,
			Resolution:     12,
		},
		Scales: Scales{
			DividerRatio:           12.0 / 3.4,
			CurrentMilliVoltPerAmp: 33,
		},
		Battery:         DualCellParams(),
		SettleDelay:     2 * time.Millisecond,
		ReportPeriod:    300 * time.Millisecond,
		StatusHeartbeat: 3 * time.Second,
	}
}

// Validate rejects parameter sets the pipeline cannot run with.
func (p Params) Validate() error {
	switch {
	case p.Calibration.FullScale() == 0, p.Calibration.VRefMilliVolts == 0:
		return ErrInvalidParams
	case p.Scales.DividerRatio <= 0, p.Scales.CurrentMilliVoltPerAmp <= 0:
		return ErrInvalidParams
	case p.Battery.FullVolts <= p.Battery.EmptyVolts:
		return ErrInvalidParams
	case p.Battery.CapacityWh <= 0, p.Battery.CapacityLimitPercent > 100:
		return ErrInvalidParams
	case p.ReportPeriod <= 0, p.StatusHeartbeat <= 0, p.SettleDelay < 0:
		return ErrInvalidParams
	}
	return nil
}
