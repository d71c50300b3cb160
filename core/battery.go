package core

import (
	"math"
	"strings"
)

// Status is the battery flag set, laid out in the bit order of the
// PresentStatus report so it can be sent as-is.
type Status uint16

const (
	Charging Status = 1 << iota
	Discharging
	ACPresent
	BatteryPresent
	BelowRemainingCapacityLimit
	RemainingTimeLimitExpired
	NeedReplacement
	VoltageNotRegulated
	FullyCharged
	FullyDischarged
	ShutdownRequested
	ShutdownImminent
	CommunicationLost
	Overload
)

// BootStatus is reported until the first frame has been converted.
const BootStatus = ACPresent | Charging

var statusNames = [...]struct {
	bit  Status
	name string
}{
	{Charging, "charging"},
	{Discharging, "discharging"},
	{ACPresent, "ac_present"},
	{BatteryPresent, "battery_present"},
	{BelowRemainingCapacityLimit, "below_capacity_limit"},
	{RemainingTimeLimitExpired, "time_limit_expired"},
	{NeedReplacement, "need_replacement"},
	{VoltageNotRegulated, "voltage_not_regulated"},
	{FullyCharged, "fully_charged"},
	{FullyDischarged, "fully_discharged"},
	{ShutdownRequested, "shutdown_requested"},
	{ShutdownImminent, "shutdown_imminent"},
	{CommunicationLost, "communication_lost"},
	{Overload, "overload"},
}

// Has reports whether every bit of f is set.
func (s Status) Has(f Status) bool { return s&f == f }

// Names lists the set flags in bit order.
func (s Status) Names() []string {
	var out []string
	for _, e := range statusNames {
		if s&e.bit != 0 {
			out = append(out, e.name)
		}
	}
	return out
}

// String joins the set flags with '|'.
func (s Status) String() string {
	if s == 0 {
		return "none"
	}
	return strings.Join(s.Names(), "|")
}

// StatusFlag returns the flag with the given name.
func StatusFlag(name string) (Status, bool) {
	for _, e := range statusNames {
		if e.name == name {
			return e.bit, true
		}
	}
	return 0, false
}

// Metrics are the derived capacity and runtime estimates.
type Metrics struct {
	CapacityPercent uint8  // 0..100
	RuntimeSeconds  uint16 // RuntimeUnknown when it cannot be estimated
}

// RuntimeUnknown is reported when the load current is too small (or invalid)
// to divide by.
const RuntimeUnknown uint16 = math.MaxUint16

// minCurrent is the smallest load current a runtime estimate is computed for.
const minCurrent = 0.001

// BatteryParams are the thresholds and pack model of the state machine.
type BatteryParams struct {
	ACPresentVolts       float32 // input above this means mains present
	ChargeCompleteVolts  float32 // battery at or above this is full while on mains
	LowBatteryVolts      float32 // below: time limit expired, shutdown requested
	CriticalVolts        float32 // below: shutdown imminent
	EmptyVolts           float32 // capacity 0 %
	FullVolts            float32 // capacity 100 %
	CapacityWh           float32 // pack energy
	CapacityLimitPercent uint8   // below: remaining capacity limit flag
	OverloadAmps         float32 // above: overload flag; 0 disables
}

// DualCellParams models a 2S lithium-ion pack of 2100 mAh cells.
func DualCellParams() BatteryParams {
	return perCell(2, 2.1)
}

// SingleCellParams models a 1S lithium-ion pack of 2100 mAh cells.
func SingleCellParams() BatteryParams {
	return perCell(1, 2.1)
}

func perCell(cells float32, ampHours float32) BatteryParams {
	return BatteryParams{
		ACPresentVolts:       10.0,
		ChargeCompleteVolts:  4.1 * cells,
		LowBatteryVolts:      3.5 * cells,
		CriticalVolts:        3.2 * cells,
		EmptyVolts:           3.3 * cells,
		FullVolts:            4.15 * cells,
		CapacityWh:           3.7 * cells * ampHours,
		CapacityLimitPercent: 10,
	}
}

// Evaluate applies the decision table to one telemetry reading. Flags are
// recomputed from scratch every cycle.
func Evaluate(t Telemetry, p BatteryParams) (Status, Metrics) {
	m := Metrics{
		CapacityPercent: CapacityPercent(t.BatteryVoltage, p),
		RuntimeSeconds:  RuntimeSeconds(t.BatteryVoltage, t.Current, p),
	}

	var st Status
	if t.InputVoltage > p.ACPresentVolts {
		st |= ACPresent
		if t.BatteryVoltage < p.ChargeCompleteVolts {
			st |= Charging
		} else {
			st |= FullyCharged
		}
	} else {
		st |= BatteryPresent | Discharging
		if m.CapacityPercent == 0 {
			st |= FullyDischarged
		}
	}
	if t.BatteryVoltage < p.LowBatteryVolts {
		st |= RemainingTimeLimitExpired | ShutdownRequested
	}
	if t.BatteryVoltage < p.CriticalVolts {
		st |= ShutdownImminent
	}
	if m.CapacityPercent < p.CapacityLimitPercent {
		st |= BelowRemainingCapacityLimit
	}
	if p.OverloadAmps > 0 && t.Current > p.OverloadAmps {
		st |= Overload
	}
	return st, m
}

// CapacityPercent is the linear state of charge between EmptyVolts and
// FullVolts, clamped to [0, 100].
func CapacityPercent(v float32, p BatteryParams) uint8 {
	span := p.FullVolts - p.EmptyVolts
	if span <= 0 || v != v {
		return 0
	}
	pct := 100 * (v - p.EmptyVolts) / span
	return uint8(clamp(pct, 0, 100))
}

// RuntimeSeconds estimates time to empty at the present load. Wh / V / A is
// hours, so the result is scaled by 3600 to match the seconds unit of the
// RunTimeToEmpty report; legacy firmware that reported the bare quotient
// shows values 3600 times smaller. It never divides by a near-zero current
// and never returns more than RuntimeUnknown.
func RuntimeSeconds(v, i float32, p BatteryParams) uint16 {
	if !(i > minCurrent) || !(v > 0) {
		return RuntimeUnknown
	}
	sec := float64(p.CapacityWh) / float64(v) / float64(i) * 3600
	if math.IsNaN(sec) || sec >= float64(RuntimeUnknown) {
		return RuntimeUnknown
	}
	return uint16(clamp(sec, 0, float64(RuntimeUnknown)))
}
