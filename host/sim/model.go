// Package sim runs the firmware pipeline on a workstation against a
// simulated battery, supply and converter.
package sim

import (
	"time"

	"upsfw/core"
)

// Outage is a mains failure window.
type Outage struct {
	At  time.Duration `yaml:"at"`
	For time.Duration `yaml:"for"`
}

// Profile describes the simulated supply, pack and load.
type Profile struct {
	MainsVolts         float32  `yaml:"mains_volts"`
	StartBatteryVolts  float32  `yaml:"start_battery_volts"`
	MaxBatteryVolts    float32  `yaml:"max_battery_volts"`
	LoadAmps           float32  `yaml:"load_amps"`
	ChargeVoltsPerHour float32  `yaml:"charge_volts_per_hour"`
	DrainVoltsPerAh    float32  `yaml:"drain_volts_per_ah"`
	Outages            []Outage `yaml:"outages"`
}

// DefaultProfile is a 2S pack on an 11 V input rail with one long outage.
func DefaultProfile() Profile {
	return Profile{
		MainsVolts:         11,
		StartBatteryVolts:  7.8,
		MaxBatteryVolts:    8.3,
		LoadAmps:           0.8,
		ChargeVoltsPerHour: 0.5,
		DrainVoltsPerAh:    0.8,
		Outages: []Outage{
			{At: 10 * time.Second, For: 2 * time.Hour},
		},
	}
}

func (p Profile) mainsAt(now time.Duration) bool {
	for _, o := range p.Outages {
		if now >= o.At && now < o.At+o.For {
			return false
		}
	}
	return true
}

// Model integrates the pack voltage over simulated time.
type Model struct {
	p    Profile
	vbat float32
	last time.Duration
}

// NewModel starts the pack at the profile's start voltage.
func NewModel(p Profile) *Model {
	return &Model{p: p, vbat: p.StartBatteryVolts}
}

// At advances the model to now and returns what the converter would see.
func (m *Model) At(now time.Duration) core.Telemetry {
	if now > m.last {
		hours := float32((now - m.last).Hours())
		if m.p.mainsAt(now) {
			m.vbat += m.p.ChargeVoltsPerHour * hours
			if m.vbat > m.p.MaxBatteryVolts {
				m.vbat = m.p.MaxBatteryVolts
			}
		} else {
			m.vbat -= m.p.DrainVoltsPerAh * m.p.LoadAmps * hours
			if m.vbat < 0 {
				m.vbat = 0
			}
		}
		m.last = now
	}

	t := core.Telemetry{BatteryVoltage: m.vbat, Current: m.p.LoadAmps}
	if m.p.mainsAt(now) {
		t.InputVoltage = m.p.MainsVolts
	}
	return t
}
