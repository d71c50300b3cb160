package core

import (
	"math"
	"testing"
)

func TestMilliVoltsMonotonic(t *testing.T) {
	c := DefaultParams().Calibration

	prev := c.MilliVolts(0)
	if prev != 0 {
		t.Errorf("MilliVolts(0) = %d, want 0", prev)
	}
	for code := 1; code <= 4095; code++ {
		mv := c.MilliVolts(ADCValue(code))
		if mv < prev {
			t.Fatalf("MilliVolts(%d) = %d < MilliVolts(%d) = %d", code, mv, code-1, prev)
		}
		prev = mv
	}
	if prev != 3300 {
		t.Errorf("MilliVolts(4095) = %d, want 3300", prev)
	}
}

func TestMilliVoltsSaturates(t *testing.T) {
	c := DefaultParams().Calibration
	if got := c.MilliVolts(0xFFFF); got != 3300 {
		t.Errorf("MilliVolts(0xFFFF) = %d, want 3300", got)
	}

	var zero Calibration
	if got := zero.MilliVolts(100); got != 0 {
		t.Errorf("zero calibration gave %d", got)
	}
}

func TestConvertFrame(t *testing.T) {
	p := DefaultParams()
	want := Telemetry{BatteryVoltage: 7.4, InputVoltage: 11.0, Current: 0.5}

	f := FrameFor(want, p.Calibration, p.Scales)
	got := Convert(&f, p.Calibration, p.Scales)

	// One code step is ~0.8 mV at the pin, ~2.9 mV on the rail.
	if math.Abs(float64(got.BatteryVoltage-want.BatteryVoltage)) > 0.01 {
		t.Errorf("battery = %v, want %v", got.BatteryVoltage, want.BatteryVoltage)
	}
	if math.Abs(float64(got.InputVoltage-want.InputVoltage)) > 0.01 {
		t.Errorf("input = %v, want %v", got.InputVoltage, want.InputVoltage)
	}
	if math.Abs(float64(got.Current-want.Current)) > 0.05 {
		t.Errorf("current = %v, want %v", got.Current, want.Current)
	}
	if f[ChannelTemperature] != 0 {
		t.Errorf("temperature channel should be untouched, got %d", f[ChannelTemperature])
	}
}

func TestCurrentScale(t *testing.T) {
	s := DefaultParams().Scales
	if got := s.Amps(33); got != 1 {
		t.Errorf("Amps(33mV) = %v, want 1", got)
	}
	if got := (Scales{}).Amps(33); got != 0 {
		t.Errorf("Amps with zero gain = %v, want 0", got)
	}
}

func TestCodeClamps(t *testing.T) {
	c := DefaultParams().Calibration
	if got := c.Code(5000); got != 4095 {
		t.Errorf("Code(5000) = %d, want 4095", got)
	}
	if got := c.Code(-1); got != 0 {
		t.Errorf("Code(-1) = %d, want 0", got)
	}
	if got := c.Code(float32(math.NaN())); got != 0 {
		t.Errorf("Code(NaN) = %d, want 0", got)
	}
}
