package core

// Calibration describes the converter's reference curve.
type Calibration struct {
	VRefMilliVolts uint32 // full-scale reference voltage
	Resolution     uint8  // converter resolution in bits
}

// FullScale returns the largest code the converter produces.
func (c Calibration) FullScale() uint32 {
	if c.Resolution == 0 || c.Resolution > 16 {
		return 0
	}
	return 1<<c.Resolution - 1
}

// MilliVolts maps a raw code to millivolts at the converter pin. Codes above
// full scale saturate, so the mapping is monotonic over the whole input range.
func (c Calibration) MilliVolts(code ADCValue) uint32 {
	fs := c.FullScale()
	if fs == 0 {
		return 0
	}
	v := uint32(code)
	if v > fs {
		v = fs
	}
	return v * c.VRefMilliVolts / fs
}

// Scales are the front-end constants between the converter pin and the
// physical quantity.
type Scales struct {
	// DividerRatio is rail volts per pin volt for the voltage dividers.
	DividerRatio float32

	// CurrentMilliVoltPerAmp is the current-sense amplifier gain.
	CurrentMilliVoltPerAmp float32
}

// Volts converts a divider tap reading to the rail voltage.
func (s Scales) Volts(mV uint32) float32 {
	return float32(mV) / 1000 * s.DividerRatio
}

// Amps converts a current-sense reading to amperes.
func (s Scales) Amps(mV uint32) float32 {
	if s.CurrentMilliVoltPerAmp <= 0 {
		return 0
	}
	return float32(mV) / s.CurrentMilliVoltPerAmp
}

// Convert maps one completed frame to calibrated telemetry. It is pure and
// bounded, so it is safe to call from the transfer-complete handler.
func Convert(f *Frame, c Calibration, s Scales) Telemetry {
	return Telemetry{
		BatteryVoltage: s.Volts(c.MilliVolts(f[ChannelBattery])),
		InputVoltage:   s.Volts(c.MilliVolts(f[ChannelInput])),
		Current:        s.Amps(c.MilliVolts(f[ChannelCurrent])),
	}
}

// Code is the inverse of MilliVolts: the nearest code for a pin voltage,
// clamped to the converter range.
func (c Calibration) Code(mV float32) ADCValue {
	fs := c.FullScale()
	if fs == 0 || c.VRefMilliVolts == 0 || !(mV > 0) {
		return 0
	}
	code := mV*float32(fs)/float32(c.VRefMilliVolts) + 0.5
	return ADCValue(clamp(code, 0, float32(fs)))
}

// FrameFor builds the raw frame that converts back to t. Simulators use it
// to feed the acquisition path.
func FrameFor(t Telemetry, c Calibration, s Scales) Frame {
	var f Frame
	if s.DividerRatio > 0 {
		f[ChannelBattery] = c.Code(t.BatteryVoltage * 1000 / s.DividerRatio)
		f[ChannelInput] = c.Code(t.InputVoltage * 1000 / s.DividerRatio)
	}
	f[ChannelCurrent] = c.Code(t.Current * s.CurrentMilliVoltPerAmp)
	return f
}
