package core

// Telemetry is the set of calibrated readings from one completed frame.
type Telemetry struct {
	BatteryVoltage float32 // volts
	InputVoltage   float32 // volts
	Current        float32 // amperes
}

// Snapshot is a copy of the telemetry cell taken under its guard.
type Snapshot struct {
	Telemetry
	Raw Frame  // raw codes, including the temperature channel
	Seq uint32 // number of frames stored since boot
}

// TelemetryCell is the single-slot store between the acquisition interrupt
// (writer) and the tasks (readers). The last writer wins; nothing is queued.
type TelemetryCell struct {
	guard Guard
	snap  Snapshot
	valid bool
}

// Store publishes a new reading. It runs in interrupt context, so it masks
// inline.
func (c *TelemetryCell) Store(t Telemetry, raw Frame) {
	state := disableInterrupts()
	c.snap.Telemetry = t
	c.snap.Raw = raw
	c.snap.Seq++
	c.valid = true
	restoreInterrupts(state)
}

// Load copies out the latest reading. ok is false until the first frame has
// been stored.
func (c *TelemetryCell) Load() (snap Snapshot, ok bool) {
	c.guard.Do(func() {
		snap, ok = c.snap, c.valid
	})
	return snap, ok
}
