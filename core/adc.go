// Sample acquisition: a double-buffered, free-running conversion of the
// fixed channel sequence, converted and published from the
// transfer-complete interrupt.
package core

import "tinygo.org/x/drivers"

// Sampler owns the two frame buffers handed back and forth with the
// hardware transfer, and publishes every completed frame to a TelemetryCell.
type Sampler struct {
	guard    Guard
	transfer Transfer
	bufs     [2]Frame
	spare    *Frame // the buffer not currently owned by the hardware
	cell     *TelemetryCell
	params   Params
	clock    Clock
}

var _ drivers.Sensor = (*Sampler)(nil)

// NewSampler creates a sampler publishing to cell. The first buffer is the
// one to give the hardware at start-up (see Buffer).
func NewSampler(cell *TelemetryCell, p Params, clock Clock) *Sampler {
	s := &Sampler{
		cell:   cell,
		params: p,
		clock:  clock,
	}
	s.spare = &s.bufs[1]
	return s
}

// Buffer returns the frame the target should give the hardware for the
// first pass.
func (s *Sampler) Buffer() *Frame {
	return &s.bufs[0]
}

// Install publishes the transfer handle. Until it is called every
// transfer-complete event is ignored.
func (s *Sampler) Install(t Transfer) {
	s.guard.Do(func() {
		s.transfer = t
	})
}

// OnTransferComplete is the transfer-complete interrupt handler. It swaps
// buffers, converts the completed frame, publishes it and starts the next
// pass. It never blocks and never logs.
func (s *Sampler) OnTransferComplete() {
	state := disableInterrupts()
	t := s.transfer
	if t == nil {
		restoreInterrupts(state)
		Stats.TransferMissing.Add(1)
		return
	}
	done, err := t.NextTransfer(s.spare)
	if err == nil && done != nil {
		s.spare = done
	}
	restoreInterrupts(state)

	if err != nil || done == nil {
		Stats.TransferErrors.Add(1)
		t.Start()
		return
	}

	raw := *done
	s.cell.Store(Convert(&raw, s.params.Calibration, s.params.Scales), raw)
	Stats.Frames.Add(1)
	t.Start()
}

// Trigger starts a conversion if a transfer is installed.
func (s *Sampler) Trigger() bool {
	var t Transfer
	s.guard.Do(func() {
		t = s.transfer
	})
	if t == nil {
		return false
	}
	t.Start()
	return true
}

// Latest returns the most recent snapshot without waiting or triggering.
// It returns ErrNoSample until the first frame has been converted.
func (s *Sampler) Latest() (Snapshot, error) {
	snap, ok := s.cell.Load()
	if !ok {
		return snap, ErrNoSample
	}
	return snap, nil
}

// ReadBatteryVoltage returns the latest battery voltage, then waits the
// settle delay and triggers a fresh conversion.
func (s *Sampler) ReadBatteryVoltage() float32 {
	snap, _ := s.poll()
	return snap.BatteryVoltage
}

// ReadInputVoltage returns the latest input voltage, then waits the
// settle delay and triggers a fresh conversion.
func (s *Sampler) ReadInputVoltage() float32 {
	snap, _ := s.poll()
	return snap.InputVoltage
}

// ReadCurrent returns the latest load current, then waits the settle delay
// and triggers a fresh conversion.
func (s *Sampler) ReadCurrent() float32 {
	snap, _ := s.poll()
	return snap.Current
}

func (s *Sampler) poll() (Snapshot, bool) {
	snap, ok := s.cell.Load()
	s.clock.Sleep(s.params.SettleDelay)
	s.Trigger()
	return snap, ok
}

// Update implements drivers.Sensor. A voltage measurement request starts a
// conversion of the whole sequence; the result arrives asynchronously
// through the transfer-complete interrupt.
func (s *Sampler) Update(which drivers.Measurement) error {
	if which&drivers.Voltage == 0 {
		return nil
	}
	if !s.Trigger() {
		return ErrNoTransfer
	}
	return nil
}
