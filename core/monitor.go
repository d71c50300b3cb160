package core

import (
	"context"
	"strconv"
)

// Monitor is the evaluation task: it samples the telemetry, runs the
// battery state machine and hands the result to the protocol sink.
type Monitor struct {
	sampler *Sampler
	params  Params
	sink    Sink
	clock   Clock

	// OnCycle, if set, receives every evaluated state.
	OnCycle func(State)

	lastMissing uint32
	lastErrors  uint32
}

// NewMonitor creates the evaluation task.
func NewMonitor(s *Sampler, p Params, sink Sink, clock Clock) *Monitor {
	return &Monitor{
		sampler: s,
		params:  p,
		sink:    sink,
		clock:   clock,
	}
}

// Evaluate reads the three channels through the polling accessors and runs
// the state machine. Before the first frame it returns the boot status.
func (m *Monitor) Evaluate() State {
	_, err := m.sampler.Latest()

	var st State
	st.Current = m.sampler.ReadCurrent()
	st.BatteryVoltage = m.sampler.ReadBatteryVoltage()
	st.InputVoltage = m.sampler.ReadInputVoltage()

	if err != nil {
		st.Status = BootStatus
		return st
	}
	st.Valid = true
	st.Status, st.Metrics = Evaluate(st.Telemetry, m.params.Battery)
	return st
}

// Step runs one cycle: evaluate, then emit status, capacity and runtime,
// pausing one report period after each.
func (m *Monitor) Step() State {
	st := m.Evaluate()
	m.checkFaults()

	m.sink.Status(&st)
	m.clock.Sleep(m.params.ReportPeriod)
	m.sink.Capacity(&st)
	m.clock.Sleep(m.params.ReportPeriod)
	m.sink.Runtime(&st)
	m.clock.Sleep(m.params.ReportPeriod)

	if m.OnCycle != nil {
		m.OnCycle(st)
	}
	return st
}

// Run loops Step until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	for ctx.Err() == nil {
		m.Step()
	}
}

func (m *Monitor) checkFaults() {
	if n := Stats.TransferMissing.Load(); n != m.lastMissing {
		if m.lastMissing == 0 {
			DebugPrintln("adc: transfer complete with no transfer installed")
		}
		m.lastMissing = n
	}
	if n := Stats.TransferErrors.Load(); n != m.lastErrors {
		DebugPrintln("adc: buffer swap failed x" + strconv.FormatUint(uint64(n-m.lastErrors), 10))
		m.lastErrors = n
	}
}
