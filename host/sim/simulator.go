package sim

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"upsfw/core"
	"upsfw/protocol"
)

// Event is one thing the simulated device sent to the host.
type Event struct {
	At     time.Duration
	Report protocol.Report
	Line   string
}

// Simulator is the real pipeline wired to a simulated converter and USB.
type Simulator struct {
	Sys      *core.System
	Clock    *core.ManualClock
	Model    *Model
	Transfer *Transfer

	mu     sync.Mutex
	events []Event
	line   lineBuffer
}

// New builds a simulator for mode. The first conversion completes at the
// first clock tick.
func New(mode core.ProtocolMode, p core.Params, prof Profile) (*Simulator, error) {
	clock := &core.ManualClock{}
	sys, err := core.NewSystem(mode, p, clock)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build pipeline")
	}

	s := &Simulator{
		Sys:   sys,
		Clock: clock,
		Model: NewModel(prof),
	}
	s.line.sim = s
	s.Transfer = NewTransfer(sys.Sampler, s.Model, p)
	sys.Sampler.Install(s.Transfer)
	clock.OnSleep = s.Transfer.Tick

	switch mode {
	case core.StructuredReport:
		sys.Reports.Install(reportPort{s})
	case core.LegacyText:
		sys.Commands.Install(&s.line)
	}
	s.Transfer.Start()
	return s, nil
}

// Step runs one monitor cycle.
func (s *Simulator) Step() core.State {
	return s.Sys.Monitor.Step()
}

// Advance moves simulated time forward without running the monitor.
func (s *Simulator) Advance(d time.Duration) {
	s.Clock.Sleep(d)
}

// Drain returns and clears the events recorded since the last call.
func (s *Simulator) Drain() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev := s.events
	s.events = nil
	return ev
}

// Command sends a legacy command and returns everything the device wrote
// in response.
func (s *Simulator) Command(cmd string) []Event {
	s.line.feed(cmd)
	s.Sys.OnUSBInterrupt()
	for s.Sys.Commands.Serve() {
	}
	return s.Drain()
}

func (s *Simulator) record(e Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
}

type reportPort struct{ s *Simulator }

func (p reportPort) SendReport(b []byte) bool {
	r, _, err := protocol.ParseReport(b)
	if err != nil {
		return true
	}
	p.s.record(Event{At: p.s.Clock.Now(), Report: r})
	return true
}

// lineBuffer is the simulated CDC port.
type lineBuffer struct {
	sim     *Simulator
	mu      sync.Mutex
	in      []byte
	partial []byte
}

func (l *lineBuffer) feed(s string) {
	l.mu.Lock()
	l.in = append(l.in, s...)
	l.mu.Unlock()
}

func (l *lineBuffer) Buffered() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.in)
}

func (l *lineBuffer) ReadByte() (byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.in) == 0 {
		return 0, errors.New("no data")
	}
	b := l.in[0]
	l.in = l.in[1:]
	return b, nil
}

// Write splits output into CR LF terminated lines.
func (l *lineBuffer) Write(b []byte) (int, error) {
	l.mu.Lock()
	l.partial = append(l.partial, b...)
	var lines []string
	for {
		i := indexCRLF(l.partial)
		if i < 0 {
			break
		}
		lines = append(lines, string(l.partial[:i]))
		l.partial = l.partial[i+2:]
	}
	l.mu.Unlock()

	for _, line := range lines {
		l.sim.record(Event{At: l.sim.Clock.Now(), Line: line})
	}
	return len(b), nil
}

func indexCRLF(b []byte) int {
	for i := 0; i+1 < len(b); i++ {
		if b[i] == '\r' && b[i+1] == '\n' {
			return i
		}
	}
	return -1
}
