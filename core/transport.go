package core

import (
	"sync"

	"upsfw/protocol"
)

// ReportPort is the HID interrupt IN endpoint.
type ReportPort interface {
	// SendReport queues one report for the host. It returns false when the
	// endpoint is still busy with the previous one.
	SendReport(b []byte) bool
}

// LinePort is the CDC serial endpoint.
type LinePort interface {
	Buffered() int
	ReadByte() (byte, error)
	Write(b []byte) (int, error)
}

// reportQueueLen holds one pending report per input report ID.
const reportQueueLen = 3

// ReportTransport delivers input reports to the IN endpoint. Pending reports
// are coalesced per ID, so the host always receives the newest value and
// the queue never grows.
type ReportTransport struct {
	guard   Guard
	port    ReportPort
	pending [reportQueueLen]protocol.Report
	n       int
	busy    bool
	again   bool // Service was called while a send was in flight
}

// Install publishes the endpoint handle.
func (t *ReportTransport) Install(p ReportPort) {
	t.guard.Do(func() {
		t.port = p
	})
}

// Push queues r and immediately tries to send. With no port installed the
// report is dropped.
func (t *ReportTransport) Push(r protocol.Report) error {
	var err error
	t.guard.Do(func() {
		if t.port == nil {
			err = ErrTransportNotReady
			return
		}
		for i := 0; i < t.n; i++ {
			if t.pending[i].ID == r.ID {
				t.pending[i] = r
				return
			}
		}
		if t.n == len(t.pending) {
			copy(t.pending[:], t.pending[1:])
			t.n--
			Stats.ReportsDropped.Add(1)
		}
		t.pending[t.n] = r
		t.n++
	})
	if err != nil {
		Stats.ReportsDropped.Add(1)
		return err
	}
	t.Service()
	return nil
}

// Service sends the oldest pending report if the endpoint accepts it. It is
// called from the USB interrupt and after every Push. A call that finds a
// send already in flight leaves a request behind, and the sender services
// the queue again once its send returns.
func (t *ReportTransport) Service() error {
	for {
		state := disableInterrupts()
		if t.busy {
			t.again = true
			restoreInterrupts(state)
			return nil
		}
		if t.port == nil || t.n == 0 {
			restoreInterrupts(state)
			return nil
		}
		t.busy = true
		t.again = false
		port, head := t.port, t.pending[0]
		restoreInterrupts(state)

		b := head.Bytes()
		sent := port.SendReport(b[:head.Len()])

		state = disableInterrupts()
		t.busy = false
		// A newer value for the same ID may have been coalesced in while
		// sending; keep it queued.
		if sent && t.n > 0 && t.pending[0] == head {
			copy(t.pending[:], t.pending[1:t.n])
			t.n--
		}
		again := t.again
		t.again = false
		restoreInterrupts(state)

		if sent {
			Stats.ReportsSent.Add(1)
		}
		if !again {
			if !sent {
				return ErrEndpointBusy
			}
			return nil
		}
	}
}

// Pending returns the number of queued reports.
func (t *ReportTransport) Pending() int {
	var n int
	t.guard.Do(func() {
		n = t.n
	})
	return n
}

// CommandServer answers legacy smart-protocol commands arriving on the CDC
// port. Pump moves inbound bytes into a FIFO; Serve parses and answers them
// from task context.
type CommandServer struct {
	guard   Guard
	port    LinePort
	rx      *protocol.FifoBuffer
	writeMu sync.Mutex
	out     []byte
}

// NewCommandServer creates a server with the standard inbound FIFO.
func NewCommandServer() *CommandServer {
	return &CommandServer{
		rx:  protocol.NewFifoBuffer(protocol.CommandFifoSize),
		out: make([]byte, 0, 64),
	}
}

// Install publishes the CDC port handle.
func (s *CommandServer) Install(p LinePort) {
	s.guard.Do(func() {
		s.port = p
	})
}

// linePort is called from the USB interrupt, so it masks inline.
func (s *CommandServer) linePort() LinePort {
	state := disableInterrupts()
	p := s.port
	restoreInterrupts(state)
	return p
}

// Pump drains the port's receive buffer into the command FIFO. Bytes that
// do not fit are counted and discarded.
func (s *CommandServer) Pump() int {
	p := s.linePort()
	if p == nil {
		return 0
	}
	n := 0
	for p.Buffered() > 0 {
		b, err := p.ReadByte()
		if err != nil {
			break
		}
		state := disableInterrupts()
		ok := s.rx.PushByte(b)
		restoreInterrupts(state)
		if !ok {
			Stats.RxOverflows.Add(1)
			continue
		}
		n++
	}
	return n
}

// Serve answers one complete command from the FIFO. It returns false when
// no complete command is buffered; a lone '^' waits for its sub-command.
func (s *CommandServer) Serve() bool {
	var (
		cmd [2]byte
		n   int
	)
	s.guard.Do(func() {
		avail := s.rx.Peek(cmd[:])
		if avail == 0 {
			return
		}
		need := protocol.CommandLen(cmd[0])
		if avail < need {
			return
		}
		s.rx.Pop(need)
		n = need
	})
	if n == 0 {
		return false
	}

	s.writeMu.Lock()
	s.out = protocol.Respond(s.out[:0], cmd[:n])
	err := s.write(s.out)
	s.writeMu.Unlock()
	if err != nil {
		DebugAsync("cdc: reply lost: " + err.Error())
	}
	Stats.CommandsServed.Add(1)
	return true
}

// WriteLine writes one CR LF terminated line to the host.
func (s *CommandServer) WriteLine(line string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.out = append(s.out[:0], line...)
	s.out = append(s.out, protocol.LineEnding...)
	return s.write(s.out)
}

func (s *CommandServer) write(b []byte) error {
	p := s.linePort()
	if p == nil {
		return ErrTransportNotReady
	}
	_, err := p.Write(b)
	return err
}
