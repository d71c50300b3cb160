package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"upsfw/protocol"
)

func TestPushWithoutPortDrops(t *testing.T) {
	Stats.Reset()
	var tr ReportTransport

	err := tr.Push(protocol.NewReportU8(protocol.IDRemainingCapacity, 50))
	if err != ErrTransportNotReady {
		t.Errorf("Push = %v, want ErrTransportNotReady", err)
	}
	if tr.Pending() != 0 {
		t.Errorf("dropped report was queued")
	}
	if Stats.ReportsDropped.Load() != 1 {
		t.Errorf("ReportsDropped = %d", Stats.ReportsDropped.Load())
	}
}

func TestPushSendsImmediately(t *testing.T) {
	Stats.Reset()
	var tr ReportTransport
	port := &fakeReportPort{}
	tr.Install(port)

	if err := tr.Push(protocol.NewReportU16(protocol.IDPresentStatus, uint16(ACPresent|Charging))); err != nil {
		t.Fatalf("Push: %v", err)
	}
	sent := port.reports()
	if len(sent) != 1 || string(sent[0]) != "\x07\x05\x00" {
		t.Errorf("sent %q", sent)
	}
	if tr.Pending() != 0 || Stats.ReportsSent.Load() != 1 {
		t.Errorf("pending=%d sent=%d", tr.Pending(), Stats.ReportsSent.Load())
	}
}

func TestBusyEndpointCoalesces(t *testing.T) {
	var tr ReportTransport
	port := &fakeReportPort{busy: true}
	tr.Install(port)

	tr.Push(protocol.NewReportU8(protocol.IDRemainingCapacity, 60))
	tr.Push(protocol.NewReportU16(protocol.IDRunTimeToEmpty, 1000))
	tr.Push(protocol.NewReportU8(protocol.IDRemainingCapacity, 59))

	if tr.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", tr.Pending())
	}

	port.busy = false
	for tr.Pending() > 0 {
		if err := tr.Service(); err != nil {
			t.Fatalf("Service: %v", err)
		}
	}

	sent := port.reports()
	if len(sent) != 2 {
		t.Fatalf("sent %d reports, want 2", len(sent))
	}
	if sent[0][0] != 0x0C || sent[0][1] != 59 {
		t.Errorf("capacity not coalesced to newest value: % x", sent[0])
	}
	if sent[1][0] != 0x0D {
		t.Errorf("second report = % x", sent[1])
	}
}

func TestServiceBusyKeepsReport(t *testing.T) {
	var tr ReportTransport
	port := &fakeReportPort{busy: true}
	tr.Install(port)
	tr.Push(protocol.NewReportU8(protocol.IDRemainingCapacity, 10))

	if err := tr.Service(); err != ErrEndpointBusy {
		t.Errorf("Service = %v, want ErrEndpointBusy", err)
	}
	if tr.Pending() != 1 {
		t.Errorf("report lost while endpoint busy")
	}
}

// irqDuringSendPort refuses the first report and, while that send is in
// flight, frees the endpoint and raises the completion interrupt the way
// the IN-complete handler does.
type irqDuringSendPort struct {
	tr      *ReportTransport
	raised  bool
	written [][]byte
}

func (p *irqDuringSendPort) SendReport(b []byte) bool {
	if !p.raised {
		p.raised = true
		p.tr.Service()
		return false
	}
	p.written = append(p.written, append([]byte(nil), b...))
	return true
}

func TestServiceDuringSendIsNotLost(t *testing.T) {
	Stats.Reset()
	var tr ReportTransport
	port := &irqDuringSendPort{tr: &tr}
	tr.Install(port)

	err := tr.Push(protocol.NewReportU8(protocol.IDRemainingCapacity, 42))
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if tr.Pending() != 0 {
		t.Errorf("pending = %d after the endpoint was freed, want 0", tr.Pending())
	}
	if len(port.written) != 1 || port.written[0][1] != 42 {
		t.Errorf("written = % x", port.written)
	}
	if Stats.ReportsSent.Load() != 1 {
		t.Errorf("ReportsSent = %d", Stats.ReportsSent.Load())
	}
}

// failingLinePort accepts input but every write fails.
type failingLinePort struct {
	fakeLinePort
}

func (p *failingLinePort) Write(b []byte) (int, error) {
	return 0, errors.New("endpoint stalled")
}

func TestServeReportsLostReply(t *testing.T) {
	lines := make(chan string, 4)
	SetDebugWriter(func(s string) { lines <- s })
	SetDebugEnabled(true)
	InitAsyncDebug()
	defer func() {
		SetDebugEnabled(false)
		SetDebugWriter(func(string) {})
	}()

	srv := NewCommandServer()
	port := &failingLinePort{}
	srv.Install(port)
	port.send("Y")
	srv.Pump()
	if !srv.Serve() {
		t.Fatal("command not served")
	}

	select {
	case got := <-lines:
		if !strings.Contains(got, "endpoint stalled") {
			t.Errorf("debug line = %q", got)
		}
	case <-time.After(time.Second):
		t.Error("lost reply was not reported")
	}
}

func TestCommandServer(t *testing.T) {
	Stats.Reset()
	srv := NewCommandServer()
	port := &fakeLinePort{}
	srv.Install(port)

	port.send("Y^")
	srv.Pump()
	for srv.Serve() {
	}
	if got := port.output(); got != "SM\r\n" {
		t.Errorf("output = %q, want only the first answer", got)
	}

	port.send("AH")
	srv.Pump()
	for srv.Serve() {
	}
	want := "SM\r\nSMART-UPS 700\r\nUNKNOWN COMMAND\r\n"
	if got := port.output(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if Stats.CommandsServed.Load() != 3 {
		t.Errorf("CommandsServed = %d", Stats.CommandsServed.Load())
	}
}

func TestCommandServerOverflow(t *testing.T) {
	Stats.Reset()
	srv := NewCommandServer()
	port := &fakeLinePort{}
	srv.Install(port)

	big := make([]byte, protocol.CommandFifoSize+5)
	for i := range big {
		big[i] = 'Y'
	}
	port.send(string(big))
	srv.Pump()

	if got := Stats.RxOverflows.Load(); got != 6 {
		t.Errorf("RxOverflows = %d, want 6", got)
	}
}

func TestWriteLineWithoutPort(t *testing.T) {
	srv := NewCommandServer()
	if err := srv.WriteLine("x"); err != ErrTransportNotReady {
		t.Errorf("WriteLine = %v", err)
	}
}
