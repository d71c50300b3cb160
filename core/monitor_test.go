package core

import (
	"context"
	"strings"
	"testing"
	"time"
)

func newTestSystem(t *testing.T, mode ProtocolMode, p Params) (*System, *fakeTransfer, *ManualClock) {
	t.Helper()
	clock := &ManualClock{}
	sys, err := NewSystem(mode, p, clock)
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}
	ft := newFakeTransfer(sys.Sampler)
	sys.Sampler.Install(ft)
	return sys, ft, clock
}

func TestMonitorBootStatus(t *testing.T) {
	sys, _, _ := newTestSystem(t, StructuredReport, DefaultParams())
	port := &fakeReportPort{}
	sys.Reports.Install(port)

	st := sys.Monitor.Step()
	if st.Valid || st.Status != BootStatus {
		t.Errorf("state before first frame = %+v", st)
	}
	sent := port.reports()
	if len(sent) != 1 || string(sent[0]) != "\x07\x05\x00" {
		t.Errorf("boot reports = %q", sent)
	}
}

func TestMonitorCycleOrderAndPacing(t *testing.T) {
	p := DefaultParams()
	sys, ft, clock := newTestSystem(t, StructuredReport, p)
	port := &fakeReportPort{}
	sys.Reports.Install(port)

	ft.complete(FrameFor(Telemetry{BatteryVoltage: 7.6, InputVoltage: 0, Current: 1}, p.Calibration, p.Scales))

	var emitted []int
	clock.OnSleep = func(time.Duration) { emitted = append(emitted, len(port.reports())) }

	st := sys.Monitor.Step()
	if !st.Valid || !st.Status.Has(BatteryPresent|Discharging) {
		t.Fatalf("state = %+v", st)
	}

	sent := port.reports()
	if len(sent) != 3 {
		t.Fatalf("sent %d reports, want 3", len(sent))
	}
	for i, id := range []byte{0x07, 0x0C, 0x0D} {
		if sent[i][0] != id {
			t.Errorf("report %d id = 0x%02x, want 0x%02x", i, sent[i][0], id)
		}
	}

	// three settle delays, then one report before each pacing delay
	want := []int{0, 0, 0, 1, 2, 3}
	if len(emitted) != len(want) {
		t.Fatalf("sleep trace = %v, want %v", emitted, want)
	}
	for i := range want {
		if emitted[i] != want[i] {
			t.Errorf("sleep trace = %v, want %v", emitted, want)
			break
		}
	}
	if got := clock.Now(); got != 3*p.SettleDelay+3*p.ReportPeriod {
		t.Errorf("cycle took %v", got)
	}
}

func TestMonitorDeltaReporting(t *testing.T) {
	p := DefaultParams()
	sys, ft, _ := newTestSystem(t, StructuredReport, p)
	port := &fakeReportPort{}
	sys.Reports.Install(port)
	ft.complete(FrameFor(Telemetry{BatteryVoltage: 7.6, InputVoltage: 11, Current: 1}, p.Calibration, p.Scales))

	sys.Monitor.Step()
	sys.Monitor.Step()
	n := len(port.reports())

	sys.Monitor.Step()
	if got := len(port.reports()); got != n {
		t.Errorf("identical cycle sent %d reports", got-n)
	}

	// Past the heartbeat only the status is repeated.
	for i := 0; i < 3; i++ {
		sys.Monitor.Step()
	}
	sent := port.reports()[n:]
	if len(sent) != 1 || sent[0][0] != 0x07 {
		t.Errorf("heartbeat sent %q", sent)
	}
}

func TestMonitorLegacyEcho(t *testing.T) {
	p := DefaultParams()
	p.EchoTelemetry = true
	sys, ft, _ := newTestSystem(t, LegacyText, p)
	line := &fakeLinePort{}
	sys.Commands.Install(line)

	sys.Monitor.Step()
	if line.output() != "" {
		t.Errorf("echo before first frame: %q", line.output())
	}

	ft.complete(FrameFor(Telemetry{BatteryVoltage: 7.6, InputVoltage: 11, Current: 1}, p.Calibration, p.Scales))
	sys.Monitor.Step()

	out := line.output()
	if !strings.HasPrefix(out, "v_bat: 7.") || !strings.Contains(out, ", remaining seconds: ") || !strings.HasSuffix(out, "\r\n") {
		t.Errorf("echo line = %q", out)
	}
}

func TestMonitorRunStops(t *testing.T) {
	sys, _, _ := newTestSystem(t, LegacyText, DefaultParams())
	ctx, cancel := context.WithCancel(context.Background())

	cycles := 0
	sys.Monitor.OnCycle = func(State) {
		cycles++
		if cycles == 4 {
			cancel()
		}
	}
	sys.Monitor.Run(ctx)
	if cycles != 4 {
		t.Errorf("ran %d cycles, want 4", cycles)
	}
}

func TestOnUSBInterruptServicesBothPaths(t *testing.T) {
	sys, _, _ := newTestSystem(t, LegacyText, DefaultParams())
	line := &fakeLinePort{}
	sys.Commands.Install(line)

	line.send("^N")
	sys.OnUSBInterrupt()
	if !sys.Commands.Serve() {
		t.Fatal("command not pumped by the USB interrupt")
	}
	if line.output() != "ACK; ON\r\n" {
		t.Errorf("output = %q", line.output())
	}
}

func TestServeCommandsPollsWithoutInterrupt(t *testing.T) {
	sys, _, clock := newTestSystem(t, LegacyText, DefaultParams())
	line := &fakeLinePort{}
	sys.Commands.Install(line)
	line.send("Yf")

	ctx, cancel := context.WithCancel(context.Background())
	polls := 0
	clock.OnSleep = func(time.Duration) {
		polls++
		cancel()
	}
	sys.ServeCommands(ctx)

	if polls != 1 {
		t.Errorf("polls = %d, want 1", polls)
	}
	if got := line.output(); got != "SM\r\n099.0\r\n" {
		t.Errorf("output = %q", got)
	}
}

func TestSelectMode(t *testing.T) {
	if SelectMode(true) != StructuredReport || SelectMode(false) != LegacyText {
		t.Error("strap mapping")
	}
	if StructuredReport.String() != "hid" || LegacyText.String() != "cdc" {
		t.Error("mode names")
	}
}

func TestNewSystemRejectsBadParams(t *testing.T) {
	p := DefaultParams()
	p.Battery.FullVolts = p.Battery.EmptyVolts
	if _, err := NewSystem(StructuredReport, p, &ManualClock{}); err != ErrInvalidParams {
		t.Errorf("NewSystem = %v, want ErrInvalidParams", err)
	}
}

func TestHaltPanicsOnHost(t *testing.T) {
	var logged string
	SetDebugWriter(func(s string) { logged = s })
	defer SetDebugWriter(func(string) {})

	defer func() {
		if recover() == nil {
			t.Error("Halt returned")
		}
		if logged != "halt: out of memory" {
			t.Errorf("logged %q", logged)
		}
	}()
	Halt("out of memory")
}
