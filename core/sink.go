package core

import "strconv"

// State is the result of one evaluation cycle.
type State struct {
	Telemetry
	Status  Status
	Metrics Metrics

	// Valid is false until the first frame has been converted. Status then
	// carries BootStatus and Metrics are meaningless.
	Valid bool
}

// Sink is the protocol personality chosen at boot. The monitor calls the
// three methods in order once per cycle.
type Sink interface {
	Status(s *State)
	Capacity(s *State)
	Runtime(s *State)
}

// ReportSink emits structured power-device reports.
type ReportSink struct {
	enc   *ReportEncoder
	tr    *ReportTransport
	clock Clock
}

// NewReportSink creates a sink writing through tr.
func NewReportSink(enc *ReportEncoder, tr *ReportTransport, clock Clock) *ReportSink {
	return &ReportSink{enc: enc, tr: tr, clock: clock}
}

func (k *ReportSink) Status(s *State) {
	if r, ok := k.enc.Status(s.Status, k.clock.Now()); ok {
		k.tr.Push(r)
	}
}

func (k *ReportSink) Capacity(s *State) {
	if !s.Valid {
		return
	}
	if r, ok := k.enc.Capacity(s.Metrics.CapacityPercent, k.clock.Now()); ok {
		k.tr.Push(r)
	}
}

func (k *ReportSink) Runtime(s *State) {
	if !s.Valid {
		return
	}
	if r, ok := k.enc.Runtime(s.Metrics.RuntimeSeconds, k.clock.Now()); ok {
		k.tr.Push(r)
	}
}

// TextSink is the legacy-mode personality. The host polls the command
// table, so nothing is pushed; with Echo set one diagnostic line is written
// per cycle.
type TextSink struct {
	srv  *CommandServer
	echo bool
	line []byte
}

// NewTextSink creates a legacy sink.
func NewTextSink(srv *CommandServer, echo bool) *TextSink {
	return &TextSink{srv: srv, echo: echo, line: make([]byte, 0, 96)}
}

func (k *TextSink) Status(s *State)   {}
func (k *TextSink) Capacity(s *State) {}

func (k *TextSink) Runtime(s *State) {
	if !k.echo || !s.Valid {
		return
	}
	k.line = AppendTelemetryLine(k.line[:0], s)
	if err := k.srv.WriteLine(string(k.line)); err != nil {
		DebugAsync("cdc: telemetry line lost: " + err.Error())
	}
}

// AppendTelemetryLine formats the diagnostic telemetry line.
func AppendTelemetryLine(dst []byte, s *State) []byte {
	dst = append(dst, "v_bat: "...)
	dst = strconv.AppendFloat(dst, float64(s.BatteryVoltage), 'f', -1, 32)
	dst = append(dst, ", v_in: "...)
	dst = strconv.AppendFloat(dst, float64(s.InputVoltage), 'f', -1, 32)
	dst = append(dst, ", current: "...)
	dst = strconv.AppendFloat(dst, float64(s.Current), 'f', -1, 32)
	dst = append(dst, ", remaining seconds: "...)
	dst = strconv.AppendUint(dst, uint64(s.Metrics.RuntimeSeconds), 10)
	return dst
}
