package core

import (
	"context"
	"time"
)

// commandPollInterval paces the legacy command task.
const commandPollInterval = 10 * time.Millisecond

// System wires the pipeline for one protocol mode. Targets create it once
// at boot, install the hardware handles and start the tasks.
type System struct {
	Mode   ProtocolMode
	Params Params
	Clock  Clock

	Cell     TelemetryCell
	Sampler  *Sampler
	Encoder  *ReportEncoder
	Reports  *ReportTransport
	Commands *CommandServer
	Sink     Sink
	Monitor  *Monitor
}

// NewSystem validates p and builds the pipeline.
func NewSystem(mode ProtocolMode, p Params, clock Clock) (*System, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s := &System{
		Mode:     mode,
		Params:   p,
		Clock:    clock,
		Encoder:  NewReportEncoder(p.StatusHeartbeat),
		Reports:  &ReportTransport{},
		Commands: NewCommandServer(),
	}
	s.Sampler = NewSampler(&s.Cell, p, clock)

	switch mode {
	case StructuredReport:
		s.Sink = NewReportSink(s.Encoder, s.Reports, clock)
	default:
		s.Sink = NewTextSink(s.Commands, p.EchoTelemetry)
	}
	s.Monitor = NewMonitor(s.Sampler, p, s.Sink, clock)
	return s, nil
}

// OnUSBInterrupt services the USB class on every transport interrupt,
// whichever mode is active.
func (s *System) OnUSBInterrupt() {
	s.Reports.Service()
	s.Commands.Pump()
}

// ServeCommands is the legacy command task: it answers buffered commands
// and sleeps between polls.
func (s *System) ServeCommands(ctx context.Context) {
	for ctx.Err() == nil {
		s.Commands.Pump()
		for s.Commands.Serve() {
		}
		s.Clock.Sleep(commandPollInterval)
	}
}

// Run starts the tasks for the selected mode and blocks running the monitor.
func (s *System) Run(ctx context.Context) {
	if s.Mode == LegacyText {
		go s.ServeCommands(ctx)
	}
	s.Monitor.Run(ctx)
}
