package sim

import (
	"context"
	"time"

	"upsfw/core"
	"upsfw/host/ups"
)

// Source exposes a structured-report simulator as a ups.Source. Each Next
// runs one monitor cycle and decodes the reports it produced.
type Source struct {
	sim      *Simulator
	acc      ups.Accumulator
	interval time.Duration
	started  bool
	epoch    time.Time
}

var _ ups.Source = (*Source)(nil)

// NewSource creates a simulated UPS. interval paces Next in wall-clock time;
// zero runs as fast as possible.
func NewSource(p core.Params, prof Profile, interval time.Duration) (*Source, error) {
	s, err := New(core.StructuredReport, p, prof)
	if err != nil {
		return nil, err
	}
	return &Source{sim: s, interval: interval, epoch: time.Now()}, nil
}

// Simulator returns the underlying simulator.
func (s *Source) Simulator() *Simulator {
	return s.sim
}

// Next implements ups.Source.
func (s *Source) Next(ctx context.Context) (ups.Reading, error) {
	if s.started && s.interval > 0 {
		t := time.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return ups.Reading{}, ctx.Err()
		case <-t.C:
		}
	}
	s.started = true
	if err := ctx.Err(); err != nil {
		return ups.Reading{}, err
	}

	st := s.sim.Step()
	for _, e := range s.sim.Drain() {
		if e.Line == "" {
			s.acc.Apply(e.Report, s.epoch.Add(e.At))
		}
	}
	r := s.acc.Reading()
	if st.Valid {
		r.BatteryVoltage = st.BatteryVoltage
		r.InputVoltage = st.InputVoltage
		r.Current = st.Current
	}
	return r, nil
}

// Close implements ups.Source.
func (s *Source) Close() error {
	return nil
}
