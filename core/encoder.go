package core

import (
	"time"

	"upsfw/protocol"
)

// ReportEncoder turns evaluated values into input reports and suppresses
// reports whose value has not changed since it was last sent. PresentStatus
// is additionally resent once per heartbeat so a host that missed a report
// converges.
type ReportEncoder struct {
	heartbeat time.Duration
	last      [3]lastSent
}

type lastSent struct {
	value uint16
	at    time.Duration
	sent  bool
}

// NewReportEncoder creates an encoder with the given status heartbeat.
func NewReportEncoder(heartbeat time.Duration) *ReportEncoder {
	return &ReportEncoder{heartbeat: heartbeat}
}

func slotOf(id protocol.ReportID) int {
	switch id {
	case protocol.IDPresentStatus:
		return 0
	case protocol.IDRemainingCapacity:
		return 1
	case protocol.IDRunTimeToEmpty:
		return 2
	}
	return -1
}

// Encode returns the report for id carrying value, and whether it should be
// sent now.
func (e *ReportEncoder) Encode(id protocol.ReportID, value uint16, now time.Duration) (protocol.Report, bool) {
	slot := slotOf(id)
	if slot < 0 {
		return protocol.Report{}, false
	}

	var r protocol.Report
	if protocol.WidthOf(id) == 1 {
		r = protocol.NewReportU8(id, uint8(value))
	} else {
		r = protocol.NewReportU16(id, value)
	}

	l := &e.last[slot]
	changed := !l.sent || l.value != r.Value()
	due := id == protocol.IDPresentStatus && e.heartbeat > 0 && now-l.at >= e.heartbeat
	if !changed && !due {
		return r, false
	}
	*l = lastSent{value: r.Value(), at: now, sent: true}
	return r, true
}

// Status encodes a PresentStatus report.
func (e *ReportEncoder) Status(st Status, now time.Duration) (protocol.Report, bool) {
	return e.Encode(protocol.IDPresentStatus, uint16(st), now)
}

// Capacity encodes a RemainingCapacity report.
func (e *ReportEncoder) Capacity(pct uint8, now time.Duration) (protocol.Report, bool) {
	return e.Encode(protocol.IDRemainingCapacity, uint16(pct), now)
}

// Runtime encodes a RunTimeToEmpty report.
func (e *ReportEncoder) Runtime(sec uint16, now time.Duration) (protocol.Report, bool) {
	return e.Encode(protocol.IDRunTimeToEmpty, sec, now)
}
