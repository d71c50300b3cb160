package core

import (
	"testing"
	"time"

	"upsfw/protocol"
)

func TestEncoderSuppressesUnchanged(t *testing.T) {
	e := NewReportEncoder(3 * time.Second)

	if _, ok := e.Capacity(80, 0); !ok {
		t.Fatal("first capacity report must be sent")
	}
	for i := 1; i < 10; i++ {
		if _, ok := e.Capacity(80, time.Duration(i)*time.Second); ok {
			t.Errorf("unchanged capacity resent at %ds", i)
		}
	}
	r, ok := e.Capacity(79, 10*time.Second)
	if !ok || r.Value() != 79 || r.Width != 1 {
		t.Errorf("changed capacity: ok=%v report=%v", ok, r)
	}
}

func TestEncoderStatusHeartbeat(t *testing.T) {
	e := NewReportEncoder(3 * time.Second)
	st := ACPresent | Charging

	var sentAt []time.Duration
	for now := time.Duration(0); now <= 10*time.Second; now += 900 * time.Millisecond {
		if _, ok := e.Status(st, now); ok {
			sentAt = append(sentAt, now)
		}
	}

	want := []time.Duration{0, 3600 * time.Millisecond, 7200 * time.Millisecond}
	if len(sentAt) != len(want) {
		t.Fatalf("status sent at %v, want %v", sentAt, want)
	}
	for i := range want {
		if sentAt[i] != want[i] {
			t.Errorf("send %d at %v, want %v", i, sentAt[i], want[i])
		}
	}
}

func TestEncoderRuntimeWidth(t *testing.T) {
	e := NewReportEncoder(time.Second)
	r, ok := e.Runtime(RuntimeUnknown, 0)
	if !ok {
		t.Fatal("runtime not sent")
	}
	b := r.AppendTo(nil)
	if len(b) != 3 || b[0] != byte(protocol.IDRunTimeToEmpty) || b[1] != 0xFF || b[2] != 0xFF {
		t.Errorf("runtime report = % x", b)
	}
}

func TestEncoderIgnoresFeatureIDs(t *testing.T) {
	e := NewReportEncoder(time.Second)
	if _, ok := e.Encode(protocol.IDVoltage, 1, 0); ok {
		t.Error("feature report encoded as input report")
	}
}
