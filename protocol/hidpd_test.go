package protocol

import (
	"bytes"
	"testing"
)

func TestReportWireFormat(t *testing.T) {
	tests := []struct {
		name   string
		report Report
		want   []byte
	}{
		{"status", NewReportU16(IDPresentStatus, 0x0C0A), []byte{0x07, 0x0A, 0x0C}},
		{"capacity", NewReportU8(IDRemainingCapacity, 87), []byte{0x0C, 87}},
		{"runtime unknown", NewReportU16(IDRunTimeToEmpty, 0xFFFF), []byte{0x0D, 0xFF, 0xFF}},
		{"runtime", NewReportU16(IDRunTimeToEmpty, 1234), []byte{0x0D, 0xD2, 0x04}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.report.AppendTo(nil)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("AppendTo = % x, want % x", got, tt.want)
			}
			if tt.report.Len() != len(tt.want) {
				t.Errorf("Len = %d, want %d", tt.report.Len(), len(tt.want))
			}
			arr := tt.report.Bytes()
			if !bytes.Equal(arr[:tt.report.Len()], tt.want) {
				t.Errorf("Bytes = % x, want % x", arr[:tt.report.Len()], tt.want)
			}
		})
	}
}

func TestParseReportStream(t *testing.T) {
	stream := []byte{0x07, 0x0C, 0x00, 0x0C, 55, 0x0D, 0x10, 0x0E}

	var got []Report
	for len(stream) > 0 {
		r, n, err := ParseReport(stream)
		if err != nil {
			t.Fatalf("ParseReport: %v", err)
		}
		got = append(got, r)
		stream = stream[n:]
	}

	if len(got) != 3 {
		t.Fatalf("Expected 3 reports, got %d", len(got))
	}
	if got[0].ID != IDPresentStatus || got[0].Value() != 0x000C {
		t.Errorf("status report = %v", got[0])
	}
	if got[1].ID != IDRemainingCapacity || got[1].Value() != 55 {
		t.Errorf("capacity report = %v", got[1])
	}
	if got[2].ID != IDRunTimeToEmpty || got[2].Value() != 0x0E10 {
		t.Errorf("runtime report = %v", got[2])
	}
}

func TestParseReportErrors(t *testing.T) {
	if _, _, err := ParseReport(nil); err != ErrShortReport {
		t.Errorf("empty: got %v", err)
	}
	if _, _, err := ParseReport([]byte{0x07, 0x01}); err != ErrShortReport {
		t.Errorf("truncated status: got %v", err)
	}
	if _, _, err := ParseReport([]byte{byte(IDVoltage), 0, 0}); err != ErrUnknownReport {
		t.Errorf("feature report id: got %v", err)
	}
}

func TestReportIDString(t *testing.T) {
	if IDRunTimeToEmpty.String() != "RunTimeToEmpty" {
		t.Errorf("got %q", IDRunTimeToEmpty.String())
	}
	if ReportID(0x7F).String() != "ReportID(0x7f)" {
		t.Errorf("got %q", ReportID(0x7F).String())
	}
}
