package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ReportID identifies a power-device feature/input report.
type ReportID uint8

// Report IDs of the power-device report descriptor. Only PresentStatus,
// RemainingCapacity and RunTimeToEmpty are sent as input reports; the rest
// are static feature reports answered by the descriptor.
const (
	IDProduct                ReportID = 0x01
	IDSerialNumber           ReportID = 0x02
	IDManufacturer           ReportID = 0x03
	IDRechargeable           ReportID = 0x06
	IDPresentStatus          ReportID = 0x07
	IDRemainingTimeLimit     ReportID = 0x08
	IDManufactureDate        ReportID = 0x09
	IDConfigVoltage          ReportID = 0x0A
	IDVoltage                ReportID = 0x0B
	IDRemainingCapacity      ReportID = 0x0C
	IDRunTimeToEmpty         ReportID = 0x0D
	IDFullChargeCapacity     ReportID = 0x0E
	IDWarningCapacityLimit   ReportID = 0x0F
	IDCapacityGranularity1   ReportID = 0x10
	IDRemainingCapacityLimit ReportID = 0x11
	IDDelayBeforeShutdown    ReportID = 0x12
	IDDelayBeforeReboot      ReportID = 0x13
	IDAudibleAlarmControl    ReportID = 0x14
	IDCurrent                ReportID = 0x15
	IDCapacityMode           ReportID = 0x16
	IDDesignCapacity         ReportID = 0x17
	IDCapacityGranularity2   ReportID = 0x18
	IDAverageTimeToFull      ReportID = 0x1A
	IDAverageCurrent         ReportID = 0x1B
	IDAverageTimeToEmpty     ReportID = 0x1C
	IDDeviceChemistry        ReportID = 0x1F
	IDOEMInformation         ReportID = 0x20
)

var reportNames = map[ReportID]string{
	IDProduct:                "iProduct",
	IDSerialNumber:           "iSerialNumber",
	IDManufacturer:           "iManufacturer",
	IDRechargeable:           "Rechargeable",
	IDPresentStatus:          "PresentStatus",
	IDRemainingTimeLimit:     "RemainingTimeLimit",
	IDManufactureDate:        "ManufactureDate",
	IDConfigVoltage:          "ConfigVoltage",
	IDVoltage:                "Voltage",
	IDRemainingCapacity:      "RemainingCapacity",
	IDRunTimeToEmpty:         "RunTimeToEmpty",
	IDFullChargeCapacity:     "FullChargeCapacity",
	IDWarningCapacityLimit:   "WarningCapacityLimit",
	IDCapacityGranularity1:   "CapacityGranularity1",
	IDRemainingCapacityLimit: "RemainingCapacityLimit",
	IDDelayBeforeShutdown:    "DelayBeforeShutdown",
	IDDelayBeforeReboot:      "DelayBeforeReboot",
	IDAudibleAlarmControl:    "AudibleAlarmControl",
	IDCurrent:                "Current",
	IDCapacityMode:           "CapacityMode",
	IDDesignCapacity:         "DesignCapacity",
	IDCapacityGranularity2:   "CapacityGranularity2",
	IDAverageTimeToFull:      "AverageTimeToFull",
	IDAverageCurrent:         "AverageCurrent",
	IDAverageTimeToEmpty:     "AverageTimeToEmpty",
	IDDeviceChemistry:        "iDeviceChemistry",
	IDOEMInformation:         "iOEMInformation",
}

func (id ReportID) String() string {
	if n, ok := reportNames[id]; ok {
		return n
	}
	return fmt.Sprintf("ReportID(0x%02x)", uint8(id))
}

// WidthOf returns the payload width in bytes of the input reports the
// firmware sends, or 0 for IDs it never sends.
func WidthOf(id ReportID) int {
	switch id {
	case IDRemainingCapacity:
		return 1
	case IDPresentStatus, IDRunTimeToEmpty:
		return 2
	}
	return 0
}

var (
	// ErrShortReport means the buffer is shorter than the ID's payload.
	ErrShortReport = errors.New("short report")

	// ErrUnknownReport means the ID is not an input report.
	ErrUnknownReport = errors.New("unknown report id")
)

// Report is one input report: an ID byte followed by a little-endian
// payload of one or two bytes. It is a value type and never allocates.
type Report struct {
	ID    ReportID
	Width uint8
	value uint16
}

// NewReportU8 builds a one-byte report.
func NewReportU8(id ReportID, v uint8) Report {
	return Report{ID: id, Width: 1, value: uint16(v)}
}

// NewReportU16 builds a two-byte report.
func NewReportU16(id ReportID, v uint16) Report {
	return Report{ID: id, Width: 2, value: v}
}

// Value returns the payload.
func (r Report) Value() uint16 {
	return r.value
}

// Len returns the encoded length including the ID byte.
func (r Report) Len() int {
	return 1 + int(r.Width)
}

// AppendTo appends the wire form of r to dst.
func (r Report) AppendTo(dst []byte) []byte {
	dst = append(dst, byte(r.ID))
	if r.Width == 1 {
		return append(dst, byte(r.value))
	}
	return binary.LittleEndian.AppendUint16(dst, r.value)
}

// Bytes returns the wire form of r in a fixed array, for callers that must
// not allocate. Only the first Len() bytes are meaningful.
func (r Report) Bytes() [ReportMaxLen]byte {
	var b [ReportMaxLen]byte
	b[0] = byte(r.ID)
	b[1] = byte(r.value)
	if r.Width == 2 {
		b[2] = byte(r.value >> 8)
	}
	return b
}

func (r Report) String() string {
	return fmt.Sprintf("%s=%d", r.ID, r.value)
}

// ParseReport decodes one input report from the front of buf and returns it
// together with the number of bytes consumed.
func ParseReport(buf []byte) (Report, int, error) {
	if len(buf) == 0 {
		return Report{}, 0, ErrShortReport
	}
	id := ReportID(buf[0])
	w := WidthOf(id)
	if w == 0 {
		return Report{}, 0, ErrUnknownReport
	}
	if len(buf) < 1+w {
		return Report{}, 0, ErrShortReport
	}
	if w == 1 {
		return NewReportU8(id, buf[1]), 2, nil
	}
	return NewReportU16(id, binary.LittleEndian.Uint16(buf[1:])), 3, nil
}
