package core

// ProtocolMode is the host-facing personality, fixed at boot.
type ProtocolMode uint8

const (
	// StructuredReport sends USB power-device input reports.
	StructuredReport ProtocolMode = iota

	// LegacyText answers smart-protocol commands over CDC serial.
	LegacyText
)

// SelectMode maps the boot strap pin to a mode. The pin is pulled high for
// the HID build.
func SelectMode(strapHigh bool) ProtocolMode {
	if strapHigh {
		return StructuredReport
	}
	return LegacyText
}

func (m ProtocolMode) String() string {
	switch m {
	case StructuredReport:
		return "hid"
	case LegacyText:
		return "cdc"
	}
	return "unknown"
}
