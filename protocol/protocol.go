// Package protocol holds the host-facing wire formats of the UPS: the USB
// power-device report framing, the legacy smart-protocol command table and
// the byte FIFO used for inbound command bytes. It is shared by the firmware
// and the host tools.
package protocol

// Version represents the firmware version
const Version = "0.1.0"

// Protocol constants
const (
	// ReportMaxLen is the longest report on the wire (ID + u16 payload).
	ReportMaxLen = 3

	// CommandFifoSize is the capacity of the inbound command byte FIFO.
	CommandFifoSize = 64

	// LineEnding terminates every legacy-protocol response.
	LineEnding = "\r\n"
)
