package core

// ADCValue is a raw converter code (12 significant bits on supported parts).
type ADCValue uint16

// Channel order of the fixed sampling sequence.
const (
	ChannelTemperature = iota // internal temperature / reference
	ChannelBattery            // battery divider tap
	ChannelInput              // input (line) divider tap
	ChannelCurrent            // current-sense amplifier
	NumChannels
)

// Frame is one completed pass over the channel sequence.
type Frame [NumChannels]ADCValue

// Transfer is the free-running peripheral-to-memory conversion sequence
// provided by the target.
type Transfer interface {
	// NextTransfer hands buf to the hardware for the next pass and returns the
	// frame that just completed. Called from the transfer-complete interrupt.
	NextTransfer(buf *Frame) (*Frame, error)

	// Start begins a new conversion of the whole sequence.
	Start()
}
