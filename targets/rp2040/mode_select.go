//go:build rp2040

package main

import (
	"machine"
	"time"

	"upsfw/core"
)

// strapPin selects the protocol at boot: high for HID, low for CDC.
const strapPin = core.GPIOPin(machine.GP15)

// rpGPIO is the board's core.GPIODriver.
type rpGPIO struct{}

func (rpGPIO) ConfigureInputPullDown(pin core.GPIOPin) error {
	machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	// let the pull settle before the first read
	time.Sleep(time.Millisecond)
	return nil
}

func (rpGPIO) ReadPin(pin core.GPIOPin) bool {
	return machine.Pin(pin).Get()
}

// readMode samples the boot strap once, before any task starts.
func readMode() core.ProtocolMode {
	core.SetGPIODriver(rpGPIO{})
	return core.ReadStrapMode(strapPin)
}
