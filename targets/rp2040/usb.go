//go:build rp2040

package main

import (
	"machine"
	"machine/usb/hid"
	"runtime/interrupt"

	"upsfw/core"
)

// powerDevice is the HID interrupt IN endpoint. The power-device report
// descriptor is supplied with the USB configuration.
type powerDevice struct {
	guard core.Guard
	busy  bool
	sys   *core.System
}

// SendReport implements core.ReportPort.
func (d *powerDevice) SendReport(b []byte) bool {
	var claimed bool
	d.guard.Do(func() {
		if !d.busy {
			d.busy = true
			claimed = true
		}
	})
	if !claimed {
		return false
	}
	hid.SendUSBPacket(b)
	return true
}

// TxHandler runs on every IN transfer completion. A report refused while
// the previous one was in flight is retried by the transport itself.
func (d *powerDevice) TxHandler() bool {
	state := interrupt.Disable()
	d.busy = false
	interrupt.Restore(state)
	d.sys.OnUSBInterrupt()
	return d.busy
}

// RxHandler ignores host output reports.
func (d *powerDevice) RxHandler(b []byte) bool {
	return false
}

// initUSB installs the endpoint for the selected mode.
func initUSB(sys *core.System) {
	switch sys.Mode {
	case core.StructuredReport:
		dev := &powerDevice{sys: sys}
		hid.SetHandler(dev)
		sys.Reports.Install(dev)
	case core.LegacyText:
		// USBCDC fills its own receive ring from the USB interrupt and offers
		// no receive hook, so inbound commands are pumped by the command
		// task's 10 ms poll.
		machine.Serial.Configure(machine.UARTConfig{})
		sys.Commands.Install(machine.Serial)
	}
}

// initDebug routes debug output to UART0 (GP0/GP1).
func initDebug() {
	uart := machine.UART0
	err := uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})
	if err != nil {
		return
	}
	core.SetDebugWriter(func(s string) {
		uart.Write([]byte(s))
		uart.Write([]byte("\r\n"))
	})
	core.SetDebugEnabled(debug)
	core.InitAsyncDebug()
}
