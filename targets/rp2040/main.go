//go:build rp2040

package main

import (
	"context"

	"upsfw/core"
)

// debug enables debug output on UART0.
const debug = false

func main() {
	initDebug()

	mode := readMode()
	core.DebugPrintln("ups: mode " + mode.String())

	params := core.DefaultParams()
	sys, err := core.NewSystem(mode, params, core.SystemClock())
	if err != nil {
		core.Halt("params: " + err.Error())
	}

	initUSB(sys)

	adc := newADCTransfer(sys.Sampler.Buffer())
	adc.configure(sys.Sampler.OnTransferComplete)
	sys.Sampler.Install(adc)
	adc.Start()

	sys.Run(context.Background())
}
