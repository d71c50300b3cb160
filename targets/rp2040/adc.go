//go:build rp2040

package main

import (
	"device/rp"
	"errors"
	"machine"
	"runtime/interrupt"

	"upsfw/core"
)

// Converter inputs. The round-robin starts at the temperature sensor and
// wraps through the external channels in ascending order, which gives the
// core.Frame channel order.
const (
	adcTempInput    = 4
	adcBatteryInput = 0 // GP26
	adcInputInput   = 1 // GP27
	adcCurrentInput = 2 // GP28

	adcRoundRobin = 1<<adcTempInput | 1<<adcBatteryInput | 1<<adcInputInput | 1<<adcCurrentInput
)

var errFIFOShort = errors.New("adc fifo short")

// adcTransfer runs the converter free-running over the channel sequence and
// raises the FIFO interrupt once a whole frame is buffered.
type adcTransfer struct {
	owned *core.Frame
}

func newADCTransfer(first *core.Frame) *adcTransfer {
	return &adcTransfer{owned: first}
}

func (a *adcTransfer) configure(onComplete func()) {
	machine.InitADC()
	for _, pin := range []machine.Pin{machine.ADC0, machine.ADC1, machine.ADC2} {
		adc := machine.ADC{Pin: pin}
		adc.Configure(machine.ADCConfig{})
	}

	rp.ADC.CS.SetBits(rp.ADC_CS_EN | rp.ADC_CS_TS_EN)
	rp.ADC.CS.ReplaceBits(adcRoundRobin<<rp.ADC_CS_RROBIN_Pos, rp.ADC_CS_RROBIN_Msk, 0)

	// Interrupt when one frame is buffered.
	rp.ADC.FCS.Set(rp.ADC_FCS_EN | core.NumChannels<<rp.ADC_FCS_THRESH_Pos)
	rp.ADC.INTE.Set(rp.ADC_INTE_FIFO)

	adcComplete = onComplete
	intr := interrupt.New(rp.IRQ_ADC_IRQ_FIFO, func(interrupt.Interrupt) {
		// Stop after this pass; Start re-arms.
		rp.ADC.CS.ClearBits(rp.ADC_CS_START_MANY)
		if adcComplete != nil {
			adcComplete()
		}
	})
	intr.SetPriority(0x80)
	intr.Enable()
}

var adcComplete func()

// NextTransfer implements core.Transfer.
func (a *adcTransfer) NextTransfer(buf *core.Frame) (*core.Frame, error) {
	level := (rp.ADC.FCS.Get() & rp.ADC_FCS_LEVEL_Msk) >> rp.ADC_FCS_LEVEL_Pos
	if level < core.NumChannels {
		return nil, errFIFOShort
	}
	for i := range a.owned {
		a.owned[i] = core.ADCValue(rp.ADC.FIFO.Get() & rp.ADC_FIFO_VAL_Msk)
	}
	done := a.owned
	a.owned = buf
	return done, nil
}

// Start implements core.Transfer: flush leftovers and run one pass from
// the first channel.
func (a *adcTransfer) Start() {
	rp.ADC.CS.ClearBits(rp.ADC_CS_START_MANY)
	for rp.ADC.CS.HasBits(rp.ADC_CS_EN) && !rp.ADC.CS.HasBits(rp.ADC_CS_READY) {
	}
	for rp.ADC.FCS.Get()&rp.ADC_FCS_EMPTY == 0 {
		rp.ADC.FIFO.Get()
	}
	rp.ADC.CS.ReplaceBits(adcTempInput<<rp.ADC_CS_AINSEL_Pos, rp.ADC_CS_AINSEL_Msk, 0)
	rp.ADC.CS.SetBits(rp.ADC_CS_START_MANY)
}
