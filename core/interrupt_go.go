//go:build !tinygo

package core

import "sync"

// irqState is a placeholder for interrupt state on regular Go
type irqState uintptr

// hostMask stands in for the interrupt mask on regular Go, where the
// "interrupt handlers" are ordinary goroutines and need real exclusion.
var hostMask sync.Mutex

// disableInterrupts takes the host mask
func disableInterrupts() irqState {
	hostMask.Lock()
	return 0
}

// restoreInterrupts releases the host mask
func restoreInterrupts(state irqState) {
	hostMask.Unlock()
}

// halt panics on regular Go so tests can observe a fatal fault.
func halt(reason string) {
	panic("core: halt: " + reason)
}
