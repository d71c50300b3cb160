package core

import "errors"

var (
	// ErrNoTransfer means the acquisition transfer has not been installed.
	ErrNoTransfer = errors.New("transfer not installed")

	// ErrTransportNotReady means the USB class handle is absent.
	ErrTransportNotReady = errors.New("transport not ready")

	// ErrEndpointBusy means the IN endpoint refused a report; it stays queued.
	ErrEndpointBusy = errors.New("endpoint busy")

	// ErrNoSample means no frame has been converted since boot.
	ErrNoSample = errors.New("no sample yet")

	// ErrInvalidParams is returned by Params.Validate.
	ErrInvalidParams = errors.New("invalid params")
)

// Halt stops the firmware after an unrecoverable fault (allocation
// exhaustion, corrupted configuration, hardware that failed to start).
// The reason is written even when debug output is disabled. It does not return.
func Halt(reason string) {
	if debugPrintln != nil {
		debugPrintln("halt: " + reason)
	}
	halt(reason)
}
