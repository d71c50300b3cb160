package core

import "sync/atomic"

// Counters for the silent paths: nothing here is escalated, it is only
// counted so a task can report it.
type Counters struct {
	Frames          atomic.Uint32 // frames converted and stored
	TransferMissing atomic.Uint32 // transfer-complete with no transfer installed
	TransferErrors  atomic.Uint32 // buffer swap refused by the hardware
	ReportsSent     atomic.Uint32
	ReportsDropped  atomic.Uint32 // no port installed, or queue overflow
	CommandsServed  atomic.Uint32
	RxOverflows     atomic.Uint32 // inbound command bytes lost to a full FIFO
}

// Stats is the firmware-wide counter set.
var Stats Counters

// Reset zeroes every counter.
func (c *Counters) Reset() {
	c.Frames.Store(0)
	c.TransferMissing.Store(0)
	c.TransferErrors.Store(0)
	c.ReportsSent.Store(0)
	c.ReportsDropped.Store(0)
	c.CommandsServed.Store(0)
	c.RxOverflows.Store(0)
}
