package sim

import (
	"sync"
	"time"

	"upsfw/core"
)

// Transfer is a simulated converter transfer. A started conversion
// completes at the next clock tick.
type Transfer struct {
	mu      sync.Mutex
	owned   *core.Frame
	pending bool
	model   *Model
	params  core.Params
	sampler *core.Sampler
}

// NewTransfer creates a transfer feeding sampler from model.
func NewTransfer(sampler *core.Sampler, model *Model, p core.Params) *Transfer {
	return &Transfer{
		owned:   sampler.Buffer(),
		model:   model,
		params:  p,
		sampler: sampler,
	}
}

// NextTransfer implements core.Transfer.
func (t *Transfer) NextTransfer(buf *core.Frame) (*core.Frame, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	done := t.owned
	t.owned = buf
	return done, nil
}

// Start implements core.Transfer.
func (t *Transfer) Start() {
	t.mu.Lock()
	t.pending = true
	t.mu.Unlock()
}

// Tick completes a pending conversion with the model's state at now and
// raises the transfer-complete handler.
func (t *Transfer) Tick(now time.Duration) {
	t.mu.Lock()
	if !t.pending {
		t.mu.Unlock()
		return
	}
	t.pending = false
	*t.owned = core.FrameFor(t.model.At(now), t.params.Calibration, t.params.Scales)
	t.mu.Unlock()

	t.sampler.OnTransferComplete()
}
