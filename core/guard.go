package core

// Guard is the scoped critical section for one group of values shared between
// task and interrupt context. Every Guard masks interrupts globally; separate
// Guards only name separate lock sites.
//
// Guards must not nest: on regular Go the mask is a plain mutex.
type Guard struct{}

// Do runs fn with interrupts masked. fn must not block, sleep or allocate.
func (g *Guard) Do(fn func()) {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	fn()
}
