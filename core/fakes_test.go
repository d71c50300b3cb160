package core

import (
	"errors"
	"sync"
)

// fakeTransfer models the double-buffered hardware transfer. complete()
// fills the buffer the hardware owns and raises the interrupt.
type fakeTransfer struct {
	s      *Sampler
	owned  *Frame
	next   Frame
	starts int
	fail   bool
}

func newFakeTransfer(s *Sampler) *fakeTransfer {
	return &fakeTransfer{s: s, owned: s.Buffer()}
}

func (f *fakeTransfer) NextTransfer(buf *Frame) (*Frame, error) {
	if f.fail {
		return nil, errors.New("dma busy")
	}
	done := f.owned
	f.owned = buf
	return done, nil
}

func (f *fakeTransfer) Start() { f.starts++ }

func (f *fakeTransfer) complete(fr Frame) {
	*f.owned = fr
	f.s.OnTransferComplete()
}

type fakeReportPort struct {
	mu   sync.Mutex
	sent [][]byte
	busy bool
}

func (p *fakeReportPort) SendReport(b []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.busy {
		return false
	}
	p.sent = append(p.sent, append([]byte(nil), b...))
	return true
}

func (p *fakeReportPort) reports() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]byte(nil), p.sent...)
}

type fakeLinePort struct {
	mu  sync.Mutex
	in  []byte
	out []byte
}

func (p *fakeLinePort) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.in)
}

func (p *fakeLinePort) ReadByte() (byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.in) == 0 {
		return 0, errors.New("empty")
	}
	b := p.in[0]
	p.in = p.in[1:]
	return b, nil
}

func (p *fakeLinePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out = append(p.out, b...)
	return len(b), nil
}

func (p *fakeLinePort) send(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.in = append(p.in, s...)
}

func (p *fakeLinePort) output() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return string(p.out)
}
