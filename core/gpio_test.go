package core

import (
	"errors"
	"testing"
)

// MockGPIODriver is a test implementation of GPIODriver
type MockGPIODriver struct {
	pins       map[GPIOPin]bool
	configured map[GPIOPin]bool
	err        error
}

func NewMockGPIODriver() *MockGPIODriver {
	return &MockGPIODriver{
		pins:       make(map[GPIOPin]bool),
		configured: make(map[GPIOPin]bool),
	}
}

func (m *MockGPIODriver) ConfigureInputPullDown(pin GPIOPin) error {
	if m.err != nil {
		return m.err
	}
	m.configured[pin] = true
	return nil
}

func (m *MockGPIODriver) ReadPin(pin GPIOPin) bool {
	return m.pins[pin]
}

func TestReadStrapMode(t *testing.T) {
	defer SetGPIODriver(nil)

	mockDriver := NewMockGPIODriver()
	SetGPIODriver(mockDriver)

	mockDriver.pins[15] = true
	if got := ReadStrapMode(15); got != StructuredReport {
		t.Errorf("strap high: expected %v, got %v", StructuredReport, got)
	}
	if !mockDriver.configured[15] {
		t.Errorf("strap pin was not configured as input")
	}

	mockDriver.pins[15] = false
	if got := ReadStrapMode(15); got != LegacyText {
		t.Errorf("strap low: expected %v, got %v", LegacyText, got)
	}
}

func TestReadStrapModeFallback(t *testing.T) {
	defer SetGPIODriver(nil)

	SetGPIODriver(nil)
	if got := ReadStrapMode(15); got != LegacyText {
		t.Errorf("no driver: expected %v, got %v", LegacyText, got)
	}

	mockDriver := NewMockGPIODriver()
	mockDriver.pins[15] = true
	mockDriver.err = errors.New("pin reserved")
	SetGPIODriver(mockDriver)
	if got := ReadStrapMode(15); got != LegacyText {
		t.Errorf("configure error: expected %v, got %v", LegacyText, got)
	}
}
