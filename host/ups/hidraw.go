package ups

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"upsfw/protocol"
)

// HIDReader decodes input reports from a hidraw node. Each read returns one
// report.
type HIDReader struct {
	dev io.ReadCloser
	acc Accumulator
	buf [64]byte
	now func() time.Time
}

// OpenHID opens a hidraw device node.
func OpenHID(path string) (*HIDReader, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	return NewHIDReader(f), nil
}

// NewHIDReader decodes reports read from dev.
func NewHIDReader(dev io.ReadCloser) *HIDReader {
	return &HIDReader{dev: dev, now: time.Now}
}

// Next reads until one input report has been applied.
func (h *HIDReader) Next(ctx context.Context) (Reading, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Reading{}, err
		}
		n, err := h.dev.Read(h.buf[:])
		if err != nil {
			return Reading{}, errors.Wrap(err, "hidraw read")
		}
		rep, _, err := protocol.ParseReport(h.buf[:n])
		if err != nil {
			logrus.WithField("data", h.buf[:n]).Debugf("skipping report: %v", err)
			continue
		}
		h.acc.Apply(rep, h.now())
		return h.acc.Reading(), nil
	}
}

// Close closes the device.
func (h *HIDReader) Close() error {
	return h.dev.Close()
}
