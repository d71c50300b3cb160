package exporter

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"upsfw/host/ups"
)

// Daemon reads a UPS source and fans its readings out.
type Daemon struct {
	src     ups.Source
	metrics *Metrics
	pub     Publisher
	log     logrus.FieldLogger

	// StaleAfter marks the health check failed when no reading arrived
	// for this long. Zero disables it.
	StaleAfter time.Duration

	// RetryDelay is the pause after a failed read.
	RetryDelay time.Duration

	mu     sync.RWMutex
	latest ups.Reading
	have   bool
	now    func() time.Time
}

// NewDaemon creates a daemon. pub may be nil.
func NewDaemon(src ups.Source, m *Metrics, pub Publisher, log logrus.FieldLogger) *Daemon {
	return &Daemon{
		src:        src,
		metrics:    m,
		pub:        pub,
		log:        log,
		RetryDelay: time.Second,
		now:        time.Now,
	}
}

// Latest returns the most recent reading.
func (d *Daemon) Latest() (ups.Reading, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.latest, d.have
}

// Run reads the source until ctx is done. Read errors are logged and
// counted, then retried after RetryDelay.
func (d *Daemon) Run(ctx context.Context) error {
	var lastStatus string
	for {
		r, err := d.src.Next(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			d.metrics.PollErrors.Inc()
			d.log.WithError(err).Warn("failed to read UPS")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(d.RetryDelay):
			}
			continue
		}

		d.handle(r)
		if s := r.Status.String(); s != lastStatus {
			d.log.WithFields(logrus.Fields{
				"status":   s,
				"capacity": r.CapacityPercent,
				"runtime":  r.RuntimeSeconds,
			}).Info("UPS status changed")
			lastStatus = s
		}
	}
}

func (d *Daemon) handle(r ups.Reading) {
	d.mu.Lock()
	d.latest, d.have = r, true
	d.mu.Unlock()

	d.metrics.Observe(r)
	if d.pub == nil {
		return
	}

	payload, err := json.Marshal(r)
	if err != nil {
		d.log.WithError(err).Error("failed to encode reading")
		return
	}
	if err := d.pub.Publish(payload); err != nil {
		d.metrics.Publishes.WithLabelValues("error").Inc()
		d.log.WithError(err).Warn("failed to publish reading")
		return
	}
	d.metrics.Publishes.WithLabelValues("ok").Inc()
}

func (d *Daemon) stale(t time.Time) bool {
	return d.StaleAfter > 0 && d.now().Sub(t) > d.StaleAfter
}
