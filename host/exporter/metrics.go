// Package exporter polls a UPS and republishes its state as Prometheus
// metrics, a JSON status endpoint and MQTT messages.
package exporter

import (
	"github.com/prometheus/client_golang/prometheus"

	"upsfw/core"
	"upsfw/host/ups"
)

// Metrics holds the exporter's collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	BatteryVoltage prometheus.Gauge
	InputVoltage   prometheus.Gauge
	Current        prometheus.Gauge
	Capacity       prometheus.Gauge
	Runtime        prometheus.Gauge
	OnBattery      prometheus.Gauge
	Status         *prometheus.GaugeVec
	LastUpdate     prometheus.Gauge
	PollErrors     prometheus.Counter
	Publishes      *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		BatteryVoltage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ups_battery_voltage_volts",
			Help: "Battery voltage.",
		}),
		InputVoltage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ups_input_voltage_volts",
			Help: "Input (mains adapter) voltage.",
		}),
		Current: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ups_load_current_amperes",
			Help: "Load current.",
		}),
		Capacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ups_remaining_capacity_percent",
			Help: "Remaining battery capacity.",
		}),
		Runtime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ups_runtime_to_empty_seconds",
			Help: "Estimated runtime to empty; -1 when unknown.",
		}),
		OnBattery: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ups_on_battery",
			Help: "1 when mains is absent.",
		}),
		Status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ups_status",
			Help: "Power-device status flags.",
		}, []string{"flag"}),
		LastUpdate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ups_last_update_timestamp_seconds",
			Help: "Time of the last reading.",
		}),
		PollErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ups_poll_errors_total",
			Help: "Failed reads from the UPS.",
		}),
		Publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ups_mqtt_publishes_total",
			Help: "MQTT publishes by result.",
		}, []string{"result"}),
	}

	m.Registry.MustRegister(
		m.BatteryVoltage,
		m.InputVoltage,
		m.Current,
		m.Capacity,
		m.Runtime,
		m.OnBattery,
		m.Status,
		m.LastUpdate,
		m.PollErrors,
		m.Publishes,
	)
	return m
}

// Observe records one reading.
func (m *Metrics) Observe(r ups.Reading) {
	m.BatteryVoltage.Set(float64(r.BatteryVoltage))
	m.InputVoltage.Set(float64(r.InputVoltage))
	m.Current.Set(float64(r.Current))
	m.Capacity.Set(float64(r.CapacityPercent))
	if r.RuntimeKnown {
		m.Runtime.Set(float64(r.RuntimeSeconds))
	} else {
		m.Runtime.Set(-1)
	}
	if r.OnBattery() {
		m.OnBattery.Set(1)
	} else {
		m.OnBattery.Set(0)
	}
	for bit := core.Status(1); bit <= core.Overload; bit <<= 1 {
		v := 0.0
		if r.Status.Has(bit) {
			v = 1
		}
		m.Status.WithLabelValues(bit.String()).Set(v)
	}
	if !r.Time.IsZero() {
		m.LastUpdate.Set(float64(r.Time.UnixNano()) / 1e9)
	}
}
