package exporter

import (
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"

	"upsfw/host/config"
)

// Publisher sends state snapshots to a message broker.
type Publisher interface {
	Publish(payload []byte) error
	Close()
}

// MQTTPublisher publishes to one topic on an MQTT broker.
type MQTTPublisher struct {
	client   mqtt.Client
	topic    string
	qos      byte
	retained bool
}

// NewMQTTPublisher connects to the broker in cfg.
func NewMQTTPublisher(cfg config.MQTTConfig) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, errors.Wrapf(token.Error(), "failed to connect to MQTT broker %s", cfg.Broker)
	}

	return &MQTTPublisher{
		client:   client,
		topic:    cfg.Topic,
		qos:      cfg.QoS,
		retained: cfg.Retained,
	}, nil
}

// Publish sends payload and waits for the broker to acknowledge it.
func (p *MQTTPublisher) Publish(payload []byte) error {
	token := p.client.Publish(p.topic, p.qos, p.retained, payload)
	if !token.WaitTimeout(10 * time.Second) {
		return errors.Errorf("publish to %s timed out", p.topic)
	}
	if err := token.Error(); err != nil {
		return errors.Wrapf(err, "failed to publish to topic %s", p.topic)
	}
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
