package notify

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Ensure MQTT implements Notifier.
var _ Notifier = (*MQTT)(nil)

// MQTT publishes notifications to an MQTT broker. Each kind maps to
// <prefix>/<kind>; binary payloads are published as-is, vibration
// patterns as JSON.
type MQTT struct {
	client mqtt.Client
	prefix string
}

// NewMQTT connects to the broker and returns the notifier.
func NewMQTT(broker, clientID, topicPrefix string) (*MQTT, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", broker, token.Error())
	}

	return &MQTT{
		client: client,
		prefix: topicPrefix,
	}, nil
}

func (m *MQTT) publish(topic string, payload []byte) error {
	token := m.client.Publish(topic, 1, false, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, token.Error())
	}
	return nil
}

func (m *MQTT) Send(kind Kind, payload []byte) error {
	return m.publish(m.prefix+"/"+kind.String(), payload)
}

func (m *MQTT) SendVibration(v Vibration) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal vibration pattern: %w", err)
	}
	return m.publish(m.prefix+"/"+SetVibration.String(), payload)
}

// Close disconnects from the broker.
func (m *MQTT) Close() {
	m.client.Disconnect(250)
}
