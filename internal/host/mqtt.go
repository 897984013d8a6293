package host

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// MQTTHost connects Source and Notifier to a real MQTT broker.
type MQTTHost struct {
	client paho.Client
}

// NewMQTTHost connects to the given broker.
func NewMQTTHost(broker, clientID string) (*MQTTHost, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &MQTTHost{client: client}, nil
}

// mqttSubscription unsubscribes its topic on cancel.
type mqttSubscription struct {
	client    paho.Client
	topic     string
	cancelled bool
}

func (s *mqttSubscription) Cancel() {
	if s.cancelled {
		return
	}
	s.cancelled = true
	token := s.client.Unsubscribe(s.topic)
	if !token.WaitTimeout(5 * time.Second) {
		log.WithField("topic", s.topic).Warn("Unsubscribe timeout")
	}
}

func (h *MQTTHost) subscribe(topic string, handler paho.MessageHandler) (Subscription, error) {
	token := h.client.Subscribe(topic, 0, handler)
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("subscribe timeout on %s", topic)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return &mqttSubscription{client: h.client, topic: topic}, nil
}

// ConsumeBikes delivers bike roster updates.
func (h *MQTTHost) ConsumeBikes(fn func([]Bike)) (Subscription, error) {
	return h.subscribe(TopicBikes, func(_ paho.Client, msg paho.Message) {
		var bikes []Bike
		if err := json.Unmarshal(msg.Payload(), &bikes); err != nil {
			log.WithError(err).Error("Failed to decode bike roster")
			return
		}
		fn(bikes)
	})
}

// ConsumeProfile delivers active ride profile changes.
func (h *MQTTHost) ConsumeProfile(fn func(RideProfile)) (Subscription, error) {
	return h.subscribe(TopicProfile, func(_ paho.Client, msg paho.Message) {
		var profile RideProfile
		if err := json.Unmarshal(msg.Payload(), &profile); err != nil {
			log.WithError(err).Error("Failed to decode ride profile")
			return
		}
		fn(profile)
	})
}

// ConsumeRideState delivers ride-state transitions.
func (h *MQTTHost) ConsumeRideState(fn func(RideState)) (Subscription, error) {
	return h.subscribe(TopicRideState, func(_ paho.Client, msg paho.Message) {
		var payload struct {
			State RideState `json:"state"`
		}
		if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
			log.WithError(err).Error("Failed to decode ride state")
			return
		}
		fn(payload.State)
	})
}

// ConsumeDescent delivers descent stream samples.
func (h *MQTTHost) ConsumeDescent(fn func(DescentSample)) (Subscription, error) {
	return h.subscribe(TopicDescent, func(_ paho.Client, msg paho.Message) {
		var sample DescentSample
		if err := json.Unmarshal(msg.Payload(), &sample); err != nil {
			log.WithError(err).Error("Failed to decode descent sample")
			return
		}
		fn(sample)
	})
}

// ConsumeActions delivers rider-triggered host actions.
func (h *MQTTHost) ConsumeActions(fn func(string)) (Subscription, error) {
	return h.subscribe(TopicAction, func(_ paho.Client, msg paho.Message) {
		var payload struct {
			Action string `json:"action"`
		}
		if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
			log.WithError(err).Error("Failed to decode host action")
			return
		}
		fn(payload.Action)
	})
}

// Dispatch publishes an alert for the host to display.
// QoS 1 (at-least-once), since alerts are one-shot.
func (h *MQTTHost) Dispatch(alert RideAlert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	token := h.client.Publish(TopicAlerts, 1, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}
	return nil
}

// Close disconnects from the broker.
func (h *MQTTHost) Close() error {
	h.client.Disconnect(1000) // 1 second timeout
	return nil
}
