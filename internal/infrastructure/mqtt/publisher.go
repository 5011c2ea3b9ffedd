// Package mqtt pushes user events to an MQTT broker so that devices receive
// notifications without polling.
package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"immofox-http-service/internal/infrastructure/config"
	Logger "immofox-http-service/pkg/logger"
)

// Event is the JSON envelope published on a user topic
type Event struct {
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// Publisher publishes events to <prefix>/users/<id>/<type>s
type Publisher struct {
	Client      paho.Client
	TopicPrefix string
	QoS         byte
	BrokerURL   string

	mu    sync.Mutex
	sleep func(time.Duration)
}

// NewPublisher creates a publisher; Connect must be called before use
func NewPublisher(cfg *config.Config) *Publisher {
	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.MQTTBrokerURL)
	// unique id per instance, the broker drops duplicate client ids
	opts.SetClientID(fmt.Sprintf("%s-%s", cfg.MQTTClientID, uuid.New().String()[:8]))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(true)
	if cfg.MQTTUsername != "" {
		opts.SetUsername(cfg.MQTTUsername)
		opts.SetPassword(cfg.MQTTPassword)
	}
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		Logger.Warning("[MQTT] connection lost: %v", err)
	})
	opts.SetOnConnectHandler(func(_ paho.Client) {
		Logger.Info("[MQTT] connected to %s", cfg.MQTTBrokerURL)
	})

	qos := cfg.MQTTQoS
	if qos < 0 || qos > 2 {
		qos = 1
	}
	return &Publisher{
		Client:      paho.NewClient(opts),
		TopicPrefix: cfg.MQTTTopicPrefix,
		QoS:         byte(qos),
		BrokerURL:   cfg.MQTTBrokerURL,
		sleep:       time.Sleep,
	}
}

// Connect tries three times, waiting 1s and then 2s between attempts
func (p *Publisher) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Client.IsConnected() {
		return nil
	}

	const maxRetries = 3
	var err error
	for i := 0; i < maxRetries; i++ {
		token := p.Client.Connect()
		if token.WaitTimeout(5*time.Second) && token.Error() == nil {
			return nil
		}
		err = token.Error()
		if err == nil {
			err = fmt.Errorf("timeout")
		}
		if i == maxRetries-1 {
			break
		}
		backoff := time.Duration(1<<uint(i)) * time.Second
		Logger.Warning("[MQTT] connect attempt %d/%d to %s failed: %v, retry in %v", i+1, maxRetries, p.BrokerURL, err, backoff)
		p.sleep(backoff)
	}
	return fmt.Errorf("mqtt connect %s after %d attempts: %w", p.BrokerURL, maxRetries, err)
}

// Disconnect waits up to 250ms for in-flight messages
func (p *Publisher) Disconnect() {
	if p.Client != nil && p.Client.IsConnected() {
		p.Client.Disconnect(250)
	}
}

// Topic returns the topic of a user's events of the given type
func (p *Publisher) Topic(userID uint, eventType string) string {
	return fmt.Sprintf("%s/users/%d/%ss", p.TopicPrefix, userID, eventType)
}

// PublishToUser publishes without waiting for the broker; failures are logged
func (p *Publisher) PublishToUser(userID uint, eventType string, payload interface{}) {
	body, err := Encode(eventType, payload, time.Now())
	if err != nil {
		Logger.Error("[MQTT] encode %s for user %d: %v", eventType, userID, err)
		return
	}
	if !p.Client.IsConnected() {
		Logger.Warning("[MQTT] not connected, dropping %s for user %d", eventType, userID)
		return
	}

	topic := p.Topic(userID, eventType)
	token := p.Client.Publish(topic, p.QoS, false, body)
	go func() {
		if !token.WaitTimeout(5*time.Second) {
			Logger.Warning("[MQTT] publish to %s timed out", topic)
			return
		}
		if err := token.Error(); err != nil {
			Logger.Error("[MQTT] publish to %s: %v", topic, err)
		}
	}()
}

// Encode builds the JSON envelope of an event
func Encode(eventType string, payload interface{}, at time.Time) ([]byte, error) {
	return json.Marshal(Event{Type: eventType, Timestamp: at.UnixMilli(), Payload: payload})
}
