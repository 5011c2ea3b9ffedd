package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	"immofox-http-service/internal/infrastructure/config"
)

func TestTopic(t *testing.T) {
	p := NewPublisher(&config.Config{
		MQTTBrokerURL:   "tcp://localhost:1883",
		MQTTClientID:    "immofox_test",
		MQTTTopicPrefix: "immofox",
		MQTTQoS:         7,
	})
	if got := p.Topic(42, "notification"); got != "immofox/users/42/notifications" {
		t.Fatalf("Topic = %q", got)
	}
	if p.QoS != 1 {
		t.Fatalf("QoS = %d, want fallback 1", p.QoS)
	}
}

func TestEncode(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	body, err := Encode("message", map[string]string{"content": "Hallo"}, at)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var ev struct {
		Type      string            `json:"type"`
		Timestamp int64             `json:"timestamp"`
		Payload   map[string]string `json:"payload"`
	}
	if err := json.Unmarshal(body, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Type != "message" || ev.Timestamp != at.UnixMilli() || ev.Payload["content"] != "Hallo" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestPublishWhileDisconnectedDoesNotBlock(t *testing.T) {
	p := NewPublisher(&config.Config{MQTTBrokerURL: "tcp://127.0.0.1:1", MQTTClientID: "x", MQTTTopicPrefix: "p"})
	done := make(chan struct{})
	go func() {
		p.PublishToUser(1, "notification", "payload")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PublishToUser blocked")
	}
}

func TestConnectDoesNotWaitAfterLastAttempt(t *testing.T) {
	p := NewPublisher(&config.Config{MQTTBrokerURL: "tcp://127.0.0.1:1", MQTTClientID: "x", MQTTTopicPrefix: "p"})
	var waits []time.Duration
	p.sleep = func(d time.Duration) { waits = append(waits, d) }

	if err := p.Connect(); err == nil {
		t.Fatal("Connect to a closed port succeeded")
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(waits) != len(want) {
		t.Fatalf("waits = %v, want %v", waits, want)
	}
	for i := range want {
		if waits[i] != want[i] {
			t.Fatalf("waits = %v, want %v", waits, want)
		}
	}
}
