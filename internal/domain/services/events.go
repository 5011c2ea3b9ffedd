package services

import "sync"

// Event types pushed to online clients
const (
	EventMessage      = "message"
	EventNotification = "notification"
)

// InterfacePublisher pushes an event to one user. Implementations must not block.
type InterfacePublisher interface {
	PublishToUser(userID uint, eventType string, payload interface{})
}

// FanoutPublisher forwards every event to all registered publishers
type FanoutPublisher struct {
	mu         sync.RWMutex
	publishers []InterfacePublisher
}

// NewFanoutPublisher creates a fanout over the given publishers
func NewFanoutPublisher(publishers ...InterfacePublisher) *FanoutPublisher {
	return &FanoutPublisher{publishers: publishers}
}

// Add registers another publisher
func (f *FanoutPublisher) Add(p InterfacePublisher) {
	if p == nil {
		return
	}
	f.mu.Lock()
	f.publishers = append(f.publishers, p)
	f.mu.Unlock()
}

func (f *FanoutPublisher) PublishToUser(userID uint, eventType string, payload interface{}) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, p := range f.publishers {
		p.PublishToUser(userID, eventType, payload)
	}
}
