package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType is the kind of row change a backend reports.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// AllTables subscribes to every relation.
const AllTables = "*"

// Event is a row change notification. Consumers treat it as a refetch hint only.
type Event struct {
	Table  string         `json:"table"`
	Type   EventType      `json:"type"`
	Old    map[string]any `json:"old,omitempty"`
	New    map[string]any `json:"new,omitempty"`
	Origin string         `json:"origin"`
	At     time.Time      `json:"at"`
}

type subscription struct {
	table string
	ch    chan Event
}

// Hub fans change events out to in-process subscribers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]*subscription
	nextID int
	origin string
}

func NewHub() *Hub {
	return &Hub{
		subs:   make(map[int]*subscription),
		origin: uuid.NewString(),
	}
}

// Origin identifies events produced by this process.
func (h *Hub) Origin() string {
	return h.origin
}

// Subscribe registers for events on table, or on every table with AllTables.
// The returned cancel func closes the channel.
func (h *Hub) Subscribe(table string, buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	sub := &subscription{table: table, ch: make(chan Event, buffer)}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = sub
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			close(sub.ch)
			h.mu.Unlock()
		})
	}
	return sub.ch, cancel
}

// Publish delivers ev without blocking; a subscriber whose buffer is full misses it.
func (h *Hub) Publish(ev Event) {
	if h == nil {
		return
	}
	if ev.Origin == "" {
		ev.Origin = h.origin
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if sub.table != AllTables && sub.table != ev.Table {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

// SubscriberCount reports the number of live subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
