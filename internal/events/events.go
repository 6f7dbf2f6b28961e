// Package events is the gateway's internal event channel. Transport errors,
// cache invalidations and order changes are published here instead of being
// handled where they happen.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Kind string

const (
	SessionRevoked     Kind = "session.revoked"
	CacheInvalidate    Kind = "cache.invalidate"
	OrderStatusChanged Kind = "order.status_changed"
)

type Event struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	SessionID string    `json:"sessionId,omitempty"`
	UserEmail string    `json:"userEmail,omitempty"`
	Keys      []string  `json:"keys,omitempty"`
	OrderID   string    `json:"orderId,omitempty"`
	Status    string    `json:"status,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	At        time.Time `json:"at"`
}

type Handler func(ctx context.Context, e Event)

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Bus interface {
	Publisher
	Subscribe(kind Kind, h Handler) (unsubscribe func())
}

// Stamp fills the id and timestamp of an event if they are missing.
func Stamp(e Event) Event {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	return e
}

// LocalBus delivers events synchronously inside the process.
type LocalBus struct {
	mu   sync.RWMutex
	subs map[Kind]map[int]Handler
	next int
}

func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[Kind]map[int]Handler)}
}

func (b *LocalBus) Publish(ctx context.Context, e Event) error {
	b.Dispatch(ctx, Stamp(e))
	return nil
}

// Dispatch runs every handler subscribed to e.Kind.
func (b *LocalBus) Dispatch(ctx context.Context, e Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[e.Kind]))
	for _, h := range b.subs[e.Kind] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	log.Debug().Str("event_id", e.ID).Str("kind", string(e.Kind)).Int("handlers", len(handlers)).Msg("events: dispatch")
	for _, h := range handlers {
		h(ctx, e)
	}
}

func (b *LocalBus) Subscribe(kind Kind, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[kind] == nil {
		b.subs[kind] = make(map[int]Handler)
	}
	id := b.next
	b.next++
	b.subs[kind][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[kind], id)
	}
}
