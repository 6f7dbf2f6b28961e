package rabbit_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TusharChow20/project-Chef-Lokal/internal/events"
	"github.com/TusharChow20/project-Chef-Lokal/internal/rabbit"
)

type fakeChannel struct {
	mu   sync.Mutex
	sent []amqp091.Publishing
	err  error
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func TestBus_PublishDispatchesLocallyAndSkipsEcho(t *testing.T) {
	local := events.NewLocalBus()
	ch := &fakeChannel{}
	bus := rabbit.NewBus(ch, local)

	var revoked []string
	bus.Subscribe(events.SessionRevoked, func(ctx context.Context, e events.Event) {
		revoked = append(revoked, e.SessionID)
	})

	require.NoError(t, bus.Publish(context.Background(), events.Event{Kind: events.SessionRevoked, SessionID: "s1"}))
	// la sesión ya cayó acá, sin esperar al broker
	assert.Equal(t, []string{"s1"}, revoked)
	require.Len(t, ch.sent, 1)
	assert.Equal(t, string(events.SessionRevoked), ch.sent[0].Type)
	assert.NotEmpty(t, ch.sent[0].MessageId)

	consumer := bus.Consumer()
	require.NoError(t, consumer.Handle(context.Background(), ch.sent[0].Body))
	assert.Equal(t, []string{"s1"}, revoked)

	// lo que publicó otra instancia sí se despacha
	require.NoError(t, consumer.Handle(context.Background(), []byte(`{"id":"other-1","kind":"session.revoked","sessionId":"s2"}`)))
	assert.Equal(t, []string{"s1", "s2"}, revoked)
}

func TestBus_PublishFailureStillDispatchesLocally(t *testing.T) {
	local := events.NewLocalBus()
	ch := &fakeChannel{err: amqp091.ErrClosed}
	bus := rabbit.NewBus(ch, local)

	var keys [][]string
	bus.Subscribe(events.CacheInvalidate, func(ctx context.Context, e events.Event) {
		keys = append(keys, e.Keys)
	})

	err := bus.Publish(context.Background(), events.Event{Kind: events.CacheInvalidate, Keys: []string{"orders"}})
	assert.True(t, errors.Is(err, amqp091.ErrClosed))
	assert.Equal(t, [][]string{{"orders"}}, keys)
	assert.Empty(t, ch.sent)
}
