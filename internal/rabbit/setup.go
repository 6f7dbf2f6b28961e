// setup.go
package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/TusharChow20/project-Chef-Lokal/internal/events"
)

// Exchange fanout compartido por todas las instancias del gateway.
const Exchange = "chef_lokal_events"

// Publisher es la parte del canal AMQP que usa el Bus.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// cuántos ids propios se recuerdan para descartar el eco del exchange
const maxEchoes = 1024

// Bus publica en el exchange y recibe de una cola exclusiva de esta
// instancia. Lo publicado acá se despacha localmente antes de salir, y su eco
// se descarta por id.
type Bus struct {
	ch    Publisher
	local *events.LocalBus

	mu sync.Mutex

	echoMu  sync.Mutex
	pending map[string]struct{}
	order   []string
}

func NewBus(ch Publisher, local *events.LocalBus) *Bus {
	return &Bus{ch: ch, local: local, pending: make(map[string]struct{})}
}

func (b *Bus) Subscribe(kind events.Kind, h events.Handler) func() {
	return b.local.Subscribe(kind, h)
}

// Publish despacha el evento en esta instancia y después lo manda al
// exchange para las demás. Un error de broker no deshace el despacho local.
func (b *Bus) Publish(ctx context.Context, e events.Event) error {
	e = events.Stamp(e)
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("rabbit: failed to encode event: %w", err)
	}

	b.remember(e.ID)
	b.local.Dispatch(ctx, e)

	b.mu.Lock()
	err = b.ch.PublishWithContext(ctx, Exchange, "", false, false, amqp091.Publishing{
		ContentType: "application/json",
		MessageId:   e.ID,
		Timestamp:   e.At,
		Type:        string(e.Kind),
		Body:        body,
	})
	b.mu.Unlock()

	if err != nil {
		b.isEcho(e.ID)
		log.Error().Err(err).Str("kind", string(e.Kind)).Msg("rabbit: publish failed, other instances not notified")
		return fmt.Errorf("rabbit: failed to publish event: %w", err)
	}
	return nil
}

// Consumer devuelve el consumidor de la cola de esta instancia; ignora los
// eventos que publicó este mismo Bus.
func (b *Bus) Consumer() *EventConsumer {
	c := NewEventConsumer(b.local)
	c.ignore = b.isEcho
	return c
}

func (b *Bus) remember(id string) {
	b.echoMu.Lock()
	defer b.echoMu.Unlock()
	if len(b.order) >= maxEchoes {
		delete(b.pending, b.order[0])
		b.order = b.order[1:]
	}
	b.pending[id] = struct{}{}
	b.order = append(b.order, id)
}

// isEcho dice si id salió de este Bus y lo olvida.
func (b *Bus) isEcho(id string) bool {
	b.echoMu.Lock()
	defer b.echoMu.Unlock()
	if _, ok := b.pending[id]; !ok {
		return false
	}
	delete(b.pending, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return true
}

// SetupBus declara el exchange, la cola y arranca el consumidor.
func SetupBus(ctx context.Context, ch *amqp091.Channel, local *events.LocalBus) (*Bus, error) {
	bus := NewBus(ch, local)
	consumer := bus.Consumer()

	// 1. Declarar el exchange fanout
	if err := ch.ExchangeDeclare(
		Exchange,
		"fanout",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return nil, fmt.Errorf("rabbit: declare exchange: %w", err)
	}

	// 2. Cola exclusiva para esta instancia
	q, err := ch.QueueDeclare(
		"",
		false,
		true,
		true,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("rabbit: declare queue: %w", err)
	}

	// 3. Bindear al exchange (fanout ignora routing key)
	if err := ch.QueueBind(q.Name, "", Exchange, false, nil); err != nil {
		return nil, fmt.Errorf("rabbit: bind queue: %w", err)
	}

	// 4. Consumir
	msgs, err := ch.Consume(
		q.Name,
		"",
		true,
		true,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("rabbit: consume queue: %w", err)
	}

	go func() {
		for m := range msgs {
			_ = consumer.Handle(ctx, m.Body)
		}
		log.Info().Msg("rabbit: delivery channel closed")
	}()

	log.Info().Str("exchange", Exchange).Str("queue", q.Name).Msg("rabbit: subscribed to event exchange")
	return bus, nil
}
