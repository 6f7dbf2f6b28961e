package rabbit

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/TusharChow20/project-Chef-Lokal/internal/events"
)

// Dispatcher entrega un evento recibido a los suscriptores locales.
type Dispatcher interface {
	Dispatch(ctx context.Context, e events.Event)
}

type EventConsumer struct {
	local  Dispatcher
	ignore func(id string) bool
}

func NewEventConsumer(local Dispatcher) *EventConsumer {
	return &EventConsumer{local: local}
}

// Handle decodifica un mensaje del exchange y lo reparte localmente.
func (c *EventConsumer) Handle(ctx context.Context, msg []byte) error {
	var e events.Event
	if err := json.Unmarshal(msg, &e); err != nil {
		log.Error().Err(err).Msg("rabbit: failed to decode event")
		return err
	}
	if e.Kind == "" {
		log.Warn().Str("event_id", e.ID).Msg("rabbit: event without kind dropped")
		return nil
	}
	if c.ignore != nil && c.ignore(e.ID) {
		log.Debug().Str("event_id", e.ID).Msg("rabbit: own event echoed back, skipped")
		return nil
	}

	log.Debug().Str("event_id", e.ID).Str("kind", string(e.Kind)).Msg("rabbit: event received")
	c.local.Dispatch(ctx, e)
	return nil
}
