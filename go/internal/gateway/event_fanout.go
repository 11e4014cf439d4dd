package gateway

import (
	"context"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/dreamteams/go/internal/events"
	"github.com/rs/zerolog/log"
)

// eventFanout pushes roster events to websocket clients, then hands them on.
type eventFanout struct {
	connections *ConnectionManager
	clock       clockwork.Clock
	next        events.Publisher
}

// NewEventFanout wraps next so every roster event also reaches connected clients.
func NewEventFanout(connections *ConnectionManager, clock clockwork.Clock, next events.Publisher) events.Publisher {
	if next == nil {
		next = events.NopPublisher{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &eventFanout{connections: connections, clock: clock, next: next}
}

func (f *eventFanout) Publish(ctx context.Context, event events.RosterEvent) error {
	msg, err := newMessage(RosterEvent, event, f.clock.Now())
	if err != nil {
		log.Error().Err(err).Str("event_type", string(event.Type)).Msg("failed to build event message")
	} else {
		f.connections.Broadcast(msg)
	}
	return f.next.Publish(ctx, event)
}
