package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType names a roster change.
type EventType string

const (
	TeamCreated   EventType = "team.created"
	TeamDeleted   EventType = "team.deleted"
	MemberAdded   EventType = "team.member_added"
	MemberRemoved EventType = "team.member_removed"
	TeamsLoaded   EventType = "teams.loaded"
)

// RosterEvent is emitted after a roster change has been persisted remotely.
type RosterEvent struct {
	ID        uuid.UUID       `json:"id"`
	Type      EventType       `json:"type"`
	OwnerID   string          `json:"owner_id"`
	TeamID    string          `json:"team_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewRosterEvent builds an event with a fresh id and a JSON payload.
func NewRosterEvent(eventType EventType, ownerID, teamID string, payload any, now time.Time) (RosterEvent, error) {
	ev := RosterEvent{
		ID:        uuid.New(),
		Type:      eventType,
		OwnerID:   ownerID,
		TeamID:    teamID,
		CreatedAt: now.UTC(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return RosterEvent{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
		}
		ev.Payload = data
	}
	return ev, nil
}

// Publisher delivers roster events to interested parties.
type Publisher interface {
	Publish(ctx context.Context, event RosterEvent) error
}

// envelope is the wire format shared by all publishers.
func envelope(event RosterEvent) ([]byte, error) {
	env := map[string]interface{}{
		"eventId":   event.ID.String(),
		"eventType": string(event.Type),
		"ownerId":   event.OwnerID,
		"teamId":    event.TeamID,
		"timestamp": event.CreatedAt,
		"payload":   event.Payload,
	}
	if len(event.Payload) == 0 {
		env["payload"] = nil
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}
