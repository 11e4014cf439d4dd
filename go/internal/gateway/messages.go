package gateway

import (
	"encoding/json"
	"time"
)

// MessageType names what a websocket frame carries.
type MessageType string

const (
	CatalogSnapshot MessageType = "catalog.snapshot"
	RosterSnapshot  MessageType = "roster.snapshot"
	RosterEvent     MessageType = "roster.event"
)

// Message is the JSON frame pushed to websocket clients.
type Message struct {
	Type   MessageType     `json:"type"`
	Data   json.RawMessage `json:"data"`
	SentAt time.Time       `json:"sent_at"`
}

func newMessage(t MessageType, data any, now time.Time) (Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Data: raw, SentAt: now}, nil
}
