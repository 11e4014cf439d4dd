package catalog

import (
	"github.com/mcdev12/dreamteams/go/internal/models"
)

// State is the pagination state machine position.
type State string

const (
	StateIdle      State = "idle"
	StateLoading   State = "loading"
	StateExhausted State = "exhausted"
)

// Cursor tracks paging through the current query.
type Cursor struct {
	Offset    int  `json:"offset"`
	Limit     int  `json:"limit"`
	Total     int  `json:"total"`
	Exhausted bool `json:"exhausted"`
}

// Snapshot is a consistent copy of the client's state.
type Snapshot struct {
	Term       string             `json:"term"`
	Characters []models.Character `json:"characters"`
	Cursor     Cursor             `json:"cursor"`
	State      State              `json:"state"`
	LastError  string             `json:"last_error,omitempty"`
	Err        error              `json:"-"`
}
