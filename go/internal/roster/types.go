package roster

import (
	"errors"

	"github.com/mcdev12/dreamteams/go/internal/models"
)

var (
	ErrNoSession        = errors.New("no active session")
	ErrNameRequired     = errors.New("team name is required")
	ErrTermsNotAccepted = errors.New("terms must be accepted")
	ErrTeamLimitReached = errors.New("team limit reached")
	ErrTeamFull         = errors.New("team is full")
	ErrTeamNotPersisted = errors.New("team has not been saved")
	ErrAlreadyMember    = errors.New("character is already on the team")
	ErrNotMember        = errors.New("character is not on the team")
	ErrTeamNotFound     = errors.New("team not found")
	// ErrSuperseded is returned by a load that finished after the roster was reset or reloaded.
	ErrSuperseded       = errors.New("roster load superseded")
)

type CreateTeamRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	AcceptedTerms bool   `json:"accepted_terms"`
}

// Snapshot is the roster as seen by subscribers.
type Snapshot struct {
	OwnerID string             `json:"owner_id"`
	Loaded  bool               `json:"loaded"`
	Teams   []models.DreamTeam `json:"teams"`
}

type memberAddedPayload struct {
	TeamName  string           `json:"team_name"`
	Character models.Character `json:"character"`
	Size      int              `json:"size"`
}

type memberRemovedPayload struct {
	TeamName    string `json:"team_name"`
	CharacterID int    `json:"character_id"`
	Size        int    `json:"size"`
}

type teamPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type loadedPayload struct {
	Count int `json:"count"`
}
