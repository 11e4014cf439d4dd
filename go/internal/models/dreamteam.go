package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MaxTeamsPerUser       = 10
	MaxMembersPerTeam     = 6
	MaxTeamDescriptionLen = 100
)

// DreamTeam is the locally held roster entry. RemoteID stays empty until the first successful save.
type DreamTeam struct {
	LocalID     uuid.UUID   `json:"local_id"`
	RemoteID    string      `json:"remote_id,omitempty"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Members     []Character `json:"members"`
}

// Persisted reports whether the team has a remote record.
func (t *DreamTeam) Persisted() bool {
	return t.RemoteID != ""
}

// HasMember reports whether characterID is already on the team.
func (t *DreamTeam) HasMember(characterID int) bool {
	for _, m := range t.Members {
		if m.ID == characterID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand to other goroutines.
func (t *DreamTeam) Clone() DreamTeam {
	c := *t
	c.Members = append([]Character(nil), t.Members...)
	return c
}

// TeamRecord is the remote shape of a team.
type TeamRecord struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	MemberIDs   []int     `json:"member_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TruncateDescription cuts s to MaxTeamDescriptionLen runes.
func TruncateDescription(s string) string {
	r := []rune(s)
	if len(r) <= MaxTeamDescriptionLen {
		return s
	}
	return string(r[:MaxTeamDescriptionLen])
}
