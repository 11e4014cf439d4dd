package roster

import (
	"context"
	"errors"
	"fmt"
	"time"

	parse "github.com/mcdev12/dreamteams/go/clients/parse_client"
	"github.com/mcdev12/dreamteams/go/internal/models"
)

// ErrRecordNotFound is returned by repositories when no team record has the given id.
var ErrRecordNotFound = errors.New("team record not found")

// TeamRepository is the remote object store holding team records.
type TeamRepository interface {
	ListTeamsByOwner(ctx context.Context, ownerID string) ([]models.TeamRecord, error)
	CreateTeam(ctx context.Context, req CreateTeamRecordRequest) (*models.TeamRecord, error)
	GetTeam(ctx context.Context, id string) (*models.TeamRecord, error)
	UpdateTeamMembers(ctx context.Context, id string, memberIDs []int) (*models.TeamRecord, error)
	DeleteTeam(ctx context.Context, id string) error
}

type CreateTeamRecordRequest struct {
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ObjectStore defines what the Parse repository needs from the BaaS client
type ObjectStore interface {
	Query(ctx context.Context, className string, opts parse.QueryOptions, sessionToken string, out any) error
	GetObject(ctx context.Context, className, objectID, sessionToken string, out any) error
	CreateObject(ctx context.Context, className string, fields any, sessionToken string) (*parse.CreatedObject, error)
	UpdateObject(ctx context.Context, className, objectID string, fields any, sessionToken string) (*parse.UpdatedObject, error)
	DeleteObject(ctx context.Context, className, objectID, sessionToken string) error
}

// TokenSource supplies the session token that authorizes object writes.
type TokenSource interface {
	SessionToken() (string, error)
}

const teamClassName = "Team"

type parseTeam struct {
	ObjectID    string `json:"objectId"`
	OwnerID     string `json:"ownerId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Members     []int  `json:"members"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// ParseRepository stores team records as objects of the Parse "Team" class.
type ParseRepository struct {
	store  ObjectStore
	tokens TokenSource
}

func NewParseRepository(store ObjectStore, tokens TokenSource) *ParseRepository {
	return &ParseRepository{
		store:  store,
		tokens: tokens,
	}
}

func (r *ParseRepository) ListTeamsByOwner(ctx context.Context, ownerID string) ([]models.TeamRecord, error) {
	token, err := r.tokens.SessionToken()
	if err != nil {
		return nil, err
	}

	var rows []parseTeam
	opts := parse.QueryOptions{
		Where: map[string]any{"ownerId": ownerID},
		Order: "name",
		Limit: models.MaxTeamsPerUser * 10,
	}
	if err := r.store.Query(ctx, teamClassName, opts, token, &rows); err != nil {
		return nil, fmt.Errorf("failed to list teams by owner: %w", err)
	}

	records := make([]models.TeamRecord, len(rows))
	for i, row := range rows {
		records[i] = parseTeamToModel(row)
	}
	return records, nil
}

func (r *ParseRepository) CreateTeam(ctx context.Context, req CreateTeamRecordRequest) (*models.TeamRecord, error) {
	token, err := r.tokens.SessionToken()
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		"ownerId":     req.OwnerID,
		"name":        req.Name,
		"description": req.Description,
		"members":     []int{},
		"ACL": map[string]any{
			req.OwnerID: map[string]bool{"read": true, "write": true},
		},
	}
	created, err := r.store.CreateObject(ctx, teamClassName, fields, token)
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	createdAt := parseTime(created.CreatedAt)
	return &models.TeamRecord{
		ID:          created.ObjectID,
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		Description: req.Description,
		MemberIDs:   []int{},
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}

func (r *ParseRepository) GetTeam(ctx context.Context, id string) (*models.TeamRecord, error) {
	token, err := r.tokens.SessionToken()
	if err != nil {
		return nil, err
	}

	var row parseTeam
	if err := r.store.GetObject(ctx, teamClassName, id, token, &row); err != nil {
		if parse.IsObjectNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	record := parseTeamToModel(row)
	return &record, nil
}

func (r *ParseRepository) UpdateTeamMembers(ctx context.Context, id string, memberIDs []int) (*models.TeamRecord, error) {
	token, err := r.tokens.SessionToken()
	if err != nil {
		return nil, err
	}

	if memberIDs == nil {
		memberIDs = []int{}
	}
	updated, err := r.store.UpdateObject(ctx, teamClassName, id, map[string]any{"members": memberIDs}, token)
	if err != nil {
		if parse.IsObjectNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
		}
		return nil, fmt.Errorf("failed to update team members: %w", err)
	}

	return &models.TeamRecord{
		ID:        id,
		MemberIDs: memberIDs,
		UpdatedAt: parseTime(updated.UpdatedAt),
	}, nil
}

func (r *ParseRepository) DeleteTeam(ctx context.Context, id string) error {
	token, err := r.tokens.SessionToken()
	if err != nil {
		return err
	}

	if err := r.store.DeleteObject(ctx, teamClassName, id, token); err != nil {
		if parse.IsObjectNotFound(err) {
			return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
		}
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return nil
}

func parseTeamToModel(row parseTeam) models.TeamRecord {
	members := row.Members
	if members == nil {
		members = []int{}
	}
	return models.TeamRecord{
		ID:          row.ObjectID,
		OwnerID:     row.OwnerID,
		Name:        row.Name,
		Description: row.Description,
		MemberIDs:   members,
		CreatedAt:   parseTime(row.CreatedAt),
		UpdatedAt:   parseTime(row.UpdatedAt),
	}
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
