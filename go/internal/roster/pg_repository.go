package roster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mcdev12/dreamteams/go/internal/models"
	"github.com/mcdev12/dreamteams/go/internal/sqlutil"
)

// DB is the subset of *pgxpool.Pool the Postgres repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const teamsSchema = `
CREATE TABLE IF NOT EXISTS teams (
    id          uuid PRIMARY KEY,
    owner_id    text        NOT NULL,
    name        text        NOT NULL,
    description text        NOT NULL DEFAULT '',
    member_ids  integer[]   NOT NULL DEFAULT '{}',
    created_at  timestamptz NOT NULL DEFAULT now(),
    updated_at  timestamptz NOT NULL DEFAULT now()
)`

const teamsOwnerIndex = `CREATE INDEX IF NOT EXISTS teams_owner_name_idx ON teams (owner_id, name)`

const teamColumns = `id::text, owner_id, name, description, member_ids, created_at, updated_at`

// PostgresRepository stores team records in a self-hosted Postgres table.
type PostgresRepository struct {
	db  DB
	now func() time.Time
}

func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{
		db:  db,
		now: time.Now,
	}
}

// EnsureSchema creates the teams table and its owner index if they are missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	err := sqlutil.Run(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, teamsSchema); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, teamsOwnerIndex)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to ensure teams schema: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListTeamsByOwner(ctx context.Context, ownerID string) ([]models.TeamRecord, error) {
	rows, err := r.db.Query(ctx, `SELECT `+teamColumns+` FROM teams WHERE owner_id = $1 ORDER BY name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams by owner: %w", err)
	}
	defer rows.Close()

	var records []models.TeamRecord
	for rows.Next() {
		record, err := scanTeamRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list teams by owner: %w", err)
	}
	return records, nil
}

func (r *PostgresRepository) CreateTeam(ctx context.Context, req CreateTeamRecordRequest) (*models.TeamRecord, error) {
	now := r.now().UTC()
	row := r.db.QueryRow(ctx, `
        INSERT INTO teams (id, owner_id, name, description, member_ids, created_at, updated_at)
        VALUES ($1::uuid, $2, $3, $4, '{}', $5, $5)
        RETURNING `+teamColumns,
		uuid.NewString(), req.OwnerID, req.Name, req.Description, now,
	)
	record, err := scanTeamRecord(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return record, nil
}

func (r *PostgresRepository) GetTeam(ctx context.Context, id string) (*models.TeamRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}

	row := r.db.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1::uuid`, id)
	record, err := scanTeamRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return record, nil
}

func (r *PostgresRepository) UpdateTeamMembers(ctx context.Context, id string, memberIDs []int) (*models.TeamRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}

	row := r.db.QueryRow(ctx, `
        UPDATE teams SET member_ids = $2, updated_at = $3
        WHERE id = $1::uuid
        RETURNING `+teamColumns,
		id, sqlutil.ToInt32s(memberIDs), r.now().UTC(),
	)
	record, err := scanTeamRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
		}
		return nil, fmt.Errorf("failed to update team members: %w", err)
	}
	return record, nil
}

func (r *PostgresRepository) DeleteTeam(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM teams WHERE id = $1::uuid`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	return nil
}

func scanTeamRecord(row pgx.Row) (*models.TeamRecord, error) {
	var (
		record  models.TeamRecord
		members []int32
	)
	err := row.Scan(
		&record.ID,
		&record.OwnerID,
		&record.Name,
		&record.Description,
		&members,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	record.MemberIDs = sqlutil.FromInt32s(members)
	return &record, nil
}
