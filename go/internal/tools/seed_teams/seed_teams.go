package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/dreamteams/go/internal/config"
	"github.com/mcdev12/dreamteams/go/internal/models"
	"github.com/mcdev12/dreamteams/go/internal/roster"
)

// Team mirrors the JSON seed file
type Team struct {
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MemberIDs   []int  `json:"member_ids"`
}

// TeamWriter is the part of the team repository the seeder needs
type TeamWriter interface {
	CreateTeam(ctx context.Context, req roster.CreateTeamRecordRequest) (*models.TeamRecord, error)
	UpdateTeamMembers(ctx context.Context, id string, memberIDs []int) (*models.TeamRecord, error)
}

type summary struct {
	total    int
	inserted int
	skipped  int
	errs     int
}

func main() {
	path := flag.String("file", "go/internal/assets/dream_teams.json", "JSON file with teams to seed")
	flag.Parse()

	// 1) Load the JSON snapshot
	data, err := os.ReadFile(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read JSON: %v\n", err)
		os.Exit(1)
	}
	var teams []Team
	if err := json.Unmarshal(data, &teams); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal JSON: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared config
	config.LoadEnvFiles()
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Store.Database.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := roster.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// 3) Insert and count
	s := seed(ctx, repo, teams)

	// 4) Print summary
	fmt.Printf(
		"Dream teams seed complete: %d total, %d inserted, %d skipped, %d errors\n",
		s.total, s.inserted, s.skipped, s.errs,
	)
}

// seed inserts every valid team. Teams that break the roster limits are skipped.
func seed(ctx context.Context, repo TeamWriter, teams []Team) summary {
	s := summary{total: len(teams)}
	perOwner := make(map[string]int)

	for _, t := range teams {
		if t.OwnerID == "" || t.Name == "" ||
			len(t.MemberIDs) > models.MaxMembersPerTeam ||
			perOwner[t.OwnerID] >= models.MaxTeamsPerUser {
			s.skipped++
			continue
		}

		rec, err := repo.CreateTeam(ctx, roster.CreateTeamRecordRequest{
			OwnerID:     t.OwnerID,
			Name:        t.Name,
			Description: models.TruncateDescription(t.Description),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting team %s: %v\n", t.Name, err)
			s.errs++
			continue
		}
		perOwner[t.OwnerID]++

		if len(t.MemberIDs) > 0 {
			if _, err := repo.UpdateTeamMembers(ctx, rec.ID, t.MemberIDs); err != nil {
				fmt.Fprintf(os.Stderr, "error setting members of %s: %v\n", t.Name, err)
				s.errs++
				continue
			}
		}
		s.inserted++
	}
	return s
}
