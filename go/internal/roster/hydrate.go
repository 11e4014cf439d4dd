package roster

import (
	"context"

	"github.com/google/uuid"
	"github.com/mcdev12/dreamteams/go/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type hydrationJob struct {
	teamID      uuid.UUID
	characterID int
}

// Hydration tracks the background member lookups started by LoadTeams.
type Hydration struct {
	done     chan struct{}
	resolved int
	failed   int
}

// Done is closed once every lookup has finished, failed or been dropped.
func (h *Hydration) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until hydration finishes or ctx is done.
func (h *Hydration) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Failed is the number of member ids that could not be resolved. Valid after Done.
func (h *Hydration) Failed() int {
	<-h.done
	return h.failed
}

func (a *App) hydrate(ctx context.Context, generation uint64, jobs []hydrationJob) *Hydration {
	h := &Hydration{done: make(chan struct{})}
	if len(jobs) == 0 {
		close(h.done)
		return h
	}

	results := make(chan bool, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.hydration)

	go func() {
		defer close(h.done)
		for _, job := range jobs {
			g.Go(func() error {
				results <- a.resolveMember(gctx, generation, job)
				return nil
			})
		}
		_ = g.Wait()
		close(results)
		for ok := range results {
			if ok {
				h.resolved++
			} else {
				h.failed++
			}
		}
		log.Debug().
			Int("resolved", h.resolved).
			Int("failed", h.failed).
			Msg("roster hydration finished")
	}()

	return h
}

// resolveMember fetches one character and appends it to its team if the roster has not moved on.
func (a *App) resolveMember(ctx context.Context, generation uint64, job hydrationJob) bool {
	if ctx.Err() != nil {
		return false
	}
	character, err := a.characters.FetchByID(ctx, job.characterID)
	if err != nil {
		log.Warn().
			Err(err).
			Int("character_id", job.characterID).
			Msg("failed to resolve team member")
		return false
	}

	a.mu.Lock()
	if generation != a.generation {
		a.mu.Unlock()
		return false
	}
	var team *models.DreamTeam
	for _, t := range a.teams {
		if t.LocalID == job.teamID {
			team = t
			break
		}
	}
	if team == nil || team.HasMember(character.ID) || len(team.Members) >= models.MaxMembersPerTeam {
		a.mu.Unlock()
		return false
	}
	team.Members = append(team.Members, *character)
	a.publishLocked()
	a.mu.Unlock()

	return true
}
