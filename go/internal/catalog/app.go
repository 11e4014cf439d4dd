package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	marvel "github.com/mcdev12/dreamteams/go/clients/marvel_client"
	"github.com/mcdev12/dreamteams/go/internal/models"
	"github.com/mcdev12/dreamteams/go/internal/notify"
	"github.com/rs/zerolog/log"
)

var (
	// ErrCharacterNotFound is returned by FetchByID for unknown ids.
	ErrCharacterNotFound = errors.New("character not found")
	// ErrSuperseded is returned by a fetch whose query was replaced by a newer search.
	ErrSuperseded = errors.New("fetch superseded by a newer search")
)

// CharacterSource defines what the app layer needs from the catalog API client
type CharacterSource interface {
	ListCharacters(ctx context.Context, params marvel.ListCharactersParams) (*marvel.CharacterDataContainer, error)
	GetCharacter(ctx context.Context, id int) (*marvel.Character, error)
}

// App accumulates catalog pages for the current listing or search.
// At most one page fetch is in flight at a time.
type App struct {
	source   CharacterSource
	pageSize int

	mu          sync.Mutex
	term        string
	results     []models.Character
	cursor      Cursor
	loading     bool
	generation  uint64
	cancelFetch context.CancelFunc
	lastErr     error

	hub *notify.Hub[Snapshot]
}

// NewApp creates a new catalog App
func NewApp(source CharacterSource, pageSize int) *App {
	if pageSize <= 0 {
		pageSize = marvel.DefaultPageSize
	}
	return &App{
		source:   source,
		pageSize: pageSize,
		cursor:   Cursor{Limit: pageSize},
		hub:      notify.NewHub[Snapshot](),
	}
}

// Search replaces the result set with the first page of characters whose name
// starts with term. An empty term falls back to unfiltered incremental listing,
// restarting at offset 0 if a search was active.
func (a *App) Search(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)

	a.mu.Lock()
	if term != "" || a.term != "" {
		a.resetLocked(term)
		a.publishLocked()
	}
	a.mu.Unlock()

	return a.LoadMore(ctx)
}

// LoadMore fetches and appends the next page. It does nothing while a fetch is
// outstanding or once the cursor is exhausted.
func (a *App) LoadMore(ctx context.Context) error {
	a.mu.Lock()
	if a.loading || a.cursor.Exhausted {
		a.mu.Unlock()
		return nil
	}
	a.loading = true
	gen := a.generation
	params := marvel.ListCharactersParams{
		Offset:         a.cursor.Offset,
		Limit:          a.cursor.Limit,
		NameStartsWith: a.term,
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	a.cancelFetch = cancel
	a.publishLocked()
	a.mu.Unlock()

	log.Debug().
		Int("offset", params.Offset).
		Int("limit", params.Limit).
		Str("term", params.NameStartsWith).
		Msg("fetching catalog page")

	page, err := a.source.ListCharacters(fetchCtx, params)
	cancel()

	a.mu.Lock()
	if gen != a.generation {
		a.mu.Unlock()
		log.Debug().Int("offset", params.Offset).Msg("dropping superseded catalog page")
		return ErrSuperseded
	}
	a.loading = false
	a.cancelFetch = nil

	if err != nil {
		a.lastErr = err
		a.publishLocked()
		a.mu.Unlock()
		log.Error().Err(err).Int("offset", params.Offset).Str("term", params.NameStartsWith).Msg("catalog page fetch failed")
		return fmt.Errorf("failed to load characters: %w", err)
	}

	a.results = append(a.results, mapExternalCharacters(page.Results)...)
	a.cursor.Offset += a.cursor.Limit
	a.cursor.Total = page.Total
	if len(a.results) >= page.Total || len(page.Results) == 0 {
		a.cursor.Exhausted = true
	}
	a.lastErr = nil
	snap := a.snapshotLocked()
	a.hub.Publish(snap)
	a.mu.Unlock()

	log.Debug().
		Int("count", len(page.Results)).
		Int("accumulated", len(snap.Characters)).
		Int("total", page.Total).
		Bool("exhausted", snap.Cursor.Exhausted).
		Msg("catalog page applied")
	return nil
}

// FetchByID loads a single character. It does not touch the listing state.
func (a *App) FetchByID(ctx context.Context, id int) (*models.Character, error) {
	c, err := a.source.GetCharacter(ctx, id)
	if err != nil {
		if errors.Is(err, marvel.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrCharacterNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch character %d: %w", id, err)
	}
	character := mapExternalCharacter(*c)
	return &character, nil
}

// Snapshot returns a copy of the current state.
func (a *App) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// Subscribe streams snapshots after every state change.
func (a *App) Subscribe() (<-chan Snapshot, func()) {
	return a.hub.Subscribe()
}

// Close releases subscribers.
func (a *App) Close() {
	a.mu.Lock()
	if a.cancelFetch != nil {
		a.cancelFetch()
	}
	a.mu.Unlock()
	a.hub.Close()
}

func (a *App) resetLocked(term string) {
	a.generation++
	if a.cancelFetch != nil {
		a.cancelFetch()
		a.cancelFetch = nil
	}
	a.loading = false
	a.term = term
	a.results = nil
	a.cursor = Cursor{Limit: a.pageSize}
	a.lastErr = nil
}

// publishLocked hands the current state to subscribers. Holding a.mu keeps snapshots in order.
func (a *App) publishLocked() {
	a.hub.Publish(a.snapshotLocked())
}

func (a *App) snapshotLocked() Snapshot {
	state := StateIdle
	switch {
	case a.loading:
		state = StateLoading
	case a.cursor.Exhausted:
		state = StateExhausted
	}

	snap := Snapshot{
		Term:       a.term,
		Characters: append([]models.Character(nil), a.results...),
		Cursor:     a.cursor,
		State:      state,
		Err:        a.lastErr,
	}
	if a.lastErr != nil {
		snap.LastError = a.lastErr.Error()
	}
	return snap
}
