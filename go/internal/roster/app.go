package roster

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/dreamteams/go/internal/events"
	"github.com/mcdev12/dreamteams/go/internal/models"
	"github.com/mcdev12/dreamteams/go/internal/notify"
	"github.com/rs/zerolog/log"
)

const defaultHydrationLimit = 4

// CharacterFetcher resolves a member id into a character.
type CharacterFetcher interface {
	FetchByID(ctx context.Context, id int) (*models.Character, error)
}

// SessionSource supplies the logged-in user that owns the roster.
type SessionSource interface {
	Current() (models.Session, error)
}

// App handles roster business logic
type App struct {
	repo       TeamRepository
	characters CharacterFetcher
	sessions   SessionSource
	publisher  events.Publisher
	clock      clockwork.Clock
	hydration  int

	// lifetime bounds hydration started on behalf of other operations
	lifetime context.Context
	cancel   context.CancelFunc

	mu             sync.Mutex
	ownerID        string
	loaded         bool
	generation     uint64
	teams          []*models.DreamTeam
	pendingCreates int
	pendingAdds    map[uuid.UUID]int

	hub *notify.Hub[Snapshot]
}

type Option func(*App)

// WithHydrationLimit bounds the number of concurrent member lookups during LoadTeams.
func WithHydrationLimit(n int) Option {
	return func(a *App) {
		if n > 0 {
			a.hydration = n
		}
	}
}

func WithClock(clock clockwork.Clock) Option {
	return func(a *App) {
		a.clock = clock
	}
}

// NewApp creates a new roster App
func NewApp(repo TeamRepository, characters CharacterFetcher, sessions SessionSource, publisher events.Publisher, opts ...Option) *App {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	a := &App{
		repo:        repo,
		characters:  characters,
		sessions:    sessions,
		publisher:   publisher,
		clock:       clockwork.NewRealClock(),
		hydration:   defaultHydrationLimit,
		pendingAdds: make(map[uuid.UUID]int),
		hub:         notify.NewHub[Snapshot](),
	}
	a.lifetime, a.cancel = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// LoadTeams replaces the local roster with the session owner's records.
// Members are resolved in the background; the returned Hydration reports when that finishes.
// ctx must outlive the call for hydration to complete.
func (a *App) LoadTeams(ctx context.Context) (*Hydration, error) {
	return a.loadTeams(ctx, ctx)
}

// loadTeams lists records under ctx and resolves members under hydrateCtx.
// A load that returns after the roster has moved on to another generation or user is discarded.
func (a *App) loadTeams(ctx, hydrateCtx context.Context) (*Hydration, error) {
	sess, err := a.currentSession()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	started := a.generation
	a.mu.Unlock()

	records, err := a.repo.ListTeamsByOwner(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}

	teams := make([]*models.DreamTeam, len(records))
	jobs := make([]hydrationJob, 0, len(records)*models.MaxMembersPerTeam)
	for i, rec := range records {
		team := &models.DreamTeam{
			LocalID:     uuid.New(),
			RemoteID:    rec.ID,
			Name:        rec.Name,
			Description: rec.Description,
			Members:     []models.Character{},
		}
		teams[i] = team
		for _, id := range rec.MemberIDs {
			jobs = append(jobs, hydrationJob{teamID: team.LocalID, characterID: id})
		}
	}

	a.mu.Lock()
	if a.generation != started {
		a.mu.Unlock()
		log.Debug().Str("owner_id", sess.UserID).Msg("dropping superseded roster load")
		return nil, ErrSuperseded
	}
	current, err := a.currentSession()
	if err != nil {
		a.mu.Unlock()
		return nil, err
	}
	if current.UserID != sess.UserID {
		a.mu.Unlock()
		log.Debug().Str("owner_id", sess.UserID).Msg("dropping roster load for previous session")
		return nil, ErrSuperseded
	}
	a.ownerID = sess.UserID
	a.loaded = true
	a.generation++
	generation := a.generation
	a.teams = teams
	a.pendingAdds = make(map[uuid.UUID]int)
	a.publishLocked()
	a.mu.Unlock()

	a.emit(ctx, events.TeamsLoaded, sess.UserID, "", loadedPayload{Count: len(teams)})

	log.Info().
		Str("owner_id", sess.UserID).
		Int("teams", len(teams)).
		Int("members", len(jobs)).
		Msg("roster loaded")

	return a.hydrate(hydrateCtx, generation, jobs), nil
}

// CreateTeam validates and persists a new empty team, then adds it to the roster.
func (a *App) CreateTeam(ctx context.Context, req CreateTeamRequest) (*models.DreamTeam, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if !req.AcceptedTerms {
		return nil, ErrTermsNotAccepted
	}

	sess, err := a.currentSession()
	if err != nil {
		return nil, err
	}
	if err := a.ensureLoaded(ctx, sess); err != nil {
		return nil, err
	}

	a.mu.Lock()
	if len(a.teams)+a.pendingCreates >= models.MaxTeamsPerUser {
		a.mu.Unlock()
		return nil, ErrTeamLimitReached
	}
	a.pendingCreates++
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.pendingCreates--
		a.mu.Unlock()
	}()

	record, err := a.repo.CreateTeam(ctx, CreateTeamRecordRequest{
		OwnerID:     sess.UserID,
		Name:        name,
		Description: models.TruncateDescription(req.Description),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	team := &models.DreamTeam{
		LocalID:     uuid.New(),
		RemoteID:    record.ID,
		Name:        record.Name,
		Description: record.Description,
		Members:     []models.Character{},
	}

	a.mu.Lock()
	// a concurrent reload may already have picked the new record up
	if i := slices.IndexFunc(a.teams, func(t *models.DreamTeam) bool { return t.RemoteID == record.ID }); i >= 0 {
		team = a.teams[i]
	} else if a.ownerID == sess.UserID {
		a.teams = append(a.teams, team)
	}
	out := team.Clone()
	a.publishLocked()
	a.mu.Unlock()

	a.emit(ctx, events.TeamCreated, sess.UserID, record.ID, teamPayload{Name: out.Name, Description: out.Description})

	return &out, nil
}

// AddMember appends character to the team both remotely and locally.
// The remote member list is read, extended and written back; concurrent writers to the
// same record race and the last write wins.
func (a *App) AddMember(ctx context.Context, teamID uuid.UUID, character models.Character) (*models.DreamTeam, error) {
	sess, err := a.currentSession()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	team, err := a.teamLocked(sess, teamID)
	if err != nil {
		a.mu.Unlock()
		return nil, err
	}
	if !team.Persisted() {
		a.mu.Unlock()
		return nil, ErrTeamNotPersisted
	}
	if team.HasMember(character.ID) {
		a.mu.Unlock()
		return nil, ErrAlreadyMember
	}
	if len(team.Members)+a.pendingAdds[teamID] >= models.MaxMembersPerTeam {
		a.mu.Unlock()
		return nil, ErrTeamFull
	}
	a.pendingAdds[teamID]++
	remoteID := team.RemoteID
	a.mu.Unlock()

	defer a.releaseAdd(teamID)

	record, err := a.ownedRecord(ctx, sess, remoteID)
	if err != nil {
		return nil, err
	}
	if slices.Contains(record.MemberIDs, character.ID) {
		return nil, ErrAlreadyMember
	}
	if len(record.MemberIDs) >= models.MaxMembersPerTeam {
		return nil, ErrTeamFull
	}

	memberIDs := append(slices.Clone(record.MemberIDs), character.ID)
	if _, err := a.repo.UpdateTeamMembers(ctx, remoteID, memberIDs); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	a.mu.Lock()
	team, err = a.teamLocked(sess, teamID)
	if err != nil {
		a.mu.Unlock()
		return nil, err
	}
	if !team.HasMember(character.ID) {
		team.Members = append(team.Members, character)
	}
	out := team.Clone()
	a.publishLocked()
	a.mu.Unlock()

	a.emit(ctx, events.MemberAdded, sess.UserID, remoteID, memberAddedPayload{
		TeamName:  out.Name,
		Character: character,
		Size:      len(memberIDs),
	})

	return &out, nil
}

// RemoveMember drops characterID from the team both remotely and locally.
func (a *App) RemoveMember(ctx context.Context, teamID uuid.UUID, characterID int) (*models.DreamTeam, error) {
	sess, err := a.currentSession()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	team, err := a.teamLocked(sess, teamID)
	if err != nil {
		a.mu.Unlock()
		return nil, err
	}
	if !team.Persisted() {
		a.mu.Unlock()
		return nil, ErrTeamNotPersisted
	}
	remoteID := team.RemoteID
	localMember := team.HasMember(characterID)
	a.mu.Unlock()

	record, err := a.ownedRecord(ctx, sess, remoteID)
	if err != nil {
		return nil, err
	}

	size := len(record.MemberIDs)
	if slices.Contains(record.MemberIDs, characterID) {
		memberIDs := slices.DeleteFunc(slices.Clone(record.MemberIDs), func(id int) bool {
			return id == characterID
		})
		if _, err := a.repo.UpdateTeamMembers(ctx, remoteID, memberIDs); err != nil {
			return nil, fmt.Errorf("failed to remove member: %w", err)
		}
		size = len(memberIDs)
	} else if !localMember {
		return nil, ErrNotMember
	}

	a.mu.Lock()
	team, err = a.teamLocked(sess, teamID)
	if err != nil {
		a.mu.Unlock()
		return nil, err
	}
	team.Members = slices.DeleteFunc(team.Members, func(c models.Character) bool {
		return c.ID == characterID
	})
	out := team.Clone()
	a.publishLocked()
	a.mu.Unlock()

	a.emit(ctx, events.MemberRemoved, sess.UserID, remoteID, memberRemovedPayload{
		TeamName:    out.Name,
		CharacterID: characterID,
		Size:        size,
	})

	return &out, nil
}

// DeleteTeam removes the remote record and then the local team. Failures leave the roster unchanged.
func (a *App) DeleteTeam(ctx context.Context, teamID uuid.UUID) error {
	sess, err := a.currentSession()
	if err != nil {
		return err
	}

	a.mu.Lock()
	team, err := a.teamLocked(sess, teamID)
	if err != nil {
		a.mu.Unlock()
		return err
	}
	if !team.Persisted() {
		a.mu.Unlock()
		return ErrTeamNotPersisted
	}
	remoteID := team.RemoteID
	name := team.Name
	a.mu.Unlock()

	record, err := a.ownedRecord(ctx, sess, remoteID)
	if err != nil {
		return err
	}
	if err := a.repo.DeleteTeam(ctx, record.ID); err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}

	a.mu.Lock()
	a.teams = slices.DeleteFunc(a.teams, func(t *models.DreamTeam) bool {
		return t.LocalID == teamID
	})
	delete(a.pendingAdds, teamID)
	a.publishLocked()
	a.mu.Unlock()

	a.emit(ctx, events.TeamDeleted, sess.UserID, remoteID, teamPayload{Name: name})

	return nil
}

// Teams returns copies of the local teams in roster order.
func (a *App) Teams() []models.DreamTeam {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cloneTeamsLocked()
}

func (a *App) Team(teamID uuid.UUID) (models.DreamTeam, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, t := range a.teams {
		if t.LocalID == teamID {
			return t.Clone(), nil
		}
	}
	return models.DreamTeam{}, ErrTeamNotFound
}

func (a *App) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *App) Subscribe() (<-chan Snapshot, func()) {
	return a.hub.Subscribe()
}

// Reset forgets the local roster and drops any hydration still running.
func (a *App) Reset() {
	a.mu.Lock()
	a.ownerID = ""
	a.loaded = false
	a.generation++
	a.teams = nil
	a.pendingAdds = make(map[uuid.UUID]int)
	a.publishLocked()
	a.mu.Unlock()
}

func (a *App) Close() {
	a.cancel()
	a.hub.Close()
}

func (a *App) currentSession() (models.Session, error) {
	sess, err := a.sessions.Current()
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %w", ErrNoSession, err)
	}
	return sess, nil
}

// ensureLoaded loads the roster when it is empty or belongs to another user,
// so the team limit is checked against the owner's real count.
// Members resolve under the App lifetime since ctx usually ends with the caller's request.
func (a *App) ensureLoaded(ctx context.Context, sess models.Session) error {
	if a.loadedFor(sess.UserID) {
		return nil
	}
	_, err := a.loadTeams(ctx, a.lifetime)
	if errors.Is(err, ErrSuperseded) && a.loadedFor(sess.UserID) {
		return nil
	}
	return err
}

func (a *App) loadedFor(ownerID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loaded && a.ownerID == ownerID
}

func (a *App) teamLocked(sess models.Session, teamID uuid.UUID) (*models.DreamTeam, error) {
	if a.ownerID != sess.UserID {
		return nil, ErrTeamNotFound
	}
	for _, t := range a.teams {
		if t.LocalID == teamID {
			return t, nil
		}
	}
	return nil, ErrTeamNotFound
}

// ownedRecord fetches the remote record and hides records owned by someone else.
func (a *App) ownedRecord(ctx context.Context, sess models.Session, remoteID string) (*models.TeamRecord, error) {
	record, err := a.repo.GetTeam(ctx, remoteID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrTeamNotFound, err)
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	if record.OwnerID != "" && record.OwnerID != sess.UserID {
		return nil, ErrTeamNotFound
	}
	return record, nil
}

func (a *App) releaseAdd(teamID uuid.UUID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pendingAdds[teamID] <= 1 {
		delete(a.pendingAdds, teamID)
		return
	}
	a.pendingAdds[teamID]--
}

func (a *App) emit(ctx context.Context, eventType events.EventType, ownerID, teamID string, payload any) {
	event, err := events.NewRosterEvent(eventType, ownerID, teamID, payload, a.clock.Now())
	if err != nil {
		log.Error().Err(err).Str("event_type", string(eventType)).Msg("failed to build roster event")
		return
	}
	if err := a.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		log.Warn().
			Err(err).
			Str("event_type", string(eventType)).
			Str("team_id", teamID).
			Msg("failed to publish roster event")
	}
}

func (a *App) cloneTeamsLocked() []models.DreamTeam {
	out := make([]models.DreamTeam, len(a.teams))
	for i, t := range a.teams {
		out[i] = t.Clone()
	}
	return out
}

// publishLocked hands the current roster to subscribers. Holding a.mu keeps snapshots in order.
func (a *App) publishLocked() {
	a.hub.Publish(a.snapshotLocked())
}

func (a *App) snapshotLocked() Snapshot {
	return Snapshot{
		OwnerID: a.ownerID,
		Loaded:  a.loaded,
		Teams:   a.cloneTeamsLocked(),
	}
}
