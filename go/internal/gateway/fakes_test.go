package gateway

import (
	"context"
	"sync"

	"github.com/google/uuid"
	parse "github.com/mcdev12/dreamteams/go/clients/parse_client"
	"github.com/mcdev12/dreamteams/go/internal/catalog"
	"github.com/mcdev12/dreamteams/go/internal/models"
	"github.com/mcdev12/dreamteams/go/internal/notify"
	"github.com/mcdev12/dreamteams/go/internal/roster"
	"github.com/mcdev12/dreamteams/go/internal/session"
)

type fakeSessions struct {
	mu      sync.Mutex
	current *models.Session
}

func (f *fakeSessions) Login(ctx context.Context, identity, secret string) (*models.Session, error) {
	if identity == "" || secret == "" {
		return nil, session.ErrMissingCredentials
	}
	if secret != "webs" {
		perr := &parse.Error{Code: 101, Message: "Invalid username/password."}
		return nil, &session.AuthError{Op: "login", Reason: perr.Message, Err: perr}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = &models.Session{UserID: "u-" + identity, Username: identity, Token: "r:secret"}
	return f.current, nil
}

func (f *fakeSessions) Signup(ctx context.Context, identity, secret string) (*models.Session, error) {
	return f.Login(ctx, identity, secret)
}

func (f *fakeSessions) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return session.ErrNoSession
	}
	f.current = nil
	return nil
}

func (f *fakeSessions) Current() (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return models.Session{}, session.ErrNoSession
	}
	return *f.current, nil
}

type fakeCatalog struct {
	mu       sync.Mutex
	snap     catalog.Snapshot
	searches []string
	hub      *notify.Hub[catalog.Snapshot]
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{hub: notify.NewHub[catalog.Snapshot](), snap: catalog.Snapshot{State: catalog.StateIdle}}
}

func (f *fakeCatalog) Search(ctx context.Context, term string) error {
	f.mu.Lock()
	f.searches = append(f.searches, term)
	f.snap = catalog.Snapshot{
		Term:       term,
		Characters: []models.Character{{ID: 1009368, Name: "Iron Man"}},
		Cursor:     catalog.Cursor{Offset: 20, Limit: 20, Total: 1, Exhausted: true},
		State:      catalog.StateExhausted,
	}
	snap := f.snap
	f.mu.Unlock()
	f.hub.Publish(snap)
	return nil
}

func (f *fakeCatalog) LoadMore(ctx context.Context) error {
	return f.Search(ctx, "")
}

func (f *fakeCatalog) FetchByID(ctx context.Context, id int) (*models.Character, error) {
	if id != 1009368 {
		return nil, catalog.ErrCharacterNotFound
	}
	return &models.Character{ID: id, Name: "Iron Man"}, nil
}

func (f *fakeCatalog) Snapshot() catalog.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeCatalog) Subscribe() (<-chan catalog.Snapshot, func()) {
	return f.hub.Subscribe()
}

type fakeRoster struct {
	mu    sync.Mutex
	loads int
	teams []models.DreamTeam
	owner string
	hub   *notify.Hub[roster.Snapshot]
	ses   *fakeSessions
}

func newFakeRoster(ses *fakeSessions) *fakeRoster {
	return &fakeRoster{hub: notify.NewHub[roster.Snapshot](), ses: ses}
}

func (f *fakeRoster) LoadTeams(ctx context.Context) (*roster.Hydration, error) {
	sess, err := f.ses.Current()
	if err != nil {
		return nil, roster.ErrNoSession
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	f.owner = sess.UserID
	return &roster.Hydration{}, nil
}

func (f *fakeRoster) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

func (f *fakeRoster) CreateTeam(ctx context.Context, req roster.CreateTeamRequest) (*models.DreamTeam, error) {
	if _, err := f.ses.Current(); err != nil {
		return nil, roster.ErrNoSession
	}
	if req.Name == "" {
		return nil, roster.ErrNameRequired
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.teams) >= models.MaxTeamsPerUser {
		return nil, roster.ErrTeamLimitReached
	}
	team := models.DreamTeam{LocalID: uuid.New(), RemoteID: "obj", Name: req.Name, Members: []models.Character{}}
	f.teams = append(f.teams, team)
	return &team, nil
}

func (f *fakeRoster) find(id uuid.UUID) int {
	for i, t := range f.teams {
		if t.LocalID == id {
			return i
		}
	}
	return -1
}

func (f *fakeRoster) AddMember(ctx context.Context, teamID uuid.UUID, character models.Character) (*models.DreamTeam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(teamID)
	if i < 0 {
		return nil, roster.ErrTeamNotFound
	}
	if f.teams[i].HasMember(character.ID) {
		return nil, roster.ErrAlreadyMember
	}
	f.teams[i].Members = append(f.teams[i].Members, character)
	out := f.teams[i].Clone()
	return &out, nil
}

func (f *fakeRoster) RemoveMember(ctx context.Context, teamID uuid.UUID, characterID int) (*models.DreamTeam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(teamID)
	if i < 0 {
		return nil, roster.ErrTeamNotFound
	}
	if !f.teams[i].HasMember(characterID) {
		return nil, roster.ErrNotMember
	}
	f.teams[i].Members = nil
	out := f.teams[i].Clone()
	return &out, nil
}

func (f *fakeRoster) DeleteTeam(ctx context.Context, teamID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(teamID)
	if i < 0 {
		return roster.ErrTeamNotFound
	}
	f.teams = append(f.teams[:i], f.teams[i+1:]...)
	return nil
}

func (f *fakeRoster) Snapshot() roster.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	teams := make([]models.DreamTeam, len(f.teams))
	for i := range f.teams {
		teams[i] = f.teams[i].Clone()
	}
	return roster.Snapshot{OwnerID: f.owner, Loaded: f.loads > 0, Teams: teams}
}

func (f *fakeRoster) Subscribe() (<-chan roster.Snapshot, func()) {
	return f.hub.Subscribe()
}
