package roster

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/mcdev12/dreamteams/go/internal/events"
	"github.com/mcdev12/dreamteams/go/internal/models"
)

type memoryRepository struct {
	mu        sync.Mutex
	records   map[string]*models.TeamRecord
	nextID    int
	failList  error
	failGet   error
	failWrite error
	failDel   error
	writes    int

	// listGate, when set, blocks ListTeamsByOwner until closed; listStarted is signalled on entry.
	listGate    chan struct{}
	listStarted chan struct{}
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: make(map[string]*models.TeamRecord)}
}

func (r *memoryRepository) seed(owner, name string, members ...int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := fmt.Sprintf("obj-%d", r.nextID)
	r.records[id] = &models.TeamRecord{ID: id, OwnerID: owner, Name: name, MemberIDs: append([]int{}, members...)}
	return id
}

func (r *memoryRepository) get(id string) (models.TeamRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return models.TeamRecord{}, false
	}
	out := *rec
	out.MemberIDs = slices.Clone(rec.MemberIDs)
	return out, true
}

func (r *memoryRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func (r *memoryRepository) ListTeamsByOwner(ctx context.Context, ownerID string) ([]models.TeamRecord, error) {
	if r.listStarted != nil {
		r.listStarted <- struct{}{}
	}
	if r.listGate != nil {
		select {
		case <-r.listGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failList != nil {
		return nil, r.failList
	}
	var out []models.TeamRecord
	for _, rec := range r.records {
		if rec.OwnerID == ownerID {
			cp := *rec
			cp.MemberIDs = slices.Clone(rec.MemberIDs)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryRepository) CreateTeam(ctx context.Context, req CreateTeamRecordRequest) (*models.TeamRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrite != nil {
		return nil, r.failWrite
	}
	r.nextID++
	id := fmt.Sprintf("obj-%d", r.nextID)
	rec := &models.TeamRecord{ID: id, OwnerID: req.OwnerID, Name: req.Name, Description: req.Description, MemberIDs: []int{}}
	r.records[id] = rec
	cp := *rec
	return &cp, nil
}

func (r *memoryRepository) GetTeam(ctx context.Context, id string) (*models.TeamRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGet != nil {
		return nil, r.failGet
	}
	rec, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	cp := *rec
	cp.MemberIDs = slices.Clone(rec.MemberIDs)
	return &cp, nil
}

func (r *memoryRepository) UpdateTeamMembers(ctx context.Context, id string, memberIDs []int) (*models.TeamRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrite != nil {
		return nil, r.failWrite
	}
	rec, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	r.writes++
	rec.MemberIDs = slices.Clone(memberIDs)
	cp := *rec
	return &cp, nil
}

func (r *memoryRepository) DeleteTeam(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDel != nil {
		return r.failDel
	}
	if _, ok := r.records[id]; !ok {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	delete(r.records, id)
	return nil
}

// fakeFetcher resolves ids to characters named after them. Ids in missing fail.
// When gate is set every lookup blocks until it is closed.
type fakeFetcher struct {
	missing map[int]bool
	gate    chan struct{}
}

func (f *fakeFetcher) FetchByID(ctx context.Context, id int) (*models.Character, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.missing[id] {
		return nil, fmt.Errorf("character %d not found", id)
	}
	return &models.Character{ID: id, Name: fmt.Sprintf("hero-%d", id)}, nil
}

type fakeSessions struct {
	mu   sync.Mutex
	sess *models.Session
}

func (f *fakeSessions) Current() (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sess == nil {
		return models.Session{}, fmt.Errorf("not logged in")
	}
	return *f.sess, nil
}

func (f *fakeSessions) set(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if userID == "" {
		f.sess = nil
		return
	}
	f.sess = &models.Session{UserID: userID, Username: userID}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.RosterEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.RosterEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
