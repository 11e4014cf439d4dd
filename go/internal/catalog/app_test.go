package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	marvel "github.com/mcdev12/dreamteams/go/clients/marvel_client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves an in-memory catalog. When gate is set, every list call
// blocks until a value is sent on it.
type fakeSource struct {
	mu         sync.Mutex
	characters []marvel.Character
	calls      []marvel.ListCharactersParams
	listCount  atomic.Int32
	gate       chan struct{}
	started    chan struct{}
	failNext   error
}

func newFakeSource(names ...string) *fakeSource {
	s := &fakeSource{}
	for i, n := range names {
		s.characters = append(s.characters, marvel.Character{
			ID:        1000 + i,
			Name:      n,
			Thumbnail: marvel.Image{Path: fmt.Sprintf("http://img/%d", i), Extension: "jpg"},
		})
	}
	return s
}

func (s *fakeSource) ListCharacters(ctx context.Context, p marvel.ListCharactersParams) (*marvel.CharacterDataContainer, error) {
	s.listCount.Add(1)
	s.mu.Lock()
	s.calls = append(s.calls, p)
	gate, started := s.gate, s.started
	failure := s.failNext
	s.failNext = nil
	s.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if failure != nil {
		return nil, failure
	}

	var matched []marvel.Character
	for _, c := range s.characters {
		if p.NameStartsWith == "" || strings.HasPrefix(strings.ToLower(c.Name), strings.ToLower(p.NameStartsWith)) {
			matched = append(matched, c)
		}
	}
	page := &marvel.CharacterDataContainer{Offset: p.Offset, Limit: p.Limit, Total: len(matched)}
	if p.Offset < len(matched) {
		end := p.Offset + p.Limit
		if end > len(matched) {
			end = len(matched)
		}
		page.Results = matched[p.Offset:end]
	}
	page.Count = len(page.Results)
	return page, nil
}

func (s *fakeSource) GetCharacter(ctx context.Context, id int) (*marvel.Character, error) {
	for _, c := range s.characters {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, marvel.ErrNotFound
}

func (s *fakeSource) lastCall() marvel.ListCharactersParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

func names(snap Snapshot) []string {
	out := make([]string, len(snap.Characters))
	for i, c := range snap.Characters {
		out[i] = c.Name
	}
	return out
}

func TestLoadMore_AppendsPagesAndAdvancesOffset(t *testing.T) {
	src := newFakeSource("A-Bomb", "Abyss", "Adam Warlock", "Agent X", "Angel")
	app := NewApp(src, 2)
	ctx := context.Background()

	require.NoError(t, app.LoadMore(ctx))
	snap := app.Snapshot()
	assert.Equal(t, []string{"A-Bomb", "Abyss"}, names(snap))
	assert.Equal(t, Cursor{Offset: 2, Limit: 2, Total: 5}, snap.Cursor)
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, "https://img/0.jpg", snap.Characters[0].ImageURL)

	require.NoError(t, app.LoadMore(ctx))
	assert.Equal(t, 2, src.lastCall().Offset)
	assert.Len(t, app.Snapshot().Characters, 4)
}

func TestLoadMore_ExhaustedStopsFetching(t *testing.T) {
	src := newFakeSource("A", "B", "C")
	app := NewApp(src, 2)
	ctx := context.Background()

	require.NoError(t, app.LoadMore(ctx))
	require.NoError(t, app.LoadMore(ctx))
	snap := app.Snapshot()
	assert.True(t, snap.Cursor.Exhausted)
	assert.Equal(t, StateExhausted, snap.State)
	assert.Len(t, snap.Characters, 3)

	calls := src.listCount.Load()
	for i := 0; i < 5; i++ {
		require.NoError(t, app.LoadMore(ctx))
		require.NoError(t, app.Search(ctx, ""))
	}
	assert.Equal(t, calls, src.listCount.Load(), "no network call while exhausted")

	require.NoError(t, app.Search(ctx, "B"))
	assert.Equal(t, calls+1, src.listCount.Load(), "a new search re-arms the cursor")
}

func TestLoadMore_EmptyPageExhausts(t *testing.T) {
	app := NewApp(newFakeSource(), 5)
	require.NoError(t, app.LoadMore(context.Background()))
	assert.True(t, app.Snapshot().Cursor.Exhausted)
}

func TestLoadMore_RefusedWhileInFlight(t *testing.T) {
	src := newFakeSource("A", "B", "C", "D")
	src.gate = make(chan struct{})
	src.started = make(chan struct{}, 1)
	app := NewApp(src, 2)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- app.LoadMore(ctx) }()
	<-src.started
	assert.Equal(t, StateLoading, app.Snapshot().State)

	for i := 0; i < 10; i++ {
		require.NoError(t, app.LoadMore(ctx))
	}
	assert.Equal(t, int32(1), src.listCount.Load())

	src.gate <- struct{}{}
	require.NoError(t, <-done)
	assert.Equal(t, 2, app.Snapshot().Cursor.Offset)
}

func TestSearch_ResetsToFirstMatchingPage(t *testing.T) {
	src := newFakeSource("Spider-Man", "Hulk", "Spider-Woman", "Spiral", "Thor", "Spot")
	app := NewApp(src, 2)
	ctx := context.Background()

	require.NoError(t, app.LoadMore(ctx))
	require.NoError(t, app.LoadMore(ctx))
	require.Len(t, app.Snapshot().Characters, 4)

	require.NoError(t, app.Search(ctx, "Spi"))
	snap := app.Snapshot()
	assert.Equal(t, "Spi", snap.Term)
	assert.Equal(t, []string{"Spider-Man", "Spider-Woman"}, names(snap))
	assert.Equal(t, 0, src.lastCall().Offset)
	assert.Equal(t, "Spi", src.lastCall().NameStartsWith)

	require.NoError(t, app.LoadMore(ctx))
	snap = app.Snapshot()
	assert.Equal(t, []string{"Spider-Man", "Spider-Woman", "Spiral"}, names(snap))
	assert.True(t, snap.Cursor.Exhausted)
	for _, n := range names(snap) {
		assert.True(t, strings.HasPrefix(n, "Spi"))
	}
}

func TestSearch_ClearingTermRestartsUnfilteredListing(t *testing.T) {
	src := newFakeSource("Spider-Man", "Hulk", "Spiral")
	app := NewApp(src, 2)
	ctx := context.Background()

	require.NoError(t, app.Search(ctx, "Spi"))
	require.NoError(t, app.Search(ctx, ""))

	snap := app.Snapshot()
	assert.Equal(t, "", snap.Term)
	assert.Equal(t, []string{"Spider-Man", "Hulk"}, names(snap))
	last := src.lastCall()
	assert.Equal(t, 0, last.Offset)
	assert.Equal(t, "", last.NameStartsWith)
}

func TestSearch_SupersedesInFlightFetch(t *testing.T) {
	src := newFakeSource("Spider-Man", "Hulk", "Thor")
	src.gate = make(chan struct{})
	src.started = make(chan struct{}, 2)
	app := NewApp(src, 2)
	ctx := context.Background()

	first := make(chan error, 1)
	go func() { first <- app.LoadMore(ctx) }()
	<-src.started

	second := make(chan error, 1)
	go func() { second <- app.Search(ctx, "Hu") }()
	<-src.started

	assert.ErrorIs(t, <-first, ErrSuperseded)
	src.gate <- struct{}{}
	require.NoError(t, <-second)

	assert.Equal(t, []string{"Hulk"}, names(app.Snapshot()))
}

func TestLoadMore_ErrorReturnsToIdleAndKeepsResults(t *testing.T) {
	src := newFakeSource("A", "B", "C")
	app := NewApp(src, 2)
	ctx := context.Background()

	require.NoError(t, app.LoadMore(ctx))
	src.failNext = errors.New("network down")

	err := app.LoadMore(ctx)
	require.Error(t, err)
	snap := app.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, "network down", snap.LastError)
	assert.Len(t, snap.Characters, 2)
	assert.Equal(t, 2, snap.Cursor.Offset)

	require.NoError(t, app.LoadMore(ctx))
	snap = app.Snapshot()
	assert.Empty(t, snap.LastError)
	assert.Len(t, snap.Characters, 3)
}

func TestFetchByID(t *testing.T) {
	app := NewApp(newFakeSource("Spider-Man"), 2)

	c, err := app.FetchByID(context.Background(), 1000)
	require.NoError(t, err)
	assert.Equal(t, "Spider-Man", c.Name)
	assert.Equal(t, Cursor{Limit: 2}, app.Snapshot().Cursor)

	_, err = app.FetchByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrCharacterNotFound)
}

func TestSubscribe_ReceivesSnapshots(t *testing.T) {
	app := NewApp(newFakeSource("A"), 2)
	ch, cancel := app.Subscribe()
	defer cancel()

	require.NoError(t, app.LoadMore(context.Background()))

	deadline := time.After(time.Second)
	for {
		select {
		case snap := <-ch:
			if snap.State == StateExhausted {
				assert.Len(t, snap.Characters, 1)
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for snapshot")
		}
	}
}

func TestSubscribe_LatestSnapshotMatchesStateUnderConcurrency(t *testing.T) {
	src := newFakeSource("Spider-Man", "Hulk", "Spider-Woman", "Spiral", "Thor", "Spot", "Storm")
	app := NewApp(src, 2)
	ch, cancel := app.Subscribe()
	defer cancel()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 3 {
			case 0:
				_ = app.Search(ctx, "Spi")
			case 1:
				_ = app.Search(ctx, "")
			default:
				_ = app.LoadMore(ctx)
			}
		}(i)
	}
	wg.Wait()

	var latest Snapshot
	select {
	case latest = <-ch:
	case <-time.After(time.Second):
		t.Fatal("no snapshot published")
	}

	want := app.Snapshot()
	assert.Equal(t, want.Term, latest.Term)
	assert.Equal(t, want.Cursor, latest.Cursor)
	assert.Equal(t, want.State, latest.State)
	assert.Equal(t, names(want), names(latest))
}
