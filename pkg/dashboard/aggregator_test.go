package dashboard_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stickies/pkg/adapters/headless"
	"github.com/aretw0/stickies/pkg/adapters/memory"
	"github.com/aretw0/stickies/pkg/bus"
	"github.com/aretw0/stickies/pkg/core"
	"github.com/aretw0/stickies/pkg/dashboard"
)

// gatedStore answers the n-th ListAll with results[n] once gates[n] is closed.
type gatedStore struct {
	calls   atomic.Int32
	gates   []chan struct{}
	results [][]core.NoteSummary
}

func (g *gatedStore) ListAll(ctx context.Context) ([]core.NoteSummary, error) {
	n := g.calls.Add(1) - 1
	<-g.gates[n]
	return g.results[n], nil
}

func (g *gatedStore) Delete(ctx context.Context, id core.NoteID) error { return nil }

// slowCreator blocks until released and counts creations.
type slowCreator struct {
	created atomic.Int32
	release chan struct{}
	err     error
}

func (c *slowCreator) CreateNote(ctx context.Context) (core.NoteID, error) {
	<-c.release
	if c.err != nil {
		return "", c.err
	}
	c.created.Add(1)
	return "new", nil
}

func TestAggregator_RefreshReplacesList(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Save(ctx, "a", "alpha"))

	agg := dashboard.New(store, nil, headless.NewManager())
	require.NoError(t, agg.Refresh(ctx))
	require.Len(t, agg.Summaries(), 1)

	require.NoError(t, store.Delete(ctx, "a"))
	require.NoError(t, store.Save(ctx, "b", "beta"))
	require.NoError(t, agg.Refresh(ctx))

	list := agg.Summaries()
	require.Len(t, list, 1)
	assert.Equal(t, core.NoteID("b"), list[0].ID)
	assert.Equal(t, "beta", list[0].Preview)
}

func TestAggregator_OlderResponseNeverOverwritesNewer(t *testing.T) {
	older := []core.NoteSummary{{ID: "old"}}
	newer := []core.NoteSummary{{ID: "old"}, {ID: "new"}}
	store := &gatedStore{
		gates:   []chan struct{}{make(chan struct{}), make(chan struct{})},
		results: [][]core.NoteSummary{older, newer},
	}
	agg := dashboard.New(store, nil, headless.NewManager())
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = agg.Refresh(ctx)
	}()
	require.Eventually(t, func() bool { return store.calls.Load() == 1 }, time.Second, time.Millisecond)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = agg.Refresh(ctx)
	}()
	require.Eventually(t, func() bool { return store.calls.Load() == 2 }, time.Second, time.Millisecond)

	// The newer request resolves first, then the older one.
	close(store.gates[1])
	require.Eventually(t, func() bool { return len(agg.Summaries()) == 2 }, time.Second, time.Millisecond)
	close(store.gates[0])
	wg.Wait()

	assert.Equal(t, newer, agg.Summaries())
}

func TestAggregator_ListFailureKeepsPreviousList(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Save(ctx, "a", "alpha"))

	agg := dashboard.New(store, nil, headless.NewManager())
	require.NoError(t, agg.Refresh(ctx))

	store.BeforeList = func() error { return errors.New("store unreachable") }
	require.Error(t, agg.Refresh(ctx))

	assert.Len(t, agg.Summaries(), 1)
	assert.Equal(t, uint64(1), agg.State().(dashboard.AggregatorState).Failures)
}

func TestAggregator_ConcurrentCreateMakesOneNote(t *testing.T) {
	creator := &slowCreator{release: make(chan struct{})}
	agg := dashboard.New(memory.NewStore(), creator, headless.NewManager())
	ctx := context.Background()

	first := make(chan error, 1)
	go func() {
		_, err := agg.CreateNote(ctx)
		first <- err
	}()
	require.Eventually(t, agg.Creating, time.Second, time.Millisecond)

	_, err := agg.CreateNote(ctx)
	assert.ErrorIs(t, err, core.ErrCreateInFlight)

	close(creator.release)
	require.NoError(t, <-first)
	assert.Equal(t, int32(1), creator.created.Load())
	assert.False(t, agg.Creating())
}

func TestAggregator_CreateFailureReleasesGuard(t *testing.T) {
	creator := &slowCreator{release: make(chan struct{}), err: errors.New("no space")}
	close(creator.release)
	agg := dashboard.New(memory.NewStore(), creator, headless.NewManager())

	_, err := agg.CreateNote(context.Background())
	require.Error(t, err)
	assert.False(t, agg.Creating())
}

func TestAggregator_DeleteRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Save(ctx, "a", "alpha"))
	windows := headless.NewManager()
	require.NoError(t, windows.Open(ctx, core.NoteLabel("a")))

	confirm := false
	agg := dashboard.New(store, nil, windows, dashboard.WithConfirmer(func(ctx context.Context, id core.NoteID) bool {
		return confirm
	}))

	require.NoError(t, agg.DeleteNote(ctx, "a"))
	assert.Equal(t, 1, store.Len(), "declined delete must be a no-op")

	confirm = true
	require.NoError(t, agg.DeleteNote(ctx, "a"))
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, agg.Summaries())
	_, open := windows.Get(core.NoteLabel("a"))
	assert.False(t, open, "the note's window is destroyed with it")
}

func TestAggregator_DeleteMissingNote(t *testing.T) {
	agg := dashboard.New(memory.NewStore(), nil, headless.NewManager())
	assert.ErrorIs(t, agg.DeleteNote(context.Background(), "ghost"), core.ErrNotFound)
}

func TestAggregator_OpenNoteUsesEncodedLabel(t *testing.T) {
	windows := headless.NewManager()
	agg := dashboard.New(memory.NewStore(), nil, windows)

	require.NoError(t, agg.OpenNote(context.Background(), "42"))
	_, ok := windows.Get("note-42")
	assert.True(t, ok)
}

func TestAggregator_RefetchesOncePerSave(t *testing.T) {
	ctx := context.Background()
	b := bus.New()
	require.NoError(t, b.Start(ctx))
	t.Cleanup(func() { _ = b.Close() })

	store := memory.NewStore()
	var lists atomic.Int32
	store.BeforeList = func() error {
		lists.Add(1)
		return nil
	}

	agg := dashboard.New(store, nil, headless.NewManager())
	require.NoError(t, agg.Start(ctx, b))
	t.Cleanup(agg.Stop)
	require.Equal(t, int32(1), lists.Load(), "initial refresh")

	// A note saved elsewhere, announced the way an editor session does.
	require.NoError(t, store.Save(ctx, "xyz", "saved elsewhere"))
	b.Publish("xyz")

	require.Eventually(t, func() bool { return lists.Load() == 2 }, time.Second, 5*time.Millisecond)
	require.Never(t, func() bool { return lists.Load() > 2 }, 100*time.Millisecond, 10*time.Millisecond)

	list := agg.Summaries()
	require.Len(t, list, 1)
	assert.Equal(t, core.NoteID("xyz"), list[0].ID)
}
