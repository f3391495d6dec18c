package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stickies/pkg/adapters/headless"
	"github.com/aretw0/stickies/pkg/adapters/memory"
	"github.com/aretw0/stickies/pkg/app"
	"github.com/aretw0/stickies/pkg/core"
	"github.com/aretw0/stickies/pkg/window"
)

const testDelay = 30 * time.Millisecond

type fixture struct {
	app     *app.App
	store   *memory.Store
	order   *memory.Order
	windows *headless.Manager
}

func newFixture(t *testing.T, seed ...core.NoteID) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		store:   memory.NewStore(),
		order:   memory.NewOrder(),
		windows: headless.NewManager(),
	}
	for _, id := range seed {
		require.NoError(t, f.store.Save(ctx, id, "note "+string(id)))
		require.NoError(t, f.order.Touch(id))
	}

	a, err := app.New(app.Config{
		Store:   f.store,
		Order:   f.order,
		Windows: f.windows,
		Delay:   testDelay,
	})
	require.NoError(t, err)
	f.app = a

	require.NoError(t, a.Start(ctx))
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return f
}

func (f *fixture) orderIDs(t *testing.T) []core.NoteID {
	t.Helper()
	ids, err := f.order.Order()
	require.NoError(t, err)
	return ids
}

func TestApp_FirstRunCreatesOneNote(t *testing.T) {
	f := newFixture(t)

	dash, ok := f.windows.Get(core.DashboardLabel)
	require.True(t, ok, "dashboard window exists from the start")
	assert.False(t, dash.Visible)

	ids := f.orderIDs(t)
	require.Len(t, ids, 1)

	w, ok := f.windows.Get(core.NoteLabel(ids[0]))
	require.True(t, ok)
	assert.True(t, w.Visible)
	assert.Equal(t, core.NoteLabel(ids[0]), f.windows.Focused())

	require.Eventually(t, func() bool {
		return len(f.app.Dashboard().Summaries()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestApp_RestoresSessionInOrder(t *testing.T) {
	f := newFixture(t, "a", "b")

	for _, label := range []string{"note-a", "note-b"} {
		w, ok := f.windows.Get(label)
		require.True(t, ok, label)
		assert.True(t, w.Visible, label)
	}
	assert.Equal(t, "note-b", f.windows.Focused())
	assert.Equal(t, []core.NoteID{"a", "b"}, f.orderIDs(t), "restoring does not reorder the session")

	content, err := f.app.Content("a")
	require.NoError(t, err)
	assert.Equal(t, "note a", content)
}

func TestApp_FocusMovesNoteToTop(t *testing.T) {
	f := newFixture(t, "a", "b")

	require.NoError(t, f.app.FocusNote(context.Background(), "a"))
	assert.Equal(t, []core.NoteID{"b", "a"}, f.orderIDs(t))
}

func TestApp_CloseFlushesAndForgetsWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "a")

	require.NoError(t, f.app.Edit("a", "Hello world"))
	require.NoError(t, f.app.CloseWindow(ctx, "note-a"))

	content, err := f.store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", content)

	_, ok := f.windows.Get("note-a")
	assert.False(t, ok)
	_, ok = f.app.Controller("note-a")
	assert.False(t, ok)
	assert.Empty(t, f.orderIDs(t))

	assert.ErrorIs(t, f.app.Edit("a", "late"), core.ErrWindowNotFound)
}

func TestApp_SaveRefreshesDashboard(t *testing.T) {
	f := newFixture(t, "a")

	require.NoError(t, f.app.Edit("a", "fresh words"))

	require.Eventually(t, func() bool {
		list := f.app.Dashboard().Summaries()
		return len(list) == 1 && list[0].Preview == "fresh words"
	}, time.Second, 10*time.Millisecond)
}

func TestApp_DeleteDropsPendingEdit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "a", "b")

	require.NoError(t, f.app.Edit("a", "unsaved"))
	require.NoError(t, f.app.DeleteNote(ctx, "a"))

	time.Sleep(3 * testDelay)

	_, err := f.store.Load(ctx, "a")
	assert.ErrorIs(t, err, core.ErrNotFound, "a pending edit must not resurrect the note")
	_, ok := f.windows.Get("note-a")
	assert.False(t, ok)
	assert.Equal(t, []core.NoteID{"b"}, f.orderIDs(t))

	list := f.app.Dashboard().Summaries()
	require.Len(t, list, 1)
	assert.Equal(t, core.NoteID("b"), list[0].ID)
}

func TestApp_BringAllToFront(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "a", "b", "c")

	pinned, err := f.app.TogglePin(ctx, "note-b")
	require.NoError(t, err)
	require.True(t, pinned)
	require.NoError(t, f.app.Minimize(ctx, "note-a"))
	require.NoError(t, f.windows.Hide(ctx, "note-c"))

	require.NoError(t, f.app.BringAllToFront(ctx))

	a, _ := f.windows.Get("note-a")
	b, _ := f.windows.Get("note-b")
	c, _ := f.windows.Get("note-c")
	assert.False(t, a.Minimized)
	assert.False(t, a.Pinned, "pin state restored")
	assert.True(t, b.Pinned, "pin state restored")
	assert.False(t, c.Visible, "hidden windows are left alone")

	assert.Equal(t, "note-b", f.windows.Focused())
	assert.Equal(t, []core.NoteID{"a", "b", "c"}, f.orderIDs(t), "batch focus does not reorder the session")
}

func TestApp_DashboardCloseHides(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "a")

	require.NoError(t, f.app.ShowDashboard(ctx))
	dash, _ := f.windows.Get(core.DashboardLabel)
	assert.True(t, dash.Visible)

	require.NoError(t, f.app.CloseWindow(ctx, core.DashboardLabel))
	dash, ok := f.windows.Get(core.DashboardLabel)
	require.True(t, ok, "the dashboard is a singleton that is only hidden")
	assert.False(t, dash.Visible)

	_, err := f.app.TogglePin(ctx, core.DashboardLabel)
	require.NoError(t, err)
}

func TestApp_ShutdownFlushesAndKeepsSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "a", "b")

	c, ok := f.app.Controller("note-a")
	require.True(t, ok)

	require.NoError(t, f.app.Edit("a", "last words"))
	require.NoError(t, f.app.Shutdown(ctx))

	content, err := f.store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "last words", content)
	assert.Equal(t, window.PhaseDestroyed, c.Phase())
	assert.Equal(t, []core.NoteID{"a", "b"}, f.orderIDs(t))
}

func TestApp_CreateNoteOpensAndTracks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "a")

	id, err := f.app.CreateNote(ctx)
	require.NoError(t, err)

	assert.Equal(t, core.NoteLabel(id), f.windows.Focused())
	assert.Equal(t, []core.NoteID{"a", id}, f.orderIDs(t))

	st := f.app.State().(app.AppState)
	assert.Len(t, st.Windows, 3)
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := app.New(app.Config{})
	assert.Error(t, err)
}

var _ app.WindowHost = (*headless.Manager)(nil)

// labelledHost hands out its own widgets and remembers which windows asked.
type labelledHost struct {
	*headless.Manager
	mu      sync.Mutex
	widgets map[string]*headless.Widget
}

func (h *labelledHost) NewWidget(label string) core.TextWidget {
	h.mu.Lock()
	defer h.mu.Unlock()
	w := headless.NewWidget()
	h.widgets[label] = w
	return w
}

func (h *labelledHost) widget(label string) (*headless.Widget, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	w, ok := h.widgets[label]
	return w, ok
}

func TestApp_UsesWidgetsOfTheHost(t *testing.T) {
	ctx := context.Background()
	host := &labelledHost{Manager: headless.NewManager(), widgets: make(map[string]*headless.Widget)}
	store := memory.NewStore()
	a, err := app.New(app.Config{Store: store, Windows: host, Delay: testDelay})
	require.NoError(t, err)
	require.NoError(t, a.Start(ctx))
	defer a.Shutdown(ctx)

	ids, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	label := core.NoteLabel(ids[0].ID)

	w, ok := host.widget(label)
	require.True(t, ok, "note window must get its widget from the host")
	_, ok = host.widget(core.DashboardLabel)
	assert.False(t, ok, "the dashboard has no editor")

	require.NoError(t, a.Edit(ids[0].ID, "from the host"))
	assert.Equal(t, "from the host", w.Value())
	require.Eventually(t, func() bool {
		content, err := store.Load(ctx, ids[0].ID)
		return err == nil && content == "from the host"
	}, time.Second, 5*time.Millisecond)
}
