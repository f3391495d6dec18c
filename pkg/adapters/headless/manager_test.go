package headless_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stickies/pkg/adapters/headless"
	"github.com/aretw0/stickies/pkg/core"
)

func TestManager_OpenCreatesThenFocuses(t *testing.T) {
	ctx := context.Background()
	var created, focused []string
	m := headless.NewManager(headless.WithHooks(headless.Hooks{
		Created: func(ctx context.Context, label string) error {
			created = append(created, label)
			return nil
		},
		Focused: func(ctx context.Context, label string) {
			focused = append(focused, label)
		},
	}))

	require.NoError(t, m.Open(ctx, "note-a"))
	require.NoError(t, m.Minimize(ctx, "note-a"))
	require.NoError(t, m.Open(ctx, "note-a"))

	assert.Equal(t, []string{"note-a"}, created, "second open must not recreate")
	assert.Equal(t, []string{"note-a", "note-a"}, focused)

	w, ok := m.Get("note-a")
	require.True(t, ok)
	assert.True(t, w.Visible)
	assert.False(t, w.Minimized)
	assert.Equal(t, "note-a", m.Focused())
}

func TestManager_CreateHookFailureAborts(t *testing.T) {
	m := headless.NewManager(headless.WithHooks(headless.Hooks{
		Created: func(ctx context.Context, label string) error {
			return errors.New("boom")
		},
	}))

	err := m.Open(context.Background(), "note-x")
	require.Error(t, err)
	_, ok := m.Get("note-x")
	assert.False(t, ok)
}

func TestManager_UnknownWindow(t *testing.T) {
	ctx := context.Background()
	m := headless.NewManager()

	assert.ErrorIs(t, m.Destroy(ctx, "note-missing"), core.ErrWindowNotFound)
	assert.ErrorIs(t, m.Hide(ctx, "main"), core.ErrWindowNotFound)
	assert.ErrorIs(t, m.SetAlwaysOnTop(ctx, "main", true), core.ErrWindowNotFound)
}

func TestManager_DestroyRunsHookAndJournals(t *testing.T) {
	ctx := context.Background()
	var destroyed []string
	m := headless.NewManager(headless.WithHooks(headless.Hooks{
		Destroyed: func(ctx context.Context, label string) {
			destroyed = append(destroyed, label)
		},
	}))

	require.NoError(t, m.Create(ctx, "main", false))
	require.NoError(t, m.SetAlwaysOnTop(ctx, "main", true))
	require.NoError(t, m.Destroy(ctx, "main"))

	assert.Equal(t, []string{"main"}, destroyed)
	assert.Equal(t, []string{"create:main", "pin=true:main", "destroy:main"}, m.Journal())
	assert.Empty(t, m.Windows())
}

func TestWidget_TypeEmitsChange(t *testing.T) {
	w := headless.NewWidget()
	var got []string
	w.Mount("initial", func(s string) { got = append(got, s) })

	assert.Equal(t, "initial", w.Value())
	w.Type("edited")
	assert.Equal(t, "edited", w.Value())
	assert.Equal(t, []string{"edited"}, got)
}
