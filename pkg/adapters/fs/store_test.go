package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stickies/pkg/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(Config{Path: t.TempDir()})
	require.NoError(t, s.Initialize(context.Background()))
	return s
}

func TestStore_CreateWritesEmptyFile(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateNote(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	data, err := os.ReadFile(filepath.Join(s.NotesDir(), string(id)+".md"))
	require.NoError(t, err)
	assert.Empty(t, data)

	content, err := s.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "", content)
}

func TestStore_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Save(ctx, "abc", "# Hello"))
	require.NoError(t, s.Save(ctx, "abc", "# Hello again"))

	content, err := s.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "# Hello again", content)

	require.NoError(t, s.Delete(ctx, "abc"))

	_, err = s.Load(ctx, "abc")
	assert.ErrorIs(t, err, core.ErrNotFound)

	err = s.Delete(ctx, "abc")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStore_RejectsUnsafeIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, id := range []core.NoteID{"", "..", "../escape", "a/b", `a\b`, TempFilePrefix + "x"} {
		err := s.Save(ctx, id, "x")
		assert.ErrorIs(t, err, core.ErrStore, "id %q", id)
	}
	_, err := os.Stat(filepath.Join(filepath.Dir(s.NotesDir()), "escape.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestStore_ListAllOrderAndPreview(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Save(ctx, "old", "old note"))
	require.NoError(t, s.Save(ctx, "new", "---\ntitle: x\n---\n"+strings.Repeat("é", 150)))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(s.NotesDir(), "old.md"), past, past))

	// Foreign files in the notes directory are not notes.
	require.NoError(t, os.WriteFile(filepath.Join(s.NotesDir(), "readme.txt"), []byte("x"), 0o644))

	list, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, core.NoteID("new"), list[0].ID)
	assert.Equal(t, strings.Repeat("é", DefaultPreviewLength), list[0].Preview)
	assert.Equal(t, core.NoteID("old"), list[1].ID)
	assert.Equal(t, "old note", list[1].Preview)
}

func TestStore_ListAllEmpty(t *testing.T) {
	s := NewStore(Config{Path: filepath.Join(t.TempDir(), "fresh")})

	list, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_PreviewCacheFollowsSaves(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Save(ctx, "n", "first"))
	list, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "first", list[0].Preview)
	assert.Equal(t, 1, s.State().(StoreState).CacheSize)

	require.NoError(t, s.Save(ctx, "n", "second"))
	list, err = s.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", list[0].Preview)
}

func TestStore_InitializeMustExist(t *testing.T) {
	s := NewStore(Config{Path: filepath.Join(t.TempDir(), "missing"), MustExist: true})
	assert.Error(t, s.Initialize(context.Background()))
}
