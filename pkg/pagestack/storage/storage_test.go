package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()
	dir := t.TempDir()

	file, err := NewFile(filepath.Join(dir, "sessions"))
	require.NoError(t, err)

	db, err := OpenSQLite(filepath.Join(dir, "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return map[string]Storage{
		BackendMemory: NewMemory(),
		BackendFile:   file,
		BackendSQLite: db,
	}
}

func TestStorageContract(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Load(ctx, "main")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Save(ctx, "main", []byte(`{"version":1}`)))
			require.NoError(t, s.Save(ctx, "main", []byte(`{"version":1,"cursor":0}`)))
			require.NoError(t, s.Save(ctx, "aux", []byte(`{}`)))

			blob, err := s.Load(ctx, "main")
			require.NoError(t, err)
			assert.Equal(t, `{"version":1,"cursor":0}`, string(blob), "last write wins")

			records, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, "aux", records[0].HostID)
			assert.Equal(t, "main", records[1].HostID)
			assert.Equal(t, len(`{"version":1,"cursor":0}`), records[1].Size)
			assert.False(t, records[1].UpdatedAt.IsZero())

			require.NoError(t, s.Delete(ctx, "main"))
			assert.ErrorIs(t, s.Delete(ctx, "main"), ErrNotFound)
			_, err = s.Load(ctx, "main")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStorageRejectsInvalidHostID(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, id := range []string{"", "  ", "../escape", `a\b`, ".."} {
				assert.Error(t, s.Save(ctx, id, []byte("x")), "id %q", id)
			}
		})
	}
}

func TestSQLiteReopenKeepsSessions(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.db")

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Save(ctx, "main", []byte("blob")))
	require.NoError(t, db.Close())

	db, err = OpenSQLite(path)
	require.NoError(t, err, "migrations are idempotent")
	defer db.Close()

	blob, err := db.Load(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, "blob", string(blob))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open("FILE", filepath.Join(dir, "files"))
	require.NoError(t, err)
	assert.IsType(t, &File{}, s)

	s, err = Open("sqlite", filepath.Join(dir, "db.sqlite"))
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())

	_, err = Open("redis", "")
	assert.Error(t, err)

	_, err = Open("file", "")
	assert.Error(t, err)
}
