package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonKowalski/pagestack/pkg/pagestack/navigation"
	"github.com/BrandonKowalski/pagestack/pkg/pagestack/storage"
)

// seed stores a two-entry session for "kiosk" in a fresh file store.
func seed(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PAGESTACK_CONFIG", "")

	registry := navigation.NewRegistry().
		Register("home", func(any) (navigation.Page, error) { return struct{}{}, nil }).
		Register("details", func(any) (navigation.Page, error) { return struct{}{}, nil },
			navigation.WithDecoder(navigation.DecodeAs[map[string]int]()))
	nav := navigation.NewCoordinator(registry)
	ctx := context.Background()
	require.NoError(t, nav.NavigateTo(ctx, "home", nil))
	require.NoError(t, nav.NavigateTo(ctx, "details", map[string]int{"id": 7}))
	blob, err := nav.SaveSession(ctx)
	require.NoError(t, err)

	dir := t.TempDir()
	files, err := storage.NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, files.Save(ctx, "kiosk", blob))
	require.NoError(t, files.Save(ctx, "launcher", blob))
	return dir
}

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{
		"--config", filepath.Join(dir, "missing.toml"),
		"--backend", "file",
		"--path", dir,
	}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestListCmd(t *testing.T) {
	dir := seed(t)

	out, err := run(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "kiosk")
	assert.Contains(t, out, "launcher")
	assert.Contains(t, out, "HOST")
}

func TestInspectCmd(t *testing.T) {
	dir := seed(t)

	out, err := run(t, dir, "inspect", "kiosk")
	require.NoError(t, err)
	assert.Contains(t, out, "Cursor: 1")
	assert.Contains(t, out, "details")
	assert.Contains(t, out, `{"id":7}`)
	assert.Contains(t, out, "STATE SIZE")

	_, err = run(t, dir, "inspect", "nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestClearCmd(t *testing.T) {
	dir := seed(t)

	out, err := run(t, dir, "clear", "kiosk")
	require.NoError(t, err)
	assert.Contains(t, out, "cleared kiosk")

	_, err = run(t, dir, "clear", "kiosk")
	assert.ErrorContains(t, err, "no session stored for kiosk")

	_, err = run(t, dir, "clear")
	assert.ErrorContains(t, err, "--all")

	out, err = run(t, dir, "clear", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "cleared launcher")

	out, err = run(t, dir, "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "launcher")
}
