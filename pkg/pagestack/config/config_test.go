package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PAGESTACK_CONFIG", "")
	t.Setenv("FLIP_FACE_BUTTONS", "")
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "file", c.Session.Backend)
	assert.Equal(t, filepath.Join(home, ".local", "share", "pagestack", "sessions"), c.Session.Path)
	assert.Equal(t, "B", c.Input.BackButton)
	assert.Equal(t, []string{"Escape", "AC Back"}, c.Input.BackKeys)
	assert.False(t, c.Input.FlipFaceButtons)
	assert.Equal(t, "en", c.Locale.Language)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "pagestack.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[session]
backend = "sqlite"
path = "/tmp/sessions.db"
host_id = "launcher"

[input]
back_button = "menu"
evdev = true
evdev_codes = ["KEY_BACK"]

[locale]
language = "de"
`), 0o644))

	t.Setenv("PAGESTACK_CONFIG", path)
	t.Setenv("PAGESTACK_LOG_LEVEL", "debug")

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "debug", c.Log.Level, "env overrides file and defaults")
	assert.Equal(t, "sqlite", c.Session.Backend)
	assert.Equal(t, "/tmp/sessions.db", c.Session.Path)
	assert.Equal(t, "launcher", c.Session.HostID)
	assert.Equal(t, "menu", c.Input.BackButton)
	assert.True(t, c.Input.Evdev)
	assert.Equal(t, []string{"KEY_BACK"}, c.Input.EvdevCodes)
	assert.Equal(t, "de", c.Locale.Language)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "backend", content: "[session]\nbackend = \"redis\"\n", wantErr: "session.backend"},
		{name: "button", content: "[input]\nback_button = \"Z\"\n", wantErr: "input.back_button"},
		{name: "syntax", content: "[session\n", wantErr: "read config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			path := filepath.Join(dir, "bad.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Load(path)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", "config.toml")

	want := Default()
	want.Session.Backend = "memory"
	want.Session.HostID = "kiosk"
	want.Input.FlipFaceButtons = true
	want.Input.BackKeys = []string{"Backspace"}

	require.NoError(t, Save(want, path))
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file is renamed into place")

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
