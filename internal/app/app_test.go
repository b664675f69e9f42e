package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"torrentbot/internal/config"
	"torrentbot/internal/render"
	"torrentbot/internal/storage"
	"torrentbot/pkg/logx"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNewBuildsComponents(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
logging:
  level: error
render:
  timezone: UTC
  page_size: 3
  templates:
    new-torrent: "Added {{.Name}} ({{.ID}})"
storage:
  driver: file
  path: `+dir+`
`)
	ctx := context.Background()
	a, err := New(ctx, path, true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Equal(t, 3, a.PageSize())
	require.NotNil(t, a.Store())

	out, err := a.Renderer().NewTorrent(render.NewTorrent{ID: 7, Name: "debian.iso"})
	require.NoError(t, err)
	assert.Equal(t, "Added debian.iso (7)", out)

	require.NoError(t, a.Store().Save(ctx, storage.Preferences(`{"enabled":true}`)))
	_, err = os.Stat(filepath.Join(dir, storage.DefaultFileName))
	assert.NoError(t, err)
}

func TestNewWithoutStore(t *testing.T) {
	path := writeConfig(t, "storage:\n  driver: sqlite\n  path: "+filepath.Join(t.TempDir(), "p.db")+"\n")
	a, err := New(context.Background(), path, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	assert.Nil(t, a.Store())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"timezone":      "render:\n  timezone: Mars/Olympus\n",
		"units":         "render:\n  byte_units: nibbles\n",
		"unknown kind":  "render:\n  templates:\n    weather: hi\n",
		"broken tmpl":   "render:\n  templates:\n    new_torrent: \"{{.Name\"\n",
		"unknown field": "render:\n  templates:\n    new_torrent: \"{{.Nope}}\"\n",
		"page size":     "render:\n  page_size: -1\n",
		"sqlite path":   "storage:\n  driver: sqlite\n",
		"redis url":     "storage:\n  driver: redis\n",
		"driver":        "storage:\n  driver: etcd\n",
		"timeout":       "storage:\n  driver: mongo\n  url: mongodb://x\n  timeout: later\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(context.Background(), writeConfig(t, body), true)
			assert.Error(t, err)
		})
	}
}

func TestMapStorageConfig(t *testing.T) {
	sc, enabled, err := mapStorageConfig(&config.Config{Storage: config.StorageConfig{Driver: " None "}})
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.Equal(t, storage.Config{}, sc)

	sc, enabled, err = mapStorageConfig(&config.Config{Storage: config.StorageConfig{
		Driver: "SQLite", Path: "/tmp/p.db",
	}})
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.Equal(t, "sqlite", sc.Driver)
	assert.Equal(t, time.Second, sc.BusyTimeout)

	sc, _, err = mapStorageConfig(&config.Config{Storage: config.StorageConfig{
		Driver: "redis", URL: "redis://localhost", Timeout: "2s", Key: "chat-9",
	}})
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, sc.Timeout)
	assert.Equal(t, "chat-9", sc.Key)

	_, _, err = mapStorageConfig(&config.Config{Storage: config.StorageConfig{Driver: "etcd"}})
	assert.ErrorIs(t, err, storage.ErrUnknownDriver)
}

func TestMapLoggingConfig(t *testing.T) {
	lc := mapLoggingConfig(&config.Config{Logging: config.LoggingConfig{
		Level: "warn",
		File:  config.LoggingFile{Enabled: true, Path: "bot.log", MaxBackups: 2},
	}})
	assert.Equal(t, logx.Config{
		Level: "warn",
		File:  logx.FileConfig{Enabled: true, Path: "bot.log", MaxBackups: 2},
	}, lc)
}

func TestWatchAppliesRenderChanges(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: error\nrender:\n  templates:\n    new_torrent: \"one {{.Name}}\"\n")
	a, err := New(context.Background(), path, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	applied := make(chan *render.Renderer, 4)
	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx, func(r *render.Renderer) { applied <- r }) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	next := []byte("logging:\n  level: error\nrender:\n  page_size: 4\n  templates:\n    new_torrent: \"two {{.Name}}\"\n")
	deadline := time.After(10 * time.Second)
	tick := time.NewTicker(300 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case r := <-applied:
			out, err := r.NewTorrent(render.NewTorrent{Name: "x"})
			require.NoError(t, err)
			assert.Equal(t, "two x", out)
			assert.Same(t, r, a.Renderer())
			assert.Equal(t, 4, a.PageSize())
			return
		case <-tick.C:
			require.NoError(t, os.WriteFile(path, next, 0o600))
		case <-deadline:
			t.Fatal("config change was not applied")
		}
	}
}
