package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"torrentbot/pkg/logx"
)

func TestOpenDisabled(t *testing.T) {
	for _, driver := range []string{"", "none", " NONE "} {
		s, err := Open(context.Background(), Config{Driver: driver}, logx.Nop())
		require.NoError(t, err)
		assert.Nil(t, s)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "etcd"}, logx.Nop())
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestOpenRequiresURL(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "redis"}, logx.Nop())
	assert.Error(t, err)
	_, err = Open(context.Background(), Config{Driver: "mongo"}, logx.Nop())
	assert.Error(t, err)
	_, err = Open(context.Background(), Config{Driver: "sqlite"}, logx.Nop())
	assert.Error(t, err)
}

func TestOpenFileDriver(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(ctx, Config{Driver: "file", Path: dir}, logx.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	fs, ok := s.(*FileStore)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, DefaultFileName), fs.Path())

	require.NoError(t, s.Save(ctx, Preferences(`{"a":1}`)))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))
}

type failingStore struct{ err error }

func (f failingStore) Exists(context.Context) (bool, error)      { return false, f.err }
func (f failingStore) Load(context.Context) (Preferences, error) { return nil, f.err }
func (f failingStore) Save(context.Context, Preferences) error   { return f.err }
func (f failingStore) Close() error                              { return nil }

func TestSaveAsyncReportsOutcome(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")

	err := <-SaveAsync(ctx, failingStore{err: boom}, Preferences(`{}`), logx.Nop())
	assert.ErrorIs(t, err, boom)

	dir := t.TempDir()
	s, err := Open(ctx, Config{Driver: "file", Path: dir}, logx.Nop())
	require.NoError(t, err)

	doc := Preferences(`{"enabled":true}`)
	ch := SaveAsync(ctx, s, doc, logx.Nop())
	doc[2] = 'X' // caller buffer reuse must not affect the save
	require.NoError(t, <-ch)
	_, open := <-ch
	assert.False(t, open)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"enabled":true}`, string(got))

	assert.ErrorIs(t, <-SaveAsync(ctx, nil, doc, logx.Nop()), ErrDisabled)
}

func TestPreferencesJSON(t *testing.T) {
	type envelope struct {
		Prefs Preferences `json:"prefs"`
	}
	var e envelope
	require.NoError(t, Preferences(`{"prefs":{"x":[1,2]}}`).Decode(&e))
	assert.JSONEq(t, `{"x":[1,2]}`, string(e.Prefs))

	out, err := Encode(e)
	require.NoError(t, err)
	assert.Equal(t, `{"prefs":{"x":[1,2]}}`, string(out))

	_, err = Encode(func() {})
	assert.ErrorIs(t, err, ErrParse)
	assert.ErrorIs(t, Preferences(`[`).Decode(&e), ErrParse)
}
