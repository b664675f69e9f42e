package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"torrentbot/pkg/logx"
)

// FileStore keeps the preferences in a single JSON file.
//
// Saves write a temp file in the same directory and rename it over the
// target, so a concurrent reader sees either the old or the new document.
type FileStore struct {
	fs   afero.Fs
	path string
	log  logx.Logger
}

// NewFileStore returns a store for path on fs.
func NewFileStore(fs afero.Fs, path string, log logx.Logger) *FileStore {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &FileStore{fs: fs, path: path, log: log.With(logx.String("path", path))}
}

// Path returns the preferences file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Exists(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ok, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return false, fmt.Errorf("stat preferences: %w", err)
	}
	return ok, nil
}

func (s *FileStore) Load(ctx context.Context) (Preferences, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read preferences: %w", err)
	}
	return validate(b)
}

func (s *FileStore) Save(ctx context.Context, p Preferences) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := normalize(p)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}

	f, err := afero.TempFile(s.fs, dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("sync preferences: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("close preferences: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace preferences: %w", err)
	}
	s.log.Debug("preferences saved", logx.Int("bytes", len(data)))
	return nil
}

func (s *FileStore) Close() error { return nil }
