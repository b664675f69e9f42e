package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"torrentbot/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	key string
	log logx.Logger
}

func openSQLite(ctx context.Context, cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, key: cfg.Key, log: log}

	if cfg.BusyTimeout > 0 {
		st.pragma(ctx, fmt.Sprintf("busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	st.pragma(ctx, "journal_mode = WAL")
	st.pragma(ctx, "synchronous = NORMAL")

	if err := st.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

// pragma applies a tuning setting. Failures leave the sqlite default in
// place, so they are logged rather than returned.
func (s *sqliteStore) pragma(ctx context.Context, setting string) {
	if _, err := s.db.ExecContext(ctx, "PRAGMA "+setting); err != nil {
		s.log.Warn("sqlite pragma not applied", logx.String("pragma", setting), logx.Err(err))
	}
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) Exists(ctx context.Context) (bool, error) {
	if s == nil || s.db == nil {
		return false, ErrDisabled
	}
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM preferences WHERE key = ?`, s.key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *sqliteStore) Load(ctx context.Context) (Preferences, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM preferences WHERE key = ?`, s.key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return validate([]byte(doc))
}

func (s *sqliteStore) Save(ctx context.Context, p Preferences) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	data, err := normalize(p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO preferences(key, doc, updated_at) VALUES(?,?,?)
		 ON CONFLICT(key) DO UPDATE SET doc=excluded.doc, updated_at=excluded.updated_at`,
		s.key, string(data), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err == nil {
		s.log.Debug("preferences saved", logx.Int("bytes", len(data)))
	}
	return err
}
