package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound means the preferences were never saved.
	ErrNotFound = errors.New("storage: preferences not found")
	// ErrParse means the stored or submitted content is not valid JSON.
	ErrParse = errors.New("storage: invalid preferences json")
	// ErrDisabled is returned by operations on a nil store.
	ErrDisabled = errors.New("storage disabled")
	// ErrUnknownDriver is returned by Open for unsupported drivers.
	ErrUnknownDriver = errors.New("storage: unknown driver")
)

const (
	// DefaultFileName is the preferences file inside the configured directory.
	DefaultFileName = "user-notification.json"
	// DefaultKey names the record in keyed backends (sqlite, redis, mongo).
	DefaultKey = "user-notification"
)

// Config configures storage.
//
// Driver values:
//   - "file": Path is a directory (DefaultFileName inside it) or a *.json file;
//     empty Path means the executable's directory
//   - "sqlite": Path is the database file
//   - "redis": URL is a redis:// URL
//   - "mongo": URL is a mongodb:// URI, with Database and Collection
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	URL         string
	Key         string
	Database    string
	Collection  string
	Timeout     time.Duration // network drivers; 0 means 5s
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Store is the preferences persistence API.
type Store interface {
	// Exists reports whether preferences were saved at least once.
	Exists(ctx context.Context) (bool, error)
	// Load returns the stored document, ErrNotFound or ErrParse.
	Load(ctx context.Context) (Preferences, error)
	// Save replaces the stored document.
	Save(ctx context.Context, p Preferences) error
	Close() error
}

// Preferences is the raw JSON notification settings document.
type Preferences []byte

// Encode marshals v into a Preferences document.
func Encode(v any) (Preferences, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return Preferences(b), nil
}

// Decode unmarshals the document into v.
func (p Preferences) Decode(v any) error {
	if err := json.Unmarshal(p, v); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nil
}

// MarshalJSON keeps the document inline when Preferences is embedded in
// other JSON values.
func (p Preferences) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

func (p *Preferences) UnmarshalJSON(b []byte) error {
	*p = append((*p)[:0], b...)
	return nil
}

// normalize validates and compacts a document before it is written.
func normalize(p Preferences) ([]byte, error) {
	if len(bytes.TrimSpace(p)) == 0 || !json.Valid(p) {
		return nil, ErrParse
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return buf.Bytes(), nil
}

// validate checks content read back from a backend.
func validate(b []byte) (Preferences, error) {
	if !json.Valid(b) {
		return nil, ErrParse
	}
	return Preferences(b), nil
}
