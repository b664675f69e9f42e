package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"torrentbot/pkg/logx"
)

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(ctx context.Context, cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	if strings.TrimSpace(cfg.Key) == "" {
		cfg.Key = DefaultKey
	}
	log = log.With(logx.String("driver", driver))

	switch driver {
	case "file":
		path, err := resolveFilePath(cfg.Path)
		if err != nil {
			return nil, err
		}
		return NewFileStore(afero.NewOsFs(), path, log), nil
	case "sqlite", "sqlite3":
		return openSQLite(ctx, cfg, log)
	case "redis":
		return openRedis(ctx, cfg, log)
	case "mongo", "mongodb":
		return openMongo(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}

// resolveFilePath maps the configured path to the preferences file.
// A *.json path is used as-is; anything else is a directory.
func resolveFilePath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if strings.EqualFold(filepath.Ext(p), ".json") {
		return p, nil
	}
	if p == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("storage: resolve executable dir: %w", err)
		}
		p = filepath.Dir(exe)
	}
	return filepath.Join(p, DefaultFileName), nil
}
