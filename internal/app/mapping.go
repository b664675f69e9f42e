package app

import (
	"fmt"
	"strings"
	"time"

	"torrentbot/internal/config"
	"torrentbot/internal/render"
	"torrentbot/internal/storage"
	"torrentbot/pkg/logx"
)

func mapLoggingConfig(cfg *config.Config) logx.Config {
	lc := cfg.Logging
	return logx.Config{
		Level:   lc.Level,
		Console: lc.Console,
		File: logx.FileConfig{
			Enabled:    lc.File.Enabled,
			Path:       lc.File.Path,
			MaxSizeMB:  lc.File.MaxSizeMB,
			MaxBackups: lc.File.MaxBackups,
			MaxAgeDays: lc.File.MaxAgeDays,
			Compress:   lc.File.Compress,
		},
	}
}

// mapRenderOptions validates the render section. Template overrides are
// only checked for known kinds here; render.New compiles them.
func mapRenderOptions(cfg *config.Config, log logx.Logger) (render.Options, error) {
	rc := cfg.Render
	opts := render.Options{
		EscapeHTML:      rc.EscapeHTML,
		MaxNameRunes:    rc.MaxNameRunes,
		MaxMessageRunes: rc.MaxMessageRunes,
		Log:             log,
	}

	if tz := strings.TrimSpace(rc.Timezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return render.Options{}, fmt.Errorf("render.timezone: invalid %q: %w", tz, err)
		}
		opts.Location = loc
	}

	units, err := render.ParseByteUnits(rc.ByteUnits)
	if err != nil {
		return render.Options{}, fmt.Errorf("render.byte_units: %w", err)
	}
	opts.ByteUnits = units

	if rc.PageSize < 0 {
		return render.Options{}, fmt.Errorf("render.page_size must be >= 0")
	}
	if rc.MaxNameRunes < 0 {
		return render.Options{}, fmt.Errorf("render.max_name_runes must be >= 0")
	}
	if rc.MaxMessageRunes < 0 {
		return render.Options{}, fmt.Errorf("render.max_message_runes must be >= 0")
	}

	if len(rc.Templates) > 0 {
		opts.Templates = make(map[render.Kind]string, len(rc.Templates))
		for name, src := range rc.Templates {
			k, err := render.ParseKind(name)
			if err != nil {
				return render.Options{}, fmt.Errorf("render.templates: %w", err)
			}
			opts.Templates[k] = src
		}
	}
	return opts, nil
}

// mapStorageConfig reports enabled=false when no driver is configured.
func mapStorageConfig(cfg *config.Config) (storage.Config, bool, error) {
	sc := cfg.Storage
	driver := strings.ToLower(strings.TrimSpace(sc.Driver))
	if driver == "" || driver == "none" {
		return storage.Config{}, false, nil
	}

	out := storage.Config{
		Driver:     driver,
		Path:       strings.TrimSpace(sc.Path),
		URL:        strings.TrimSpace(sc.URL),
		Key:        strings.TrimSpace(sc.Key),
		Database:   strings.TrimSpace(sc.Database),
		Collection: strings.TrimSpace(sc.Collection),
	}

	switch driver {
	case "file":
	case "sqlite", "sqlite3":
		if out.Path == "" {
			return storage.Config{}, false, fmt.Errorf("storage.path is required when storage.driver=%s", driver)
		}
		busy, err := config.ParseDurationOrDefault("storage.busy_timeout", sc.BusyTimeout, time.Second)
		if err != nil {
			return storage.Config{}, false, err
		}
		out.BusyTimeout = busy
	case "redis", "mongo", "mongodb":
		if out.URL == "" {
			return storage.Config{}, false, fmt.Errorf("storage.url is required when storage.driver=%s", driver)
		}
		timeout, err := config.ParseDurationField("storage.timeout", sc.Timeout)
		if err != nil {
			return storage.Config{}, false, err
		}
		out.Timeout = timeout
	default:
		return storage.Config{}, false, fmt.Errorf("%w: %s", storage.ErrUnknownDriver, sc.Driver)
	}
	return out, true, nil
}

// validate rejects configs that would fail to apply. It also compiles the
// templates so a broken override never replaces a working renderer.
func validate(cfg *config.Config) error {
	opts, err := mapRenderOptions(cfg, logx.Nop())
	if err != nil {
		return err
	}
	if _, err := render.New(opts); err != nil {
		return err
	}
	if _, _, err := mapStorageConfig(cfg); err != nil {
		return err
	}
	return nil
}
