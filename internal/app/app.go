package app

import (
	"context"
	"strings"
	"sync/atomic"

	"torrentbot/internal/config"
	"torrentbot/internal/render"
	"torrentbot/internal/storage"
	"torrentbot/pkg/logx"
)

// App wires config, logging, the renderer and the preferences store.
type App struct {
	cfgm *config.ConfigManager
	log  logx.Logger
	logs *logx.Service

	rend  atomic.Pointer[render.Renderer]
	page  atomic.Int64
	store storage.Store
}

// New loads the config at cfgPath and builds every component from it.
// Storage is opened only when withStore is set; rendering alone never
// touches a backend.
func New(ctx context.Context, cfgPath string, withStore bool) (*App, error) {
	cfgm := config.NewConfigManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}

	logSvc, log := logx.New(mapLoggingConfig(cfg))
	a := &App{
		cfgm: cfgm,
		log:  log.With(logx.String("comp", "app")),
		logs: logSvc,
	}
	cfgm.SetLogger(log.With(logx.String("comp", "config")))
	cfgm.SetValidator(func(_ context.Context, c *config.Config) error { return validate(c) })

	if err := a.applyRender(cfg); err != nil {
		_ = logSvc.Close()
		return nil, err
	}

	if withStore {
		sc, enabled, err := mapStorageConfig(cfg)
		if err != nil {
			_ = logSvc.Close()
			return nil, err
		}
		if enabled {
			st, err := storage.Open(ctx, sc, log.With(logx.String("comp", "storage")))
			if err != nil {
				_ = logSvc.Close()
				return nil, err
			}
			a.store = st
			a.log.Debug("storage enabled", logx.String("driver", sc.Driver))
		}
	}
	return a, nil
}

func (a *App) applyRender(cfg *config.Config) error {
	opts, err := mapRenderOptions(cfg, a.log.With(logx.String("comp", "render")))
	if err != nil {
		return err
	}
	r, err := render.New(opts)
	if err != nil {
		return err
	}
	a.rend.Store(r)
	a.page.Store(int64(cfg.Render.PageSize))
	return nil
}

func (a *App) Logger() logx.Logger { return a.log }

func (a *App) Config() *config.Config { return a.cfgm.Get() }

// Renderer returns the renderer for the latest applied config.
func (a *App) Renderer() *render.Renderer { return a.rend.Load() }

// PageSize is the configured torrents-per-page; 0 means unpaged.
func (a *App) PageSize() int { return int(a.page.Load()) }

// Store returns the preferences store, or nil if storage is disabled.
func (a *App) Store() storage.Store { return a.store }

// Watch hot-reloads the config until ctx is done. After every applied
// change onApply (if set) is called with the fresh renderer.
func (a *App) Watch(ctx context.Context, onApply func(*render.Renderer)) error {
	sub := a.cfgm.Subscribe(8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer a.cfgm.Unsubscribe(sub)
		a.reloadLoop(ctx, sub, onApply)
	}()

	err := a.cfgm.Watch(ctx)
	<-done
	return err
}

func (a *App) reloadLoop(ctx context.Context, sub chan *config.Config, onApply func(*render.Renderer)) {
	lastApplied := a.cfgm.Get()
	for {
		select {
		case <-ctx.Done():
			return
		case newCfg, ok := <-sub:
			if !ok {
				return
			}
			// Coalesce bursts: only the newest config matters.
			for drained := false; !drained; {
				select {
				case newer := <-sub:
					if newer != nil {
						newCfg = newer
					}
				default:
					drained = true
				}
			}

			sections, attrs, templates := config.SummarizeConfigChange(lastApplied, newCfg)
			if len(sections) == 0 {
				a.log.Debug("config reload received, but no effective changes detected")
				continue
			}
			fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
			if len(templates) > 0 {
				fields = append(fields, logx.String("templates", strings.Join(templates, ",")))
			}
			a.log.Info("config change applied", fields...)
			lastApplied = newCfg

			for _, s := range sections {
				if s == "storage" {
					a.log.Warn("storage config changed; restart required for changes to take effect")
				}
			}

			a.logs.Apply(mapLoggingConfig(newCfg))
			if err := a.applyRender(newCfg); err != nil {
				// validate already compiled it; keep the old renderer anyway.
				a.log.Warn("render config not applied", logx.Err(err))
				continue
			}
			if onApply != nil {
				onApply(a.Renderer())
			}
		}
	}
}

// Close releases the store and flushes the log file.
func (a *App) Close() error {
	var err error
	if a.store != nil {
		err = a.store.Close()
	}
	if cerr := a.logs.Close(); err == nil {
		err = cerr
	}
	return err
}
