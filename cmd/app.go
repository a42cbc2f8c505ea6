package cmd

import (
	"context"

	"mdclip/pkg/clipboard"
	"mdclip/pkg/config"
	"mdclip/pkg/convert"
	"mdclip/pkg/engine"
	"mdclip/pkg/errors"
	"mdclip/pkg/history"
	"mdclip/pkg/hostcmd"
	"mdclip/pkg/logger"
	"mdclip/pkg/progress"
	"mdclip/pkg/render"
	"mdclip/pkg/richtext"
)

// Swapped out by tests.
var (
	newClipboard = func() clipboard.Clipboard { return clipboard.NewSystem() }
	hostRunner   = hostcmd.Runner(hostcmd.Exec{})
	loadConfig   = config.Load
)

// appNeeds selects which dependencies newApp builds.
type appNeeds struct {
	clipboard bool
	engine    bool
	// history opens the store when history is enabled in the config.
	history bool
	// historyAlways opens the store even when recording is disabled.
	historyAlways bool
}

// App holds the dependencies of one command invocation.
type App struct {
	Config    *config.Config
	Clipboard clipboard.Clipboard
	// Preview is set in --dry-run mode and is also Clipboard.
	Preview  *clipboard.Memory
	Renderer render.Renderer
	Codec    richtext.Codec
	Engine   engine.Engine
	History  *history.Store
}

func newApp(ctx context.Context, needs appNeeds) (*App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if cfg.LogLevel != "" && !rootCmd.PersistentFlags().Changed("log-level") {
		logger.SetLevel(cfg.LogLevel)
	}

	renderer, err := render.New(cfg.Render.Mode)
	if err != nil {
		return nil, errors.NewWithError(errors.ExitCodeConfig, "failed to create renderer", err)
	}

	codec, err := richtext.Detect(cfg.Codec, hostRunner)
	if err != nil {
		return nil, errors.NewWithSuggestion(errors.ExitCodeConfig, err.Error(),
			"Install the tool or set codec to auto in the config file.")
	}
	logger.Debug().Str("codec", codec.Name()).Str("renderer", cfg.Render.Mode).Msg("dependencies resolved")

	a := &App{
		Config:   cfg,
		Renderer: renderer,
		Codec:    codec,
	}

	if needs.clipboard {
		clip := newClipboard()
		if dryRunFlag {
			a.Preview = seedPreview(ctx, clip)
			a.Clipboard = a.Preview
		} else {
			a.Clipboard = clip
		}
	}

	if needs.engine {
		eng, err := engine.New(ctx, cfg.Engine.Mode, cfg.RetryPolicy())
		if err != nil {
			return nil, err
		}
		a.Engine = eng
	}

	if needs.historyAlways || (needs.history && cfg.History.Enabled && !dryRunFlag) {
		store, err := history.Open(cfg.HistoryPath(), cfg.History.Retention)
		if err != nil {
			if needs.historyAlways {
				a.Close()
				return nil, errors.NewWithError(errors.ExitCodeFileOperation, "failed to open history", err)
			}
			logger.Warn().Err(err).Msg("history disabled for this run")
		} else {
			a.History = store
		}
	}

	return a, nil
}

// seedPreview copies the current clipboard into memory so a dry run sees
// real content without touching it.
func seedPreview(ctx context.Context, clip clipboard.Clipboard) *clipboard.Memory {
	snap, err := clip.Read(ctx)
	if err != nil {
		m := clipboard.NewMemory()
		m.ReadErr = err
		return m
	}
	return clipboard.NewMemory(snap.Representations()...)
}

// Orchestrator returns a conversion orchestrator over the app's
// dependencies.
func (a *App) Orchestrator() *convert.Orchestrator {
	var opts []convert.Option
	if a.History != nil {
		opts = append(opts, convert.WithRecorder(a.History))
	}

	var eng engine.MarkdownEngine
	if a.Engine != nil {
		eng = a.Engine
	}
	return convert.New(a.Clipboard, eng, a.Renderer, a.Codec, opts...)
}

// WaitForEngine blocks until the engine is ready or gives up. The error is
// only logged; conversions that need the engine report it themselves.
func (a *App) WaitForEngine(ctx context.Context) {
	if a.Engine == nil {
		return
	}
	err := progress.WithSpinner("Starting conversion engine...", func() error {
		return a.Engine.Wait(ctx)
	})
	if err != nil {
		logger.Debug().Err(err).Msg("engine not ready")
	}
}

func (a *App) Close() {
	if a.Engine != nil {
		if err := a.Engine.Close(); err != nil {
			logger.Debug().Err(err).Msg("failed to stop engine")
		}
	}
	if a.History != nil {
		if err := a.History.Close(); err != nil {
			logger.Debug().Err(err).Msg("failed to close history")
		}
	}
}
