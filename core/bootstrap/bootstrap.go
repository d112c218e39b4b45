package bootstrap

import (
	"fmt"
	"log/slog"

	coreconfig "github.com/m3rciful/moodprompt/core/config"
	"github.com/m3rciful/moodprompt/core/logger"
	"github.com/m3rciful/moodprompt/core/telegram/state"
)

// Options control the generic bootstrap pipeline shared between bots.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	NewStore   func(state.MemoryOptions) state.Store
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	Sessions state.Store
}

// Run initializes the logger and the session store.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	newStore := opts.NewStore
	if newStore == nil {
		newStore = state.NewMemoryStore
	}
	sessions := newStore(state.MemoryOptions{
		TTL:             opts.Config.Session.TTL,
		CleanupInterval: opts.Config.Session.CleanupInterval,
	})
	if sessions == nil {
		return nil, fmt.Errorf("bootstrap: session store initialization failed")
	}
	logger.Session.LogAttrs(logger.Background(), slog.LevelInfo, "store.ready",
		slog.Duration("ttl", opts.Config.Session.TTL),
		slog.Duration("cleanup_interval", opts.Config.Session.CleanupInterval),
	)

	return &Result{Sessions: sessions}, nil
}
