// Package bot assembles the mood prompt bot from the core runtime and the
// conversation flow.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/moodprompt/bot/catalog"
	"github.com/m3rciful/moodprompt/bot/conversation"
	"github.com/m3rciful/moodprompt/core/bootstrap"
	corecmd "github.com/m3rciful/moodprompt/core/cmd"
	coreconfig "github.com/m3rciful/moodprompt/core/config"
	"github.com/m3rciful/moodprompt/core/logger"
	coretelegram "github.com/m3rciful/moodprompt/core/telegram"
	tghelpers "github.com/m3rciful/moodprompt/core/telegram/helpers"
	"github.com/m3rciful/moodprompt/core/telegram/router"
	"github.com/m3rciful/moodprompt/core/telegram/sender"
	"github.com/m3rciful/moodprompt/core/telegram/state"
	"github.com/m3rciful/moodprompt/core/telegram/ui"
)

const msgSlowDown = "Too many requests, please slow down."

// App holds the wired components of a running bot.
type App struct {
	cfg      *coreconfig.Config
	sessions state.Store
	catalog  *catalog.Catalog
	flow     *conversation.Flow
}

// LoadConfig adapts config.Load to the runner.
func LoadConfig(path string) (corecmd.ConfigCarrier, error) {
	return coreconfig.Load(path)
}

// Bootstrap initializes logging and the session store, loads the catalog and builds the flow.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg := carrier.CoreConfig()
	res, err := bootstrap.Run(bootstrap.Options{Config: cfg})
	if err != nil {
		return nil, err
	}
	return New(cfg, res.Sessions)
}

// New builds an App over an existing session store.
func New(cfg *coreconfig.Config, sessions state.Store) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config")
	}
	cat, err := catalog.Load(cfg.Prompt.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("bot: %w", err)
	}
	flow, err := conversation.New(conversation.Options{
		Store:        sessions,
		Catalog:      cat,
		StartCommand: cfg.Prompt.StartCommand,
		ServiceName:  cfg.Prompt.ServiceName,
		ServiceURL:   cfg.Prompt.ServiceURL,
	})
	if err != nil {
		return nil, fmt.Errorf("bot: %w", err)
	}
	return &App{cfg: cfg, sessions: sessions, catalog: cat, flow: flow}, nil
}

// Registry builds the command and callback registry served by the bot.
func (a *App) Registry() (*coretelegram.Registry, error) {
	reg := coretelegram.NewRegistry()
	if err := a.flow.Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// Routes returns every route of the bot, in registration order.
func (a *App) Routes(reg *coretelegram.Registry) []coretelegram.Route {
	var fallbacks ui.FallbackProvider = a.flow

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{AdminID: a.cfg.Telegram.AdminID})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{
		NotFound: fallbacks.UnknownCallback(),
	}))
	routes = append(routes, router.TextRoutes(a.flow, reg, router.TextOptions{
		UnknownText: fallbacks.UnknownText(),
	})...)
	return routes
}

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg, err := a.Registry()
	if err != nil {
		return coretelegram.RunOptions{}, fmt.Errorf("bot: %w", err)
	}
	return coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg, onLimited),
		Routes:      a.Routes(reg),
		DispatcherOptions: sender.Options{
			MaxRetries:   2,
			RetryBackoff: time.Second,
		},
		OnStop: a.onStop,
	}, nil
}

func (a *App) onStop(ctx context.Context, rt coretelegram.Runtime) error {
	logger.App.LogAttrs(ctx, slog.LevelInfo, "sessions.dropped",
		slog.Int("sessions", a.sessions.Len()),
		slog.Uint64("send_errors", rt.Dispatcher.ErrorCount()),
	)
	return nil
}

// onLimited answers throttled button presses; throttled messages are dropped silently.
func onLimited(c tele.Context) error {
	if c.Callback() == nil {
		return nil
	}
	return tghelpers.Alert(c, msgSlowDown)
}
