package router

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/moodprompt/core/telegram"
	"github.com/m3rciful/moodprompt/core/telegram/commands"
	"github.com/m3rciful/moodprompt/core/telegram/teletest"
)

type fakeFSM struct {
	active  map[int64]bool
	handled int
}

func (f *fakeFSM) InProgress(userID int64) bool { return f.active[userID] }

func (f *fakeFSM) ManagerHandler(tele.Context) error {
	f.handled++
	return nil
}

func routeFor(t *testing.T, routes []tg.Route, endpoint any) tele.HandlerFunc {
	t.Helper()
	for _, r := range routes {
		if r.Endpoint == endpoint {
			return r.Handler
		}
	}
	t.Fatalf("no route for %v", endpoint)
	return nil
}

func TestTextRoutesOrder(t *testing.T) {
	fsm := &fakeFSM{active: map[int64]bool{1: true}}
	reg := tg.NewRegistry()
	helped := 0
	reg.RegisterCommand("/help", commands.Command{
		Handler:     func(tele.Context) error { helped++; return nil },
		Description: "Help",
		Aliases:     []string{"h"},
	})
	fallbacks := 0
	reg.SetTextFallback(func(tele.Context) error { fallbacks++; return nil })

	h := routeFor(t, TextRoutes(fsm, reg, TextOptions{}), tele.OnText)

	require.NoError(t, h(teletest.NewText(1, tele.ChatPrivate, "/help")))
	assert.Equal(t, 1, fsm.handled, "conversation text wins over commands")

	require.NoError(t, h(teletest.NewText(2, tele.ChatPrivate, "/h")))
	assert.Equal(t, 1, helped)

	require.NoError(t, h(teletest.NewText(2, tele.ChatPrivate, "hello")))
	assert.Equal(t, 1, fallbacks)
}

func TestTextRoutesSkipAdminCommands(t *testing.T) {
	reg := tg.NewRegistry()
	called := 0
	reg.RegisterCommand("/sessions", commands.Command{
		Handler:     func(tele.Context) error { called++; return nil },
		Description: "Sessions",
		AdminOnly:   true,
	})
	unknown := 0
	h := routeFor(t, TextRoutes(nil, reg, TextOptions{
		UnknownText: func(tele.Context) error { unknown++; return nil },
	}), tele.OnText)

	require.NoError(t, h(teletest.NewText(3, tele.ChatPrivate, "sessions")))
	assert.Zero(t, called)
	assert.Equal(t, 1, unknown)
}

func TestCallbackRouteDispatchesByNamespace(t *testing.T) {
	reg := tg.NewRegistry()
	var got string
	require.NoError(t, reg.RegisterCallback("mood", func(c tele.Context) error {
		got = c.Callback().Data
		return c.Respond()
	}))
	h := CallbackRoute(reg, CallbackOptions{}).Handler

	c := teletest.NewCallback(1, "mood_calm")
	require.NoError(t, h(c))
	assert.Equal(t, "mood_calm", got)
	assert.Len(t, c.Responses(), 1)

	c = teletest.NewCallback(1, "style_oil")
	require.NoError(t, h(c))
	require.Len(t, c.Responses(), 1)
	assert.Equal(t, "Unsupported action", c.Responses()[0].Text)
}

func TestCommandRoutesAdminGuard(t *testing.T) {
	reg := tg.NewRegistry()
	called := 0
	reg.RegisterCommand("/sessions", commands.Command{
		Handler:     func(tele.Context) error { called++; return nil },
		Description: "Sessions",
		AdminOnly:   true,
	})
	routes := CommandRoutes(reg, CommandRouteOptions{AdminID: 42})
	h := routeFor(t, routes, "/sessions")

	require.NoError(t, h(teletest.NewText(7, tele.ChatPrivate, "/sessions")))
	assert.Zero(t, called)
	require.NoError(t, h(teletest.NewText(42, tele.ChatPrivate, "/sessions")))
	assert.Equal(t, 1, called)
}

func TestHandlerPanicBecomesError(t *testing.T) {
	reg := tg.NewRegistry()
	reg.RegisterCommand("/boom", commands.Command{
		Handler:     func(tele.Context) error { panic("kaboom") },
		Description: "Boom",
	})
	h := routeFor(t, CommandRoutes(reg, CommandRouteOptions{}), "/boom")
	assert.Error(t, h(teletest.NewText(1, tele.ChatPrivate, "/boom")))
}

type codedErr struct{}

func (codedErr) Error() string { return "coded" }
func (codedErr) Code() string  { return "render failed" }

func TestDeriveErrorCode(t *testing.T) {
	assert.Equal(t, "RENDER_FAILED", deriveErrorCode(codedErr{}))
	assert.Equal(t, "ERRORSTRING", deriveErrorCode(errors.New("x")))
	assert.Empty(t, deriveErrorCode(nil))
	assert.Equal(t, "callback.mood", "callback."+normalizeHandlerName("Mood"))
	assert.Equal(t, "unknown", normalizeHandlerName(" "))
}
