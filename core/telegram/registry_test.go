package telegram

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/moodprompt/core/telegram/commands"
)

func noop(tele.Context) error { return nil }

type recordingSetter struct {
	got []tele.Command
	err error
}

func (r *recordingSetter) SetCommands(opts ...interface{}) error {
	if len(opts) > 0 {
		r.got, _ = opts[0].([]tele.Command)
	}
	return r.err
}

func TestRegistryCommands(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/prompt", commands.Command{Handler: noop, Description: "Build a prompt", Aliases: []string{"p"}})
	reg.RegisterCommand("/help", commands.Command{Handler: noop, Description: "Help"})
	reg.RegisterCommand("/sessions", commands.Command{Handler: noop, Description: "Sessions", AdminOnly: true})
	reg.RegisterCommand("nosla", commands.Command{Handler: noop, Description: "skipped"})
	reg.RegisterCommand("/empty", commands.Command{Handler: noop})
	reg.RegisterCommand("/help", commands.Command{Handler: noop, Description: "duplicate"})

	assert.Len(t, reg.Commands(), 3)
	assert.Equal(t, "Help", reg.Commands()["/help"].Description)

	visible := reg.ListCommands(true)
	require.Len(t, visible, 2)
	assert.Equal(t, "/help", visible[0].Text)
	assert.Equal(t, "/prompt", visible[1].Text)
	assert.Len(t, reg.ListCommands(false), 3)

	key, _, ok := reg.LookupCommand("/p")
	require.True(t, ok)
	assert.Equal(t, "/prompt", key)
	_, _, ok = reg.LookupCommand("hello")
	assert.False(t, ok)
}

func TestRegistryCallbacks(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCallback("mood", noop))
	require.NoError(t, reg.RegisterCallback("palette", noop))

	assert.ErrorIs(t, reg.RegisterCallback("", noop), ErrInvalidCallback)
	assert.ErrorIs(t, reg.RegisterCallback("subject", nil), ErrInvalidCallback)
	assert.Error(t, reg.RegisterCallback("mood", noop))

	_, ok := reg.GetCallback("mood")
	assert.True(t, ok)
	_, ok = reg.GetCallback("subject")
	assert.False(t, ok)
	assert.Equal(t, []string{"mood", "palette"}, reg.ListCallbacks())

	assert.NotNil(t, reg.CallbackNotFound())
	reg.SetCallbackNotFound(nil)
	assert.NotNil(t, reg.CallbackNotFound(), "nil does not replace the default")
}

func TestSetupCommands(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/prompt", commands.Command{Handler: noop, Description: "Build a prompt"})
	reg.RegisterCommand("/sessions", commands.Command{Handler: noop, Description: "Sessions", AdminOnly: true, Hidden: true})

	setter := &recordingSetter{}
	SetupCommands(setter, reg)
	require.Len(t, setter.got, 1)
	assert.Equal(t, "/prompt", setter.got[0].Text)

	SetupCommands(&recordingSetter{err: errors.New("api down")}, reg)
	SetupCommands(setter, NewRegistry())
}

func TestBuildPoller(t *testing.T) {
	lp, ok := BuildPoller(PollerOptions{}).(*tele.LongPoller)
	require.True(t, ok)
	assert.Equal(t, DefaultLongPollTimeout, lp.Timeout)

	lp, ok = BuildPoller(PollerOptions{RunMode: "longpoll", LongPollTimeoutSeconds: 25}).(*tele.LongPoller)
	require.True(t, ok)
	assert.Equal(t, 25*time.Second, lp.Timeout)

	wh, ok := BuildPoller(PollerOptions{
		RunMode: " Webhook ",
		Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://example.org/hook"},
	}).(*tele.Webhook)
	require.True(t, ok)
	assert.Equal(t, "0.0.0.0:8443", wh.Listen)
	assert.Equal(t, "https://example.org/hook", wh.Endpoint.PublicURL)
}
