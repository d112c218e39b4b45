package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/moodprompt/core/config"
	"github.com/m3rciful/moodprompt/core/telegram/state"
	"github.com/m3rciful/moodprompt/core/telegram/teletest"
)

func testConfig(t *testing.T) *coreconfig.Config {
	t.Helper()
	cfg := &coreconfig.Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.RateLimit.IntervalMS = 500
	require.NoError(t, coreconfig.Normalize(cfg))
	return cfg
}

func TestTelegramRunOptions(t *testing.T) {
	app, err := New(testConfig(t), state.NewMemoryStore(state.MemoryOptions{}))
	require.NoError(t, err)

	opts, err := app.TelegramRunOptions()
	require.NoError(t, err)

	endpoints := make(map[any]bool)
	for _, r := range opts.Routes {
		require.NotNil(t, r.Handler)
		endpoints[r.Endpoint] = true
	}
	for _, want := range []any{"/prompt", "/help", "/sessions", tele.OnCallback, tele.OnText} {
		assert.True(t, endpoints[want], "missing route %v", want)
	}

	var names []string
	for _, mw := range opts.Middlewares {
		names = append(names, mw.Name)
	}
	assert.Equal(t, []string{"recover", "logger", "rate_limit", "metrics"}, names)
	assert.Equal(t, []string{"mood", "palette", "subject"}, opts.Registry.ListCallbacks())
}

func TestNewRejectsMissingCatalog(t *testing.T) {
	cfg := testConfig(t)
	cfg.Prompt.CatalogPath = t.TempDir() + "/missing.yaml"
	_, err := New(cfg, state.NewMemoryStore(state.MemoryOptions{}))
	assert.Error(t, err)
}

func TestOnLimited(t *testing.T) {
	msg := teletest.NewText(1, tele.ChatPrivate, "spam")
	require.NoError(t, onLimited(msg))
	assert.Empty(t, msg.SentMessages())

	cb := teletest.NewCallback(1, "mood_calm")
	require.NoError(t, onLimited(cb))
	require.Len(t, cb.Responses(), 1)
	assert.Equal(t, msgSlowDown, cb.Responses()[0].Text)
}
