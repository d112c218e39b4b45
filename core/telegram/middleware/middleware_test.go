package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/moodprompt/core/telegram/state"
	"github.com/m3rciful/moodprompt/core/telegram/teletest"
)

func TestRecoverMiddlewareTurnsPanicIntoError(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	err := h(teletest.NewText(1, tele.ChatPrivate, "hi"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestAdminOnlyMiddleware(t *testing.T) {
	rejected := 0
	mw := AdminOnlyMiddleware(AdminOptions{
		AdminID:  42,
		OnReject: func(tele.Context) error { rejected++; return nil },
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })

	require.NoError(t, h(teletest.NewText(42, tele.ChatPrivate, "/sessions")))
	require.NoError(t, h(teletest.NewText(7, tele.ChatPrivate, "/sessions")))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, rejected)
}

func TestAdminOnlyWithoutAdminRejectsEveryone(t *testing.T) {
	calls := 0
	h := AdminOnlyMiddleware(AdminOptions{})(func(tele.Context) error { calls++; return nil })
	require.NoError(t, h(teletest.NewText(1, tele.ChatPrivate, "/sessions")))
	assert.Zero(t, calls)
}

func TestStepGuard(t *testing.T) {
	store := state.NewMemoryStore(state.MemoryOptions{})
	mismatches := 0
	calls := 0
	h := Step(store, state.StepChoosingPalette, func(tele.Context) error {
		mismatches++
		return nil
	})(func(tele.Context) error {
		calls++
		return nil
	})

	require.NoError(t, h(teletest.NewCallback(5, "palette_bright")))
	assert.Equal(t, 1, mismatches, "no session")

	store.Start(5)
	require.NoError(t, h(teletest.NewCallback(5, "palette_bright")))
	assert.Equal(t, 2, mismatches, "wrong step")

	store.Update(5, func(s *state.Session) { s.Step = state.StepChoosingPalette })
	require.NoError(t, h(teletest.NewCallback(5, "palette_bright")))
	assert.Equal(t, 1, calls)
}

func TestRateLimitMiddleware(t *testing.T) {
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		Burst:     2,
		Exclude:   map[string]struct{}{"callback": {}},
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })

	for i := 0; i < 3; i++ {
		require.NoError(t, h(teletest.NewText(9, tele.ChatPrivate, "hello")))
	}
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, limited)

	require.NoError(t, h(teletest.NewCallback(9, "mood_calm")))
	assert.Equal(t, 3, calls, "callbacks are excluded")

	require.NoError(t, h(teletest.NewText(10, tele.ChatPrivate, "hello")))
	assert.Equal(t, 4, calls, "limits are per user")
}

func TestRateLimitDisabled(t *testing.T) {
	calls := 0
	h := RateLimitMiddleware(RateLimitOptions{})(func(tele.Context) error { calls++; return nil })
	for i := 0; i < 5; i++ {
		require.NoError(t, h(teletest.NewText(1, tele.ChatPrivate, "x")))
	}
	assert.Equal(t, 5, calls)
}

func TestMessageMetricsMiddleware(t *testing.T) {
	c := teletest.NewText(1, tele.ChatPrivate, "hi")
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		if err := c.Send("plain"); err != nil {
			return err
		}
		return c.Send("menu", &tele.SendOptions{ReplyMarkup: &tele.ReplyMarkup{}})
	})
	require.NoError(t, h(c))

	msgs, kb := GetCounters(c)
	assert.Equal(t, 2, msgs)
	assert.True(t, kb)
}

func TestLoggerMiddlewareStoresRID(t *testing.T) {
	c := teletest.NewCallback(3, "mood_joyful")
	c.UpdateID = 35
	var seen string
	h := LoggerMiddleware(func(c tele.Context) error {
		seen, _ = c.Get("rid").(string)
		return nil
	})
	require.NoError(t, h(c))
	assert.NotEmpty(t, seen)
}
