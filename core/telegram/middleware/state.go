package middleware

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/moodprompt/core/logger"
	tghelpers "github.com/m3rciful/moodprompt/core/telegram/helpers"
	"github.com/m3rciful/moodprompt/core/telegram/state"
)

// StepGetter is the minimal interface required from a conversation store.
type StepGetter interface {
	Get(userID int64) (state.Session, bool)
}

// Step returns a middleware that only passes updates from users whose session
// is at the expected step. Other updates go to onMismatch, or are dropped when it is nil.
func Step(store StepGetter, expected state.Step, onMismatch tele.HandlerFunc) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			current := state.StepIdle
			if user := c.Sender(); user != nil {
				if sess, ok := store.Get(user.ID); ok {
					current = sess.Step
				}
			}
			ctx := tghelpers.BuildContext(c)
			if current == expected {
				logger.LogEvent(ctx, logger.TG, slog.LevelDebug, "fsm.match",
					slog.String("step", string(current)),
				)
				return next(c)
			}
			logger.LogEvent(ctx, logger.TG, slog.LevelDebug, "fsm.skip",
				slog.String("step", string(current)),
				slog.String("expected", string(expected)),
			)
			if onMismatch != nil {
				return onMismatch(c)
			}
			return nil
		}
	}
}
