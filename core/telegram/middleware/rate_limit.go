package middleware

import (
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/moodprompt/core/logger"
	tghelpers "github.com/m3rciful/moodprompt/core/telegram/helpers"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	// Interval is the sustained gap allowed between updates of one user.
	Interval time.Duration
	// Burst is how many updates may arrive back to back. Values below 1 mean 1.
	Burst     int
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
}

// limiterSet hands out one token bucket per user and forgets idle users.
type limiterSet struct {
	mu    sync.Mutex
	items *cache.Cache
	limit rate.Limit
	burst int
	idle  time.Duration
}

func newLimiterSet(interval time.Duration, burst int) *limiterSet {
	if burst < 1 {
		burst = 1
	}
	idle := interval * time.Duration(burst) * 10
	if idle < time.Minute {
		idle = time.Minute
	}
	return &limiterSet{
		items: cache.New(idle, idle),
		limit: rate.Every(interval),
		burst: burst,
		idle:  idle,
	}
}

func (s *limiterSet) allow(userID int64) bool {
	key := strconv.FormatInt(userID, 10)
	s.mu.Lock()
	lim, ok := s.items.Get(key)
	if !ok {
		lim = rate.NewLimiter(s.limit, s.burst)
	}
	// Refresh the idle deadline on every hit.
	s.items.Set(key, lim, s.idle)
	s.mu.Unlock()
	return lim.(*rate.Limiter).Allow()
}

// UpdateKind classifies an update for rate limit exclusions.
func UpdateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	case upd.Query != nil:
		return "inline_query"
	}
	return "other"
}

// RateLimitMiddleware returns a middleware that throttles each user with a token bucket.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	if opts.Interval <= 0 {
		return func(next tele.HandlerFunc) tele.HandlerFunc { return next }
	}
	limiters := newLimiterSet(opts.Interval, opts.Burst)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil {
				return next(c)
			}

			kind := UpdateKind(c.Update())
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}

			if limiters.allow(user.ID) {
				return next(c)
			}

			logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelWarn, "tg.rate_limit",
				slog.String("status", "skip"),
				slog.String("kind", kind),
			)
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}
