package netutil

import (
	"errors"
	"net"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
	tele "gopkg.in/telebot.v4"
)

// ShouldRetry reports whether an error from a Telegram API call is transient:
// dial failures, timeouts and flood-control responses.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}

	var flood tele.FloodError
	if errors.As(err, &flood) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && (opErr.Op == "dial" || opErr.Timeout()) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil && urlErr.Err != err {
		return ShouldRetry(urlErr.Err)
	}
	return false
}

// FloodDelay honours Telegram's retry_after hint and falls back to
// exponential backoff for every other error.
func FloodDelay(n uint, err error, cfg *retry.Config) time.Duration {
	var flood tele.FloodError
	if errors.As(err, &flood) && flood.RetryAfter > 0 {
		return time.Duration(flood.RetryAfter) * time.Second
	}
	return retry.BackOffDelay(n, err, cfg)
}
