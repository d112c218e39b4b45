package telegram

import (
	"net"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/m3rciful/moodprompt/core/telegram/netutil"
)

const (
	defaultDialTimeout       = 5 * time.Second
	defaultTLSHandshake      = 5 * time.Second
	defaultIdleConnTimeout   = 30 * time.Second
	defaultClientTimeout     = 30 * time.Second
	defaultKeepAliveInterval = 30 * time.Second
	defaultRetryAttempts     = 3
	defaultRetryBackoff      = 2 * time.Second
)

// BuildHTTPClient returns an HTTP client tuned for Telegram API calls.
// Long polling keeps requests open for the poll timeout, so there is no
// response header timeout on the transport.
func BuildHTTPClient(longPollTimeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAliveInterval}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshake,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout: defaultClientTimeout + longPollTimeout,
		Transport: &retryTransport{
			base:     transport,
			attempts: defaultRetryAttempts + 1,
			backoff:  defaultRetryBackoff,
		},
	}
}

// retryTransport retries requests that failed before a response arrived.
type retryTransport struct {
	base     http.RoundTripper
	attempts uint
	backoff  time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	// A consumed body cannot be replayed without GetBody.
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		return base.RoundTrip(req)
	}

	first := true
	return retry.DoWithData(
		func() (*http.Response, error) {
			curr := req
			if !first {
				curr = req.Clone(req.Context())
				if req.GetBody != nil {
					body, err := req.GetBody()
					if err != nil {
						return nil, retry.Unrecoverable(err)
					}
					curr.Body = body
				}
			}
			first = false
			return base.RoundTrip(curr)
		},
		retry.Context(req.Context()),
		retry.Attempts(max(t.attempts, 1)),
		retry.Delay(t.backoff),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(netutil.ShouldRetry),
		retry.LastErrorOnly(true),
	)
}
