package netutil

import (
	"context"
	"errors"
	"net"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestShouldRetry(t *testing.T) {
	dial := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	assert.True(t, ShouldRetry(dial))
	assert.True(t, ShouldRetry(&url.Error{Op: "Post", URL: "https://api.telegram.org", Err: dial}))
	assert.True(t, ShouldRetry(tele.FloodError{RetryAfter: 3}))
	assert.True(t, ShouldRetry(context.DeadlineExceeded))

	assert.False(t, ShouldRetry(nil))
	assert.False(t, ShouldRetry(errors.New("bad request")))
	assert.False(t, ShouldRetry(&tele.Error{Code: 400, Description: "chat not found"}))
}

func TestFloodDelay(t *testing.T) {
	assert.Equal(t, 3*time.Second, FloodDelay(1, tele.FloodError{RetryAfter: 3}, nil))
}
