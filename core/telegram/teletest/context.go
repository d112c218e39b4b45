// Package teletest provides an in-memory tele.Context for handler tests.
package teletest

import (
	"errors"
	"sync"

	tele "gopkg.in/telebot.v4"
)

// ErrSend is a ready-made failure for Context.SendErr.
var ErrSend = errors.New("teletest: send failed")

// Sent records one outgoing message.
type Sent struct {
	What any
	Opts []any
}

// Text returns the message body when it was sent as a string.
func (s Sent) Text() string {
	text, _ := s.What.(string)
	return text
}

// Markup returns the reply markup attached to the message, if any.
func (s Sent) Markup() *tele.ReplyMarkup {
	for _, o := range s.Opts {
		switch v := o.(type) {
		case *tele.ReplyMarkup:
			return v
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return v.ReplyMarkup
			}
		}
	}
	return nil
}

// Context implements the parts of tele.Context used by handlers.
// Calling any other method panics through the nil embedded interface.
type Context struct {
	tele.Context

	UpdateID int
	User     *tele.User
	ChatInfo *tele.Chat
	Msg      *tele.Message
	CB       *tele.Callback

	// SendErr, when set, fails every Send and Reply.
	SendErr error

	mu        sync.Mutex
	values    map[string]any
	sent      []Sent
	responses []*tele.CallbackResponse
}

// NewText builds a context for a text message from userID in a chat of chatType.
func NewText(userID int64, chatType tele.ChatType, text string) *Context {
	user := &tele.User{ID: userID, FirstName: "Test"}
	chat := &tele.Chat{ID: userID, Type: chatType}
	if chatType != tele.ChatPrivate {
		chat.ID = -userID
	}
	return &Context{
		UpdateID: 1,
		User:     user,
		ChatInfo: chat,
		Msg:      &tele.Message{ID: 1, Sender: user, Chat: chat, Text: text},
	}
}

// NewCallback builds a context for an inline button press carrying data.
func NewCallback(userID int64, data string) *Context {
	user := &tele.User{ID: userID, FirstName: "Test"}
	chat := &tele.Chat{ID: userID, Type: tele.ChatPrivate}
	msg := &tele.Message{ID: 1, Chat: chat}
	return &Context{
		UpdateID: 1,
		User:     user,
		ChatInfo: chat,
		CB:       &tele.Callback{ID: "cb", Sender: user, Message: msg, Data: data},
	}
}

// Update returns the update carried by the context.
func (c *Context) Update() tele.Update {
	upd := tele.Update{ID: c.UpdateID, Callback: c.CB}
	if c.CB == nil {
		upd.Message = c.Msg
	}
	return upd
}

// Sender returns the acting user.
func (c *Context) Sender() *tele.User { return c.User }

// Chat returns the chat of the update.
func (c *Context) Chat() *tele.Chat { return c.ChatInfo }

// Message returns the incoming message, or the message a callback is attached to.
func (c *Context) Message() *tele.Message {
	if c.CB != nil {
		return c.CB.Message
	}
	return c.Msg
}

// Callback returns the callback, if any.
func (c *Context) Callback() *tele.Callback { return c.CB }

// Text returns the incoming message text.
func (c *Context) Text() string {
	if c.Msg == nil {
		return ""
	}
	return c.Msg.Text
}

// Get reads a value stored with Set.
func (c *Context) Get(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key]
}

// Set stores a value on the context.
func (c *Context) Set(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values == nil {
		c.values = make(map[string]any)
	}
	c.values[key] = val
}

// Send records an outgoing message.
func (c *Context) Send(what any, opts ...any) error {
	if c.SendErr != nil {
		return c.SendErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, Sent{What: what, Opts: opts})
	return nil
}

// Reply records an outgoing reply like Send.
func (c *Context) Reply(what any, opts ...any) error {
	return c.Send(what, opts...)
}

// Respond records a callback answer.
func (c *Context) Respond(resp ...*tele.CallbackResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := &tele.CallbackResponse{}
	if len(resp) > 0 && resp[0] != nil {
		r = resp[0]
	}
	c.responses = append(c.responses, r)
	return nil
}

// SentMessages returns a copy of everything sent so far.
func (c *Context) SentMessages() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sent(nil), c.sent...)
}

// LastSent returns the most recent message, or false when nothing was sent.
func (c *Context) LastSent() (Sent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		return Sent{}, false
	}
	return c.sent[len(c.sent)-1], true
}

// Responses returns a copy of the callback answers so far.
func (c *Context) Responses() []*tele.CallbackResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*tele.CallbackResponse(nil), c.responses...)
}
