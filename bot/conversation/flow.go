// Package conversation runs the mood, palette, subject and description
// dialogue on top of the session store and renders the final prompt.
package conversation

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/moodprompt/bot/catalog"
	"github.com/m3rciful/moodprompt/core/logger"
	tg "github.com/m3rciful/moodprompt/core/telegram"
	"github.com/m3rciful/moodprompt/core/telegram/callbacks"
	"github.com/m3rciful/moodprompt/core/telegram/commands"
	tghelpers "github.com/m3rciful/moodprompt/core/telegram/helpers"
	"github.com/m3rciful/moodprompt/core/telegram/keyboard"
	"github.com/m3rciful/moodprompt/core/telegram/middleware"
	"github.com/m3rciful/moodprompt/core/telegram/state"
)

var (
	// ErrInvalidSelection is returned for an id outside the family's options.
	ErrInvalidSelection = errors.New("conversation: invalid selection")
	// ErrStaleSelection is returned when a menu is answered outside its step.
	ErrStaleSelection = errors.New("conversation: stale selection")
)

const (
	helpCommand     = "/help"
	sessionsCommand = "/sessions"
)

// Options configures a Flow.
type Options struct {
	Store   state.Store
	Catalog *catalog.Catalog

	// StartCommand begins or restarts a conversation, e.g. "/prompt".
	StartCommand string
	ServiceName  string
	ServiceURL   string
}

// Flow owns the conversation transitions. It is safe for concurrent use.
type Flow struct {
	store        state.Store
	catalog      *catalog.Catalog
	startCommand string
	suffix       string
}

// New validates opts and returns a Flow.
func New(opts Options) (*Flow, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("conversation: nil store")
	}
	if opts.Catalog == nil {
		return nil, fmt.Errorf("conversation: nil catalog")
	}
	start := strings.TrimSpace(opts.StartCommand)
	if !strings.HasPrefix(start, "/") || len(start) < 2 {
		return nil, fmt.Errorf("conversation: invalid start command %q", opts.StartCommand)
	}
	return &Flow{
		store:        opts.Store,
		catalog:      opts.Catalog,
		startCommand: start,
		suffix:       serviceSuffix(opts.ServiceName, opts.ServiceURL),
	}, nil
}

// stepFor maps a family to the step that accepts its selection.
func stepFor(f catalog.Family) (state.Step, bool) {
	switch f {
	case catalog.FamilyMood:
		return state.StepChoosingMood, true
	case catalog.FamilyPalette:
		return state.StepChoosingPalette, true
	case catalog.FamilySubject:
		return state.StepChoosingSubject, true
	}
	return "", false
}

// Register wires the commands, callback namespaces and text fallback into reg.
func (f *Flow) Register(reg *tg.Registry) error {
	reg.RegisterCommand(f.startCommand, commands.Command{
		Handler:     f.Start,
		Description: "Build an image prompt",
	})
	reg.RegisterCommand(helpCommand, commands.Command{
		Handler:     f.Help,
		Description: "How it works",
	})
	reg.RegisterCommand(sessionsCommand, commands.Command{
		Handler:     f.Sessions,
		Description: "Active sessions",
		AdminOnly:   true,
		Hidden:      true,
	})

	for _, family := range catalog.Families {
		expected, _ := stepFor(family)
		guard := middleware.Step(f.store, expected, f.staleMenu)
		if err := reg.RegisterCallback(string(family), guard(f.selectHandler(family))); err != nil {
			return fmt.Errorf("conversation: register %s: %w", family, err)
		}
	}

	reg.SetTextFallback(f.Fallback)
	reg.SetCallbackNotFound(f.UnknownCallback())
	return nil
}

// Start opens a fresh session, discarding any previous one, and shows the mood menu.
func (f *Flow) Start(c tele.Context) error {
	user := c.Sender()
	if user == nil {
		return nil
	}
	sess := f.store.Start(user.ID)
	ctx := tghelpers.WithSession(c, sess.ID)
	logger.LogEvent(ctx, logger.Session, slog.LevelInfo, "session.start",
		slog.String("step", string(sess.Step)),
	)
	return tghelpers.SendMenu(c, msgChooseMood, f.menu(catalog.FamilyMood))
}

// Select records value for family and advances the user's session.
// The session is left unchanged on error.
func (f *Flow) Select(userID int64, family catalog.Family, value string) (state.Session, error) {
	expected, ok := stepFor(family)
	if !ok {
		return state.Session{}, fmt.Errorf("%w: unknown family %q", ErrInvalidSelection, family)
	}
	if !f.catalog.Has(family, value) {
		return state.Session{}, fmt.Errorf("%w: %s %q", ErrInvalidSelection, family, value)
	}
	if cur, ok := f.store.Get(userID); !ok || cur.Step != expected {
		return state.Session{}, fmt.Errorf("%w: %s at step %q", ErrStaleSelection, family, cur.Step)
	}

	var stale bool
	sess, ok := f.store.Update(userID, func(s *state.Session) {
		// Re-checked under the store lock; another update may have landed since Get.
		if s.Step != expected {
			stale = true
			return
		}
		switch family {
		case catalog.FamilyMood:
			s.Mood = value
		case catalog.FamilyPalette:
			s.Palette = value
		case catalog.FamilySubject:
			s.Subject = value
		}
		s.Step, _ = expected.Next()
	})
	if !ok || stale {
		return state.Session{}, fmt.Errorf("%w: %s", ErrStaleSelection, family)
	}
	return sess, nil
}

func (f *Flow) selectHandler(family catalog.Family) tele.HandlerFunc {
	return func(c tele.Context) error {
		user := c.Sender()
		if user == nil {
			return tghelpers.Ack(c)
		}
		ns, value, _ := callbacks.Parse(c.Callback())
		ctx := tghelpers.BuildContext(c)
		if ns != string(family) {
			logger.LogEvent(ctx, logger.Session, slog.LevelWarn, "selection.rejected",
				slog.String("reason", "namespace"),
				slog.String("cb_key", ns),
			)
			return tghelpers.Alert(c, msgInvalidOption)
		}

		sess, err := f.Select(user.ID, family, value)
		switch {
		case errors.Is(err, ErrInvalidSelection):
			logger.LogEvent(ctx, logger.Session, slog.LevelWarn, "selection.rejected",
				slog.String("reason", "unknown_value"),
				slog.String("cb_value", logger.SanitizeLimit(value, 64)),
			)
			return tghelpers.Alert(c, msgInvalidOption)
		case errors.Is(err, ErrStaleSelection):
			return f.staleMenu(c)
		case err != nil:
			return err
		}

		ctx = tghelpers.WithSession(c, sess.ID)
		logger.LogEvent(ctx, logger.Session, slog.LevelDebug, "session.advance",
			slog.String(string(family), value),
			slog.String("step", string(sess.Step)),
		)
		if err := tghelpers.Ack(c); err != nil {
			logger.LogEvent(ctx, logger.TG, slog.LevelDebug, "callback.ack_failed",
				slog.String("err", err.Error()),
			)
		}

		switch sess.Step {
		case state.StepChoosingPalette:
			return tghelpers.SendMenu(c, msgChoosePalette, f.menu(catalog.FamilyPalette))
		case state.StepChoosingSubject:
			return tghelpers.SendMenu(c, msgChooseSubject, f.menu(catalog.FamilySubject))
		case state.StepWaitingForDescription:
			return tghelpers.SendText(c, msgDescribe, &tele.SendOptions{ReplyMarkup: keyboard.ForceReply(msgDescribeHint)})
		default:
			return fmt.Errorf("conversation: unexpected step %q after %s", sess.Step, family)
		}
	}
}

// InProgress reports whether the user's next text message is the description.
func (f *Flow) InProgress(userID int64) bool {
	sess, ok := f.store.Get(userID)
	return ok && sess.Step == state.StepWaitingForDescription
}

// ManagerHandler consumes the description, replies with the rendered prompt
// and ends the session.
func (f *Flow) ManagerHandler(c tele.Context) error {
	return f.Describe(c)
}

// Describe handles free text. Outside the description step it falls back to the greeting.
func (f *Flow) Describe(c tele.Context) error {
	user := c.Sender()
	if user == nil {
		return nil
	}
	text := c.Text()
	if f.isStartCommand(text) {
		return f.Start(c)
	}

	sess, ok := f.store.Get(user.ID)
	if !ok || sess.Step != state.StepWaitingForDescription {
		return f.Fallback(c)
	}
	ctx := tghelpers.WithSession(c, sess.ID)

	rendered, err := f.catalog.Render(catalog.Selection{
		Mood:      sess.Mood,
		Palette:   sess.Palette,
		Subject:   sess.Subject,
		UserInput: text,
	})
	if err != nil {
		f.store.Finish(user.ID, sess.ID)
		logger.LogEvent(ctx, logger.Prompt, slog.LevelError, "prompt.render_failed",
			slog.String("status", "fail"),
			slog.String("mood", sess.Mood),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("conversation: render prompt: %w", err)
	}

	msg := finalMessage(rendered, f.suffix)
	if n := messageLen(msg); n > maxMessageLen {
		logger.LogEvent(ctx, logger.Prompt, slog.LevelInfo, "prompt.too_long",
			slog.String("status", "skip"),
			slog.Int("length", n),
		)
		return tghelpers.SendText(c, fmt.Sprintf(msgTooLong, n-maxMessageLen))
	}

	// A restart or an earlier description since Get leaves nothing to consume.
	if _, ok := f.store.Finish(user.ID, sess.ID); !ok {
		logger.LogEvent(ctx, logger.Prompt, slog.LevelInfo, "prompt.stale",
			slog.String("status", "skip"),
		)
		return nil
	}

	logger.LogEvent(ctx, logger.Prompt, slog.LevelInfo, "prompt.rendered",
		slog.String("status", "ok"),
		slog.String("mood", sess.Mood),
		slog.String("palette", sess.Palette),
		slog.String("subject", sess.Subject),
		slog.Duration("duration", logger.Took(sess.StartedAt)),
	)
	return tghelpers.SendText(c, msg)
}

// Fallback greets users in private chats and ignores group chatter.
func (f *Flow) Fallback(c tele.Context) error {
	chat := c.Chat()
	if chat == nil || chat.Type != tele.ChatPrivate {
		return nil
	}
	return tghelpers.SendText(c, greeting(f.startCommand))
}

// Help explains the dialogue.
func (f *Flow) Help(c tele.Context) error {
	return tghelpers.SendText(c, helpText(f.startCommand))
}

// Sessions reports the number of unfinished conversations.
func (f *Flow) Sessions(c tele.Context) error {
	return tghelpers.SendText(c, fmt.Sprintf(msgActiveSessions, f.store.Len()))
}

// UnknownText is the handler for text no route claimed.
func (f *Flow) UnknownText() tele.HandlerFunc {
	return f.Fallback
}

// UnknownCallback answers buttons from namespaces the bot does not serve.
func (f *Flow) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: msgUnsupported})
	}
}

func (f *Flow) staleMenu(c tele.Context) error {
	logger.LogEvent(tghelpers.BuildContext(c), logger.Session, slog.LevelInfo, "selection.stale",
		slog.String("status", "skip"),
	)
	return tghelpers.Alert(c, fmt.Sprintf(msgStaleMenu, f.startCommand))
}

func (f *Flow) menu(family catalog.Family) *tele.ReplyMarkup {
	opts := f.catalog.Options(family)
	choices := make([]keyboard.Choice, 0, len(opts))
	for _, o := range opts {
		choices = append(choices, keyboard.Choice{Value: o.ID, Label: o.Label})
	}
	return keyboard.Menu(string(family), choices)
}

// isStartCommand matches the start command, also in its "/cmd@botname" form.
func (f *Flow) isStartCommand(text string) bool {
	text = strings.TrimSpace(text)
	if cmd, _, found := strings.Cut(text, " "); found {
		text = cmd
	}
	if cmd, _, found := strings.Cut(text, "@"); found {
		text = cmd
	}
	return text == f.startCommand
}
