package keyboard

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/moodprompt/core/telegram/callbacks"
)

// InlineBtn describes one inline button. Data is sent back verbatim as callback data.
type InlineBtn struct {
	Text string
	Data string
}

// Choice is a selectable option rendered as a button in its namespace.
type Choice struct {
	Value string
	Label string
}

// ForceReply returns a markup that asks the client to reply to the message.
// In groups this routes the answer back to the bot even with privacy mode on.
func ForceReply(placeholder string) *tele.ReplyMarkup {
	return &tele.ReplyMarkup{ForceReply: true, Placeholder: placeholder}
}

// InlineButtons builds an inline keyboard with one button per row.
func InlineButtons(buttons []InlineBtn) *tele.ReplyMarkup {
	return InlineButtonsNPerRow(buttons, 1)
}

// InlineButtonsNPerRow splits buttons into rows of at most n.
func InlineButtonsNPerRow(buttons []InlineBtn, n int) *tele.ReplyMarkup {
	if n < 1 {
		n = 1
	}
	rows := make([][]tele.InlineButton, 0, (len(buttons)+n-1)/n)
	for i := 0; i < len(buttons); i += n {
		end := min(i+n, len(buttons))
		row := make([]tele.InlineButton, 0, end-i)
		for _, b := range buttons[i:end] {
			row = append(row, tele.InlineButton{Text: b.Text, Data: b.Data})
		}
		rows = append(rows, row)
	}
	return &tele.ReplyMarkup{InlineKeyboard: rows}
}

// Menu renders choices as namespaced buttons, one per row.
func Menu(namespace string, choices []Choice) *tele.ReplyMarkup {
	buttons := make([]InlineBtn, 0, len(choices))
	for _, ch := range choices {
		buttons = append(buttons, InlineBtn{
			Text: ch.Label,
			Data: callbacks.Encode(namespace, ch.Value),
		})
	}
	return InlineButtons(buttons)
}
