package conversation

import (
	"fmt"
	"unicode/utf16"
)

// maxMessageLen is Telegram's text limit, counted in UTF-16 code units.
const maxMessageLen = 4096

const (
	msgChooseMood     = "What mood do you want the image to express?"
	msgChoosePalette  = "Choose a color palette:"
	msgChooseSubject  = "What do you want to see in the picture?"
	msgDescribe       = "Add a few more words about what you want to see in the picture:"
	msgDescribeHint   = "a lighthouse at dawn"
	msgPromptHeader   = "🎯 Prompt:"
	msgInvalidOption  = "This option is not available."
	msgStaleMenu      = "This menu is outdated. Send %s to start over."
	msgUnsupported    = "Unsupported action"
	msgActiveSessions = "Active sessions: %d"
	msgTooLong        = "The description is too long. Please shorten it by at least %d characters and send it again."
)

func greeting(startCommand string) string {
	return fmt.Sprintf("👋 Hi! To get started, send %s.", startCommand)
}

func helpText(startCommand string) string {
	return fmt.Sprintf("Send %s, then pick a mood, a palette and a subject, "+
		"and describe the picture in a few words. "+
		"You will get a ready prompt for an image generator.\n\n"+
		"Sending %s again starts over.", startCommand, startCommand)
}

func serviceSuffix(name, url string) string {
	return fmt.Sprintf("Copy the prompt and send it to %s: %s", name, url)
}

func finalMessage(rendered, suffix string) string {
	return msgPromptHeader + "\n" + rendered + "\n\n" + suffix
}

func messageLen(s string) int {
	return len(utf16.Encode([]rune(s)))
}
