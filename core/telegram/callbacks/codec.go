// Package callbacks encodes and decodes inline button payloads of the form
// "<namespace>_<value>", e.g. "mood_joyful".
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

const sep = "_"

// Encode joins namespace and value into callback data.
func Encode(namespace, value string) string {
	return namespace + sep + value
}

// Split returns the namespace and value of raw callback data.
// Telebot's "\f<unique>|<payload>" form is accepted as well.
// ok is false when either part is empty.
func Split(data string) (namespace, value string, ok bool) {
	// "\f" is whitespace to TrimSpace, so the prefix is cut first.
	if rest, found := strings.CutPrefix(data, "\f"); found {
		namespace, value, _ = strings.Cut(rest, "|")
	} else {
		namespace, value, _ = strings.Cut(strings.TrimSpace(data), sep)
	}
	namespace = strings.TrimSpace(namespace)
	value = strings.TrimSpace(value)
	return namespace, value, namespace != "" && value != ""
}

// Parse decodes the callback carried by an update. Telebot may already have
// split a unique-style payload into Unique and Data.
func Parse(cb *tele.Callback) (namespace, value string, ok bool) {
	if cb == nil {
		return "", "", false
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data, cb.Data != ""
	}
	return Split(cb.Data)
}

// Namespace returns the namespace of the current callback, or "".
func Namespace(c tele.Context) string {
	ns, _, _ := Parse(c.Callback())
	return ns
}

// Value returns the value part of the current callback, or "".
func Value(c tele.Context) string {
	_, v, _ := Parse(c.Callback())
	return v
}
