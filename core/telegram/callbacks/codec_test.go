package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestSplit(t *testing.T) {
	for _, tc := range []struct {
		in        string
		ns, value string
		ok        bool
	}{
		{in: "mood_joyful", ns: "mood", value: "joyful", ok: true},
		{in: "palette_bw", ns: "palette", value: "bw", ok: true},
		{in: "subject_flowers_extra", ns: "subject", value: "flowers_extra", ok: true},
		{in: "\fmood|calm", ns: "mood", value: "calm", ok: true},
		{in: "\fpalette| pastel ", ns: "palette", value: "pastel", ok: true},
		{in: "\fsubject|", ns: "subject", ok: false},
		{in: "  mood_calm\n", ns: "mood", value: "calm", ok: true},
		{in: "mood_", ns: "mood", ok: false},
		{in: "mood", ns: "mood", ok: false},
		{in: "", ok: false},
	} {
		ns, value, ok := Split(tc.in)
		assert.Equal(t, tc.ns, ns, tc.in)
		assert.Equal(t, tc.value, value, tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	ns, value, ok := Split(Encode("palette", "pastel"))
	assert.True(t, ok)
	assert.Equal(t, "palette", ns)
	assert.Equal(t, "pastel", value)
}

func TestParseUnique(t *testing.T) {
	ns, value, ok := Parse(&tele.Callback{Unique: "subject", Data: "people"})
	assert.True(t, ok)
	assert.Equal(t, "subject", ns)
	assert.Equal(t, "people", value)

	_, _, ok = Parse(nil)
	assert.False(t, ok)
}
