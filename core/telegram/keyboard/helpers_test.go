package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenuOnePerRow(t *testing.T) {
	markup := Menu("mood", []Choice{
		{Value: "joyful", Label: "Joyful"},
		{Value: "calm", Label: "Calm"},
	})
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "Joyful", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "mood_joyful", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "mood_calm", markup.InlineKeyboard[1][0].Data)
	assert.Empty(t, markup.InlineKeyboard[0][0].Unique)
}

func TestInlineButtonsNPerRow(t *testing.T) {
	buttons := []InlineBtn{{Text: "a"}, {Text: "b"}, {Text: "c"}, {Text: "d"}, {Text: "e"}}
	markup := InlineButtonsNPerRow(buttons, 2)
	require.Len(t, markup.InlineKeyboard, 3)
	assert.Len(t, markup.InlineKeyboard[0], 2)
	assert.Len(t, markup.InlineKeyboard[2], 1)

	assert.Len(t, InlineButtonsNPerRow(buttons, 0).InlineKeyboard, 5)
}
