package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogOptions(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	ids := func(f Family) []string {
		var out []string
		for _, o := range cat.Options(f) {
			out = append(out, o.ID)
		}
		return out
	}
	assert.Equal(t, []string{"melancholic", "joyful", "aggressive", "romantic", "spiritual", "calm"}, ids(FamilyMood))
	assert.Equal(t, []string{"bright", "pastel", "psychedelic", "contrast", "monochrome", "bw"}, ids(FamilyPalette))
	assert.Equal(t, []string{"people", "animals", "landscape", "abstract", "narrative", "flowers"}, ids(FamilySubject))
}

func TestRenderEveryCombination(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	const input = "a lighthouse at dawn"
	for _, mood := range cat.Options(FamilyMood) {
		for _, palette := range cat.Options(FamilyPalette) {
			for _, subject := range cat.Options(FamilySubject) {
				out, err := cat.Render(Selection{
					Mood:      mood.ID,
					Palette:   palette.ID,
					Subject:   subject.ID,
					UserInput: input,
				})
				require.NoError(t, err)
				assert.Contains(t, out, input)
				assert.Contains(t, out, "Palette: "+palette.ID+".")
				assert.Contains(t, out, subject.ID)
				assert.NotContains(t, out, "{{")
				assert.NotContains(t, out, "<no value>")
			}
		}
	}
}

func TestRenderJoyful(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	out, err := cat.Render(Selection{Mood: "joyful", Palette: "pastel", Subject: "flowers", UserInput: "a lighthouse at dawn"})
	require.NoError(t, err)
	assert.Equal(t, "A symbolic acrylic painting with bold brush strokes and clean, bright colors.\n"+
		"The scene conveys joy and celebration through flowers — a lighthouse at dawn.\n"+
		"Vibrant hues and playful brush patterns. Format: 1:1. Palette: pastel.", out)
}

func TestRenderKeepsTemplateSyntaxInInput(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	out, err := cat.Render(Selection{Mood: "calm", Palette: "bw", Subject: "people", UserInput: "{{.Palette}}"})
	require.NoError(t, err)
	assert.Contains(t, out, "{{.Palette}}")
}

func TestRenderErrors(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	_, err = cat.Render(Selection{Mood: "furious", Palette: "bw", Subject: "people"})
	assert.ErrorIs(t, err, ErrUnknownMood)

	_, err = cat.Render(Selection{Mood: "calm", Subject: "people"})
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestLookup(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	o, err := cat.Lookup(FamilySubject, "flowers")
	require.NoError(t, err)
	assert.NotEmpty(t, o.Label)

	assert.True(t, cat.Has(FamilyPalette, "pastel"))
	assert.False(t, cat.Has(FamilyPalette, "flowers"))

	_, err = cat.Lookup(FamilyMood, "pastel")
	assert.ErrorIs(t, err, ErrUnknownOption)
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	valid := string(defaultDocument)

	cases := map[string]string{
		"missing slot":    strings.Replace(valid, "captures peacefulness with {{.Subject}}", "captures peacefulness with nothing", 1),
		"bad syntax":      strings.Replace(valid, "{{.Palette}}.\n  - id: calm", "{{.Palette}.\n  - id: calm", 1),
		"unknown field":   strings.Replace(valid, "{{.UserInput}}.\n      Balanced", "{{.UserInput}} {{.Colour}}.\n      Balanced", 1),
		"duplicate id":    strings.Replace(valid, "id: bw", "id: bright", 1),
		"too few options": strings.Replace(valid, "  - id: flowers\n    label: \"🌺 Flowers\"\n", "", 1),
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			require.NotEqual(t, valid, doc, "fixture edit did not apply")
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	_, err := Parse([]byte("moods: ["))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	cat, err := Load("")
	require.NoError(t, err)
	def, _ := Default()
	assert.Same(t, def, cat)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := strings.Replace(string(defaultDocument), "label: Pastel", "label: Soft pastel", 1)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	custom, err := Load(path)
	require.NoError(t, err)
	o, err := custom.Lookup(FamilyPalette, "pastel")
	require.NoError(t, err)
	assert.Equal(t, "Soft pastel", o.Label)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
