// Package catalog holds the fixed menu options and the per-mood prompt templates.
//
// A Catalog is built once at start, validated, and then shared read-only.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/m3rciful/moodprompt/core/logger"
)

// OptionsPerFamily is the number of choices every menu offers.
const OptionsPerFamily = 6

//go:embed catalog.yaml
var defaultDocument []byte

var (
	// ErrUnknownMood is returned when rendering for a mood without a template.
	ErrUnknownMood = errors.New("catalog: unknown mood")
	// ErrUnknownOption is returned for an id outside its family.
	ErrUnknownOption = errors.New("catalog: unknown option")
	// ErrIncomplete is returned when a selection misses a field required for rendering.
	ErrIncomplete = errors.New("catalog: incomplete selection")
	// ErrInvalid is returned for catalog documents that fail validation.
	ErrInvalid = errors.New("catalog: invalid document")
)

// Family names one of the three option lists. Its value doubles as the
// callback namespace of the family's menu buttons.
type Family string

const (
	FamilyMood    Family = "mood"
	FamilyPalette Family = "palette"
	FamilySubject Family = "subject"
)

// Families lists the families in menu order.
var Families = []Family{FamilyMood, FamilyPalette, FamilySubject}

// Option is one menu entry.
type Option struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

type moodEntry struct {
	Option   `yaml:",inline"`
	Template string `yaml:"template"`
}

type document struct {
	Moods    []moodEntry `yaml:"moods"`
	Palettes []Option    `yaml:"palettes"`
	Subjects []Option    `yaml:"subjects"`
}

// Selection carries the values substituted into a mood template.
type Selection struct {
	Mood      string
	Palette   string
	Subject   string
	UserInput string
}

// templateData is what templates see; field names are part of the template contract.
type templateData struct {
	Subject   string
	UserInput string
	Palette   string
}

// Catalog is an immutable set of options and compiled templates.
type Catalog struct {
	options   map[Family][]Option
	index     map[Family]map[string]Option
	templates map[string]*template.Template
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return Parse(defaultDocument)
})

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return defaultCatalog()
}

// Load reads a catalog from a YAML file. An empty path returns Default.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, err
	}
	logger.Prompt.LogAttrs(logger.Background(), slog.LevelInfo, "catalog.loaded",
		slog.String("path", path),
		slog.Int("moods", len(cat.options[FamilyMood])),
	)
	return cat, nil
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}

	moods := make([]Option, 0, len(doc.Moods))
	for _, m := range doc.Moods {
		moods = append(moods, m.Option)
	}
	c := &Catalog{
		options: map[Family][]Option{
			FamilyMood:    moods,
			FamilyPalette: doc.Palettes,
			FamilySubject: doc.Subjects,
		},
		index:     make(map[Family]map[string]Option, len(Families)),
		templates: make(map[string]*template.Template, len(doc.Moods)),
	}
	for _, f := range Families {
		idx, err := indexOptions(f, c.options[f])
		if err != nil {
			return nil, err
		}
		c.index[f] = idx
	}

	for _, m := range doc.Moods {
		tmpl, err := compile(m.ID, m.Template)
		if err != nil {
			return nil, err
		}
		c.templates[m.ID] = tmpl
	}
	return c, nil
}

func indexOptions(f Family, opts []Option) (map[string]Option, error) {
	if len(opts) != OptionsPerFamily {
		return nil, fmt.Errorf("%w: %s has %d options, want %d", ErrInvalid, f, len(opts), OptionsPerFamily)
	}
	idx := make(map[string]Option, len(opts))
	for _, o := range opts {
		switch {
		case o.ID == "" || strings.TrimSpace(o.ID) != o.ID:
			return nil, fmt.Errorf("%w: %s option with empty or padded id %q", ErrInvalid, f, o.ID)
		case strings.TrimSpace(o.Label) == "":
			return nil, fmt.Errorf("%w: %s %q has no label", ErrInvalid, f, o.ID)
		}
		if _, dup := idx[o.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate %s %q", ErrInvalid, f, o.ID)
		}
		idx[o.ID] = o
	}
	return idx, nil
}

// compile parses a mood template and checks that it uses every slot.
func compile(mood, text string) (*template.Template, error) {
	tmpl, err := template.New(mood).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: template %q: %v", ErrInvalid, mood, err)
	}
	sample := templateData{Subject: "\x00subject\x00", UserInput: "\x00input\x00", Palette: "\x00palette\x00"}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, sample); err != nil {
		return nil, fmt.Errorf("%w: template %q: %v", ErrInvalid, mood, err)
	}
	out := buf.String()
	for _, slot := range []string{sample.Subject, sample.UserInput, sample.Palette} {
		if !strings.Contains(out, slot) {
			return nil, fmt.Errorf("%w: template %q does not use %s", ErrInvalid, mood, strings.Trim(slot, "\x00"))
		}
	}
	return tmpl, nil
}

// Options returns the options of a family in menu order.
func (c *Catalog) Options(f Family) []Option {
	return append([]Option(nil), c.options[f]...)
}

// Has reports whether id is one of the family's options.
func (c *Catalog) Has(f Family, id string) bool {
	_, ok := c.index[f][id]
	return ok
}

// Lookup returns the option with the given id.
func (c *Catalog) Lookup(f Family, id string) (Option, error) {
	o, ok := c.index[f][id]
	if !ok {
		return Option{}, fmt.Errorf("%w: %s %q", ErrUnknownOption, f, id)
	}
	return o, nil
}

// Render substitutes the selection into the mood's template.
// Subject and palette are substituted by id.
func (c *Catalog) Render(sel Selection) (string, error) {
	tmpl, ok := c.templates[sel.Mood]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMood, sel.Mood)
	}
	if sel.Subject == "" || sel.Palette == "" {
		return "", fmt.Errorf("%w: subject=%q palette=%q", ErrIncomplete, sel.Subject, sel.Palette)
	}
	var buf strings.Builder
	err := tmpl.Execute(&buf, templateData{
		Subject:   sel.Subject,
		UserInput: sel.UserInput,
		Palette:   sel.Palette,
	})
	if err != nil {
		return "", fmt.Errorf("catalog: render %q: %w", sel.Mood, err)
	}
	return buf.String(), nil
}
