// Package schema defines the fixed rating categories a scout fills in per
// player. The schema is configuration data: built once, read-only after.
package schema

import "fmt"

// Category keys. They double as JSON keys in stored player ratings and
// must stay stable across releases.
const (
	KeyShotQuality   = "wurfqualitaet"
	KeyShotFrequency = "wurfhaeufigkeit"
	KeySpeed         = "schnelligkeit"
	KeyBallHandling  = "ballbehandlung"
	KeyPassQuality   = "passqualitaet"
	KeyPossession    = "ballbesitz"
	KeyDefense       = "verteidigung"
	KeyRebounding    = "rebounding"
	KeyActivity      = "aktivitaet"
	KeyThreat        = "gefahr"
	KeySize          = "groesse"
)

// Section names for grouping categories on the rating form.
const (
	SectionOffense = "Angriff"
	SectionDefense = "Verteidigung"
	SectionGeneral = "Allgemein"
)

// Option is one selectable value of a category.
type Option struct {
	Value       int    `json:"value"`
	Description string `json:"description"`
}

// Category is one rating dimension. Scored categories count toward the
// average; informational ones (size) do not.
type Category struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Section string   `json:"section"`
	Scored  bool     `json:"scored"`
	Options []Option `json:"options"`
}

// Schema holds the ordered category list for a given rating scale.
type Schema struct {
	scale      int
	categories []Category
	byKey      map[string]Category
}

// DefaultScale is the 3-point rating domain the tool originally shipped
// with. A 5-point variant is supported via config.
const DefaultScale = 3

var scaleDescriptions = map[int][]string{
	3: {"schwach", "mittel", "stark"},
	5: {"sehr schwach", "schwach", "mittel", "stark", "sehr stark"},
}

// New builds the schema for the given scale (3 or 5).
func New(scale int) (*Schema, error) {
	descs, ok := scaleDescriptions[scale]
	if !ok {
		return nil, fmt.Errorf("unsupported rating scale %d (valid: 3, 5)", scale)
	}

	opts := make([]Option, len(descs))
	for i, d := range descs {
		opts[i] = Option{Value: i + 1, Description: d}
	}

	scored := []struct {
		key, label, section string
	}{
		{KeyShotQuality, "Wurfqualität", SectionOffense},
		{KeyShotFrequency, "Wurfhäufigkeit", SectionOffense},
		{KeySpeed, "Schnelligkeit", SectionOffense},
		{KeyBallHandling, "Ballbehandlung", SectionOffense},
		{KeyPassQuality, "Passqualität", SectionOffense},
		{KeyPossession, "Ballbesitz", SectionOffense},
		{KeyDefense, "Verteidigung", SectionDefense},
		{KeyRebounding, "Rebounding", SectionDefense},
		{KeyActivity, "Aktivität", SectionGeneral},
		{KeyThreat, "Gefahr", SectionGeneral},
	}

	s := &Schema{
		scale: scale,
		byKey: make(map[string]Category),
	}

	for _, c := range scored {
		cat := Category{
			Key:     c.key,
			Label:   c.label,
			Section: c.section,
			Scored:  true,
			Options: opts,
		}
		s.categories = append(s.categories, cat)
		s.byKey[c.key] = cat
	}

	// Size is informational only and always on a 3-value domain.
	size := Category{
		Key:     KeySize,
		Label:   "Größe",
		Section: SectionGeneral,
		Scored:  false,
		Options: []Option{
			{Value: 1, Description: "klein"},
			{Value: 2, Description: "normal"},
			{Value: 3, Description: "groß"},
		},
	}
	s.categories = append(s.categories, size)
	s.byKey[size.Key] = size

	return s, nil
}

// MustNew is New for schemas built from compile-time constants.
func MustNew(scale int) *Schema {
	s, err := New(scale)
	if err != nil {
		panic(err)
	}
	return s
}

// Scale returns the maximum rating value.
func (s *Schema) Scale() int { return s.scale }

// Categories returns the ordered category list.
func (s *Schema) Categories() []Category {
	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Category looks up a category by key.
func (s *Schema) Category(key string) (Category, bool) {
	c, ok := s.byKey[key]
	return c, ok
}

// ScoredKeys returns the keys that count toward the average, in schema order.
func (s *Schema) ScoredKeys() []string {
	var keys []string
	for _, c := range s.categories {
		if c.Scored {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// ValidRating reports whether value is a legal score for the category.
func (s *Schema) ValidRating(key string, value int) bool {
	c, ok := s.byKey[key]
	if !ok || !c.Scored {
		return false
	}
	return value >= 1 && value <= s.scale
}
