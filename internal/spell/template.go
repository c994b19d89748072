package spell

import "strings"

// Wildcard is the rendering of a slot that varies across the lines of a template.
const Wildcard = "*"

// LineID identifies one line absorbed by a template.
type LineID int

// Slot is one position of a template: either a fixed token or a wildcard.
type Slot struct {
	Token    string
	Wildcard bool
}

// String renders the slot as its token, or Wildcard.
func (s Slot) String() string {
	if s.Wildcard {
		return Wildcard
	}
	return s.Token
}

// Template is a discovered message shape.
//
// The slot count is fixed when the template is created. A slot may turn from
// a fixed token into a wildcard but never back.
type Template struct {
	id      int
	slots   []Slot
	fixed   int // slots that are not wildcards
	lineIDs []LineID
}

// newTemplate creates a template whose slots are exactly tokens.
func newTemplate(id int, tokens []string, lineIDs ...LineID) *Template {
	slots := make([]Slot, len(tokens))
	for i, tok := range tokens {
		slots[i] = Slot{Token: tok}
	}
	return &Template{
		id:      id,
		slots:   slots,
		fixed:   len(slots),
		lineIDs: append([]LineID(nil), lineIDs...),
	}
}

// ID returns the 1-based creation index of the template.
func (t *Template) ID() int {
	return t.id
}

// Len returns the slot count.
func (t *Template) Len() int {
	return len(t.slots)
}

// score returns the LCS of the template slots and tokens. Wildcard slots
// never match.
func (t *Template) score(tokens []string) (int, []Pair) {
	return lcsFunc(len(t.slots), len(tokens), func(i, j int) bool {
		s := t.slots[i]
		return !s.Wildcard && s.Token == tokens[j]
	})
}

// merge absorbs a line aligned by pairs. A fixed slot survives only if the
// LCS alignment paired it with an equal token; every other slot becomes a
// wildcard. Agreement is judged under the alignment, not by position: after
// "x a b c" the line "a b c y" pairs a, b and c with shifted slots and yields
// "* a b c". It returns the number of slots wildcarded by this line.
func (t *Template) merge(pairs []Pair, id LineID) int {
	kept := make([]bool, len(t.slots))
	for _, p := range pairs {
		kept[p.A] = true
	}

	changed := 0
	for i := range t.slots {
		if kept[i] || t.slots[i].Wildcard {
			continue
		}
		t.slots[i] = Slot{Wildcard: true}
		t.fixed--
		changed++
	}

	t.lineIDs = append(t.lineIDs, id)
	return changed
}

// render returns the slots as strings.
func (t *Template) render() []string {
	out := make([]string, len(t.slots))
	for i, s := range t.slots {
		out[i] = s.String()
	}
	return out
}

// wildcards returns the wildcard flag of every slot.
func (t *Template) wildcards() []bool {
	out := make([]bool, len(t.slots))
	for i, s := range t.slots {
		out[i] = s.Wildcard
	}
	return out
}

// snapshot copies the current state of the template.
func (t *Template) snapshot() *Snapshot {
	return &Snapshot{
		TemplateID: t.id,
		Tokens:     t.render(),
		Wildcards:  t.wildcards(),
		LineIDs:    append([]LineID{}, t.lineIDs...),
		Grouped:    true,
	}
}

// String renders the template as space separated slots.
func (t *Template) String() string {
	return strings.Join(t.render(), " ")
}
