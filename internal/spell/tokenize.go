package spell

import (
	"fmt"
	"strings"
	"unicode"
)

// Delimiters is an immutable set of runes that separate tokens.
type Delimiters struct {
	set   string
	space bool // every rune for which unicode.IsSpace is true
}

// Predefined delimiter sets.
var (
	// DefaultDelimiters splits on Unicode whitespace only, so comma
	// separated fields such as "node-127,node-234" stay a single token.
	DefaultDelimiters = Delimiters{space: true}

	// PunctuationDelimiters additionally splits on commas and both slashes.
	PunctuationDelimiters = Delimiters{set: ",/\\", space: true}
)

// NewDelimiters builds a delimiter set from the given runes.
func NewDelimiters(runes ...rune) Delimiters {
	var b strings.Builder
	seen := make(map[rune]struct{}, len(runes))
	for _, r := range runes {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		b.WriteRune(r)
	}
	return Delimiters{set: b.String()}
}

// ParseDelimiters builds a delimiter set from a string where every rune is a
// delimiter. The escapes `\s` (space), `\t` (tab), `\u` (any Unicode
// whitespace) and `\\` (backslash) are recognised so sets can be written in
// YAML and on the command line.
func ParseDelimiters(s string) (Delimiters, error) {
	if s == "" {
		return Delimiters{}, fmt.Errorf("delimiter set is empty")
	}

	var runes []rune
	space := false
	in := []rune(s)
	for i := 0; i < len(in); i++ {
		if in[i] != '\\' || i == len(in)-1 {
			runes = append(runes, in[i])
			continue
		}
		i++
		switch in[i] {
		case 's':
			runes = append(runes, ' ')
		case 't':
			runes = append(runes, '\t')
		case 'u':
			space = true
		case '\\':
			runes = append(runes, '\\')
		default:
			return Delimiters{}, fmt.Errorf("unknown delimiter escape \\%c", in[i])
		}
	}

	d := NewDelimiters(runes...)
	d.space = space
	return d, nil
}

// Contains reports whether r is a delimiter.
func (d Delimiters) Contains(r rune) bool {
	if d.space && unicode.IsSpace(r) {
		return true
	}
	return strings.ContainsRune(d.set, r)
}

// Runes returns the explicitly declared delimiters in order. Whitespace
// matched through the Unicode class is not listed; see Whitespace.
func (d Delimiters) Runes() []rune {
	return []rune(d.set)
}

// Whitespace reports whether every Unicode whitespace rune is a delimiter.
func (d Delimiters) Whitespace() bool {
	return d.space
}

// IsZero reports whether the set is empty.
func (d Delimiters) IsZero() bool {
	return d.set == "" && !d.space
}

// String renders the set with the escapes accepted by ParseDelimiters.
func (d Delimiters) String() string {
	r := strings.NewReplacer(`\`, `\\`, " ", `\s`, "\t", `\t`)
	if d.space {
		return `\u` + r.Replace(d.set)
	}
	return r.Replace(d.set)
}

// Tokenize splits line into tokens. Leading and trailing whitespace is
// trimmed and empty fragments between adjacent delimiters are dropped, so
// an empty or blank line yields an empty sequence.
func Tokenize(line string, delims Delimiters) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return []string{}
	}
	return strings.FieldsFunc(line, delims.Contains)
}
