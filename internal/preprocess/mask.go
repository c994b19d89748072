package preprocess

// Masker replaces variable values with a fixed "<TYPE>" placeholder.
// It holds no state and is safe for concurrent use.
type Masker struct {
	patterns []Pattern
}

// NewMasker creates a Masker for the named patterns.
// An empty list selects DefaultMaskPatterns.
func NewMasker(names []string) (*Masker, error) {
	if len(names) == 0 {
		names = DefaultMaskPatterns()
	}
	patterns, err := GetPatterns(names)
	if err != nil {
		return nil, err
	}
	return &Masker{patterns: patterns}, nil
}

// Mask returns line with every pattern match replaced.
//
//	"retry 3 for 0x1f" -> "retry <NUM> for <HEX>"
func (m *Masker) Mask(line string) string {
	if m == nil {
		return line
	}
	out, _ := replace(line, m.patterns, func(_ string, p *Pattern) string {
		return "<" + p.Type + ">"
	})
	return out
}
