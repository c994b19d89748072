package preprocess

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
)

// Redactor removes sensitive data from log lines while preserving
// correlation between identical values.
//
// The same value always maps to the same placeholder, so a model can still
// see that two lines mention the same address without seeing the address.
type Redactor struct {
	patterns []Pattern
	hashMap  map[string]string // Original value -> placeholder
	mu       sync.RWMutex      // Protects hashMap
}

// NewRedactor creates a Redactor for the named patterns.
// An empty list selects DefaultRedactPatterns.
func NewRedactor(names []string) (*Redactor, error) {
	if len(names) == 0 {
		names = DefaultRedactPatterns()
	}
	patterns, err := GetPatterns(names)
	if err != nil {
		return nil, err
	}
	return &Redactor{
		patterns: patterns,
		hashMap:  make(map[string]string),
	}, nil
}

// Redact replaces sensitive values with correlation-preserving placeholders.
//
//	"Connection from 192.168.1.1 failed" -> "Connection from [IPV4:c5ea] failed"
func (r *Redactor) Redact(text string) string {
	out, _ := r.RedactAndCount(text)
	return out
}

// RedactAndCount redacts text and returns the number of replacements made.
func (r *Redactor) RedactAndCount(text string) (string, int) {
	if r == nil {
		return text, 0
	}
	return replace(text, r.patterns, func(match string, p *Pattern) string {
		return r.placeholder(match, p.Type)
	})
}

// placeholder returns the placeholder for a given value.
func (r *Redactor) placeholder(value, patternType string) string {
	r.mu.RLock()
	if placeholder, ok := r.hashMap[value]; ok {
		r.mu.RUnlock()
		return placeholder
	}
	r.mu.RUnlock()

	h := sha256.Sum256([]byte(value))
	placeholder := fmt.Sprintf("[%s:%s]", patternType, hex.EncodeToString(h[:2]))

	r.mu.Lock()
	r.hashMap[value] = placeholder
	r.mu.Unlock()

	return placeholder
}

// Seen returns the number of distinct values redacted so far.
func (r *Redactor) Seen() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hashMap)
}
