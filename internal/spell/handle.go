package spell

import (
	"fmt"
	"iter"
)

// Snapshot is a read-only copy of a template taken when a handle is created.
type Snapshot struct {
	// TemplateID is the id of the matched template, or 0 for an ungrouped result.
	TemplateID int `json:"template_id" yaml:"template_id"`

	// Tokens are the rendered slots. Wildcard slots render as Wildcard, so a
	// literal "*" token is only told apart through Wildcards.
	Tokens []string `json:"tokens" yaml:"tokens"`

	// Wildcards flags the slots that vary across the lines of the template.
	// It always has the same length as Tokens.
	Wildcards []bool `json:"wildcards" yaml:"wildcards"`

	// LineIDs are the lines absorbed by the template, in insertion order.
	LineIDs []LineID `json:"line_ids" yaml:"line_ids"`

	// Grouped is false when Match found no template and the snapshot only
	// holds the tokens of the queried line.
	Grouped bool `json:"grouped" yaml:"grouped"`
}

// handleSlot is one arena entry. gen is bumped on release so stale handles
// pointing at a reused slot are detected.
type handleSlot struct {
	gen  uint32
	snap *Snapshot
}

// arena stores the snapshots referenced by live handles.
type arena struct {
	slots []handleSlot
	free  []int
}

func (a *arena) put(s *Snapshot) (int, uint32) {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[idx].snap = s
		return idx, a.slots[idx].gen
	}
	a.slots = append(a.slots, handleSlot{snap: s})
	return len(a.slots) - 1, 0
}

func (a *arena) get(idx int, gen uint32) (*Snapshot, error) {
	if idx < 0 || idx >= len(a.slots) {
		return nil, ErrHandleReleased
	}
	slot := a.slots[idx]
	if slot.gen != gen || slot.snap == nil {
		return nil, ErrHandleReleased
	}
	return slot.snap, nil
}

func (a *arena) release(idx int, gen uint32) error {
	if _, err := a.get(idx, gen); err != nil {
		return err
	}
	a.slots[idx].snap = nil
	a.slots[idx].gen++
	a.free = append(a.free, idx)
	return nil
}

// live returns the number of unreleased handles.
func (a *arena) live() int {
	return len(a.slots) - len(a.free)
}

// Handle is a caller-owned reference to a snapshot produced by Insert or
// Match. It must be released exactly once. A handle is invalid after its
// engine is closed.
type Handle struct {
	e    *Engine
	slot int
	gen  uint32
}

func (h Handle) snapshot() (*Snapshot, error) {
	if h.e == nil {
		return nil, ErrHandleReleased
	}
	if h.e.closed {
		return nil, ErrEngineClosed
	}
	return h.e.handles.get(h.slot, h.gen)
}

// Snapshot returns a copy of the referenced snapshot.
func (h Handle) Snapshot() (Snapshot, error) {
	s, err := h.snapshot()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		TemplateID: s.TemplateID,
		Tokens:     append([]string{}, s.Tokens...),
		Wildcards:  append([]bool{}, s.Wildcards...),
		LineIDs:    append([]LineID{}, s.LineIDs...),
		Grouped:    s.Grouped,
	}, nil
}

// Grouped reports whether the handle refers to a template in the engine.
func (h Handle) Grouped() (bool, error) {
	s, err := h.snapshot()
	if err != nil {
		return false, err
	}
	return s.Grouped, nil
}

// TemplateID returns the id of the referenced template, 0 if ungrouped.
func (h Handle) TemplateID() (int, error) {
	s, err := h.snapshot()
	if err != nil {
		return 0, err
	}
	return s.TemplateID, nil
}

// TokenCount returns the number of slots.
func (h Handle) TokenCount() (int, error) {
	s, err := h.snapshot()
	if err != nil {
		return 0, err
	}
	return len(s.Tokens), nil
}

// Token returns the rendered slot at index i.
func (h Handle) Token(i int) (string, error) {
	s, err := h.snapshot()
	if err != nil {
		return "", err
	}
	if i < 0 || i >= len(s.Tokens) {
		return "", fmt.Errorf("token %d of %d: %w", i, len(s.Tokens), ErrIndexOutOfRange)
	}
	return s.Tokens[i], nil
}

// IsWildcard reports whether the slot at index i is a wildcard. A fixed slot
// whose token happens to be "*" reports false.
func (h Handle) IsWildcard(i int) (bool, error) {
	s, err := h.snapshot()
	if err != nil {
		return false, err
	}
	if i < 0 || i >= len(s.Wildcards) {
		return false, fmt.Errorf("slot %d of %d: %w", i, len(s.Wildcards), ErrIndexOutOfRange)
	}
	return s.Wildcards[i], nil
}

// LineIDCount returns the number of line ids.
func (h Handle) LineIDCount() (int, error) {
	s, err := h.snapshot()
	if err != nil {
		return 0, err
	}
	return len(s.LineIDs), nil
}

// LineID returns the line id at index i.
func (h Handle) LineID(i int) (LineID, error) {
	s, err := h.snapshot()
	if err != nil {
		return 0, err
	}
	if i < 0 || i >= len(s.LineIDs) {
		return 0, fmt.Errorf("line id %d of %d: %w", i, len(s.LineIDs), ErrIndexOutOfRange)
	}
	return s.LineIDs[i], nil
}

// Tokens returns the rendered slots as a sequence that can be ranged over
// any number of times.
func (h Handle) Tokens() (iter.Seq2[int, string], error) {
	s, err := h.snapshot()
	if err != nil {
		return nil, err
	}
	return seq(s.Tokens), nil
}

// LineIDs returns the line ids as a sequence that can be ranged over any
// number of times.
func (h Handle) LineIDs() (iter.Seq2[int, LineID], error) {
	s, err := h.snapshot()
	if err != nil {
		return nil, err
	}
	return seq(s.LineIDs), nil
}

// Release frees the snapshot. Releasing twice returns ErrHandleReleased.
// The underlying template is not affected.
func (h Handle) Release() error {
	if h.e == nil {
		return ErrHandleReleased
	}
	if h.e.closed {
		return ErrEngineClosed
	}
	return h.e.handles.release(h.slot, h.gen)
}

func seq[T any](items []T) iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range items {
			if !yield(i, v) {
				return
			}
		}
	}
}
