package spell

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

var commandFailedLines = []string{
	"Command Failed on: node-127,node-234",
	"Command Failed on: node-128,node-234",
	"Command Failed on: node-129,node-235",
}

// mixedLines exercises several buckets and merges.
var mixedLines = []string{
	"Connection from 10.0.0.1 established",
	"User 12345 logged in",
	"Connection from 10.0.0.2 established",
	"User 67890 logged in",
	"Cache miss for key abc123",
	"Connection from 10.0.0.3 closed by peer",
	"User 11111 logged out",
	"Cache miss for key def456",
	"",
	"Connection from 10.0.0.4 closed by peer",
	"Disk /dev/sda1 is 91% full",
	"Disk /dev/sdb2 is 97% full",
}

func mustInsert(t *testing.T, e *Engine, line string) Handle {
	t.Helper()
	h, err := e.Insert(line)
	if err != nil {
		t.Fatalf("Insert(%q) error = %v", line, err)
	}
	return h
}

func mustSnapshot(t *testing.T, h Handle) Snapshot {
	t.Helper()
	s, err := h.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	return s
}

func TestEngineCommandFailedScenario(t *testing.T) {
	e := New(WithLogger(zap.NewNop()))
	defer e.Close()

	for _, line := range commandFailedLines {
		h := mustInsert(t, e, line)
		if err := h.Release(); err != nil {
			t.Fatalf("Release() error = %v", err)
		}
	}

	if e.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", e.Len())
	}

	wantTokens := []string{"Command", "Failed", "on:", Wildcard}

	m, err := e.Match("Command Failed on: node-130,node-235")
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	got := mustSnapshot(t, m)
	want := Snapshot{
		TemplateID: 1,
		Tokens:     wantTokens,
		Wildcards:  []bool{false, false, false, true},
		LineIDs:    []LineID{1, 2, 3},
		Grouped:    true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Match() mismatch (-want +got):\n%s", diff)
	}

	h := mustInsert(t, e, "Command Failed on: node-130,node-235")
	got = mustSnapshot(t, h)
	want.LineIDs = []LineID{1, 2, 3, 4}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Insert() after Match mismatch (-want +got):\n%s", diff)
	}
}

func TestEngineCommandFailedWithPunctuation(t *testing.T) {
	e := New(WithDelimiters(PunctuationDelimiters))
	defer e.Close()

	var last Handle
	for _, line := range commandFailedLines {
		last = mustInsert(t, e, line)
	}

	got := mustSnapshot(t, last)
	want := []string{"Command", "Failed", "on:", Wildcard, Wildcard}
	if diff := cmp.Diff(want, got.Tokens); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestEngineLengthPartitioning(t *testing.T) {
	e := New()
	defer e.Close()

	ids := make(map[string]int)
	for _, line := range mixedLines {
		h := mustInsert(t, e, line)
		id, err := h.TemplateID()
		if err != nil {
			t.Fatalf("TemplateID() error = %v", err)
		}
		ids[line] = id
	}

	for _, a := range mixedLines {
		for _, b := range mixedLines {
			na, nb := len(Tokenize(a, DefaultDelimiters)), len(Tokenize(b, DefaultDelimiters))
			if na != nb && ids[a] == ids[b] {
				t.Errorf("%q (%d tokens) and %q (%d tokens) share template %d", a, na, b, nb, ids[a])
			}
		}
	}

	for _, s := range e.Templates() {
		for _, id := range s.LineIDs {
			line := mixedLines[id-1]
			if n := len(Tokenize(line, DefaultDelimiters)); n != len(s.Tokens) {
				t.Errorf("template %d has %d slots but holds line %q with %d tokens", s.TemplateID, len(s.Tokens), line, n)
			}
		}
	}
}

func TestEngineIdempotentReinsertion(t *testing.T) {
	const n = 5
	line := "worker 7 finished job in 32ms"

	e := New()
	defer e.Close()

	first := mustSnapshot(t, mustInsert(t, e, line))
	var last Snapshot
	for i := 1; i < n; i++ {
		last = mustSnapshot(t, mustInsert(t, e, line))
	}

	if e.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", e.Len())
	}
	if diff := cmp.Diff(first.Tokens, last.Tokens); diff != "" {
		t.Errorf("rendering changed after re-insertion (-first +last):\n%s", diff)
	}
	if diff := cmp.Diff([]LineID{1, 2, 3, 4, 5}, last.LineIDs); diff != "" {
		t.Errorf("line ids mismatch (-want +got):\n%s", diff)
	}
}

func TestEngineMonotonicWildcarding(t *testing.T) {
	e := New()
	defer e.Close()

	wild := make(map[int]map[int]bool)
	for _, line := range append(append([]string{}, mixedLines...), mixedLines...) {
		mustInsert(t, e, line)

		for _, s := range e.Templates() {
			seen := wild[s.TemplateID]
			if seen == nil {
				seen = make(map[int]bool)
				wild[s.TemplateID] = seen
			}
			for i, tok := range s.Tokens {
				if seen[i] && tok != Wildcard {
					t.Errorf("template %d slot %d reverted from wildcard to %q", s.TemplateID, i, tok)
				}
				if tok == Wildcard {
					seen[i] = true
				}
			}
		}
	}
}

func TestEngineMatchIsReadOnly(t *testing.T) {
	e := New()
	defer e.Close()

	for _, line := range mixedLines[:6] {
		mustInsert(t, e, line)
	}

	before := e.Templates()
	for _, line := range mixedLines {
		for i := 0; i < 3; i++ {
			h, err := e.Match(line)
			if err != nil {
				t.Fatalf("Match(%q) error = %v", line, err)
			}
			if err := h.Release(); err != nil {
				t.Fatalf("Release() error = %v", err)
			}
		}
	}
	if diff := cmp.Diff(before, e.Templates()); diff != "" {
		t.Errorf("Match() mutated templates (-before +after):\n%s", diff)
	}

	// A following insert lands exactly where a match predicted.
	for _, line := range mixedLines[6:] {
		predicted, err := e.Match(line)
		if err != nil {
			t.Fatalf("Match(%q) error = %v", line, err)
		}
		wantID, _ := predicted.TemplateID()

		gotID, _ := mustInsert(t, e, line).TemplateID()
		if wantID != 0 && gotID != wantID {
			t.Errorf("Insert(%q) joined template %d, Match predicted %d", line, gotID, wantID)
		}
	}
}

func TestEngineMatchUngrouped(t *testing.T) {
	e := New()
	defer e.Close()

	mustInsert(t, e, "Command Failed on: node-127")

	h, err := e.Match("something entirely different")
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}

	got := mustSnapshot(t, h)
	want := Snapshot{
		Tokens:    []string{"something", "entirely", "different"},
		Wildcards: []bool{false, false, false},
		LineIDs:   []LineID{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Match() mismatch (-want +got):\n%s", diff)
	}
	if e.Len() != 1 {
		t.Errorf("Len() = %d, want 1", e.Len())
	}
}

func TestEngineDeterminism(t *testing.T) {
	run := func() []Snapshot {
		e := New()
		defer e.Close()
		for _, line := range mixedLines {
			mustInsert(t, e, line)
		}
		return e.Templates()
	}

	first, second := run(), run()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("replay produced different templates (-first +second):\n%s", diff)
	}
}

func TestEngineEmptyLineBucket(t *testing.T) {
	e := New()
	defer e.Close()

	mustInsert(t, e, "")
	h := mustInsert(t, e, "   ")

	got := mustSnapshot(t, h)
	want := Snapshot{TemplateID: 1, Tokens: []string{}, Wildcards: []bool{}, LineIDs: []LineID{1, 2}, Grouped: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("empty lines mismatch (-want +got):\n%s", diff)
	}
}

func TestEngineRejectsInvalidText(t *testing.T) {
	e := New()
	defer e.Close()

	mustInsert(t, e, "valid line one")

	bad := "broken \xff\xfe line"
	if _, err := e.Insert(bad); !errors.Is(err, ErrInvalidText) {
		t.Errorf("Insert() error = %v, want ErrInvalidText", err)
	}
	if _, err := e.Match(bad); !errors.Is(err, ErrInvalidText) {
		t.Errorf("Match() error = %v, want ErrInvalidText", err)
	}
	if e.LineCount() != 1 {
		t.Errorf("LineCount() = %d, want 1", e.LineCount())
	}

	// The rejected line did not consume a line id.
	ids := mustSnapshot(t, mustInsert(t, e, "valid line two")).LineIDs
	if diff := cmp.Diff([]LineID{1, 2}, ids); diff != "" {
		t.Errorf("line ids mismatch (-want +got):\n%s", diff)
	}
}

func TestEngineInsertWithID(t *testing.T) {
	e := New()
	defer e.Close()

	if _, err := e.InsertWithID("job 1 done", 100); err != nil {
		t.Fatalf("InsertWithID() error = %v", err)
	}
	if _, err := e.InsertWithID("job 2 done", 100); err != nil {
		t.Fatalf("InsertWithID() error = %v", err)
	}
	h := mustInsert(t, e, "job 3 done")

	got := mustSnapshot(t, h)
	want := Snapshot{
		TemplateID: 1,
		Tokens:     []string{"job", Wildcard, "done"},
		Wildcards:  []bool{false, true, false},
		LineIDs:    []LineID{100, 100, 1},
		Grouped:    true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestEngineNormalization(t *testing.T) {
	composed := "user caf\u00e9 logged in"
	decomposed := "user cafe\u0301 logged in"

	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{"without normalization", nil, "user * logged in"},
		{"with NFC", []Option{WithNormalization(norm.NFC)}, composed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(tt.opts...)
			defer e.Close()

			mustInsert(t, e, composed)
			got := mustSnapshot(t, mustInsert(t, e, decomposed))
			if s := strings.Join(got.Tokens, " "); s != tt.want {
				t.Errorf("tokens = %q, want %q", s, tt.want)
			}
		})
	}
}

func TestEngineClose(t *testing.T) {
	e := New()
	h := mustInsert(t, e, "hello world")

	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := e.Insert("hello world"); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("Insert() after Close error = %v, want ErrEngineClosed", err)
	}
	if _, err := e.Match("hello world"); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("Match() after Close error = %v, want ErrEngineClosed", err)
	}
	if _, err := h.Token(0); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("Token() after Close error = %v, want ErrEngineClosed", err)
	}
	if err := h.Release(); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("Release() after Close error = %v, want ErrEngineClosed", err)
	}
	if err := e.Close(); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("second Close() error = %v, want ErrEngineClosed", err)
	}
	if e.Templates() != nil {
		t.Error("Templates() after Close should be nil")
	}
}

func TestEngineIndependentInstances(t *testing.T) {
	a, b := New(), New()
	defer a.Close()
	defer b.Close()

	if a.ID() == b.ID() {
		t.Errorf("engines share id %s", a.ID())
	}

	mustInsert(t, a, "only in a")
	if b.Len() != 0 {
		t.Errorf("b.Len() = %d, want 0", b.Len())
	}
}

func TestEngineString(t *testing.T) {
	e := New()
	defer e.Close()

	for _, line := range commandFailedLines {
		mustInsert(t, e, line)
	}

	got := e.String()
	for _, want := range []string{
		"1 templates in the engine",
		"Template 1:\n\t\tCommand Failed on: *\n\t\t{1, 2, 3}",
		"3 total entries found, 3 expected.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("String() missing %q in:\n%s", want, got)
		}
	}
}

func BenchmarkEngineInsert(b *testing.B) {
	lines := make([]string, 1000)
	for i := range lines {
		lines[i] = fmt.Sprintf("request %d from 10.0.%d.%d served in %dms", i, i%7, i%13, i%250)
	}

	e := New()
	defer e.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h, err := e.Insert(lines[i%len(lines)])
		if err != nil {
			b.Fatal(err)
		}
		_ = h.Release()
	}
}
