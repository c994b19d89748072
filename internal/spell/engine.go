package spell

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// Engine groups lines into templates.
//
// The engine owns every template it creates; they are released together by
// Close. It performs no locking: calls on one engine must be serialized by
// the caller.
type Engine struct {
	id        string
	delims    Delimiters
	form      norm.Form
	normalize bool
	logger    *zap.Logger

	store    *store
	handles  arena
	nextLine LineID
	inserted int
	closed   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithDelimiters sets the token delimiters. An empty set keeps DefaultDelimiters.
func WithDelimiters(d Delimiters) Option {
	return func(e *Engine) {
		if !d.IsZero() {
			e.delims = d
		}
	}
}

// WithNormalization applies the Unicode normalization form to every line
// before it is tokenized.
func WithNormalization(form norm.Form) Option {
	return func(e *Engine) {
		e.form = form
		e.normalize = true
	}
}

// WithLogger sets the logger used for debug events. Default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an empty engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		id:     uuid.NewString(),
		delims: DefaultDelimiters,
		logger: zap.NewNop(),
		store:  newStore(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.logger = e.logger.With(zap.String("engine", e.id))
	return e
}

// ID returns the unique id of this engine instance.
func (e *Engine) ID() string {
	return e.id
}

// Delimiters returns the delimiter set fixed at construction.
func (e *Engine) Delimiters() Delimiters {
	return e.delims
}

// Insert adds a line under the next engine-assigned line id (1, 2, ...) and
// returns a handle to the template that absorbed it.
func (e *Engine) Insert(line string) (Handle, error) {
	tokens, err := e.prepare(line)
	if err != nil {
		return Handle{}, err
	}
	e.nextLine++
	return e.insert(tokens, e.nextLine), nil
}

// InsertWithID adds a line under a caller-supplied line id. It does not
// advance the engine-assigned counter.
func (e *Engine) InsertWithID(line string, id LineID) (Handle, error) {
	tokens, err := e.prepare(line)
	if err != nil {
		return Handle{}, err
	}
	return e.insert(tokens, id), nil
}

// Match finds the template line would join without changing any state. When
// no template qualifies the handle holds the raw tokens of line, no line ids,
// and reports Grouped() == false.
func (e *Engine) Match(line string) (Handle, error) {
	tokens, err := e.prepare(line)
	if err != nil {
		return Handle{}, err
	}

	var snap *Snapshot
	if t, _ := e.store.best(tokens); t != nil {
		snap = t.snapshot()
	} else {
		snap = &Snapshot{
			Tokens:    tokens,
			Wildcards: make([]bool, len(tokens)),
			LineIDs:   []LineID{},
		}
	}

	return e.newHandle(snap), nil
}

// prepare validates and tokenizes line.
func (e *Engine) prepare(line string) ([]string, error) {
	if e.closed {
		return nil, ErrEngineClosed
	}
	if !utf8.ValidString(line) {
		return nil, ErrInvalidText
	}
	if e.normalize {
		line = e.form.String(line)
	}
	return Tokenize(line, e.delims), nil
}

func (e *Engine) insert(tokens []string, id LineID) Handle {
	e.inserted++

	t, pairs := e.store.best(tokens)
	if t == nil {
		t = newTemplate(e.store.nextID(), tokens, id)
		e.store.register(t)
		e.logger.Debug("template created",
			zap.Int("template", t.id),
			zap.Int("tokens", len(tokens)),
			zap.Int("line", int(id)))
		return e.newHandle(t.snapshot())
	}

	changed := t.merge(pairs, id)
	e.logger.Debug("line merged",
		zap.Int("template", t.id),
		zap.Int("lcs", len(pairs)),
		zap.Int("wildcarded", changed),
		zap.Int("line", int(id)))
	return e.newHandle(t.snapshot())
}

func (e *Engine) newHandle(s *Snapshot) Handle {
	slot, gen := e.handles.put(s)
	return Handle{e: e, slot: slot, gen: gen}
}

// Templates returns a snapshot of every template in creation order.
func (e *Engine) Templates() []Snapshot {
	if e.closed {
		return nil
	}
	all := e.store.templates()
	out := make([]Snapshot, len(all))
	for i, t := range all {
		out[i] = *t.snapshot()
	}
	return out
}

// Len returns the number of templates.
func (e *Engine) Len() int {
	if e.closed {
		return 0
	}
	return e.store.len()
}

// LineCount returns the number of lines inserted so far.
func (e *Engine) LineCount() int {
	return e.inserted
}

// OpenHandles returns the number of handles not yet released.
func (e *Engine) OpenHandles() int {
	return e.handles.live()
}

// Close releases every template and invalidates all outstanding handles.
func (e *Engine) Close() error {
	if e.closed {
		return ErrEngineClosed
	}
	e.closed = true
	e.store = nil
	e.handles = arena{}
	e.logger.Debug("engine closed", zap.Int("lines", e.inserted))
	return nil
}

// String summarises the templates and the line ids each one absorbed.
func (e *Engine) String() string {
	if e.closed {
		return "\tengine closed"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\t%d templates in the engine\n\n", e.store.len())

	total := 0
	for _, t := range e.store.templates() {
		ids := make([]string, len(t.lineIDs))
		for i, id := range t.lineIDs {
			ids[i] = fmt.Sprint(id)
		}
		fmt.Fprintf(&b, "\tTemplate %d:\n\t\t%s\n\t\t{%s}\n", t.id, t.String(), strings.Join(ids, ", "))
		total += len(t.lineIDs)
	}

	fmt.Fprintf(&b, "\n\t%d total entries found, %d expected.", total, e.inserted)
	return b.String()
}
