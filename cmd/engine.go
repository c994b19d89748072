package cmd

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bimmerbailey/spell/internal/config"
	"github.com/bimmerbailey/spell/internal/diag"
	"github.com/bimmerbailey/spell/internal/parser"
	"github.com/bimmerbailey/spell/internal/preprocess"
	"github.com/bimmerbailey/spell/internal/spell"
)

// loadConfig decodes the viper state shared by every command.
func loadConfig() (config.Config, error) {
	v := viper.GetViper()
	config.SetDefaults(v)
	return config.Load(v)
}

// newEngine creates an engine configured from cfg.
func newEngine(cfg config.Config) (*spell.Engine, error) {
	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, spell.WithLogger(diag.L().Named("engine")))
	return spell.New(opts...), nil
}

type mineOptions struct {
	MaxLines    int             // 0 means no limit
	MessageOnly bool            // mine the JSON message field instead of the raw line
	MinLevel    config.LogLevel // LevelUnknown disables the filter
	Masker      *preprocess.Masker
}

type mineStats struct {
	Lines    int            // lines inserted
	Skipped  int            // lines filtered out or rejected
	Examples map[int]string // first line seen per template id, before masking
}

// insertLine masks and inserts text, returning the id of the template it joined.
func insertLine(e *spell.Engine, m *preprocess.Masker, text string) (int, error) {
	h, err := e.Insert(m.Mask(text))
	if err != nil {
		return 0, err
	}
	defer h.Release()
	return h.TemplateID()
}

// mineFiles inserts every line of files, in order, into e.
func mineFiles(e *spell.Engine, files []string, opts mineOptions) (mineStats, error) {
	logger := diag.L()
	stats := mineStats{Examples: make(map[int]string)}
	full := func() bool { return opts.MaxLines > 0 && stats.Lines >= opts.MaxLines }

	for _, path := range files {
		err := parser.ParseFile(path, func(l parser.Line) error {
			if full() {
				return parser.ErrStop
			}
			if opts.MinLevel != config.LevelUnknown && !l.Level.AtLeast(opts.MinLevel) {
				stats.Skipped++
				return nil
			}

			text := l.Text(opts.MessageOnly)
			id, err := insertLine(e, opts.Masker, text)
			if errors.Is(err, spell.ErrInvalidText) {
				logger.Warn("skipping line",
					zap.String("file", path),
					zap.Int("line", l.Number),
					zap.Error(err))
				stats.Skipped++
				return nil
			}
			if err != nil {
				return err
			}

			stats.Lines++
			if _, ok := stats.Examples[id]; !ok {
				stats.Examples[id] = text
			}
			return nil
		})
		if err != nil {
			return stats, err
		}
		if full() {
			logger.Debug("line limit reached", zap.Int("max_lines", opts.MaxLines))
			break
		}
	}

	logger.Debug("mining complete",
		zap.Int("files", len(files)),
		zap.Int("lines", stats.Lines),
		zap.Int("skipped", stats.Skipped),
		zap.Int("templates", e.Len()))
	return stats, nil
}

// parseMinLevel validates an optional level flag.
func parseMinLevel(s string) (config.LogLevel, error) {
	if s == "" {
		return config.LevelUnknown, nil
	}
	level := config.ParseLevel(s)
	if level == config.LevelUnknown {
		return level, fmt.Errorf("invalid level: %s", s)
	}
	return level, nil
}

// sortTemplates orders templates in place: "creation" keeps engine order,
// "count" puts the largest groups first.
func sortTemplates(templates []spell.Snapshot, by string) error {
	switch by {
	case "", "creation":
		return nil
	case "count":
		slices.SortStableFunc(templates, func(a, b spell.Snapshot) int {
			return cmp.Compare(len(b.LineIDs), len(a.LineIDs))
		})
		return nil
	default:
		return fmt.Errorf("invalid sort order %q (want creation or count)", by)
	}
}

func top(templates []spell.Snapshot, n int) []spell.Snapshot {
	if n > 0 && len(templates) > n {
		return templates[:n]
	}
	return templates
}
