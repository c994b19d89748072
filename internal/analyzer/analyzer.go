// Package analyzer summarises a mined template set: how many lines each
// template absorbed, how variable the templates are, and how they spread
// over token counts.
package analyzer

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/bimmerbailey/spell/internal/spell"
)

// Stats holds aggregate statistics for a template set.
type Stats struct {
	TotalLines   int             `json:"total_lines" yaml:"total_lines"`
	Grouped      int             `json:"grouped" yaml:"grouped"`
	Templates    int             `json:"templates" yaml:"templates"`
	Singletons   int             `json:"singletons" yaml:"singletons"`
	Slots        int             `json:"slots" yaml:"slots"`
	Wildcards    int             `json:"wildcards" yaml:"wildcards"`
	WildcardRate float64         `json:"wildcard_rate" yaml:"wildcard_rate"`
	Coverage     float64         `json:"coverage" yaml:"coverage"` // Percent of grouped lines held by TopTemplates
	TopTemplates []TemplateCount `json:"top_templates,omitempty" yaml:"top_templates,omitempty"`
}

// TemplateCount tracks a template and how many lines it holds.
type TemplateCount struct {
	TemplateID int     `json:"template_id" yaml:"template_id"`
	Template   string  `json:"template" yaml:"template"`
	Count      int     `json:"count" yaml:"count"`
	Percent    float64 `json:"percent" yaml:"percent"`
	Wildcards  []bool  `json:"-" yaml:"-"` // per slot of Template, for highlighting
}

// GroupedResult represents templates grouped by a derived key.
type GroupedResult struct {
	Key     string  `json:"key" yaml:"key"`
	Count   int     `json:"count" yaml:"count"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// Analyzer computes statistics over template snapshots.
type Analyzer struct{}

// New creates a new Analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// ComputeStats calculates aggregate statistics for templates mined from
// totalLines lines, listing the topN largest templates.
func (a *Analyzer) ComputeStats(templates []spell.Snapshot, totalLines, topN int) Stats {
	stats := Stats{
		TotalLines: totalLines,
		Templates:  len(templates),
	}

	for _, t := range templates {
		stats.Grouped += len(t.LineIDs)
		stats.Slots += len(t.Tokens)
		stats.Wildcards += wildcards(t)
		if len(t.LineIDs) == 1 {
			stats.Singletons++
		}
	}
	if stats.Slots > 0 {
		stats.WildcardRate = float64(stats.Wildcards) * 100 / float64(stats.Slots)
	}

	stats.TopTemplates = topTemplates(templates, stats.Grouped, topN)
	covered := 0
	for _, tc := range stats.TopTemplates {
		covered += tc.Count
	}
	if stats.Grouped > 0 {
		stats.Coverage = float64(covered) * 100 / float64(stats.Grouped)
	}

	return stats
}

// topTemplates returns the n templates holding the most lines. Ties keep
// creation order.
func topTemplates(templates []spell.Snapshot, grouped, n int) []TemplateCount {
	counts := make([]TemplateCount, 0, len(templates))
	for _, t := range templates {
		counts = append(counts, TemplateCount{
			TemplateID: t.TemplateID,
			Template:   strings.Join(t.Tokens, " "),
			Count:      len(t.LineIDs),
			Percent:    percent(len(t.LineIDs), grouped),
			Wildcards:  t.Wildcards,
		})
	}

	slices.SortStableFunc(counts, func(a, b TemplateCount) int {
		return cmp.Compare(b.Count, a.Count)
	})

	if n >= 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// GroupBy groups templates by a derived field and returns the top N groups.
// Supported fields: "length" (token count) and "wildcards" (wildcard count).
// topN <= 0 returns every group.
func (a *Analyzer) GroupBy(templates []spell.Snapshot, field string, topN int) ([]GroupedResult, error) {
	var key func(spell.Snapshot) int
	switch field {
	case "length":
		key = func(t spell.Snapshot) int { return len(t.Tokens) }
	case "wildcards":
		key = wildcards
	default:
		return nil, fmt.Errorf("unsupported group-by field: %s (must be 'length' or 'wildcards')", field)
	}

	if len(templates) == 0 {
		return nil, nil
	}

	groups := make(map[int]int)
	for _, t := range templates {
		groups[key(t)]++
	}

	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	result := make([]GroupedResult, 0, len(groups))
	for _, k := range keys {
		result = append(result, GroupedResult{
			Key:     strconv.Itoa(k),
			Count:   groups[k],
			Percent: percent(groups[k], len(templates)),
		})
	}

	// Sort by count descending; equal counts stay in key order
	slices.SortStableFunc(result, func(a, b GroupedResult) int {
		return cmp.Compare(b.Count, a.Count)
	})

	if topN > 0 && len(result) > topN {
		result = result[:topN]
	}

	return result, nil
}

// wildcards counts the wildcard slots of t. A literal "*" token is fixed.
func wildcards(t spell.Snapshot) int {
	n := 0
	for _, wild := range t.Wildcards {
		if wild {
			n++
		}
	}
	return n
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}
