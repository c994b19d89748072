// Package output renders mined templates and match results. It supports
// text, JSON, table, and YAML formats.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/bimmerbailey/spell/internal/analyzer"
	"github.com/bimmerbailey/spell/internal/spell"
)

// Format represents an output format type.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
	FormatYAML  Format = "yaml"
)

// ParseFormat converts a string to a Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	case "yaml", "yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// Report is the document written for a set of templates.
type Report struct {
	Templates []spell.Snapshot `json:"templates" yaml:"templates"`
	Lines     int              `json:"lines" yaml:"lines"`
}

// Match pairs a queried line with the result of matching it.
type Match struct {
	Line           string `json:"line" yaml:"line"`
	spell.Snapshot `yaml:",inline"`
}

// Description is a model-written summary of one template.
type Description struct {
	TemplateID  int    `json:"template_id" yaml:"template_id"`
	Template    string `json:"template" yaml:"template"`
	Lines       int    `json:"lines" yaml:"lines"`
	Description string `json:"description" yaml:"description"`
	Wildcards   []bool `json:"-" yaml:"-"` // per slot of Template, for highlighting
}

// StatsReport is the document written for template statistics.
type StatsReport struct {
	analyzer.Stats `yaml:",inline"`
	ByLength       []analyzer.GroupedResult `json:"by_length" yaml:"by_length"`
}

// Writer handles writing formatted output.
type Writer struct {
	w        io.Writer
	format   Format
	colorize bool
}

// New creates a new output Writer.
func New(w io.Writer, format Format) *Writer {
	return &Writer{w: w, format: format}
}

// SetColor enables or disables wildcard highlighting in text output.
func (wr *Writer) SetColor(mode ColorMode) {
	wr.colorize = shouldColorize(mode, wr.w)
}

// WriteReport outputs templates in the configured format.
func (wr *Writer) WriteReport(r Report) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(r)
	case FormatYAML:
		return wr.WriteYAML(r)
	case FormatTable:
		return wr.writeTemplateTable(r.Templates)
	default:
		return wr.writeTemplateText(r)
	}
}

// WriteMatches outputs match results in the configured format.
func (wr *Writer) WriteMatches(matches []Match) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(matches)
	case FormatYAML:
		return wr.WriteYAML(matches)
	case FormatTable:
		return wr.writeMatchTable(matches)
	default:
		return wr.writeMatchText(matches)
	}
}

// WriteDescriptions outputs template descriptions in the configured format.
func (wr *Writer) WriteDescriptions(descs []Description) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(descs)
	case FormatYAML:
		return wr.WriteYAML(descs)
	case FormatTable:
		tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tLINES\tDESCRIPTION")
		fmt.Fprintln(tw, "--\t-----\t-----------")
		for _, d := range descs {
			fmt.Fprintf(tw, "%d\t%d\t%s\n", d.TemplateID, d.Lines, truncate(d.Description, 80))
		}
		return tw.Flush()
	default:
		for _, d := range descs {
			fmt.Fprintf(wr.w, "T%d (%d)\t%s\n", d.TemplateID, d.Lines, wr.render(strings.Fields(d.Template), d.Wildcards))
			fmt.Fprintf(wr.w, "\t%s\n", d.Description)
		}
		return nil
	}
}

// WriteStats outputs template statistics in the configured format.
func (wr *Writer) WriteStats(r StatsReport) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(r)
	case FormatYAML:
		return wr.WriteYAML(r)
	case FormatTable:
		tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tLINES\tPERCENT\tTEMPLATE")
		fmt.Fprintln(tw, "--\t-----\t-------\t--------")
		for _, tc := range r.TopTemplates {
			fmt.Fprintf(tw, "%d\t%d\t%.2f%%\t%s\n", tc.TemplateID, tc.Count, tc.Percent, truncate(tc.Template, 80))
		}
		return tw.Flush()
	default:
		return wr.writeStatsText(r)
	}
}

// WriteJSON outputs any value as indented JSON.
func (wr *Writer) WriteJSON(v any) error {
	enc := json.NewEncoder(wr.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteYAML outputs any value as YAML.
func (wr *Writer) WriteYAML(v any) error {
	enc := yaml.NewEncoder(wr.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// Assignment writes a single "T<id> <line>" record, used while following a file.
func (wr *Writer) Assignment(templateID int, line string) error {
	_, err := fmt.Fprintf(wr.w, "T%d %s\n", templateID, line)
	return err
}

func (wr *Writer) writeTemplateText(r Report) error {
	total := 0
	for _, t := range r.Templates {
		total += len(t.LineIDs)
	}
	fmt.Fprintf(wr.w, "%d templates from %d lines\n\n", len(r.Templates), r.Lines)

	for _, t := range r.Templates {
		fmt.Fprintf(wr.w, "T%d (%d)\t%s\n", t.TemplateID, len(t.LineIDs), wr.render(t.Tokens, t.Wildcards))
		fmt.Fprintf(wr.w, "\tlines: %s\n", JoinLineIDs(t.LineIDs))
	}

	if total != r.Lines {
		fmt.Fprintf(wr.w, "\n%d lines grouped, %d read\n", total, r.Lines)
	}
	return nil
}

func (wr *Writer) writeStatsText(r StatsReport) error {
	fmt.Fprintf(wr.w, "Total Lines: %d\n", r.TotalLines)
	fmt.Fprintf(wr.w, "Grouped Lines: %d\n", r.Grouped)
	fmt.Fprintf(wr.w, "Templates: %d (%d singletons)\n", r.Templates, r.Singletons)
	fmt.Fprintf(wr.w, "Wildcard Slots: %d of %d (%.2f%%)\n", r.Wildcards, r.Slots, r.WildcardRate)

	if len(r.TopTemplates) > 0 {
		fmt.Fprintf(wr.w, "\nTop Templates (%.2f%% of grouped lines):\n", r.Coverage)
		for _, tc := range r.TopTemplates {
			fmt.Fprintf(wr.w, "  T%d\t%d (%.2f%%)\t%s\n", tc.TemplateID, tc.Count, tc.Percent, wr.render(strings.Fields(tc.Template), tc.Wildcards))
		}
	}

	if len(r.ByLength) > 0 {
		fmt.Fprintln(wr.w, "\nTemplates by Length:")
		for _, g := range r.ByLength {
			fmt.Fprintf(wr.w, "  %s tokens: %d (%.2f%%)\n", g.Key, g.Count, g.Percent)
		}
	}
	return nil
}

func (wr *Writer) writeTemplateTable(templates []spell.Snapshot) error {
	tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLINES\tSLOTS\tTEMPLATE")
	fmt.Fprintln(tw, "--\t-----\t-----\t--------")

	for _, t := range templates {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\n", t.TemplateID, len(t.LineIDs), len(t.Tokens), truncate(strings.Join(t.Tokens, " "), 80))
	}

	return tw.Flush()
}

func (wr *Writer) writeMatchText(matches []Match) error {
	for _, m := range matches {
		fmt.Fprintln(wr.w, m.Line)
		if !m.Grouped {
			fmt.Fprintln(wr.w, "\t=> no template")
			continue
		}
		fmt.Fprintf(wr.w, "\t=> T%d %s {%s}\n", m.TemplateID, wr.render(m.Tokens, m.Wildcards), JoinLineIDs(m.LineIDs))
	}
	return nil
}

func (wr *Writer) writeMatchTable(matches []Match) error {
	tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tTEMPLATE\tPATTERN")
	fmt.Fprintln(tw, "----\t--------\t-------")

	for _, m := range matches {
		id, pattern := "-", "-"
		if m.Grouped {
			id = fmt.Sprintf("T%d", m.TemplateID)
			pattern = truncate(strings.Join(m.Tokens, " "), 60)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", truncate(m.Line, 60), id, pattern)
	}

	return tw.Flush()
}

// render joins tokens, highlighting the slots flagged in wildcards when
// colour is on. Flags that do not line up with tokens are ignored.
func (wr *Writer) render(tokens []string, wildcards []bool) string {
	if !wr.colorize || len(wildcards) != len(tokens) {
		return strings.Join(tokens, " ")
	}
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = ColorizeToken(tok, wildcards[i])
	}
	return strings.Join(out, " ")
}

// JoinLineIDs renders line ids as a comma separated list.
func JoinLineIDs(ids []spell.LineID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
