package prompt

import (
	"fmt"
	"strings"

	"github.com/bimmerbailey/spell/internal/llm"
)

// maxOverviewTemplates bounds how many templates are sent for an overview.
const maxOverviewTemplates = 50

// Build constructs a []llm.Message slice ready to be sent to any llm.Provider.
//
// The returned slice begins with a system message whose content is
// determined by pt, followed by a user message holding the templates.
//
// Required fields per PromptType:
//   - TypeDescribe: Template must have at least one token
//   - TypeOverview: Templates must be non-empty
//
// Returns ErrMissingField if a required field is absent.
func Build(pt PromptType, opts BuildOptions) ([]llm.Message, error) {
	var (
		user string
		err  error
	)

	switch pt {
	case TypeDescribe:
		user, err = describeUserMessage(opts)
	case TypeOverview:
		user, err = overviewUserMessage(opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, pt)
	}
	if err != nil {
		return nil, err
	}

	return []llm.Message{
		{Role: "system", Content: systemPrompt(pt)},
		{Role: "user", Content: user},
	}, nil
}

func describeUserMessage(opts BuildOptions) (string, error) {
	if len(opts.Template.Tokens) == 0 {
		return "", missingField("Template")
	}

	var sb strings.Builder
	appendSourceContext(&sb, opts)

	fmt.Fprintf(&sb, "Template (%d lines): %s\n", len(opts.Template.LineIDs), strings.Join(opts.Template.Tokens, " "))
	if opts.Example != "" {
		fmt.Fprintf(&sb, "Example line: %s\n", opts.Example)
	}
	sb.WriteString("\nDescribe this template in one sentence.")

	return sb.String(), nil
}

func overviewUserMessage(opts BuildOptions) (string, error) {
	if len(opts.Templates) == 0 {
		return "", missingField("Templates")
	}

	var sb strings.Builder
	appendSourceContext(&sb, opts)

	templates := opts.Templates
	if len(templates) > maxOverviewTemplates {
		templates = templates[:maxOverviewTemplates]
	}

	fmt.Fprintf(&sb, "Templates (%d of %d):\n", len(templates), len(opts.Templates))
	for _, t := range templates {
		fmt.Fprintf(&sb, "- [%d lines] %s\n", len(t.LineIDs), strings.Join(t.Tokens, " "))
	}
	sb.WriteString("\nSummarise what these templates say about the system.")

	return sb.String(), nil
}

// appendSourceContext writes the optional file list and line count into sb.
func appendSourceContext(sb *strings.Builder, opts BuildOptions) {
	if len(opts.Files) == 1 {
		fmt.Fprintf(sb, "Source file: %s\n", opts.Files[0])
	} else if len(opts.Files) > 1 {
		fmt.Fprintf(sb, "Source files (%d): %s\n", len(opts.Files), strings.Join(opts.Files, ", "))
	}

	if opts.Lines > 0 {
		fmt.Fprintf(sb, "Lines mined: %d\n", opts.Lines)
	}

	if len(opts.Files) > 0 || opts.Lines > 0 {
		sb.WriteString("\n")
	}
}
