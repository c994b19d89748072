package prompt

import (
	"errors"
	"fmt"

	"github.com/bimmerbailey/spell/internal/spell"
)

// PromptType identifies the task a prompt is designed to perform.
type PromptType string

const (
	// TypeDescribe asks for a one-line description of a single template.
	// It is used by `spell describe`.
	TypeDescribe PromptType = "describe"

	// TypeOverview asks for a short summary of what a set of templates
	// says about the system that logged them.
	TypeOverview PromptType = "overview"
)

// BuildOptions holds the context required to build a prompt.
type BuildOptions struct {
	// Template is the template to describe.
	// Required for [TypeDescribe].
	Template spell.Snapshot

	// Example is one raw line absorbed by Template.
	// Optional: included as context when non-empty.
	Example string

	// Templates is the template set to summarise, most frequent first.
	// Required for [TypeOverview].
	Templates []spell.Snapshot

	// Files is the list of log file paths that were mined.
	// Optional: included as context when non-empty.
	Files []string

	// Lines is the number of lines that were mined.
	// Optional: included as context when positive.
	Lines int
}

// ErrMissingField is returned by [Build] when a required field for the
// requested [PromptType] is absent from [BuildOptions].
var ErrMissingField = errors.New("prompt: missing required field")

// ErrUnknownType is returned by [Build] for an unsupported [PromptType].
var ErrUnknownType = errors.New("prompt: unknown prompt type")

// missingField wraps [ErrMissingField] with the specific field name.
func missingField(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}
