package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bimmerbailey/spell/internal/config"
	"github.com/bimmerbailey/spell/internal/diag"
	"github.com/bimmerbailey/spell/internal/llm"
	"github.com/bimmerbailey/spell/internal/output"
	"github.com/bimmerbailey/spell/internal/preprocess"
	"github.com/bimmerbailey/spell/internal/prompt"
	"github.com/bimmerbailey/spell/internal/spell"
)

// newProvider is replaced in tests.
var newProvider = llm.NewProvider

var describeCmd = &cobra.Command{
	Use:   "describe --file <logfile> [flags]",
	Short: "Describe mined templates using a local model",
	Long: `Mine the given log files, then ask an Ollama model to describe the most
frequent templates in one sentence each, or to summarise the whole set.

Sensitive values (addresses, emails, keys, tokens) in the templates and
example lines are replaced with hashed placeholders before anything is sent
to the model unless --no-redact is given.

Examples:
  spell describe --file app.log
  spell describe --file 'logs/*.log' --top 5 --format yaml
  spell describe --file app.log --overview`,
	Args: cobra.NoArgs,
	RunE: runDescribe,
}

func init() {
	describeCmd.Flags().StringSliceP("file", "F", []string{}, "log file(s) to mine (required, repeatable)")
	describeCmd.Flags().Int("top", 10, "number of templates to describe, most frequent first")
	describeCmd.Flags().Bool("overview", false, "summarise the template set instead of describing each template")
	describeCmd.Flags().Bool("no-redact", false, "send templates and examples to the model unredacted")
	addMineFlags(describeCmd)

	_ = describeCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(describeCmd)
}

// overview is the document written by --overview.
type overview struct {
	Overview  string `json:"overview" yaml:"overview"`
	Templates int    `json:"templates" yaml:"templates"`
	Lines     int    `json:"lines" yaml:"lines"`
}

func runDescribe(cmd *cobra.Command, args []string) error {
	patterns, _ := cmd.Flags().GetStringSlice("file")
	topN, _ := cmd.Flags().GetInt("top")
	wantOverview, _ := cmd.Flags().GetBool("overview")
	noRedact, _ := cmd.Flags().GetBool("no-redact")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := mineOptionsFromFlags(cmd, cfg)
	if err != nil {
		return err
	}

	var redactor *preprocess.Redactor
	if cfg.Redact && !noRedact {
		if redactor, err = preprocess.NewRedactor(nil); err != nil {
			return err
		}
	}

	files, err := config.ExpandGlobs(patterns)
	if err != nil {
		return err
	}

	e, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	stats, err := mineFiles(e, files, opts)
	if err != nil {
		return err
	}

	templates := e.Templates()
	_ = sortTemplates(templates, "count")
	templates = top(templates, topN)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	provider, err := connectProvider(ctx, cfg)
	if err != nil {
		return err
	}

	chatOpts := &llm.ChatOptions{
		Model:       cfg.LLM.Ollama.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}
	w := output.New(cmd.OutOrStdout(), output.ParseFormat(cfg.Format))
	w.SetColor(output.ParseColorMode(viper.GetString("color")))

	if wantOverview {
		redacted := make([]spell.Snapshot, len(templates))
		for i, t := range templates {
			redacted[i] = redactSnapshot(redactor, t)
		}
		text, err := ask(ctx, provider, chatOpts, prompt.TypeOverview, prompt.BuildOptions{
			Templates: redacted,
			Files:     files,
			Lines:     stats.Lines,
		})
		if err != nil {
			return err
		}
		return writeOverview(w, cmd.OutOrStdout(), cfg.Format, overview{Overview: text, Templates: e.Len(), Lines: stats.Lines})
	}

	descs := make([]output.Description, 0, len(templates))
	for _, t := range templates {
		text, err := ask(ctx, provider, chatOpts, prompt.TypeDescribe, prompt.BuildOptions{
			Template: redactSnapshot(redactor, t),
			Example:  redactor.Redact(stats.Examples[t.TemplateID]),
			Files:    files,
			Lines:    stats.Lines,
		})
		if err != nil {
			return fmt.Errorf("describing template %d: %w", t.TemplateID, err)
		}
		descs = append(descs, output.Description{
			TemplateID:  t.TemplateID,
			Template:    strings.Join(t.Tokens, " "),
			Lines:       len(t.LineIDs),
			Description: text,
			Wildcards:   t.Wildcards,
		})
	}
	return w.WriteDescriptions(descs)
}

// connectProvider creates the provider and checks the model is usable.
func connectProvider(ctx context.Context, cfg config.Config) (llm.Provider, error) {
	provider, err := newProvider(cfg.LLM, diag.L().Named("llm"))
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w\n\nTroubleshooting:\n- Ensure Ollama is running: ollama serve\n- Check llm.ollama.host in ~/.spell.yaml", err)
	}

	if err := llm.EnsureReady(ctx, provider, cfg.LLM.Ollama.Model); err != nil {
		if errors.Is(err, llm.ErrModelNotFound) {
			return nil, fmt.Errorf("%w\n\nPull it with: ollama pull %s", err, cfg.LLM.Ollama.Model)
		}
		return nil, fmt.Errorf("cannot connect to Ollama at %s: %w\n\nStart Ollama with: ollama serve",
			cfg.LLM.Ollama.Host, err)
	}
	return provider, nil
}

func ask(ctx context.Context, provider llm.Provider, opts *llm.ChatOptions, pt prompt.PromptType, bo prompt.BuildOptions) (string, error) {
	messages, err := prompt.Build(pt, bo)
	if err != nil {
		return "", err
	}

	resp, err := provider.Chat(ctx, messages, opts)
	if err != nil {
		return "", err
	}
	diag.L().Debug("model answered",
		zap.String("prompt", string(pt)),
		zap.String("model", resp.Model),
		zap.Int("tokens", resp.TokensTotal))
	return strings.TrimSpace(resp.Content), nil
}

// redactSnapshot returns a copy of s with every token redacted.
func redactSnapshot(r *preprocess.Redactor, s spell.Snapshot) spell.Snapshot {
	if r == nil {
		return s
	}
	tokens := make([]string, len(s.Tokens))
	for i, tok := range s.Tokens {
		tokens[i] = r.Redact(tok)
	}
	s.Tokens = tokens
	return s
}

func writeOverview(w *output.Writer, out io.Writer, format string, o overview) error {
	switch output.ParseFormat(format) {
	case output.FormatJSON:
		return w.WriteJSON(o)
	case output.FormatYAML:
		return w.WriteYAML(o)
	default:
		_, err := fmt.Fprintf(out, "%d templates from %d lines\n\n%s\n", o.Templates, o.Lines, o.Overview)
		return err
	}
}
