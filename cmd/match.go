package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/spell/internal/config"
	"github.com/bimmerbailey/spell/internal/output"
	"github.com/bimmerbailey/spell/internal/preprocess"
	"github.com/bimmerbailey/spell/internal/spell"
)

var matchCmd = &cobra.Command{
	Use:   "match <line>... --file <logfile>",
	Short: "Find the template a line belongs to",
	Long: `Mine the given log files, then look up each argument line against the
resulting templates without adding it to them.

A line that matches is printed with the template's tokens and the ids of the
lines it grouped; a line that does not is reported as having no template.

Examples:
  spell match --file app.log "Command Failed on: node-9"
  spell match -F 'logs/*.log' -f json "disk full on /dev/sda1" "user bob logged in"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().StringSliceP("file", "F", []string{}, "log file(s) to mine first (required, repeatable)")
	addMineFlags(matchCmd)

	_ = matchCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	patterns, _ := cmd.Flags().GetStringSlice("file")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := mineOptionsFromFlags(cmd, cfg)
	if err != nil {
		return err
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

	if _, err := mineFiles(e, files, opts); err != nil {
		return err
	}

	matches := make([]output.Match, 0, len(args))
	for _, line := range args {
		m, err := matchLine(e, opts.Masker, line)
		if err != nil {
			return err
		}
		matches = append(matches, m)
	}

	w := output.New(cmd.OutOrStdout(), output.ParseFormat(cfg.Format))
	w.SetColor(output.ParseColorMode(viper.GetString("color")))
	return w.WriteMatches(matches)
}

func matchLine(e *spell.Engine, m *preprocess.Masker, line string) (output.Match, error) {
	h, err := e.Match(m.Mask(line))
	if err != nil {
		return output.Match{}, err
	}
	defer h.Release()

	s, err := h.Snapshot()
	if err != nil {
		return output.Match{}, err
	}
	return output.Match{Line: line, Snapshot: s}, nil
}
