package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/spell/internal/config"
	"github.com/bimmerbailey/spell/internal/output"
)

var mineCmd = &cobra.Command{
	Use:   "mine [flags] <file|glob>...",
	Short: "Mine message templates from log files",
	Long: `Read every non-blank line of the given files, in order, into one engine
and print the templates it found together with the line ids each one absorbed.

Line ids count inserted lines across all files, starting at 1.

Examples:
  spell mine /var/log/app.log
  spell mine --max-lines 10000 --sort count --top 20 'logs/*.log'
  spell mine --message-only --min-level warn service.jsonl
  spell mine --mask default,number --delimiters punctuation app.log
  spell mine --dump app.log`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMine,
}

func init() {
	addMineFlags(mineCmd)
	mineCmd.Flags().String("sort", "creation", "template order (creation, count)")
	mineCmd.Flags().Int("top", 0, "only print the first N templates (0 for all)")
	mineCmd.Flags().Bool("dump", false, "print the engine summary instead of a report")

	rootCmd.AddCommand(mineCmd)
}

// addMineFlags registers the flags shared by commands that mine files.
func addMineFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("max-lines", "n", 0, "stop after inserting N lines (0 for no limit)")
	cmd.Flags().Bool("message-only", false, "mine the message field of JSON lines instead of the whole line")
	cmd.Flags().StringP("min-level", "l", "", "only mine lines at or above this level (debug, info, warn, error, fatal)")
	cmd.Flags().StringSlice("mask", nil, "mask values before mining: default or pattern names (ipv4, ipv6, email, uuid, mac_address, hex, number, ...)")
}

// mineOptionsFromFlags combines the shared mining flags with the configuration.
func mineOptionsFromFlags(cmd *cobra.Command, cfg config.Config) (mineOptions, error) {
	maxLines, _ := cmd.Flags().GetInt("max-lines")
	messageOnly, _ := cmd.Flags().GetBool("message-only")
	levelStr, _ := cmd.Flags().GetString("min-level")
	mask, _ := cmd.Flags().GetStringSlice("mask")

	if maxLines < 0 {
		return mineOptions{}, fmt.Errorf("invalid --max-lines %d", maxLines)
	}
	minLevel, err := parseMinLevel(levelStr)
	if err != nil {
		return mineOptions{}, err
	}
	if len(mask) > 0 {
		cfg.Mask = mask
	}
	masker, err := cfg.Masker()
	if err != nil {
		return mineOptions{}, err
	}

	return mineOptions{
		MaxLines:    maxLines,
		MessageOnly: messageOnly || cfg.MessageOnly,
		MinLevel:    minLevel,
		Masker:      masker,
	}, nil
}

func runMine(cmd *cobra.Command, args []string) error {
	sortBy, _ := cmd.Flags().GetString("sort")
	topN, _ := cmd.Flags().GetInt("top")
	dump, _ := cmd.Flags().GetBool("dump")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := mineOptionsFromFlags(cmd, cfg)
	if err != nil {
		return err
	}

	files, err := config.ExpandGlobs(args)
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

	if dump {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), e.String())
		return err
	}

	templates := e.Templates()
	if err := sortTemplates(templates, sortBy); err != nil {
		return err
	}

	w := output.New(cmd.OutOrStdout(), output.ParseFormat(cfg.Format))
	w.SetColor(output.ParseColorMode(viper.GetString("color")))
	return w.WriteReport(output.Report{
		Templates: top(templates, topN),
		Lines:     e.LineCount(),
	})
}
