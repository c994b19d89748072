package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/spell/internal/analyzer"
	"github.com/bimmerbailey/spell/internal/config"
	"github.com/bimmerbailey/spell/internal/output"
)

var statsCmd = &cobra.Command{
	Use:   "stats [flags] <file|glob>...",
	Short: "Show template statistics for log files",
	Long: `Mine the given log files and display a statistical summary of the
templates: line and template counts, singleton templates, the share of
wildcard slots, the largest templates, and the spread over token counts.

Examples:
  spell stats /var/log/app.log
  spell stats --format json --top 20 'logs/*.log'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStats,
}

func init() {
	statsCmd.Flags().Int("top", 10, "number of largest templates to show")
	addMineFlags(statsCmd)

	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	topN, _ := cmd.Flags().GetInt("top")

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

	templates := e.Templates()
	a := analyzer.New()
	byLength, err := a.GroupBy(templates, "length", 0)
	if err != nil {
		return err
	}

	w := output.New(cmd.OutOrStdout(), output.ParseFormat(cfg.Format))
	w.SetColor(output.ParseColorMode(viper.GetString("color")))
	return w.WriteStats(output.StatsReport{
		Stats:    a.ComputeStats(templates, e.LineCount(), topN),
		ByLength: byLength,
	})
}
