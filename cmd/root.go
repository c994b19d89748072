package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bimmerbailey/spell/internal/config"
	"github.com/bimmerbailey/spell/internal/diag"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "spell",
	Short: "Mine message templates from log files",
	Long: `Spell groups log lines that share a token skeleton into templates.
Tokens that vary between the lines of a template become wildcards (*).

Lines are compared with a longest common subsequence of their tokens; a
line joins the template it shares the most tokens with when at least half
of the template's slots match.

Examples:
  spell mine /var/log/app.log
  spell mine --format json 'logs/*.log'
  spell match --file app.log "Command Failed on: node-9"
  spell tail --from-start /var/log/app.log
  spell describe --file app.log --top 5`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := viper.GetString("log_level")
		if viper.GetBool("verbose") {
			level = "debug"
		}
		diag.Init(level).Debug("logger initialized", zap.String("command", cmd.Name()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = diag.L().Sync()
	},
}

// Execute is called by main.main(). It runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.spell.yaml)")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "output format (text, json, table, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error); defaults to $SPELL_LOG, then info")
	rootCmd.PersistentFlags().StringP("delimiters", "d", "default", `token delimiters: "default" (Unicode whitespace), "punctuation", or a rune set such as '\u,/'`)
	rootCmd.PersistentFlags().Bool("normalize", false, "apply Unicode NFC normalization before tokenizing")
	rootCmd.PersistentFlags().String("color", "auto", "highlight wildcards (auto, always, never)")

	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("delimiters", rootCmd.PersistentFlags().Lookup("delimiters"))
	_ = viper.BindPFlag("normalize", rootCmd.PersistentFlags().Lookup("normalize"))
	_ = viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".spell")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SPELL")
	viper.AutomaticEnv()
	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
