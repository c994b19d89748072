package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bimmerbailey/spell/internal/config"
	"github.com/bimmerbailey/spell/internal/diag"
	"github.com/bimmerbailey/spell/internal/output"
	"github.com/bimmerbailey/spell/internal/parser"
	"github.com/bimmerbailey/spell/internal/spell"
	"github.com/bimmerbailey/spell/internal/tail"
)

var tailCmd = &cobra.Command{
	Use:   "tail [flags] <file>",
	Short: "Mine templates from a growing log file",
	Long: `Watch a log file in real-time, similar to 'tail -f', inserting each new
line into the engine as it is written.

In text format every line is echoed with the id of the template it joined:

  T3 Command Failed on: node-9

When the file is rotated, the line limit is reached, or the command is
interrupted, the templates mined so far are printed.

Examples:
  spell tail /var/log/app.log
  spell tail --from-start --max-lines 5000 app.log
  spell tail --follow-rotate --mask default /var/log/app.log`,
	Args: cobra.ExactArgs(1),
	RunE: runTail,
}

func init() {
	tailCmd.Flags().Bool("from-start", false, "mine the existing content before following")
	tailCmd.Flags().Bool("follow-rotate", false, "follow through log rotations (continue when file is renamed/removed)")
	addMineFlags(tailCmd)

	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	fromStart, _ := cmd.Flags().GetBool("from-start")
	followRotate, _ := cmd.Flags().GetBool("follow-rotate")

	// Validate file exists
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file does not exist: %s", filePath)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := mineOptionsFromFlags(cmd, cfg)
	if err != nil {
		return err
	}

	e, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	w := output.New(cmd.OutOrStdout(), output.ParseFormat(cfg.Format))
	w.SetColor(output.ParseColorMode(viper.GetString("color")))
	echo := output.ParseFormat(cfg.Format) == output.FormatText

	logger := diag.L()
	tailer := tail.New(tail.Options{
		FilePath:     filePath,
		FromStart:    fromStart,
		FollowRotate: followRotate,
		OnLine:       followLine(e, w, opts, echo, logger),
		Logger:       logger.Named("tail"),
	})

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// Handle signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- tailer.Run(ctx)
	}()

	var runErr error
	select {
	case <-sigChan:
		cancel()
		runErr = <-errChan
	case runErr = <-errChan:
	}
	if err := tailResult(runErr); err != nil {
		return err
	}

	logger.Debug("tail finished",
		zap.Int("lines_read", tailer.Lines()),
		zap.Int("lines_mined", e.LineCount()))

	if echo && e.LineCount() > 0 {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return w.WriteReport(output.Report{
		Templates: e.Templates(),
		Lines:     e.LineCount(),
	})
}

// tailResult filters the error returned by the tailer. Cancellation and
// rotation end a tail normally; anything else is a failure even when it
// races with a shutdown signal.
func tailResult(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, tail.ErrRotated) {
		return nil
	}
	return err
}

// followLine returns the tail callback that inserts each line into e.
func followLine(e *spell.Engine, w *output.Writer, opts mineOptions, echo bool, logger *zap.Logger) parser.LineFunc {
	return func(l parser.Line) error {
		if opts.MinLevel != config.LevelUnknown && !l.Level.AtLeast(opts.MinLevel) {
			return nil
		}

		text := l.Text(opts.MessageOnly)
		id, err := insertLine(e, opts.Masker, text)
		if errors.Is(err, spell.ErrInvalidText) {
			logger.Warn("skipping line", zap.Int("line", l.Number), zap.Error(err))
			return nil
		}
		if err != nil {
			return err
		}

		if echo {
			if err := w.Assignment(id, text); err != nil {
				return err
			}
		}
		if opts.MaxLines > 0 && e.LineCount() >= opts.MaxLines {
			return parser.ErrStop
		}
		return nil
	}
}
