// Package tail follows a growing log file.
//
// It implements "tail -f" like functionality: complete lines appended to
// the file are parsed and handed to a callback in order. Truncation and
// log rotation are detected.
package tail

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/bimmerbailey/spell/internal/parser"
)

// ErrRotated is returned by Run when the file is rotated and FollowRotate is off.
var ErrRotated = errors.New("file rotated")

// RotationTimeout bounds the wait for a rotated file to reappear.
var RotationTimeout = 10 * time.Second

// Options configures the tailer behavior.
type Options struct {
	FilePath     string          // Path to the log file
	FromStart    bool            // Feed the existing content before following
	FollowRotate bool            // Whether to follow through log rotations
	OnLine       parser.LineFunc // Called for each complete, non-blank line
	Logger       *zap.Logger     // Optional; defaults to a no-op logger
	Ready        func()          // Optional; called once the watcher is installed
}

// Tailer follows a single file. It is not safe for concurrent use.
type Tailer struct {
	opts    Options
	logger  *zap.Logger
	file    *os.File
	offset  int64
	lineNum int
	watcher *fsnotify.Watcher
}

// New creates a new Tailer with the given options.
func New(opts Options) *Tailer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tailer{
		opts:   opts,
		logger: logger.With(zap.String("file", opts.FilePath)),
	}
}

// Lines returns the number of lines read so far, blank lines included.
func (t *Tailer) Lines() int {
	return t.lineNum
}

// Run follows the file until ctx is cancelled, the callback fails, or the
// file goes away. Cancellation and parser.ErrStop from the callback are not
// errors.
func (t *Tailer) Run(ctx context.Context) error {
	if t.opts.OnLine == nil {
		return fmt.Errorf("tail %s: no line callback", t.opts.FilePath)
	}

	if err := t.openFile(); err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer t.close()

	if t.opts.FromStart {
		if err := t.readNewContent(); err != nil {
			if errors.Is(err, parser.ErrStop) {
				return nil
			}
			return fmt.Errorf("failed to read existing content: %w", err)
		}
	}

	if err := t.setupWatcher(); err != nil {
		return fmt.Errorf("failed to setup watcher: %w", err)
	}

	if t.opts.Ready != nil {
		t.opts.Ready()
	}

	err := t.watch(ctx)
	if errors.Is(err, parser.ErrStop) {
		return nil
	}
	return err
}

// openFile opens the log file and positions the offset at its end unless
// the existing content is wanted.
func (t *Tailer) openFile() error {
	f, err := os.Open(t.opts.FilePath)
	if err != nil {
		return err
	}
	t.file = f

	if !t.opts.FromStart {
		stat, err := f.Stat()
		if err != nil {
			return err
		}
		t.offset = stat.Size()
	}

	return nil
}

// setupWatcher initializes the fsnotify watcher.
func (t *Tailer) setupWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	t.watcher = watcher

	return watcher.Add(t.opts.FilePath)
}

// watch dispatches file system events until ctx is done.
func (t *Tailer) watch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-t.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed unexpectedly")
			}

			if err := t.handleEvent(ctx, event); err != nil {
				return err
			}

		case err, ok := <-t.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// handleEvent processes a file system event.
func (t *Tailer) handleEvent(ctx context.Context, event fsnotify.Event) error {
	switch {
	case event.Has(fsnotify.Write):
		return t.readNewContent()

	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		return t.handleRotation(ctx)
	}

	return nil
}

// readNewContent feeds every complete line past the current offset. A
// trailing line without its newline stays unread until the writer ends it.
func (t *Tailer) readNewContent() error {
	stat, err := t.file.Stat()
	if err != nil {
		return err
	}
	if stat.Size() < t.offset {
		t.logger.Info("file truncated, reading from start",
			zap.Int64("offset", t.offset),
			zap.Int64("size", stat.Size()))
		t.offset = 0
	}

	if _, err := t.file.Seek(t.offset, io.SeekStart); err != nil {
		return err
	}

	reader := bufio.NewReaderSize(t.file, 64*1024)
	for {
		chunk, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		t.offset += int64(len(chunk))
		t.lineNum++

		raw := strings.TrimRight(chunk, "\r\n")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if err := t.opts.OnLine(parser.ParseLine(raw, t.lineNum)); err != nil {
			return err
		}
	}
}

// handleRotation reopens the file after a rename or remove, or stops.
func (t *Tailer) handleRotation(ctx context.Context) error {
	if !t.opts.FollowRotate {
		t.logger.Warn("file rotated, stopping; use --follow-rotate to follow through rotations")
		return ErrRotated
	}

	if t.file != nil {
		t.file.Close()
		t.file = nil
	}

	timeout := time.After(RotationTimeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timeout:
			return fmt.Errorf("timeout waiting for rotated file to reappear")
		case <-ticker.C:
			f, err := os.Open(t.opts.FilePath)
			if err != nil {
				continue
			}
			t.file = f
			t.offset = 0

			if err := t.watcher.Add(t.opts.FilePath); err != nil {
				return fmt.Errorf("failed to watch rotated file: %w", err)
			}

			t.logger.Info("file rotated, following new file")
			return t.readNewContent()
		}
	}
}

// close closes all resources.
func (t *Tailer) close() {
	if t.file != nil {
		t.file.Close()
	}
	if t.watcher != nil {
		t.watcher.Close()
	}
}
