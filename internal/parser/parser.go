// Package parser streams log files line by line.
//
// Each line keeps its raw text and, for JSON log lines, the message field,
// so callers can mine either one. A severity level is extracted when the
// line carries one.
package parser

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/bimmerbailey/spell/internal/config"
	"github.com/bimmerbailey/spell/internal/diag"
)

// MaxLineBytes is the longest line the parser accepts. Longer lines are
// skipped with a warning.
const MaxLineBytes = 1024 * 1024

var (
	// ErrStop can be returned by a LineFunc to end parsing early without error.
	ErrStop = errors.New("stop parsing")

	// ErrLineTooLong is logged for lines longer than MaxLineBytes.
	ErrLineTooLong = fmt.Errorf("line longer than %d bytes", MaxLineBytes)
)

// Line is a single non-blank log line.
type Line struct {
	Number  int             // 1-based position in the input, blank lines included
	Raw     string          // the line as read
	Message string          // JSON message field, or Raw for plain lines
	Level   config.LogLevel // LevelUnknown when none was found
	JSON    bool
}

// Text returns Message when messageOnly is set and Raw otherwise.
func (l Line) Text(messageOnly bool) string {
	if messageOnly {
		return l.Message
	}
	return l.Raw
}

// LineFunc receives each parsed line.
type LineFunc func(Line) error

// ParseFile opens path and streams its lines to fn.
func ParseFile(path string, fn LineFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := Parse(f, fn); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Parse streams the lines of r to fn, skipping blank lines and lines longer
// than MaxLineBytes. It stops at the first error returned by fn; ErrStop ends
// parsing with a nil error.
func Parse(r io.Reader, fn LineFunc) error {
	reader := bufio.NewReaderSize(r, 64*1024)
	logger := diag.L().Named("parser")

	lineNum := 0
	for {
		raw, tooLong, err := readLine(reader)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		lineNum++

		if tooLong {
			logger.Warn("skipping line", zap.Int("line", lineNum), zap.Error(ErrLineTooLong))
			continue
		}
		if strings.TrimSpace(raw) == "" {
			continue
		}

		if err := fn(ParseLine(raw, lineNum)); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
}

// readLine reads one line without its line ending. A line longer than
// MaxLineBytes is consumed in full but not kept and reported as too long. io.EOF
// is returned only when no bytes were left.
func readLine(r *bufio.Reader) (string, bool, error) {
	var buf []byte
	read, tooLong := 0, false
	for {
		chunk, err := r.ReadSlice('\n')
		read += len(chunk)
		if !tooLong {
			buf = append(buf, chunk...)
			if len(bytes.TrimRight(buf, "\r\n")) > MaxLineBytes {
				tooLong, buf = true, nil
			}
		}

		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && read > 0:
		case err != nil:
			return "", false, err
		}
		return string(bytes.TrimRight(buf, "\r\n")), tooLong, nil
	}
}

// ParseLine parses a single raw line.
func ParseLine(raw string, number int) Line {
	line := Line{
		Number:  number,
		Raw:     raw,
		Message: raw,
		Level:   config.LevelUnknown,
	}

	if tryParseJSON(raw, &line) {
		return line
	}

	line.Level = extractLevel(raw)
	return line
}

// tryParseJSON fills the message and level of a JSON log line.
func tryParseJSON(raw string, line *Line) bool {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(trimmed), &data); err != nil {
		return false
	}
	line.JSON = true

	for _, key := range []string{"msg", "message", "text"} {
		if v, ok := data[key].(string); ok {
			line.Message = v
			break
		}
	}

	for _, key := range []string{"level", "severity", "lvl"} {
		if v, ok := data[key].(string); ok {
			line.Level = config.ParseLevel(v)
			break
		}
	}

	return true
}

// levelPattern matches common log level strings.
var levelPattern = regexp.MustCompile(`(?i)\b(DEBUG|INFO|WARN(?:ING)?|ERROR|FATAL|CRITICAL)\b`)

func extractLevel(raw string) config.LogLevel {
	match := levelPattern.FindString(raw)
	if match == "" {
		return config.LevelUnknown
	}
	return config.ParseLevel(match)
}
