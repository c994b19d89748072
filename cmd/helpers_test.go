package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

// failedLines groups into "Command Failed on: *" {1, 2, 4} and
// "disk full on /dev/sda1" {3}.
var failedLines = []string{
	"Command Failed on: node-127,node-234",
	"Command Failed on: node-128,node-235",
	"disk full on /dev/sda1",
	"Command Failed on: node-129",
}

func writeTempFile(t *testing.T, dir string, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := []byte(joinLines(lines))
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func joinLines(lines []string) string {
	buf := bytes.Buffer{}
	for i, line := range lines {
		buf.WriteString(line)
		if i < len(lines)-1 {
			buf.WriteString("\n")
		}
	}
	return buf.String()
}

// resetViper gives each test a clean configuration with the given format.
func resetViper(t *testing.T, format string) {
	t.Helper()
	viper.Reset()
	viper.Set("format", format)
	viper.Set("color", "never")
	t.Cleanup(viper.Reset)
}
