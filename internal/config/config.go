// Package config provides configuration types and helpers for spell.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/text/unicode/norm"

	"github.com/bimmerbailey/spell/internal/preprocess"
	"github.com/bimmerbailey/spell/internal/spell"
)

// Config holds the application-wide configuration.
type Config struct {
	Format   string `mapstructure:"format"`
	Verbose  bool   `mapstructure:"verbose"`
	LogLevel string `mapstructure:"log_level"`

	// Delimiters is a preset name ("default", "punctuation") or a literal
	// set of delimiter runes, e.g. `\s,` for space and comma.
	Delimiters string `mapstructure:"delimiters"`

	// Normalize applies Unicode NFC to every line before tokenization.
	Normalize bool `mapstructure:"normalize"`

	// MessageOnly mines the message field of JSON log lines instead of the raw line.
	MessageOnly bool `mapstructure:"message_only"`

	// Mask names the value patterns replaced by a placeholder before mining.
	// "default" selects the built-in default set; empty disables masking.
	Mask []string `mapstructure:"mask"`

	// Redact hides sensitive values in example lines sent to the model.
	Redact bool `mapstructure:"redact"`

	LLM LLMConfig `mapstructure:"llm"`
}

// LLMConfig holds configuration for template descriptions.
type LLMConfig struct {
	Temperature float32      `mapstructure:"temperature"`
	MaxTokens   int          `mapstructure:"max_tokens"`
	Ollama      OllamaConfig `mapstructure:"ollama"`
}

// OllamaConfig holds Ollama-specific settings.
type OllamaConfig struct {
	Host      string `mapstructure:"host"`       // API endpoint
	Model     string `mapstructure:"model"`      // Default model name
	KeepAlive string `mapstructure:"keep_alive"` // e.g., "5m"
	NumCtx    int    `mapstructure:"num_ctx"`    // Context window size
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("format", "text")
	v.SetDefault("verbose", false)
	v.SetDefault("log_level", "")
	v.SetDefault("delimiters", "default")
	v.SetDefault("normalize", false)
	v.SetDefault("message_only", false)
	v.SetDefault("mask", []string{})
	v.SetDefault("redact", true)
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 256)
	v.SetDefault("llm.ollama.host", "http://localhost:11434")
	v.SetDefault("llm.ollama.model", "llama3.2")
	v.SetDefault("llm.ollama.keep_alive", "5m")
	v.SetDefault("llm.ollama.num_ctx", 4096)
}

// Load unmarshals v into a Config.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// ResolveDelimiters turns a preset name or a literal rune set into Delimiters.
func ResolveDelimiters(s string) (spell.Delimiters, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default", "whitespace":
		return spell.DefaultDelimiters, nil
	case "punctuation", "punct":
		return spell.PunctuationDelimiters, nil
	}

	d, err := spell.ParseDelimiters(s)
	if err != nil {
		return spell.Delimiters{}, fmt.Errorf("delimiters %q: %w", s, err)
	}
	return d, nil
}

// EngineOptions builds the engine options described by the configuration.
func (c Config) EngineOptions() ([]spell.Option, error) {
	d, err := ResolveDelimiters(c.Delimiters)
	if err != nil {
		return nil, err
	}

	opts := []spell.Option{spell.WithDelimiters(d)}
	if c.Normalize {
		opts = append(opts, spell.WithNormalization(norm.NFC))
	}
	return opts, nil
}

// Masker builds the value masker, or returns nil when masking is off.
func (c Config) Masker() (*preprocess.Masker, error) {
	var names []string
	for _, name := range c.Mask {
		name = strings.ToLower(strings.TrimSpace(name))
		switch name {
		case "", "none":
		case "default":
			names = append(names, preprocess.DefaultMaskPatterns()...)
		default:
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, nil
	}

	m, err := preprocess.NewMasker(names)
	if err != nil {
		return nil, fmt.Errorf("mask: %w", err)
	}
	return m, nil
}

// LogLevel represents a standard log severity level.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
	LevelUnknown
)

// String returns the string representation of a LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string to a LogLevel.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug", "dbg":
		return LevelDebug
	case "info", "inf":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error", "err":
		return LevelError
	case "fatal", "critical", "crit":
		return LevelFatal
	default:
		return LevelUnknown
	}
}

// AtLeast reports whether l is a known level at or above min.
func (l LogLevel) AtLeast(min LogLevel) bool {
	return l != LevelUnknown && l >= min
}
