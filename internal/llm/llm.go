// Package llm provides the language model used to describe mined templates.
//
// The package defines a Provider interface so commands do not depend on a
// concrete backend. Ollama is the only backend.
//
// Example usage:
//
//	provider, err := llm.NewProvider(cfg.LLM, logger)
//	if err != nil {
//	    return err
//	}
//	resp, err := provider.Chat(ctx, messages, &llm.ChatOptions{Temperature: 0})
package llm

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bimmerbailey/spell/internal/config"
	"github.com/bimmerbailey/spell/internal/llm/ollama"
)

// Provider defines the interface for LLM interactions.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Chat sends messages and returns a complete response.
	// The context can be used to cancel the request.
	Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error)

	// Heartbeat checks if the provider is reachable and healthy.
	Heartbeat(ctx context.Context) error

	// ModelAvailable checks if a specific model is available for use.
	ModelAvailable(ctx context.Context, model string) (bool, error)
}

// Message represents a single message in a conversation.
type Message struct {
	// Role identifies the message sender: "system", "user", or "assistant"
	Role string

	// Content is the message text
	Content string
}

// ChatOptions configures chat behavior.
// All fields are optional; nil opts uses provider defaults.
type ChatOptions struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// Response represents a complete LLM response.
type Response struct {
	Content      string
	Model        string
	TokensPrompt int
	TokensTotal  int
}

// Common errors returned by LLM providers.
var (
	ErrProviderUnavailable = ollama.ErrProviderUnavailable
	ErrContextCanceled     = ollama.ErrContextCanceled
	ErrModelNotFound       = errors.New("requested model is not available")
)

// NewProvider creates the Ollama-backed provider described by cfg.
func NewProvider(cfg config.LLMConfig, logger *zap.Logger) (Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	p, err := ollama.New(ollama.Config{
		Host:      cfg.Ollama.Host,
		Model:     cfg.Ollama.Model,
		KeepAlive: cfg.Ollama.KeepAlive,
		NumCtx:    cfg.Ollama.NumCtx,
	}, logger.Named("ollama"))
	if err != nil {
		return nil, err
	}
	return &ollamaProviderAdapter{provider: p}, nil
}

// ollamaProviderAdapter adapts the ollama.Provider to the llm.Provider interface.
type ollamaProviderAdapter struct {
	provider *ollama.Provider
}

func (a *ollamaProviderAdapter) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	ollamaMessages := make([]ollama.Message, len(messages))
	for i, msg := range messages {
		ollamaMessages[i] = ollama.Message{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	var ollamaOpts *ollama.ChatOptions
	if opts != nil {
		ollamaOpts = &ollama.ChatOptions{
			Model:       opts.Model,
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
		}
	}

	resp, err := a.provider.Chat(ctx, ollamaMessages, ollamaOpts)
	if err != nil {
		return nil, err
	}

	return &Response{
		Content:      resp.Content,
		Model:        resp.Model,
		TokensPrompt: resp.TokensPrompt,
		TokensTotal:  resp.TokensTotal,
	}, nil
}

func (a *ollamaProviderAdapter) Heartbeat(ctx context.Context) error {
	return a.provider.Heartbeat(ctx)
}

func (a *ollamaProviderAdapter) ModelAvailable(ctx context.Context, model string) (bool, error) {
	return a.provider.ModelAvailable(ctx, model)
}

// EnsureReady checks that the provider answers and that model has been pulled.
func EnsureReady(ctx context.Context, p Provider, model string) error {
	if err := p.Heartbeat(ctx); err != nil {
		return err
	}
	ok, err := p.ModelAvailable(ctx, model)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrModelNotFound, model)
	}
	return nil
}
