// Package ollama talks to a local Ollama server.
//
// To avoid import cycles, this package defines its own message types; the
// parent llm package adapts them to its Provider interface.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "llama3.2"

// Provider implements chat and health checks against Ollama.
type Provider struct {
	client *api.Client
	config Config
	logger *zap.Logger
}

// Config holds Ollama-specific configuration.
type Config struct {
	// Host is the Ollama API endpoint (e.g., "http://localhost:11434").
	// Empty means OLLAMA_HOST or the library default.
	Host string

	// Model is the default model to use (e.g., "llama3.2")
	Model string

	// KeepAlive controls how long the model stays loaded, e.g. "5m".
	KeepAlive string

	// NumCtx is the context window size; 0 keeps the model default.
	NumCtx int
}

// Message represents a single message in a conversation.
type Message struct {
	Role    string
	Content string
}

// ChatOptions configures chat behavior.
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

// Common errors
var (
	ErrProviderUnavailable = errors.New("llm provider is not reachable")
	ErrContextCanceled     = errors.New("operation was canceled")
)

// New creates a new Ollama provider.
// If cfg.Host is empty, it uses the OLLAMA_HOST environment variable or defaults to http://localhost:11434.
func New(cfg Config, logger *zap.Logger) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	client, err := api.ClientFromEnvironment()
	if err != nil {
		logger.Error("failed to create ollama client from environment", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	if cfg.Host != "" {
		parsedURL, err := url.Parse(cfg.Host)
		if err != nil {
			logger.Error("invalid ollama host URL", zap.String("host", cfg.Host), zap.Error(err))
			return nil, fmt.Errorf("invalid ollama host: %w", err)
		}

		client = api.NewClient(parsedURL, http.DefaultClient)
		logger.Debug("created ollama client with explicit host", zap.String("host", cfg.Host))
	} else {
		logger.Debug("created ollama client from environment")
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
		logger.Debug("using default model", zap.String("model", cfg.Model))
	}

	return &Provider{
		client: client,
		config: cfg,
		logger: logger,
	}, nil
}

// Model returns the default model of the provider.
func (p *Provider) Model() string {
	return p.config.Model
}

// Chat sends messages to Ollama and returns a complete response.
func (p *Provider) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	if len(messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}

	model := p.config.Model
	temperature := float32(0)
	maxTokens := 0
	if opts != nil {
		if opts.Model != "" {
			model = opts.Model
		}
		temperature = opts.Temperature
		maxTokens = opts.MaxTokens
	}

	p.logger.Debug("sending chat request",
		zap.String("model", model),
		zap.Int("messages", len(messages)),
		zap.Float32("temperature", temperature))

	ollamaMessages := make([]api.Message, len(messages))
	for i, msg := range messages {
		ollamaMessages[i] = api.Message{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	req := &api.ChatRequest{
		Model:    model,
		Messages: ollamaMessages,
		Options: map[string]any{
			"temperature": temperature,
		},
		Stream: new(bool), // false - we want complete response
	}
	if maxTokens > 0 {
		req.Options["num_predict"] = maxTokens
	}
	if p.config.NumCtx > 0 {
		req.Options["num_ctx"] = p.config.NumCtx
	}
	if p.config.KeepAlive != "" {
		if d, err := time.ParseDuration(p.config.KeepAlive); err == nil {
			req.KeepAlive = &api.Duration{Duration: d}
		} else {
			p.logger.Warn("ignoring invalid keep_alive", zap.String("keep_alive", p.config.KeepAlive))
		}
	}

	var response api.ChatResponse
	err := p.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		response = resp
		return nil
	})

	if err != nil {
		p.logger.Error("chat request failed", zap.Error(err), zap.String("model", model))
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %v", ErrContextCanceled, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	p.logger.Debug("chat request completed",
		zap.String("model", response.Model),
		zap.Int("prompt_tokens", response.PromptEvalCount),
		zap.Int("total_tokens", response.EvalCount))

	return &Response{
		Content:      response.Message.Content,
		Model:        response.Model,
		TokensPrompt: response.PromptEvalCount,
		TokensTotal:  response.PromptEvalCount + response.EvalCount,
	}, nil
}

// Heartbeat checks if the Ollama service is reachable and healthy.
func (p *Provider) Heartbeat(ctx context.Context) error {
	p.logger.Debug("checking ollama heartbeat")

	if err := p.client.Heartbeat(ctx); err != nil {
		p.logger.Error("ollama heartbeat failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	return nil
}

// ModelAvailable checks if a specific model is available (i.e., has been pulled).
func (p *Provider) ModelAvailable(ctx context.Context, model string) (bool, error) {
	listResp, err := p.client.List(ctx)
	if err != nil {
		p.logger.Error("failed to list models", zap.Error(err))
		return false, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	for _, modelInfo := range listResp.Models {
		if modelInfo.Name == model || modelInfo.Model == model {
			return true, nil
		}
	}

	p.logger.Debug("model not found", zap.String("model", model), zap.Int("available_count", len(listResp.Models)))
	return false, nil
}
