package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

// TestNew verifies provider creation with various configurations.
func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "valid config with host",
			config: Config{Host: "http://localhost:11434", Model: "llama3.2"},
		},
		{
			name:   "empty model uses default",
			config: Config{Host: "http://localhost:11434"},
		},
		{
			name:    "invalid host URL",
			config:  Config{Host: "://invalid-url"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := New(tt.config, zap.NewNop())
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if provider.Model() == "" {
				t.Error("Model should have default value")
			}
		})
	}
}

// TestNewNilLogger verifies that nil logger is rejected.
func TestNewNilLogger(t *testing.T) {
	if _, err := New(Config{Host: "http://localhost:11434"}, nil); err == nil {
		t.Error("New() should reject nil logger")
	}
}

// TestChat verifies the Chat method with a mock Ollama server.
func TestChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		response := map[string]any{
			"model":             req["model"],
			"message":           map[string]string{"role": "assistant", "content": "Test response"},
			"done":              true,
			"prompt_eval_count": 10,
			"eval_count":        20,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	provider, err := New(Config{Host: server.URL, Model: "test-model"}, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Chat(context.Background(), []Message{{Role: "user", Content: "Hello"}}, nil)
	if err != nil {
		t.Fatalf("Chat() failed: %v", err)
	}

	if resp.Content != "Test response" {
		t.Errorf("Chat() content = %q, want %q", resp.Content, "Test response")
	}
	if resp.Model != "test-model" {
		t.Errorf("Chat() model = %q, want %q", resp.Model, "test-model")
	}
	if resp.TokensPrompt != 10 {
		t.Errorf("Chat() TokensPrompt = %d, want 10", resp.TokensPrompt)
	}
	if resp.TokensTotal != 30 {
		t.Errorf("Chat() TokensTotal = %d, want 30", resp.TokensTotal)
	}
}

// TestChatEmptyMessages verifies that Chat rejects empty message list.
func TestChatEmptyMessages(t *testing.T) {
	provider, err := New(Config{Host: "http://localhost:11434"}, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.Chat(context.Background(), []Message{}, nil); err == nil {
		t.Error("Chat() should reject empty messages")
	}
}

// TestChatWithOptions verifies that ChatOptions and provider settings reach the request.
func TestChatWithOptions(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			return
		}
		json.NewDecoder(r.Body).Decode(&got)

		response := map[string]any{
			"model":   got["model"],
			"message": map[string]string{"content": "response"},
			"done":    true,
		}
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	provider, err := New(Config{Host: server.URL, Model: "default-model", NumCtx: 2048, KeepAlive: "5m"}, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	opts := &ChatOptions{Model: "custom-model", Temperature: 0.7, MaxTokens: 100}
	resp, err := provider.Chat(context.Background(), []Message{{Role: "user", Content: "test"}}, opts)
	if err != nil {
		t.Fatalf("Chat() failed: %v", err)
	}

	if resp.Model != "custom-model" {
		t.Errorf("Model override not applied, got %q", resp.Model)
	}

	options, ok := got["options"].(map[string]any)
	if !ok {
		t.Fatalf("request has no options: %v", got)
	}
	if temp, _ := options["temperature"].(float64); temp != 0.7 {
		t.Errorf("temperature = %v, want 0.7", options["temperature"])
	}
	if n, _ := options["num_predict"].(float64); n != 100 {
		t.Errorf("num_predict = %v, want 100", options["num_predict"])
	}
	if n, _ := options["num_ctx"].(float64); n != 2048 {
		t.Errorf("num_ctx = %v, want 2048", options["num_ctx"])
	}
	if _, ok := got["keep_alive"]; !ok {
		t.Error("keep_alive missing from request")
	}
}

// TestChatServerDown verifies that transport failures map to ErrProviderUnavailable.
func TestChatServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	provider, err := New(Config{Host: url}, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("Chat() error = %v, want ErrProviderUnavailable", err)
	}
}

// TestHeartbeat verifies the Heartbeat method.
func TestHeartbeat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Ollama is running"))
		}
	}))
	defer server.Close()

	provider, err := New(Config{Host: server.URL}, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if err := provider.Heartbeat(context.Background()); err != nil {
		t.Errorf("Heartbeat() should succeed, got error: %v", err)
	}
}

// TestModelAvailable verifies the ModelAvailable method.
func TestModelAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			response := map[string]any{
				"models": []map[string]any{
					{"name": "llama3.2:latest", "model": "llama3.2"},
					{"name": "mistral:latest", "model": "mistral"},
				},
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(response)
		}
	}))
	defer server.Close()

	provider, err := New(Config{Host: server.URL}, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	tests := []struct {
		model     string
		available bool
	}{
		{"llama3.2", true},
		{"llama3.2:latest", true},
		{"mistral", true},
		{"nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			available, err := provider.ModelAvailable(context.Background(), tt.model)
			if err != nil {
				t.Fatalf("ModelAvailable() error: %v", err)
			}
			if available != tt.available {
				t.Errorf("ModelAvailable(%q) = %v, want %v", tt.model, available, tt.available)
			}
		})
	}
}
