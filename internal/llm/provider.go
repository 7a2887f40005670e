// Package llm abstracts the chat-completion backends the extraction mapper
// can run against. Providers are dumb transports: prompt in, text out. All
// extraction semantics live in the mapper.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rvanags/featmerge/internal/model"
)

// Request is one chat completion call.
type Request struct {
	System      string
	User        string
	Model       string
	MaxTokens   int
	Temperature float32
}

// Response is the raw completion.
type Response struct {
	Text       string
	Model      string
	TokensUsed int
}

// Provider is a chat-completion backend.
type Provider interface {
	// Name returns the provider name ("openai", "ollama").
	Name() string

	// Complete performs one completion call.
	Complete(ctx context.Context, req Request) (*Response, error)

	// IsAvailable checks the backend is configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// New builds the provider named in the configuration.
func New(cfg model.LLMConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIProvider(cfg)
	case "ollama":
		return NewOllamaProvider(cfg)
	case "":
		return nil, fmt.Errorf("no LLM provider configured")
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (want openai or ollama)", cfg.Provider)
	}
}
