package extract

import (
	"context"
	"fmt"
	"os"

	"github.com/rvanags/featmerge/internal/cache"
	"github.com/rvanags/featmerge/internal/llm"
	"github.com/rvanags/featmerge/internal/model"
	"github.com/rvanags/featmerge/internal/worker"
)

// LLMMapper maps chunks with a chat-completion backend using the strict
// closed-world prompts. Raw responses are cached by content digest so an
// unchanged chunk never costs a second call; malformed JSON gets bounced
// through a format-repair call before the chunk is given up on.
type LLMMapper struct {
	provider llm.Provider
	cfg      model.LLMConfig
	evMax    int
	cache    cache.Cache
	limiter  *worker.Limiter
	verbose  bool
}

// LLMMapperOptions carries the optional collaborators.
type LLMMapperOptions struct {
	Cache   cache.Cache     // nil disables caching
	Limiter *worker.Limiter // nil disables throttling
	Verbose bool
}

// NewLLMMapper wires a mapper over the given provider.
func NewLLMMapper(provider llm.Provider, cfg model.LLMConfig, evidenceMaxChars int, opts LLMMapperOptions) *LLMMapper {
	if evidenceMaxChars <= 0 {
		evidenceMaxChars = 400
	}
	return &LLMMapper{
		provider: provider,
		cfg:      cfg,
		evMax:    evidenceMaxChars,
		cache:    opts.Cache,
		limiter:  opts.Limiter,
		verbose:  opts.Verbose,
	}
}

// MapChunk implements Mapper.
func (m *LLMMapper) MapChunk(ctx context.Context, chunk model.Chunk, allowNames []string) (*model.ChunkMentions, error) {
	key := cache.Key(m.cfg.Model, cache.DigestStrings(allowNames), chunk.Text)
	if m.cache != nil {
		if raw, ok := m.cache.Get(key); ok {
			if cm, err := ParseResponse(string(raw), chunk.ID); err == nil {
				if m.verbose {
					fmt.Fprintf(os.Stderr, "chunk %d: cache hit\n", chunk.ID)
				}
				return cm, nil
			}
			// Unparsable cached payload: drop it and re-ask.
			_ = m.cache.Delete(key)
		}
	}

	raw, err := m.complete(ctx, chunk, allowNames)
	if err != nil {
		return nil, err
	}

	cm, err := ParseResponse(raw, chunk.ID)
	for retry := 0; err != nil && retry < m.cfg.RepairRetries; retry++ {
		if m.verbose {
			fmt.Fprintf(os.Stderr, "chunk %d: malformed response, repair attempt %d\n", chunk.ID, retry+1)
		}
		raw, err = m.repair(ctx, raw)
		if err != nil {
			return nil, err
		}
		cm, err = ParseResponse(raw, chunk.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("chunk %d: %w", chunk.ID, err)
	}

	if m.cache != nil {
		_ = m.cache.Set(key, []byte(raw), 0)
	}
	return cm, nil
}

func (m *LLMMapper) complete(ctx context.Context, chunk model.Chunk, allowNames []string) (string, error) {
	user, err := buildUserPrompt(allowNames, chunk.Text, m.evMax)
	if err != nil {
		return "", fmt.Errorf("chunk %d: build prompt: %w", chunk.ID, err)
	}
	if m.limiter != nil {
		if err := m.limiter.Wait(ctx, m.provider.Name()); err != nil {
			return "", err
		}
	}
	resp, err := m.provider.Complete(ctx, llm.Request{
		System:      buildSystemPrompt(m.evMax),
		User:        user,
		Model:       m.cfg.Model,
		MaxTokens:   m.cfg.MaxTokens,
		Temperature: m.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chunk %d: %w", chunk.ID, err)
	}
	return resp.Text, nil
}

func (m *LLMMapper) repair(ctx context.Context, broken string) (string, error) {
	if m.limiter != nil {
		if err := m.limiter.Wait(ctx, m.provider.Name()); err != nil {
			return "", err
		}
	}
	resp, err := m.provider.Complete(ctx, llm.Request{
		System:      repairSystemPrompt,
		User:        broken,
		Model:       m.cfg.Model,
		MaxTokens:   m.cfg.MaxTokens,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("repair call: %w", err)
	}
	return resp.Text, nil
}
