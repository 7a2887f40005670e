// Package pipeline wires the full run: normalize, segment, extract, merge,
// export. Extraction runs on a worker pool; everything after it is a
// single-threaded reduction, so results are deterministic per input.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rvanags/featmerge/internal/catalog"
	"github.com/rvanags/featmerge/internal/export"
	"github.com/rvanags/featmerge/internal/extract"
	"github.com/rvanags/featmerge/internal/merge"
	"github.com/rvanags/featmerge/internal/model"
	"github.com/rvanags/featmerge/internal/segment"
	"github.com/rvanags/featmerge/internal/textnorm"
	"github.com/rvanags/featmerge/internal/worker"
)

// Pipeline orchestrates one document run against one catalog.
type Pipeline struct {
	cfg    *model.Config
	mapper extract.Mapper
}

// New creates a pipeline. The mapper is the extraction collaborator
// (LLM-backed or static); it must not be nil.
func New(cfg *model.Config, mapper extract.Mapper) (*Pipeline, error) {
	if cfg == nil {
		return nil, model.ConfigErrorf("pipeline requires a configuration")
	}
	if mapper == nil {
		return nil, model.ConfigErrorf("pipeline requires a mapper")
	}
	return &Pipeline{cfg: cfg, mapper: mapper}, nil
}

// RunResult bundles every artifact of a run.
type RunResult struct {
	NormalizedText string
	Chunks         []model.Chunk
	Mentions       []model.ChunkMentions
	Merge          *merge.Result
	Table          *export.Table
	// MapErrors lists chunks whose extraction failed; they contribute no
	// mentions but never abort the run.
	MapErrors []string
}

// Run executes the pipeline over raw document text. allowedChunks (nil for
// all) restricts which chunks are extracted and merged.
func (p *Pipeline) Run(ctx context.Context, text string, cat *catalog.Catalog, allowEntries []string, allowedChunks map[int]bool) (*RunResult, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, model.ConfigErrorf("run requires a non-empty catalog")
	}
	if len(allowEntries) == 0 {
		return nil, model.ConfigErrorf("run requires a non-empty allow-list")
	}

	normalized := textnorm.Document(text)

	chunks, err := segment.Split(normalized, segment.Params{
		MinLen:    p.cfg.Chunking.MinLen,
		TargetLen: p.cfg.Chunking.TargetLen,
		MaxLen:    p.cfg.Chunking.MaxLen,
	})
	if err != nil {
		return nil, err
	}

	resolver := catalog.NewResolver(cat, p.cfg.Aliases)
	allow := catalog.ResolveAllowList(allowEntries, resolver)
	allowNames := displayNames(cat, allow)

	toMap := chunks
	if allowedChunks != nil {
		toMap = nil
		for _, c := range chunks {
			if allowedChunks[c.ID] {
				toMap = append(toMap, c)
			}
		}
	}

	pool := worker.NewPool(p.cfg.Concurrency.MapWorkers)
	results := pool.MapChunks(ctx, toMap, func(ctx context.Context, chunk model.Chunk) (*model.ChunkMentions, error) {
		return p.mapper.MapChunk(ctx, chunk, allowNames)
	})

	res := &RunResult{NormalizedText: normalized, Chunks: chunks}
	for _, r := range results {
		if r.Err != nil {
			// An extraction failure costs recall for that chunk only.
			res.MapErrors = append(res.MapErrors, fmt.Sprintf("chunk %d: %v", r.ChunkID, r.Err))
			continue
		}
		if r.Mentions != nil {
			res.Mentions = append(res.Mentions, *r.Mentions)
		}
	}

	engine, err := merge.NewEngine(cat, resolver, allow, merge.Options{
		FuzzyThreshold: p.cfg.Evidence.FuzzyThreshold,
		DowngradeFuzzy: p.cfg.Evidence.DowngradeFuzzy,
		Sanity:         p.cfg.Sanity,
		AllowedChunks:  allowedChunks,
	})
	if err != nil {
		return nil, err
	}
	res.Merge, err = engine.Merge(chunks, res.Mentions)
	if err != nil {
		return nil, err
	}

	res.Table = export.BuildTable(cat, allow, res.Merge.Decisions)
	return res, nil
}

// displayNames returns the allow-listed items' display names in allow-list
// order, the closed world handed to the mapper.
func displayNames(cat *catalog.Catalog, allow *catalog.AllowList) []string {
	var names []string
	for _, code := range allow.Codes() {
		if e, ok := cat.Lookup(code); ok && !e.Auxiliary {
			names = append(names, e.DisplayName)
		}
	}
	return names
}
