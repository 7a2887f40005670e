// Package worker runs per-chunk extraction concurrently. Chunks are
// independent for extraction purposes; the merge stage stays a
// single-threaded reduction over the ordered results.
package worker

import (
	"context"
	"sync"

	"github.com/rvanags/featmerge/internal/model"
)

// MapFunc maps one chunk to its candidate mentions.
type MapFunc func(ctx context.Context, chunk model.Chunk) (*model.ChunkMentions, error)

// ChunkResult is the outcome of mapping one chunk.
type ChunkResult struct {
	ChunkID  int
	Mentions *model.ChunkMentions
	Err      error
}

// Pool fans chunk mapping out over a fixed number of workers.
type Pool struct {
	workers int
}

// NewPool creates a pool; worker counts below 1 are clamped to 1.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// MapChunks maps every chunk with fn and returns results in chunk order,
// regardless of completion order. A canceled context surfaces as the Err of
// the chunks that never ran.
func (p *Pool) MapChunks(ctx context.Context, chunks []model.Chunk, fn MapFunc) []ChunkResult {
	results := make([]ChunkResult, len(chunks))
	if len(chunks) == 0 {
		return results
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				chunk := chunks[i]
				if err := ctx.Err(); err != nil {
					results[i] = ChunkResult{ChunkID: chunk.ID, Err: err}
					continue
				}
				mentions, err := fn(ctx, chunk)
				results[i] = ChunkResult{ChunkID: chunk.ID, Mentions: mentions, Err: err}
			}
		}()
	}

	for i := range chunks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}
