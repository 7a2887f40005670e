// Package extract produces candidate mentions per chunk. The pipeline treats
// the mapper as an untrusted collaborator: whatever it claims is resolved and
// evidence-verified downstream, so a sloppy mapper degrades recall, never
// correctness.
package extract

import (
	"context"

	"github.com/rvanags/featmerge/internal/model"
)

// Mapper proposes candidate mentions for one chunk, constrained to the
// allow-list display names handed to it.
type Mapper interface {
	MapChunk(ctx context.Context, chunk model.Chunk, allowNames []string) (*model.ChunkMentions, error)
}

// StaticMapper serves pre-computed mentions from a file for offline runs
// and tests. Chunks without an entry map to an empty mention list.
type StaticMapper struct {
	byChunk map[int]model.ChunkMentions
}

// NewStaticMapper indexes the given per-chunk mentions.
func NewStaticMapper(mentions []model.ChunkMentions) *StaticMapper {
	byChunk := make(map[int]model.ChunkMentions, len(mentions))
	for _, cm := range mentions {
		byChunk[cm.ChunkID] = cm
	}
	return &StaticMapper{byChunk: byChunk}
}

// MapChunk implements Mapper.
func (s *StaticMapper) MapChunk(_ context.Context, chunk model.Chunk, _ []string) (*model.ChunkMentions, error) {
	if cm, ok := s.byChunk[chunk.ID]; ok {
		return &cm, nil
	}
	return &model.ChunkMentions{ChunkID: chunk.ID, Mentions: []model.Mention{}}, nil
}
