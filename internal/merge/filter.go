package merge

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/rvanags/featmerge/internal/model"
)

// chunkFilterFile is the only accepted shape for an allowed-chunk filter.
// Historical producers emitted several shapes; those are gone — anything
// else is a configuration error, not a sniffing case.
type chunkFilterFile struct {
	AllowedChunks []int `json:"allowed_chunks"`
}

// ParseChunkFilter reads {"allowed_chunks": [1, 2, ...]} and returns the
// allowed set. An empty list is valid and allows nothing.
func ParseChunkFilter(data []byte) (map[int]bool, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var f chunkFilterFile
	if err := dec.Decode(&f); err != nil {
		return nil, model.ConfigErrorf("chunk filter: expected {\"allowed_chunks\": [...]}: %v", err)
	}
	if f.AllowedChunks == nil {
		return nil, model.ConfigErrorf("chunk filter: missing \"allowed_chunks\" list")
	}
	allowed := make(map[int]bool, len(f.AllowedChunks))
	for _, id := range f.AllowedChunks {
		allowed[id] = true
	}
	return allowed, nil
}

// ReadMentions decodes a JSON array of per-chunk mention lists, the shape
// the extraction collaborator produces.
func ReadMentions(r io.Reader) ([]model.ChunkMentions, error) {
	var mentions []model.ChunkMentions
	dec := json.NewDecoder(r)
	if err := dec.Decode(&mentions); err != nil {
		return nil, model.ConfigErrorf("mentions: expected a JSON array of {chunk_id, mentions}: %v", err)
	}
	return mentions, nil
}
