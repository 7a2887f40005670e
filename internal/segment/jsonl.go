package segment

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rvanags/featmerge/internal/model"
)

// WriteJSONL writes chunks one per line as compact JSON objects with the
// stable key order id, start, end, text.
func WriteJSONL(w io.Writer, chunks []model.Chunk) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, c := range chunks {
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("encode chunk %d: %w", c.ID, err)
		}
	}
	return bw.Flush()
}

// ReadJSONL reads chunks back in file order, skipping blank lines.
func ReadJSONL(r io.Reader) ([]model.Chunk, error) {
	var chunks []model.Chunk
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" {
			continue
		}
		var c model.Chunk
		if err := json.Unmarshal([]byte(s), &c); err != nil {
			return nil, fmt.Errorf("chunks line %d: %w", line, err)
		}
		chunks = append(chunks, c)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return chunks, nil
}
