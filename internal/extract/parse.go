package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rvanags/featmerge/internal/model"
)

// mapperPayload is the JSON contract the mapper prompts demand.
type mapperPayload struct {
	MentionedVars []string          `json:"mentioned_vars"`
	Evidence      map[string]string `json:"evidence"`
}

// ParseResponse parses a raw model response into per-chunk mentions.
// Code fences and prose around the JSON object are tolerated; a response
// with no parsable object is an error (the caller may retry via repair).
// Mentions come out in mentioned_vars order; a name with no evidence entry
// gets an empty evidence string and dies in verification downstream.
func ParseResponse(raw string, chunkID int) (*model.ChunkMentions, error) {
	body, err := extractJSONObject(raw)
	if err != nil {
		return nil, err
	}
	var payload mapperPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, fmt.Errorf("mapper response: %w", err)
	}

	mentions := make([]model.Mention, 0, len(payload.MentionedVars))
	for _, name := range payload.MentionedVars {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		mentions = append(mentions, model.Mention{
			Identifier: name,
			Evidence:   strings.TrimSpace(payload.Evidence[name]),
			Verdict:    model.VerdictPositive,
		})
	}
	return &model.ChunkMentions{ChunkID: chunkID, Mentions: mentions}, nil
}

// extractJSONObject cuts the outermost {...} out of a possibly fenced or
// chatty response.
func extractJSONObject(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if fenced, ok := strings.CutPrefix(s, "```json"); ok {
		s = fenced
	} else if fenced, ok := strings.CutPrefix(s, "```"); ok {
		s = fenced
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("mapper response carries no JSON object")
	}
	return s[start : end+1], nil
}
