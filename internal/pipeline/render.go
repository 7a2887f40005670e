package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rvanags/featmerge/internal/segment"
)

// Artifact file names inside the output directory.
const (
	FileChunks     = "chunks.jsonl"
	FileMentions   = "mentions.json"
	FileDecisions  = "merge_result.json"
	FileAudit      = "merge_audit.json"
	FileReport     = "merge_report.json"
	FileAligned    = "master_aligned.jsonl"
	FileFinal      = "final_decisions.json"
	FileCSV        = "detections.csv"
	FileNormalized = "text_normalized.txt"
)

// WriteArtifacts writes every run artifact into dir, overwriting previous
// runs of the same session (idempotent by construction).
func (r *RunResult) WriteArtifacts(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := writeFile(dir, FileNormalized, func(w io.Writer) error {
		_, err := io.WriteString(w, r.NormalizedText)
		return err
	}); err != nil {
		return err
	}
	if err := writeFile(dir, FileChunks, func(w io.Writer) error {
		return segment.WriteJSONL(w, r.Chunks)
	}); err != nil {
		return err
	}
	if err := writeJSON(dir, FileMentions, r.Mentions); err != nil {
		return err
	}
	if err := writeJSON(dir, FileDecisions, r.Merge.Decisions); err != nil {
		return err
	}
	if err := writeJSON(dir, FileAudit, r.Merge.Audit); err != nil {
		return err
	}
	if err := writeJSON(dir, FileReport, r.Merge.Report); err != nil {
		return err
	}
	if err := writeJSON(dir, FileFinal, r.Table.Final); err != nil {
		return err
	}
	if err := writeFile(dir, FileAligned, r.Table.WriteAlignedJSONL); err != nil {
		return err
	}
	return writeFile(dir, FileCSV, r.Table.WriteCSV)
}

// RenderSummary prints the human-facing run summary.
func (r *RunResult) RenderSummary(w io.Writer) {
	rep := r.Merge.Report
	fmt.Fprintf(w, "Chunks: %d (processed %d)\n", len(r.Chunks), len(rep.ProcessedChunkIDs))
	fmt.Fprintf(w, "Mentions: %d, decisions: %d\n", rep.TotalMentions, rep.Decisions)
	fmt.Fprintf(w, "Dropped: %d, unresolved: %d, superseded: %d, malformed: %d\n",
		rep.Dropped, rep.Unresolved, rep.Superseded, rep.Malformed)
	if rep.Warnings > 0 {
		fmt.Fprintf(w, "Warnings: %d (see %s)\n", rep.Warnings, FileAudit)
	}
	for _, e := range r.MapErrors {
		fmt.Fprintf(w, "extraction failed: %s\n", e)
	}
	for _, n := range r.Table.Notes {
		fmt.Fprintf(w, "note: %s\n", n)
	}
}

func writeJSON(dir, name string, v any) error {
	return writeFile(dir, name, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

func writeFile(dir, name string, fill func(io.Writer) error) (err error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", name, closeErr)
		}
	}()
	if err := fill(f); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
