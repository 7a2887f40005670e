package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rvanags/featmerge/internal/ingest"
	"github.com/rvanags/featmerge/internal/segment"
	"github.com/rvanags/featmerge/internal/textnorm"
)

var (
	segmentOutput string
	segmentMin    int
	segmentTarget int
	segmentMax    int
)

// segmentCmd represents the segment command
var segmentCmd = &cobra.Command{
	Use:   "segment <input-file>",
	Short: "Normalize a document and split it into bounded chunks",
	Long: `Normalize a text or HTML document and split it into chunks whose
lengths fall between the configured minimum and maximum, preferring
newline boundaries near the target length.

Chunks are written as JSON Lines, one chunk per line, with stable ids
and rune offsets into the normalized text.

Examples:
  featmerge segment listing.html
  featmerge segment --min 500 --target 1200 --max 2000 notes.txt
  featmerge segment listing.html -o chunks.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		params := segment.Params{
			MinLen:    cfg.Chunking.MinLen,
			TargetLen: cfg.Chunking.TargetLen,
			MaxLen:    cfg.Chunking.MaxLen,
		}
		if cmd.Flags().Changed("min") {
			params.MinLen = segmentMin
		}
		if cmd.Flags().Changed("target") {
			params.TargetLen = segmentTarget
		}
		if cmd.Flags().Changed("max") {
			params.MaxLen = segmentMax
		}

		raw, err := ingest.Load(args[0])
		if err != nil {
			return fmt.Errorf("error reading input: %w", err)
		}

		chunks, err := segment.Split(textnorm.Document(raw), params)
		if err != nil {
			return err
		}

		out := os.Stdout
		if segmentOutput != "" {
			f, err := os.Create(segmentOutput)
			if err != nil {
				return fmt.Errorf("error creating output file: %w", err)
			}
			defer func() {
				if closeErr := f.Close(); closeErr != nil && err == nil {
					err = fmt.Errorf("close output file: %w", closeErr)
				}
			}()
			out = f
		}

		if err := segment.WriteJSONL(out, chunks); err != nil {
			return fmt.Errorf("error writing chunks: %w", err)
		}

		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "✓ %d chunks (min=%d target=%d max=%d)\n",
				len(chunks), params.MinLen, params.TargetLen, params.MaxLen)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(segmentCmd)
	segmentCmd.Flags().StringVarP(&segmentOutput, "output", "o", "", "output file (default stdout)")
	segmentCmd.Flags().IntVar(&segmentMin, "min", 0, "minimum chunk length in runes")
	segmentCmd.Flags().IntVar(&segmentTarget, "target", 0, "preferred chunk length in runes")
	segmentCmd.Flags().IntVar(&segmentMax, "max", 0, "maximum chunk length in runes")
}
