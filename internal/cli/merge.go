package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rvanags/featmerge/internal/catalog"
	"github.com/rvanags/featmerge/internal/merge"
	"github.com/rvanags/featmerge/internal/segment"
)

var (
	mergeChunksPath   string
	mergeMentionsPath string
	mergeMasterPath   string
	mergeAllowPath    string
	mergeFilterPath   string
	mergeOutputDir    string
)

// mergeCmd represents the merge command
var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge candidate mentions into verified per-item decisions",
	Long: `Merge per-chunk candidate mentions into one authoritative decision per
catalog item. Every candidate must resolve to a catalog code, survive the
allow-list, and carry evidence that literally occurs in its source chunk.
Duplicates collapse by evidence tier (exact > normalized > fuzzy), then by
longer evidence, then by first acceptance.

Examples:
  featmerge merge --chunks chunks.jsonl --mentions mentions.json \
    --master master.csv --allow allow.txt -o out/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		chunksFile, err := os.Open(mergeChunksPath)
		if err != nil {
			return fmt.Errorf("error opening chunks file: %w", err)
		}
		chunks, err := segment.ReadJSONL(chunksFile)
		chunksFile.Close()
		if err != nil {
			return fmt.Errorf("error reading chunks: %w", err)
		}

		mentionsFile, err := os.Open(mergeMentionsPath)
		if err != nil {
			return fmt.Errorf("error opening mentions file: %w", err)
		}
		mentions, err := merge.ReadMentions(mentionsFile)
		mentionsFile.Close()
		if err != nil {
			return fmt.Errorf("error reading mentions: %w", err)
		}

		cat, allowEntries, err := loadCatalogAndAllowList(mergeMasterPath, mergeAllowPath)
		if err != nil {
			return err
		}
		resolver := catalog.NewResolver(cat, cfg.Aliases)
		allow := catalog.ResolveAllowList(allowEntries, resolver)

		var allowedChunks map[int]bool
		if mergeFilterPath != "" {
			data, err := os.ReadFile(mergeFilterPath)
			if err != nil {
				return fmt.Errorf("error reading chunk filter: %w", err)
			}
			allowedChunks, err = merge.ParseChunkFilter(data)
			if err != nil {
				return err
			}
		}

		engine, err := merge.NewEngine(cat, resolver, allow, merge.Options{
			FuzzyThreshold: cfg.Evidence.FuzzyThreshold,
			DowngradeFuzzy: cfg.Evidence.DowngradeFuzzy,
			Sanity:         cfg.Sanity,
			AllowedChunks:  allowedChunks,
		})
		if err != nil {
			return err
		}
		result, err := engine.Merge(chunks, mentions)
		if err != nil {
			return err
		}

		if mergeOutputDir != "" {
			if err := os.MkdirAll(mergeOutputDir, 0o755); err != nil {
				return fmt.Errorf("error creating output directory: %w", err)
			}
			for name, v := range map[string]any{
				"merge_result.json": result.Decisions,
				"merge_audit.json":  result.Audit,
				"merge_report.json": result.Report,
			} {
				data, err := json.MarshalIndent(v, "", "  ")
				if err != nil {
					return fmt.Errorf("error encoding %s: %w", name, err)
				}
				if err := os.WriteFile(mergeOutputDir+"/"+name, append(data, '\n'), 0o644); err != nil {
					return fmt.Errorf("error writing %s: %w", name, err)
				}
			}
			fmt.Fprintf(os.Stderr, "✓ %d decisions written to %s\n", len(result.Decisions), mergeOutputDir)
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Decisions)
	},
}

// loadCatalogAndAllowList reads the master catalog CSV and the raw allow-list
// entries. Shared by the merge and run commands.
func loadCatalogAndAllowList(masterPath, allowPath string) (*catalog.Catalog, []string, error) {
	masterFile, err := os.Open(masterPath)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening master catalog: %w", err)
	}
	defer masterFile.Close()
	cat, err := catalog.LoadCSV(masterFile)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading master catalog: %w", err)
	}

	allowFile, err := os.Open(allowPath)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening allow-list: %w", err)
	}
	defer allowFile.Close()
	entries, err := catalog.ReadAllowList(allowFile)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading allow-list: %w", err)
	}
	return cat, entries, nil
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().StringVar(&mergeChunksPath, "chunks", "", "chunks JSONL file (from 'featmerge segment')")
	mergeCmd.Flags().StringVar(&mergeMentionsPath, "mentions", "", "candidate mentions JSON file")
	mergeCmd.Flags().StringVar(&mergeMasterPath, "master", "", "master catalog CSV")
	mergeCmd.Flags().StringVar(&mergeAllowPath, "allow", "", "allow-list file, one name or code per line")
	mergeCmd.Flags().StringVar(&mergeFilterPath, "chunk-filter", "", "optional JSON file restricting which chunks are merged")
	mergeCmd.Flags().StringVarP(&mergeOutputDir, "output", "o", "", "output directory (default: decisions to stdout)")
	_ = mergeCmd.MarkFlagRequired("chunks")
	_ = mergeCmd.MarkFlagRequired("mentions")
	_ = mergeCmd.MarkFlagRequired("master")
	_ = mergeCmd.MarkFlagRequired("allow")
}
