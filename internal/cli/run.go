package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rvanags/featmerge/internal/cache"
	"github.com/rvanags/featmerge/internal/extract"
	"github.com/rvanags/featmerge/internal/ingest"
	"github.com/rvanags/featmerge/internal/llm"
	"github.com/rvanags/featmerge/internal/merge"
	"github.com/rvanags/featmerge/internal/model"
	"github.com/rvanags/featmerge/internal/pipeline"
	"github.com/rvanags/featmerge/internal/worker"
)

var (
	runMasterPath   string
	runAllowPath    string
	runMentionsPath string
	runFilterPath   string
	runOutputDir    string
	runProvider     string
	runModel        string
	runNoCache      bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <input-file>",
	Short: "Run the full pipeline: normalize, segment, extract, merge, export",
	Long: `Run the full detection pipeline over one document. The input is
normalized and segmented, each chunk goes through the extraction mapper,
candidate mentions are merged under evidence verification, and the
results are written as a catalog-aligned table plus audit artifacts.

Extraction needs an LLM backend unless --mentions supplies pre-computed
candidates. API keys come from the environment (OPENAI_API_KEY).

Examples:
  featmerge run listing.html --master master.csv --allow allow.txt -o out/
  featmerge run listing.html --master master.csv --allow allow.txt \
    --provider ollama --model llama3.1 -o out/
  featmerge run listing.txt --master master.csv --allow allow.txt \
    --mentions mentions.json -o out/`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("provider") {
			cfg.LLM.Provider = runProvider
		}
		if cmd.Flags().Changed("model") {
			cfg.LLM.Model = runModel
		}
		if runNoCache {
			cfg.Cache.Enabled = false
		}
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if url := os.Getenv("OLLAMA_BASE_URL"); url != "" && cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = url
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		text, err := ingest.Load(args[0])
		if err != nil {
			return fmt.Errorf("error reading input: %w", err)
		}

		cat, allowEntries, err := loadCatalogAndAllowList(runMasterPath, runAllowPath)
		if err != nil {
			return err
		}

		var allowedChunks map[int]bool
		if runFilterPath != "" {
			data, err := os.ReadFile(runFilterPath)
			if err != nil {
				return fmt.Errorf("error reading chunk filter: %w", err)
			}
			allowedChunks, err = merge.ParseChunkFilter(data)
			if err != nil {
				return err
			}
		}

		mapper, err := buildMapper(ctx, cfg)
		if err != nil {
			return err
		}

		p, err := pipeline.New(cfg, mapper)
		if err != nil {
			return err
		}
		result, err := p.Run(ctx, text, cat, allowEntries, allowedChunks)
		if err != nil {
			return err
		}

		if runOutputDir != "" {
			if err := result.WriteArtifacts(runOutputDir); err != nil {
				return err
			}
			if cfg.Output.Verbose {
				fmt.Fprintf(os.Stderr, "✓ artifacts written to %s\n", runOutputDir)
			}
		}
		result.RenderSummary(os.Stdout)
		return nil
	},
}

// buildMapper picks the extraction source: pre-computed mentions when
// --mentions is given, otherwise an LLM mapper over the configured backend.
func buildMapper(ctx context.Context, cfg *model.Config) (extract.Mapper, error) {
	if runMentionsPath != "" {
		f, err := os.Open(runMentionsPath)
		if err != nil {
			return nil, fmt.Errorf("error opening mentions file: %w", err)
		}
		defer f.Close()
		mentions, err := merge.ReadMentions(f)
		if err != nil {
			return nil, fmt.Errorf("error reading mentions: %w", err)
		}
		return extract.NewStaticMapper(mentions), nil
	}

	provider, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("error: %w\nSet llm.provider in the config, pass --provider, or supply --mentions", err)
	}
	if !provider.IsAvailable(ctx) {
		return nil, fmt.Errorf("LLM backend %q is not reachable; check credentials and connectivity", provider.Name())
	}

	opts := extract.LLMMapperOptions{
		Limiter: worker.NewLimiter(cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.Burst),
		Verbose: cfg.Output.Verbose,
	}
	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			opts.Cache = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
		} else {
			opts.Cache = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.TTL)
		}
	}
	return extract.NewLLMMapper(provider, cfg.LLM, cfg.Evidence.MaxChars, opts), nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runMasterPath, "master", "", "master catalog CSV")
	runCmd.Flags().StringVar(&runAllowPath, "allow", "", "allow-list file, one name or code per line")
	runCmd.Flags().StringVar(&runMentionsPath, "mentions", "", "pre-computed mentions JSON (skips LLM extraction)")
	runCmd.Flags().StringVar(&runFilterPath, "chunk-filter", "", "optional JSON file restricting which chunks are processed")
	runCmd.Flags().StringVarP(&runOutputDir, "output", "o", "", "directory for pipeline artifacts")
	runCmd.Flags().StringVar(&runProvider, "provider", "", "LLM provider (openai, ollama)")
	runCmd.Flags().StringVar(&runModel, "model", "", "LLM model name")
	runCmd.Flags().BoolVar(&runNoCache, "no-cache", false, "disable the mapper response cache")
	_ = runCmd.MarkFlagRequired("master")
	_ = runCmd.MarkFlagRequired("allow")
}
