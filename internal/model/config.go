package model

import "time"

// Config holds the complete runtime configuration, merged from defaults,
// the config file, FEATMERGE_* environment variables and CLI flags.
type Config struct {
	Chunking    ChunkingConfig      `yaml:"chunking" mapstructure:"chunking"`
	Evidence    EvidenceConfig      `yaml:"evidence" mapstructure:"evidence"`
	LLM         LLMConfig           `yaml:"llm" mapstructure:"llm"`
	Concurrency ConcurrencyConfig   `yaml:"concurrency" mapstructure:"concurrency"`
	Cache       CacheConfig         `yaml:"cache" mapstructure:"cache"`
	Output      OutputConfig        `yaml:"output" mapstructure:"output"`
	Aliases     map[string]string   `yaml:"aliases,omitempty" mapstructure:"aliases"`
	Sanity      map[string][]string `yaml:"sanity,omitempty" mapstructure:"sanity"`
}

// ChunkingConfig controls the segmenter length constraints (in runes).
type ChunkingConfig struct {
	MinLen    int `yaml:"min" mapstructure:"min"`
	TargetLen int `yaml:"target" mapstructure:"target"`
	MaxLen    int `yaml:"max" mapstructure:"max"`
}

// EvidenceConfig controls evidence verification and merge policy.
type EvidenceConfig struct {
	// FuzzyThreshold is the minimum similarity (0-100) for a fuzzy-tier accept.
	FuzzyThreshold int `yaml:"fuzzy_threshold" mapstructure:"fuzzy_threshold"`
	// DowngradeFuzzy demotes a fuzzy-tier hit's verdict to uncertain.
	DowngradeFuzzy bool `yaml:"downgrade_fuzzy" mapstructure:"downgrade_fuzzy"`
	// MaxChars caps the evidence quotation length requested from the mapper.
	MaxChars int `yaml:"max_chars" mapstructure:"max_chars"`
}

// LLMConfig configures the extraction mapper's model backend.
type LLMConfig struct {
	Provider    string        `yaml:"provider" mapstructure:"provider"` // "openai", "ollama", "" (disabled)
	Model       string        `yaml:"model" mapstructure:"model"`
	APIKey      string        `yaml:"-" mapstructure:"-"` // env only, never persisted
	BaseURL     string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32       `yaml:"temperature" mapstructure:"temperature"`
	// RepairRetries is how many times a malformed JSON response is sent back
	// for format repair before the chunk is given up on.
	RepairRetries int `yaml:"repair_retries" mapstructure:"repair_retries"`
}

// ConcurrencyConfig controls the extraction worker pool.
type ConcurrencyConfig struct {
	MapWorkers        int     `yaml:"map_workers" mapstructure:"map_workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// CacheConfig controls caching of mapper responses.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir     string        `yaml:"dir,omitempty" mapstructure:"dir"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults. Chunk lengths follow the
// master-list pipeline defaults (800/1800/2500).
func DefaultConfig() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			MinLen:    800,
			TargetLen: 1800,
			MaxLen:    2500,
		},
		Evidence: EvidenceConfig{
			FuzzyThreshold: 92,
			DowngradeFuzzy: true,
			MaxChars:       400,
		},
		LLM: LLMConfig{
			Provider:      "",
			Model:         "gpt-4o-mini",
			Timeout:       45 * time.Second,
			MaxTokens:     600,
			Temperature:   0,
			RepairRetries: 1,
		},
		Concurrency: ConcurrencyConfig{
			MapWorkers:        4,
			RequestsPerSecond: 2,
			Burst:             2,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		Output: OutputConfig{},
		Sanity: DefaultSanityKeywords(),
	}
}

// DefaultSanityKeywords maps a folded display-name fragment (the category
// marker) to evidence keywords, at least one of which should appear in the
// accepted evidence. Mismatches produce advisory warnings only.
func DefaultSanityKeywords() map[string][]string {
	return map[string][]string{
		"led":     {"led"},
		"kamera":  {"kamera"},
		"sensor":  {"sensor"},
		"apsild":  {"apsild", "sild"},
		"kruīza":  {"kruīz"},
		"stūres":  {"stūr"},
		"spoguļi": {"spoguļ"},
	}
}
