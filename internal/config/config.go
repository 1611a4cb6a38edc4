package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Provider    ProviderConfig    `yaml:"provider"`
	Session     SessionConfig     `yaml:"session"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Translation TranslationConfig `yaml:"translation"`
	Store       StoreConfig       `yaml:"store"`
	Paths       PathsConfig       `yaml:"paths"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

type ProviderConfig struct {
	Kind   string       `yaml:"kind"` // ollama | gemini
	Ollama OllamaConfig `yaml:"ollama"`
	Gemini GeminiConfig `yaml:"gemini"`
}

type OllamaConfig struct {
	BaseURL       string        `yaml:"base_url"`
	Model         string        `yaml:"model"`
	ContextLength int           `yaml:"context_length"`
	Timeout       time.Duration `yaml:"timeout"`
}

type GeminiConfig struct {
	Model      string `yaml:"model"`
	APIKeysEnv string `yaml:"api_keys_env"`
}

type SessionConfig struct {
	ExpectedInputLanguages  []string      `yaml:"expected_input_languages"`
	ExpectedOutputLanguages []string      `yaml:"expected_output_languages"`
	StallTimeout            time.Duration `yaml:"stall_timeout"`
	DownloadTimeout         time.Duration `yaml:"download_timeout"`
	AvailabilityTimeout     time.Duration `yaml:"availability_timeout"`
	MaxRetries              int           `yaml:"max_retries"`
}

type SummarizerConfig struct {
	Type              string        `yaml:"type"`
	Format            string        `yaml:"format"`
	Length            string        `yaml:"length"`
	SharedContext     string        `yaml:"shared_context"`
	Context           string        `yaml:"context"`
	OutputLanguages   []string      `yaml:"output_languages"`
	StageTimeout      time.Duration `yaml:"stage_timeout"`
	ChunkSize         int           `yaml:"chunk_size"`
	ChunkOverlap      int           `yaml:"chunk_overlap"`
	MaxChunks         int           `yaml:"max_chunks"`
	MaxRecursionDepth int           `yaml:"max_recursion_depth"`
	TruncateBudget    int           `yaml:"truncate_budget"`
	FallbackLength    int           `yaml:"fallback_length"`
	Exhaustive        bool          `yaml:"exhaustive"`
}

type TranslationConfig struct {
	TargetLanguage     string   `yaml:"target_language"`
	SupportedLanguages []string `yaml:"supported_languages"`
	MaxTranslators     int      `yaml:"max_translators"` // negative keeps every translator
}

type StoreConfig struct {
	Driver string      `yaml:"driver"` // memory | file | redis | sqlite
	Path   string      `yaml:"path"`
	Redis  RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	Timeout  time.Duration `yaml:"timeout"`
}

type PathsConfig struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
	Archived string `yaml:"archived"`
}

type OutputConfig struct {
	Docx bool `yaml:"docx"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
	ModelSlots    int `yaml:"model_slots"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

const defaultSummaryContext = "Remove boilerplate and navigation text. Focus on substantive content."

// Load reads and validates a YAML configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Provider.Kind {
	case "":
		c.Provider.Kind = "ollama"
	case "ollama", "gemini":
	default:
		return fmt.Errorf("provider.kind must be ollama or gemini, got %q", c.Provider.Kind)
	}
	if c.Paths.Input == "" {
		return fmt.Errorf("paths.input is required")
	}
	if c.Paths.Output == "" {
		return fmt.Errorf("paths.output is required")
	}
	if c.Summarizer.ChunkOverlap < 0 {
		return fmt.Errorf("summarizer.chunk_overlap must not be negative")
	}
	if c.Summarizer.ChunkSize < 0 {
		return fmt.Errorf("summarizer.chunk_size must not be negative")
	}

	switch c.Store.Driver {
	case "":
		c.Store.Driver = "file"
	case "memory", "file", "redis", "sqlite":
	default:
		return fmt.Errorf("store.driver %q is not supported", c.Store.Driver)
	}
	if c.Store.Driver == "redis" && c.Store.Redis.Addr == "" {
		return fmt.Errorf("store.redis.addr is required for the redis driver")
	}

	if c.Provider.Ollama.BaseURL == "" {
		c.Provider.Ollama.BaseURL = "http://localhost:11434"
	}
	if c.Provider.Ollama.Model == "" {
		c.Provider.Ollama.Model = "qwen3:4b"
	}
	if c.Provider.Ollama.ContextLength == 0 {
		c.Provider.Ollama.ContextLength = 8192
	}
	if c.Provider.Ollama.Timeout == 0 {
		c.Provider.Ollama.Timeout = 5 * time.Minute
	}
	if c.Provider.Gemini.Model == "" {
		c.Provider.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Provider.Gemini.APIKeysEnv == "" {
		c.Provider.Gemini.APIKeysEnv = "GEMINI_API_KEYS"
	}

	if len(c.Session.ExpectedInputLanguages) == 0 {
		c.Session.ExpectedInputLanguages = []string{"en"}
	}
	if len(c.Session.ExpectedOutputLanguages) == 0 {
		c.Session.ExpectedOutputLanguages = []string{"en"}
	}
	if c.Session.StallTimeout == 0 {
		c.Session.StallTimeout = 2 * time.Minute
	}
	if c.Session.DownloadTimeout == 0 {
		c.Session.DownloadTimeout = 15 * time.Minute
	}
	if c.Session.AvailabilityTimeout == 0 {
		c.Session.AvailabilityTimeout = time.Second
	}
	if c.Session.MaxRetries == 0 {
		c.Session.MaxRetries = 3
	}

	if c.Summarizer.Type == "" {
		c.Summarizer.Type = "tldr"
	}
	if c.Summarizer.Format == "" {
		c.Summarizer.Format = "plain-text"
	}
	if c.Summarizer.Length == "" {
		c.Summarizer.Length = "medium"
	}
	if c.Summarizer.Context == "" {
		c.Summarizer.Context = defaultSummaryContext
	}
	if len(c.Summarizer.OutputLanguages) == 0 {
		c.Summarizer.OutputLanguages = []string{"en", "es", "ja"}
	}
	if c.Summarizer.StageTimeout == 0 {
		c.Summarizer.StageTimeout = 30 * time.Second
	}
	if c.Summarizer.ChunkSize == 0 {
		c.Summarizer.ChunkSize = 3000
	}
	if c.Summarizer.ChunkOverlap == 0 {
		c.Summarizer.ChunkOverlap = 200
	}
	if c.Summarizer.MaxChunks == 0 {
		c.Summarizer.MaxChunks = 10
	}
	if c.Summarizer.MaxRecursionDepth == 0 {
		c.Summarizer.MaxRecursionDepth = 3
	}
	if c.Summarizer.TruncateBudget == 0 {
		c.Summarizer.TruncateBudget = 8000
	}
	if c.Summarizer.FallbackLength == 0 {
		c.Summarizer.FallbackLength = 500
	}

	if len(c.Translation.SupportedLanguages) == 0 {
		c.Translation.SupportedLanguages = []string{"en", "es", "ja", "fr", "de", "pt", "vi", "zh"}
	}
	if c.Translation.MaxTranslators == 0 {
		c.Translation.MaxTranslators = 8
	}

	if c.Store.Path == "" {
		switch c.Store.Driver {
		case "sqlite":
			c.Store.Path = "data/state.db"
		default:
			c.Store.Path = "data/state.json"
		}
	}
	if c.Store.Redis.Prefix == "" {
		c.Store.Redis.Prefix = "pagedigest:"
	}
	if c.Store.Redis.Timeout == 0 {
		c.Store.Redis.Timeout = 5 * time.Second
	}

	if c.Paths.Archived == "" {
		c.Paths.Archived = "data/archived"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}
	if c.Performance.ModelSlots == 0 {
		c.Performance.ModelSlots = 1
	}

	return nil
}
