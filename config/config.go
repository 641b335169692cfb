// Package config loads docgen settings from dotenv files and the process
// environment.
//
// Later files override earlier ones and environment variables override
// every file. Keys are the upper-case names listed in the constants below.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/poiesic/docgen/ai"
	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendWeaviate = "weaviate"
	BackendBadger   = "badger"
	BackendPostgres = "postgres"
)

// Crawler implementations.
const (
	CrawlerFirecrawl = "firecrawl"
	CrawlerLocal     = "local"
)

// Environment keys.
const (
	KeyChunkSize        = "CHUNK_SIZE"
	KeyChunkOverlap     = "CHUNK_OVERLAP"
	KeyMaxResults       = "MAX_RESULTS"
	KeyStoreBackend     = "STORE_BACKEND"
	KeyWeaviateHost     = "WEAVIATE_HOST"
	KeyWeaviateScheme   = "WEAVIATE_SCHEME"
	KeyWeaviateGRPCPort = "WEAVIATE_GRPC_PORT"
	KeyWeaviateAPIKey   = "WEAVIATE_API_KEY"
	KeyBadgerPath       = "BADGER_PATH"
	KeyPostgresDSN      = "POSTGRES_DSN"
	KeyCrawler          = "CRAWLER"
	KeyFirecrawlAPIKey  = "FIRECRAWL_API_KEY"
	KeyFirecrawlAPIURL  = "FIRECRAWL_API_URL"
	KeyCrawlLimit       = "CRAWL_LIMIT"
	KeyCrawlMaxDepth    = "CRAWL_MAX_DEPTH"
	KeyLLMProvider      = "LLM_PROVIDER"
	KeyOpenAIAPIKey     = "OPENAI_API_KEY"
	KeyOpenAIBaseURL    = "OPENAI_BASE_URL"
	KeyAnthropicAPIKey  = "ANTHROPIC_API_KEY"
	KeyAnthropicBaseURL = "ANTHROPIC_BASE_URL"
	KeyLLMModel         = "LLM_MODEL"
	KeyEmbeddingModel   = "EMBEDDING_MODEL"
	KeyEmbeddingEnabled = "EMBEDDING_ENABLED"
)

// DefaultFiles are read by Load when no files are given. Missing ones are
// skipped.
var DefaultFiles = []string{".env", ".env.local"}

var (
	ErrInvalidChunkSize    = errors.New("config: CHUNK_SIZE must be positive")
	ErrInvalidChunkOverlap = errors.New("config: CHUNK_OVERLAP must be between 0 and CHUNK_SIZE")
	ErrInvalidMaxResults   = errors.New("config: MAX_RESULTS must be positive")
	ErrUnknownBackend      = errors.New("config: unknown STORE_BACKEND")
	ErrUnknownCrawler      = errors.New("config: unknown CRAWLER")
	ErrUnknownProvider     = errors.New("config: unknown LLM_PROVIDER")
	ErrInvalidCrawlLimit   = errors.New("config: CRAWL_LIMIT must be positive")
	ErrInvalidCrawlDepth   = errors.New("config: CRAWL_MAX_DEPTH must be positive")
	ErrPostgresDSNRequired = errors.New("config: POSTGRES_DSN is required for the postgres backend")
)

var defaults = map[string]any{
	KeyChunkSize:        1000,
	KeyChunkOverlap:     200,
	KeyMaxResults:       5,
	KeyStoreBackend:     BackendWeaviate,
	KeyWeaviateHost:     "localhost:8080",
	KeyWeaviateScheme:   "http",
	KeyWeaviateGRPCPort: 50051,
	KeyWeaviateAPIKey:   "",
	KeyBadgerPath:       "./docgen_db",
	KeyPostgresDSN:      "",
	KeyCrawler:          CrawlerFirecrawl,
	KeyFirecrawlAPIKey:  "",
	KeyFirecrawlAPIURL:  "https://api.firecrawl.dev",
	KeyCrawlLimit:       100,
	KeyCrawlMaxDepth:    2,
	KeyLLMProvider:      ai.BackendOpenAI,
	KeyOpenAIAPIKey:     "",
	KeyOpenAIBaseURL:    "https://api.openai.com/v1",
	KeyAnthropicAPIKey:  "",
	KeyAnthropicBaseURL: "https://api.anthropic.com/v1",
	KeyLLMModel:         "gpt-4",
	KeyEmbeddingModel:   "text-embedding-3-small",
	KeyEmbeddingEnabled: true,
}

// Config is the complete docgen configuration.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	MaxResults   int

	StoreBackend     string
	WeaviateHost     string
	WeaviateScheme   string
	WeaviateGRPCPort int
	WeaviateAPIKey   string
	BadgerPath       string
	PostgresDSN      string

	Crawler         string
	FirecrawlAPIKey string
	FirecrawlAPIURL string
	CrawlLimit      int
	CrawlMaxDepth   int

	LLMProvider      string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	AnthropicAPIKey  string
	AnthropicBaseURL string
	LLMModel         string
	EmbeddingModel   string
	EmbeddingEnabled bool
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return fromViper(newViper())
}

// Load reads the given dotenv files in order, then the environment.
// With no files it reads DefaultFiles and skips the ones that do not exist;
// files named explicitly must exist.
func Load(files ...string) (*Config, error) {
	optional := len(files) == 0
	if optional {
		files = DefaultFiles
	}

	v := newViper()
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			if optional && errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("cannot read config file %s: %w", file, err)
		}
		v.SetConfigFile(file)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", file, err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("env")
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		ChunkSize:        v.GetInt(KeyChunkSize),
		ChunkOverlap:     v.GetInt(KeyChunkOverlap),
		MaxResults:       v.GetInt(KeyMaxResults),
		StoreBackend:     strings.ToLower(strings.TrimSpace(v.GetString(KeyStoreBackend))),
		WeaviateHost:     v.GetString(KeyWeaviateHost),
		WeaviateScheme:   v.GetString(KeyWeaviateScheme),
		WeaviateGRPCPort: v.GetInt(KeyWeaviateGRPCPort),
		WeaviateAPIKey:   v.GetString(KeyWeaviateAPIKey),
		BadgerPath:       v.GetString(KeyBadgerPath),
		PostgresDSN:      v.GetString(KeyPostgresDSN),
		Crawler:          strings.ToLower(strings.TrimSpace(v.GetString(KeyCrawler))),
		FirecrawlAPIKey:  v.GetString(KeyFirecrawlAPIKey),
		FirecrawlAPIURL:  v.GetString(KeyFirecrawlAPIURL),
		CrawlLimit:       v.GetInt(KeyCrawlLimit),
		CrawlMaxDepth:    v.GetInt(KeyCrawlMaxDepth),
		LLMProvider:      strings.ToLower(strings.TrimSpace(v.GetString(KeyLLMProvider))),
		OpenAIAPIKey:     v.GetString(KeyOpenAIAPIKey),
		OpenAIBaseURL:    v.GetString(KeyOpenAIBaseURL),
		AnthropicAPIKey:  v.GetString(KeyAnthropicAPIKey),
		AnthropicBaseURL: v.GetString(KeyAnthropicBaseURL),
		LLMModel:         v.GetString(KeyLLMModel),
		EmbeddingModel:   v.GetString(KeyEmbeddingModel),
		EmbeddingEnabled: v.GetBool(KeyEmbeddingEnabled),
	}
}

// Validate checks value ranges and enumerated names.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidChunkSize, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: %d", ErrInvalidChunkOverlap, c.ChunkOverlap)
	}
	if c.MaxResults <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxResults, c.MaxResults)
	}

	switch c.StoreBackend {
	case BackendWeaviate, BackendBadger:
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return ErrPostgresDSNRequired
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.StoreBackend)
	}

	switch c.Crawler {
	case CrawlerFirecrawl, CrawlerLocal:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCrawler, c.Crawler)
	}
	if c.CrawlLimit <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCrawlLimit, c.CrawlLimit)
	}
	if c.CrawlMaxDepth <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCrawlDepth, c.CrawlMaxDepth)
	}

	switch c.LLMProvider {
	case ai.BackendOpenAI, ai.BackendAnthropic:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.LLMProvider)
	}
	return nil
}

// AIConfig maps the LLM settings onto an ai.Config. Embeddings always go to
// the OpenAI-compatible endpoint; chat goes to the selected provider.
func (c *Config) AIConfig() *ai.Config {
	opts := []ai.ConfigOption{
		ai.WithChatBackend(c.LLMProvider),
		ai.WithEmbeddingHost(c.OpenAIBaseURL),
		ai.WithEmbeddingAPIKey(c.OpenAIAPIKey),
		ai.WithEmbeddingModel(c.EmbeddingModel),
		ai.WithChatModel(c.LLMModel),
	}
	if c.LLMProvider == ai.BackendAnthropic {
		opts = append(opts,
			ai.WithChatHost(c.AnthropicBaseURL),
			ai.WithChatAPIKey(c.AnthropicAPIKey),
		)
	} else {
		opts = append(opts,
			ai.WithChatHost(c.OpenAIBaseURL),
			ai.WithChatAPIKey(c.OpenAIAPIKey),
		)
	}
	return ai.NewConfig(opts...)
}

// HasLLM reports whether an LLM can be reached: the selected provider has a
// key, or OPENAI_BASE_URL points at a self-hosted OpenAI-compatible server.
func (c *Config) HasLLM() bool {
	if c.LLMProvider == ai.BackendAnthropic {
		return c.AnthropicAPIKey != ""
	}
	return c.hasOpenAI()
}

// HasEmbeddings reports whether vectors can be computed. Embeddings always
// use the OpenAI-compatible endpoint, so with the anthropic provider an
// OpenAI key or a self-hosted OPENAI_BASE_URL is still needed.
func (c *Config) HasEmbeddings() bool {
	return c.EmbeddingEnabled && c.hasOpenAI()
}

func (c *Config) hasOpenAI() bool {
	return c.OpenAIAPIKey != "" || c.OpenAIBaseURL != defaults[KeyOpenAIBaseURL]
}
