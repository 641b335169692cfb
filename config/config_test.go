package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/docgen/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every key so the host environment cannot leak into a test.
// Viper treats empty variables as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for key := range defaults {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	clearEnv(t)

	cfg := Default()
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 5, cfg.MaxResults)
	assert.Equal(t, BackendWeaviate, cfg.StoreBackend)
	assert.Equal(t, "localhost:8080", cfg.WeaviateHost)
	assert.Equal(t, "http", cfg.WeaviateScheme)
	assert.Equal(t, 50051, cfg.WeaviateGRPCPort)
	assert.Equal(t, "./docgen_db", cfg.BadgerPath)
	assert.Equal(t, CrawlerFirecrawl, cfg.Crawler)
	assert.Equal(t, "https://api.firecrawl.dev", cfg.FirecrawlAPIURL)
	assert.Equal(t, 100, cfg.CrawlLimit)
	assert.Equal(t, 2, cfg.CrawlMaxDepth)
	assert.Equal(t, ai.BackendOpenAI, cfg.LLMProvider)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAIBaseURL)
	assert.Equal(t, "gpt-4", cfg.LLMModel)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.True(t, cfg.EmbeddingEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Run("later files override earlier ones", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		base := writeFile(t, dir, ".env", "CHUNK_SIZE=500\nSTORE_BACKEND=badger\nFIRECRAWL_API_KEY=fc-base\n")
		local := writeFile(t, dir, ".env.local", "CHUNK_SIZE=800\n")

		cfg, err := Load(base, local)
		require.NoError(t, err)
		assert.Equal(t, 800, cfg.ChunkSize)
		assert.Equal(t, BackendBadger, cfg.StoreBackend)
		assert.Equal(t, "fc-base", cfg.FirecrawlAPIKey)
		assert.Equal(t, 200, cfg.ChunkOverlap)
	})

	t.Run("environment overrides files", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		file := writeFile(t, dir, ".env", "CHUNK_SIZE=500\nLLM_MODEL=gpt-4o\n")
		t.Setenv("CHUNK_SIZE", "900")
		t.Setenv("EMBEDDING_ENABLED", "false")

		cfg, err := Load(file)
		require.NoError(t, err)
		assert.Equal(t, 900, cfg.ChunkSize)
		assert.Equal(t, "gpt-4o", cfg.LLMModel)
		assert.False(t, cfg.EmbeddingEnabled)
	})

	t.Run("default files are optional", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		t.Chdir(dir)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 1000, cfg.ChunkSize)

		writeFile(t, dir, ".env.local", "MAX_RESULTS=9\n")
		cfg, err = Load()
		require.NoError(t, err)
		assert.Equal(t, 9, cfg.MaxResults)
	})

	t.Run("explicit file must exist", func(t *testing.T) {
		clearEnv(t)
		_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		clearEnv(t)
		file := writeFile(t, t.TempDir(), ".env", "CHUNK_SIZE=100\nCHUNK_OVERLAP=100\n")

		_, err := Load(file)
		assert.ErrorIs(t, err, ErrInvalidChunkOverlap)
	})
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }, ErrInvalidChunkSize},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }, ErrInvalidChunkOverlap},
		{"overlap equals size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }, ErrInvalidChunkOverlap},
		{"zero max results", func(c *Config) { c.MaxResults = 0 }, ErrInvalidMaxResults},
		{"unknown backend", func(c *Config) { c.StoreBackend = "sqlite" }, ErrUnknownBackend},
		{"postgres without dsn", func(c *Config) { c.StoreBackend = BackendPostgres }, ErrPostgresDSNRequired},
		{"unknown crawler", func(c *Config) { c.Crawler = "wget" }, ErrUnknownCrawler},
		{"zero crawl limit", func(c *Config) { c.CrawlLimit = 0 }, ErrInvalidCrawlLimit},
		{"zero depth", func(c *Config) { c.CrawlMaxDepth = 0 }, ErrInvalidCrawlDepth},
		{"unknown provider", func(c *Config) { c.LLMProvider = "gemini" }, ErrUnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}

	t.Run("postgres with dsn", func(t *testing.T) {
		cfg := Default()
		cfg.StoreBackend = BackendPostgres
		cfg.PostgresDSN = "postgres://localhost/docgen"
		assert.NoError(t, cfg.Validate())
	})
}

func TestAIConfig(t *testing.T) {
	clearEnv(t)

	t.Run("openai", func(t *testing.T) {
		cfg := Default()
		cfg.OpenAIAPIKey = "sk-test"

		aiCfg := cfg.AIConfig()
		require.NoError(t, aiCfg.Validate())
		assert.Equal(t, ai.BackendOpenAI, aiCfg.ChatBackend)
		assert.Equal(t, "https://api.openai.com/v1", aiCfg.ChatHost)
		assert.Equal(t, "sk-test", aiCfg.ChatAPIKey)
		assert.Equal(t, "sk-test", aiCfg.EmbeddingAPIKey)
		assert.Equal(t, "gpt-4", aiCfg.ChatModel)
		assert.Equal(t, "text-embedding-3-small", aiCfg.EmbeddingModel)
	})

	t.Run("anthropic chat keeps openai embeddings", func(t *testing.T) {
		cfg := Default()
		cfg.LLMProvider = ai.BackendAnthropic
		cfg.LLMModel = "claude-3-5-haiku-latest"
		cfg.OpenAIAPIKey = "sk-test"
		cfg.AnthropicAPIKey = "ant-test"

		aiCfg := cfg.AIConfig()
		require.NoError(t, aiCfg.Validate())
		assert.Equal(t, ai.BackendAnthropic, aiCfg.ChatBackend)
		assert.Equal(t, "https://api.anthropic.com/v1", aiCfg.ChatHost)
		assert.Equal(t, "ant-test", aiCfg.ChatAPIKey)
		assert.Equal(t, "https://api.openai.com/v1", aiCfg.EmbeddingHost)
		assert.Equal(t, "sk-test", aiCfg.EmbeddingAPIKey)
	})
}

func TestHasLLM(t *testing.T) {
	clearEnv(t)

	cfg := Default()
	assert.False(t, cfg.HasLLM())

	cfg.OpenAIAPIKey = "sk-test"
	assert.True(t, cfg.HasLLM())

	cfg = Default()
	cfg.OpenAIBaseURL = "http://localhost:11434/v1"
	assert.True(t, cfg.HasLLM())

	cfg = Default()
	cfg.LLMProvider = ai.BackendAnthropic
	cfg.OpenAIAPIKey = "sk-test"
	assert.False(t, cfg.HasLLM())
	cfg.AnthropicAPIKey = "ant-test"
	assert.True(t, cfg.HasLLM())
}

func TestHasEmbeddings(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name   string
		modify func(*Config)
		want   bool
	}{
		{"no credentials", func(c *Config) {}, false},
		{"openai key", func(c *Config) { c.OpenAIAPIKey = "sk-test" }, true},
		{"self-hosted endpoint", func(c *Config) { c.OpenAIBaseURL = "http://localhost:11434/v1" }, true},
		{"disabled", func(c *Config) {
			c.OpenAIAPIKey = "sk-test"
			c.EmbeddingEnabled = false
		}, false},
		{"anthropic only", func(c *Config) {
			c.LLMProvider = ai.BackendAnthropic
			c.AnthropicAPIKey = "ant-test"
		}, false},
		{"anthropic with openai key", func(c *Config) {
			c.LLMProvider = ai.BackendAnthropic
			c.AnthropicAPIKey = "ant-test"
			c.OpenAIAPIKey = "sk-test"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.Equal(t, tt.want, cfg.HasEmbeddings())
		})
	}
}
