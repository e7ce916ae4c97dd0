package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"

	"github.com/hypermemo/hypermemo/internal/repo"
)

type Config struct {
	Port                int                 `json:"port"`
	CORSOrigins         []string            `json:"cors_origins"`
	AskRateLimitSeconds int                 `json:"ask_rate_limit_seconds"`
	LogConfig           logger.LogConfig    `json:"log_config"`
	Auth                AuthConfig          `json:"auth"`
	DB                  repo.DatabaseConfig `json:"db"`
	AI                  AIConfig            `json:"ai"`
	Jobs                JobsConfig          `json:"jobs"`
}

type AuthConfig struct {
	JWTSecret string `json:"jwt_secret"`
	// Disable skips token verification and attributes every request to
	// AnonUserID. Local development only.
	Disable    bool   `json:"disable"`
	AnonUserID string `json:"anon_user_id"`
}

type AIConfig struct {
	Provider      string         `json:"provider"`
	GenerateModel string         `json:"generate_model"`
	EmbedModel    string         `json:"embed_model"`
	Timeout       int            `json:"timeout"`
	OpenAI        OpenAISettings `json:"openai"`
	Vertex        VertexSettings `json:"vertex"`
}

type OpenAISettings struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
}

type VertexSettings struct {
	Project  string `json:"project"`
	Location string `json:"location"`
}

type JobsConfig struct {
	// EmbeddingBackfillCron re-embeds bookmarks stored without a vector.
	EmbeddingBackfillCron  string `json:"embedding_backfill_cron"`
	EmbeddingBackfillBatch int    `json:"embedding_backfill_batch"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyEnvOverrides()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.AI.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.AI.OpenAI.BaseURL = v
	}
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		c.AI.Vertex.Project = v
	}
	if v := os.Getenv("VERTEX_LOCATION"); v != "" {
		c.AI.Vertex.Location = v
	}
}

func (c *Config) validate() error {
	if c.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if !c.Auth.Disable && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Auth.AnonUserID == "" {
		c.Auth.AnonUserID = "dev-anon"
	}
	if c.LogConfig.Level == "" {
		c.LogConfig.Level = "info"
	}
	if c.AskRateLimitSeconds < 0 {
		return fmt.Errorf("ask_rate_limit_seconds must not be negative")
	}
	if c.Jobs.EmbeddingBackfillBatch == 0 {
		c.Jobs.EmbeddingBackfillBatch = 20
	}
	switch c.AI.Provider {
	case "", "openai":
		c.AI.Provider = "openai"
		if c.AI.GenerateModel == "" {
			c.AI.GenerateModel = "gpt-4o"
		}
		if c.AI.EmbedModel == "" {
			c.AI.EmbedModel = "text-embedding-3-small"
		}
	case "vertex":
		if c.AI.Vertex.Project == "" {
			return fmt.Errorf("ai.vertex.project is required for the vertex provider")
		}
		if c.AI.Vertex.Location == "" {
			c.AI.Vertex.Location = "asia-northeast1"
		}
		if c.AI.GenerateModel == "" {
			c.AI.GenerateModel = "gemini-1.5-pro-latest"
		}
		if c.AI.EmbedModel == "" {
			c.AI.EmbedModel = "text-embedding-004"
		}
	default:
		return fmt.Errorf("ai.provider must be openai or vertex")
	}
	return nil
}
