package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ErrMissingRequired is returned when a required setting is absent.
var ErrMissingRequired = errors.New("missing required configuration")

// Supported backend identifiers.
const (
	BackendGemini = "gemini"
	BackendOpenAI = "openai"

	CacheBackendFile   = "file"
	CacheBackendSQLite = "sqlite"

	VectorStoreMemory = "memory"
	VectorStoreQdrant = "qdrant"
)

// Config holds all configuration for the application.
type Config struct {
	LLMBackend   string `envconfig:"LLM_BACKEND" default:"gemini"`
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`

	OpenAIAPIKey          string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL         string `envconfig:"OPENAI_BASE_URL"`
	OpenAIEmbeddingModel  string `envconfig:"OPENAI_EMBEDDING_MODEL" default:"text-embedding-3-small"`
	OpenAIGenerationModel string `envconfig:"OPENAI_GENERATION_MODEL" default:"gpt-4o-mini"`

	EmbeddingModel  string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-004"`
	GenerationModel string `envconfig:"GENERATION_MODEL" default:"gemini-2.0-flash"`

	KBPath             string `envconfig:"KB_PATH" default:"knowledge_base"`
	ChunkSize          int    `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap       int    `envconfig:"CHUNK_OVERLAP" default:"200"`
	TopK               int    `envconfig:"TOP_K" default:"15"`
	EmbeddingBatchSize int    `envconfig:"EMBEDDING_BATCH_SIZE" default:"100"`
	EmbeddingDimension int    `envconfig:"EMBEDDING_DIMENSION" default:"768"`

	CacheBackend string `envconfig:"CACHE_BACKEND" default:"file"`
	CacheDir     string `envconfig:"CACHE_DIR" default:".cache"`
	CacheDBPath  string `envconfig:"CACHE_DB_PATH" default:".cache/embeddings.db"`

	VectorStore            string `envconfig:"VECTOR_STORE" default:"memory"`
	QdrantURL              string `envconfig:"QDRANT_URL" default:"http://localhost:6333"`
	QdrantCollectionPrefix string `envconfig:"QDRANT_COLLECTION_PREFIX" default:"grant_kb"`

	GenerationTemperature  float32       `envconfig:"GENERATION_TEMPERATURE" default:"0.5"`
	GenerationMaxTokens    int           `envconfig:"GENERATION_MAX_TOKENS" default:"8000"`
	GenerationTopP         float32       `envconfig:"GENERATION_TOP_P" default:"0.95"`
	GenerationTopK         int           `envconfig:"GENERATION_TOP_K" default:"40"`
	GenerationMaxRetries   int           `envconfig:"GENERATION_MAX_RETRIES" default:"3"`
	GenerationRetryInitial time.Duration `envconfig:"GENERATION_RETRY_INITIAL" default:"1s"`

	MaxContextTokens int `envconfig:"MAX_CONTEXT_TOKENS" default:"1000000"`
	CharsPerToken    int `envconfig:"CHARS_PER_TOKEN" default:"2"`
	MinContextChunks int `envconfig:"MIN_CONTEXT_CHUNKS" default:"10"`
	MaxTrimPasses    int `envconfig:"MAX_TRIM_PASSES" default:"50"`

	OrganizationName string `envconfig:"ORGANIZATION_NAME" default:"the organization"`

	APIPort        string   `envconfig:"API_PORT" default:"8080"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`

	LogLevelName string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads configuration from environment variables and returns a Config struct.
// If a .env file exists in the current directory or one of its parents, it is
// loaded first. Environment variables already set take precedence over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env vars: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	switch c.LLMBackend {
	case BackendGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingRequired)
		}
	case BackendOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingRequired)
		}
	default:
		return fmt.Errorf("LLM_BACKEND must be %q or %q, got %q", BackendGemini, BackendOpenAI, c.LLMBackend)
	}

	if c.KBPath == "" {
		return fmt.Errorf("%w: KB_PATH", ErrMissingRequired)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be greater than 0")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE)")
	}
	if c.TopK <= 0 {
		return fmt.Errorf("TOP_K must be greater than 0")
	}
	if c.EmbeddingBatchSize <= 0 {
		return fmt.Errorf("EMBEDDING_BATCH_SIZE must be greater than 0")
	}
	if c.CharsPerToken <= 0 {
		return fmt.Errorf("CHARS_PER_TOKEN must be greater than 0")
	}

	switch c.CacheBackend {
	case CacheBackendFile, CacheBackendSQLite:
	default:
		return fmt.Errorf("CACHE_BACKEND must be %q or %q, got %q", CacheBackendFile, CacheBackendSQLite, c.CacheBackend)
	}

	switch c.VectorStore {
	case VectorStoreMemory, VectorStoreQdrant:
	default:
		return fmt.Errorf("VECTOR_STORE must be %q or %q, got %q", VectorStoreMemory, VectorStoreQdrant, c.VectorStore)
	}

	if _, err := parseLevel(c.LogLevelName); err != nil {
		return err
	}

	return nil
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevelName)
	return level
}

func parseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", name)
	}
}
