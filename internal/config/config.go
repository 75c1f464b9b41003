package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// FaceStrategy selects which face comparison implementation serves requests.
type FaceStrategy string

const (
	// FaceStrategyHash compares whole-frame perceptual hashes
	FaceStrategyHash FaceStrategy = "hash"
	// FaceStrategyEmbedding compares detected face descriptors
	FaceStrategyEmbedding FaceStrategy = "embedding"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	MaxRequestBodySize int64

	// OCR
	OCRLanguage string

	// Face comparison
	FaceStrategy        FaceStrategy
	HashBitThreshold    int
	EmbeddingThreshold  float64
	FaceModelsDir       string

	// Classifier artifact location: local path, or a blob name inside
	// ArtifactContainer when Azure storage is configured
	ArtifactPath      string
	ArtifactContainer string

	// Optional Azure blob backend for images and artifacts
	AzureAccountName string
	AzureAccountKey  string

	// Optional Redis cache for classification responses
	RedisAddr     string
	CacheTTL      time.Duration
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureEnabled reports whether blob storage credentials were provided
func (c *Config) AzureEnabled() bool {
	return c.AzureAccountName != "" && c.AzureAccountKey != ""
}

// CacheEnabled reports whether a Redis cache address was provided
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB
		OCRLanguage:        getEnvOrDefault("OCR_LANGUAGE", "eng"),
		FaceStrategy:       FaceStrategy(getEnvOrDefault("FACE_STRATEGY", string(FaceStrategyHash))),
		HashBitThreshold:   int(parseIntOrDefault("HASH_BIT_THRESHOLD", 12)),
		EmbeddingThreshold: parseFloatOrDefault("EMBEDDING_THRESHOLD", 0.55),
		FaceModelsDir:      getEnvOrDefault("FACE_MODELS_DIR", "models"),
		ArtifactPath:       getEnvOrDefault("ARTIFACT_PATH", "doc_classifier.gob"),
		ArtifactContainer:  os.Getenv("ARTIFACT_CONTAINER"),
		AzureAccountName:   os.Getenv("AZURE_ACCOUNT_NAME"),
		AzureAccountKey:    os.Getenv("AZURE_ACCOUNT_KEY"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		CacheTTL:           parseDurationOrDefault("CACHE_TTL", 5*time.Minute),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.ImageFetchTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s)",
			cfg.RequestTimeout, cfg.ImageFetchTimeout)
	}
	switch cfg.FaceStrategy {
	case FaceStrategyHash, FaceStrategyEmbedding:
	default:
		return nil, fmt.Errorf("invalid FACE_STRATEGY: %q (must be %q or %q)",
			cfg.FaceStrategy, FaceStrategyHash, FaceStrategyEmbedding)
	}
	if cfg.HashBitThreshold < 0 || cfg.HashBitThreshold > 64 {
		return nil, fmt.Errorf("HASH_BIT_THRESHOLD must be in [0,64] (got %d)", cfg.HashBitThreshold)
	}
	if cfg.EmbeddingThreshold <= 0 || cfg.EmbeddingThreshold >= 1 {
		return nil, fmt.Errorf("EMBEDDING_THRESHOLD must be in (0,1) (got %f)", cfg.EmbeddingThreshold)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
