// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Provider credential lookup (a missing key is reported per query,
//   not at startup)

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/askpdf/askpdf/llm"
)

// Settings holds all application configuration.
type Settings struct {
	LLM    LLMConfig
	Server ServerConfig
}

// LLMConfig holds generation provider configuration.
type LLMConfig struct {
	Provider    string
	Model       string
	APIKey      string // "" when the credential is absent
	MaxTokens   uint32
	Temperature float32
}

// ServerConfig holds HTTP server and document configuration.
type ServerConfig struct {
	Addr         string
	DocumentPath string
	DataDir      string
	HistoryDB    string // "" keeps history in memory only
}

// New creates settings for the specified provider, loading values from
// environment variables. Returns an error if the provider is unknown or
// environment variables contain invalid values. A missing API key is
// not an error here: the pipeline reports it per query.
func New(provider string) (Settings, error) {
	canonical := llm.Normalize(provider)
	keyEnv := llm.APIKeyEnv(canonical)
	if keyEnv == "" {
		return Settings{}, fmt.Errorf("unknown provider: %q", provider)
	}

	maxTokens, err := getEnvUint32("LLM_MAX_TOKENS", 4096)
	if err != nil {
		return Settings{}, err
	}

	temperature, err := getEnvFloat32("LLM_TEMPERATURE", 0.7)
	if err != nil {
		return Settings{}, err
	}

	model := os.Getenv("LLM_MODEL")
	if model == "" {
		model = llm.DefaultModel(canonical)
	}

	return Settings{
		LLM: LLMConfig{
			Provider:    canonical,
			Model:       model,
			APIKey:      os.Getenv(keyEnv),
			MaxTokens:   maxTokens,
			Temperature: temperature,
		},
		Server: ServerConfig{
			Addr:         getEnvString("ASKPDF_ADDR", ":8000"),
			DocumentPath: getEnvString("ASKPDF_PDF", "sample.pdf"),
			DataDir:      getEnvString("ASKPDF_DATA_DIR", "data"),
			HistoryDB:    os.Getenv("ASKPDF_HISTORY_DB"),
		},
	}, nil
}

func getEnvString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvUint32(key string, fallback uint32) (uint32, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return uint32(parsed), nil
}

func getEnvFloat32(key string, fallback float32) (float32, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return float32(parsed), nil
}
