// Package config loads runtime configuration for the decision-support service.
// Precedence: built-in defaults < optional YAML config file < environment
// variables. Every field has a safe default so the binary runs locally
// without any setup.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime settings.
type Config struct {
	// HTTP
	Host string `yaml:"host"` // HOST — default "0.0.0.0"
	Port int    `yaml:"port"` // PORT — default 8080

	// Storage
	DBPath          string `yaml:"db_path"`           // DB_PATH — default "data/triagent.db"
	PatientSeedPath string `yaml:"patient_seed_path"` // PATIENT_SEED_PATH — optional JSON fixture file

	// LLM
	LLMProvider      string  `yaml:"llm_provider"`       // LLM_PROVIDER — "ollama" (default) or "openai"
	OllamaBaseURL    string  `yaml:"ollama_base_url"`    // OLLAMA_BASE_URL — default "http://localhost:11434"
	OllamaChatModel  string  `yaml:"ollama_chat_model"`  // OLLAMA_CHAT_MODEL — default "llama3.2:3b"
	OllamaEmbedModel string  `yaml:"ollama_embed_model"` // OLLAMA_EMBED_MODEL — default "nomic-embed-text"
	OpenAIAPIKey     string  `yaml:"openai_api_key"`     // OPENAI_API_KEY
	OpenAIChatModel  string  `yaml:"openai_chat_model"`  // OPENAI_CHAT_MODEL — default "gpt-4o-mini"
	OpenAIEmbedModel string  `yaml:"openai_embed_model"` // OPENAI_EMBED_MODEL — default "text-embedding-3-small"
	Temperature      float32 `yaml:"temperature"`        // TEMPERATURE — default 0.1, low for clinical accuracy

	// Agent loop
	MaxToolRounds int `yaml:"max_tool_rounds"` // MAX_TOOL_ROUNDS — default 10

	// Policy: category reported when the final model output cannot be parsed.
	// Defaults to "Routine" for compatibility with the existing deployment;
	// sites that prefer to fail urgent can set "Urgent Referral" here.
	FallbackAssessment string `yaml:"fallback_assessment"` // FALLBACK_ASSESSMENT

	// Auth: client credentials accepted by POST /auth/token. The secret is a
	// bcrypt hash so the plaintext never lives in config or env.
	AuthClientID         string `yaml:"auth_client_id"`          // AUTH_CLIENT_ID
	AuthClientSecretHash string `yaml:"auth_client_secret_hash"` // AUTH_CLIENT_SECRET_HASH
}

const (
	envHost                 = "HOST"
	envPort                 = "PORT"
	envDBPath               = "DB_PATH"
	envPatientSeedPath      = "PATIENT_SEED_PATH"
	envLLMProvider          = "LLM_PROVIDER"
	envOllamaBaseURL        = "OLLAMA_BASE_URL"
	envOllamaChatModel      = "OLLAMA_CHAT_MODEL"
	envOllamaEmbedModel     = "OLLAMA_EMBED_MODEL"
	envOpenAIAPIKey         = "OPENAI_API_KEY"
	envOpenAIChatModel      = "OPENAI_CHAT_MODEL"
	envOpenAIEmbedModel     = "OPENAI_EMBED_MODEL"
	envTemperature          = "TEMPERATURE"
	envMaxToolRounds        = "MAX_TOOL_ROUNDS"
	envFallbackAssessment   = "FALLBACK_ASSESSMENT"
	envAuthClientID         = "AUTH_CLIENT_ID"
	envAuthClientSecretHash = "AUTH_CLIENT_SECRET_HASH"
	envConfigFile           = "CONFIG_FILE"
)

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Host:               "0.0.0.0",
		Port:               8080,
		DBPath:             "data/triagent.db",
		LLMProvider:        "ollama",
		OllamaBaseURL:      "http://localhost:11434",
		OllamaChatModel:    "llama3.2:3b",
		OllamaEmbedModel:   "nomic-embed-text",
		OpenAIChatModel:    "gpt-4o-mini",
		OpenAIEmbedModel:   "text-embedding-3-small",
		Temperature:        0.1,
		MaxToolRounds:      10,
		FallbackAssessment: "Routine",
	}
}

// Load builds the effective configuration: defaults, then the YAML file named
// by CONFIG_FILE (if any), then environment variables.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv(envConfigFile); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyFile overlays settings from a YAML file. Unknown keys are rejected so
// a typo in the config file fails loudly instead of being silently ignored.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setStr(&cfg.Host, envHost)
	setInt(&cfg.Port, envPort)
	setStr(&cfg.DBPath, envDBPath)
	setStr(&cfg.PatientSeedPath, envPatientSeedPath)
	setStr(&cfg.LLMProvider, envLLMProvider)
	setStr(&cfg.OllamaBaseURL, envOllamaBaseURL)
	setStr(&cfg.OllamaChatModel, envOllamaChatModel)
	setStr(&cfg.OllamaEmbedModel, envOllamaEmbedModel)
	setStr(&cfg.OpenAIAPIKey, envOpenAIAPIKey)
	setStr(&cfg.OpenAIChatModel, envOpenAIChatModel)
	setStr(&cfg.OpenAIEmbedModel, envOpenAIEmbedModel)
	setFloat32(&cfg.Temperature, envTemperature)
	setInt(&cfg.MaxToolRounds, envMaxToolRounds)
	setStr(&cfg.FallbackAssessment, envFallbackAssessment)
	setStr(&cfg.AuthClientID, envAuthClientID)
	setStr(&cfg.AuthClientSecretHash, envAuthClientSecretHash)
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat32(dst *float32, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			*dst = float32(f)
		}
	}
}
