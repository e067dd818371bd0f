package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigPath is the default YAML config location.
const ConfigPath = "config.yaml"

// PlaceholderAPIKey is used when no Gemini key is configured. Generation
// calls fail authentication until a real key is provided, which surfaces as
// placeholder content in the stored review, not as a request failure.
const PlaceholderAPIKey = "your-api-key-here"

// FileConfig represents configuration loaded from YAML plus env overrides.
type FileConfig struct {
	Port                     string   `yaml:"port"`
	LogLevel                 string   `yaml:"logLevel"`
	Provider                 string   `yaml:"provider"`
	GeminiAPIKey             string   `yaml:"geminiAPIKey"`
	GenerationModel          string   `yaml:"generationModel"`
	OllamaBaseURL            string   `yaml:"ollamaBaseURL"`
	AITimeoutSeconds         int      `yaml:"aiTimeoutSeconds"`
	DataFile                 string   `yaml:"dataFile"`
	DatabaseURL              string   `yaml:"databaseURL"`
	RedisAddr                string   `yaml:"redisAddr"`
	RedisPassword            string   `yaml:"redisPassword"`
	SubmitRateLimitPerMinute int      `yaml:"submitRateLimitPerMinute"`
	TrustedProxyCIDRs        []string `yaml:"trustedProxyCidrs"`
}

// Load reads config from path (defaults to config.yaml). A missing file is
// not fatal: the service runs on defaults plus environment alone. A .env
// file next to the binary is loaded first as a convenience.
func Load(path string) (FileConfig, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	// Override with environment variables.
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = strings.TrimSpace(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v := os.Getenv("AI_PROVIDER"); v != "" {
		cfg.Provider = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.GeminiAPIKey = v
	}
	if v := os.Getenv("GEMINI_GENERATION_MODEL"); v != "" {
		cfg.GenerationModel = v
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.OllamaBaseURL = v
	}
	if v := os.Getenv("AI_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.AITimeoutSeconds = n
		}
	}
	if v := os.Getenv("REVIEWS_DATA_FILE"); v != "" {
		cfg.DataFile = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("SUBMIT_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.SubmitRateLimitPerMinute = n
		}
	}
	if v := os.Getenv("TRUSTED_PROXY_CIDRS"); v != "" {
		cfg.TrustedProxyCIDRs = splitCSV(v)
	}

	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func defaults() FileConfig {
	return FileConfig{
		Port:             "8000",
		LogLevel:         "info",
		Provider:         "gemini",
		GeminiAPIKey:     PlaceholderAPIKey,
		GenerationModel:  "gemini-pro",
		AITimeoutSeconds: 30,
		DataFile:         "reviews.json",
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml or PORT)")
	}
	switch cfg.Provider {
	case "gemini", "ollama":
	default:
		return fmt.Errorf("config: unknown provider %q (expected gemini or ollama)", cfg.Provider)
	}
	if cfg.GenerationModel == "" {
		return errors.New("config: generationModel is required")
	}
	if cfg.DataFile == "" && cfg.DatabaseURL == "" {
		return errors.New("config: dataFile or databaseURL is required")
	}
	if cfg.SubmitRateLimitPerMinute < 0 {
		return errors.New("config: submitRateLimitPerMinute must be >= 0")
	}
	if cfg.AITimeoutSeconds <= 0 {
		return errors.New("config: aiTimeoutSeconds must be > 0")
	}
	return nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
