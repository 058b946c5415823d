// Package config loads tripweaver configuration from the environment and
// an optional YAML config file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LLM provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
	ProviderBedrock   = "bedrock"
)

// DashScope exposes an OpenAI-compatible endpoint; it is the default
// backend because qwen-plus is the model the prompts were tuned against.
const defaultOpenAIBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"

// Config holds all configuration values.
type Config struct {
	// LLM backend
	LLMProvider     string
	LLMModel        string
	LLMAPIKey       string
	LLMBaseURL      string
	AnthropicAPIKey string
	OllamaHost      string

	// Amap (geocoding + routing)
	AmapAPIKey  string
	AmapBaseURL string

	// Tavily (web search)
	TavilyAPIKey string

	// Map artifact
	MapOutputFile string

	// Agent loop
	MaxIterations int

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// fileConfig mirrors the optional YAML config file. Environment variables
// take precedence over every field here.
type fileConfig struct {
	Provider      string `yaml:"provider"`
	Model         string `yaml:"model"`
	OllamaHost    string `yaml:"ollama_host"`
	MapOutputFile string `yaml:"map_output_file"`
	MaxIterations int    `yaml:"max_iterations"`
	LogFile       string `yaml:"log_file"`
	LogLevel      string `yaml:"log_level"`
}

// Load reads configuration from the optional config file and environment
// variables. Defaults match the original assistant's behavior.
func Load() Config {
	fc := loadFile()

	return Config{
		LLMProvider:     getEnv("TRIPWEAVER_LLM_PROVIDER", orDefault(fc.Provider, ProviderOpenAI)),
		LLMModel:        getEnv("TRIPWEAVER_LLM_MODEL", orDefault(fc.Model, "qwen-plus")),
		LLMAPIKey:       getEnv("DASHSCOPE_API_KEY", ""),
		LLMBaseURL:      getEnv("TRIPWEAVER_LLM_BASE_URL", defaultOpenAIBaseURL),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OllamaHost:      getEnv("OLLAMA_HOST", orDefault(fc.OllamaHost, "http://localhost:11434")),

		AmapAPIKey:  getEnv("AMAP_API_KEY", ""),
		AmapBaseURL: getEnv("AMAP_BASE_URL", "https://restapi.amap.com/v3"),

		TavilyAPIKey: getEnv("TAVILY_API_KEY", ""),

		MapOutputFile: getEnv("TRIPWEAVER_MAP_FILE", orDefault(fc.MapOutputFile, "trip_map.html")),

		MaxIterations: getEnvInt("TRIPWEAVER_MAX_ITERATIONS", orDefaultInt(fc.MaxIterations, 100)),

		LogFile:  getEnv("TRIPWEAVER_LOG_FILE", orDefault(fc.LogFile, "/tmp/tripweaver.log")),
		LogLevel: parseLogLevel(getEnv("TRIPWEAVER_LOG_LEVEL", orDefault(fc.LogLevel, "INFO"))),
	}
}

// Validate checks that every required credential is present. The error
// names the missing credential so startup failures are actionable.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.LLMAPIKey == "" {
			return fmt.Errorf("missing credential DASHSCOPE_API_KEY (required for provider %q)", c.LLMProvider)
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("missing credential ANTHROPIC_API_KEY (required for provider %q)", c.LLMProvider)
		}
	case ProviderOllama, ProviderBedrock:
		// Ollama is unauthenticated; Bedrock uses the ambient AWS credential chain.
	default:
		return fmt.Errorf("unsupported LLM provider: %s", c.LLMProvider)
	}

	if c.AmapAPIKey == "" {
		return fmt.Errorf("missing credential AMAP_API_KEY")
	}
	if c.TavilyAPIKey == "" {
		return fmt.Errorf("missing credential TAVILY_API_KEY")
	}
	return nil
}

// loadFile reads ~/.config/tripweaver/config.yaml if it exists.
func loadFile() fileConfig {
	var fc fileConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return fc
	}

	data, err := os.ReadFile(filepath.Join(home, ".config", "tripweaver", "config.yaml"))
	if err != nil {
		return fc
	}

	if err := yaml.Unmarshal(data, &fc); err != nil {
		slog.Warn("ignoring malformed config file", "error", err)
		return fileConfig{}
	}
	return fc
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return defaultVal
}

func orDefault(val, defaultVal string) string {
	if val != "" {
		return val
	}
	return defaultVal
}

func orDefaultInt(val, defaultVal int) int {
	if val > 0 {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
