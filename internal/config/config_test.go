package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"TRIPWEAVER_LLM_PROVIDER", "TRIPWEAVER_LLM_MODEL", "TRIPWEAVER_LLM_BASE_URL",
		"TRIPWEAVER_MAP_FILE", "TRIPWEAVER_MAX_ITERATIONS", "TRIPWEAVER_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, "qwen-plus", cfg.LLMModel)
	assert.Equal(t, defaultOpenAIBaseURL, cfg.LLMBaseURL)
	assert.Equal(t, "trip_map.html", cfg.MapOutputFile)
	assert.Equal(t, 100, cfg.MaxIterations)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TRIPWEAVER_LLM_PROVIDER", "ollama")
	t.Setenv("TRIPWEAVER_LLM_MODEL", "llama3")
	t.Setenv("TRIPWEAVER_MAX_ITERATIONS", "25")
	t.Setenv("TRIPWEAVER_LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, ProviderOllama, cfg.LLMProvider)
	assert.Equal(t, "llama3", cfg.LLMModel)
	assert.Equal(t, 25, cfg.MaxIterations)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadFileFallback(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "tripweaver")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(
		"provider: anthropic\nmodel: claude-sonnet-4-5\nmax_iterations: 40\n"), 0644))

	cfg := Load()
	assert.Equal(t, ProviderAnthropic, cfg.LLMProvider)
	assert.Equal(t, "claude-sonnet-4-5", cfg.LLMModel)
	assert.Equal(t, 40, cfg.MaxIterations)

	// Environment still wins over the file.
	t.Setenv("TRIPWEAVER_LLM_PROVIDER", "openai")
	assert.Equal(t, ProviderOpenAI, Load().LLMProvider)
}

func TestLoadIgnoresMalformedFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "tripweaver")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{not yaml"), 0644))

	cfg := Load()
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
}

func TestValidateNamesMissingCredential(t *testing.T) {
	base := Config{
		LLMProvider:  ProviderOpenAI,
		LLMAPIKey:    "sk-x",
		AmapAPIKey:   "amap-x",
		TavilyAPIKey: "tvly-x",
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "llm key",
			mutate: func(c *Config) { c.LLMAPIKey = "" },
			want:   "DASHSCOPE_API_KEY",
		},
		{
			name:   "amap key",
			mutate: func(c *Config) { c.AmapAPIKey = "" },
			want:   "AMAP_API_KEY",
		},
		{
			name:   "tavily key",
			mutate: func(c *Config) { c.TavilyAPIKey = "" },
			want:   "TAVILY_API_KEY",
		},
		{
			name: "anthropic key",
			mutate: func(c *Config) {
				c.LLMProvider = ProviderAnthropic
				c.AnthropicAPIKey = ""
			},
			want: "ANTHROPIC_API_KEY",
		},
		{
			name:   "unknown provider",
			mutate: func(c *Config) { c.LLMProvider = "skynet" },
			want:   "skynet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateUnauthenticatedProviders(t *testing.T) {
	for _, provider := range []string{ProviderOllama, ProviderBedrock} {
		cfg := Config{
			LLMProvider:  provider,
			AmapAPIKey:   "amap-x",
			TavilyAPIKey: "tvly-x",
		}
		assert.NoError(t, cfg.Validate(), provider)
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("WARNING"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("nonsense"))
}
