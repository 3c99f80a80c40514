// Package config loads service settings from file, environment and .env.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime settings.
type Config struct {
	ServerAddr     string        `mapstructure:"server_addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	SanitizeHTML   bool          `mapstructure:"sanitize_html"`
	LLM            LLMConfig     `mapstructure:"llm"`
	Log            LogConfig     `mapstructure:"log"`
}

// LLMConfig 上游模型配置；api_key 为空时从 api_key_env 指定的环境变量读取。
type LLMConfig struct {
	Provider       string `mapstructure:"provider"`
	TextModel      string `mapstructure:"text_model"`
	ImageModel     string `mapstructure:"image_model"`
	APIKey         string `mapstructure:"api_key"`
	APIKeyEnv      string `mapstructure:"api_key_env"`
	BaseURL        string `mapstructure:"base_url"`
	ThinkingBudget int    `mapstructure:"thinking_budget"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
	JSON  bool   `mapstructure:"json"`
}

const (
	ProviderGemini   = "gemini"
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderMock     = "mock"

	EnvPrefix = "LESSON_PREP"
)

// fallbackKeyEnv is consulted when the configured key variable is unset.
const fallbackKeyEnv = "GEMINI_API_KEY"

var providerDefaults = map[string][2]string{
	ProviderGemini:   {"gemini-2.5-flash", "gemini-2.5-flash-image"},
	ProviderOpenAI:   {"gpt-4o-mini-search-preview", "dall-e-3"},
	ProviderDeepSeek: {"deepseek-chat", ""},
	ProviderMock:     {"mock", "mock"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_addr", ":8080")
	v.SetDefault("request_timeout", "120s")
	v.SetDefault("session_ttl", "30m")
	v.SetDefault("sanitize_html", true)
	v.SetDefault("llm.provider", ProviderGemini)
	v.SetDefault("llm.text_model", "")
	v.SetDefault("llm.image_model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.api_key_env", "API_KEY")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.thinking_budget", 1024)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.json", false)
}

// Load reads path (JSON or YAML by extension) when given, otherwise looks for
// config.{json,yaml} in ./config and the working directory. A missing file is not an error.
// Env vars LESSON_PREP_<KEY> override file values; .env is loaded first.
func Load(path string) (Config, error) {
	// .env 可选，缺失时直接用系统环境变量。
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) finalize() error {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	defaults, ok := providerDefaults[c.LLM.Provider]
	if !ok {
		return fmt.Errorf("llm provider %s not supported", c.LLM.Provider)
	}
	if c.LLM.TextModel == "" {
		c.LLM.TextModel = defaults[0]
	}
	if c.LLM.ImageModel == "" {
		c.LLM.ImageModel = defaults[1]
	}
	// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url。
	if c.LLM.Provider == ProviderDeepSeek && c.LLM.BaseURL == "" {
		return errors.New("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
	}
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = ResolveAPIKey(c.LLM.APIKeyEnv)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session_ttl must be positive")
	}
	if c.LLM.ThinkingBudget <= 0 {
		return errors.New("llm.thinking_budget must be positive")
	}
	return nil
}

// ResolveAPIKey reads the credential from envName, falling back to GEMINI_API_KEY.
func ResolveAPIKey(envName string) string {
	if envName != "" {
		if v := strings.TrimSpace(os.Getenv(envName)); v != "" {
			return v
		}
	}
	return strings.TrimSpace(os.Getenv(fallbackKeyEnv))
}
