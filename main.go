package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lesson_prep_assistant/config"
	"lesson_prep_assistant/generator"
	"lesson_prep_assistant/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "lesson-prep",
	Short: "鲁科版高中物理教学难点备课助手",
	Long: `lesson-prep asks a hosted AI model for a grounded teaching-difficulty analysis of a
physics topic, adds an optional diagram, and exports the result as a Word document.

Run "serve" for the web UI or "generate" to write one document from the command line.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (json/yaml; default ./config/config.*)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logs")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads config and builds the logger and agent shared by all commands.
func bootstrap() (config.Config, *zap.Logger, *generator.Agent, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	logger, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		JSON:    cfg.Log.JSON,
		Verbose: verbose,
	})
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	if cfg.LLM.APIKey == "" && cfg.LLM.Provider != config.ProviderMock {
		logger.Warn("no API key configured; searches will fail until one is set",
			zap.String("provider", cfg.LLM.Provider),
			zap.String("api_key_env", cfg.LLM.APIKeyEnv))
	}

	if cfg.LLM.Provider == config.ProviderDeepSeek {
		logger.Warn("deepseek has no web search grounding; answers will carry no citations")
	}

	text, image, err := buildLLM(cfg.LLM, logger.Named("llm"))
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	opts := []generator.AgentOption{
		generator.WithLogger(logger.Named("generator")),
		generator.WithThinkingBudget(cfg.LLM.ThinkingBudget),
	}
	if !cfg.SanitizeHTML {
		opts = append(opts, generator.WithSanitizer(nil))
	}
	agent, err := generator.NewAgent(text, image, opts...)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, logger, agent, nil
}

func buildLLM(cfg config.LLMConfig, logger *zap.Logger) (generator.TextModel, generator.ImageModel, error) {
	settings := &generator.LLMSettings{
		Provider:   cfg.Provider,
		TextModel:  cfg.TextModel,
		ImageModel: cfg.ImageModel,
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Logger:     logger,
	}
	switch cfg.Provider {
	case config.ProviderGemini:
		g, err := generator.NewGeminiLLMFromConfig(settings)
		if err != nil {
			return nil, nil, err
		}
		return g, g, nil
	case config.ProviderOpenAI, config.ProviderDeepSeek:
		// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url（例如官方/网关地址）。
		if cfg.Provider == config.ProviderDeepSeek && cfg.BaseURL == "" {
			return nil, nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		o, err := generator.NewOpenAILLMFromConfig(settings)
		if err != nil {
			return nil, nil, err
		}
		return o, o, nil
	case config.ProviderMock:
		return generator.MockLLM{}, generator.MockLLM{}, nil
	default:
		return nil, nil, fmt.Errorf("llm provider %s not supported", cfg.Provider)
	}
}
