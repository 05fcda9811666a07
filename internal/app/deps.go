package app

import (
	"fmt"
	"io"
	"log/slog"

	"tone-analyzer/internal/analyzer"
	"tone-analyzer/internal/config"
	"tone-analyzer/internal/llm"
	"tone-analyzer/internal/logger"
)

// Deps bundles common runtime dependencies for the entry points.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	LLM      llm.Completer
	Analyzer *analyzer.Analyzer
}

// Build loads config and constructs the shared components, writing logs to
// logOut. Configuration problems surface here, before anything is built.
func Build(logOut io.Writer) (Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return Deps{}, err
	}
	log := logger.NewWithFormat(logOut, cfg.LogLevel, cfg.LogFormat)

	llmClient, err := buildLLM(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	a, err := analyzer.New(llmClient, analyzer.PipelineConfig{
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize analyzer: %w", err)
	}
	return Deps{
		Config:   cfg,
		Log:      log,
		LLM:      llmClient,
		Analyzer: a,
	}, nil
}

func buildLLM(cfg config.Config, log *slog.Logger) (llm.Completer, error) {
	switch cfg.LLMProvider {
	case config.ProviderAzure:
		client, err := llm.NewOpenAIClient(llm.OpenAIOptions{
			APIKey:        cfg.AzureAPIKey,
			Model:         cfg.AzureDeployment,
			AzureEndpoint: cfg.AzureEndpoint,
			APIVersion:    cfg.AzureAPIVersion,
			Timeout:       cfg.RequestTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Azure OpenAI client: %w", err)
		}
		log.Info("using Azure OpenAI LLM client", "endpoint", cfg.AzureEndpoint, "deployment", cfg.AzureDeployment, "api_version", cfg.AzureAPIVersion)
		return client, nil
	case config.ProviderOpenAI:
		client, err := llm.NewOpenAIClient(llm.OpenAIOptions{
			APIKey:  cfg.OpenAIKey,
			Model:   cfg.LLMModel,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.RequestTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		log.Info("using OpenAI LLM client", "model", cfg.LLMModel)
		return client, nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: azure, openai)", cfg.LLMProvider)
	}
}
