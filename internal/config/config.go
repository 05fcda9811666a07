package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	ProviderAzure  = "azure"
	ProviderOpenAI = "openai"
)

// Config holds runtime configuration resolved once at startup.
type Config struct {
	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // "json" or "text"

	// LLM
	LLMProvider    string        `env:"LLM_PROVIDER" envDefault:"azure"` // "azure" (Azure OpenAI) or "openai"
	Temperature    float64       `env:"LLM_TEMPERATURE" envDefault:"0.0"`
	MaxTokens      int           `env:"LLM_MAX_TOKENS" envDefault:"1000"`
	RequestTimeout time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`

	// Azure OpenAI
	AzureAPIKey     string `env:"AZURE_OPENAI_API_KEY"`
	AzureEndpoint   string `env:"AZURE_OPENAI_ENDPOINT"`
	AzureAPIVersion string `env:"AZURE_OPENAI_API_VERSION"`
	AzureDeployment string `env:"AZURE_OPENAI_DEPLOYMENT"`

	// OpenAI
	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	LLMModel      string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`

	// HTTP server
	Port         int `env:"PORT" envDefault:"8080"`
	MaxBatchSize int `env:"MAX_BATCH_SIZE" envDefault:"50"`

	// Queue worker
	QueueURL     string `env:"QUEUE_URL" envDefault:"nats://127.0.0.1:4222"`
	QueueSubject string `env:"QUEUE_SUBJECT" envDefault:"tone.analyze"`
}

// ConfigurationError lists the required variables that were not set.
type ConfigurationError struct {
	Missing []string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("missing required environment variables: %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Load reads an optional .env file, then the environment, and validates the
// result. A missing .env file is not an error.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, &ConfigurationError{Err: fmt.Errorf("load env file: %w", err)}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, &ConfigurationError{Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every variable required by the selected provider is set.
func (c Config) Validate() error {
	type requirement struct{ name, value string }
	var required []requirement
	switch c.LLMProvider {
	case ProviderAzure:
		required = []requirement{
			{"AZURE_OPENAI_API_KEY", c.AzureAPIKey},
			{"AZURE_OPENAI_ENDPOINT", c.AzureEndpoint},
			{"AZURE_OPENAI_API_VERSION", c.AzureAPIVersion},
			{"AZURE_OPENAI_DEPLOYMENT", c.AzureDeployment},
		}
	case ProviderOpenAI:
		required = []requirement{{"OPENAI_API_KEY", c.OpenAIKey}}
	default:
		return &ConfigurationError{Err: fmt.Errorf("invalid LLM_PROVIDER: %q (valid options: azure, openai)", c.LLMProvider)}
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}
