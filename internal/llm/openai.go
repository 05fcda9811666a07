package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
)

const defaultChatTimeout = 30 * time.Second

// OpenAIOptions selects the endpoint and identity of the completion service.
// With AzureEndpoint set the client talks to Azure OpenAI and Model names the
// deployment.
type OpenAIOptions struct {
	APIKey        string
	Model         string
	BaseURL       string
	AzureEndpoint string
	APIVersion    string
	Timeout       time.Duration
}

// OpenAIClient calls the Chat Completions API of OpenAI or Azure OpenAI.
type OpenAIClient struct {
	model   openai.ChatModel
	timeout time.Duration
	client  *openai.Client
}

// NewOpenAIClient builds a client that makes exactly one attempt per request.
func NewOpenAIClient(opts OpenAIOptions) (*OpenAIClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	model := openai.ChatModel(opts.Model)
	if model == "" {
		if opts.AzureEndpoint != "" {
			return nil, fmt.Errorf("azure deployment required")
		}
		model = openai.ChatModelGPT4oMini
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultChatTimeout
	}

	reqOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if opts.AzureEndpoint != "" {
		if opts.APIVersion == "" {
			return nil, fmt.Errorf("azure api version required")
		}
		reqOpts = append(reqOpts,
			azure.WithEndpoint(opts.AzureEndpoint, opts.APIVersion),
			azure.WithAPIKey(opts.APIKey),
		)
	} else {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
		if opts.BaseURL != "" {
			reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
		}
	}

	cli := openai.NewClient(reqOpts...)
	return &OpenAIClient{
		model:   model,
		timeout: opts.Timeout,
		client:  &cli,
	}, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	if c == nil || c.client == nil {
		return "", &TransportError{Op: "openai", Err: errors.New("nil openai client")}
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    buildMessages(req.System, req.User),
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(reqCtx, params)
	if err != nil {
		return "", &TransportError{Op: "openai chat completion", Err: err}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &TransportError{Op: "openai chat completion", Err: errors.New("no choices returned")}
	}
	return resp.Choices[0].Message.Content, nil
}

func buildMessages(system, user string) []openai.ChatCompletionMessageParamUnion {
	var msgs []openai.ChatCompletionMessageParamUnion
	if system != "" {
		msgs = append(msgs, openai.SystemMessage(system))
	}
	return append(msgs, openai.UserMessage(user))
}
