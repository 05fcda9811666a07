package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"tone-analyzer/internal/llm"
	"tone-analyzer/internal/prompt"
	"tone-analyzer/internal/tone"
)

// PipelineConfig holds the sampling parameters sent with every request.
type PipelineConfig struct {
	Temperature float64 `validate:"gte=0,lte=1"`
	MaxTokens   int     `validate:"gt=0"`
}

// DefaultPipelineConfig is deterministic sampling with room for a full reply.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{Temperature: 0, MaxTokens: 1000}
}

// Outcome is the per-item result of a batch run. Exactly one of Result and
// Err is meaningful.
type Outcome struct {
	Index  int
	Text   string
	Result tone.Result
	Err    error
}

// Analyzer runs the prompt, model and parser stages for each text.
// It holds no mutable state and is safe for concurrent use.
type Analyzer struct {
	client       llm.Completer
	cfg          PipelineConfig
	instructions string
	log          *slog.Logger
}

// New validates cfg and prepares the format instructions once.
func New(client llm.Completer, cfg PipelineConfig, log *slog.Logger) (*Analyzer, error) {
	if client == nil {
		return nil, fmt.Errorf("completion client required")
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{
		client:       client,
		cfg:          cfg,
		instructions: tone.FormatInstructions(),
		log:          log,
	}, nil
}

// Config returns the sampling parameters the analyzer was built with.
func (a *Analyzer) Config() PipelineConfig { return a.cfg }

// Analyze classifies the tone of text. Blank text fails with
// tone.ErrEmptyInput before the model is called; transport and parse
// failures are returned as *tone.AnalysisError.
func (a *Analyzer) Analyze(ctx context.Context, text string) (tone.Result, error) {
	if strings.TrimSpace(text) == "" {
		return tone.Result{}, tone.ErrEmptyInput
	}

	p := prompt.Build(text, a.instructions)
	raw, err := a.client.Complete(ctx, llm.Request{
		System:      p.System,
		User:        p.User,
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
	})
	if err != nil {
		return tone.Result{}, &tone.AnalysisError{Err: err}
	}

	result, err := tone.Parse(raw)
	if err != nil {
		a.log.Debug("unparseable model reply", "err", err, "reply", raw)
		return tone.Result{}, &tone.AnalysisError{Err: err}
	}
	return result, nil
}

// AnalyzeEach analyzes texts one at a time, in order, and reports an outcome
// for every input. Once ctx is done the remaining items fail with ctx.Err()
// without reaching the model.
func (a *Analyzer) AnalyzeEach(ctx context.Context, texts []string) []Outcome {
	outcomes := make([]Outcome, len(texts))
	for i, text := range texts {
		outcomes[i] = Outcome{Index: i, Text: text}
		if err := ctx.Err(); err != nil {
			outcomes[i].Err = err
			continue
		}
		a.log.Debug("analyzing text", "item", i+1, "total", len(texts))
		result, err := a.Analyze(ctx, text)
		if err != nil {
			a.log.Warn("batch item failed", "item", i+1, "total", len(texts), "err", err)
			outcomes[i].Err = err
			continue
		}
		outcomes[i].Result = result
	}
	return outcomes
}

// AnalyzeMany returns the results of the items that succeeded, in input
// order. Failed items are logged and left out.
func (a *Analyzer) AnalyzeMany(ctx context.Context, texts []string) []tone.Result {
	return lo.FilterMap(a.AnalyzeEach(ctx, texts), func(o Outcome, _ int) (tone.Result, bool) {
		return o.Result, o.Err == nil
	})
}
