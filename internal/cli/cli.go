// Package cli implements the terminal surface: the interactive loop, batch
// runs over line-delimited input and the connection self-check.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/samber/lo"

	"tone-analyzer/internal/analyzer"
	"tone-analyzer/internal/config"
	"tone-analyzer/internal/llm"
	"tone-analyzer/internal/tone"
)

const (
	rule          = "------------------------------"
	maxLineLength = 1 << 20
	checkMessage  = "Hello! This is a test message."
)

var quitWords = []string{"quit", "exit", "q"}

// Analyzer is the single-item pipeline used by the interactive loop.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (tone.Result, error)
}

// BatchAnalyzer runs the pipeline over many texts and reports every outcome.
type BatchAnalyzer interface {
	AnalyzeEach(ctx context.Context, texts []string) []analyzer.Outcome
}

// IsQuit reports whether line asks to leave the interactive loop.
func IsQuit(line string) bool {
	return lo.Contains(quitWords, strings.ToLower(strings.TrimSpace(line)))
}

// RunInteractive reads one text per line from in and prints each analysis to
// out until a quit word or end of input. Analysis failures are reported and
// the loop continues.
func RunInteractive(ctx context.Context, in io.Reader, out io.Writer, a Analyzer) error {
	fmt.Fprintln(out, color.Bold.Sprint("Simple Tone Analyzer"))
	fmt.Fprintln(out, strings.Repeat("=", len(rule)))
	fmt.Fprintln(out, "Enter text to analyze (or 'quit' to exit)")

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for {
		fmt.Fprintf(out, "\n%s\n", rule)
		fmt.Fprint(out, "Enter your text: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Goodbye!")
			return scanner.Err()
		}

		text := strings.TrimSpace(scanner.Text())
		if IsQuit(text) {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}
		if text == "" {
			fmt.Fprintln(out, color.Yellow.Sprint("Please enter some text to analyze."))
			continue
		}

		fmt.Fprintln(out, "\nAnalyzing...")
		result, err := a.Analyze(ctx, text)
		if err != nil {
			PrintError(out, err)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			continue
		}
		PrintResult(out, result)
	}
}

// PrintResult writes the fields of r in the interactive layout.
func PrintResult(out io.Writer, r tone.Result) {
	fmt.Fprintln(out, "\nResults:")
	fmt.Fprintf(out, "   Tone: %s\n", toneColor(r.Tone).Sprint(strings.ToUpper(string(r.Tone))))
	fmt.Fprintf(out, "   Confidence: %s\n", FormatConfidence(r.Confidence))
	fmt.Fprintf(out, "   Explanation: %s\n", r.Explanation)
	fmt.Fprintf(out, "   Key Phrases: %s\n", strings.Join(r.KeyPhrases, ", "))
}

// PrintError writes a short, user-facing description of err.
func PrintError(out io.Writer, err error) {
	if errors.Is(err, tone.ErrEmptyInput) {
		fmt.Fprintln(out, color.Yellow.Sprint("Please enter some text to analyze."))
		return
	}
	fmt.Fprintln(out, color.Red.Sprintf("Error: %v", err))
	var perr *tone.ParseError
	if errors.As(err, &perr) {
		for _, f := range perr.Fields {
			fmt.Fprintf(out, "   - %s\n", f)
		}
	}
	fmt.Fprintln(out, "Please try again with different text.")
}

// FormatConfidence renders a 0..1 confidence as a percentage with one decimal.
func FormatConfidence(c float64) string {
	return fmt.Sprintf("%.1f%%", c*100)
}

func toneColor(t tone.Tone) color.Color {
	switch t {
	case tone.Positive:
		return color.Green
	case tone.Negative:
		return color.Red
	default:
		return color.Yellow
	}
}

// ReadTexts returns the non-blank lines of in, trimmed.
func ReadTexts(in io.Reader) ([]string, error) {
	var texts []string
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			texts = append(texts, line)
		}
	}
	return texts, scanner.Err()
}

// ErrAllFailed is returned by RunBatch when no text could be analyzed.
var ErrAllFailed = errors.New("every text failed analysis")

// RunBatch analyzes each text in order and prints the outcome of each.
// It fails only when there was input and none of it succeeded.
func RunBatch(ctx context.Context, out io.Writer, a BatchAnalyzer, texts []string) error {
	if len(texts) == 0 {
		fmt.Fprintln(out, color.Yellow.Sprint("No texts to analyze."))
		return nil
	}

	outcomes := a.AnalyzeEach(ctx, texts)
	failed := 0
	for _, o := range outcomes {
		fmt.Fprintf(out, "\n[%d/%d] %s\n", o.Index+1, len(texts), o.Text)
		if o.Err != nil {
			failed++
			fmt.Fprintln(out, color.Red.Sprintf("Error analyzing text %d: %v", o.Index+1, o.Err))
			continue
		}
		PrintResult(out, o.Result)
	}

	fmt.Fprintf(out, "\nAnalyzed %d of %d texts.\n", len(texts)-failed, len(texts))
	if failed == len(texts) {
		return ErrAllFailed
	}
	return nil
}

// RunCheck prints the resolved connection settings and sends one test
// message to the completion service.
func RunCheck(ctx context.Context, out io.Writer, cfg config.Config, c llm.Completer) error {
	fmt.Fprintf(out, "Provider: %s\n", cfg.LLMProvider)
	switch cfg.LLMProvider {
	case config.ProviderAzure:
		fmt.Fprintf(out, "Endpoint: %s\n", cfg.AzureEndpoint)
		fmt.Fprintf(out, "Deployment: %s\n", cfg.AzureDeployment)
		fmt.Fprintf(out, "API Version: %s\n", cfg.AzureAPIVersion)
	default:
		fmt.Fprintf(out, "Model: %s\n", cfg.LLMModel)
		if cfg.OpenAIBaseURL != "" {
			fmt.Fprintf(out, "Base URL: %s\n", cfg.OpenAIBaseURL)
		}
	}

	reply, err := c.Complete(ctx, llm.Request{
		User:        checkMessage,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		fmt.Fprintln(out, color.Red.Sprintf("Configuration error: %v", err))
		return err
	}
	fmt.Fprintln(out, color.Green.Sprint("Connection successful!"))
	fmt.Fprintf(out, "\nTest response: %s\n", reply)
	return nil
}
