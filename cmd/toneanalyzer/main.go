package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"tone-analyzer/internal/app"
	"tone-analyzer/internal/cli"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "toneanalyzer",
		Short:        "Classify the emotional tone of text with an LLM",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := app.Build(errOut)
			if err != nil {
				return err
			}
			return cli.RunInteractive(cmd.Context(), in, out, deps.Analyzer)
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	root.AddCommand(newAnalyzeCmd(out, errOut), newBatchCmd(in, out, errOut), newCheckCmd(out, errOut))
	return root
}

func newAnalyzeCmd(out, errOut io.Writer) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "analyze TEXT...",
		Short: "Analyze a single text given as arguments",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := app.Build(errOut)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := deps.Analyzer.Analyze(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			cli.PrintResult(out, result)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newBatchCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "batch [FILE|-]",
		Short: "Analyze one text per line from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := in
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open batch file: %w", err)
				}
				defer f.Close()
				src = f
			}
			texts, err := cli.ReadTexts(src)
			if err != nil {
				return fmt.Errorf("read batch input: %w", err)
			}

			deps, err := app.Build(errOut)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return cli.RunBatch(ctx, out, deps.Analyzer, texts)
		},
	}
}

func newCheckCmd(out, errOut io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the completion service configuration with a test message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := app.Build(errOut)
			if err != nil {
				fmt.Fprintln(out, "Please check your .env file and ensure all values are correct.")
				return err
			}
			return cli.RunCheck(cmd.Context(), out, deps.Config, deps.LLM)
		},
	}
}
