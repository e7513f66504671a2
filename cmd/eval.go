package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/promptgate/promptgate/internal/config"
	"github.com/promptgate/promptgate/internal/dataset"
	"github.com/promptgate/promptgate/internal/evaluator"
	"github.com/promptgate/promptgate/internal/judge"
	"github.com/promptgate/promptgate/internal/throttle"
)

const defaultDatasetPath = "datasets/bug_to_user_story.jsonl"

// promptEvaluator is the slice of evaluator.Pipeline the eval loop needs.
type promptEvaluator interface {
	Evaluate(ctx context.Context, name string, examples []dataset.Example) (*evaluator.Report, error)
}

func newEvalCmd() *cobra.Command {
	var (
		datasetPath string
		extended    bool
	)

	cmd := &cobra.Command{
		Use:   "eval [prompt...]",
		Short: "Evaluate hub prompts against the dataset and gate on mean score",
		Long: `Pull each named prompt from the hub, run it against the JSONL dataset,
score every answer with the judge model (F1, clarity, precision), derive
helpfulness and correctness, and pass the prompt only when the mean of the
five metrics reaches ` + fmt.Sprintf("%.1f", evaluator.PassThreshold) + `.

The command exits non-zero when any prompt fails the gate or when nothing
was evaluated.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			prompts := args
			if len(prompts) == 0 {
				prompts = []string{"bug_to_user_story_v2"}
			}

			path := datasetPath
			if path == "" {
				path = cfg.DatasetPath
			}
			if path == "" {
				path = defaultDatasetPath
			}

			examples, err := dataset.Load(path)
			if err != nil {
				return err
			}

			client, err := newLLMClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			limiter := throttle.NewLimiter(cfg.Throttle)
			j := judge.New(client, limiter, cfg.EvalModel)
			pipeline := evaluator.New(newHubClient(cfg), client, j, limiter, cfg.Model)
			pipeline.SetExtended(extended)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Provider: %s\n", cfg.Provider)
			fmt.Fprintf(out, "Model: %s\n", cfg.Model)
			fmt.Fprintf(out, "Judge model: %s\n", cfg.EvalModel)
			fmt.Fprintf(out, "Dataset: %s (%d examples)\n", path, len(examples))

			pipeline.SetProgressFunc(func(i, total int, scores map[string]float64) {
				fmt.Fprintf(out, "  [%d/%d] F1:%.2f Clarity:%.2f Precision:%.2f\n",
					i, total, scores["f1_score"], scores["clarity"], scores["precision"])
			})

			allPassed, evaluated := runEval(cmd.Context(), out, pipeline, prompts, examples)

			if evaluated == 0 {
				return fmt.Errorf("no prompts were evaluated")
			}
			if !allPassed {
				return fmt.Errorf("one or more prompts scored below the %.1f threshold", evaluator.PassThreshold)
			}

			fmt.Fprintf(out, "\nAll prompts passed (mean >= %.1f)\n", evaluator.PassThreshold)
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Path to the JSONL dataset (default: $DATASET_PATH or "+defaultDatasetPath+")")
	cmd.Flags().BoolVar(&extended, "extended", false, "Also score the user-story specific metrics (tone, acceptance criteria, format, completeness)")

	return cmd
}

// runEval evaluates each prompt in turn. A failed evaluation (most commonly
// a failed hub pull) is fatal only for that prompt: it is reported, counts
// as not passed, and the remaining prompts still run.
func runEval(ctx context.Context, out io.Writer, p promptEvaluator, prompts []string, examples []dataset.Example) (allPassed bool, evaluated int) {
	allPassed = true

	for _, name := range prompts {
		fmt.Fprintf(out, "\nEvaluating %s...\n", name)

		report, err := p.Evaluate(ctx, name, examples)
		if err != nil {
			slog.Error("prompt evaluation failed", "prompt", name, "error", err)
			fmt.Fprintf(out, "  Error: %v\n", err)
			fmt.Fprintln(out, "  Status: FAILED")
			allPassed = false
			continue
		}

		evaluated++
		printReport(out, report)
		allPassed = allPassed && report.Passed
	}

	return allPassed, evaluated
}

func printReport(out io.Writer, report *evaluator.Report) {
	fmt.Fprintf(out, "\nPrompt: %s\n", report.Prompt)
	fmt.Fprintf(out, "  Helpfulness: %.4f\n", report.Scores.Helpfulness)
	fmt.Fprintf(out, "  Correctness: %.4f\n", report.Scores.Correctness)
	fmt.Fprintf(out, "  F1-Score:    %.4f\n", report.Scores.F1)
	fmt.Fprintf(out, "  Clarity:     %.4f\n", report.Scores.Clarity)
	fmt.Fprintf(out, "  Precision:   %.4f\n", report.Scores.Precision)

	for name, score := range report.Extended {
		fmt.Fprintf(out, "  %s: %.4f\n", name, score)
	}

	fmt.Fprintf(out, "  Mean: %.4f (%d examples evaluated)\n", report.Mean, report.Evaluated)
	if report.Passed {
		fmt.Fprintln(out, "  Status: PASSED")
	} else {
		fmt.Fprintf(out, "  Status: FAILED (required: %.4f)\n", evaluator.PassThreshold)
	}
}
