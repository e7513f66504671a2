// Package evaluator runs hub prompts against a dataset and gates them on
// judge-scored quality metrics.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/promptgate/promptgate/internal/dataset"
	"github.com/promptgate/promptgate/internal/hub"
	"github.com/promptgate/promptgate/internal/judge"
	"github.com/promptgate/promptgate/internal/llm"
	"github.com/promptgate/promptgate/internal/throttle"
)

const (
	// PassThreshold is the minimum mean score a prompt must reach.
	PassThreshold = 0.9

	// maxExamples caps the dataset slice evaluated per prompt. Each example
	// costs one candidate call plus one judge call per metric.
	maxExamples = 10
)

// PromptPuller fetches a prompt by name. Satisfied by *hub.Client.
type PromptPuller interface {
	Pull(ctx context.Context, name string) (*hub.Prompt, error)
}

// ProgressFunc is called after each example finishes scoring.
type ProgressFunc func(exampleIndex, totalExamples int, scores map[string]float64)

// Scores holds the five aggregate metrics a prompt is gated on.
// Helpfulness and correctness are composites of the judge metrics:
// helpfulness = (clarity + precision) / 2, correctness = (f1 + precision) / 2.
type Scores struct {
	Helpfulness float64 `json:"helpfulness"`
	Correctness float64 `json:"correctness"`
	F1          float64 `json:"f1_score"`
	Clarity     float64 `json:"clarity"`
	Precision   float64 `json:"precision"`
}

// Mean averages the five metrics. The pass verdict is taken on this value.
func (s Scores) Mean() float64 {
	return round4((s.Helpfulness + s.Correctness + s.F1 + s.Clarity + s.Precision) / 5)
}

// ExampleResult records one example's generated answer and per-metric scores.
type ExampleResult struct {
	Question  string             `json:"question"`
	Answer    string             `json:"answer"`
	Reference string             `json:"reference"`
	Scores    map[string]float64 `json:"scores,omitempty"`
	Skipped   bool               `json:"skipped,omitempty"`
}

// Report is the outcome of evaluating one prompt against a dataset.
type Report struct {
	Prompt    string             `json:"prompt"`
	Scores    Scores             `json:"scores"`
	Extended  map[string]float64 `json:"extended,omitempty"`
	Examples  []ExampleResult    `json:"examples"`
	Evaluated int                `json:"evaluated"`
	Mean      float64            `json:"mean"`
	Passed    bool               `json:"passed"`
}

// Pipeline evaluates prompts: pull from the hub, generate a candidate answer
// per example, score each answer with the judge, aggregate, and gate.
type Pipeline struct {
	puller    PromptPuller
	candidate llm.Client
	judge     *judge.Judge
	limiter   *throttle.Limiter
	model     string

	extended bool
	progress ProgressFunc
}

// New creates a Pipeline. The limiter paces candidate calls; the judge
// carries its own reference to the same limiter so all traffic shares one
// schedule.
func New(puller PromptPuller, candidate llm.Client, j *judge.Judge, limiter *throttle.Limiter, model string) *Pipeline {
	return &Pipeline{
		puller:    puller,
		candidate: candidate,
		judge:     j,
		limiter:   limiter,
		model:     model,
	}
}

// SetExtended enables the story-specific metrics (tone, acceptance criteria,
// format, completeness). They are reported but never affect the verdict.
func (p *Pipeline) SetExtended(enabled bool) {
	p.extended = enabled
}

// SetProgressFunc sets the per-example progress callback.
func (p *Pipeline) SetProgressFunc(fn ProgressFunc) {
	p.progress = fn
}

// Evaluate pulls the named prompt and scores it against the dataset.
// A failed hub pull aborts the run; a failed candidate call skips that
// example's judges and excludes it from the averages. Judge failures score
// zero and are included, so flaky judges drag the mean down rather than
// silently passing.
func (p *Pipeline) Evaluate(ctx context.Context, promptName string, examples []dataset.Example) (*Report, error) {
	prompt, err := p.puller.Pull(ctx, promptName)
	if err != nil {
		return nil, fmt.Errorf("failed to pull prompt %q: %w", promptName, err)
	}

	if len(examples) > maxExamples {
		slog.Info("capping dataset", "prompt", promptName, "examples", len(examples), "cap", maxExamples)
		examples = examples[:maxExamples]
	}

	report := &Report{
		Prompt:   promptName,
		Examples: make([]ExampleResult, 0, len(examples)),
	}

	var f1s, clarities, precisions []float64
	extendedSums := map[string][]float64{}

	for i, example := range examples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result := p.scoreExample(ctx, prompt, example, extendedSums)
		report.Examples = append(report.Examples, result)

		if result.Skipped {
			continue
		}
		report.Evaluated++
		f1s = append(f1s, result.Scores["f1_score"])
		clarities = append(clarities, result.Scores["clarity"])
		precisions = append(precisions, result.Scores["precision"])

		if p.progress != nil {
			p.progress(i+1, len(examples), result.Scores)
		}
	}

	avgF1 := mean(f1s)
	avgClarity := mean(clarities)
	avgPrecision := mean(precisions)

	report.Scores = Scores{
		Helpfulness: round4((avgClarity + avgPrecision) / 2),
		Correctness: round4((avgF1 + avgPrecision) / 2),
		F1:          round4(avgF1),
		Clarity:     round4(avgClarity),
		Precision:   round4(avgPrecision),
	}
	report.Mean = report.Scores.Mean()
	report.Passed = report.Mean >= PassThreshold

	if p.extended {
		report.Extended = make(map[string]float64, len(extendedSums))
		for name, scores := range extendedSums {
			report.Extended[name] = round4(mean(scores))
		}
	}

	return report, nil
}

// scoreExample generates the candidate answer and runs the judges for one
// example. A candidate failure marks the example skipped.
func (p *Pipeline) scoreExample(ctx context.Context, prompt *hub.Prompt, example dataset.Example, extendedSums map[string][]float64) ExampleResult {
	question := example.Question()
	reference := example.Reference()

	answer, err := p.generate(ctx, prompt, example.Inputs)
	if err != nil {
		slog.Warn("candidate generation failed, skipping example",
			"prompt", prompt.Name, "question", question, "error", err)
		return ExampleResult{Question: question, Reference: reference, Skipped: true}
	}
	if answer == "" {
		slog.Warn("candidate returned empty answer, skipping example",
			"prompt", prompt.Name, "question", question)
		return ExampleResult{Question: question, Reference: reference, Skipped: true}
	}

	f1 := p.judge.F1(ctx, question, answer, reference)
	clarity := p.judge.Clarity(ctx, question, answer, reference)
	precision := p.judge.Precision(ctx, question, answer, reference)

	scores := map[string]float64{
		"f1_score":  f1.Score,
		"clarity":   clarity.Score,
		"precision": precision.Score,
	}

	if p.extended {
		for name, result := range map[string]judge.Result{
			"tone":                p.judge.Tone(ctx, question, answer, reference),
			"acceptance_criteria": p.judge.AcceptanceCriteria(ctx, question, answer, reference),
			"story_format":        p.judge.StoryFormat(ctx, question, answer, reference),
			"completeness":        p.judge.Completeness(ctx, question, answer, reference),
		} {
			scores[name] = result.Score
			extendedSums[name] = append(extendedSums[name], result.Score)
		}
	}

	return ExampleResult{
		Question:  question,
		Answer:    answer,
		Reference: reference,
		Scores:    scores,
	}
}

// generate formats the prompt with the example inputs and invokes the
// candidate model through the throttle limiter.
func (p *Pipeline) generate(ctx context.Context, prompt *hub.Prompt, inputs map[string]string) (string, error) {
	messages, err := prompt.Format(inputs)
	if err != nil {
		return "", err
	}

	resp, err := throttle.Invoke(ctx, p.limiter, "candidate:"+prompt.Name, func() (*llm.ChatResponse, error) {
		return p.candidate.ChatCompletion(ctx, llm.ChatRequest{
			Model:       p.model,
			Messages:    messages,
			Temperature: llm.Float64Ptr(0),
		})
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func mean(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
