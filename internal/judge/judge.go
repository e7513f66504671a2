// Package judge scores candidate answers with a secondary model acting as
// an automated judge. Each metric sends a structured natural-language prompt
// and parses a JSON object from the response. The judge is an opaque scoring
// oracle: metrics that self-average named sub-criteria are trusted as
// returned; only F1 is composed locally from the judge's precision/recall.
package judge

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/promptgate/promptgate/internal/llm"
	"github.com/promptgate/promptgate/internal/throttle"
)

// Result is the outcome of one judge invocation for one example.
// Scores are in [0,1]. Precision/Recall are only set by the F1 judge.
type Result struct {
	Score     float64 `json:"score"`
	Precision float64 `json:"precision,omitempty"`
	Recall    float64 `json:"recall,omitempty"`
	Reasoning string  `json:"reasoning,omitempty"`
}

// Judge evaluates answers using a chat model. All invocations go through
// the shared throttle limiter.
type Judge struct {
	client  llm.Client
	limiter *throttle.Limiter
	model   string
}

// New creates a Judge that scores with the given evaluator model.
func New(client llm.Client, limiter *throttle.Limiter, model string) *Judge {
	return &Judge{client: client, limiter: limiter, model: model}
}

// F1 scores the answer against the reference. The judge returns precision
// and recall independently; the harmonic mean is computed here, not by the
// judge: f1 = 2*p*r/(p+r), or 0 when p+r == 0.
func (j *Judge) F1(ctx context.Context, question, answer, reference string) Result {
	prompt := fmt.Sprintf(f1Prompt, question, reference, answer)

	fields, err := j.invoke(ctx, "f1", prompt)
	if err != nil {
		return failedResult(err)
	}

	precision := floatField(fields, "precision")
	recall := floatField(fields, "recall")

	return Result{
		Score:     round4(F1Score(precision, recall)),
		Precision: round4(precision),
		Recall:    round4(recall),
		Reasoning: stringField(fields, "reasoning"),
	}
}

// Clarity scores organization, language simplicity, unambiguity and
// conciseness. The judge averages the four sub-criteria itself.
func (j *Judge) Clarity(ctx context.Context, question, answer, reference string) Result {
	return j.scoreSingle(ctx, "clarity", fmt.Sprintf(clarityPrompt, question, answer, reference))
}

// Precision scores absence of hallucination, on-topic focus, and factual
// correctness against the reference answer.
func (j *Judge) Precision(ctx context.Context, question, answer, reference string) Result {
	return j.scoreSingle(ctx, "precision", fmt.Sprintf(precisionPrompt, question, reference, answer))
}

// Tone scores professional and empathetic tone (extended metric).
func (j *Judge) Tone(ctx context.Context, input, answer, reference string) Result {
	return j.scoreSingle(ctx, "tone", fmt.Sprintf(tonePrompt, input, answer, reference))
}

// AcceptanceCriteria scores the quality of acceptance criteria in a
// generated user story (extended metric).
func (j *Judge) AcceptanceCriteria(ctx context.Context, input, answer, reference string) Result {
	return j.scoreSingle(ctx, "acceptance_criteria", fmt.Sprintf(acceptanceCriteriaPrompt, input, answer, reference))
}

// StoryFormat scores adherence to the standard user-story template
// (extended metric).
func (j *Judge) StoryFormat(ctx context.Context, input, answer, reference string) Result {
	return j.scoreSingle(ctx, "story_format", fmt.Sprintf(storyFormatPrompt, input, answer, reference))
}

// Completeness scores how fully the answer covers the input, calibrated by
// the reference (extended metric).
func (j *Judge) Completeness(ctx context.Context, input, answer, reference string) Result {
	return j.scoreSingle(ctx, "completeness", fmt.Sprintf(completenessPrompt, input, answer, reference))
}

// F1Score is the harmonic mean of precision and recall, 0 when both are 0.
func F1Score(precision, recall float64) float64 {
	if precision+recall <= 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

// scoreSingle runs a single-score judge prompt and returns its result.
// A failed invocation or unparseable response yields a zero score; judge
// failures must never inflate a metric or abort the batch.
func (j *Judge) scoreSingle(ctx context.Context, metric, prompt string) Result {
	fields, err := j.invoke(ctx, metric, prompt)
	if err != nil {
		return failedResult(err)
	}

	return Result{
		Score:     round4(floatField(fields, "score")),
		Reasoning: stringField(fields, "reasoning"),
	}
}

// invoke sends the judge prompt through the throttle limiter and extracts
// the JSON object from the response.
func (j *Judge) invoke(ctx context.Context, metric, prompt string) (map[string]any, error) {
	resp, err := throttle.Invoke(ctx, j.limiter, "judge:"+metric, func() (*llm.ChatResponse, error) {
		return j.client.ChatCompletion(ctx, llm.ChatRequest{
			Model:       j.model,
			Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
			Temperature: llm.Float64Ptr(0),
		})
	})
	if err != nil {
		slog.Error("judge invocation failed", "metric", metric, "error", err)
		return nil, err
	}

	return ExtractJSON(resp.Content), nil
}

func failedResult(err error) Result {
	return Result{Score: 0, Reasoning: "evaluation failed: " + err.Error()}
}

func floatField(fields map[string]any, name string) float64 {
	switch v := fields[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func stringField(fields map[string]any, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
