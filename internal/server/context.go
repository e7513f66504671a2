package server

import (
	"github.com/promptgate/promptgate/internal/hub"
	"github.com/promptgate/promptgate/internal/judge"
	"github.com/promptgate/promptgate/internal/llm"
	"github.com/promptgate/promptgate/internal/throttle"
)

// ServerContext holds shared dependencies for MCP tool handlers.
type ServerContext struct {
	Hub         *hub.Client
	Candidate   llm.Client
	Judge       *judge.Judge
	Limiter     *throttle.Limiter
	Model       string // candidate model used for generation
	DatasetPath string // default JSONL dataset
	PromptsDir  string // local prompt YAML directory
}
