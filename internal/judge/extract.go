package judge

import (
	"encoding/json"
	"log/slog"
	"strings"
)

// ExtractJSON pulls a JSON object out of a model response that may wrap it
// in prose or code fences. It tries a direct parse first, then the substring
// between the first '{' and the last '}'. When neither parses it returns a
// zero-score default so a malformed judge response never inflates a metric.
func ExtractJSON(text string) map[string]any {
	var fields map[string]any
	if err := json.Unmarshal([]byte(text), &fields); err == nil {
		return fields
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &fields); err == nil {
			return fields
		}
	}

	excerpt := text
	if len(excerpt) > 200 {
		excerpt = excerpt[:200]
	}
	slog.Warn("could not extract JSON from judge response", "excerpt", excerpt)

	return map[string]any{"score": 0.0, "reasoning": "failed to parse judge response"}
}
