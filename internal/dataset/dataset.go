// Package dataset loads labeled evaluation examples from JSONL files.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Example is one (input, expected-output) pair from the evaluation dataset.
// Examples are immutable once loaded.
type Example struct {
	Inputs  map[string]string `json:"inputs"`
	Outputs map[string]string `json:"outputs"`
}

// Reference returns the expected answer for the example, or "" when the
// dataset carries none.
func (e Example) Reference() string {
	return e.Outputs["reference"]
}

// Question returns the best-effort input the example poses, trying the
// well-known input keys first. The fallback walks the remaining keys in
// sorted order so repeated runs describe the same example identically.
func (e Example) Question() string {
	for _, key := range []string{"question", "bug_report", "pr_title"} {
		if v, ok := e.Inputs[key]; ok && v != "" {
			return v
		}
	}

	keys := make([]string, 0, len(e.Inputs))
	for k := range e.Inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := e.Inputs[k]; v != "" {
			return v
		}
	}
	return ""
}

// Load reads a newline-delimited JSON dataset. Blank lines are skipped.
// A malformed line aborts the whole load: a partially-read dataset would
// silently change what an evaluation means.
func Load(path string) ([]Example, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	var examples []Example

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var ex Example
		if err := json.Unmarshal([]byte(line), &ex); err != nil {
			return nil, fmt.Errorf("malformed dataset line %d: %w", lineNum, err)
		}
		examples = append(examples, ex)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	return examples, nil
}
