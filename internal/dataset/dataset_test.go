package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "examples.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeDataset(t, `{"inputs": {"question": "What are the opening hours?"}, "outputs": {"reference": "Mon-Fri 9-18"}}

{"inputs": {"bug_report": "cart button broken"}, "outputs": {"reference": "As a customer..."}}
`)

	examples, err := Load(path)
	require.NoError(t, err)
	require.Len(t, examples, 2)

	assert.Equal(t, "What are the opening hours?", examples[0].Question())
	assert.Equal(t, "Mon-Fri 9-18", examples[0].Reference())
	assert.Equal(t, "cart button broken", examples[1].Question())
}

func TestLoadSkipsBlankLines(t *testing.T) {
	path := writeDataset(t, "\n\n{\"inputs\": {\"question\": \"q\"}, \"outputs\": {}}\n\n")

	examples, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, examples, 1)
}

func TestLoadMalformedLineFailsWholeFile(t *testing.T) {
	path := writeDataset(t, `{"inputs": {"question": "ok"}, "outputs": {}}
{not json}
{"inputs": {"question": "never reached"}, "outputs": {}}
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.jsonl"))
	require.Error(t, err)
}

func TestQuestionFallback(t *testing.T) {
	ex := Example{Inputs: map[string]string{"custom_field": "value"}}
	assert.Equal(t, "value", ex.Question())

	empty := Example{Inputs: map[string]string{}}
	assert.Empty(t, empty.Question())
}

func TestQuestionFallbackIsDeterministic(t *testing.T) {
	ex := Example{Inputs: map[string]string{
		"zeta":  "last",
		"alpha": "first",
		"mid":   "middle",
	}}

	for range 20 {
		assert.Equal(t, "first", ex.Question())
	}
}

func TestQuestionPrefersWellKnownKeys(t *testing.T) {
	ex := Example{Inputs: map[string]string{
		"question": "the question",
		"other":    "noise",
	}}
	assert.Equal(t, "the question", ex.Question())
}
