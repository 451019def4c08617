package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ParthivReddyY/ai-interviewer/internal/domain"
)

// offline clears credentials so every command takes its fallback path.
func offline(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("LLM_API_KEY_2", "")
	t.Setenv("REDIS_URL", "")
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestQuestionsCommand(t *testing.T) {
	offline(t)
	out, err := run(t, "", "questions", "--name", "Ada")
	require.NoError(t, err)

	var got struct {
		Questions []domain.Question `json:"questions"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Questions, 6)
	counts := map[domain.Difficulty]int{}
	for _, q := range got.Questions {
		counts[q.Difficulty]++
	}
	assert.Equal(t, map[domain.Difficulty]int{domain.DifficultyEasy: 2, domain.DifficultyMedium: 2, domain.DifficultyHard: 2}, counts)
}

func TestParseResumeCommand_Stdin(t *testing.T) {
	offline(t)
	out, err := run(t, "Jane Doe\njane.doe@example.com\n(555) 123-4567", "parse-resume", "--in", "-")
	require.NoError(t, err)

	var p domain.ResumeProfile
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "jane.doe@example.com", p.Email)
	assert.Equal(t, domain.ParsingMethodFallback, p.ParsingMethod)
}

func TestEvaluateCommand(t *testing.T) {
	offline(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "eval.json")
	body := `{"questions":[{"id":"q1","text":"Explain goroutines and channels.","difficulty":"easy","timeLimitSeconds":20}],` +
		`"answers":[{"questionId":"q1","text":"Goroutines are lightweight threads; channels pass values between them.","timeSpentSeconds":15}]}`
	require.NoError(t, os.WriteFile(in, []byte(body), 0o600))

	out, err := run(t, "", "evaluate", "--in", in)
	require.NoError(t, err)

	var res domain.EvaluationResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.PerAnswer, 1)
	assert.GreaterOrEqual(t, res.OverallScore, 0.0)
	assert.LessOrEqual(t, res.OverallScore, 10.0)
}

func TestEvaluateCommand_InvalidInput(t *testing.T) {
	offline(t)
	_, err := run(t, `{"questions":[],"answers":[]}`, "evaluate", "--in", "-")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestQuickAndSummaryCommands(t *testing.T) {
	offline(t)
	out, err := run(t, `{"question":{"id":"q1","text":"What is a mutex?","difficulty":"easy","timeLimitSeconds":20},"answer":{"questionId":"q1","text":"A lock.","timeSpentSeconds":5}}`,
		"quick", "--in", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"score"`)

	out, err = run(t, `{"answers":[],"finalScore":0}`, "summary", "--in", "-")
	require.NoError(t, err)
	var s map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.NotEmpty(t, s["summary"])
}

func TestMissingInput(t *testing.T) {
	offline(t)
	_, err := run(t, "", "summary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--in is required")

	_, err = run(t, "", "parse-resume", "--in", filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}
