package service

import (
	"context"
	"testing"

	"github.com/julz808/educoach-prep-portal-sub001/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScoreAndFeedback(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		score    string
		feedback string
	}{
		{"plain", "Score: 18\nFeedback:\nGood use of paragraphs.", "18", "Good use of paragraphs."},
		{"fraction", "Score: 18/30\nFeedback: Vary your sentences.", "18", "Vary your sentences."},
		{"out of", "Score: 12 out of 15\nFeedback: Check spelling.", "12", "Check spelling."},
		{"no feedback label", "Score: 9\nStrong opening.", "9", "Strong opening."},
		{"score only", "Score: 4", "4", "Feedback not found in the expected format after the score."},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			score, feedback, err := parseScoreAndFeedback(c.raw)
			require.NoError(t, err)
			assert.Equal(t, c.score, score)
			assert.Equal(t, c.feedback, feedback)
		})
	}

	_, feedback, err := parseScoreAndFeedback("I cannot grade this.")
	assert.Error(t, err)
	assert.Equal(t, "I cannot grade this.", feedback)
}

func TestGradeFromTextClamps(t *testing.T) {
	res, err := gradeFromText("Score: 55\nFeedback: Excellent.", 48)
	require.NoError(t, err)
	assert.Equal(t, 48.0, res.EarnedPoints)
	assert.Equal(t, 100, res.Percentage)

	_, err = gradeFromText("Score: great\nFeedback: x", 48)
	assert.Error(t, err)
}

func TestDecodeGradePayload(t *testing.T) {
	res, err := decodeGradePayload("```json\n{\"score\": 18, \"feedback\": \"Well organised.\"}\n```", 30)
	require.NoError(t, err)
	assert.Equal(t, GradeResult{EarnedPoints: 18, MaxPoints: 30, Percentage: 60, Feedback: "Well organised."}, res)

	for _, raw := range []string{
		`{"score": "18", "feedback": "x"}`,
		`{"score": -1, "feedback": "x"}`,
		`{"feedback": "x"}`,
		`{"score": 3, "feedback": "x", "extra": true}`,
		`Score: 18`,
	} {
		_, err := decodeGradePayload(raw, 30)
		assert.Error(t, err, raw)
	}
}

func TestNewWritingGraderProviders(t *testing.T) {
	cfg := &config.Config{}

	cfg.Grader.Provider = "none"
	g, err := NewWritingGrader(cfg)
	require.NoError(t, err)
	assert.Equal(t, "none", g.Name())
	_, err = g.Grade(context.Background(), GradeRequest{MaxPoints: 30})
	assert.ErrorIs(t, err, ErrGraderUnavailable)

	cfg.Grader.Provider = ""
	g, err = NewWritingGrader(cfg)
	require.NoError(t, err)
	assert.Equal(t, "gemini", g.Name())
	_, err = g.Grade(context.Background(), GradeRequest{MaxPoints: 30})
	assert.ErrorIs(t, err, ErrGraderUnavailable, "gemini without a key cannot grade")

	cfg.Grader.Provider = "anthropic"
	_, err = NewWritingGrader(cfg)
	assert.Error(t, err)

	cfg.Grader.Provider = "openai"
	_, err = NewWritingGrader(cfg)
	assert.Error(t, err)

	cfg.Grader.Provider = "mystery"
	_, err = NewWritingGrader(cfg)
	assert.Error(t, err)
}

func TestRateLimitedGraderPassesThrough(t *testing.T) {
	inner := &fakeGrader{score: 10}
	assert.Same(t, inner, NewRateLimitedGrader(inner, 0))

	g := NewRateLimitedGrader(inner, 600)
	assert.Equal(t, "fake", g.Name())
	res, err := g.Grade(context.Background(), GradeRequest{QuestionID: "q", MaxPoints: 20})
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.EarnedPoints)
	assert.Equal(t, 50, res.Percentage)
}

func TestBuildGradingPrompt(t *testing.T) {
	p := buildGradingPrompt(GradeRequest{Product: "NSW Selective", Prompt: "Describe a storm.", ResponseText: "Rain fell."}, "Reply in JSON.")
	assert.Contains(t, p, "NSW Selective")
	assert.Contains(t, p, "Describe a storm.")
	assert.Contains(t, p, "Rain fell.")
	assert.Contains(t, p, "Reply in JSON.")
}
