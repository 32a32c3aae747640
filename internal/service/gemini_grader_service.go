package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/julz808/educoach-prep-portal-sub001/config"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

type geminiGrader struct {
	client *genai.GenerativeModel
}

func NewGeminiGrader(cfg *config.Config) (WritingGrader, error) {
	if cfg.Grader.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Gemini grader will be non-functional.")
		return &geminiGrader{client: nil}, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.Grader.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	name := cfg.Grader.Model
	if name == "" {
		name = defaultGeminiModel
	}
	model := client.GenerativeModel(name)
	model.SystemInstruction = genai.NewUserContent(genai.Text(graderSystemPrompt))
	return &geminiGrader{client: model}, nil
}

func (g *geminiGrader) Name() string { return "gemini" }

// parseScoreAndFeedback extracts the "Score:" and "Feedback:" sections of a
// plain-text grading response.
func parseScoreAndFeedback(rawResponse string) (scoreStr string, feedbackStr string, err error) {
	scorePrefix := "Score:"
	feedbackPrefix := "Feedback:"

	scoreIndex := strings.Index(rawResponse, scorePrefix)
	feedbackIndex := strings.Index(rawResponse, feedbackPrefix)

	if scoreIndex == -1 {
		return "", rawResponse, fmt.Errorf("response does not contain 'Score:' prefix. Raw: %s", rawResponse)
	}

	endOfScoreLine := strings.Index(rawResponse[scoreIndex:], "\n")
	if endOfScoreLine == -1 {
		scoreStr = strings.TrimSpace(rawResponse[scoreIndex+len(scorePrefix):])
	} else {
		scoreStr = strings.TrimSpace(rawResponse[scoreIndex+len(scorePrefix) : scoreIndex+endOfScoreLine])
	}

	switch {
	case feedbackIndex > scoreIndex:
		feedbackStr = strings.TrimSpace(rawResponse[feedbackIndex+len(feedbackPrefix):])
	case endOfScoreLine != -1 && len(rawResponse) > scoreIndex+endOfScoreLine+1:
		feedbackStr = strings.TrimSpace(rawResponse[scoreIndex+endOfScoreLine+1:])
	default:
		feedbackStr = "Feedback not found in the expected format after the score."
	}

	// "Score: 18/30" and "Score: 18 out of 30" keep only the number
	if parts := strings.Fields(scoreStr); len(parts) > 0 {
		scoreStr = strings.SplitN(parts[0], "/", 2)[0]
	}
	return scoreStr, feedbackStr, nil
}

func (g *geminiGrader) Grade(ctx context.Context, req GradeRequest) (GradeResult, error) {
	if g.client == nil {
		return GradeResult{}, fmt.Errorf("gemini client not initialized: %w", ErrGraderUnavailable)
	}

	outputFormatInstruction := fmt.Sprintf(`Please provide your evaluation in two distinct parts:
1. Score: A numerical score from 0 to %.0f reflecting the overall quality against all criteria.
2. Feedback: Constructive feedback naming the strongest aspects of the response, the most important errors with a corrected example for each, and one priority for improvement.

Format your response strictly as:
Score: [Your Numerical Score Here]
Feedback:
[Your Feedback Here]
`, req.MaxPoints)

	resp, err := g.client.GenerateContent(ctx, genai.Text(buildGradingPrompt(req, outputFormatInstruction)))
	if err != nil {
		log.Error().Err(err).Str("questionID", req.QuestionID).Msg("Gemini API error during grading")
		return GradeResult{}, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return GradeResult{}, fmt.Errorf("gemini returned no content")
	}

	var fullResponseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			fullResponseText.WriteString(string(txt))
		}
	}
	if fullResponseText.Len() == 0 {
		return GradeResult{}, fmt.Errorf("gemini returned no text content")
	}

	return gradeFromText(fullResponseText.String(), req.MaxPoints)
}

func gradeFromText(raw string, maxPoints float64) (GradeResult, error) {
	scoreStr, feedbackStr, err := parseScoreAndFeedback(raw)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to parse score and feedback from grader response")
		return GradeResult{}, err
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(scoreStr), 64)
	if err != nil {
		return GradeResult{}, fmt.Errorf("could not parse score value (%q) from grader response: %w", scoreStr, err)
	}
	return newGradeResult(score, maxPoints, feedbackStr), nil
}
