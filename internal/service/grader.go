package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/julz808/educoach-prep-portal-sub001/config"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

var ErrGraderUnavailable = errors.New("writing grader is not configured")

type GradeRequest struct {
	SessionID    string
	UserID       string
	QuestionID   string
	Product      string
	Prompt       string
	ResponseText string
	MaxPoints    float64
}

type GradeResult struct {
	EarnedPoints float64
	MaxPoints    float64
	Percentage   int
	Feedback     string
}

// WritingGrader assesses one free-text response. Calls may fail individually.
type WritingGrader interface {
	Name() string
	Grade(ctx context.Context, req GradeRequest) (GradeResult, error)
}

// NewWritingGrader builds the grader selected by GRADER_PROVIDER, wrapped in
// a rate limiter when GRADER_RATE_PER_MINUTE is set.
func NewWritingGrader(cfg *config.Config) (WritingGrader, error) {
	var (
		grader WritingGrader
		err    error
	)
	switch strings.ToLower(cfg.Grader.Provider) {
	case "gemini", "":
		grader, err = NewGeminiGrader(cfg)
	case "anthropic":
		grader, err = NewAnthropicGrader(cfg)
	case "openai":
		grader, err = NewOpenAIGrader(cfg)
	case "none":
		log.Warn().Msg("NewWritingGrader: grading disabled, free-text answers will score 0")
		grader = unavailableGrader{}
	default:
		return nil, fmt.Errorf("unknown grader provider %q", cfg.Grader.Provider)
	}
	if err != nil {
		return nil, err
	}
	return NewRateLimitedGrader(grader, cfg.Grader.RatePerMinute), nil
}

type unavailableGrader struct{}

func (unavailableGrader) Name() string { return "none" }

func (unavailableGrader) Grade(context.Context, GradeRequest) (GradeResult, error) {
	return GradeResult{}, ErrGraderUnavailable
}

type rateLimitedGrader struct {
	next    WritingGrader
	limiter *rate.Limiter
}

// NewRateLimitedGrader spaces calls to next at perMinute. Non-positive rates
// disable limiting.
func NewRateLimitedGrader(next WritingGrader, perMinute int) WritingGrader {
	if perMinute <= 0 {
		return next
	}
	return &rateLimitedGrader{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60), 1),
	}
}

func (g *rateLimitedGrader) Name() string { return g.next.Name() }

func (g *rateLimitedGrader) Grade(ctx context.Context, req GradeRequest) (GradeResult, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return GradeResult{}, fmt.Errorf("grader rate limit: %w", err)
	}
	return g.next.Grade(ctx, req)
}

// newGradeResult clamps earned into [0, max] and derives the percentage.
func newGradeResult(earned, max float64, feedback string) GradeResult {
	if earned > max {
		earned = max
	}
	if earned < 0 {
		earned = 0
	}
	return GradeResult{
		EarnedPoints: earned,
		MaxPoints:    max,
		Percentage:   Percentage(earned, max),
		Feedback:     strings.TrimSpace(feedback),
	}
}

const graderSystemPrompt = "You are an experienced Australian selective-entry and scholarship exam marker. " +
	"You assess student writing fairly and consistently against the marking criteria and give feedback a student aged 9 to 15 can act on."

// buildGradingPrompt describes the task, the criteria and the response.
// outputInstruction tells the model how to format its answer.
func buildGradingPrompt(req GradeRequest, outputInstruction string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Assess the following writing response for the %s test.\n\n", req.Product))
	b.WriteString("Writing Task:\n---\n")
	b.WriteString(req.Prompt)
	b.WriteString("\n---\n\n")
	b.WriteString("Marking criteria:\n")
	b.WriteString("- Ideas: relevance to the task, depth and originality of content.\n")
	b.WriteString("- Structure and Organisation: clear beginning, development and conclusion; paragraphing.\n")
	b.WriteString("- Language: vocabulary, sentence variety, tone suited to the text type.\n")
	b.WriteString("- Conventions: spelling, punctuation and grammar.\n\n")
	b.WriteString("Student's Response:\n---\n")
	b.WriteString(req.ResponseText)
	b.WriteString("\n---\n\n")
	b.WriteString(outputInstruction)
	return b.String()
}
