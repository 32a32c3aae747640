package service

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/julz808/educoach-prep-portal-sub001/config"
	"github.com/rs/zerolog/log"
)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

type anthropicGrader struct {
	client     *anthropic.Client
	model      string
	maxRetries int
}

func NewAnthropicGrader(cfg *config.Config) (WritingGrader, error) {
	if cfg.Grader.AnthropicApiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic grader")
	}
	client := anthropic.NewClient(anthropicopt.WithAPIKey(cfg.Grader.AnthropicApiKey))
	model := cfg.Grader.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	return &anthropicGrader{client: &client, model: model, maxRetries: cfg.Grader.MaxRetries}, nil
}

func (g *anthropicGrader) Name() string { return "anthropic" }

func (g *anthropicGrader) Grade(ctx context.Context, req GradeRequest) (GradeResult, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: 2048,
		System: []anthropic.TextBlockParam{
			{Text: graderSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildGradingPrompt(req, jsonOutputInstruction(req.MaxPoints)))),
		},
	}

	message, err := g.callWithRetry(ctx, params)
	if err != nil {
		return GradeResult{}, err
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}
	if responseText == "" {
		return GradeResult{}, fmt.Errorf("no text content in Anthropic response")
	}
	return decodeGradePayload(responseText, req.MaxPoints)
}

func (g *anthropicGrader) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	attempts := g.maxRetries + 1
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			log.Warn().Dur("backoff", sleepDuration).Int("attempt", attempt+1).Msg("Retrying Anthropic grading call")
			select {
			case <-time.After(sleepDuration):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		message, err := g.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt+1).Msg("Anthropic grading call failed")
	}
	return nil, fmt.Errorf("anthropic API failed after retries: %w", lastErr)
}
