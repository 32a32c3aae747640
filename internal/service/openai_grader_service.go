package service

import (
	"context"
	"fmt"

	"github.com/julz808/educoach-prep-portal-sub001/config"
	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

type openAIGrader struct {
	client *openai.Client
	model  string
}

func NewOpenAIGrader(cfg *config.Config) (WritingGrader, error) {
	if cfg.Grader.OpenAIApiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai grader")
	}
	clientCfg := openai.DefaultConfig(cfg.Grader.OpenAIApiKey)
	if cfg.Grader.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.Grader.OpenAIBaseURL
	}
	model := cfg.Grader.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &openAIGrader{client: openai.NewClientWithConfig(clientCfg), model: model}, nil
}

func (g *openAIGrader) Name() string { return "openai" }

func (g *openAIGrader) Grade(ctx context.Context, req GradeRequest) (GradeResult, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: graderSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildGradingPrompt(req, jsonOutputInstruction(req.MaxPoints))},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return GradeResult{}, fmt.Errorf("openai grading call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return GradeResult{}, fmt.Errorf("no choices in OpenAI response")
	}
	return decodeGradePayload(resp.Choices[0].Message.Content, req.MaxPoints)
}
