package service

import (
	"context"
	"fmt"

	"github.com/julz808/educoach-prep-portal-sub001/internal/catalog"
	"github.com/julz808/educoach-prep-portal-sub001/internal/model"
	"github.com/julz808/educoach-prep-portal-sub001/internal/repository"
	"github.com/rs/zerolog/log"
)

type QuestionProvider interface {
	// LoadQuestions returns the ordered question list with MaxPoints set.
	// It returns ErrQuestionsNotFound when the section has none.
	LoadQuestions(ctx context.Context, productID string, mode model.Mode, section string, difficulty int) ([]model.Question, error)
	// LoadByIDs returns the questions with the given ids in that order.
	LoadByIDs(ctx context.Context, productID string, ids []string) ([]model.Question, error)
}

type questionProvider struct {
	repo    repository.QuestionRepository
	catalog *catalog.Catalog
}

func NewQuestionProvider(repo repository.QuestionRepository, cat *catalog.Catalog) QuestionProvider {
	return &questionProvider{repo: repo, catalog: cat}
}

func (p *questionProvider) LoadQuestions(ctx context.Context, productID string, mode model.Mode, section string, difficulty int) ([]model.Question, error) {
	product, err := p.catalog.CanonicalProduct(productID)
	if err != nil {
		return nil, err
	}
	writingMax, err := p.catalog.WritingMaxPoints(productID)
	if err != nil {
		return nil, err
	}

	questions, err := p.repo.FindForSection(ctx, product, mode, section, difficulty)
	if err != nil {
		log.Error().Err(err).Str("product", product).Str("section", section).Msg("LoadQuestions: query failed")
		return nil, fmt.Errorf("load questions for %s/%s: %w", product, section, err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: %s/%s (%s)", ErrQuestionsNotFound, product, section, mode)
	}

	assignMaxPoints(questions, writingMax)
	return questions, nil
}

func (p *questionProvider) LoadByIDs(ctx context.Context, productID string, ids []string) ([]model.Question, error) {
	writingMax, err := p.catalog.WritingMaxPoints(productID)
	if err != nil {
		return nil, err
	}
	questions, err := p.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load questions by id: %w", err)
	}
	ordered, err := orderByIDs(questions, ids)
	if err != nil {
		return nil, err
	}
	assignMaxPoints(ordered, writingMax)
	return ordered, nil
}

func assignMaxPoints(questions []model.Question, writingMax int) {
	for i := range questions {
		if questions[i].IsFreeText() {
			questions[i].MaxPoints = float64(writingMax)
		} else {
			questions[i].MaxPoints = MultipleChoicePoints
		}
	}
}

// orderByIDs arranges questions in the order recorded on a session row.
func orderByIDs(questions []model.Question, ids []string) ([]model.Question, error) {
	byID := make(map[string]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	ordered := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		q, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: question %s", ErrQuestionSetChanged, id)
		}
		ordered = append(ordered, q)
	}
	return ordered, nil
}
