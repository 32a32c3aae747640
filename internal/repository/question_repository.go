package repository

import (
	"context"

	"github.com/julz808/educoach-prep-portal-sub001/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	// FindForSection returns the section's questions in presentation order.
	// A zero difficulty matches every tier.
	FindForSection(ctx context.Context, product string, mode model.Mode, section string, difficulty int) ([]model.Question, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Question, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) FindForSection(ctx context.Context, product string, mode model.Mode, section string, difficulty int) ([]model.Question, error) {
	var questions []model.Question
	query := r.db.WithContext(ctx).Where("product = ? AND mode = ? AND section = ?", product, string(mode), section)
	if difficulty > 0 {
		query = query.Where("difficulty = ?", difficulty)
	}
	if err := query.Order("position ASC").Order("id ASC").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Question, error) {
	var questions []model.Question
	if len(ids) == 0 {
		return questions, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}
