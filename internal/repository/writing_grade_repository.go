package repository

import (
	"context"

	"github.com/julz808/educoach-prep-portal-sub001/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WritingGradeRepository interface {
	// Create stores grade unless one exists for its (session, question);
	// created reports whether this call inserted it.
	Create(ctx context.Context, grade *model.WritingGrade) (created bool, err error)
	FindBySession(ctx context.Context, sessionID string) ([]model.WritingGrade, error)
}

type writingGradeRepository struct {
	db *gorm.DB
}

func NewWritingGradeRepository(db *gorm.DB) WritingGradeRepository {
	return &writingGradeRepository{db: db}
}

func (r *writingGradeRepository) Create(ctx context.Context, grade *model.WritingGrade) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "question_id"}},
			DoNothing: true,
		}).
		Create(grade)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *writingGradeRepository) FindBySession(ctx context.Context, sessionID string) ([]model.WritingGrade, error) {
	var grades []model.WritingGrade
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("id ASC").Find(&grades).Error
	return grades, err
}
