package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/julz808/educoach-prep-portal-sub001/internal/model"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionKey identifies the single in-progress session a user may hold for
// one section of a product in one mode.
type SessionKey struct {
	UserID     string
	ProductID  string
	Mode       model.Mode
	Section    string
	Difficulty int
}

// Progress is the mutable part of a session written by autosave.
type Progress struct {
	CurrentIndex  int
	Answers       map[string]any
	Flagged       []int
	TimeRemaining *int
	TextAnswers   map[string]string
}

type SessionRepository interface {
	Create(ctx context.Context, key SessionKey, totalQuestions int, questionIDs []string, timeLimitSeconds *int) (string, error)
	FindResumable(ctx context.Context, key SessionKey) (*model.Session, error)
	LoadActiveOrCompleted(ctx context.Context, id string) (*model.Session, error)
	SaveProgress(ctx context.Context, id string, p Progress) error
	Complete(ctx context.Context, id string, answers map[string]any, textAnswers map[string]string) error
	ListByUser(ctx context.Context, userID string) ([]model.Session, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func newSessionRow(key SessionKey, totalQuestions int, questionIDs []string, timeLimitSeconds *int) model.Session {
	var remaining *int
	if timeLimitSeconds != nil {
		v := *timeLimitSeconds
		remaining = &v
	}
	return model.Session{
		ID:                   uuid.NewString(),
		UserID:               key.UserID,
		ProductID:            key.ProductID,
		Mode:                 key.Mode,
		Section:              key.Section,
		Difficulty:           key.Difficulty,
		QuestionIDs:          pq.StringArray(questionIDs),
		TotalQuestions:       totalQuestions,
		Answers:              datatypes.JSONMap{},
		AnswerFormat:         model.AnswerFormatOptionText,
		TextAnswers:          datatypes.NewJSONType(map[string]string{}),
		Flagged:              pq.Int64Array{},
		TimeLimitSeconds:     timeLimitSeconds,
		TimeRemainingSeconds: remaining,
		Status:               model.SessionStatusInProgress,
	}
}

// Create inserts a new in-progress row. If one already exists for the key,
// its id is returned instead.
func (r *sessionRepository) Create(ctx context.Context, key SessionKey, totalQuestions int, questionIDs []string, timeLimitSeconds *int) (string, error) {
	row := newSessionRow(key, totalQuestions, questionIDs, timeLimitSeconds)
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		var existing model.Session
		err := r.keyQuery(ctx, key).
			Where("status = ?", model.SessionStatusInProgress).
			First(&existing).Error
		if err != nil {
			return "", fmt.Errorf("session insert conflicted but no active row found: %w", translate(err))
		}
		return existing.ID, nil
	}
	return row.ID, nil
}

// FindResumable returns the in-progress row for key, or the most recently
// completed one when none is in progress.
func (r *sessionRepository) FindResumable(ctx context.Context, key SessionKey) (*model.Session, error) {
	var session model.Session
	err := r.keyQuery(ctx, key).
		Where("status IN ?", []model.SessionStatus{model.SessionStatusInProgress, model.SessionStatusCompleted}).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "CASE WHEN status = ? THEN 0 ELSE 1 END",
			Vars:               []any{model.SessionStatusInProgress},
			WithoutParentheses: true,
		}}).
		Order("updated_at DESC").
		First(&session).Error
	if err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

func (r *sessionRepository) LoadActiveOrCompleted(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

func (r *sessionRepository) SaveProgress(ctx context.Context, id string, p Progress) error {
	res := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("id = ? AND status = ?", id, model.SessionStatusInProgress).
		Updates(map[string]any{
			"current_index":          p.CurrentIndex,
			"answers":                datatypes.JSONMap(p.Answers),
			"answer_format":          model.AnswerFormatOptionText,
			"flagged":                toInt64Array(p.Flagged),
			"time_remaining_seconds": p.TimeRemaining,
			"text_answers":           datatypes.NewJSONType(p.TextAnswers),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Complete marks the row completed with its final answers. Completing an
// already completed row rewrites the same answers and keeps completed_at.
func (r *sessionRepository) Complete(ctx context.Context, id string, answers map[string]any, textAnswers map[string]string) error {
	res := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("id = ? AND status IN ?", id, []model.SessionStatus{model.SessionStatusInProgress, model.SessionStatusCompleted}).
		Updates(map[string]any{
			"status":        model.SessionStatusCompleted,
			"answers":       datatypes.JSONMap(answers),
			"answer_format": model.AnswerFormatOptionText,
			"text_answers":  datatypes.NewJSONType(textAnswers),
			"completed_at":  gorm.Expr("COALESCE(completed_at, ?)", time.Now()),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sessionRepository) ListByUser(ctx context.Context, userID string) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepository) keyQuery(ctx context.Context, key SessionKey) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND mode = ? AND section = ? AND difficulty = ?",
			key.UserID, key.ProductID, key.Mode, key.Section, key.Difficulty)
}

func toInt64Array(xs []int) pq.Int64Array {
	out := make(pq.Int64Array, len(xs))
	for i, x := range xs {
		out[i] = int64(x)
	}
	return out
}
