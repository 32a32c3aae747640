package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in-progress"
	SessionStatusReview     SessionStatus = "review"
	SessionStatusCompleted  SessionStatus = "completed"
)

// AnswerFormatOptionText marks rows whose Answers map holds the selected
// option's text. Older rows (format 0) may hold indices, letters or text.
const AnswerFormatOptionText = 2

// Session is the durable row of one attempt. Answers, TextAnswers and Flagged
// are keyed by position within QuestionIDs, not by question id.
type Session struct {
	ID                   string                                `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID               string                                `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_sessions_active_key,where:status = 'in-progress'" json:"user_id"`
	ProductID            string                                `gorm:"type:varchar(64);not null;uniqueIndex:idx_sessions_active_key,where:status = 'in-progress'" json:"product_id"`
	Mode                 Mode                                  `gorm:"type:varchar(32);not null;uniqueIndex:idx_sessions_active_key,where:status = 'in-progress'" json:"mode"`
	Section              string                                `gorm:"type:varchar(128);not null;uniqueIndex:idx_sessions_active_key,where:status = 'in-progress'" json:"section"`
	Difficulty           int                                   `gorm:"not null;default:0;uniqueIndex:idx_sessions_active_key,where:status = 'in-progress'" json:"difficulty"`
	QuestionIDs          pq.StringArray                        `gorm:"type:text[];not null" json:"question_ids"`
	TotalQuestions       int                                   `gorm:"not null" json:"total_questions"`
	CurrentIndex         int                                   `gorm:"not null;default:0" json:"current_index"`
	Answers              datatypes.JSONMap                     `gorm:"type:jsonb" json:"answers"`
	AnswerFormat         int                                   `gorm:"not null;default:0" json:"answer_format"`
	TextAnswers          datatypes.JSONType[map[string]string] `gorm:"type:jsonb" json:"text_answers"`
	Flagged              pq.Int64Array                         `gorm:"type:integer[]" json:"flagged"`
	TimeLimitSeconds     *int                                  `json:"time_limit_seconds,omitempty"`
	TimeRemainingSeconds *int                                  `json:"time_remaining_seconds,omitempty"`
	Status               SessionStatus                         `gorm:"type:varchar(16);not null;default:'in-progress';index" json:"status"`
	CompletedAt          *time.Time                            `json:"completed_at,omitempty"`
	CreatedAt            time.Time                             `json:"created_at"`
	UpdatedAt            time.Time                             `json:"updated_at"`
}
