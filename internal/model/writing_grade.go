package model

import "time"

// WritingGrade is the immutable result of grading one free-text answer.
type WritingGrade struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	SessionID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_writing_grades_session_question,priority:1" json:"session_id"`
	QuestionID   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_writing_grades_session_question,priority:2" json:"question_id"`
	UserID       string    `gorm:"type:varchar(64);not null;index" json:"user_id"`
	EarnedPoints float64   `gorm:"not null" json:"earned_points"`
	MaxPoints    float64   `gorm:"not null" json:"max_points"`
	Percentage   int       `gorm:"not null" json:"percentage"`
	Feedback     string    `gorm:"type:text" json:"feedback,omitempty"`
	Provider     string    `gorm:"type:varchar(32)" json:"provider,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
