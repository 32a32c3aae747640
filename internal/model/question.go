package model

import (
	"time"

	"github.com/lib/pq"
)

// Question is a single item of a section's question set. Multiple-choice
// questions carry Options and a CorrectIndex; free-text questions carry neither.
type Question struct {
	ID           string         `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Product      string         `gorm:"type:varchar(128);not null;index:idx_questions_lookup,priority:1" json:"product"`
	Mode         string         `gorm:"type:varchar(32);not null;index:idx_questions_lookup,priority:2" json:"mode"`
	Section      string         `gorm:"type:varchar(128);not null;index:idx_questions_lookup,priority:3" json:"section"`
	Position     int            `gorm:"not null;default:0" json:"position"`
	Prompt       string         `gorm:"type:text;not null" json:"prompt"`
	Options      pq.StringArray `gorm:"type:text[]" json:"options,omitempty"`
	CorrectIndex *int           `json:"correct_index,omitempty"`
	Explanation  string         `gorm:"type:text" json:"explanation,omitempty"`
	SubSkill     string         `gorm:"type:varchar(128)" json:"sub_skill,omitempty"`
	Difficulty   int            `gorm:"not null;default:0;index" json:"difficulty"`
	MaxPoints    float64        `gorm:"-" json:"max_points"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (q *Question) IsFreeText() bool {
	return len(q.Options) == 0
}
