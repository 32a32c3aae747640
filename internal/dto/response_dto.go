package dto

import "time"

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type WritingGradeResponse struct {
	EarnedPoints float64   `json:"earned_points"`
	MaxPoints    float64   `json:"max_points"`
	Percentage   int       `json:"percentage"`
	Feedback     string    `json:"feedback,omitempty"`
	Provider     string    `json:"provider,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type QuestionResponse struct {
	Position   int      `json:"position"`
	ID         string   `json:"id"`
	Prompt     string   `json:"prompt"`
	Options    []string `json:"options,omitempty"`
	FreeText   bool     `json:"free_text"`
	SubSkill   string   `json:"sub_skill,omitempty"`
	Difficulty int      `json:"difficulty"`
	MaxPoints  float64  `json:"max_points"`
	Selected   *int     `json:"selected,omitempty"`
	Text       string   `json:"text,omitempty"`
	Flagged    bool     `json:"flagged"`

	// Review only.
	CorrectIndex *int                  `json:"correct_index,omitempty"`
	Correct      *bool                 `json:"correct,omitempty"`
	Explanation  string                `json:"explanation,omitempty"`
	Grade        *WritingGradeResponse `json:"grade,omitempty" copier:"-"`
}

type ScoreResponse struct {
	TotalQuestions    int     `json:"total_questions"`
	AnsweredQuestions int     `json:"answered_questions"`
	TotalMaxPoints    float64 `json:"total_max_points"`
	EarnedPoints      float64 `json:"earned_points"`
	Percentage        int     `json:"percentage"`
}

type GradingStatusResponse struct {
	Current    int    `json:"current"`
	Total      int    `json:"total"`
	QuestionID string `json:"question_id,omitempty"`
	Done       bool   `json:"done"`
	Message    string `json:"message"`
}

type SessionResponse struct {
	ID                   string                `json:"id"`
	UserID               string                `json:"user_id"`
	ProductID            string                `json:"product_id"`
	Mode                 string                `json:"mode"`
	Section              string                `json:"section"`
	Difficulty           int                   `json:"difficulty"`
	State                string                `json:"state"`
	CurrentIndex         int                   `json:"current_index"`
	TotalQuestions       int                   `json:"total_questions"`
	AnsweredQuestions    int                   `json:"answered_questions"`
	TimeLimitSeconds     *int                  `json:"time_limit_seconds,omitempty"`
	TimeRemainingSeconds *int                  `json:"time_remaining_seconds,omitempty"`
	PendingSaves         []int                 `json:"pending_saves,omitempty"`
	Questions            []QuestionResponse    `json:"questions"`
	Score                *ScoreResponse        `json:"score,omitempty" copier:"-"`
	Grading              GradingStatusResponse `json:"grading" copier:"-"`
	CreatedAt            time.Time             `json:"created_at"`
}

type SubmitResponse struct {
	SessionID string        `json:"session_id"`
	State     string        `json:"state"`
	Score     ScoreResponse `json:"score"`
}

type HostEventResponse struct {
	Delivered int `json:"delivered"`
}

// SessionSummaryResponse is one row of a user's session history.
type SessionSummaryResponse struct {
	ID                   string     `json:"id"`
	ProductID            string     `json:"product_id"`
	Mode                 string     `json:"mode"`
	Section              string     `json:"section"`
	Difficulty           int        `json:"difficulty"`
	Status               string     `json:"status"`
	TotalQuestions       int        `json:"total_questions"`
	CurrentIndex         int        `json:"current_index"`
	TimeRemainingSeconds *int       `json:"time_remaining_seconds,omitempty"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}
