package service

import (
	"time"

	"github.com/julz808/educoach-prep-portal-sub001/internal/model"
)

// QuestionView is one question as presented to the student. Correctness
// fields are only filled in review.
type QuestionView struct {
	Position     int
	ID           string
	Prompt       string
	Options      []string
	FreeText     bool
	SubSkill     string
	Difficulty   int
	MaxPoints    float64
	Selected     *int
	Text         string
	Flagged      bool
	CorrectIndex *int
	Correct      *bool
	Explanation  string
	Grade        *model.WritingGrade
}

type SessionView struct {
	ID                   string
	UserID               string
	ProductID            string
	Mode                 model.Mode
	Section              string
	Difficulty           int
	State                State
	CurrentIndex         int
	TotalQuestions       int
	AnsweredQuestions    int
	TimeLimitSeconds     *int
	TimeRemainingSeconds *int
	PendingSaves         []int
	Questions            []QuestionView
	Score                *Score
	Grading              GradingProgress
	CreatedAt            time.Time
}

// Snapshot returns a consistent copy of the attempt's state.
func (a *Attempt) Snapshot() SessionView {
	a.mu.Lock()
	defer a.mu.Unlock()

	review := a.state == StateReview || a.state == StateCompleted
	view := SessionView{
		ID:                   a.id,
		UserID:               a.key.UserID,
		ProductID:            a.key.ProductID,
		Mode:                 a.key.Mode,
		Section:              a.key.Section,
		Difficulty:           a.key.Difficulty,
		State:                a.state,
		CurrentIndex:         a.current,
		TotalQuestions:       len(a.questions),
		TimeLimitSeconds:     a.timeLimit,
		TimeRemainingSeconds: a.remainingLocked(),
		PendingSaves:         a.autosave.Pending(),
		Grading:              a.grading,
		CreatedAt:            a.createdAt,
		Questions:            make([]QuestionView, len(a.questions)),
	}

	for i := range a.questions {
		q := &a.questions[i]
		qv := QuestionView{
			Position:   i,
			ID:         q.ID,
			Prompt:     q.Prompt,
			Options:    append([]string(nil), q.Options...),
			FreeText:   q.IsFreeText(),
			SubSkill:   q.SubSkill,
			Difficulty: q.Difficulty,
			MaxPoints:  q.MaxPoints,
			Text:       a.text[i],
			Flagged:    a.flagged[i],
		}
		if sel, ok := a.answers[i]; ok {
			s := sel
			qv.Selected = &s
		}
		if review {
			qv.Explanation = q.Explanation
			if q.IsFreeText() {
				if g, ok := a.grades[q.ID]; ok {
					grade := g
					qv.Grade = &grade
				}
			} else if q.CorrectIndex != nil {
				correct := *q.CorrectIndex
				qv.CorrectIndex = &correct
				ok := qv.Selected != nil && *qv.Selected == correct
				qv.Correct = &ok
			}
		}
		view.Questions[i] = qv
	}

	if review {
		answers, text := a.copyAnswersLocked()
		score := a.deps.scoring.Score(a.questions, answers, text, a.grades)
		view.Score = &score
		view.AnsweredQuestions = score.AnsweredQuestions
	} else {
		view.AnsweredQuestions = a.deps.scoring.Score(a.questions, a.answers, a.text, nil).AnsweredQuestions
	}
	return view
}
