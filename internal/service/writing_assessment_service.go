package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/julz808/educoach-prep-portal-sub001/internal/model"
	"github.com/julz808/educoach-prep-portal-sub001/internal/repository"
	"github.com/rs/zerolog/log"
)

// GradingProgress reports where a session's grading run is.
type GradingProgress struct {
	Current    int
	Total      int
	QuestionID string
	Done       bool
}

func (p GradingProgress) Message() string {
	if p.Done {
		return fmt.Sprintf("graded %d of %d responses", p.Current, p.Total)
	}
	return fmt.Sprintf("grading response %d of %d", p.Current, p.Total)
}

type GradeSessionInput struct {
	SessionID   string
	UserID      string
	Product     string
	Questions   []model.Question
	TextAnswers map[int]string
}

type WritingAssessmentService interface {
	// GradeSession grades every non-empty free-text answer that has no grade
	// record yet, one at a time, and returns all grades keyed by question id.
	GradeSession(ctx context.Context, in GradeSessionInput, onProgress func(GradingProgress)) (map[string]model.WritingGrade, error)
	Grades(ctx context.Context, sessionID string) (map[string]model.WritingGrade, error)
}

type writingAssessmentService struct {
	grader WritingGrader
	grades repository.WritingGradeRepository
}

func NewWritingAssessmentService(grader WritingGrader, grades repository.WritingGradeRepository) WritingAssessmentService {
	return &writingAssessmentService{grader: grader, grades: grades}
}

func (s *writingAssessmentService) Grades(ctx context.Context, sessionID string) (map[string]model.WritingGrade, error) {
	existing, err := s.grades.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.WritingGrade, len(existing))
	for _, g := range existing {
		out[g.QuestionID] = g
	}
	return out, nil
}

func (s *writingAssessmentService) GradeSession(ctx context.Context, in GradeSessionInput, onProgress func(GradingProgress)) (map[string]model.WritingGrade, error) {
	grades, err := s.Grades(ctx, in.SessionID)
	if err != nil {
		log.Error().Err(err).Str("sessionID", in.SessionID).Msg("GradeSession: failed to load existing grades")
		return nil, fmt.Errorf("load writing grades: %w", err)
	}

	type pendingGrade struct {
		position int
		question *model.Question
		text     string
	}
	var pending []pendingGrade
	for i := range in.Questions {
		q := &in.Questions[i]
		if !q.IsFreeText() {
			continue
		}
		text := in.TextAnswers[i]
		if strings.TrimSpace(text) == "" {
			continue
		}
		if _, graded := grades[q.ID]; graded {
			continue
		}
		pending = append(pending, pendingGrade{position: i, question: q, text: text})
	}

	report := func(p GradingProgress) {
		if onProgress != nil {
			onProgress(p)
		}
	}

	reload := false
	for n, item := range pending {
		report(GradingProgress{Current: n + 1, Total: len(pending), QuestionID: item.question.ID})

		result, err := s.grader.Grade(ctx, GradeRequest{
			SessionID:    in.SessionID,
			UserID:       in.UserID,
			QuestionID:   item.question.ID,
			Product:      in.Product,
			Prompt:       item.question.Prompt,
			ResponseText: item.text,
			MaxPoints:    item.question.MaxPoints,
		})
		if err != nil {
			// No record is written, so the response scores 0.
			log.Error().Err(err).Str("sessionID", in.SessionID).Str("questionID", item.question.ID).
				Int("position", item.position).Msg("GradeSession: grading failed, response scores 0")
			continue
		}

		record := model.WritingGrade{
			SessionID:    in.SessionID,
			QuestionID:   item.question.ID,
			UserID:       in.UserID,
			EarnedPoints: result.EarnedPoints,
			MaxPoints:    result.MaxPoints,
			Percentage:   result.Percentage,
			Feedback:     result.Feedback,
			Provider:     s.grader.Name(),
		}
		created, err := s.grades.Create(ctx, &record)
		if err != nil {
			log.Error().Err(err).Str("sessionID", in.SessionID).Str("questionID", item.question.ID).
				Msg("GradeSession: failed to store writing grade")
			continue
		}
		if !created {
			log.Warn().Str("sessionID", in.SessionID).Str("questionID", item.question.ID).
				Msg("GradeSession: grade already recorded, keeping the stored one")
			reload = true
			continue
		}
		grades[record.QuestionID] = record
		log.Info().Str("sessionID", in.SessionID).Str("questionID", item.question.ID).
			Float64("earned", record.EarnedPoints).Float64("max", record.MaxPoints).Msg("GradeSession: response graded")
	}

	if reload {
		if stored, err := s.Grades(ctx, in.SessionID); err == nil {
			grades = stored
		}
	}

	report(GradingProgress{Current: len(pending), Total: len(pending), Done: true})
	return grades, nil
}
