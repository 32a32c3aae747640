package service

import (
	"math"
	"strings"

	"github.com/julz808/educoach-prep-portal-sub001/internal/model"
)

// MultipleChoicePoints is the value of every multiple-choice question.
const MultipleChoicePoints = 1.0

type Score struct {
	TotalQuestions    int
	AnsweredQuestions int
	TotalMaxPoints    float64
	EarnedPoints      float64
	Percentage        int
}

type ScoringService interface {
	// Score is a pure function of its inputs. answers and textAnswers are keyed
	// by position; grades by question id.
	Score(questions []model.Question, answers map[int]int, textAnswers map[int]string, grades map[string]model.WritingGrade) Score
}

type scoringService struct{}

func NewScoringService() ScoringService {
	return &scoringService{}
}

func (s *scoringService) Score(questions []model.Question, answers map[int]int, textAnswers map[int]string, grades map[string]model.WritingGrade) Score {
	score := Score{TotalQuestions: len(questions)}
	for i := range questions {
		q := &questions[i]
		if q.IsFreeText() {
			score.TotalMaxPoints += q.MaxPoints
			if strings.TrimSpace(textAnswers[i]) != "" {
				score.AnsweredQuestions++
			}
			if g, ok := grades[q.ID]; ok {
				score.EarnedPoints += g.EarnedPoints
			}
			continue
		}

		score.TotalMaxPoints += MultipleChoicePoints
		selected, ok := answers[i]
		if !ok {
			continue
		}
		score.AnsweredQuestions++
		if q.CorrectIndex != nil && *q.CorrectIndex == selected {
			score.EarnedPoints += MultipleChoicePoints
		}
	}
	score.Percentage = Percentage(score.EarnedPoints, score.TotalMaxPoints)
	return score
}

// Percentage rounds 100*earned/max to the nearest integer, 0 when max is 0.
func Percentage(earned, max float64) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(100 * earned / max))
}
