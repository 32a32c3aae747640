package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/julz808/educoach-prep-portal-sub001/internal/model"
	"gorm.io/datatypes"
)

// The memory repositories back the "memory" database driver used for local
// runs and tests. They honour the same uniqueness rules as the SQL schema.

type memorySessionRepository struct {
	mu   sync.Mutex
	rows map[string]*model.Session
	now  func() time.Time
}

func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{rows: make(map[string]*model.Session), now: time.Now}
}

func (r *memorySessionRepository) Create(_ context.Context, key SessionKey, totalQuestions int, questionIDs []string, timeLimitSeconds *int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.rows {
		if s.Status == model.SessionStatusInProgress && matchesKey(s, key) {
			return s.ID, nil
		}
	}
	row := newSessionRow(key, totalQuestions, questionIDs, timeLimitSeconds)
	row.CreatedAt = r.now()
	row.UpdatedAt = row.CreatedAt
	r.rows[row.ID] = &row
	return row.ID, nil
}

func (r *memorySessionRepository) FindResumable(_ context.Context, key SessionKey) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *model.Session
	for _, s := range r.rows {
		if !matchesKey(s, key) {
			continue
		}
		if best == nil ||
			(s.Status == model.SessionStatusInProgress && best.Status != model.SessionStatusInProgress) ||
			(s.Status == best.Status && s.UpdatedAt.After(best.UpdatedAt)) {
			best = s
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	return cloneSession(best), nil
}

func (r *memorySessionRepository) LoadActiveOrCompleted(_ context.Context, id string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSession(s), nil
}

func (r *memorySessionRepository) SaveProgress(_ context.Context, id string, p Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok || s.Status != model.SessionStatusInProgress {
		return ErrNotFound
	}
	s.CurrentIndex = p.CurrentIndex
	s.Answers = copyAnswers(p.Answers)
	s.AnswerFormat = model.AnswerFormatOptionText
	s.Flagged = toInt64Array(p.Flagged)
	s.TimeRemainingSeconds = copyIntPtr(p.TimeRemaining)
	s.TextAnswers = datatypes.NewJSONType(copyText(p.TextAnswers))
	s.UpdatedAt = r.now()
	return nil
}

func (r *memorySessionRepository) Complete(_ context.Context, id string, answers map[string]any, textAnswers map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return ErrNotFound
	}
	now := r.now()
	s.Status = model.SessionStatusCompleted
	s.Answers = copyAnswers(answers)
	s.AnswerFormat = model.AnswerFormatOptionText
	s.TextAnswers = datatypes.NewJSONType(copyText(textAnswers))
	if s.CompletedAt == nil {
		s.CompletedAt = &now
	}
	s.UpdatedAt = now
	return nil
}

func (r *memorySessionRepository) ListByUser(_ context.Context, userID string) ([]model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Session
	for _, s := range r.rows {
		if s.UserID == userID {
			out = append(out, *cloneSession(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func matchesKey(s *model.Session, key SessionKey) bool {
	return s.UserID == key.UserID && s.ProductID == key.ProductID && s.Mode == key.Mode &&
		s.Section == key.Section && s.Difficulty == key.Difficulty
}

func cloneSession(s *model.Session) *model.Session {
	c := *s
	c.QuestionIDs = append(c.QuestionIDs[:0:0], s.QuestionIDs...)
	c.Flagged = append(c.Flagged[:0:0], s.Flagged...)
	c.Answers = copyAnswers(s.Answers)
	c.TextAnswers = datatypes.NewJSONType(copyText(s.TextAnswers.Data()))
	c.TimeLimitSeconds = copyIntPtr(s.TimeLimitSeconds)
	c.TimeRemainingSeconds = copyIntPtr(s.TimeRemainingSeconds)
	return &c
}

func copyAnswers(m map[string]any) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyText(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type memoryQuestionRepository struct {
	questions []model.Question
}

func NewMemoryQuestionRepository(questions []model.Question) QuestionRepository {
	return &memoryQuestionRepository{questions: questions}
}

func (r *memoryQuestionRepository) FindForSection(_ context.Context, product string, mode model.Mode, section string, difficulty int) ([]model.Question, error) {
	var out []model.Question
	for _, q := range r.questions {
		if q.Product != product || q.Mode != string(mode) || q.Section != section {
			continue
		}
		if difficulty > 0 && q.Difficulty != difficulty {
			continue
		}
		out = append(out, q)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memoryQuestionRepository) FindByIDs(_ context.Context, ids []string) ([]model.Question, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Question
	for _, q := range r.questions {
		if want[q.ID] {
			out = append(out, q)
		}
	}
	return out, nil
}

type memoryWritingGradeRepository struct {
	mu     sync.Mutex
	nextID uint
	grades []model.WritingGrade
}

func NewMemoryWritingGradeRepository() WritingGradeRepository {
	return &memoryWritingGradeRepository{}
}

func (r *memoryWritingGradeRepository) Create(_ context.Context, grade *model.WritingGrade) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.grades {
		if g.SessionID == grade.SessionID && g.QuestionID == grade.QuestionID {
			return false, nil
		}
	}
	r.nextID++
	grade.ID = r.nextID
	grade.CreatedAt = time.Now()
	r.grades = append(r.grades, *grade)
	return true, nil
}

func (r *memoryWritingGradeRepository) FindBySession(_ context.Context, sessionID string) ([]model.WritingGrade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.WritingGrade
	for _, g := range r.grades {
		if g.SessionID == sessionID {
			out = append(out, g)
		}
	}
	return out, nil
}
