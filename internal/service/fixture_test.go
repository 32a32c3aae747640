package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/julz808/educoach-prep-portal-sub001/internal/catalog"
	"github.com/julz808/educoach-prep-portal-sub001/internal/clock"
	"github.com/julz808/educoach-prep-portal-sub001/internal/model"
	"github.com/julz808/educoach-prep-portal-sub001/internal/repository"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

const (
	testProduct     = "test-prep"
	testProductName = "Test Prep"
	testUser        = "student-1"
)

var cities = []string{"A) Paris", "B) Lyon", "C) Nice", "D) Lille"}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.Product{{
		ID:               testProduct,
		Name:             testProductName,
		WritingMaxPoints: 30,
		Sections: []catalog.Section{
			{Name: "Reading", Minutes: 40},
			{Name: "Sprint", Minutes: 1},
			{Name: "Empty", Minutes: 10},
		},
	}})
	require.NoError(t, err)
	return c
}

func mcQuestion(id string, mode model.Mode, section string, pos, correct int) model.Question {
	c := correct
	return model.Question{
		ID:           id,
		Product:      testProductName,
		Mode:         string(mode),
		Section:      section,
		Position:     pos,
		Prompt:       "Which city is the capital of France?",
		Options:      pq.StringArray(cities),
		CorrectIndex: &c,
		Explanation:  "Paris is the capital.",
		SubSkill:     "geography",
		Difficulty:   1,
	}
}

func essayQuestion(id string, mode model.Mode, section string, pos int) model.Question {
	return model.Question{
		ID:       id,
		Product:  testProductName,
		Mode:     string(mode),
		Section:  section,
		Position: pos,
		Prompt:   "Write a persuasive piece about school uniforms.",
		SubSkill: "persuasive writing",
	}
}

// seedQuestions gives every mode a Reading section of five multiple-choice
// questions followed by one essay, and a one-question Sprint section.
func seedQuestions() []model.Question {
	var qs []model.Question
	for _, mode := range []model.Mode{model.ModeDiagnostic, model.PracticeMode(1), model.ModeDrill} {
		for i := 0; i < 5; i++ {
			qs = append(qs, mcQuestion(fmt.Sprintf("%s-r%d", mode, i), mode, "Reading", i, 0))
		}
		qs = append(qs, essayQuestion(fmt.Sprintf("%s-w0", mode), mode, "Reading", 5))
		qs = append(qs, mcQuestion(fmt.Sprintf("%s-s0", mode), mode, "Sprint", 0, 0))
	}
	return qs
}

type fakeGrader struct {
	mu    sync.Mutex
	score float64
	fail  map[string]bool
	calls []string
}

func (g *fakeGrader) Name() string { return "fake" }

func (g *fakeGrader) Grade(_ context.Context, req GradeRequest) (GradeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req.QuestionID)
	if g.fail[req.QuestionID] {
		return GradeResult{}, errors.New("grader timeout")
	}
	return newGradeResult(g.score, req.MaxPoints, "Clear structure."), nil
}

func (g *fakeGrader) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type recordingSessions struct {
	repository.SessionRepository

	mu           sync.Mutex
	saves        []repository.Progress
	completes    int
	failComplete int
	failSaves    bool
}

func (r *recordingSessions) SaveProgress(ctx context.Context, id string, p repository.Progress) error {
	r.mu.Lock()
	if r.failSaves {
		r.mu.Unlock()
		return errors.New("connection reset")
	}
	r.saves = append(r.saves, p)
	r.mu.Unlock()
	return r.SessionRepository.SaveProgress(ctx, id, p)
}

func (r *recordingSessions) Complete(ctx context.Context, id string, answers map[string]any, text map[string]string) error {
	r.mu.Lock()
	if r.failComplete > 0 {
		r.failComplete--
		r.mu.Unlock()
		return errors.New("connection reset")
	}
	r.completes++
	r.mu.Unlock()
	return r.SessionRepository.Complete(ctx, id, answers, text)
}

func (r *recordingSessions) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}

func (r *recordingSessions) savedTexts(pos string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, p := range r.saves {
		if v, ok := p.TextAnswers[pos]; ok {
			out = append(out, v)
		}
	}
	return out
}

type fixture struct {
	manager  AttemptManager
	sessions *recordingSessions
	grades   repository.WritingGradeRepository
	grader   *fakeGrader
	clock    *clock.Fake
	provider QuestionProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat := testCatalog(t)
	f := &fixture{
		sessions: &recordingSessions{SessionRepository: repository.NewMemorySessionRepository()},
		grades:   repository.NewMemoryWritingGradeRepository(),
		grader:   &fakeGrader{score: 18},
		clock:    clock.NewFake(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)),
	}
	f.provider = NewQuestionProvider(repository.NewMemoryQuestionRepository(seedQuestions()), cat)
	f.manager = NewAttemptManager(
		f.sessions,
		f.provider,
		NewWritingAssessmentService(f.grader, f.grades),
		NewScoringService(),
		cat,
		f.clock,
		DefaultAttemptConfig(),
	)
	t.Cleanup(func() { _ = f.manager.Shutdown(context.Background()) })
	return f
}

func (f *fixture) begin(t *testing.T, mode model.Mode, section string) *Attempt {
	t.Helper()
	a, err := f.manager.Begin(context.Background(), BeginRequest{
		UserID:    testUser,
		ProductID: testProduct,
		Mode:      string(mode),
		Section:   section,
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) storedRow(t *testing.T, id string) *model.Session {
	t.Helper()
	row, err := f.sessions.LoadActiveOrCompleted(context.Background(), id)
	require.NoError(t, err)
	return row
}

func countdownOf(a *Attempt) interface {
	Tick()
	Remaining() int
} {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.countdown == nil {
		return nil
	}
	return a.countdown
}
