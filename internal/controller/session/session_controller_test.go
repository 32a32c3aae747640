package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/julz808/educoach-prep-portal-sub001/internal/catalog"
	"github.com/julz808/educoach-prep-portal-sub001/internal/clock"
	"github.com/julz808/educoach-prep-portal-sub001/internal/dto"
	"github.com/julz808/educoach-prep-portal-sub001/internal/model"
	"github.com/julz808/educoach-prep-portal-sub001/internal/repository"
	"github.com/julz808/educoach-prep-portal-sub001/internal/service"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGrader struct{}

func (stubGrader) Name() string { return "stub" }

func (stubGrader) Grade(_ context.Context, req service.GradeRequest) (service.GradeResult, error) {
	return service.GradeResult{EarnedPoints: 10, MaxPoints: req.MaxPoints, Percentage: service.Percentage(10, req.MaxPoints), Feedback: "Good."}, nil
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat, err := catalog.New([]catalog.Product{{
		ID: "y7", Name: "Year 7", WritingMaxPoints: 20,
		Sections: []catalog.Section{{Name: "Reading", Minutes: 30}},
	}})
	require.NoError(t, err)

	correct := 1
	questions := []model.Question{
		{ID: "q0", Product: "Year 7", Mode: "diagnostic", Section: "Reading", Position: 0, Prompt: "2+2?",
			Options: pq.StringArray{"A) 3", "B) 4"}, CorrectIndex: &correct},
		{ID: "q1", Product: "Year 7", Mode: "diagnostic", Section: "Reading", Position: 1, Prompt: "Describe a storm."},
	}
	manager := service.NewAttemptManager(
		repository.NewMemorySessionRepository(),
		service.NewQuestionProvider(repository.NewMemoryQuestionRepository(questions), cat),
		service.NewWritingAssessmentService(stubGrader{}, repository.NewMemoryWritingGradeRepository()),
		service.NewScoringService(),
		cat,
		clock.NewFake(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)),
		service.DefaultAttemptConfig(),
	)
	t.Cleanup(func() { _ = manager.Shutdown(context.Background()) })

	r := gin.New()
	NewSessionController(manager).RegisterRoutes(r)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func begin(t *testing.T, r *gin.Engine) dto.SessionResponse {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/sessions", dto.BeginSessionRequest{
		UserID: "u1", ProductID: "y7", Mode: "diagnostic", Section: "Reading",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSessionFlow(t *testing.T) {
	r := newRouter(t)
	s := begin(t, r)
	assert.Equal(t, "in-progress", s.State)
	require.Len(t, s.Questions, 2)
	require.NotNil(t, s.TimeLimitSeconds)
	assert.Equal(t, 1800, *s.TimeLimitSeconds)
	assert.Nil(t, s.Questions[0].CorrectIndex)

	base := "/api/v1/sessions/" + s.ID
	option := 1
	w := do(t, r, http.MethodPut, base+"/answers/0", dto.AnswerRequest{Option: &option})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = do(t, r, http.MethodPut, base+"/text/1", dto.TextAnswerRequest{Text: "Thunder rolled."})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, base+"/flags/1", nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, base+"/submit", dto.SubmitRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, base+"/submit", dto.SubmitRequest{Confirm: true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var submitted dto.SubmitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	assert.Equal(t, "completed", submitted.State)
	assert.Equal(t, 11.0, submitted.Score.EarnedPoints)
	assert.Equal(t, 21.0, submitted.Score.TotalMaxPoints)
	assert.Equal(t, 52, submitted.Score.Percentage)

	w = do(t, r, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var review dto.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &review))
	assert.Equal(t, "review", review.State)
	require.NotNil(t, review.Score)
	assert.Equal(t, 52, review.Score.Percentage)
	require.NotNil(t, review.Questions[0].Correct)
	assert.True(t, *review.Questions[0].Correct)
	require.NotNil(t, review.Questions[1].Grade)
	assert.Equal(t, "Good.", review.Questions[1].Grade.Feedback)
	assert.True(t, review.Questions[1].Flagged)

	w = do(t, r, http.MethodPut, base+"/answers/0", dto.AnswerRequest{Option: &option})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/users/u1/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []dto.SessionSummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "completed", list[0].Status)
	assert.Equal(t, "diagnostic", list[0].Mode)
}

func TestBeginErrors(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/sessions", map[string]string{"user_id": "u1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/sessions", dto.BeginSessionRequest{UserID: "u1", ProductID: "nope", Mode: "diagnostic", Section: "Reading"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/sessions", dto.BeginSessionRequest{UserID: "u1", ProductID: "y7", Mode: "drill", Section: "Reading"})
	assert.Equal(t, http.StatusNotFound, w.Code, "no drill questions")

	w = do(t, r, http.MethodPost, "/api/v1/sessions", dto.BeginSessionRequest{UserID: "u1", ProductID: "y7", Mode: "exam", Section: "Reading"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvalidIndexAndMissingSession(t *testing.T) {
	r := newRouter(t)
	s := begin(t, r)
	base := "/api/v1/sessions/" + s.ID

	option := 0
	w := do(t, r, http.MethodPut, base+"/answers/7", dto.AnswerRequest{Option: &option})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPut, base+"/answers/x", dto.AnswerRequest{Option: &option})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHostEventsAndExit(t *testing.T) {
	r := newRouter(t)
	s := begin(t, r)
	base := "/api/v1/sessions/" + s.ID

	w := do(t, r, http.MethodPut, base+"/text/1", dto.TextAnswerRequest{Text: "draft"})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodPost, base+"/host-events", dto.HostEventRequest{Event: "hidden"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var delivered dto.HostEventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &delivered))
	assert.Equal(t, 1, delivered.Delivered)

	w = do(t, r, http.MethodGet, base, nil)
	var view dto.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Empty(t, view.PendingSaves)

	w = do(t, r, http.MethodPost, base+"/host-events", dto.HostEventRequest{Event: "crash"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, base+"/seek", dto.SeekRequest{Index: intPtr(1)})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 1, view.CurrentIndex)

	w = do(t, r, http.MethodPost, base+"/exit", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	resumed := begin(t, r)
	assert.Equal(t, s.ID, resumed.ID)
	assert.Equal(t, "draft", resumed.Questions[1].Text)
	assert.Equal(t, 1, resumed.CurrentIndex)

	w = do(t, r, http.MethodGet, fmt.Sprintf("%s/grading", base), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var grading dto.GradingStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &grading))
	assert.False(t, grading.Done)
}

func intPtr(v int) *int { return &v }

func TestReadsDoNotResumeExitedSession(t *testing.T) {
	r := newRouter(t)
	s := begin(t, r)
	base := "/api/v1/sessions/" + s.ID

	w := do(t, r, http.MethodPut, base+"/text/1", dto.TextAnswerRequest{Text: "draft"})
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, r, http.MethodPost, base+"/exit", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view dto.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "in-progress", view.State)
	assert.Equal(t, "draft", view.Questions[1].Text)
	require.NotNil(t, view.TimeRemainingSeconds)
	assert.Equal(t, 1800, *view.TimeRemainingSeconds)

	w = do(t, r, http.MethodGet, base+"/grading", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodPost, base+"/text/1/blur", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, r, http.MethodPost, base+"/text/9/blur", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, r, http.MethodPost, base+"/exit", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodPost, base+"/host-events", dto.HostEventRequest{Event: "hidden"})
	require.Equal(t, http.StatusOK, w.Code)
	var delivered dto.HostEventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &delivered))
	assert.Zero(t, delivered.Delivered, "reads left the session without a live attempt")

	w = do(t, r, http.MethodPost, "/api/v1/sessions/missing/exit", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
