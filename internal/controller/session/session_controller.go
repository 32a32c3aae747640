package session

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/julz808/educoach-prep-portal-sub001/internal/catalog"
	"github.com/julz808/educoach-prep-portal-sub001/internal/dto"
	"github.com/julz808/educoach-prep-portal-sub001/internal/host"
	"github.com/julz808/educoach-prep-portal-sub001/internal/service"
	"github.com/rs/zerolog/log"
)

type SessionController struct {
	manager service.AttemptManager
}

func NewSessionController(manager service.AttemptManager) *SessionController {
	return &SessionController{manager: manager}
}

func (c *SessionController) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		sessions := api.Group("/sessions")
		sessions.POST("", c.BeginSession)
		sessions.GET("/:session_id", c.GetSession)
		sessions.PUT("/:session_id/answers/:index", c.AnswerQuestion)
		sessions.PUT("/:session_id/text/:index", c.SetTextAnswer)
		sessions.POST("/:session_id/text/:index/blur", c.BlurTextAnswer)
		sessions.POST("/:session_id/flags/:index", c.FlagQuestion)
		sessions.DELETE("/:session_id/flags/:index", c.UnflagQuestion)
		sessions.POST("/:session_id/seek", c.Seek)
		sessions.POST("/:session_id/submit", c.Submit)
		sessions.POST("/:session_id/exit", c.Exit)
		sessions.POST("/:session_id/host-events", c.PublishHostEvent)
		sessions.GET("/:session_id/grading", c.GetGradingStatus)

		api.GET("/users/:user_id/sessions", c.ListUserSessions)
	}
}

// BeginSession godoc
// @Summary Start or resume a session
// @Description Resumes the user's session for the product, mode, section and difficulty, or creates one. A completed session opens read-only in review.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param request body dto.BeginSessionRequest true "Session key"
// @Success 200 {object} dto.SessionResponse
// @Failure 202 {object} dto.ErrorResponse "Initialization already in progress for this key"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 404 {object} dto.ErrorResponse "Unknown product or no questions for the section"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions [post]
func (c *SessionController) BeginSession(ctx *gin.Context) {
	var req dto.BeginSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("BeginSession: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	attempt, err := c.manager.Begin(ctx.Request.Context(), service.BeginRequest{
		UserID:     req.UserID,
		ProductID:  req.ProductID,
		Mode:       req.Mode,
		Section:    req.Section,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		writeError(ctx, "BeginSession", err)
		return
	}
	ctx.JSON(http.StatusOK, toSessionResponse(attempt.Snapshot()))
}

// GetSession godoc
// @Summary Get a session
// @Description Returns the state of a session without resuming it. Correct answers, explanations, writing grades and the score are only included in review.
// @Tags Sessions
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions/{session_id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	view, err := c.manager.View(ctx.Request.Context(), ctx.Param("session_id"))
	if err != nil {
		writeError(ctx, "GetSession", err)
		return
	}
	ctx.JSON(http.StatusOK, toSessionResponse(view))
}

// AnswerQuestion godoc
// @Summary Select an option
// @Tags Sessions
// @Accept json
// @Param session_id path string true "Session ID"
// @Param index path int true "Question position"
// @Param request body dto.AnswerRequest true "Selected option"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse "Invalid position or option"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session is read-only"
// @Router /sessions/{session_id}/answers/{index} [put]
func (c *SessionController) AnswerQuestion(ctx *gin.Context) {
	index, ok := pathIndex(ctx)
	if !ok {
		return
	}
	var req dto.AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	attempt, ok := c.open(ctx)
	if !ok {
		return
	}
	if err := attempt.Answer(ctx.Request.Context(), index, *req.Option); err != nil {
		writeError(ctx, "AnswerQuestion", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// SetTextAnswer godoc
// @Summary Update a written response
// @Description Replaces the response text. Saving is debounced; blur, navigation or submit flush it.
// @Tags Sessions
// @Accept json
// @Param session_id path string true "Session ID"
// @Param index path int true "Question position"
// @Param request body dto.TextAnswerRequest true "Response text"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse "Invalid position"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session is read-only"
// @Router /sessions/{session_id}/text/{index} [put]
func (c *SessionController) SetTextAnswer(ctx *gin.Context) {
	index, ok := pathIndex(ctx)
	if !ok {
		return
	}
	var req dto.TextAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	attempt, ok := c.open(ctx)
	if !ok {
		return
	}
	if err := attempt.SetText(ctx.Request.Context(), index, req.Text); err != nil {
		writeError(ctx, "SetTextAnswer", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// BlurTextAnswer godoc
// @Summary Flush a written response
// @Tags Sessions
// @Param session_id path string true "Session ID"
// @Param index path int true "Question position"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse "Invalid position"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{session_id}/text/{index}/blur [post]
func (c *SessionController) BlurTextAnswer(ctx *gin.Context) {
	index, ok := pathIndex(ctx)
	if !ok {
		return
	}
	if err := c.manager.BlurField(ctx.Request.Context(), ctx.Param("session_id"), index); err != nil {
		writeError(ctx, "BlurTextAnswer", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// FlagQuestion godoc
// @Summary Flag a question for review
// @Tags Sessions
// @Param session_id path string true "Session ID"
// @Param index path int true "Question position"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse "Invalid position"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session is read-only"
// @Router /sessions/{session_id}/flags/{index} [post]
func (c *SessionController) FlagQuestion(ctx *gin.Context) {
	c.setFlag(ctx, true)
}

// UnflagQuestion godoc
// @Summary Remove a question's flag
// @Tags Sessions
// @Param session_id path string true "Session ID"
// @Param index path int true "Question position"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse "Invalid position"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session is read-only"
// @Router /sessions/{session_id}/flags/{index} [delete]
func (c *SessionController) UnflagQuestion(ctx *gin.Context) {
	c.setFlag(ctx, false)
}

func (c *SessionController) setFlag(ctx *gin.Context, on bool) {
	index, ok := pathIndex(ctx)
	if !ok {
		return
	}
	attempt, ok := c.open(ctx)
	if !ok {
		return
	}
	var err error
	if on {
		err = attempt.Flag(ctx.Request.Context(), index)
	} else {
		err = attempt.Unflag(ctx.Request.Context(), index)
	}
	if err != nil {
		writeError(ctx, "setFlag", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Seek godoc
// @Summary Navigate to a question
// @Description Flushes pending saves, then moves to the question. Allowed in review.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param session_id path string true "Session ID"
// @Param request body dto.SeekRequest true "Target position"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid position"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{session_id}/seek [post]
func (c *SessionController) Seek(ctx *gin.Context) {
	var req dto.SeekRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	attempt, ok := c.open(ctx)
	if !ok {
		return
	}
	if err := attempt.Seek(ctx.Request.Context(), *req.Index); err != nil {
		writeError(ctx, "Seek", err)
		return
	}
	ctx.JSON(http.StatusOK, toSessionResponse(attempt.Snapshot()))
}

// Submit godoc
// @Summary Submit a session
// @Description Flushes saves, grades written responses, scores and completes the session. Requires confirm=true unless the session is already completed, in which case the stored score is returned.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param session_id path string true "Session ID"
// @Param request body dto.SubmitRequest true "Confirmation"
// @Success 200 {object} dto.SubmitResponse
// @Failure 400 {object} dto.ErrorResponse "Submission not confirmed"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 500 {object} dto.ErrorResponse "Session could not be completed"
// @Router /sessions/{session_id}/submit [post]
func (c *SessionController) Submit(ctx *gin.Context) {
	var req dto.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	attempt, ok := c.open(ctx)
	if !ok {
		return
	}
	// Grading must finish even if the client goes away.
	score, err := attempt.Submit(context.WithoutCancel(ctx.Request.Context()), req.Confirm)
	if err != nil {
		writeError(ctx, "Submit", err)
		return
	}
	var resp dto.SubmitResponse
	resp.SessionID = attempt.ID()
	resp.State = string(attempt.State())
	copier.Copy(&resp.Score, &score)
	ctx.JSON(http.StatusOK, resp)
}

// Exit godoc
// @Summary Leave a session
// @Description Flushes pending saves and releases the session's timers. The session can be resumed later. Exiting a session that is not live does nothing.
// @Tags Sessions
// @Param session_id path string true "Session ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{session_id}/exit [post]
func (c *SessionController) Exit(ctx *gin.Context) {
	if err := c.manager.Exit(ctx.Request.Context(), ctx.Param("session_id")); err != nil {
		writeError(ctx, "Exit", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// PublishHostEvent godoc
// @Summary Report a client lifecycle event
// @Description Forwards page unload, visibility and focus changes to the live session so pending saves are flushed.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param session_id path string true "Session ID"
// @Param request body dto.HostEventRequest true "Event"
// @Success 200 {object} dto.HostEventResponse
// @Failure 400 {object} dto.ErrorResponse "Unknown event"
// @Router /sessions/{session_id}/host-events [post]
func (c *SessionController) PublishHostEvent(ctx *gin.Context) {
	var req dto.HostEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	ev, err := host.ParseEvent(req.Event)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}
	n, err := c.manager.Publish(ctx.Request.Context(), ctx.Param("session_id"), ev)
	if err != nil {
		writeError(ctx, "PublishHostEvent", err)
		return
	}
	ctx.JSON(http.StatusOK, dto.HostEventResponse{Delivered: n})
}

// GetGradingStatus godoc
// @Summary Get writing-grading progress
// @Tags Sessions
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.GradingStatusResponse
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{session_id}/grading [get]
func (c *SessionController) GetGradingStatus(ctx *gin.Context) {
	view, err := c.manager.View(ctx.Request.Context(), ctx.Param("session_id"))
	if err != nil {
		writeError(ctx, "GetGradingStatus", err)
		return
	}
	ctx.JSON(http.StatusOK, toGradingResponse(view.Grading))
}

// ListUserSessions godoc
// @Summary List a user's sessions
// @Description In-progress sessions first, then by last update.
// @Tags Sessions
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {array} dto.SessionSummaryResponse
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users/{user_id}/sessions [get]
func (c *SessionController) ListUserSessions(ctx *gin.Context) {
	rows, err := c.manager.ListSessions(ctx.Request.Context(), ctx.Param("user_id"))
	if err != nil {
		writeError(ctx, "ListUserSessions", err)
		return
	}
	resp := make([]dto.SessionSummaryResponse, 0, len(rows))
	copier.Copy(&resp, &rows)
	ctx.JSON(http.StatusOK, resp)
}

func (c *SessionController) open(ctx *gin.Context) (*service.Attempt, bool) {
	attempt, err := c.manager.Open(ctx.Request.Context(), ctx.Param("session_id"))
	if err != nil {
		writeError(ctx, "open", err)
		return nil, false
	}
	return attempt, true
}

func pathIndex(ctx *gin.Context) (int, bool) {
	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid question index"})
		return 0, false
	}
	return index, true
}

func writeError(ctx *gin.Context, fn string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrBeginInFlight):
		status = http.StatusAccepted
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrInvalidIndex),
		errors.Is(err, service.ErrConfirmationRequired):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrQuestionsNotFound),
		errors.Is(err, catalog.ErrUnknownProduct), errors.Is(err, catalog.ErrUnknownSection):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrReadOnly), errors.Is(err, service.ErrNotInProgress),
		errors.Is(err, service.ErrAttemptClosed), errors.Is(err, service.ErrTimeExpired):
		status = http.StatusConflict
	}

	evt := log.Warn()
	if status == http.StatusInternalServerError {
		evt = log.Error()
	}
	evt.Err(err).Str("path", ctx.FullPath()).Int("status", status).Msg(fn + ": request failed")

	resp := dto.ErrorResponse{Message: err.Error()}
	if status == http.StatusInternalServerError {
		resp = dto.ErrorResponse{Message: "Internal server error", Details: []string{err.Error()}}
	}
	ctx.JSON(status, resp)
}

func toSessionResponse(view service.SessionView) dto.SessionResponse {
	var resp dto.SessionResponse
	copier.Copy(&resp, &view)
	for i := range view.Questions {
		if g := view.Questions[i].Grade; g != nil && i < len(resp.Questions) {
			grade := dto.WritingGradeResponse{}
			copier.Copy(&grade, g)
			resp.Questions[i].Grade = &grade
		}
	}
	if view.Score != nil {
		score := dto.ScoreResponse{}
		copier.Copy(&score, view.Score)
		resp.Score = &score
	}
	resp.Grading = toGradingResponse(view.Grading)
	return resp
}

func toGradingResponse(p service.GradingProgress) dto.GradingStatusResponse {
	var resp dto.GradingStatusResponse
	copier.Copy(&resp, &p)
	resp.Message = p.Message()
	return resp
}
