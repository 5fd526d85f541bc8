package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mattzyzz/LMS-sub000/internal/services"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

func NewAttemptHandler(attemptService services.AttemptService, logger *slog.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
	}
}

// StartAttempt opens a new attempt or returns the caller's active one.
// POST /api/v1/attempts
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req services.StartAttemptRequest
	if !h.bindJSON(c, &req) {
		return
	}

	attempt, err := h.attemptService.Start(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, attempt)
}

// SubmitAttempt grades and finalizes the attempt.
// POST /api/v1/attempts/:id/submit
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	attemptID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.SubmitAttemptRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.attemptService.Submit(c.Request.Context(), userID, attemptID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAttemptResult returns the caller's view of an attempt.
// GET /api/v1/attempts/:id/result
func (h *AttemptHandler) GetAttemptResult(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	attemptID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.attemptService.GetResult(c.Request.Context(), userID, attemptID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListAttempts lists the caller's attempts for a quiz, newest first.
// GET /api/v1/quizzes/:id/attempts
func (h *AttemptHandler) ListAttempts(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	quizID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	attempts, err := h.attemptService.List(c.Request.Context(), userID, quizID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"attempts": attempts})
}
