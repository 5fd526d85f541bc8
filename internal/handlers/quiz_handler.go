package handlers

import (
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mattzyzz/LMS-sub000/internal/models"
	"github.com/mattzyzz/LMS-sub000/internal/repositories"
	"github.com/mattzyzz/LMS-sub000/internal/services"
)

type QuizHandler struct {
	BaseHandler
	quizService  services.QuizService
	importExport services.ImportExportService
	attemptStats services.AttemptService
}

func NewQuizHandler(
	quizService services.QuizService,
	importExport services.ImportExportService,
	attemptService services.AttemptService,
	logger *slog.Logger,
) *QuizHandler {
	return &QuizHandler{
		BaseHandler:  NewBaseHandler(logger),
		quizService:  quizService,
		importExport: importExport,
		attemptStats: attemptService,
	}
}

// ===== LEARNER VIEW =====

// QuizView is the learner-facing quiz shape: no correctness flags, no
// explanations. Question and option order follow the randomize flags.
type QuizView struct {
	ID               uint           `json:"id"`
	Title            string         `json:"title"`
	Description      *string        `json:"description,omitempty"`
	LessonID         *uint          `json:"lesson_id,omitempty"`
	TimeLimitMinutes *int           `json:"time_limit_minutes,omitempty"`
	MaxAttempts      int            `json:"max_attempts"`
	PassingScore     int            `json:"passing_score"`
	Questions        []QuestionView `json:"questions"`
}

type QuestionView struct {
	ID      uint                `json:"id"`
	Text    string              `json:"text"`
	Type    models.QuestionType `json:"type"`
	Points  int                 `json:"points"`
	Options []OptionView        `json:"options,omitempty"`
}

type OptionView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

func buildQuizView(quiz *models.Quiz) *QuizView {
	view := &QuizView{
		ID:               quiz.ID,
		Title:            quiz.Title,
		Description:      quiz.Description,
		LessonID:         quiz.LessonID,
		TimeLimitMinutes: quiz.TimeLimitMinutes,
		MaxAttempts:      quiz.MaxAttempts,
		PassingScore:     quiz.PassingScore,
		Questions:        make([]QuestionView, 0, len(quiz.Questions)),
	}

	for i := range quiz.Questions {
		question := &quiz.Questions[i]
		qv := QuestionView{
			ID:      question.ID,
			Text:    question.Text,
			Type:    question.Type,
			Points:  question.Points,
			Options: make([]OptionView, 0, len(question.Options)),
		}
		for _, opt := range question.Options {
			qv.Options = append(qv.Options, OptionView{ID: opt.ID, Text: opt.Text})
		}
		if quiz.RandomizeOptions {
			rand.Shuffle(len(qv.Options), func(a, b int) {
				qv.Options[a], qv.Options[b] = qv.Options[b], qv.Options[a]
			})
		}
		view.Questions = append(view.Questions, qv)
	}

	if quiz.RandomizeQuestions {
		rand.Shuffle(len(view.Questions), func(a, b int) {
			view.Questions[a], view.Questions[b] = view.Questions[b], view.Questions[a]
		})
	}

	return view
}

// GetQuiz returns the learner view of a quiz.
// GET /api/v1/quizzes/:id
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	quiz, err := h.quizService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, buildQuizView(quiz))
}

// GetLessonQuiz returns the learner view of a lesson's quiz.
// GET /api/v1/lessons/:lessonId/quiz
func (h *QuizHandler) GetLessonQuiz(c *gin.Context) {
	lessonID, ok := h.parseIDParam(c, "lessonId")
	if !ok {
		return
	}

	quiz, err := h.quizService.GetByLessonID(c.Request.Context(), lessonID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, buildQuizView(quiz))
}

// ===== AUTHORING =====

// CreateQuiz creates a quiz definition.
// POST /api/v1/admin/quizzes
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req services.CreateQuizRequest
	if !h.bindJSON(c, &req) {
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quiz)
}

// ListQuizzes lists quiz definitions with pagination.
// GET /api/v1/admin/quizzes
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	filters := repositories.QuizFilters{
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		filters.Offset = offset
	}
	if raw := c.Query("lesson_id"); raw != "" {
		if lessonID, err := strconv.ParseUint(raw, 10, 32); err == nil {
			id := uint(lessonID)
			filters.LessonID = &id
		}
	}

	quizzes, total, err := h.quizService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quizzes": quizzes,
		"total":   total,
		"limit":   filters.Limit,
		"offset":  filters.Offset,
	})
}

// GetQuizAdmin returns the full quiz definition including correctness flags.
// GET /api/v1/admin/quizzes/:id
func (h *QuizHandler) GetQuizAdmin(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	quiz, err := h.quizService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// UpdateQuiz updates quiz settings.
// PUT /api/v1/admin/quizzes/:id
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateQuizRequest
	if !h.bindJSON(c, &req) {
		return
	}

	quiz, err := h.quizService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// DeleteQuiz soft-deletes a quiz.
// DELETE /api/v1/admin/quizzes/:id
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.quizService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddQuestion appends a question to a quiz.
// POST /api/v1/admin/quizzes/:id/questions
func (h *QuizHandler) AddQuestion(c *gin.Context) {
	quizID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.QuestionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	question, err := h.quizService.AddQuestion(c.Request.Context(), quizID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// UpdateQuestion updates a question.
// PUT /api/v1/admin/questions/:id
func (h *QuizHandler) UpdateQuestion(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.QuestionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	question, err := h.quizService.UpdateQuestion(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// DeleteQuestion removes a question and its options.
// DELETE /api/v1/admin/questions/:id
func (h *QuizHandler) DeleteQuestion(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.quizService.RemoveQuestion(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddOption appends an answer option to a question.
// POST /api/v1/admin/questions/:id/options
func (h *QuizHandler) AddOption(c *gin.Context) {
	questionID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.OptionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	option, err := h.quizService.AddOption(c.Request.Context(), questionID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, option)
}

// UpdateOption updates an answer option.
// PUT /api/v1/admin/options/:id
func (h *QuizHandler) UpdateOption(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.OptionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	option, err := h.quizService.UpdateOption(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, option)
}

// DeleteOption removes an answer option.
// DELETE /api/v1/admin/options/:id
func (h *QuizHandler) DeleteOption(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.quizService.RemoveOption(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ===== IMPORT / EXPORT =====

// ImportQuestions bulk-imports questions from an uploaded xlsx workbook.
// POST /api/v1/admin/quizzes/:id/questions/import
func (h *QuizHandler) ImportQuestions(c *gin.Context) {
	quizID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing file upload"})
		return
	}
	defer file.Close()

	var summary *services.ImportSummary
	if strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		summary, err = h.importExport.ImportQuestionsCSV(c.Request.Context(), quizID, file)
	} else {
		summary, err = h.importExport.ImportQuestions(c.Request.Context(), quizID, file)
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, summary)
}

// ExportResults streams submitted attempt results as xlsx or csv.
// GET /api/v1/admin/quizzes/:id/results/export?format=xlsx
func (h *QuizHandler) ExportResults(c *gin.Context) {
	quizID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	format := c.DefaultQuery("format", "xlsx")
	switch format {
	case "xlsx":
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", `attachment; filename="quiz_results.xlsx"`)
		if err := h.importExport.ExportResultsXLSX(c.Request.Context(), quizID, c.Writer); err != nil {
			h.handleServiceError(c, err)
		}
	case "csv":
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", `attachment; filename="quiz_results.csv"`)
		if err := h.importExport.ExportResultsCSV(c.Request.Context(), quizID, c.Writer); err != nil {
			h.handleServiceError(c, err)
		}
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unsupported export format"})
	}
}

// GetQuizStats returns aggregate attempt statistics for a quiz.
// GET /api/v1/admin/quizzes/:id/stats
func (h *QuizHandler) GetQuizStats(c *gin.Context) {
	quizID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	stats, err := h.attemptStats.GetStats(c.Request.Context(), quizID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
