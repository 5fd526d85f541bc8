package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mattzyzz/LMS-sub000/internal/cache"
	"github.com/mattzyzz/LMS-sub000/internal/models"
	"github.com/mattzyzz/LMS-sub000/internal/repositories"
)

// ImportExportService moves quiz content in and out as spreadsheets:
// instructors bulk-import questions from xlsx and download submitted attempt
// results as xlsx or csv.
type ImportExportService interface {
	ImportQuestions(ctx context.Context, quizID uint, r io.Reader) (*ImportSummary, error)
	ImportQuestionsCSV(ctx context.Context, quizID uint, r io.Reader) (*ImportSummary, error)
	ExportResultsXLSX(ctx context.Context, quizID uint, w io.Writer) error
	ExportResultsCSV(ctx context.Context, quizID uint, w io.Writer) error
}

// ImportSummary reports what a bulk import created.
type ImportSummary struct {
	QuestionsCreated int `json:"questions_created"`
	OptionsCreated   int `json:"options_created"`
}

type importExportService struct {
	repo   repositories.Repository
	cache  cache.CacheService
	logger *slog.Logger
}

func NewImportExportService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger) ImportExportService {
	return &importExportService{
		repo:   repo,
		cache:  cacheService,
		logger: logger,
	}
}

// Import sheet layout, one question per row after the header:
//
//	Question | Type | Points | Explanation | Correct | Option 1 | Option 2 | ...
//
// Correct holds semicolon-separated 1-based option column indexes ("1" or
// "1;3"). free_text and survey-without-options rows leave the option columns
// empty.
const (
	colQuestion    = 0
	colType        = 1
	colPoints      = 2
	colExplanation = 3
	colCorrect     = 4
	colFirstOption = 5
)

func (s *importExportService) ImportQuestions(ctx context.Context, quizID uint, r io.Reader) (*ImportSummary, error) {
	if _, err := s.repo.Quiz().GetByID(ctx, quizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, ValidationErrors{{Field: "file", Message: "is not a valid xlsx workbook", Rule: "xlsx"}}
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet: %w", err)
	}

	return s.importRows(ctx, quizID, rows)
}

// ImportQuestionsCSV accepts the same column layout as the xlsx import.
func (s *importExportService) ImportQuestionsCSV(ctx context.Context, quizID uint, r io.Reader) (*ImportSummary, error) {
	if _, err := s.repo.Quiz().GetByID(ctx, quizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, ValidationErrors{{Field: "file", Message: "is not valid csv", Rule: "csv"}}
	}

	return s.importRows(ctx, quizID, rows)
}

func (s *importExportService) importRows(ctx context.Context, quizID uint, rows [][]string) (*ImportSummary, error) {
	if len(rows) < 2 {
		return nil, ValidationErrors{{Field: "file", Message: "contains no question rows", Rule: "required"}}
	}

	nextOrder, err := s.repo.Quiz().MaxSortOrder(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question order: %w", err)
	}

	var questions []*models.Question
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		nextOrder++
		question, err := parseQuestionRow(quizID, row, nextOrder)
		if err != nil {
			return nil, ValidationErrors{{
				Field:   fmt.Sprintf("row %d", i+2),
				Message: err.Error(),
				Rule:    "import_row",
			}}
		}
		questions = append(questions, question)
	}
	if len(questions) == 0 {
		return nil, ValidationErrors{{Field: "file", Message: "contains no question rows", Rule: "required"}}
	}

	if err := s.repo.Quiz().CreateQuestionsBatch(ctx, questions); err != nil {
		return nil, fmt.Errorf("failed to import questions: %w", err)
	}

	_ = s.cache.Delete(ctx, quizCacheKey(quizID))

	summary := &ImportSummary{QuestionsCreated: len(questions)}
	for _, q := range questions {
		summary.OptionsCreated += len(q.Options)
	}

	s.logger.Info("Questions imported",
		"quiz_id", quizID,
		"questions", summary.QuestionsCreated,
		"options", summary.OptionsCreated)

	return summary, nil
}

func parseQuestionRow(quizID uint, row []string, sortOrder int) (*models.Question, error) {
	text := strings.TrimSpace(cellAt(row, colQuestion))
	if text == "" {
		return nil, fmt.Errorf("question text is empty")
	}

	qType := models.QuestionType(strings.TrimSpace(cellAt(row, colType)))
	switch qType {
	case models.SingleChoice, models.MultipleChoice, models.FreeText, models.Survey:
	default:
		return nil, fmt.Errorf("unknown question type %q", qType)
	}

	points := 1
	if raw := strings.TrimSpace(cellAt(row, colPoints)); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("invalid points value %q", raw)
		}
		points = parsed
	}

	question := &models.Question{
		QuizID:    quizID,
		Text:      text,
		Type:      qType,
		Points:    points,
		SortOrder: sortOrder,
	}
	if explanation := strings.TrimSpace(cellAt(row, colExplanation)); explanation != "" {
		question.Explanation = &explanation
	}

	correct, err := parseCorrectIndexes(cellAt(row, colCorrect))
	if err != nil {
		return nil, err
	}

	for i := colFirstOption; i < len(row); i++ {
		optText := strings.TrimSpace(row[i])
		if optText == "" {
			continue
		}
		optionIndex := i - colFirstOption + 1
		question.Options = append(question.Options, models.AnswerOption{
			Text:      optText,
			IsCorrect: correct[optionIndex],
			SortOrder: optionIndex,
		})
	}

	if qType.IsChoice() && len(question.Options) < 2 {
		return nil, fmt.Errorf("choice questions need at least two options")
	}
	if qType == models.SingleChoice {
		correctCount := 0
		for _, opt := range question.Options {
			if opt.IsCorrect {
				correctCount++
			}
		}
		if correctCount != 1 {
			return nil, fmt.Errorf("single_choice questions require exactly one correct option")
		}
	}

	return question, nil
}

func parseCorrectIndexes(raw string) (map[int]bool, error) {
	correct := make(map[int]bool)
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx, err := strconv.Atoi(part)
		if err != nil || idx < 1 {
			return nil, fmt.Errorf("invalid correct option index %q", part)
		}
		correct[idx] = true
	}
	return correct, nil
}

func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

var resultHeaders = []string{"Attempt ID", "User ID", "Started At", "Submitted At", "Score", "Max Score", "Percent", "Passed"}

func (s *importExportService) ExportResultsXLSX(ctx context.Context, quizID uint, w io.Writer) error {
	quiz, attempts, err := s.loadResults(ctx, quizID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, "Results"); err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}
	sheet = "Results"

	for col, header := range resultHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to build workbook: %w", err)
		}
	}

	for i, attempt := range attempts {
		values := resultRow(attempt)
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to build workbook: %w", err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Results exported", "quiz_id", quizID, "quiz_title", quiz.Title, "attempts", len(attempts), "format", "xlsx")
	return nil
}

func (s *importExportService) ExportResultsCSV(ctx context.Context, quizID uint, w io.Writer) error {
	quiz, attempts, err := s.loadResults(ctx, quizID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(resultHeaders); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	for _, attempt := range attempts {
		record := make([]string, 0, len(resultHeaders))
		for _, value := range resultRow(attempt) {
			record = append(record, fmt.Sprint(value))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}

	s.logger.Info("Results exported", "quiz_id", quizID, "quiz_title", quiz.Title, "attempts", len(attempts), "format", "csv")
	return nil
}

func (s *importExportService) loadResults(ctx context.Context, quizID uint) (*models.Quiz, []*models.QuizAttempt, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrQuizNotFound
		}
		return nil, nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	attempts, err := s.repo.Attempt().ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return quiz, attempts, nil
}

func resultRow(attempt *models.QuizAttempt) []interface{} {
	score, maxScore := 0, 0
	if attempt.Score != nil {
		score = *attempt.Score
	}
	if attempt.MaxScore != nil {
		maxScore = *attempt.MaxScore
	}
	percent := 100.0
	if maxScore > 0 {
		percent = float64(score) / float64(maxScore) * 100
	}
	passed := attempt.Passed != nil && *attempt.Passed

	submittedAt := ""
	if attempt.SubmittedAt != nil {
		submittedAt = attempt.SubmittedAt.UTC().Format("2006-01-02 15:04:05")
	}

	return []interface{}{
		attempt.ID,
		attempt.UserID,
		attempt.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		submittedAt,
		score,
		maxScore,
		fmt.Sprintf("%.1f", percent),
		passed,
	}
}
