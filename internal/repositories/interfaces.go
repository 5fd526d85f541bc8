package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mattzyzz/LMS-sub000/internal/models"
)

// Repository aggregates the per-entity repositories. WithTx runs fn against a
// transaction-scoped Repository; returning an error rolls everything back.
type Repository interface {
	Quiz() QuizRepository
	Attempt() AttemptRepository
	WithTx(ctx context.Context, fn func(Repository) error) error
}

// ===== SHARED FILTER STRUCTS =====

type QuizFilters struct {
	LessonID  *uint  `json:"lesson_id"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortBy    string `json:"sort_by"`    // "created_at", "title"
	SortOrder string `json:"sort_order"` // "asc", "desc"
}

// ===== SHARED STATISTICS STRUCTS =====

type AttemptStats struct {
	TotalAttempts    int                          `json:"total_attempts"`
	StatusBreakdown  map[models.AttemptStatus]int `json:"status_breakdown"`
	AverageScore     float64                      `json:"average_score"`
	PassRate         float64                      `json:"pass_rate"`
	DistinctLearners int                          `json:"distinct_learners"`
}

// ===== ERRORS =====

// ErrNotInProgress is returned by FinalizeSubmission when the status
// compare-and-swap matches no row: something else already finalized the
// attempt.
var ErrNotInProgress = errors.New("attempt is not in progress")

// ===== ERROR CLASSIFICATION =====

// IsNotFoundError reports whether err is the storage layer's missing-record
// signal.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a unique-constraint violation. The
// gorm postgres driver translates these when TranslateError is enabled.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
