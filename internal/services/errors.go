package services

import (
	"errors"

	apperrors "github.com/mattzyzz/LMS-sub000/internal/errors"
)

// ===== SERVICE ERRORS =====

var (
	// Not-found errors. An attempt that exists but belongs to another learner
	// is reported as ErrAttemptNotFound on purpose: callers must not be able
	// to probe for other users' attempts.
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrOptionNotFound   = errors.New("answer option not found")
	ErrAttemptNotFound  = errors.New("attempt not found")

	// Conflict errors.
	ErrAttemptLimitExceeded    = errors.New("maximum attempts exceeded")
	ErrAttemptAlreadySubmitted = errors.New("attempt already submitted")
)

// Use shared validation errors from the errors package.
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// IsNotFound checks if err represents a "not found" condition.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrOptionNotFound) ||
		errors.Is(err, ErrAttemptNotFound)
}

// IsConflict checks if err represents a state conflict the caller can act on.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAttemptLimitExceeded) ||
		errors.Is(err, ErrAttemptAlreadySubmitted)
}

// IsValidation checks if err represents a validation failure.
func IsValidation(err error) bool {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *ValidationError
	return errors.As(err, &single)
}
