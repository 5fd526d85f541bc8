package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/mattzyzz/LMS-sub000/internal/models"
	"github.com/mattzyzz/LMS-sub000/internal/repositories"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a AttemptPostgreSQL) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	return a.db.WithContext(ctx).Create(attempt).Error
}

func (a AttemptPostgreSQL) GetOwned(ctx context.Context, id uint, userID string) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := a.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) GetOwnedWithAnswers(ctx context.Context, id uint, userID string) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := a.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) GetActive(ctx context.Context, userID string, quizID uint) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	err := a.db.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ? AND status = ?", userID, quizID, models.AttemptInProgress).
		First(&attempt).Error
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) CountTerminal(ctx context.Context, userID string, quizID uint) (int64, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ? AND status = ?", userID, quizID, models.AttemptSubmitted).
		Count(&count).Error
	return count, err
}

func (a AttemptPostgreSQL) ListByUserAndQuiz(ctx context.Context, userID string, quizID uint) ([]*models.QuizAttempt, error) {
	var attempts []*models.QuizAttempt
	if err := a.db.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("started_at DESC, id DESC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a AttemptPostgreSQL) ListByQuiz(ctx context.Context, quizID uint) ([]*models.QuizAttempt, error) {
	var attempts []*models.QuizAttempt
	if err := a.db.WithContext(ctx).
		Where("quiz_id = ? AND status = ?", quizID, models.AttemptSubmitted).
		Order("submitted_at ASC, id ASC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a AttemptPostgreSQL) FinalizeSubmission(ctx context.Context, attempt *models.QuizAttempt, answers []*models.AttemptAnswer) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Compare-and-swap on status: only the first submit wins.
		res := tx.Model(&models.QuizAttempt{}).
			Where("id = ? AND status = ?", attempt.ID, models.AttemptInProgress).
			Updates(map[string]interface{}{
				"status":       models.AttemptSubmitted,
				"score":        attempt.Score,
				"max_score":    attempt.MaxScore,
				"passed":       attempt.Passed,
				"submitted_at": attempt.SubmittedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repositories.ErrNotInProgress
		}
		if len(answers) > 0 {
			if err := tx.Create(answers).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (a AttemptPostgreSQL) GetStats(ctx context.Context, quizID uint) (*repositories.AttemptStats, error) {
	stats := &repositories.AttemptStats{
		StatusBreakdown: make(map[models.AttemptStatus]int),
	}

	for _, status := range []models.AttemptStatus{models.AttemptInProgress, models.AttemptSubmitted} {
		var count int64
		if err := a.db.WithContext(ctx).
			Model(&models.QuizAttempt{}).
			Where("quiz_id = ? AND status = ?", quizID, status).
			Count(&count).Error; err != nil {
			return nil, err
		}
		stats.StatusBreakdown[status] = int(count)
		stats.TotalAttempts += int(count)
	}

	var distinctLearners int64
	if err := a.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("quiz_id = ?", quizID).
		Distinct("user_id").
		Count(&distinctLearners).Error; err != nil {
		return nil, err
	}
	stats.DistinctLearners = int(distinctLearners)

	var avgScore *float64
	var submittedCount, passedCount int64
	row := a.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("quiz_id = ? AND status = ?", quizID, models.AttemptSubmitted).
		Select("AVG(score), COUNT(*), SUM(CASE WHEN passed = true THEN 1 ELSE 0 END)").
		Row()
	if err := row.Scan(&avgScore, &submittedCount, &passedCount); err != nil {
		return nil, err
	}
	if avgScore != nil {
		stats.AverageScore = *avgScore
	}
	if submittedCount > 0 {
		stats.PassRate = float64(passedCount) / float64(submittedCount)
	}

	return stats, nil
}
