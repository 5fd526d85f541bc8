package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/mattzyzz/LMS-sub000/internal/models"
	"github.com/mattzyzz/LMS-sub000/internal/repositories"
)

type QuizPostgreSQL struct {
	db *gorm.DB
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{db: db}
}

// orderedPreload loads questions and options pre-sorted by sort_order with id
// as tie-break. The ordering is a scoring-determinism contract, not cosmetics.
func (q QuizPostgreSQL) orderedPreload(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		})
}

func (q QuizPostgreSQL) Create(ctx context.Context, quiz *models.Quiz) error {
	return q.db.WithContext(ctx).Create(quiz).Error
}

func (q QuizPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := q.orderedPreload(q.db.WithContext(ctx)).First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q QuizPostgreSQL) GetByLessonID(ctx context.Context, lessonID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	// At most one quiz per lesson is assumed upstream; if that is ever
	// violated the lowest id wins.
	if err := q.orderedPreload(q.db.WithContext(ctx)).
		Where("lesson_id = ?", lessonID).
		Order("id ASC").
		First(&quiz).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q QuizPostgreSQL) Update(ctx context.Context, quiz *models.Quiz) error {
	return q.db.WithContext(ctx).Omit("Questions").Save(quiz).Error
}

func (q QuizPostgreSQL) Delete(ctx context.Context, id uint) error {
	return q.db.WithContext(ctx).Delete(&models.Quiz{}, id).Error
}

func (q QuizPostgreSQL) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	var quizzes []*models.Quiz
	var total int64

	query := q.db.WithContext(ctx).Model(&models.Quiz{})
	if filters.LessonID != nil {
		query = query.Where("lesson_id = ?", *filters.LessonID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&quizzes).Error; err != nil {
		return nil, 0, err
	}

	return quizzes, total, nil
}

// ===== QUESTION MANAGEMENT =====

func (q QuizPostgreSQL) CreateQuestion(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).Create(question).Error
}

func (q QuizPostgreSQL) GetQuestionByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q QuizPostgreSQL) UpdateQuestion(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).Omit("Options").Save(question).Error
}

func (q QuizPostgreSQL) DeleteQuestion(ctx context.Context, id uint) error {
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&models.AnswerOption{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Question{}, id).Error
	})
}

func (q QuizPostgreSQL) CreateQuestionsBatch(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return q.db.WithContext(ctx).Create(questions).Error
}

// ===== OPTION MANAGEMENT =====

func (q QuizPostgreSQL) CreateOption(ctx context.Context, option *models.AnswerOption) error {
	return q.db.WithContext(ctx).Create(option).Error
}

func (q QuizPostgreSQL) GetOptionByID(ctx context.Context, id uint) (*models.AnswerOption, error) {
	var option models.AnswerOption
	if err := q.db.WithContext(ctx).First(&option, id).Error; err != nil {
		return nil, err
	}
	return &option, nil
}

func (q QuizPostgreSQL) UpdateOption(ctx context.Context, option *models.AnswerOption) error {
	return q.db.WithContext(ctx).Save(option).Error
}

func (q QuizPostgreSQL) DeleteOption(ctx context.Context, id uint) error {
	return q.db.WithContext(ctx).Delete(&models.AnswerOption{}, id).Error
}

func (q QuizPostgreSQL) MaxSortOrder(ctx context.Context, quizID uint) (int, error) {
	var max *int
	if err := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("quiz_id = ?", quizID).
		Select("MAX(sort_order)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}
