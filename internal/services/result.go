package services

import (
	"time"

	"github.com/mattzyzz/LMS-sub000/internal/models"
)

// AttemptResult is the result view returned to learners. The aggregate fields
// are always present for submitted attempts; AnswerDetails is populated only
// when the quiz's show_results flag is on at read time, so a later flag change
// takes effect on already submitted attempts.
type AttemptResult struct {
	AttemptID   uint                 `json:"attempt_id"`
	QuizID      uint                 `json:"quiz_id"`
	QuizTitle   string               `json:"quiz_title"`
	Status      models.AttemptStatus `json:"status"`
	Score       *int                 `json:"score"`
	MaxScore    *int                 `json:"max_score"`
	Passed      *bool                `json:"passed"`
	StartedAt   string               `json:"started_at"`
	SubmittedAt *string              `json:"submitted_at,omitempty"`

	AnswerDetails []AnswerDetail `json:"answer_details,omitempty"`
}

// AnswerDetail pairs one stored answer with its question as the question
// reads now, including the explanation authored for review.
type AnswerDetail struct {
	QuestionID        uint                `json:"question_id"`
	QuestionText      string              `json:"question_text"`
	QuestionType      models.QuestionType `json:"question_type"`
	Points            int                 `json:"points"`
	SelectedOptionIDs []uint              `json:"selected_option_ids,omitempty"`
	FreeTextAnswer    *string             `json:"free_text_answer,omitempty"`
	IsCorrect         *bool               `json:"is_correct"`
	PointsEarned      int                 `json:"points_earned"`
	Explanation       *string             `json:"explanation,omitempty"`
}

// buildAttemptResult projects an attempt and the live quiz definition into the
// learner-facing result view.
func buildAttemptResult(attempt *models.QuizAttempt, quiz *models.Quiz) *AttemptResult {
	result := &AttemptResult{
		AttemptID: attempt.ID,
		QuizID:    attempt.QuizID,
		QuizTitle: quiz.Title,
		Status:    attempt.Status,
		Score:     attempt.Score,
		MaxScore:  attempt.MaxScore,
		Passed:    attempt.Passed,
		StartedAt: attempt.StartedAt.Format(time.RFC3339),
	}
	if attempt.SubmittedAt != nil {
		formatted := attempt.SubmittedAt.Format(time.RFC3339)
		result.SubmittedAt = &formatted
	}

	if !quiz.ShowResults {
		return result
	}

	questionsByID := make(map[uint]*models.Question, len(quiz.Questions))
	for i := range quiz.Questions {
		questionsByID[quiz.Questions[i].ID] = &quiz.Questions[i]
	}

	answersByQuestion := make(map[uint]*models.AttemptAnswer, len(attempt.Answers))
	for i := range attempt.Answers {
		answersByQuestion[attempt.Answers[i].QuestionID] = &attempt.Answers[i]
	}

	// Walk questions in definition order so the review reads like the quiz.
	for i := range quiz.Questions {
		question := &quiz.Questions[i]
		detail := AnswerDetail{
			QuestionID:   question.ID,
			QuestionText: question.Text,
			QuestionType: question.Type,
			Points:       question.Points,
			Explanation:  question.Explanation,
		}

		if answer, ok := answersByQuestion[question.ID]; ok {
			selected, err := answer.SelectedOptions()
			if err == nil {
				detail.SelectedOptionIDs = selected
			}
			detail.FreeTextAnswer = answer.FreeTextAnswer
			detail.IsCorrect = answer.IsCorrect
			detail.PointsEarned = answer.PointsEarned
		}

		result.AnswerDetails = append(result.AnswerDetails, detail)
	}

	// Answers whose question was since deleted still belong to the stored
	// attempt; append them after the live questions.
	for i := range attempt.Answers {
		answer := &attempt.Answers[i]
		if _, live := questionsByID[answer.QuestionID]; live {
			continue
		}
		detail := AnswerDetail{
			QuestionID:     answer.QuestionID,
			FreeTextAnswer: answer.FreeTextAnswer,
			IsCorrect:      answer.IsCorrect,
			PointsEarned:   answer.PointsEarned,
		}
		if selected, err := answer.SelectedOptions(); err == nil {
			detail.SelectedOptionIDs = selected
		}
		result.AnswerDetails = append(result.AnswerDetails, detail)
	}

	return result
}
