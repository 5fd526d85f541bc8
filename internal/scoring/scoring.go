// Package scoring grades a set of submitted answers against a quiz
// definition. It is a pure function of its inputs: no persistence, no clock,
// no randomness, so the same definition and answers always produce the same
// result.
package scoring

import (
	"github.com/mattzyzz/LMS-sub000/internal/models"
)

// Submission is one learner answer as received at submit time. For choice
// questions SelectedOptionIDs carries the picked option id set; for free-text
// questions FreeTextAnswer carries the text. The two are mutually exclusive
// in practice but nothing here enforces that.
type Submission struct {
	QuestionID        uint
	SelectedOptionIDs []uint
	FreeTextAnswer    *string
}

// AnswerResult is the graded record for one answered question. IsCorrect is
// nil for question types that carry no correctness signal (survey, free_text).
type AnswerResult struct {
	QuestionID        uint
	SelectedOptionIDs []uint
	FreeTextAnswer    *string
	IsCorrect         *bool
	PointsEarned      int
}

// Result aggregates a graded attempt. MaxScore sums the points of every
// question in the definition, answered or not.
type Result struct {
	Answers    []AnswerResult
	TotalScore int
	MaxScore   int
	Passed     bool
}

// Score grades submissions against quiz. Questions are walked in definition
// order; submissions are matched by question id, so submission order never
// affects the result. Questions without a matching submission contribute
// their points to MaxScore only and produce no answer record. Submissions
// referencing question ids outside the definition are ignored.
//
// A quiz whose MaxScore is zero cannot be failed: Passed is vacuously true.
// Otherwise the percentage is computed in floating point and compared to the
// integer threshold without rounding, so 69.999...% fails a threshold of 70.
func Score(quiz *models.Quiz, submissions []Submission) Result {
	byQuestion := make(map[uint]Submission, len(submissions))
	for _, sub := range submissions {
		// Last submission for a question wins.
		byQuestion[sub.QuestionID] = sub
	}

	result := Result{}
	for i := range quiz.Questions {
		question := &quiz.Questions[i]
		result.MaxScore += question.Points

		sub, answered := byQuestion[question.ID]
		if !answered {
			continue
		}

		graded := gradeAnswer(question, sub)
		result.TotalScore += graded.PointsEarned
		result.Answers = append(result.Answers, graded)
	}

	if result.MaxScore == 0 {
		result.Passed = true
	} else {
		percentage := float64(result.TotalScore) / float64(result.MaxScore) * 100
		result.Passed = percentage >= float64(quiz.PassingScore)
	}

	return result
}

func gradeAnswer(question *models.Question, sub Submission) AnswerResult {
	graded := AnswerResult{
		QuestionID:        question.ID,
		SelectedOptionIDs: sub.SelectedOptionIDs,
		FreeTextAnswer:    sub.FreeTextAnswer,
	}

	switch question.Type {
	case models.SingleChoice, models.MultipleChoice:
		correct := equalSets(question.CorrectOptionIDs(), sub.SelectedOptionIDs)
		graded.IsCorrect = &correct
		if correct {
			graded.PointsEarned = question.Points
		}
	case models.Survey:
		// Surveys collect opinion, not assessment: full credit, no
		// correctness signal.
		graded.PointsEarned = question.Points
	case models.FreeText:
		// Left for a human reviewer; never auto-scored.
	}

	return graded
}

// equalSets compares two id slices as sets. Exact match is required: any
// proper subset, superset or disjoint selection is wrong. Duplicates collapse.
func equalSets(a, b []uint) bool {
	setA := make(map[uint]struct{}, len(a))
	for _, id := range a {
		setA[id] = struct{}{}
	}
	setB := make(map[uint]struct{}, len(b))
	for _, id := range b {
		setB[id] = struct{}{}
	}
	if len(setA) != len(setB) {
		return false
	}
	for id := range setA {
		if _, ok := setB[id]; !ok {
			return false
		}
	}
	return true
}
