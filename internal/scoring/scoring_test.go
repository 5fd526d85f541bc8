package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattzyzz/LMS-sub000/internal/models"
)

func strPtr(s string) *string { return &s }

func choiceQuestion(id uint, qType models.QuestionType, points int, correct []uint, wrong []uint) models.Question {
	q := models.Question{ID: id, Type: qType, Points: points, Text: "q"}
	order := 0
	for _, optID := range correct {
		q.Options = append(q.Options, models.AnswerOption{ID: optID, QuestionID: id, IsCorrect: true, SortOrder: order})
		order++
	}
	for _, optID := range wrong {
		q.Options = append(q.Options, models.AnswerOption{ID: optID, QuestionID: id, IsCorrect: false, SortOrder: order})
		order++
	}
	return q
}

func TestScore_SingleChoice(t *testing.T) {
	quiz := &models.Quiz{
		PassingScore: 70,
		Questions:    []models.Question{choiceQuestion(1, models.SingleChoice, 2, []uint{10}, []uint{11, 12})},
	}

	tests := []struct {
		name     string
		selected []uint
		correct  bool
	}{
		{"exact correct option", []uint{10}, true},
		{"wrong option", []uint{11}, false},
		{"multiple options including correct", []uint{10, 11}, false},
		{"empty selection", []uint{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Score(quiz, []Submission{{QuestionID: 1, SelectedOptionIDs: tt.selected}})
			require.Len(t, result.Answers, 1)
			require.NotNil(t, result.Answers[0].IsCorrect)
			assert.Equal(t, tt.correct, *result.Answers[0].IsCorrect)
			if tt.correct {
				assert.Equal(t, 2, result.Answers[0].PointsEarned)
				assert.Equal(t, 2, result.TotalScore)
			} else {
				assert.Zero(t, result.Answers[0].PointsEarned)
				assert.Zero(t, result.TotalScore)
			}
			assert.Equal(t, 2, result.MaxScore)
		})
	}
}

func TestScore_MultipleChoice(t *testing.T) {
	quiz := &models.Quiz{
		PassingScore: 70,
		Questions:    []models.Question{choiceQuestion(1, models.MultipleChoice, 3, []uint{10, 11}, []uint{12, 13})},
	}

	tests := []struct {
		name     string
		selected []uint
		correct  bool
	}{
		{"exact set", []uint{10, 11}, true},
		{"exact set reversed order", []uint{11, 10}, true},
		{"proper subset", []uint{10}, false},
		{"superset", []uint{10, 11, 12}, false},
		{"disjoint", []uint{12, 13}, false},
		{"nothing selected", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Score(quiz, []Submission{{QuestionID: 1, SelectedOptionIDs: tt.selected}})
			require.Len(t, result.Answers, 1)
			require.NotNil(t, result.Answers[0].IsCorrect)
			assert.Equal(t, tt.correct, *result.Answers[0].IsCorrect)
			assert.Equal(t, 3, result.MaxScore)
		})
	}
}

func TestScore_SurveyAlwaysEarnsFullPoints(t *testing.T) {
	quiz := &models.Quiz{
		PassingScore: 70,
		Questions: []models.Question{
			{ID: 1, Type: models.Survey, Points: 5, Text: "how was it"},
		},
	}

	for _, sub := range []Submission{
		{QuestionID: 1},
		{QuestionID: 1, SelectedOptionIDs: []uint{99}},
		{QuestionID: 1, FreeTextAnswer: strPtr("loved it")},
	} {
		result := Score(quiz, []Submission{sub})
		require.Len(t, result.Answers, 1)
		assert.Nil(t, result.Answers[0].IsCorrect)
		assert.Equal(t, 5, result.Answers[0].PointsEarned)
		assert.Equal(t, 5, result.TotalScore)
		assert.True(t, result.Passed)
	}
}

func TestScore_FreeTextIsNeverAutoScored(t *testing.T) {
	quiz := &models.Quiz{
		PassingScore: 70,
		Questions: []models.Question{
			{ID: 1, Type: models.FreeText, Points: 4, Text: "explain"},
		},
	}

	result := Score(quiz, []Submission{{QuestionID: 1, FreeTextAnswer: strPtr("because")}})
	require.Len(t, result.Answers, 1)
	assert.Nil(t, result.Answers[0].IsCorrect)
	assert.Zero(t, result.Answers[0].PointsEarned)
	assert.Equal(t, 4, result.MaxScore)
	assert.Zero(t, result.TotalScore)
}

func TestScore_UnansweredQuestionsCountTowardMaxScoreOnly(t *testing.T) {
	quiz := &models.Quiz{
		PassingScore: 70,
		Questions: []models.Question{
			choiceQuestion(1, models.SingleChoice, 2, []uint{10}, []uint{11}),
			choiceQuestion(2, models.SingleChoice, 3, []uint{20}, []uint{21}),
		},
	}

	result := Score(quiz, []Submission{{QuestionID: 1, SelectedOptionIDs: []uint{10}}})
	assert.Equal(t, 5, result.MaxScore)
	assert.Equal(t, 2, result.TotalScore)
	require.Len(t, result.Answers, 1)
	assert.Equal(t, uint(1), result.Answers[0].QuestionID)
}

func TestScore_UnknownQuestionSubmissionsAreIgnored(t *testing.T) {
	quiz := &models.Quiz{
		PassingScore: 70,
		Questions:    []models.Question{choiceQuestion(1, models.SingleChoice, 2, []uint{10}, nil)},
	}

	result := Score(quiz, []Submission{
		{QuestionID: 1, SelectedOptionIDs: []uint{10}},
		{QuestionID: 999, SelectedOptionIDs: []uint{10}},
	})
	assert.Len(t, result.Answers, 1)
	assert.Equal(t, 2, result.TotalScore)
}

func TestScore_EmptyQuizPassesVacuously(t *testing.T) {
	quiz := &models.Quiz{PassingScore: 70}

	result := Score(quiz, nil)
	assert.Zero(t, result.MaxScore)
	assert.Zero(t, result.TotalScore)
	assert.True(t, result.Passed)
	assert.Empty(t, result.Answers)
}

func TestScore_PassingBoundaryIsExact(t *testing.T) {
	// 69/100 against a threshold of 70 must fail: the comparison never
	// rounds up.
	var questions []models.Question
	for i := uint(1); i <= 100; i++ {
		questions = append(questions, choiceQuestion(i, models.SingleChoice, 1, []uint{i * 10}, []uint{i*10 + 1}))
	}
	quiz := &models.Quiz{PassingScore: 70, Questions: questions}

	var submissions []Submission
	for i := uint(1); i <= 69; i++ {
		submissions = append(submissions, Submission{QuestionID: i, SelectedOptionIDs: []uint{i * 10}})
	}

	result := Score(quiz, submissions)
	assert.Equal(t, 69, result.TotalScore)
	assert.Equal(t, 100, result.MaxScore)
	assert.False(t, result.Passed)

	submissions = append(submissions, Submission{QuestionID: 70, SelectedOptionIDs: []uint{700}})
	result = Score(quiz, submissions)
	assert.Equal(t, 70, result.TotalScore)
	assert.True(t, result.Passed)
}

func TestScore_IsDeterministic(t *testing.T) {
	quiz := &models.Quiz{
		PassingScore: 50,
		Questions: []models.Question{
			choiceQuestion(1, models.MultipleChoice, 3, []uint{10, 11}, []uint{12}),
			{ID: 2, Type: models.Survey, Points: 1},
			{ID: 3, Type: models.FreeText, Points: 2},
		},
	}
	submissions := []Submission{
		{QuestionID: 3, FreeTextAnswer: strPtr("text")},
		{QuestionID: 1, SelectedOptionIDs: []uint{11, 10}},
		{QuestionID: 2},
	}

	first := Score(quiz, submissions)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(quiz, submissions))
	}
	// Answer records follow definition order, not submission order.
	require.Len(t, first.Answers, 3)
	assert.Equal(t, uint(1), first.Answers[0].QuestionID)
	assert.Equal(t, uint(2), first.Answers[1].QuestionID)
	assert.Equal(t, uint(3), first.Answers[2].QuestionID)
}

func TestScore_EndToEndSingleQuestion(t *testing.T) {
	quiz := &models.Quiz{
		PassingScore: 70,
		Questions:    []models.Question{choiceQuestion(7, models.SingleChoice, 2, []uint{70}, []uint{71, 72})},
	}

	result := Score(quiz, []Submission{{QuestionID: 7, SelectedOptionIDs: []uint{70}}})
	assert.Equal(t, 2, result.TotalScore)
	assert.Equal(t, 2, result.MaxScore)
	assert.True(t, result.Passed)
}

func TestScore_MultipleChoiceWithNoCorrectOptions(t *testing.T) {
	// Legacy data: zero flagged options means the empty selection is the
	// exact correct set.
	quiz := &models.Quiz{
		PassingScore: 100,
		Questions:    []models.Question{choiceQuestion(1, models.MultipleChoice, 1, nil, []uint{10, 11})},
	}

	result := Score(quiz, []Submission{{QuestionID: 1, SelectedOptionIDs: []uint{}}})
	require.Len(t, result.Answers, 1)
	require.NotNil(t, result.Answers[0].IsCorrect)
	assert.True(t, *result.Answers[0].IsCorrect)

	result = Score(quiz, []Submission{{QuestionID: 1, SelectedOptionIDs: []uint{10}}})
	assert.False(t, *result.Answers[0].IsCorrect)
}
