package services

import (
	"testing"

	"github.com/flowitec/gogrow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeQuestionQuiz(passing int) *models.Quiz {
	return &models.Quiz{
		ID:           "q1",
		CourseID:     "c1",
		PassingScore: passing,
		Questions: []models.Question{
			{Question: "Which valve?", QuestionType: models.QuestionTypeMultipleChoice, Options: []string{"Gate", "Ball"}, CorrectAnswer: "Ball", Points: 1},
			{Question: "Pumps push fluid", QuestionType: models.QuestionTypeTrueFalse, CorrectAnswer: "true", Points: 1},
			{Question: "Unit of pressure", QuestionType: models.QuestionTypeShortAnswer, CorrectAnswer: "bar", Points: 1},
		},
	}
}

func TestGrade(t *testing.T) {
	tests := []struct {
		name           string
		quiz           *models.Quiz
		answers        map[int]string
		strict         bool
		expectedScore  float64
		expectedPassed bool
		expectedEarned int
		expectedTotal  int
		expectedRight  []bool
	}{
		{
			name:           "all correct",
			quiz:           threeQuestionQuiz(70),
			answers:        map[int]string{0: "Ball", 1: "true", 2: "bar"},
			expectedScore:  100,
			expectedPassed: true,
			expectedEarned: 3,
			expectedTotal:  3,
			expectedRight:  []bool{true, true, true},
		},
		{
			name:           "answers are trimmed and case folded",
			quiz:           threeQuestionQuiz(70),
			answers:        map[int]string{0: "  ball ", 1: "TRUE", 2: "Bar"},
			expectedScore:  100,
			expectedPassed: true,
			expectedEarned: 3,
			expectedTotal:  3,
			expectedRight:  []bool{true, true, true},
		},
		{
			name:           "strict comparison is exact",
			quiz:           threeQuestionQuiz(70),
			answers:        map[int]string{0: "ball", 1: "true", 2: " bar"},
			strict:         true,
			expectedScore:  33.3,
			expectedPassed: false,
			expectedEarned: 1,
			expectedTotal:  3,
			expectedRight:  []bool{false, true, false},
		},
		{
			name:           "missing answers are wrong",
			quiz:           threeQuestionQuiz(70),
			answers:        map[int]string{0: "Ball", 1: "true"},
			expectedScore:  66.7,
			expectedPassed: false,
			expectedEarned: 2,
			expectedTotal:  3,
			expectedRight:  []bool{true, true, false},
		},
		{
			name:           "answers for unknown indexes are ignored",
			quiz:           threeQuestionQuiz(70),
			answers:        map[int]string{5: "Ball", -1: "true"},
			expectedScore:  0,
			expectedPassed: false,
			expectedEarned: 0,
			expectedTotal:  3,
			expectedRight:  []bool{false, false, false},
		},
		{
			name:           "two of three passes a 60 threshold",
			quiz:           threeQuestionQuiz(60),
			answers:        map[int]string{0: "Ball", 1: "true"},
			expectedScore:  66.7,
			expectedPassed: true,
			expectedEarned: 2,
			expectedTotal:  3,
			expectedRight:  []bool{true, true, false},
		},
		{
			name: "score equal to passing score passes",
			quiz: &models.Quiz{
				PassingScore: 50,
				Questions: []models.Question{
					{Question: "a", CorrectAnswer: "x"},
					{Question: "b", CorrectAnswer: "y"},
				},
			},
			answers:        map[int]string{0: "x", 1: "n"},
			expectedScore:  50,
			expectedPassed: true,
			expectedEarned: 1,
			expectedTotal:  2,
			expectedRight:  []bool{true, false},
		},
		{
			name: "points weight the score",
			quiz: &models.Quiz{
				PassingScore: 70,
				Questions: []models.Question{
					{Question: "easy", CorrectAnswer: "x", Points: 1},
					{Question: "hard", CorrectAnswer: "y", Points: 3},
				},
			},
			answers:        map[int]string{1: "y"},
			expectedScore:  75,
			expectedPassed: true,
			expectedEarned: 3,
			expectedTotal:  4,
			expectedRight:  []bool{false, true},
		},
		{
			name:           "quiz without questions scores zero",
			quiz:           &models.Quiz{PassingScore: 70, Questions: []models.Question{}},
			answers:        map[int]string{0: "x"},
			expectedScore:  0,
			expectedPassed: false,
			expectedEarned: 0,
			expectedTotal:  0,
			expectedRight:  []bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Grade(tt.quiz, tt.answers, tt.strict)

			require.NotNil(t, result)
			assert.Equal(t, tt.expectedScore, result.Score)
			assert.Equal(t, tt.expectedPassed, result.Passed)
			assert.Equal(t, tt.expectedEarned, result.EarnedPoints)
			assert.Equal(t, tt.expectedTotal, result.TotalPoints)
			require.Len(t, result.Results, len(tt.expectedRight))
			for i, right := range tt.expectedRight {
				assert.Equal(t, right, result.Results[i].Correct, "question %d", i)
				assert.Equal(t, tt.quiz.Questions[i].CorrectAnswer, result.Results[i].CorrectAnswer)
			}
		})
	}
}

func TestGrade_ReportsSubmittedAnswers(t *testing.T) {
	result := Grade(threeQuestionQuiz(70), map[int]string{0: "Gate"}, false)

	assert.Equal(t, "Gate", result.Results[0].UserAnswer)
	assert.Equal(t, "Which valve?", result.Results[0].Question)
	assert.Equal(t, "", result.Results[1].UserAnswer)
}

func TestGrade_MonotoneInCorrectAnswers(t *testing.T) {
	quiz := threeQuestionQuiz(70)
	answers := map[int]string{}
	previous := -1.0

	for i, q := range quiz.Questions {
		answers[i] = q.CorrectAnswer
		result := Grade(quiz, answers, false)
		assert.GreaterOrEqual(t, result.Score, previous)
		previous = result.Score
	}
	assert.Equal(t, 100.0, previous)
}
