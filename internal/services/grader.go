package services

import (
	"math"
	"strings"

	"github.com/flowitec/gogrow/internal/models"
)

// Grade scores a submission against the quiz's answer key.
//
// Each question is worth its points (1 when unset). A question without a submitted answer is wrong.
// Unless strict is set, answers are compared after trimming surrounding whitespace and ignoring case.
// The score is earned/total*100 rounded to one decimal; a quiz without questions scores 0.
// Pass is decided on exact integers, so a score equal to the passing score passes.
func Grade(quiz *models.Quiz, answers map[int]string, strict bool) *models.QuizResult {
	result := &models.QuizResult{
		Results: make([]models.QuestionResult, 0, len(quiz.Questions)),
	}

	for i, q := range quiz.Questions {
		points := questionPoints(q)
		result.TotalPoints += points

		answer, ok := answers[i]
		correct := ok && answersMatch(answer, q.CorrectAnswer, strict)
		if correct {
			result.EarnedPoints += points
		}

		result.Results = append(result.Results, models.QuestionResult{
			Question:      q.Question,
			UserAnswer:    answer,
			CorrectAnswer: q.CorrectAnswer,
			Correct:       correct,
		})
	}

	if result.TotalPoints == 0 {
		result.Passed = quiz.PassingScore <= 0
		return result
	}

	result.Score = math.Round(float64(result.EarnedPoints)*1000/float64(result.TotalPoints)) / 10
	result.Passed = result.EarnedPoints*100 >= quiz.PassingScore*result.TotalPoints

	return result
}

func questionPoints(q models.Question) int {
	if q.Points <= 0 {
		return 1
	}
	return q.Points
}

func answersMatch(given, expected string, strict bool) bool {
	if strict {
		return given == expected
	}
	return strings.EqualFold(strings.TrimSpace(given), strings.TrimSpace(expected))
}
