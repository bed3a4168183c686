package quiz

import (
	"fmt"
	"math"

	"github.com/character-quiz/backend/internal/models"
)

// FeedbackBand returns the verdict phrase for a score in [0, 1].
func FeedbackBand(score float64) string {
	if score >= 0.8 {
		return "Excellent! That's a great answer."
	}
	if score >= 0.6 {
		return "Good answer! You covered most of it."
	}
	if score >= 0.4 {
		return "Decent answer, you're on the right track."
	}
	if score >= 0.2 {
		return "Partially correct. There's more to it."
	}
	return "Hmm, that's not quite right."
}

// Feedback builds the full per-answer feedback text. Weak open answers also
// show what the model answer contained.
func Feedback(q models.QuizQuestion, score float64) string {
	text := fmt.Sprintf("%s (Score: %d%%)", FeedbackBand(score), int(math.Round(score*100)))
	if score < 0.6 {
		if q.Type == models.QuestionBoolean {
			text += fmt.Sprintf("\nThe correct answer was: %s.", q.ModelAnswer)
		} else {
			text += fmt.Sprintf("\nA strong answer would mention: %s", q.ModelAnswer)
		}
	}
	return text
}
