package quiz

import (
	"math/rand"

	"github.com/character-quiz/backend/internal/models"
)

const (
	DefaultQuestionCount = 5
	minOpenQuestions     = 2
)

// SelectQuestions draws min(n, len(catalogue)) distinct questions. Up to two
// open questions are drawn first so every quiz has free-text items; the
// remaining slots are filled uniformly from whatever is left.
func SelectQuestions(catalogue []models.QuizQuestion, n int, rng *rand.Rand) []models.QuizQuestion {
	if n <= 0 {
		n = DefaultQuestionCount
	}
	if n > len(catalogue) {
		n = len(catalogue)
	}
	if n == 0 {
		return []models.QuizQuestion{}
	}

	used := make([]bool, len(catalogue))
	selected := make([]models.QuizQuestion, 0, n)

	var openIdx []int
	for i, q := range catalogue {
		if q.IsOpen() {
			openIdx = append(openIdx, i)
		}
	}

	wantOpen := min(minOpenQuestions, len(openIdx), n)
	rng.Shuffle(len(openIdx), func(i, j int) { openIdx[i], openIdx[j] = openIdx[j], openIdx[i] })
	for _, idx := range openIdx[:wantOpen] {
		used[idx] = true
		selected = append(selected, catalogue[idx])
	}

	remaining := make([]int, 0, len(catalogue)-wantOpen)
	for i := range catalogue {
		if !used[i] {
			remaining = append(remaining, i)
		}
	}
	rng.Shuffle(len(remaining), func(i, j int) { remaining[i], remaining[j] = remaining[j], remaining[i] })
	for _, idx := range remaining[:n-len(selected)] {
		selected = append(selected, catalogue[idx])
	}

	return selected
}
