package quiz

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/character-quiz/backend/internal/models"
)

func mixedCatalogue(open, boolean int) []models.QuizQuestion {
	var qs []models.QuizQuestion
	for i := 0; i < open; i++ {
		qs = append(qs, models.QuizQuestion{
			Question:    fmt.Sprintf("open %d", i),
			ModelAnswer: "answer",
			Category:    models.CategoryBackground,
			Type:        models.QuestionOpen,
		})
	}
	for i := 0; i < boolean; i++ {
		qs = append(qs, models.QuizQuestion{
			Question:    fmt.Sprintf("boolean %d", i),
			ModelAnswer: models.AnswerTrue,
			Category:    models.CategoryGeneral,
			Type:        models.QuestionBoolean,
		})
	}
	return qs
}

func TestSelectQuestionsDistinctWithOpenMinimum(t *testing.T) {
	catalogue := mixedCatalogue(2, 8)

	for seed := int64(0); seed < 50; seed++ {
		got := SelectQuestions(catalogue, 5, rand.New(rand.NewSource(seed)))
		if len(got) != 5 {
			t.Fatalf("seed %d: got %d questions, want 5", seed, len(got))
		}

		seen := make(map[string]bool)
		open := 0
		for _, q := range got {
			if seen[q.Question] {
				t.Fatalf("seed %d: %q selected twice", seed, q.Question)
			}
			seen[q.Question] = true
			if q.IsOpen() {
				open++
			}
		}
		if open < 2 {
			t.Errorf("seed %d: %d open questions, want at least 2", seed, open)
		}
		if !got[0].IsOpen() || !got[1].IsOpen() {
			t.Errorf("seed %d: open questions should be drawn first", seed)
		}
	}
}

func TestSelectQuestionsBounds(t *testing.T) {
	tests := []struct {
		name    string
		open    int
		boolean int
		n       int
		want    int
		minOpen int
	}{
		{"empty catalogue", 0, 0, 5, 0, 0},
		{"n larger than catalogue", 1, 2, 5, 3, 1},
		{"no open questions", 0, 4, 3, 3, 0},
		{"single slot", 3, 3, 1, 1, 1},
		{"default count", 4, 4, 0, DefaultQuestionCount, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectQuestions(mixedCatalogue(tt.open, tt.boolean), tt.n, rand.New(rand.NewSource(42)))
			if len(got) != tt.want {
				t.Fatalf("got %d questions, want %d", len(got), tt.want)
			}
			open := 0
			for _, q := range got {
				if q.IsOpen() {
					open++
				}
			}
			if open < tt.minOpen {
				t.Errorf("got %d open questions, want at least %d", open, tt.minOpen)
			}
		})
	}
}

func TestSelectQuestionsDoesNotMutateCatalogue(t *testing.T) {
	catalogue := mixedCatalogue(3, 3)
	before := fmt.Sprint(catalogue)
	SelectQuestions(catalogue, 4, rand.New(rand.NewSource(9)))
	if after := fmt.Sprint(catalogue); after != before {
		t.Errorf("catalogue changed:\nbefore %s\nafter  %s", before, after)
	}
}
