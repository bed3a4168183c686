package quiz

import (
	"math"
	"testing"

	"github.com/character-quiz/backend/internal/models"
)

func TestScoreBoolean(t *testing.T) {
	tests := []struct {
		answer string
		model  string
		want   float64
	}{
		{"true", "True", 1},
		{"  TRUE ", "True", 1},
		{"t", "True", 1},
		{"Yes", "True", 1},
		{"false", "True", 0},
		{"no", "True", 0},
		{"maybe", "True", 0},
		{"", "True", 0},
		{"truee", "True", 0},
		{"False", "False", 1},
		{"F", "False", 1},
		{"no", "False", 1},
		{"yes", "False", 0},
		{"nope", "False", 0},
	}

	for _, tt := range tests {
		got := ScoreBoolean(tt.answer, tt.model)
		if got != tt.want {
			t.Errorf("ScoreBoolean(%q, %q) = %f, want %f", tt.answer, tt.model, got, tt.want)
		}
	}
}

func TestCalculateSimilarityIdentical(t *testing.T) {
	got := CalculateSimilarity("blockchain is great", "blockchain is great")
	if got != 1.0 {
		t.Errorf("CalculateSimilarity(identical) = %f, want 1.0", got)
	}
}

func TestSimilarityIgnoresShortTokens(t *testing.T) {
	// "is", "a", "an" are all dropped, leaving no vocabulary
	if got := Similarity("is a", "an is"); got != 0 {
		t.Errorf("Similarity of short-word texts = %f, want 0", got)
	}
	if got := Similarity("", "blockchain"); got != 0 {
		t.Errorf("Similarity with empty text = %f, want 0", got)
	}
	if got := Similarity("Blockchain, GREAT!", "blockchain great"); math.Abs(got-1) > 1e-9 {
		t.Errorf("Similarity ignoring case and punctuation = %f, want 1", got)
	}
}

func TestSimilarityDisjoint(t *testing.T) {
	if got := CalculateSimilarity("pasta recipes", "solidity contracts"); got != 0 {
		t.Errorf("CalculateSimilarity(disjoint) = %f, want 0", got)
	}
}

func TestSimilaritySymmetricAndBounded(t *testing.T) {
	pairs := [][2]string{
		{"studying computer science", "computer science at a university"},
		{"direct and concise answers", "concise"},
		{"hackathon winner hackathon organizer", "hackathon"},
		{"Rust Golang TypeScript", "golang golang golang"},
		{"", "anything at all"},
	}

	for _, p := range pairs {
		ab := CalculateSimilarity(p[0], p[1])
		ba := CalculateSimilarity(p[1], p[0])
		if ab != ba {
			t.Errorf("CalculateSimilarity not symmetric for %q / %q: %f vs %f", p[0], p[1], ab, ba)
		}
		if ab < 0 || ab > 1 {
			t.Errorf("CalculateSimilarity(%q, %q) = %f, out of [0,1]", p[0], p[1], ab)
		}
	}
}

func TestRescale(t *testing.T) {
	tests := []struct {
		sim  float64
		want float64
	}{
		{0, 0},
		{0.05, 0.205},
		{0.1, 0.32},
		{0.15, 0.48},
		{0.2, 0.46},
		{0.4, 0.92},
		{0.45, 1.0}, // 1.035 clamped
		{0.5, 0.6},
		{0.7, 0.84},
		{0.8, 0.8},
		{0.95, 0.95},
		{1.0, 1.0},
	}

	for _, tt := range tests {
		got := Rescale(tt.sim)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Rescale(%v) = %f, want %f", tt.sim, got, tt.want)
		}
	}
}

func TestScoreAnswerDispatch(t *testing.T) {
	open := models.QuizQuestion{
		Question:    "What technical skills does Eric have?",
		ModelAnswer: "technical programming skills.",
		Type:        models.QuestionOpen,
	}
	if got := ScoreAnswer(open, "technical programming skills"); math.Abs(got-1) > 1e-9 {
		t.Errorf("ScoreAnswer(open, model text) = %f, want 1", got)
	}

	boolean := models.QuizQuestion{
		Question:    "True or False: Eric is a chef.",
		ModelAnswer: models.AnswerFalse,
		Type:        models.QuestionBoolean,
	}
	if got := ScoreAnswer(boolean, "no"); got != 1 {
		t.Errorf("ScoreAnswer(boolean, no) = %f, want 1", got)
	}
	if got := ScoreAnswer(boolean, "false statement about cooking"); got != 0 {
		t.Errorf("ScoreAnswer(boolean, prose) = %f, want 0", got)
	}
}
