package quiz

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/character-quiz/backend/internal/models"
)

var nonWord = regexp.MustCompile(`\W+`)

var (
	trueAnswers  = map[string]bool{"true": true, "t": true, "yes": true}
	falseAnswers = map[string]bool{"false": true, "f": true, "no": true}
)

// ScoreAnswer scores a free-text answer against the question's model answer.
// The result is always in [0, 1].
func ScoreAnswer(q models.QuizQuestion, answer string) float64 {
	if q.Type == models.QuestionBoolean {
		return ScoreBoolean(answer, q.ModelAnswer)
	}
	return CalculateSimilarity(answer, q.ModelAnswer)
}

// ScoreBoolean returns 1.0 when the answer means the same truth value as the
// model answer and 0.0 for anything else, including unparseable input.
func ScoreBoolean(answer, modelAnswer string) float64 {
	normalized := strings.ToLower(strings.TrimSpace(answer))
	expected := strings.ToLower(strings.TrimSpace(modelAnswer))

	if expected == "true" && trueAnswers[normalized] {
		return 1.0
	}
	if expected == "false" && falseAnswers[normalized] {
		return 1.0
	}
	return 0.0
}

// CalculateSimilarity is the open-question score: cosine similarity passed
// through the rescaling curve.
func CalculateSimilarity(a, b string) float64 {
	return Rescale(Similarity(a, b))
}

// Similarity computes the raw term-frequency cosine similarity of two texts.
func Similarity(a, b string) float64 {
	tokensA := tokenize(a)
	tokensB := tokenize(b)

	vocabulary := make(map[string]struct{}, len(tokensA)+len(tokensB))
	for _, t := range tokensA {
		vocabulary[t] = struct{}{}
	}
	for _, t := range tokensB {
		vocabulary[t] = struct{}{}
	}

	freqA := termFrequencies(tokensA)
	freqB := termFrequencies(tokensB)

	var dot, magA, magB float64
	for term := range vocabulary {
		va := float64(freqA[term])
		vb := float64(freqB[term])
		dot += va * vb
		magA += va * va
		magB += vb * vb
	}

	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / math.Sqrt(magA*magB)
}

// Rescale lifts low similarities so short but relevant answers are not
// punished as hard as raw cosine would. Breakpoints and multipliers are fixed;
// they set the pass rate for rewards.
func Rescale(sim float64) float64 {
	var scaled float64
	switch {
	case sim < 0.1:
		scaled = sim * 4.1
	case sim < 0.2:
		scaled = sim * 3.2
	case sim < 0.5:
		scaled = sim * 2.3
	case sim < 0.8:
		scaled = sim * 1.2
	default:
		scaled = sim
	}
	return clamp01(scaled)
}

func tokenize(text string) []string {
	var tokens []string
	for _, word := range nonWord.Split(strings.ToLower(text), -1) {
		// Skip short words (articles, prepositions)
		if utf8.RuneCountInString(word) > 2 {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

func termFrequencies(tokens []string) map[string]int {
	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}
	return freq
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
