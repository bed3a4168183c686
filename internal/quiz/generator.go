package quiz

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/character-quiz/backend/internal/models"
)

// DefaultFalseStatements are the templated false claims used for the
// "False" boolean question. %s is replaced with the character name.
var DefaultFalseStatements = []string{
	"%s is a professional chef who runs a Michelin-starred restaurant.",
	"%s has never participated in a hackathon.",
	"%s is a famous musician who has released several platinum albums.",
}

// GeneratorConfig holds the knobs that differ between quiz variants.
type GeneratorConfig struct {
	FalseStatements []string
	MaxSentences    int
	MaxWords        int
	MinQuestions    int
	IncludeTopics   bool
	IncludeLore     bool
}

func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		FalseStatements: DefaultFalseStatements,
		MaxSentences:    2,
		MaxWords:        25,
		MinQuestions:    5,
	}
}

func (c GeneratorConfig) withDefaults() GeneratorConfig {
	def := DefaultGeneratorConfig()
	if len(c.FalseStatements) == 0 {
		c.FalseStatements = def.FalseStatements
	}
	if c.MaxSentences <= 0 {
		c.MaxSentences = def.MaxSentences
	}
	if c.MaxWords <= 0 {
		c.MaxWords = def.MaxWords
	}
	if c.MinQuestions <= 0 {
		c.MinQuestions = def.MinQuestions
	}
	return c
}

// ── Category Filters ───────────────────────────────────

// topicFilter matches profile lines by case-sensitive substring.
type topicFilter struct {
	keywords []string
	question string // %s = character name
}

func (f topicFilter) matches(line string) bool {
	for _, kw := range f.keywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}

var backgroundFilters = []topicFilter{
	{
		keywords: []string{"studying", "graduate", "university", "education"},
		question: "What is %s's educational background?",
	},
	{
		keywords: []string{"interest", "passion", "hobby", "enjoy", "love"},
		question: "What are %s's main interests and passions?",
	},
	{
		keywords: []string{"work", "career", "professional", "founder", "engineer", "developer"},
		question: "What is %s's professional background?",
	},
}

var skillFilters = []topicFilter{
	{
		keywords: []string{"technical", "programming", "development", "software", "engineering"},
		question: "What technical skills does %s have?",
	},
	{
		keywords: []string{"expert", "expertise", "specializ", "experienced"},
		question: "What areas of expertise does %s have?",
	},
	{
		keywords: []string{"JavaScript", "TypeScript", "Python", "Solidity", "React", "Rust", "Golang", "Node"},
		question: "Which programming languages and frameworks does %s work with?",
	},
}

const (
	genericBackgroundQuestion = "What can you tell me about %s's background?"
	genericSkillsQuestion     = "What knowledge and skills does %s have?"
	personalityQuestion       = "How would you describe %s's personality and communication style?"
	uniquenessQuestion        = "What makes %s unique?"
	topicsQuestion            = "What topics is %s interested in?"
	loreQuestion              = "What notable stories are told about %s?"
	booleanPrompt             = "True or False: %s"
)

// ── Generator ──────────────────────────────────────────

// Generator turns a character profile into a question catalogue. The shape of
// the catalogue is deterministic; only the true statement is drawn from rng.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

func NewGenerator(cfg GeneratorConfig, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{cfg: cfg.withDefaults(), rng: rng}
}

func (g *Generator) Generate(p models.CharacterProfile) []models.QuizQuestion {
	var questions []models.QuizQuestion
	bio := nonEmpty(p.Bio)
	knowledge := nonEmpty(p.Knowledge)
	style := nonEmpty(p.Style.All)

	questions = append(questions, g.filteredQuestions(p.Name, bio, backgroundFilters, genericBackgroundQuestion, models.CategoryBackground)...)
	questions = append(questions, g.filteredQuestions(p.Name, knowledge, skillFilters, genericSkillsQuestion, models.CategorySkills)...)

	if len(style) > 0 {
		questions = g.appendOpen(questions, fmt.Sprintf(personalityQuestion, p.Name),
			strings.Join(style, " "), models.CategoryPersonality)
	}

	if g.cfg.IncludeTopics {
		if topics := nonEmpty(p.Topics); len(topics) > 0 {
			questions = g.appendOpen(questions, fmt.Sprintf(topicsQuestion, p.Name),
				strings.Join(topics, ", "), models.CategoryBackground)
		}
	}
	if g.cfg.IncludeLore {
		if lore := nonEmpty(p.Lore); len(lore) > 0 {
			questions = g.appendOpen(questions, fmt.Sprintf(loreQuestion, p.Name),
				strings.Join(lore, " "), models.CategoryBackground)
		}
	}

	if len(bio) > 0 {
		line := bio[g.rng.Intn(len(bio))]
		questions = append(questions, models.QuizQuestion{
			Question:    fmt.Sprintf(booleanPrompt, p.Name+" "+dropFirstWord(line)),
			ModelAnswer: models.AnswerTrue,
			Category:    models.CategoryGeneral,
			Type:        models.QuestionBoolean,
		})
	}

	questions = append(questions, models.QuizQuestion{
		Question:    fmt.Sprintf(booleanPrompt, g.falseStatement(p.Name)),
		ModelAnswer: models.AnswerFalse,
		Category:    models.CategoryGeneral,
		Type:        models.QuestionBoolean,
	})

	if len(questions) < g.cfg.MinQuestions {
		var parts []string
		if len(bio) > 0 {
			parts = append(parts, bio[0])
		}
		if len(style) > 0 {
			parts = append(parts, style[0])
		}
		questions = g.appendOpen(questions, fmt.Sprintf(uniquenessQuestion, p.Name),
			strings.Join(parts, " "), models.CategoryGeneral)
	}

	return questions
}

// filteredQuestions emits one question per filter that matches at least one
// line, or a single generic question when no filter matches anything.
func (g *Generator) filteredQuestions(name string, lines []string, filters []topicFilter, generic string, category models.QuestionCategory) []models.QuizQuestion {
	if len(lines) == 0 {
		return nil
	}

	var out []models.QuizQuestion
	for _, f := range filters {
		var matched []string
		for _, line := range lines {
			if f.matches(line) {
				matched = append(matched, line)
			}
		}
		if len(matched) > 0 {
			out = g.appendOpen(out, fmt.Sprintf(f.question, name), strings.Join(matched, " "), category)
		}
	}

	if len(out) == 0 {
		out = g.appendOpen(out, fmt.Sprintf(generic, name), strings.Join(lines, " "), category)
	}
	return out
}

// appendOpen adds an open question unless truncation leaves a model answer
// with no word the scorer can match.
func (g *Generator) appendOpen(qs []models.QuizQuestion, question, text string, category models.QuestionCategory) []models.QuizQuestion {
	answer := Truncate(text, g.cfg.MaxSentences, g.cfg.MaxWords)
	if len(tokenize(answer)) == 0 {
		return qs
	}
	return append(qs, models.QuizQuestion{
		Question:    question,
		ModelAnswer: answer,
		Category:    category,
		Type:        models.QuestionOpen,
	})
}

// falseStatement picks from the pool by name so the same character always
// gets the same false claim.
func (g *Generator) falseStatement(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	tmpl := g.cfg.FalseStatements[int(h.Sum32()%uint32(len(g.cfg.FalseStatements)))]
	return fmt.Sprintf(tmpl, name)
}

// ── Text Helpers ───────────────────────────────────────

var sentenceTerminators = regexp.MustCompile(`[.!?]`)

// Truncate keeps the first maxSentences non-empty sentences, then the first
// maxWords words of those, and ends the result with a period.
func Truncate(text string, maxSentences, maxWords int) string {
	var sentences []string
	for _, s := range sentenceTerminators.Split(text, -1) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		sentences = append(sentences, s)
		if len(sentences) == maxSentences {
			break
		}
	}

	words := strings.Fields(strings.Join(sentences, " "))
	if len(words) == 0 {
		return ""
	}
	if len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, " ") + "."
}

func dropFirstWord(line string) string {
	words := strings.Fields(line)
	if len(words) <= 1 {
		return strings.TrimSpace(line)
	}
	return strings.Join(words[1:], " ")
}

func nonEmpty(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
