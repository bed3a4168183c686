package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"regexp"
	"time"

	"github.com/character-quiz/backend/internal/models"
	"github.com/character-quiz/backend/internal/rewards"
)

const (
	NoActiveQuestionMessage = "No active question to answer."
	MintFailedMessage       = "Failed to mint NFT. Please try again later."

	DefaultRewardThreshold = 60
	DefaultRewardTimeout   = 30 * time.Second
)

var walletPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

var ErrInvalidWallet = errors.New("invalid wallet address")

// RewardIssuer mints a reward for a passing score.
type RewardIssuer interface {
	MintReward(ctx context.Context, characterName, walletAddress string, score int) (models.RewardResult, error)
}

// Completion describes a finished quiz run. It is handed to the completion
// hook after the final answer is scored.
type Completion struct {
	CharacterName  string
	WalletAddress  string
	Scores         []float64
	Percent        int
	RewardEligible bool
	Reward         *models.RewardResult
}

// Progress is a read-only snapshot of where a session stands.
type Progress struct {
	Active   bool      `json:"active"`
	Asked    int       `json:"asked"`
	Answered int       `json:"answered"`
	Total    int       `json:"total"`
	Scores   []float64 `json:"scores"`
}

// Session runs one quiz for one caller. It is not safe for concurrent use;
// the owner serializes access.
type Session struct {
	profile   models.CharacterProfile
	catalogue []models.QuizQuestion

	active       bool
	selected     []models.QuizQuestion
	currentIndex int
	scores       []float64
	finalPercent *int

	walletAddress string
	issuer        RewardIssuer

	rng             *rand.Rand
	genConfig       GeneratorConfig
	questionCount   int
	rewardThreshold int
	rewardTimeout   time.Duration
	onComplete      func(Completion)
}

type SessionOption func(*Session)

func WithRewardIssuer(issuer RewardIssuer) SessionOption {
	return func(s *Session) {
		if issuer != nil {
			s.issuer = issuer
		}
	}
}

func WithRand(rng *rand.Rand) SessionOption {
	return func(s *Session) {
		if rng != nil {
			s.rng = rng
		}
	}
}

func WithQuestionCount(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.questionCount = n
		}
	}
}

// WithRewardThreshold sets the minimum percent for a reward. Values outside
// 0..100 are ignored.
func WithRewardThreshold(percent int) SessionOption {
	return func(s *Session) {
		if percent >= 0 && percent <= 100 {
			s.rewardThreshold = percent
		}
	}
}

func WithRewardTimeout(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.rewardTimeout = d
		}
	}
}

func WithGeneratorConfig(cfg GeneratorConfig) SessionOption {
	return func(s *Session) { s.genConfig = cfg }
}

func WithCompletionHook(fn func(Completion)) SessionOption {
	return func(s *Session) { s.onComplete = fn }
}

// NewSession builds the question catalogue for the profile. Without a reward
// issuer the session falls back to a simulated one.
func NewSession(profile models.CharacterProfile, opts ...SessionOption) *Session {
	s := &Session{
		profile:         profile,
		issuer:          rewards.NewSimulatedIssuer(),
		genConfig:       DefaultGeneratorConfig(),
		questionCount:   DefaultQuestionCount,
		rewardThreshold: DefaultRewardThreshold,
		rewardTimeout:   DefaultRewardTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s.catalogue = NewGenerator(s.genConfig, s.rng).Generate(profile)
	return s
}

// ── Lifecycle ──────────────────────────────────────────

// Start begins a fresh run with a new random selection and returns the
// welcome text.
func (s *Session) Start() string {
	s.currentIndex = 0
	s.scores = nil
	s.finalPercent = nil
	s.selected = SelectQuestions(s.catalogue, s.questionCount, s.rng)

	if len(s.selected) == 0 {
		s.active = false
		return fmt.Sprintf("Sorry, there are no quiz questions about %s yet.", s.profile.Name)
	}

	s.active = true
	return fmt.Sprintf(
		"Welcome to the %s quiz! I'll ask you %d questions about %s. Score %d%% or higher to earn an NFT reward.",
		s.profile.Name, len(s.selected), s.profile.Name, s.rewardThreshold,
	)
}

// NextQuestion issues the next unasked question. The index advances as soon
// as the question is issued, before it is answered. It returns false when no
// quiz is running or every selected question has been asked.
func (s *Session) NextQuestion() (string, bool) {
	if !s.active || s.currentIndex >= len(s.selected) {
		return "", false
	}
	q := s.selected[s.currentIndex]
	s.currentIndex++
	return formatQuestion(s.currentIndex, q), true
}

// SubmitAnswer scores the answer against the most recently issued question
// and returns feedback, followed by either the next question or the final
// result.
func (s *Session) SubmitAnswer(ctx context.Context, text string) string {
	if !s.active || s.currentIndex == 0 {
		return NoActiveQuestionMessage
	}

	q := s.selected[s.currentIndex-1]
	score := ScoreAnswer(q, text)
	s.scores = append(s.scores, score)
	feedback := Feedback(q, score)

	if s.currentIndex >= len(s.selected) {
		return feedback + "\n\n" + s.complete(ctx)
	}

	next, ok := s.NextQuestion()
	if !ok {
		return feedback
	}
	return feedback + "\n\n" + next
}

func (s *Session) complete(ctx context.Context) string {
	percent := Percent(s.scores)
	s.active = false
	s.finalPercent = &percent

	msg := fmt.Sprintf("Quiz complete! Your final score for the %s quiz is %d%%.", s.profile.Name, percent)
	eligible := percent >= s.rewardThreshold

	var reward *models.RewardResult
	switch {
	case eligible && s.walletAddress != "":
		result := s.issueReward(ctx, percent)
		reward = &result
		msg += "\n" + result.Message
	case eligible:
		msg += "\nYou qualified for an NFT reward. Set a wallet address before your next quiz to claim it."
	default:
		msg += fmt.Sprintf("\nYou need %d%% or higher to earn an NFT reward. Try again!", s.rewardThreshold)
	}

	if s.onComplete != nil {
		scores := make([]float64, len(s.scores))
		copy(scores, s.scores)
		s.onComplete(Completion{
			CharacterName:  s.profile.Name,
			WalletAddress:  s.walletAddress,
			Scores:         scores,
			Percent:        percent,
			RewardEligible: eligible,
			Reward:         reward,
		})
	}
	return msg
}

type mintOutcome struct {
	result models.RewardResult
	err    error
}

// issueReward calls the issuer under the session's reward timeout. An issuer
// that ignores its context is abandoned once the deadline passes.
func (s *Session) issueReward(ctx context.Context, percent int) models.RewardResult {
	ctx, cancel := context.WithTimeout(ctx, s.rewardTimeout)
	defer cancel()

	// The goroutine may outlive this call, so it only sees copies.
	issuer, name, wallet := s.issuer, s.profile.Name, s.walletAddress
	done := make(chan mintOutcome, 1)
	go func() {
		res, err := issuer.MintReward(ctx, name, wallet, percent)
		done <- mintOutcome{result: res, err: err}
	}()

	var out mintOutcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out.err = ctx.Err()
	}

	if out.err != nil {
		log.Printf("[quiz] reward mint failed for %s (%s): %v", name, wallet, out.err)
		return models.RewardResult{Success: false, Message: MintFailedMessage}
	}
	if out.result.Message == "" {
		if out.result.Success {
			out.result.Message = "NFT minted successfully."
		} else {
			out.result.Message = MintFailedMessage
		}
	}
	return out.result
}

// Reset returns the session to idle and discards all quiz progress. The
// wallet address is kept.
func (s *Session) Reset() {
	s.active = false
	s.selected = nil
	s.currentIndex = 0
	s.scores = nil
	s.finalPercent = nil
}

// ── Accessors ──────────────────────────────────────────

func (s *Session) IsActive() bool {
	return s.active
}

func (s *Session) CharacterName() string {
	return s.profile.Name
}

func (s *Session) RewardThreshold() int {
	return s.rewardThreshold
}

// SetWalletAddress accepts only 0x-prefixed 40-hex-digit addresses. On
// mismatch the current address is left untouched.
func (s *Session) SetWalletAddress(address string) bool {
	if !IsValidWalletAddress(address) {
		return false
	}
	s.walletAddress = address
	return true
}

func (s *Session) WalletAddress() string {
	return s.walletAddress
}

func (s *Session) Catalogue() []models.QuizQuestion {
	out := make([]models.QuizQuestion, len(s.catalogue))
	copy(out, s.catalogue)
	return out
}

func (s *Session) Progress() Progress {
	scores := make([]float64, len(s.scores))
	copy(scores, s.scores)
	return Progress{
		Active:   s.active,
		Asked:    s.currentIndex,
		Answered: len(s.scores),
		Total:    len(s.selected),
		Scores:   scores,
	}
}

// Result reports the final percentage once the last answer has been scored.
func (s *Session) Result() (int, bool) {
	if s.finalPercent == nil {
		return 0, false
	}
	return *s.finalPercent, true
}

// ── Helpers ────────────────────────────────────────────

func IsValidWalletAddress(address string) bool {
	return walletPattern.MatchString(address)
}

// Percent is round(100 * mean(scores)); an empty slice is 0.
func Percent(scores []float64) int {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, sc := range scores {
		sum += sc
	}
	return int(math.Round(100 * sum / float64(len(scores))))
}

func formatQuestion(number int, q models.QuizQuestion) string {
	text := fmt.Sprintf("Question %d: %s", number, q.Question)
	if q.Type == models.QuestionBoolean {
		text += " (Answer True or False)"
	}
	return text
}
