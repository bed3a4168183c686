package quiz

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/character-quiz/backend/internal/models"
	"github.com/character-quiz/backend/internal/profiles"
	"github.com/character-quiz/backend/internal/rewards"
)

// AttemptStore persists finished quiz runs. *Store satisfies it.
type AttemptStore interface {
	SaveAttempt(ctx context.Context, a models.QuizAttempt) (int64, error)
	ListAttempts(ctx context.Context, userID int64, limit, offset int) ([]models.QuizAttempt, int, error)
}

type Options struct {
	QuestionCount int
	// RewardThreshold is the minimum percent for a reward; 0 rewards every run.
	RewardThreshold int
	RewardTimeout   time.Duration
	Generator       GeneratorConfig
}

type Service struct {
	profiles  profiles.Source
	attempts  AttemptStore
	registry  *Registry
	issuer    RewardIssuer
	publisher rewards.Publisher
	opts      Options
}

func NewService(src profiles.Source, attempts AttemptStore, registry *Registry, issuer RewardIssuer, publisher rewards.Publisher, opts Options) *Service {
	if publisher == nil {
		publisher = rewards.NopPublisher{}
	}
	log.Printf("[quiz] Service: questions=%d threshold=%d%% rewardTimeout=%v",
		opts.QuestionCount, opts.RewardThreshold, opts.RewardTimeout)
	return &Service{
		profiles:  src,
		attempts:  attempts,
		registry:  registry,
		issuer:    issuer,
		publisher: publisher,
		opts:      opts,
	}
}

// NewSession builds a session with the service-wide settings. The hook, if
// any, runs after the final answer is scored.
func (s *Service) NewSession(profile models.CharacterProfile, hook func(Completion)) *Session {
	opts := []SessionOption{
		WithRewardIssuer(s.issuer),
		WithQuestionCount(s.opts.QuestionCount),
		WithRewardThreshold(s.opts.RewardThreshold),
		WithRewardTimeout(s.opts.RewardTimeout),
		WithGeneratorConfig(s.opts.Generator),
		WithCompletionHook(hook),
	}
	return NewSession(profile, opts...)
}

// Profile looks up a character by name.
func (s *Service) Profile(ctx context.Context, name string) (*models.CharacterProfile, error) {
	return s.profiles.Get(ctx, name)
}

func (s *Service) ListCharacters(ctx context.Context) ([]string, error) {
	names, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// ── Quiz Lifecycle ─────────────────────────────────────

func (s *Service) StartQuiz(ctx context.Context, userID int64, characterName string, req models.StartQuizRequest) (*models.StartQuizResponse, error) {
	profile, err := s.profiles.Get(ctx, characterName)
	if err != nil {
		return nil, err
	}

	var sessionID string
	session := s.NewSession(*profile, func(c Completion) {
		s.RecordCompletion(userID, sessionID, c)
	})
	if req.Count > 0 {
		session.questionCount = req.Count
	}
	if req.WalletAddress != "" && !session.SetWalletAddress(req.WalletAddress) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidWallet, req.WalletAddress)
	}

	welcome := session.Start()
	first, _ := session.NextQuestion()
	sessionID = s.registry.Add(userID, session)

	return &models.StartQuizResponse{
		SessionID:     sessionID,
		CharacterName: profile.Name,
		Welcome:       welcome,
		Question:      first,
		Total:         session.Progress().Total,
	}, nil
}

func (s *Service) NextQuestion(userID int64, sessionID string) (*models.QuestionResponse, error) {
	var resp models.QuestionResponse
	err := s.registry.With(sessionID, userID, func(sess *Session) error {
		q, ok := sess.NextQuestion()
		resp.Question = q
		resp.Done = !ok
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *Service) SubmitAnswer(ctx context.Context, userID int64, sessionID, answer string) (*models.AnswerResponse, error) {
	var resp models.AnswerResponse
	err := s.registry.With(sessionID, userID, func(sess *Session) error {
		resp.Feedback = sess.SubmitAnswer(ctx, answer)
		p := sess.Progress()
		resp.Active = p.Active
		resp.Answered = p.Answered
		resp.Total = p.Total
		if percent, done := sess.Result(); done {
			resp.Percent = &percent
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *Service) SetWallet(userID int64, sessionID, address string) (bool, error) {
	var accepted bool
	err := s.registry.With(sessionID, userID, func(sess *Session) error {
		accepted = sess.SetWalletAddress(address)
		return nil
	})
	return accepted, err
}

// EndQuiz resets the session and forgets it.
func (s *Service) EndQuiz(userID int64, sessionID string) error {
	err := s.registry.With(sessionID, userID, func(sess *Session) error {
		sess.Reset()
		return nil
	})
	if err != nil {
		return err
	}
	return s.registry.Remove(sessionID, userID)
}

func (s *Service) History(ctx context.Context, userID int64, limit, offset int) (*models.AttemptListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	attempts, total, err := s.attempts.ListAttempts(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if attempts == nil {
		attempts = []models.QuizAttempt{}
	}
	return &models.AttemptListResponse{Attempts: attempts, Total: total}, nil
}

// RecordCompletion persists the attempt and announces it. Failures are logged
// only; the player already has their result.
func (s *Service) RecordCompletion(userID int64, sessionID string, c Completion) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	attempt := models.QuizAttempt{
		UserID:         userID,
		SessionID:      sessionID,
		CharacterName:  c.CharacterName,
		QuestionCount:  len(c.Scores),
		Scores:         c.Scores,
		Percent:        c.Percent,
		RewardEligible: c.RewardEligible,
		CompletedAt:    time.Now(),
	}

	if s.attempts != nil {
		if _, err := s.attempts.SaveAttempt(ctx, attempt); err != nil {
			log.Printf("[quiz] failed to save attempt for user %d: %v", userID, err)
		}
	}
	if err := s.publisher.Publish(ctx, rewards.EventQuizComplete, attempt); err != nil {
		log.Printf("[quiz] failed to publish %s: %v", rewards.EventQuizComplete, err)
	}
}
