package persona

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/character-quiz/backend/internal/models"
	"github.com/character-quiz/backend/internal/quiz"
)

const (
	QuizAlreadyRunningMessage = "A quiz is already running. Answer the current question or type \"reset quiz\" to stop."
	QuizResetMessage          = "Quiz reset. Type \"start quiz\" whenever you want to try again."
	InvalidWalletMessage      = "That doesn't look like a wallet address. It should be 0x followed by 40 hex digits."
	ChatUnavailableMessage    = "Sorry, I can't chat right now. Type \"start quiz\" to take my quiz instead."
)

// Conversation is one user's chat with one character. Quiz commands and
// answers go to the quiz session; anything else goes to the model. It is not
// safe for concurrent use.
type Conversation struct {
	profile models.CharacterProfile
	session *quiz.Session
	llm     LLMClient
	history []Turn
}

func NewConversation(profile models.CharacterProfile, session *quiz.Session, llm LLMClient) *Conversation {
	return &Conversation{profile: profile, session: session, llm: llm}
}

func (c *Conversation) QuizActive() bool {
	return c.session.IsActive()
}

// Handle routes one user message and returns the reply.
func (c *Conversation) Handle(ctx context.Context, message string) string {
	message = strings.TrimSpace(message)
	command := strings.ToLower(message)

	switch {
	case command == "start quiz":
		return c.startQuiz()
	case command == "reset quiz" || command == "stop quiz":
		c.session.Reset()
		return QuizResetMessage
	case strings.HasPrefix(command, "wallet ") && c.isWalletCommand(message):
		return c.setWallet(strings.TrimSpace(message[len("wallet "):]))
	case c.session.IsActive():
		return c.session.SubmitAnswer(ctx, message)
	default:
		return c.chat(ctx, message)
	}
}

func (c *Conversation) startQuiz() string {
	if c.session.IsActive() {
		return QuizAlreadyRunningMessage
	}
	welcome := c.session.Start()
	first, ok := c.session.NextQuestion()
	if !ok {
		return welcome
	}
	return welcome + "\n\n" + first
}

// isWalletCommand reports whether a "wallet ..." message sets the wallet.
// During a quiz only a well-formed address counts; anything else is an answer.
func (c *Conversation) isWalletCommand(message string) bool {
	if !c.session.IsActive() {
		return true
	}
	return quiz.IsValidWalletAddress(strings.TrimSpace(message[len("wallet "):]))
}

func (c *Conversation) setWallet(address string) string {
	if !c.session.SetWalletAddress(address) {
		return InvalidWalletMessage
	}
	return fmt.Sprintf("Wallet %s saved. Score %d%% or higher to have your reward sent there.", address, c.session.RewardThreshold())
}

func (c *Conversation) chat(ctx context.Context, message string) string {
	if c.llm == nil {
		return ChatUnavailableMessage
	}

	prompt := BuildUserPrompt(c.profile.Name, c.history, message)
	resp, err := c.llm.Generate(ctx, SystemPrompt(c.profile), prompt)
	if err != nil {
		log.Printf("[persona] chat as %s failed: %v", c.profile.Name, err)
		return ChatUnavailableMessage
	}

	reply := strings.TrimSpace(resp.Content)
	c.history = append(c.history,
		Turn{Speaker: userSpeaker, Text: message},
		Turn{Speaker: c.profile.Name, Text: reply},
	)
	if len(c.history) > 2*maxHistoryTurns {
		c.history = c.history[len(c.history)-maxHistoryTurns:]
	}
	return reply
}
