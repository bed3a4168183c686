package models

import "time"

type QuestionType string

const (
	QuestionOpen    QuestionType = "open"
	QuestionBoolean QuestionType = "boolean"
)

type QuestionCategory string

const (
	CategoryBackground  QuestionCategory = "Background"
	CategorySkills      QuestionCategory = "Skills"
	CategoryPersonality QuestionCategory = "Personality"
	CategoryGeneral     QuestionCategory = "General"
)

const (
	AnswerTrue  = "True"
	AnswerFalse = "False"
)

type QuizQuestion struct {
	Question    string           `json:"question"`
	ModelAnswer string           `json:"model_answer"`
	Category    QuestionCategory `json:"category"`
	Type        QuestionType     `json:"type"`
}

func (q QuizQuestion) IsOpen() bool {
	return q.Type == QuestionOpen
}

// QuizAttempt is a finished quiz session as stored in quiz_attempts.
type QuizAttempt struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	SessionID      string    `json:"session_id"`
	CharacterName  string    `json:"character_name"`
	QuestionCount  int       `json:"question_count"`
	Scores         []float64 `json:"scores"`
	Percent        int       `json:"percent"`
	RewardEligible bool      `json:"reward_eligible"`
	CompletedAt    time.Time `json:"completed_at"`
}

// ── Request Types ─────────────────────────────────────

type StartQuizRequest struct {
	Count         int    `json:"count,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty"`
}

type AnswerRequest struct {
	Answer string `json:"answer"`
}

type WalletRequest struct {
	WalletAddress string `json:"wallet_address"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

// ── Response Types ────────────────────────────────────

type StartQuizResponse struct {
	SessionID     string `json:"session_id"`
	CharacterName string `json:"character_name"`
	Welcome       string `json:"welcome"`
	Question      string `json:"question,omitempty"`
	Total         int    `json:"total"`
}

type QuestionResponse struct {
	Question string `json:"question,omitempty"`
	Done     bool   `json:"done"`
}

type AnswerResponse struct {
	Feedback string `json:"feedback"`
	Active   bool   `json:"active"`
	Answered int    `json:"answered"`
	Total    int    `json:"total"`
	Percent  *int   `json:"percent,omitempty"`
}

type WalletResponse struct {
	Accepted bool `json:"accepted"`
}

type ChatResponse struct {
	Reply      string `json:"reply"`
	QuizActive bool   `json:"quiz_active"`
}

type AttemptListResponse struct {
	Attempts []QuizAttempt `json:"attempts"`
	Total    int           `json:"total"`
}

type CharacterListResponse struct {
	Characters []string `json:"characters"`
}
