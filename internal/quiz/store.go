package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/character-quiz/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) SaveAttempt(ctx context.Context, a models.QuizAttempt) (int64, error) {
	scores, err := json.Marshal(a.Scores)
	if err != nil {
		return 0, fmt.Errorf("encode scores: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO quiz_attempts (user_id, session_id, character_name, question_count, scores, percent, reward_eligible)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		a.UserID, a.SessionID, a.CharacterName, a.QuestionCount, scores, a.Percent, a.RewardEligible,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert quiz attempt: %w", err)
	}
	return id, nil
}

func (s *Store) ListAttempts(ctx context.Context, userID int64, limit, offset int) ([]models.QuizAttempt, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM quiz_attempts WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count quiz attempts: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, session_id, character_name, question_count, scores, percent, reward_eligible, completed_at
		 FROM quiz_attempts
		 WHERE user_id = $1
		 ORDER BY completed_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list quiz attempts: %w", err)
	}
	defer rows.Close()

	var attempts []models.QuizAttempt
	for rows.Next() {
		var a models.QuizAttempt
		var scores []byte
		if err := rows.Scan(&a.ID, &a.UserID, &a.SessionID, &a.CharacterName, &a.QuestionCount,
			&scores, &a.Percent, &a.RewardEligible, &a.CompletedAt); err != nil {
			return nil, 0, fmt.Errorf("scan quiz attempt: %w", err)
		}
		if err := json.Unmarshal(scores, &a.Scores); err != nil {
			return nil, 0, fmt.Errorf("decode scores for attempt %d: %w", a.ID, err)
		}
		attempts = append(attempts, a)
	}
	return attempts, total, rows.Err()
}
