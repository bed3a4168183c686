package rewards

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/character-quiz/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) RecordReward(ctx context.Context, rec models.RewardRecord) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO reward_records (character_name, wallet_address, score, status, tx_hash, token_id, simulated, message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		rec.CharacterName, rec.WalletAddress, rec.Score, rec.Status,
		rec.TxHash, rec.TokenID, rec.Simulated, rec.Message,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert reward record: %w", err)
	}
	return id, nil
}

func (s *Store) ListByWallet(ctx context.Context, walletAddress string, limit int) ([]models.RewardRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, character_name, wallet_address, score, status, tx_hash, token_id, simulated, message, created_at
		 FROM reward_records
		 WHERE LOWER(wallet_address) = LOWER($1)
		 ORDER BY created_at DESC
		 LIMIT $2`,
		walletAddress, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list reward records: %w", err)
	}
	defer rows.Close()

	var records []models.RewardRecord
	for rows.Next() {
		var r models.RewardRecord
		if err := rows.Scan(&r.ID, &r.CharacterName, &r.WalletAddress, &r.Score, &r.Status,
			&r.TxHash, &r.TokenID, &r.Simulated, &r.Message, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reward record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
