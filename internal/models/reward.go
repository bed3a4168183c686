package models

import "time"

// RewardResult is what a reward issuer reports back for a mint request.
type RewardResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	TxHash    string `json:"tx_hash,omitempty"`
	TokenID   string `json:"token_id,omitempty"`
	Simulated bool   `json:"simulated,omitempty"`
}

type RewardStatus string

const (
	RewardIssued RewardStatus = "issued"
	RewardFailed RewardStatus = "failed"
)

// RewardRecord is one row of the reward_records ledger.
type RewardRecord struct {
	ID            int64        `json:"id"`
	CharacterName string       `json:"character_name"`
	WalletAddress string       `json:"wallet_address"`
	Score         int          `json:"score"`
	Status        RewardStatus `json:"status"`
	TxHash        *string      `json:"tx_hash,omitempty"`
	TokenID       *string      `json:"token_id,omitempty"`
	Simulated     bool         `json:"simulated"`
	Message       string       `json:"message"`
	CreatedAt     time.Time    `json:"created_at"`
}
