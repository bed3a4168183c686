package rewards

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/character-quiz/backend/internal/models"
)

// Issuer mints a reward for a character quiz score (0-100).
type Issuer interface {
	MintReward(ctx context.Context, characterName, walletAddress string, score int) (models.RewardResult, error)
}

// ── SimulatedIssuer (no minting service configured) ──────

// SimulatedIssuer fabricates a mint result. The same inputs always yield the
// same transaction hash and token id.
type SimulatedIssuer struct{}

func NewSimulatedIssuer() *SimulatedIssuer {
	return &SimulatedIssuer{}
}

func (SimulatedIssuer) MintReward(ctx context.Context, characterName, walletAddress string, score int) (models.RewardResult, error) {
	if err := ctx.Err(); err != nil {
		return models.RewardResult{}, err
	}

	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", characterName, walletAddress, score)))
	txHash := "0x" + hex.EncodeToString(sum[:])
	tokenID := fmt.Sprintf("%d", binary.BigEndian.Uint32(sum[:4])%1_000_000)

	return models.RewardResult{
		Success: true,
		Message: fmt.Sprintf(
			"[SIMULATED] NFT minted for your %d%% score on the %s quiz and sent to %s. Transaction: %s, token ID: %s.",
			score, characterName, walletAddress, txHash, tokenID,
		),
		TxHash:    txHash,
		TokenID:   tokenID,
		Simulated: true,
	}, nil
}
