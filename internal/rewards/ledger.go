package rewards

import (
	"context"
	"log"

	"github.com/character-quiz/backend/internal/models"
)

// Recorder persists mint attempts. *Store satisfies it.
type Recorder interface {
	RecordReward(ctx context.Context, rec models.RewardRecord) (int64, error)
}

// LedgerIssuer wraps another issuer, records every attempt and publishes a
// reward event. Recording and publishing failures are logged, never returned:
// the mint outcome is what the player cares about.
type LedgerIssuer struct {
	next      Issuer
	recorder  Recorder
	publisher Publisher
}

func NewLedgerIssuer(next Issuer, recorder Recorder, publisher Publisher) *LedgerIssuer {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &LedgerIssuer{next: next, recorder: recorder, publisher: publisher}
}

func (l *LedgerIssuer) MintReward(ctx context.Context, characterName, walletAddress string, score int) (models.RewardResult, error) {
	result, err := l.next.MintReward(ctx, characterName, walletAddress, score)

	rec := models.RewardRecord{
		CharacterName: characterName,
		WalletAddress: walletAddress,
		Score:         score,
		Status:        models.RewardIssued,
		Simulated:     result.Simulated,
		Message:       result.Message,
	}
	if err != nil {
		rec.Status = models.RewardFailed
		rec.Message = err.Error()
	} else if !result.Success {
		rec.Status = models.RewardFailed
	}
	if result.TxHash != "" {
		rec.TxHash = &result.TxHash
	}
	if result.TokenID != "" {
		rec.TokenID = &result.TokenID
	}

	// Ledger writes must outlive a deadline that may already have fired.
	bg := context.WithoutCancel(ctx)
	if l.recorder != nil {
		if _, rerr := l.recorder.RecordReward(bg, rec); rerr != nil {
			log.Printf("[rewards] failed to record reward for %s: %v", walletAddress, rerr)
		}
	}

	eventType := EventRewardIssued
	if rec.Status == models.RewardFailed {
		eventType = EventRewardFailed
	}
	if perr := l.publisher.Publish(bg, eventType, rec); perr != nil {
		log.Printf("[rewards] failed to publish %s: %v", eventType, perr)
	}

	return result, err
}
