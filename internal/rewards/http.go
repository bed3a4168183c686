package rewards

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/character-quiz/backend/internal/models"
)

// ── HTTPIssuer (external minting service) ────────────────

// HTTPIssuer posts mint requests to a minting service as JSON.
type HTTPIssuer struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

type mintRequest struct {
	CharacterName string `json:"character_name"`
	WalletAddress string `json:"wallet_address"`
	Score         int    `json:"score"`
}

type mintResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	TxHash  string `json:"tx_hash"`
	TokenID string `json:"token_id"`
}

func NewHTTPIssuer(endpoint, apiKey string) *HTTPIssuer {
	return &HTTPIssuer{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (h *HTTPIssuer) MintReward(ctx context.Context, characterName, walletAddress string, score int) (models.RewardResult, error) {
	body, err := json.Marshal(mintRequest{
		CharacterName: characterName,
		WalletAddress: walletAddress,
		Score:         score,
	})
	if err != nil {
		return models.RewardResult{}, fmt.Errorf("encode mint request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return models.RewardResult{}, fmt.Errorf("build mint request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return models.RewardResult{}, fmt.Errorf("mint request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.RewardResult{}, fmt.Errorf("minting service returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var mr mintResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return models.RewardResult{}, fmt.Errorf("decode mint response: %w", err)
	}

	return models.RewardResult{
		Success: mr.Success,
		Message: mr.Message,
		TxHash:  mr.TxHash,
		TokenID: mr.TokenID,
	}, nil
}
