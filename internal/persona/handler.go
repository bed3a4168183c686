package persona

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/character-quiz/backend/internal/middleware"
	"github.com/character-quiz/backend/internal/models"
	"github.com/character-quiz/backend/internal/profiles"
	"github.com/character-quiz/backend/internal/quiz"
	"github.com/gorilla/mux"
)

type conversationEntry struct {
	mu       sync.Mutex
	conv     *Conversation
	lastUsed time.Time
}

// Handler serves in-character chat. Each (user, character) pair keeps its
// own conversation and quiz session in memory.
type Handler struct {
	service *quiz.Service
	llm     LLMClient

	mu            sync.Mutex
	conversations map[string]*conversationEntry
	ttl           time.Duration
}

func NewHandler(service *quiz.Service, llm LLMClient, ttl time.Duration) *Handler {
	return &Handler{
		service:       service,
		llm:           llm,
		conversations: make(map[string]*conversationEntry),
		ttl:           ttl,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/characters/{name}/chat", h.Chat).Methods("POST")
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "message is required"})
		return
	}

	entry, err := h.conversation(r.Context(), userID, mux.Vars(r)["name"])
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Character not found"})
			return
		}
		log.Printf("[handler] chat lookup: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}

	entry.mu.Lock()
	reply := entry.conv.Handle(r.Context(), req.Message)
	active := entry.conv.QuizActive()
	entry.lastUsed = time.Now()
	entry.mu.Unlock()

	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply, QuizActive: active})
}

// conversation returns the caller's conversation with the character,
// creating it on first use.
func (h *Handler) conversation(ctx context.Context, userID int64, name string) (*conversationEntry, error) {
	profile, err := h.service.Profile(ctx, name)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%d/%s", userID, strings.ToLower(profile.Name))

	h.mu.Lock()
	defer h.mu.Unlock()
	if e, ok := h.conversations[key]; ok {
		return e, nil
	}

	session := h.service.NewSession(*profile, func(c quiz.Completion) {
		h.service.RecordCompletion(userID, "chat:"+key, c)
	})
	e := &conversationEntry{
		conv:     NewConversation(*profile, session, h.llm),
		lastUsed: time.Now(),
	}
	h.conversations[key] = e
	return e, nil
}

// Sweep forgets conversations idle for longer than the TTL.
func (h *Handler) Sweep(now time.Time) int {
	if h.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-h.ttl)

	h.mu.Lock()
	defer h.mu.Unlock()
	removed := 0
	for key, e := range h.conversations {
		if !e.mu.TryLock() {
			continue
		}
		idle := e.lastUsed.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(h.conversations, key)
			removed++
		}
	}
	return removed
}

func (h *Handler) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := h.Sweep(now); n > 0 {
				log.Printf("[persona] expired %d idle conversations", n)
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
