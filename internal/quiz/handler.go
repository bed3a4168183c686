package quiz

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/character-quiz/backend/internal/middleware"
	"github.com/character-quiz/backend/internal/models"
	"github.com/character-quiz/backend/internal/profiles"
	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the quiz endpoints on an authenticated router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/characters", h.ListCharacters).Methods("GET")
	r.HandleFunc("/characters/{name}/quiz", h.StartQuiz).Methods("POST")
	r.HandleFunc("/quiz/history", h.History).Methods("GET")
	r.HandleFunc("/quiz/{id}/question", h.NextQuestion).Methods("GET")
	r.HandleFunc("/quiz/{id}/answer", h.SubmitAnswer).Methods("POST")
	r.HandleFunc("/quiz/{id}/wallet", h.SetWallet).Methods("POST")
	r.HandleFunc("/quiz/{id}", h.EndQuiz).Methods("DELETE")
}

func (h *Handler) ListCharacters(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.ListCharacters(r.Context())
	if err != nil {
		log.Printf("[handler] list characters: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list characters"})
		return
	}
	writeJSON(w, http.StatusOK, models.CharacterListResponse{Characters: names})
}

func (h *Handler) StartQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.StartQuizRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
			return
		}
	}
	if req.Count < 0 || req.Count > 50 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "count must be between 1 and 50"})
		return
	}

	resp, err := h.service.StartQuiz(r.Context(), userID, mux.Vars(r)["name"], req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	resp, err := h.service.NextQuestion(userID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.SubmitAnswer(r.Context(), userID, mux.Vars(r)["id"], req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) SetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.WalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	accepted, err := h.service.SetWallet(userID, mux.Vars(r)["id"], strings.TrimSpace(req.WalletAddress))
	if err != nil {
		writeError(w, err)
		return
	}
	if !accepted {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "wallet_address must be 0x followed by 40 hex digits"})
		return
	}
	writeJSON(w, http.StatusOK, models.WalletResponse{Accepted: true})
}

func (h *Handler) EndQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	if err := h.service.EndQuiz(userID, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	query := r.URL.Query()
	limit := intQueryParam(query, "limit", 20)
	offset := intQueryParam(query, "offset", 0)

	resp, err := h.service.History(r.Context(), userID, limit, offset)
	if err != nil {
		log.Printf("[handler] quiz history for user %d: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load quiz history"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeError maps service errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Quiz session not found"})
	case errors.Is(err, ErrSessionNotOwned):
		writeJSON(w, http.StatusForbidden, models.ErrorResponse{Error: "Quiz session belongs to another user"})
	case errors.Is(err, profiles.ErrNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Character not found"})
	case errors.Is(err, ErrInvalidWallet):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "wallet_address must be 0x followed by 40 hex digits"})
	default:
		log.Printf("[handler] %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

func intQueryParam(query url.Values, key string, defaultVal int) int {
	if v := query.Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return defaultVal
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
