package rewards

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/character-quiz/backend/internal/models"
	"github.com/gorilla/mux"
)

// Handler exposes the reward ledger.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/rewards/{wallet}", h.ListByWallet).Methods("GET")
}

func (h *Handler) ListByWallet(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	records, err := h.store.ListByWallet(r.Context(), mux.Vars(r)["wallet"], limit)
	if err != nil {
		log.Printf("[rewards] list by wallet: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list rewards"})
		return
	}
	if records == nil {
		records = []models.RewardRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
