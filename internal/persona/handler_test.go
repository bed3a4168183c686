package persona

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/character-quiz/backend/internal/middleware"
	"github.com/character-quiz/backend/internal/models"
	"github.com/character-quiz/backend/internal/profiles"
	"github.com/character-quiz/backend/internal/quiz"
	"github.com/gorilla/mux"
)

type oneProfile models.CharacterProfile

func (o oneProfile) Get(ctx context.Context, name string) (*models.CharacterProfile, error) {
	if !strings.EqualFold(name, o.Name) {
		return nil, fmt.Errorf("%w: %s", profiles.ErrNotFound, name)
	}
	p := models.CharacterProfile(o)
	return &p, nil
}

func (o oneProfile) List(ctx context.Context) ([]string, error) {
	return []string{o.Name}, nil
}

func newChatRouter(h *Handler, userID int64) *mux.Router {
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithUserID(req.Context(), userID)))
		})
	})
	h.RegisterRoutes(r)
	return r
}

func postChat(t *testing.T, r *mux.Router, name, message string) (*httptest.ResponseRecorder, models.ChatResponse) {
	t.Helper()
	body, _ := json.Marshal(models.ChatRequest{Message: message})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/characters/"+name+"/chat", bytes.NewReader(body)))
	var resp models.ChatResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	return rec, resp
}

func TestChatHandler(t *testing.T) {
	svc := quiz.NewService(oneProfile(ericProfile()), nil, quiz.NewRegistry(time.Hour), nil, nil, quiz.Options{RewardThreshold: quiz.DefaultRewardThreshold})
	h := NewHandler(svc, NewMockClient(), time.Hour)
	r := newChatRouter(h, 1)

	rec, resp := postChat(t, r, "eric", "hi")
	if rec.Code != http.StatusOK || !strings.HasPrefix(resp.Reply, "[Mock]") || resp.QuizActive {
		t.Fatalf("chat = %d %+v", rec.Code, resp)
	}

	_, resp = postChat(t, r, "Eric", "start quiz")
	if !resp.QuizActive {
		t.Errorf("quiz not active after start: %+v", resp)
	}

	// Same user and character share one conversation.
	_, resp = postChat(t, r, "ERIC", "true")
	if !strings.Contains(resp.Reply, "(Score: ") {
		t.Errorf("answer reply = %q", resp.Reply)
	}

	if rec, _ := postChat(t, r, "ghost", "hi"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown character status = %d", rec.Code)
	}
	if rec, _ := postChat(t, r, "eric", "   "); rec.Code != http.StatusBadRequest {
		t.Errorf("blank message status = %d", rec.Code)
	}
}

func TestChatHandlerSweep(t *testing.T) {
	svc := quiz.NewService(oneProfile(ericProfile()), nil, quiz.NewRegistry(time.Hour), nil, nil, quiz.Options{RewardThreshold: quiz.DefaultRewardThreshold})
	h := NewHandler(svc, NewMockClient(), time.Minute)
	postChat(t, newChatRouter(h, 1), "eric", "hi")

	if n := h.Sweep(time.Now()); n != 0 {
		t.Errorf("fresh conversation swept")
	}
	if n := h.Sweep(time.Now().Add(2 * time.Minute)); n != 1 {
		t.Errorf("Sweep removed %d, want 1", n)
	}
}
