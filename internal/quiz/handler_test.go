package quiz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/character-quiz/backend/internal/middleware"
	"github.com/character-quiz/backend/internal/models"
	"github.com/character-quiz/backend/internal/profiles"
	"github.com/gorilla/mux"
)

type stubSource map[string]models.CharacterProfile

func (s stubSource) Get(ctx context.Context, name string) (*models.CharacterProfile, error) {
	for n, p := range s {
		if strings.EqualFold(n, name) {
			p := p
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", profiles.ErrNotFound, name)
}

func (s stubSource) List(ctx context.Context) ([]string, error) {
	var names []string
	for n := range s {
		names = append(names, n)
	}
	return names, nil
}

type memoryAttempts struct {
	mu       sync.Mutex
	attempts []models.QuizAttempt
}

func (m *memoryAttempts) SaveAttempt(ctx context.Context, a models.QuizAttempt) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = int64(len(m.attempts) + 1)
	m.attempts = append(m.attempts, a)
	return a.ID, nil
}

func (m *memoryAttempts) ListAttempts(ctx context.Context, userID int64, limit, offset int) ([]models.QuizAttempt, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.QuizAttempt
	for _, a := range m.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

type testServer struct {
	router   *mux.Router
	attempts *memoryAttempts
}

func newTestServer() *testServer {
	attempts := &memoryAttempts{}
	svc := NewService(
		stubSource{"Eric": ericProfile()},
		attempts,
		NewRegistry(time.Hour),
		nil,
		nil,
		Options{QuestionCount: 5, RewardThreshold: DefaultRewardThreshold, RewardTimeout: time.Second},
	)

	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	// Tests pick the caller through X-User-ID in place of a bearer token.
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var uid int64 = 1
			fmt.Sscan(r.Header.Get("X-User-ID"), &uid)
			next.ServeHTTP(w, r.WithContext(middleware.WithUserID(r.Context(), uid)))
		})
	})
	NewHandler(svc).RegisterRoutes(api)
	return &testServer{router: router, attempts: attempts}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-User-ID", fmt.Sprint(userID))
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerQuizFlow(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, "POST", "/api/v1/characters/eric/quiz", models.StartQuizRequest{}, 1)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d, body %s", rec.Code, rec.Body.String())
	}
	var start models.StartQuizResponse
	json.NewDecoder(rec.Body).Decode(&start)
	if start.SessionID == "" || start.Total != 5 || !strings.HasPrefix(start.Question, "Question 1: ") {
		t.Fatalf("start response = %+v", start)
	}

	var last models.AnswerResponse
	for i := 0; i < start.Total; i++ {
		rec = ts.do(t, "POST", "/api/v1/quiz/"+start.SessionID+"/answer", models.AnswerRequest{Answer: "true"}, 1)
		if rec.Code != http.StatusOK {
			t.Fatalf("answer %d status = %d, body %s", i+1, rec.Code, rec.Body.String())
		}
		last = models.AnswerResponse{}
		json.NewDecoder(rec.Body).Decode(&last)
	}

	if last.Active || last.Answered != 5 || last.Percent == nil {
		t.Fatalf("final answer response = %+v", last)
	}

	rec = ts.do(t, "GET", "/api/v1/quiz/history", nil, 1)
	var history models.AttemptListResponse
	json.NewDecoder(rec.Body).Decode(&history)
	if history.Total != 1 || history.Attempts[0].Percent != *last.Percent {
		t.Errorf("history = %+v, want one attempt at %d%%", history, *last.Percent)
	}
	if history.Attempts[0].SessionID != start.SessionID {
		t.Errorf("attempt session = %q, want %q", history.Attempts[0].SessionID, start.SessionID)
	}

	rec = ts.do(t, "GET", "/api/v1/quiz/"+start.SessionID+"/question", nil, 1)
	var q models.QuestionResponse
	json.NewDecoder(rec.Body).Decode(&q)
	if !q.Done {
		t.Errorf("question after completion = %+v, want done", q)
	}
}

func TestHandlerErrors(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, "POST", "/api/v1/characters/ghost/quiz", nil, 1)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown character status = %d, want 404", rec.Code)
	}

	rec = ts.do(t, "POST", "/api/v1/characters/eric/quiz", models.StartQuizRequest{WalletAddress: "0x1234"}, 1)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad wallet status = %d, want 400", rec.Code)
	}

	rec = ts.do(t, "POST", "/api/v1/characters/eric/quiz", nil, 1)
	var start models.StartQuizResponse
	json.NewDecoder(rec.Body).Decode(&start)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		user   int64
		want   int
	}{
		{"unknown session", "GET", "/api/v1/quiz/nope/question", nil, 1, http.StatusNotFound},
		{"other user", "POST", "/api/v1/quiz/" + start.SessionID + "/answer", models.AnswerRequest{Answer: "x"}, 2, http.StatusForbidden},
		{"invalid wallet", "POST", "/api/v1/quiz/" + start.SessionID + "/wallet", models.WalletRequest{WalletAddress: "nope"}, 1, http.StatusBadRequest},
		{"valid wallet", "POST", "/api/v1/quiz/" + start.SessionID + "/wallet", models.WalletRequest{WalletAddress: testWallet}, 1, http.StatusOK},
		{"end quiz", "DELETE", "/api/v1/quiz/" + start.SessionID, nil, 1, http.StatusNoContent},
		{"ended quiz is gone", "GET", "/api/v1/quiz/" + start.SessionID + "/question", nil, 1, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, tt.method, tt.path, tt.body, tt.user)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestHandlerListCharacters(t *testing.T) {
	ts := newTestServer()
	rec := ts.do(t, "GET", "/api/v1/characters", nil, 1)

	var resp models.CharacterListResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Characters) != 1 || resp.Characters[0] != "Eric" {
		t.Errorf("characters = %v", resp.Characters)
	}
}
