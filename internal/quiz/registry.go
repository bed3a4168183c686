package quiz

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("quiz session not found")
	ErrSessionNotOwned = errors.New("quiz session belongs to another user")
)

type registryEntry struct {
	mu       sync.Mutex
	session  *Session
	userID   int64
	lastUsed time.Time
}

// Registry holds live sessions in memory. Each session is guarded by its own
// mutex so calls for one session are serialized while different sessions run
// in parallel.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		entries: make(map[string]*registryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Add stores a session for the user and returns its new ID.
func (r *Registry) Add(userID int64, s *Session) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.entries[id] = &registryEntry{session: s, userID: userID, lastUsed: r.now()}
	r.mu.Unlock()
	return id
}

// With runs fn with exclusive access to the session.
func (r *Registry) With(id string, userID int64, fn func(*Session) error) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	if e.userID != userID {
		return ErrSessionNotOwned
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastUsed = r.now()
	return fn(e.session)
}

func (r *Registry) Remove(id string, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return ErrSessionNotFound
	}
	if e.userID != userID {
		return ErrSessionNotOwned
	}
	delete(r.entries, id)
	return nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep drops sessions idle for longer than the TTL and reports how many
// were removed.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, e := range r.entries {
		// An entry in use is not idle.
		if !e.mu.TryLock() {
			continue
		}
		idle := e.lastUsed.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

func (r *Registry) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Println("[quiz] Session sweeper started")

	for {
		select {
		case <-ctx.Done():
			log.Println("[quiz] Session sweeper shutting down")
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				log.Printf("[quiz] expired %d idle sessions", n)
			}
		}
	}
}
