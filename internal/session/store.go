// Package session maps browser sessions onto their dashboard view state.
package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"ledgerview/internal/cache"
	"ledgerview/internal/dashboard"
	"ledgerview/internal/log"
)

// CookieName carries the session ID.
const CookieName = "ledger_session"

// Store holds one ViewState per session ID in a bounded cache. Idle sessions
// expire after ttl; the least recently used go once the store is full.
type Store struct {
	states *cache.LRUCache[*dashboard.ViewState]
	ttl    time.Duration
	logger *log.Logger
}

// NewStore creates a store with at most maxSessions live sessions.
func NewStore(maxSessions int, ttl time.Duration, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	s := &Store{ttl: ttl, logger: logger.WithComponent(log.ComponentSession)}
	s.states = cache.NewLRUCache[*dashboard.ViewState](maxSessions, ttl, cache.WithEvictHook(s.evicted))
	return s
}

// Cache exposes the backing cache so a cache.Manager can sweep it.
func (s *Store) Cache() cache.Cleaner {
	return s.states
}

// State returns the view state for id, creating an empty one when id is
// unknown or expired.
func (s *Store) State(id string) *dashboard.ViewState {
	state, created := s.states.GetOrCreate(id, dashboard.NewViewState)
	if created {
		s.logger.Debug("session started", log.FieldSessionID, id)
	}
	return state
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.states.Size()
}

// Resolve reads the session cookie from r, issuing a new ID and setting the
// cookie on w when it is missing or malformed. It returns the session ID and
// its state.
func (s *Store) Resolve(w http.ResponseWriter, r *http.Request) (string, *dashboard.ViewState) {
	id := cookieID(r)
	if id == "" {
		id = uuid.NewString()
	}

	// Refresh the cookie every time so its lifetime slides with the state.
	http.SetCookie(w, s.cookie(id))
	return id, s.State(id)
}

// Peek returns the state of the request's session without starting one.
func (s *Store) Peek(r *http.Request) (string, *dashboard.ViewState, bool) {
	id := cookieID(r)
	if id == "" {
		return "", nil, false
	}
	state, ok := s.states.Get(id)
	return id, state, ok
}

func cookieID(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	parsed, err := uuid.Parse(c.Value)
	if err != nil {
		return ""
	}
	return parsed.String()
}

func (s *Store) cookie(id string) *http.Cookie {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if s.ttl > 0 {
		c.MaxAge = int(s.ttl / time.Second)
	}
	return c
}

func (s *Store) evicted(id string) {
	s.logger.Debug("session expired", log.FieldSessionID, id)
}
