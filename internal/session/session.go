// Package session keeps per-conversation state in memory: the accumulated
// citizen profile, the recent utterance window used for follow-up detection,
// and the turn history rendered into prompts.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/guiacidadao/guia/internal/profile"
)

const (
	// recentLimit bounds the sliding window of raw utterances.
	recentLimit = 5
	// turnLimit bounds stored question/answer pairs per session.
	turnLimit = 20

	defaultTTL    = 2 * time.Hour
	sweepInterval = 5 * time.Minute
)

// Turn is one completed exchange.
type Turn struct {
	Question string
	Answer   string
}

// Session is the mutable state of one conversation. It is only ever touched
// under the store lock via WithSession.
type Session struct {
	Profile profile.Profile
	Recent  []string
	Turns   []Turn
}

// PushRecent appends an utterance to the sliding window.
func (s *Session) PushRecent(utterance string) {
	s.Recent = append(s.Recent, utterance)
	if len(s.Recent) > recentLimit {
		s.Recent = s.Recent[len(s.Recent)-recentLimit:]
	}
}

// PushTurn records a completed exchange, evicting the oldest past the cap.
func (s *Session) PushTurn(question, answer string) {
	s.Turns = append(s.Turns, Turn{Question: question, Answer: answer})
	if len(s.Turns) > turnLimit {
		s.Turns = s.Turns[len(s.Turns)-turnLimit:]
	}
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Store holds sessions keyed by opaque ID. Idle sessions are swept lazily
// on access, the same way the API rate limiter ages out idle clients, so no
// background goroutine is needed.
type Store struct {
	mu        sync.Mutex
	sessions  map[string]*entry
	ttl       time.Duration
	lastSweep time.Time
}

// NewStore creates a store. A non-positive ttl falls back to the default.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{
		sessions:  make(map[string]*entry),
		ttl:       ttl,
		lastSweep: time.Now(),
	}
}

// Create allocates a fresh session and returns its ID.
func (s *Store) Create() string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &entry{session: &Session{}, lastSeen: time.Now()}
	return id
}

// WithSession runs fn with exclusive access to the session, creating it on
// first use. All reads and writes of session state go through here so a
// turn's read-modify-write is atomic with respect to concurrent requests.
func (s *Store) WithSession(id string, fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if now.Sub(s.lastSweep) > sweepInterval {
		for k, e := range s.sessions {
			if now.Sub(e.lastSeen) > s.ttl {
				delete(s.sessions, k)
			}
		}
		s.lastSweep = now
	}

	e, ok := s.sessions[id]
	if !ok {
		e = &entry{session: &Session{}}
		s.sessions[id] = e
	}
	e.lastSeen = now
	fn(e.session)
}

// Snapshot returns a copy of the session's profile and whether the session
// exists. Used by the read-only profile endpoint.
func (s *Store) Snapshot(id string) (profile.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return profile.Profile{}, false
	}
	return e.session.Profile, true
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
