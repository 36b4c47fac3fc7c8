package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"medbuscador/internal"
)

// sessionStore keeps logged-in users in memory, keyed by an opaque token.
// Sessions die with the process; there is nothing durable to invalidate.
type sessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]session
}

type session struct {
	user    internal.User
	expires time.Time
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{ttl: ttl, sessions: map[string]session{}}
}

func (s *sessionStore) Create(user internal.User) string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	s.sessions[token] = session{user: user, expires: time.Now().Add(s.ttl)}
	return token
}

func (s *sessionStore) Get(token string) (internal.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return internal.User{}, false
	}
	if time.Now().After(sess.expires) {
		delete(s.sessions, token)
		return internal.User{}, false
	}
	return sess.user, true
}

func (s *sessionStore) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// prune drops expired sessions; called under lock on every create so the map
// cannot grow without bound.
func (s *sessionStore) prune() {
	now := time.Now()
	for token, sess := range s.sessions {
		if now.After(sess.expires) {
			delete(s.sessions, token)
		}
	}
}
