package web

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	appLog "schedview/internal/log"
	"schedview/internal/timeline"
)

const defaultSessionTTL = time.Hour

var ErrSessionNotFound = errors.New("session not found")

// session is one viewer's mounted widget and its navigator. mu serializes
// commands so the navigator only ever sees one event at a time.
type session struct {
	id string

	mu       sync.Mutex
	nav      *timeline.Navigator
	widget   *timeline.Widget
	lastSeen time.Time
}

type sessionStore struct {
	clock timeline.Clock
	ttl   time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionStore(clock timeline.Clock, ttl time.Duration) *sessionStore {
	if clock == nil {
		clock = timeline.RealClock{}
	}
	return &sessionStore{
		clock:    clock,
		ttl:      ttl,
		sessions: make(map[string]*session),
	}
}

func (st *sessionStore) create(nav *timeline.Navigator, w *timeline.Widget) *session {
	now := st.clock.Now()
	sess := &session{
		id:       uuid.NewString(),
		nav:      nav,
		widget:   w,
		lastSeen: now,
	}

	st.mu.Lock()
	st.evictLocked(now)
	st.sessions[sess.id] = sess
	st.mu.Unlock()

	appLog.Debug("session created", "session_id", sess.id)
	return sess
}

func (st *sessionStore) get(id string) (*session, error) {
	now := st.clock.Now()

	st.mu.Lock()
	defer st.mu.Unlock()
	st.evictLocked(now)

	sess, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.mu.Lock()
	sess.lastSeen = now
	sess.mu.Unlock()
	return sess, nil
}

func (st *sessionStore) remove(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	return ok
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *sessionStore) evictLocked(now time.Time) {
	if st.ttl <= 0 {
		return
	}
	for id, sess := range st.sessions {
		sess.mu.Lock()
		idle := now.Sub(sess.lastSeen)
		sess.mu.Unlock()
		if idle > st.ttl {
			delete(st.sessions, id)
			appLog.Debug("session evicted", "session_id", id, "idle", idle.String())
		}
	}
}
