package auth

import (
	"errors"
	"sync"
	"time"

	"clockedin/internal/logging"
)

// Event announces a session change. Session is nil after sign-out.
type Event struct {
	Session *Session
}

const subscriberBuffer = 8

// Manager owns the current session and notifies subscribers of changes.
type Manager struct {
	mu      sync.Mutex
	secret  string
	store   TokenStore
	now     func() time.Time
	current *Session
	subs    map[int]chan Event
	nextSub int
}

func NewManager(secret string, store TokenStore) *Manager {
	return &Manager{
		secret: secret,
		store:  store,
		now:    time.Now,
		subs:   make(map[int]chan Event),
	}
}

// Current returns a copy of the active session, or nil when signed out.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copySession(m.current)
}

// Restore reloads a previously stored token. An invalid or expired token
// is discarded and leaves the manager signed out.
func (m *Manager) Restore() *Session {
	token, err := m.store.Load()
	if err != nil {
		if !errors.Is(err, ErrNoToken) {
			logging.Warn("could not read stored session", "error", err)
		}
		return nil
	}

	session, err := ParseToken(token, m.secret)
	if err == nil && session.Expired(m.now()) {
		err = errors.New("session expired")
	}
	if err != nil {
		logging.Info("discarding stored session", "reason", err)
		if clearErr := m.store.Clear(); clearErr != nil {
			logging.Warn("could not clear stored session", "error", clearErr)
		}
		return nil
	}

	m.set(session)
	return copySession(session)
}

// SignIn validates token, stores it and makes it the active session.
func (m *Manager) SignIn(token string) (*Session, error) {
	session, err := ParseToken(token, m.secret)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(token); err != nil {
		// the session still works for this process
		logging.Warn("could not persist session token", "error", err)
	}
	m.set(session)
	logging.Info("signed in", "user", session.UserID)
	return copySession(session), nil
}

// SignOut forgets the stored token and clears the active session.
func (m *Manager) SignOut() error {
	err := m.store.Clear()
	m.set(nil)
	logging.Info("signed out")
	return err
}

// Subscribe returns a channel of session changes and a func that stops
// delivery. A slow subscriber loses older events, never the latest one.
func (m *Manager) Subscribe() (<-chan Event, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan Event, subscriberBuffer)
	m.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs, id)
			close(ch)
		})
	}
}

func (m *Manager) set(session *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = session
	for _, ch := range m.subs {
		event := Event{Session: copySession(session)}
		select {
		case ch <- event:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}

func copySession(s *Session) *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
