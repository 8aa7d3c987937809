package core

import "sync"

// SessionList is the server-wide set of active sessions. It backs the
// username-uniqueness check and the admin operations that scan every
// connection (expulsion, user lookup).
type SessionList struct {
	mu       sync.Mutex
	sessions map[*Session]struct{}
}

// NewSessionList returns an empty list.
func NewSessionList() *SessionList {
	return &SessionList{sessions: make(map[*Session]struct{})}
}

// Add registers a freshly accepted session.
func (l *SessionList) Add(s *Session) {
	l.mu.Lock()
	l.sessions[s] = struct{}{}
	l.mu.Unlock()
}

// Remove drops a session during cleanup. No-op if absent.
func (l *SessionList) Remove(s *Session) {
	l.mu.Lock()
	delete(l.sessions, s)
	l.mu.Unlock()
}

// Len returns the number of active sessions.
func (l *SessionList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sessions)
}

// Claim assigns name to s iff no other active session holds it. Every
// room occupant is an active session, so this check subsumes scanning
// the rooms. The check and the assignment are one atomic step under the
// list lock.
func (l *SessionList) Claim(s *Session, name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for other := range l.sessions {
		if other != s && other.Name() == name {
			return false
		}
	}
	s.setName(name)
	return true
}

// Find returns the session holding the exact username, or nil.
func (l *SessionList) Find(name string) *Session {
	if name == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	for s := range l.sessions {
		if s.Name() == name {
			return s
		}
	}
	return nil
}
