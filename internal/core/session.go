package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the server-side identity of one live connection. The
// transport layer owns the socket and the command loop; the core layer
// sees the username, role, current room and outbound mailbox.
//
// The username is assigned exactly once, by SessionList.Claim. The room
// reference is non-owning: the room's occupant entry is the
// authoritative membership record.
type Session struct {
	ID          string
	Out         *Mailbox
	ConnectedAt time.Time

	quit     chan struct{}
	quitOnce sync.Once

	mu    sync.Mutex
	name  string
	admin bool
	room  *Room
}

// NewSession constructs an anonymous session with a fresh id and mailbox.
func NewSession() *Session {
	return &Session{
		ID:          uuid.NewString(),
		Out:         NewMailbox(32),
		ConnectedAt: time.Now(),
		quit:        make(chan struct{}),
	}
}

// Name returns the claimed username, or "" before login completes.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// setName is called by SessionList.Claim only.
func (s *Session) setName(name string) {
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
}

// IsAdmin reports whether the session elevated to the admin role.
func (s *Session) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admin
}

// SetAdmin records the role decided during the privilege check.
func (s *Session) SetAdmin(admin bool) {
	s.mu.Lock()
	s.admin = admin
	s.mu.Unlock()
}

// Room returns the session's current room, nil before the first join.
func (s *Session) Room() *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

// SetRoom updates the current-room reference. Called by the session's
// own dispatcher and, during forced room deletion, by the registry.
func (s *Session) SetRoom(r *Room) {
	s.mu.Lock()
	s.room = r
	s.mu.Unlock()
}

// Uptime returns how long the connection has been open.
func (s *Session) Uptime() time.Duration {
	return time.Since(s.ConnectedAt)
}

// Quit is closed when the session must shut down (self quit, I/O error
// or expulsion). The write pump watches it to drain and close the socket.
func (s *Session) Quit() <-chan struct{} { return s.quit }

// CloseGate signals shutdown. Safe to call from any goroutine, any
// number of times.
func (s *Session) CloseGate() {
	s.quitOnce.Do(func() { close(s.quit) })
}
