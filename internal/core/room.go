package core

import (
	"fmt"
	"sync"
	"time"
)

// Outbound is the write side of an occupant: one line in, best-effort out.
type Outbound interface {
	// Send queues a line for delivery. Returns false if the line was
	// dropped because the receiver is too slow.
	Send(line string) bool
}

type occupant struct {
	name string
	out  Outbound
}

// Room groups occupants that can broadcast to each other, bounded by a
// mutable capacity. Occupants are kept in join order. All mutating
// operations run under the room's own lock, so capacity checks inside
// Join are always consistent with the occupant count.
type Room struct {
	name      string
	createdAt time.Time

	mu        sync.Mutex
	capacity  int
	occupants []occupant
}

// NewRoom constructs an empty room with the given capacity.
func NewRoom(name string, capacity int) *Room {
	return &Room{
		name:      name,
		createdAt: time.Now(),
		capacity:  capacity,
	}
}

// Name returns the room's identifier (lowercase, unique in the registry).
func (r *Room) Name() string { return r.name }

// Join admits the user if there is a free slot. It never admits a
// duplicate username. Returns false with no mutation otherwise.
func (r *Room) Join(name string, out Outbound) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.occupants) >= r.capacity {
		return false
	}
	if r.indexOf(name) >= 0 {
		return false
	}
	r.occupants = append(r.occupants, occupant{name: name, out: out})
	return true
}

// Leave removes the occupant if present; no-op otherwise.
func (r *Room) Leave(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexOf(name); i >= 0 {
		r.occupants = append(r.occupants[:i], r.occupants[i+1:]...)
	}
}

// Broadcast queues "[<room>] <sender>: <text>" on every occupant's
// outbound, in membership order. Sends are non-blocking; a slow consumer
// loses the line rather than stalling the room.
func (r *Room) Broadcast(sender, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := fmt.Sprintf("[%s] %s: %s", r.name, sender, text)
	for _, oc := range r.occupants {
		oc.out.Send(line)
	}
}

// Direct queues "[PRIVADO de <sender>]: <text>" for the recipient only.
// Returns false, sending nothing, if the recipient is not in the room.
func (r *Room) Direct(sender, recipient, text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(recipient)
	if i < 0 {
		return false
	}
	r.occupants[i].out.Send(fmt.Sprintf("[PRIVADO de %s]: %s", sender, text))
	return true
}

// Has reports whether the named user is currently an occupant.
func (r *Room) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexOf(name) >= 0
}

// Occupants returns the usernames in join order.
func (r *Room) Occupants() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, len(r.occupants))
	for i, oc := range r.occupants {
		names[i] = oc.name
	}
	return names
}

// Len returns the current occupant count.
func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.occupants)
}

// Capacity returns the current capacity.
func (r *Room) Capacity() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.capacity
}

// Resize changes the capacity. It refuses, returning false, when n is
// not positive or below the current occupant count. Clamping against the
// server-wide maximum is the caller's job.
func (r *Room) Resize(n int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n <= 0 || n < len(r.occupants) {
		return false
	}
	r.capacity = n
	return true
}

// Describe renders a human-readable snapshot of the room.
func (r *Room) Describe() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return fmt.Sprintf("SALA: %s | Creada: %d/%d/%d | Usuarios: %d/%d",
		r.name,
		r.createdAt.Day(), int(r.createdAt.Month()), r.createdAt.Year(),
		len(r.occupants), r.capacity)
}

// indexOf must be called with r.mu held.
func (r *Room) indexOf(name string) int {
	for i, oc := range r.occupants {
		if oc.name == name {
			return i
		}
	}
	return -1
}
