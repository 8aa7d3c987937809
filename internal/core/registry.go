package core

import (
	"fmt"
	"sort"
	"sync"
)

// Built-in rooms, seeded at startup and protected from plain deletion.
const (
	// LobbyRoom is where non-admin users land after login.
	LobbyRoom = "recepcion"
	// AdminRoom is reserved for administrators.
	AdminRoom = "jiuston"
)

// RoomSummary is one row of a room listing.
type RoomSummary struct {
	Name      string `json:"name"`
	Occupants int    `json:"occupants"`
	Capacity  int    `json:"capacity"`
}

// Registry owns the name→Room mapping. Structural changes (create,
// delete, forced delete, listing) are serialized by one registry-wide
// lock, distinct from the per-room locks.
//
// Lock order, whenever more than one lock is needed:
// registry → session-list → room. Nothing may acquire the registry lock
// while holding a room lock.
type Registry struct {
	maxCapacity int

	mu        sync.Mutex
	rooms     map[string]*Room
	protected map[string]struct{}
}

// NewRegistry seeds the two built-in rooms at defaultCapacity and caps
// all rooms at maxCapacity.
func NewRegistry(defaultCapacity, maxCapacity int) *Registry {
	g := &Registry{
		maxCapacity: maxCapacity,
		rooms:       make(map[string]*Room),
		protected:   make(map[string]struct{}),
	}
	for _, name := range []string{LobbyRoom, AdminRoom} {
		g.rooms[name] = NewRoom(name, defaultCapacity)
		g.protected[name] = struct{}{}
	}
	return g
}

// MaxCapacity returns the server-wide room capacity ceiling.
func (g *Registry) MaxCapacity() int { return g.maxCapacity }

// Get looks up a room by name, nil if absent.
func (g *Registry) Get(name string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rooms[name]
}

// Create registers a new room. A capacity above the server-wide maximum
// is clamped, which is reported to the caller, not treated as an error.
// Returns the applied capacity.
func (g *Registry) Create(name string, capacity int) (applied int, clamped bool, err error) {
	if capacity > g.maxCapacity {
		capacity = g.maxCapacity
		clamped = true
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.rooms[name]; ok {
		return 0, false, ErrRoomExists
	}
	g.rooms[name] = NewRoom(name, capacity)
	return capacity, clamped, nil
}

// Delete removes an empty, unprotected room.
func (g *Registry) Delete(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.protected[name]; ok {
		return ErrRoomProtected
	}
	room, ok := g.rooms[name]
	if !ok {
		return ErrRoomNotFound
	}
	if room.Len() > 0 {
		return ErrRoomOccupied
	}
	delete(g.rooms, name)
	return nil
}

// ForceDelete removes a room by relocating every occupant into fallback,
// all-or-nothing: if the fallback cannot absorb them all, nothing
// changes. Occupant entries, the affected sessions' room references and
// the registry mapping are updated as one logically atomic step, holding
// registry → session-list → room locks in that order.
func (g *Registry) ForceDelete(name, fallback string, sessions *SessionList) (moved int, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.protected[name]; ok {
		return 0, ErrRoomProtected
	}
	target, ok := g.rooms[name]
	if !ok {
		return 0, ErrRoomNotFound
	}
	fb, ok := g.rooms[fallback]
	if !ok {
		return 0, ErrRoomNotFound
	}

	sessions.mu.Lock()
	defer sessions.mu.Unlock()
	fb.mu.Lock()
	defer fb.mu.Unlock()
	target.mu.Lock()
	defer target.mu.Unlock()

	if len(fb.occupants)+len(target.occupants) > fb.capacity {
		return 0, ErrNoCapacity
	}

	notice := fmt.Sprintf("SISTEMA: Sala eliminada. Usuarios movidos a %s.", fallback)
	for _, oc := range target.occupants {
		oc.out.Send(notice)
	}
	fb.occupants = append(fb.occupants, target.occupants...)
	moved = len(target.occupants)
	target.occupants = nil

	for s := range sessions.sessions {
		if s.Room() == target {
			s.SetRoom(fb)
		}
	}

	delete(g.rooms, name)
	return moved, nil
}

// List returns per-room summaries sorted by name. The admin room is
// omitted unless includeAdminRoom is set.
func (g *Registry) List(includeAdminRoom bool) []RoomSummary {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]RoomSummary, 0, len(g.rooms))
	for name, room := range g.rooms {
		if name == AdminRoom && !includeAdminRoom {
			continue
		}
		out = append(out, RoomSummary{Name: name, Occupants: room.Len(), Capacity: room.Capacity()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Rooms snapshots every registered room, for server-wide broadcasts.
func (g *Registry) Rooms() []*Room {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]*Room, 0, len(g.rooms))
	for _, room := range g.rooms {
		out = append(out, room)
	}
	return out
}
