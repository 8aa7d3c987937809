package core

import "errors"

var (
	// ErrRoomExists is returned when creating a room whose name is taken.
	ErrRoomExists = errors.New("room already exists")
	// ErrRoomNotFound is returned when the named room is not registered.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomOccupied is returned when deleting a room that still has occupants.
	ErrRoomOccupied = errors.New("room not empty")
	// ErrRoomProtected is returned when deleting one of the built-in rooms.
	ErrRoomProtected = errors.New("room is protected")
	// ErrNoCapacity is returned when a forced deletion cannot relocate
	// every occupant into the fallback room.
	ErrNoCapacity = errors.New("fallback room lacks capacity")
)
