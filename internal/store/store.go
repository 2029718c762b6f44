package store

import "github.com/gamerooms/casino-be/internal/game"

// Store defines the interface for room storage
type Store interface {
	// SaveRoom saves a room to the store
	SaveRoom(r *game.Room) error

	// GetRoom retrieves a room by ID
	GetRoom(id string) (*game.Room, error)

	// GetRoomsByKind retrieves all rooms of a game kind
	GetRoomsByKind(kind string) ([]*game.Room, error)

	// GetOpenRoom retrieves a room of the given kind that still accepts seats
	GetOpenRoom(kind string) (*game.Room, error)

	// DeleteRoom removes a room from the store
	DeleteRoom(id string) error

	// GetAllRooms returns all rooms in the store
	GetAllRooms() ([]*game.Room, error)
}
