package store

import (
	"github.com/gamerooms/casino-be/internal/db"
	"github.com/gamerooms/casino-be/internal/game"
)

// DatabaseStore is a database implementation of room storage
type DatabaseStore struct {
	db *db.Database
}

// NewDatabaseStore creates a new database store
func NewDatabaseStore(database *db.Database) *DatabaseStore {
	return &DatabaseStore{
		db: database,
	}
}

// SaveRoom saves a room to the database
func (s *DatabaseStore) SaveRoom(r *game.Room) error {
	return s.db.SaveRoom(r)
}

// GetRoom retrieves a room by ID
func (s *DatabaseStore) GetRoom(id string) (*game.Room, error) {
	return s.db.GetRoom(id)
}

// GetRoomsByKind retrieves all rooms of a game kind
func (s *DatabaseStore) GetRoomsByKind(kind string) ([]*game.Room, error) {
	return s.db.GetRoomsByKind(kind)
}

// GetOpenRoom retrieves a room of the given kind that still accepts seats
func (s *DatabaseStore) GetOpenRoom(kind string) (*game.Room, error) {
	return s.db.GetOpenRoom(kind)
}

// DeleteRoom removes a room from the database
func (s *DatabaseStore) DeleteRoom(id string) error {
	return s.db.DeleteRoom(id)
}

// GetAllRooms returns all rooms in the database
func (s *DatabaseStore) GetAllRooms() ([]*game.Room, error) {
	return s.db.GetAllRooms()
}
