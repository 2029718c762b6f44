package store

import (
	"errors"
	"sync"

	"github.com/gamerooms/casino-be/internal/game"
)

var ErrRoomNotFound = errors.New("room not found")

// MemoryStore is an in-memory implementation of room storage
type MemoryStore struct {
	rooms map[string]*game.Room
	kinds map[string][]*game.Room
	mu    sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]*game.Room),
		kinds: make(map[string][]*game.Room),
	}
}

// SaveRoom saves a room to the store
func (s *MemoryStore) SaveRoom(r *game.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[r.ID]; !exists {
		s.kinds[r.Kind] = append(s.kinds[r.Kind], r)
	}
	s.rooms[r.ID] = r

	return nil
}

// GetRoom retrieves a room by ID
func (s *MemoryStore) GetRoom(id string) (*game.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.rooms[id]
	if !exists {
		return nil, ErrRoomNotFound
	}

	return r, nil
}

// GetRoomsByKind retrieves all rooms of a game kind
func (s *MemoryStore) GetRoomsByKind(kind string) ([]*game.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms, exists := s.kinds[kind]
	if !exists {
		return []*game.Room{}, nil
	}

	return rooms, nil
}

// GetOpenRoom retrieves a room of the given kind that still accepts seats
func (s *MemoryStore) GetOpenRoom(kind string) (*game.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.kinds[kind] {
		info := r.Summarize()
		if info.Status != game.Closed && info.Occupancy < info.Capacity {
			return r, nil
		}
	}

	return nil, ErrRoomNotFound
}

// DeleteRoom removes a room from the store
func (s *MemoryStore) DeleteRoom(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.rooms[id]
	if !exists {
		return ErrRoomNotFound
	}

	delete(s.rooms, id)

	kindRooms := s.kinds[r.Kind]
	for i, room := range kindRooms {
		if room.ID == id {
			s.kinds[r.Kind] = append(kindRooms[:i], kindRooms[i+1:]...)
			break
		}
	}

	return nil
}

// GetAllRooms returns all rooms in the store
func (s *MemoryStore) GetAllRooms() ([]*game.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]*game.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}

	return rooms, nil
}
