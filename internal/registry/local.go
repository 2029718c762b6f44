package registry

import (
	"context"
	"fmt"

	"github.com/gamerooms/casino-be/internal/game"
	"github.com/gamerooms/casino-be/internal/store"
)

// RoomSpec is the table configuration a registry applies to a game kind.
type RoomSpec struct {
	Capacity     int
	MinOccupancy int
	EntryStake   int
}

// DefaultSpecs maps the game kinds this registry knows how to host.
var DefaultSpecs = map[string]RoomSpec{
	"blackjack": {Capacity: 4, MinOccupancy: 2, EntryStake: 10},
}

// LocalRegistry is a store-backed Registry: rooms live in this process and
// are persisted through the configured store.
type LocalRegistry struct {
	store store.Store
	specs map[string]RoomSpec
}

// NewLocalRegistry creates a registry over the given store. Nil specs fall
// back to DefaultSpecs.
func NewLocalRegistry(s store.Store, specs map[string]RoomSpec) *LocalRegistry {
	if specs == nil {
		specs = DefaultSpecs
	}
	return &LocalRegistry{store: s, specs: specs}
}

// CreateRoom builds a room of the given kind, seats the initial players
// and marks it active, then persists it and returns its id.
func (lr *LocalRegistry) CreateRoom(ctx context.Context, kind string, initialPlayers []game.PlayerInfo) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	spec, ok := lr.specs[kind]
	if !ok {
		return "", fmt.Errorf("unknown game kind %q", kind)
	}

	room, err := game.NewRoom(kind, spec.Capacity, spec.MinOccupancy, spec.EntryStake)
	if err != nil {
		return "", err
	}

	for _, p := range initialPlayers {
		if _, err := room.Sit(p); err != nil {
			return "", fmt.Errorf("seating %s: %w", p.ID, err)
		}
	}

	// The registry contract is an active room even when the initial set
	// is below minimum occupancy.
	room.Activate()

	if err := lr.store.SaveRoom(room); err != nil {
		return "", err
	}

	return room.ID, nil
}
