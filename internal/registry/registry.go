// Package registry bridges the engine to the room-registry collaborator:
// creating rooms pre-populated with a player set and translating registry
// failures into a single error type.
package registry

import (
	"context"
	"fmt"

	"github.com/gamerooms/casino-be/internal/game"
)

// Registry is the external room-registry collaborator. Calls may suspend
// on I/O and must honor ctx.
type Registry interface {
	CreateRoom(ctx context.Context, kind string, initialPlayers []game.PlayerInfo) (string, error)
}

// ProvisioningError wraps a registry failure. Callers never see the
// collaborator's raw error type, but the cause is preserved for Unwrap.
type ProvisioningError struct {
	Kind string
	Err  error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provisioning %s room: %v", e.Kind, e.Err)
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}

// Provisioner creates active rooms through a Registry. It only awaits on
// the caller's context; establishing and holding that context is the
// caller's job, acquired once and reused across calls.
type Provisioner struct {
	registry Registry
}

// NewProvisioner creates a provisioner over the given registry.
func NewProvisioner(r Registry) *Provisioner {
	return &Provisioner{registry: r}
}

// CreateActiveRoom asks the registry for a room of the given kind seeded
// with the given players and returns its id. Registry failures come back
// as a ProvisioningError.
func (p *Provisioner) CreateActiveRoom(ctx context.Context, kind string, initialPlayers []game.PlayerInfo) (string, error) {
	roomID, err := p.registry.CreateRoom(ctx, kind, initialPlayers)
	if err != nil {
		return "", &ProvisioningError{Kind: kind, Err: err}
	}
	return roomID, nil
}
