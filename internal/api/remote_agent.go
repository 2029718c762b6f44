package api

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/gamerooms/casino-be/internal/game"
)

// RemoteAgent answers the engine's action requests by forwarding them to a
// connected WebSocket client and waiting for the reply. The table owns the
// timeout; this agent only waits until the reply arrives or the request
// context is cancelled.
type RemoteAgent struct {
	playerID  string
	hub       *Hub
	logger    *log.Logger
	decisions chan game.Action
}

// NewRemoteAgent creates an agent proxying decisions for one player.
func NewRemoteAgent(playerID string, hub *Hub, logger *log.Logger) *RemoteAgent {
	return &RemoteAgent{
		playerID:  playerID,
		hub:       hub,
		logger:    logger.WithPrefix("remote-agent").With("player", playerID),
		decisions: make(chan game.Action, 1),
	}
}

// RequestAction implements game.Agent.
func (a *RemoteAgent) RequestAction(ctx context.Context, view game.SeatView) (game.Action, error) {
	// Drain any stale reply from an earlier, timed-out request.
	select {
	case <-a.decisions:
	default:
	}

	sent := a.hub.SendToPlayer(a.playerID, Message{
		Type:     "actionRequired",
		PlayerID: a.playerID,
		Data: map[string]interface{}{
			"hand":           view.Hand,
			"score":          view.Score,
			"dealerUpCard":   view.DealerUpCard,
			"stake":          view.Stake,
			"timeoutSeconds": view.TimeoutSeconds,
			"actions":        []game.Action{game.ActionHit, game.ActionStand},
		},
	})
	if !sent {
		return game.ActionStand, fmt.Errorf("player %s not connected", a.playerID)
	}

	select {
	case action := <-a.decisions:
		a.logger.Debug("decision received", "action", action)
		return action, nil
	case <-ctx.Done():
		return game.ActionStand, ctx.Err()
	}
}

// HandleDecision feeds a client reply to the waiting request. Unknown
// actions are dropped; the table treats the eventual timeout as a stand.
func (a *RemoteAgent) HandleDecision(action string) {
	var decided game.Action
	switch action {
	case "hit":
		decided = game.ActionHit
	case "stand":
		decided = game.ActionStand
	default:
		a.logger.Warn("invalid action from client", "action", action)
		return
	}

	select {
	case a.decisions <- decided:
	default:
		a.logger.Warn("decision with no pending request", "action", action)
	}
}
