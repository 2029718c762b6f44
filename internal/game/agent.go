package game

import "context"

// Action is a player's decision at a turn.
type Action string

const (
	ActionHit   Action = "hit"
	ActionStand Action = "stand"
)

// SeatView is the read-only state an agent sees when asked to act.
type SeatView struct {
	PlayerID       string
	PlayerName     string
	Hand           Hand
	Score          int
	DealerUpCard   Rank
	Stake          int
	TimeoutSeconds int
}

// Agent answers action requests for one seat. Implementations may be a
// connected remote client, a bot, or a scripted fake in tests. They must
// honor ctx cancellation; the table applies its own timeout on top and
// falls back to standing, so a slow agent can never stall a round.
type Agent interface {
	RequestAction(ctx context.Context, view SeatView) (Action, error)
}

// AgentFunc adapts a function to the Agent interface.
type AgentFunc func(ctx context.Context, view SeatView) (Action, error)

func (f AgentFunc) RequestAction(ctx context.Context, view SeatView) (Action, error) {
	return f(ctx, view)
}

// StandAgent always stands. Used for seats with no connected transport.
var StandAgent = AgentFunc(func(context.Context, SeatView) (Action, error) {
	return ActionStand, nil
})
