package game

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
)

const dealerStandThreshold = 17

// Result is one seat's settlement tuple: who staked what and how the seat
// resolved. The settlement collaborator owns everything that follows from
// it (payouts, balance mutation, history).
type Result struct {
	PlayerID   string  `json:"playerId"`
	PlayerName string  `json:"playerName"`
	Stake      int     `json:"stake"`
	Hand       Hand    `json:"hand"`
	Score      int     `json:"score"`
	Outcome    Outcome `json:"outcome"`
}

// RoundResult is the full report of one deal-play-resolve cycle.
type RoundResult struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"roomId"`
	DealerHand  Hand      `json:"dealerHand"`
	DealerScore int       `json:"dealerScore"`
	Results     []Result  `json:"results"`
	Aborted     bool      `json:"aborted"`
	PlayedAt    time.Time `json:"playedAt"`
}

// Settler receives each round's settlement tuples. It alone mutates
// balances and records history.
type Settler interface {
	Settle(ctx context.Context, round *RoundResult) error
}

// AgentResolver maps a seated player to the agent answering their action
// requests. Returning nil leaves the seat on the fail-safe StandAgent.
type AgentResolver func(playerID string) Agent

// TableConfig tunes a table's boundary behavior. Zero values fall back to
// a real clock, a 30 second action timeout and a no-op event sink.
type TableConfig struct {
	ActionTimeout time.Duration
	Clock         quartz.Clock
	Logger        *log.Logger
	Events        EventSink
	Settler       Settler
}

// Table runs blackjack rounds inside one room. Rounds are synchronous and
// strictly sequential: seat turns never interleave, and the dealer plays
// only after every seat has resolved. The only suspension points are the
// action requests at the boundary. Seat mutation happens under the room
// lock, so snapshots serialized by the transport stay consistent.
type Table struct {
	room    *Room
	shoe    Shoe
	agents  AgentResolver
	timeout time.Duration
	clock   quartz.Clock
	logger  *log.Logger
	events  EventSink
	settler Settler
}

// NewTable creates a table for the given room.
func NewTable(room *Room, shoe Shoe, agents AgentResolver, cfg TableConfig) *Table {
	if cfg.ActionTimeout <= 0 {
		cfg.ActionTimeout = 30 * time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Events == nil {
		cfg.Events = NopSink{}
	}
	return &Table{
		room:    room,
		shoe:    shoe,
		agents:  agents,
		timeout: cfg.ActionTimeout,
		clock:   cfg.Clock,
		logger:  cfg.Logger.WithPrefix("table").With("room", room.ID),
		events:  cfg.Events,
		settler: cfg.Settler,
	}
}

// Room returns the room this table plays in.
func (t *Table) Room() *Room {
	return t.room
}

// PlayRound runs one full round: deal, per-seat turns, dealer auto-play,
// resolution and settlement. It rejects rounds below minimum occupancy
// before any cards are dealt. Cancelling ctx between turns aborts the
// round: seats already resolved keep their hands, the rest resolve as
// Aborted. Hands and standing flags are cleared before returning; the
// returned RoundResult carries the final hands.
func (t *Table) PlayRound(ctx context.Context) (*RoundResult, error) {
	if err := t.room.CanStartRound(); err != nil {
		return nil, err
	}

	roundID := uuid.New().String()
	logger := t.logger.With("round", roundID)

	t.room.resetRound()
	defer t.room.resetRound()

	// Initial deal: two cards per occupied seat, two for the dealer. The
	// seat set is captured under the room lock; the round plays exactly
	// the seats present at deal time.
	var dealer Hand
	t.room.mu.Lock()
	seats := append([]*Seat(nil), t.room.Seats...)
	for _, seat := range seats {
		seat.Hand.Add(t.shoe.Draw())
		seat.Hand.Add(t.shoe.Draw())
	}
	t.room.mu.Unlock()
	dealer.Add(t.shoe.Draw())
	dealer.Add(t.shoe.Draw())

	t.events.Publish(RoundStartedEvent{
		RoomID:    t.room.ID,
		RoundID:   roundID,
		Seats:     len(seats),
		timestamp: time.Now(),
	})
	logger.Info("round started", "seats", len(seats), "dealerUp", dealer[0])

	// Seat turns, strictly in seat order. A round can be aborted between
	// turns but never inside one.
	aborted := false
	for _, seat := range seats {
		if reason := t.abortReason(ctx); reason != "" {
			t.abortRemaining(roundID, reason, seats, logger)
			aborted = true
			break
		}
		t.playTurn(ctx, roundID, seat, dealer[0], logger)
	}

	// Dealer draws to 17, aborted or not: seats that finished their turn
	// before an abort still resolve against a completed dealer hand. Each
	// draw raises the score or leaves it equal (ace softening), and any
	// card worth 2+ moves a sub-17 hand upward, so the loop terminates.
	for Score(dealer) < dealerStandThreshold {
		dealer.Add(t.shoe.Draw())
	}
	dealerScore := Score(dealer)
	logger.Info("dealer done", "hand", dealer, "score", dealerScore)

	// Resolution, once per seat against the final dealer hand.
	round := &RoundResult{
		ID:          roundID,
		RoomID:      t.room.ID,
		DealerHand:  dealer,
		DealerScore: dealerScore,
		Aborted:     aborted,
		PlayedAt:    time.Now(),
	}
	for _, seat := range seats {
		score := Score(seat.Hand)
		if seat.Outcome == "" {
			t.room.mu.Lock()
			seat.setOutcome(Resolve(score, dealerScore))
			t.room.mu.Unlock()
		}
		t.events.Publish(SeatResolvedEvent{
			RoomID:    t.room.ID,
			RoundID:   roundID,
			PlayerID:  seat.Player.ID,
			Score:     score,
			Outcome:   seat.Outcome,
			timestamp: time.Now(),
		})
		logger.Info("seat resolved",
			"player", seat.Player.Name,
			"score", score,
			"outcome", seat.Outcome)
		round.Results = append(round.Results, Result{
			PlayerID:   seat.Player.ID,
			PlayerName: seat.Player.Name,
			Stake:      seat.Stake,
			Hand:       seat.Hand,
			Score:      score,
			Outcome:    seat.Outcome,
		})
	}

	if t.settler != nil {
		// A settlement failure is an external-boundary problem; the round
		// itself is complete and well-defined either way.
		if err := t.settler.Settle(ctx, round); err != nil {
			logger.Error("settlement failed", "error", err)
		}
	}
	t.events.Publish(RoundSettledEvent{
		RoomID:      t.room.ID,
		RoundID:     roundID,
		DealerScore: dealerScore,
		Results:     round.Results,
		timestamp:   time.Now(),
	})

	return round, nil
}

// playTurn runs one seat's turn state machine: resolve immediately at 21
// or above, otherwise keep requesting actions until the seat stands.
// Drawing past 21 is allowed; busts are detected at resolution.
func (t *Table) playTurn(ctx context.Context, roundID string, seat *Seat, dealerUp Rank, logger *log.Logger) {
	for !seat.Standing {
		score := Score(seat.Hand)
		if score >= 21 {
			t.room.mu.Lock()
			seat.stand()
			t.room.mu.Unlock()
			return
		}

		action := t.requestAction(ctx, roundID, seat, dealerUp, score, logger)
		switch action {
		case ActionHit:
			card := t.shoe.Draw()
			t.room.mu.Lock()
			seat.Hand.Add(card)
			t.room.mu.Unlock()
			logger.Debug("hit", "player", seat.Player.Name, "card", card)
		default:
			t.room.mu.Lock()
			seat.stand()
			t.room.mu.Unlock()
		}
	}
}

// requestAction asks the seat's agent for a decision, bounded by the
// table's action timeout. A timeout or agent failure defaults to Stand so
// an unresponsive player can never stall the round.
func (t *Table) requestAction(ctx context.Context, roundID string, seat *Seat, dealerUp Rank, score int, logger *log.Logger) Action {
	agent := t.agentFor(seat.Player.ID)

	view := SeatView{
		PlayerID:       seat.Player.ID,
		PlayerName:     seat.Player.Name,
		Hand:           append(Hand(nil), seat.Hand...),
		Score:          score,
		DealerUpCard:   dealerUp,
		Stake:          seat.Stake,
		TimeoutSeconds: int(t.timeout / time.Second),
	}

	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type reply struct {
		action Action
		err    error
	}
	replies := make(chan reply, 1)
	go func() {
		action, err := agent.RequestAction(reqCtx, view)
		replies <- reply{action, err}
	}()

	timedOut := make(chan struct{})
	timer := t.clock.AfterFunc(t.timeout, func() {
		close(timedOut)
	})
	defer timer.Stop()

	select {
	case r := <-replies:
		if r.err != nil {
			logger.Warn("action request failed, standing", "player", seat.Player.Name, "error", r.err)
			return ActionStand
		}
		if r.action != ActionHit && r.action != ActionStand {
			logger.Warn("invalid action, standing", "player", seat.Player.Name, "action", r.action)
			return ActionStand
		}
		return r.action
	case <-timedOut:
		logger.Warn("action timed out, standing", "player", seat.Player.Name)
		t.events.Publish(ActionTimeoutEvent{
			RoomID:    t.room.ID,
			RoundID:   roundID,
			PlayerID:  seat.Player.ID,
			timestamp: time.Now(),
		})
		return ActionStand
	case <-ctx.Done():
		return ActionStand
	}
}

func (t *Table) agentFor(playerID string) Agent {
	if t.agents != nil {
		if agent := t.agents(playerID); agent != nil {
			return agent
		}
	}
	return StandAgent
}

// abortReason reports why the round cannot continue, or "".
func (t *Table) abortReason(ctx context.Context) string {
	if ctx.Err() != nil {
		return "round cancelled"
	}
	if t.room.isClosed() {
		return "room closed"
	}
	return ""
}

// abortRemaining resolves every still-pending seat as Aborted. Seats that
// already finished their turn keep their hands and resolve normally.
func (t *Table) abortRemaining(roundID, reason string, seats []*Seat, logger *log.Logger) {
	t.room.mu.Lock()
	for _, seat := range seats {
		if !seat.Standing {
			seat.setOutcome(OutcomeAborted)
		}
	}
	t.room.mu.Unlock()

	logger.Warn("round aborted", "reason", reason)
	t.events.Publish(RoundAbortedEvent{
		RoomID:    t.room.ID,
		RoundID:   roundID,
		Reason:    reason,
		timestamp: time.Now(),
	})
}
