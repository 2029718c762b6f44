package game

import "time"

// EventType identifies a round domain event.
type EventType string

const (
	EventTypeRoundStarted  EventType = "round_started"
	EventTypeActionTimeout EventType = "action_timeout"
	EventTypeSeatResolved  EventType = "seat_resolved"
	EventTypeRoundSettled  EventType = "round_settled"
	EventTypeRoundAborted  EventType = "round_aborted"
)

func (et EventType) String() string {
	return string(et)
}

// Event is anything the engine reports across its boundary. The engine
// never persists; a storage collaborator may record these.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// EventSink receives engine events. Publish must not block the round.
type EventSink interface {
	Publish(Event)
}

// NopSink discards events.
type NopSink struct{}

func (NopSink) Publish(Event) {}

// RoundStartedEvent is published after the initial deal.
type RoundStartedEvent struct {
	RoomID    string
	RoundID   string
	Seats     int
	timestamp time.Time
}

func (e RoundStartedEvent) EventType() EventType { return EventTypeRoundStarted }
func (e RoundStartedEvent) Timestamp() time.Time { return e.timestamp }

// ActionTimeoutEvent is published when a seat's action request did not
// arrive in time and the seat was defaulted to standing.
type ActionTimeoutEvent struct {
	RoomID    string
	RoundID   string
	PlayerID  string
	timestamp time.Time
}

func (e ActionTimeoutEvent) EventType() EventType { return EventTypeActionTimeout }
func (e ActionTimeoutEvent) Timestamp() time.Time { return e.timestamp }

// SeatResolvedEvent is published once per seat at resolution.
type SeatResolvedEvent struct {
	RoomID    string
	RoundID   string
	PlayerID  string
	Score     int
	Outcome   Outcome
	timestamp time.Time
}

func (e SeatResolvedEvent) EventType() EventType { return EventTypeSeatResolved }
func (e SeatResolvedEvent) Timestamp() time.Time { return e.timestamp }

// RoundSettledEvent is published after the settlement collaborator has
// been handed the round's results.
type RoundSettledEvent struct {
	RoomID      string
	RoundID     string
	DealerScore int
	Results     []Result
	timestamp   time.Time
}

func (e RoundSettledEvent) EventType() EventType { return EventTypeRoundSettled }
func (e RoundSettledEvent) Timestamp() time.Time { return e.timestamp }

// RoundAbortedEvent is published when a round is cancelled between turns.
type RoundAbortedEvent struct {
	RoomID    string
	RoundID   string
	Reason    string
	timestamp time.Time
}

func (e RoundAbortedEvent) EventType() EventType { return EventTypeRoundAborted }
func (e RoundAbortedEvent) Timestamp() time.Time { return e.timestamp }
