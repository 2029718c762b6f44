package game

// PlayerInfo is the narrow view of an account the engine consumes: stable
// identity, display name and the balance it reads to validate stakes. The
// engine never mutates balances; that belongs to the settlement side.
type PlayerInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Balance int    `json:"balance"`
}

// Seat binds one player to one hand for the duration of a round. All
// per-round state lives here, per seat, never at the room or type level.
type Seat struct {
	Index    int        `json:"index"`
	Player   PlayerInfo `json:"player"`
	Hand     Hand       `json:"hand"`
	Standing bool       `json:"standing"`
	Stake    int        `json:"stake"`
	Outcome  Outcome    `json:"outcome,omitempty"`
}

// stand ends the seat's turn. The outcome is decided later, against the
// final dealer hand.
func (s *Seat) stand() {
	s.Standing = true
}

// setOutcome records the seat's resolution. Resolving a seat twice is a
// programming error in the round loop, not a recoverable condition.
func (s *Seat) setOutcome(o Outcome) {
	if s.Outcome != "" {
		panic("game: seat resolved twice")
	}
	s.Standing = true
	s.Outcome = o
}

// reset clears the seat's round-scoped state. Seating and stakes survive.
func (s *Seat) reset() {
	s.Hand = nil
	s.Standing = false
	s.Outcome = ""
}
