package game

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

type RoomStatus string

const (
	Forming RoomStatus = "forming" // Accepting seats, below minimum occupancy
	Active  RoomStatus = "active"  // Rounds may run
	Closed  RoomStatus = "closed"  // No further rounds; seats stay readable
)

// Room owns seating for one table: capacity, the minimum occupancy needed
// before a round may start, the entry stake, and the seat arena. Rooms are
// in-memory state plus identity; persistence belongs to the store. Seat
// and lifecycle state is guarded by the room lock: the round engine
// mutates under it while handlers and stores read snapshots under it.
type Room struct {
	ID           string     `json:"id"`
	Kind         string     `json:"kind"`
	Capacity     int        `json:"capacity"`
	MinOccupancy int        `json:"minOccupancy"`
	EntryStake   int        `json:"entryStake"`
	Status       RoomStatus `json:"status"`
	Seats        []*Seat    `json:"seats"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	mu sync.RWMutex
}

// NewRoom creates a forming room. The configuration is validated up front
// and never partially applied.
func NewRoom(kind string, capacity, minOccupancy, entryStake int) (*Room, error) {
	if minOccupancy < 1 || capacity < minOccupancy || entryStake <= 0 {
		return nil, ErrInvalidConfig
	}

	now := time.Now()
	return &Room{
		ID:           uuid.New().String(),
		Kind:         kind,
		Capacity:     capacity,
		MinOccupancy: minOccupancy,
		EntryStake:   entryStake,
		Status:       Forming,
		Seats:        []*Seat{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Occupancy returns the number of occupied seats.
func (r *Room) Occupancy() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Seats)
}

// SeatFor returns the seat held by the given player, or nil.
func (r *Room) SeatFor(playerID string) *Seat {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.seatFor(playerID)
}

func (r *Room) seatFor(playerID string) *Seat {
	for _, s := range r.Seats {
		if s.Player.ID == playerID {
			return s
		}
	}
	return nil
}

// Sit seats a player, staking the room's entry amount for the round. A
// player already seated gets their existing seat back. The room moves from
// Forming to Active once occupancy reaches the minimum.
func (r *Room) Sit(p PlayerInfo) (*Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Status == Closed {
		return nil, ErrRoomClosed
	}
	if seat := r.seatFor(p.ID); seat != nil {
		return seat, nil
	}
	if len(r.Seats) >= r.Capacity {
		return nil, ErrRoomFull
	}
	if p.Balance < r.EntryStake {
		return nil, ErrInsufficientBalance
	}

	seat := &Seat{
		Index:  len(r.Seats),
		Player: p,
		Stake:  r.EntryStake,
	}
	r.Seats = append(r.Seats, seat)

	if r.Status == Forming && len(r.Seats) >= r.MinOccupancy {
		r.Status = Active
	}
	r.UpdatedAt = time.Now()

	return seat, nil
}

// Leave removes a player's seat. Remaining seats are re-indexed so seat
// order stays dense. An emptied room closes.
func (r *Room) Leave(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.Seats {
		if s.Player.ID == playerID {
			r.Seats = append(r.Seats[:i], r.Seats[i+1:]...)
			for j := range r.Seats {
				r.Seats[j].Index = j
			}
			if len(r.Seats) == 0 {
				r.Status = Closed
			}
			r.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// Close ends the room. Seats remain readable for settlement and history.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = Closed
	r.UpdatedAt = time.Now()
}

// Activate marks the room active regardless of occupancy. Provisioned
// rooms start active; rounds stay gated on occupancy either way.
func (r *Room) Activate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = Active
	r.UpdatedAt = time.Now()
}

func (r *Room) isClosed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Status == Closed
}

// CanStartRound reports whether a round may begin: the room must be active
// and hold at least the minimum occupancy.
func (r *Room) CanStartRound() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.Status == Closed {
		return ErrRoomClosed
	}
	if r.Status != Active || len(r.Seats) < r.MinOccupancy {
		return ErrNotEnoughPlayers
	}
	return nil
}

// resetRound discards all round-scoped state: hands, standing flags and
// outcomes. Seating and stakes outlive the round.
func (r *Room) resetRound() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.Seats {
		s.reset()
	}
	r.UpdatedAt = time.Now()
}

// Summary is the listing view of a room, built under the room lock so it
// can be served while a round is mutating seat state.
type Summary struct {
	ID           string     `json:"id"`
	Kind         string     `json:"kind"`
	Status       RoomStatus `json:"status"`
	Occupancy    int        `json:"occupancy"`
	Capacity     int        `json:"capacity"`
	EntryStake   int        `json:"entryStake"`
	MinOccupancy int        `json:"minOccupancy"`
	UpdatedAt    time.Time  `json:"lastUpdated"`
}

// Summarize returns the room's listing view.
func (r *Room) Summarize() Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Summary{
		ID:           r.ID,
		Kind:         r.Kind,
		Status:       r.Status,
		Occupancy:    len(r.Seats),
		Capacity:     r.Capacity,
		EntryStake:   r.EntryStake,
		MinOccupancy: r.MinOccupancy,
		UpdatedAt:    r.UpdatedAt,
	}
}

// SeatInfo returns a copy of the player's seat, safe to serialize after
// the lock is released.
func (r *Room) SeatInfo(playerID string) (Seat, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := r.seatFor(playerID)
	if s == nil {
		return Seat{}, false
	}
	cp := *s
	cp.Hand = append(Hand(nil), s.Hand...)
	return cp, true
}

// MarshalJSON serializes the room under its lock so snapshots taken by
// handlers and the store never observe a half-applied deal.
func (r *Room) MarshalJSON() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return json.Marshal(struct {
		ID           string     `json:"id"`
		Kind         string     `json:"kind"`
		Capacity     int        `json:"capacity"`
		MinOccupancy int        `json:"minOccupancy"`
		EntryStake   int        `json:"entryStake"`
		Status       RoomStatus `json:"status"`
		Seats        []*Seat    `json:"seats"`
		CreatedAt    time.Time  `json:"createdAt"`
		UpdatedAt    time.Time  `json:"updatedAt"`
	}{r.ID, r.Kind, r.Capacity, r.MinOccupancy, r.EntryStake, r.Status, r.Seats, r.CreatedAt, r.UpdatedAt})
}

// Split starts a second hand from a pair. Not offered at this table.
func (r *Room) Split(playerID string) error {
	return ErrUnsupported
}

// DoubleDown doubles a seat's stake for one final card. Not offered.
func (r *Room) DoubleDown(playerID string) error {
	return ErrUnsupported
}

// Withdraw retires a seat mid-round. Not offered; leave between rounds.
func (r *Room) Withdraw(playerID string) error {
	return ErrUnsupported
}

// PlaceBet changes a seat's stake away from the entry amount. Not offered.
func (r *Room) PlaceBet(playerID string, amount int) error {
	return ErrUnsupported
}
