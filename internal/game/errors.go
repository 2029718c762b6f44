package game

import "errors"

var (
	// ErrInvalidConfig rejects a room whose configuration cannot host a
	// round (capacity below minimum occupancy, non-positive entry stake).
	ErrInvalidConfig = errors.New("invalid room configuration")

	// ErrRoomFull rejects seating against a room at capacity.
	ErrRoomFull = errors.New("room is full")

	// ErrRoomClosed rejects seating or rounds against a closed room.
	ErrRoomClosed = errors.New("room is closed")

	// ErrNotEnoughPlayers rejects a round started below the room's
	// minimum occupancy. Checked before any cards are dealt.
	ErrNotEnoughPlayers = errors.New("not enough players seated")

	// ErrInsufficientBalance rejects a player whose balance does not
	// cover the room's entry stake.
	ErrInsufficientBalance = errors.New("balance below entry stake")

	// ErrUnsupported marks table moves the game does not offer yet:
	// split, double down, mid-round withdrawal and per-seat re-bets.
	ErrUnsupported = errors.New("move not supported")
)
