package game

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlayer(id, name string) PlayerInfo {
	return PlayerInfo{ID: id, Name: name, Balance: 1000}
}

func TestNewRoomValidation(t *testing.T) {
	tests := []struct {
		name         string
		capacity     int
		minOccupancy int
		entryStake   int
		wantErr      error
	}{
		{"valid", 4, 2, 10, nil},
		{"single seat table", 1, 1, 5, nil},
		{"capacity below minimum", 1, 2, 10, ErrInvalidConfig},
		{"zero minimum", 4, 0, 10, ErrInvalidConfig},
		{"zero stake", 4, 2, 0, ErrInvalidConfig},
		{"negative stake", 4, 2, -5, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room, err := NewRoom("blackjack", tt.capacity, tt.minOccupancy, tt.entryStake)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, room)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Forming, room.Status)
			assert.NotEmpty(t, room.ID)
		})
	}
}

func TestRoomSeating(t *testing.T) {
	room, err := NewRoom("blackjack", 2, 2, 10)
	require.NoError(t, err)

	seat, err := room.Sit(testPlayer("p1", "Ana"))
	require.NoError(t, err)
	assert.Equal(t, 0, seat.Index)
	assert.Equal(t, 10, seat.Stake)
	assert.Equal(t, Forming, room.Status, "below minimum occupancy")

	_, err = room.Sit(testPlayer("p2", "Luis"))
	require.NoError(t, err)
	assert.Equal(t, Active, room.Status, "minimum occupancy reached")

	// At capacity now.
	_, err = room.Sit(testPlayer("p3", "Eva"))
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Equal(t, 2, room.Occupancy())
}

func TestRoomSitIsIdempotentPerPlayer(t *testing.T) {
	room, err := NewRoom("blackjack", 2, 1, 10)
	require.NoError(t, err)

	first, err := room.Sit(testPlayer("p1", "Ana"))
	require.NoError(t, err)
	again, err := room.Sit(testPlayer("p1", "Ana"))
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, room.Occupancy())
}

func TestRoomRejectsLowBalance(t *testing.T) {
	room, err := NewRoom("blackjack", 2, 1, 100)
	require.NoError(t, err)

	_, err = room.Sit(PlayerInfo{ID: "p1", Name: "Ana", Balance: 50})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, 0, room.Occupancy())
}

func TestRoomCapacityInvariant(t *testing.T) {
	room, err := NewRoom("blackjack", 3, 1, 10)
	require.NoError(t, err)

	// Arbitrary interleaving of sits and leaves never overfills the room.
	players := []string{"a", "b", "c", "d", "e", "f"}
	for i, id := range players {
		room.Sit(testPlayer(id, id))
		if i%2 == 1 {
			room.Leave(players[i/2])
		}
		assert.LessOrEqual(t, room.Occupancy(), room.Capacity)
	}
}

func TestRoomLeaveReindexesAndCloses(t *testing.T) {
	room, err := NewRoom("blackjack", 4, 2, 10)
	require.NoError(t, err)

	room.Sit(testPlayer("p1", "Ana"))
	room.Sit(testPlayer("p2", "Luis"))
	room.Sit(testPlayer("p3", "Eva"))

	require.True(t, room.Leave("p1"))
	assert.Equal(t, 0, room.SeatFor("p2").Index)
	assert.Equal(t, 1, room.SeatFor("p3").Index)

	assert.False(t, room.Leave("p1"), "already gone")

	room.Leave("p2")
	room.Leave("p3")
	assert.Equal(t, Closed, room.Status, "emptied room closes")
}

func TestClosedRoomRejectsSeats(t *testing.T) {
	room, err := NewRoom("blackjack", 4, 2, 10)
	require.NoError(t, err)
	room.Close()

	_, err = room.Sit(testPlayer("p1", "Ana"))
	assert.ErrorIs(t, err, ErrRoomClosed)
	assert.ErrorIs(t, room.CanStartRound(), ErrRoomClosed)
}

func TestCanStartRound(t *testing.T) {
	room, err := NewRoom("blackjack", 4, 2, 10)
	require.NoError(t, err)

	assert.ErrorIs(t, room.CanStartRound(), ErrNotEnoughPlayers)

	room.Sit(testPlayer("p1", "Ana"))
	assert.ErrorIs(t, room.CanStartRound(), ErrNotEnoughPlayers)

	room.Sit(testPlayer("p2", "Luis"))
	assert.NoError(t, room.CanStartRound())
}

func TestRoomSummarize(t *testing.T) {
	room, err := NewRoom("blackjack", 4, 2, 10)
	require.NoError(t, err)
	room.Sit(testPlayer("p1", "Ana"))

	s := room.Summarize()
	assert.Equal(t, room.ID, s.ID)
	assert.Equal(t, Forming, s.Status)
	assert.Equal(t, 1, s.Occupancy)
	assert.Equal(t, 4, s.Capacity)
	assert.Equal(t, 10, s.EntryStake)
	assert.Equal(t, 2, s.MinOccupancy)

	room.Activate()
	assert.Equal(t, Active, room.Summarize().Status)
}

// Seating, lifecycle reads and serialized snapshots from different
// goroutines all go through the room lock; run with the race detector.
func TestRoomConcurrentSeatingAndSnapshots(t *testing.T) {
	room, err := NewRoom("blackjack", 5, 1, 10)
	require.NoError(t, err)

	// One permanent seat so churn never empties (and closes) the room.
	_, err = room.Sit(testPlayer("anchor", "anchor"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		id := fmt.Sprintf("p%d", g)
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				room.Sit(testPlayer(id, id))
				room.Leave(id)
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				json.Marshal(room)
				room.Summarize()
				room.Occupancy()
				room.SeatInfo(id)
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, room.Occupancy(), room.Capacity)
	assert.NotNil(t, room.SeatFor("anchor"))
}

func TestUnsupportedMoves(t *testing.T) {
	room, err := NewRoom("blackjack", 4, 2, 10)
	require.NoError(t, err)
	room.Sit(testPlayer("p1", "Ana"))

	assert.ErrorIs(t, room.Split("p1"), ErrUnsupported)
	assert.ErrorIs(t, room.DoubleDown("p1"), ErrUnsupported)
	assert.ErrorIs(t, room.Withdraw("p1"), ErrUnsupported)
	assert.ErrorIs(t, room.PlaceBet("p1", 50), ErrUnsupported)
}
