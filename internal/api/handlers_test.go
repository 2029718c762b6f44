package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gamerooms/casino-be/internal/db"
	"github.com/gamerooms/casino-be/internal/game"
	"github.com/gamerooms/casino-be/internal/registry"
	"github.com/gamerooms/casino-be/internal/store"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRouter(t *testing.T) (*mux.Router, store.Store, *Handlers) {
	t.Helper()
	return testRouterWithDatabase(t, nil)
}

func testRouterWithDatabase(t *testing.T, database *db.Database) (*mux.Router, store.Store, *Handlers) {
	t.Helper()

	logger := log.New(io.Discard)
	roomStore := store.NewMemoryStore()
	hub := NewHub(logger)
	provisioner := registry.NewProvisioner(registry.NewLocalRegistry(roomStore, nil))

	handlers := NewHandlers(roomStore, database, hub, provisioner, logger, time.Second)
	r := mux.NewRouter()
	handlers.RegisterRoutes(r)

	return r, roomStore, handlers
}

func doJSON(t *testing.T, r *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterPlayer(t *testing.T) {
	r, _, _ := testRouter(t)

	w := doJSON(t, r, "POST", "/api/player/register", map[string]string{"name": "Ana"})
	require.Equal(t, http.StatusCreated, w.Code)

	var player game.PlayerInfo
	require.NoError(t, json.NewDecoder(w.Body).Decode(&player))
	assert.NotEmpty(t, player.ID)
	assert.Equal(t, "Ana", player.Name)
	assert.Equal(t, 1000, player.Balance)

	w = doJSON(t, r, "POST", "/api/player/register", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNewRoomProvisionsSeededRoom(t *testing.T) {
	r, roomStore, _ := testRouter(t)

	w := doJSON(t, r, "POST", "/api/room/new", map[string]interface{}{
		"kind": "blackjack",
		"players": []game.PlayerInfo{
			{ID: "p1", Name: "Ana", Balance: 500},
			{ID: "p2", Name: "Luis", Balance: 800},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var room game.Room
	require.NoError(t, json.NewDecoder(w.Body).Decode(&room))
	assert.Equal(t, game.Active, room.Status)
	assert.Equal(t, 2, len(room.Seats))

	stored, err := roomStore.GetRoom(room.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Occupancy())
}

func TestJoinRoom(t *testing.T) {
	r, roomStore, _ := testRouter(t)

	room, err := game.NewRoom("blackjack", 2, 2, 10)
	require.NoError(t, err)
	require.NoError(t, roomStore.SaveRoom(room))

	w := doJSON(t, r, "POST", "/api/room/"+room.ID+"/join", map[string]string{
		"playerId": "p1", "playerName": "Ana",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, room.Occupancy())

	doJSON(t, r, "POST", "/api/room/"+room.ID+"/join", map[string]string{
		"playerId": "p2", "playerName": "Luis",
	})
	w = doJSON(t, r, "POST", "/api/room/"+room.ID+"/join", map[string]string{
		"playerId": "p3", "playerName": "Eva",
	})
	assert.Equal(t, http.StatusConflict, w.Code, "room at capacity")

	w = doJSON(t, r, "POST", "/api/room/missing/join", map[string]string{
		"playerId": "p4", "playerName": "Bo",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStartRoundBelowMinimumOccupancy(t *testing.T) {
	r, _, _ := testRouter(t)

	w := doJSON(t, r, "POST", "/api/room/new", map[string]interface{}{
		"kind": "blackjack",
		"players": []game.PlayerInfo{
			{ID: "p1", Name: "Ana", Balance: 500},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var room game.Room
	require.NoError(t, json.NewDecoder(w.Body).Decode(&room))

	w = doJSON(t, r, "POST", "/api/room/"+room.ID+"/round", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "rounds are gated on occupancy")
}

func TestCloseRoomStopsSeating(t *testing.T) {
	r, roomStore, _ := testRouter(t)

	room, err := game.NewRoom("blackjack", 4, 2, 10)
	require.NoError(t, err)
	require.NoError(t, roomStore.SaveRoom(room))

	w := doJSON(t, r, "POST", "/api/room/"+room.ID+"/close", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "POST", "/api/room/"+room.ID+"/join", map[string]string{
		"playerId": "p1", "playerName": "Ana",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetAndListRooms(t *testing.T) {
	r, roomStore, _ := testRouter(t)

	w := doJSON(t, r, "GET", "/api/room/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	room, err := game.NewRoom("blackjack", 4, 2, 10)
	require.NoError(t, err)
	require.NoError(t, roomStore.SaveRoom(room))

	w = doJSON(t, r, "GET", "/api/room/"+room.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "GET", "/api/room/list?kind=blackjack", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.Len(t, list, 1)
}

// While a round is playing, the seat set belongs to the round: joins and
// leaves are rejected, closing stays available as the abort path.
func TestSeatingRejectedWhileRoundInProgress(t *testing.T) {
	r, roomStore, h := testRouter(t)

	room, err := game.NewRoom("blackjack", 4, 1, 10)
	require.NoError(t, err)
	_, err = room.Sit(game.PlayerInfo{ID: "p1", Name: "Ana", Balance: 1000})
	require.NoError(t, err)
	require.NoError(t, roomStore.SaveRoom(room))

	h.roundsMu.Lock()
	h.activeRounds[room.ID] = true
	h.roundsMu.Unlock()

	w := doJSON(t, r, "POST", "/api/room/"+room.ID+"/join", map[string]string{
		"playerId": "p2", "playerName": "Luis",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 1, room.Occupancy())

	w = doJSON(t, r, "POST", "/api/room/"+room.ID+"/leave", map[string]string{
		"playerId": "p1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, "POST", "/api/room/"+room.ID+"/round", nil)
	assert.Equal(t, http.StatusConflict, w.Code, "one round at a time")

	w = doJSON(t, r, "POST", "/api/room/"+room.ID+"/close", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	h.roundsMu.Lock()
	delete(h.activeRounds, room.ID)
	h.roundsMu.Unlock()

	w = doJSON(t, r, "POST", "/api/room/"+room.ID+"/leave", map[string]string{
		"playerId": "p1",
	})
	assert.Equal(t, http.StatusOK, w.Code, "seating reopens once the round ends")
}

func TestGetPlayerWithDatabase(t *testing.T) {
	database, err := db.NewDatabase(filepath.Join(t.TempDir(), "casino.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	r, _, _ := testRouterWithDatabase(t, database)

	w := doJSON(t, r, "POST", "/api/player/register", map[string]string{"name": "Ana"})
	require.Equal(t, http.StatusCreated, w.Code)

	var player game.PlayerInfo
	require.NoError(t, json.NewDecoder(w.Body).Decode(&player))

	w = doJSON(t, r, "GET", "/api/player/"+player.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got game.PlayerInfo
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, player.ID, got.ID)
	assert.Equal(t, 1000, got.Balance)

	w = doJSON(t, r, "GET", "/api/player/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
