package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gamerooms/casino-be/internal/db"
	"github.com/gamerooms/casino-be/internal/game"
	"github.com/gamerooms/casino-be/internal/registry"
	"github.com/gamerooms/casino-be/internal/store"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Handlers contains all the API handlers
type Handlers struct {
	store       store.Store
	database    *db.Database
	hub         *Hub
	provisioner *registry.Provisioner
	shoe        game.Shoe
	logger      *log.Logger
	timeout     time.Duration

	roundsMu     sync.Mutex
	activeRounds map[string]bool
}

// NewHandlers creates a new instance of Handlers
func NewHandlers(s store.Store, database *db.Database, hub *Hub, provisioner *registry.Provisioner, logger *log.Logger, actionTimeout time.Duration) *Handlers {
	return &Handlers{
		store:        s,
		database:     database,
		hub:          hub,
		provisioner:  provisioner,
		shoe:         game.NewShoe(),
		logger:       logger.WithPrefix("api"),
		timeout:      actionTimeout,
		activeRounds: make(map[string]bool),
	}
}

// RegisterRoutes registers all API routes
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	// Room endpoints
	r.HandleFunc("/api/room/new", h.NewRoom).Methods("POST")
	r.HandleFunc("/api/room/list", h.ListRooms).Methods("GET")
	r.HandleFunc("/api/room/{id}/join", h.JoinRoom).Methods("POST")
	r.HandleFunc("/api/room/{id}/leave", h.LeaveRoom).Methods("POST")
	r.HandleFunc("/api/room/{id}/close", h.CloseRoom).Methods("POST")
	r.HandleFunc("/api/room/{id}/round", h.StartRound).Methods("POST")
	r.HandleFunc("/api/room/{id}", h.GetRoom).Methods("GET")

	// Player endpoints
	r.HandleFunc("/api/player/register", h.RegisterPlayer).Methods("POST")
	r.HandleFunc("/api/player/{id}", h.GetPlayer).Methods("GET")
	r.HandleFunc("/api/player/{id}/stats", h.GetPlayerStats).Methods("GET")

	// WebSocket endpoint
	r.HandleFunc("/ws", h.hub.WebSocketHandler)
}

// response helper function to send JSON responses
func response(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// error response helper function
func errorResponse(w http.ResponseWriter, status int, message string) {
	response(w, status, map[string]string{"error": message})
}

// seatingStatus maps engine seating errors to HTTP statuses.
func seatingStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrRoomFull), errors.Is(err, game.ErrRoomClosed):
		return http.StatusConflict
	case errors.Is(err, game.ErrInsufficientBalance), errors.Is(err, game.ErrNotEnoughPlayers), errors.Is(err, game.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrUnsupported):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// NewRoom provisions an active room seeded with the given players
func (h *Handlers) NewRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind    string            `json:"kind"`
		Players []game.PlayerInfo `json:"players"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Kind == "" {
		req.Kind = "blackjack"
	}

	// Balances come from the account collaborator when it knows the player.
	if h.database != nil {
		for i, p := range req.Players {
			account, err := h.database.GetPlayerByID(p.ID)
			if err == nil && account != nil {
				req.Players[i] = *account
			}
		}
	}

	roomID, err := h.provisioner.CreateActiveRoom(r.Context(), req.Kind, req.Players)
	if err != nil {
		h.logger.Error("room provisioning failed", "kind", req.Kind, "error", err)
		errorResponse(w, seatingStatus(err), err.Error())
		return
	}

	room, err := h.store.GetRoom(roomID)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to load provisioned room")
		return
	}

	if h.hub != nil {
		h.hub.BroadcastToRoom(roomID, Message{
			Type:   "roomCreated",
			RoomID: roomID,
			Data:   room,
		})
	}

	response(w, http.StatusCreated, room)
}

// JoinRoom seats a player in a room
func (h *Handlers) JoinRoom(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID := vars["id"]

	var req struct {
		PlayerID   string `json:"playerId"`
		PlayerName string `json:"playerName"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	room, err := h.store.GetRoom(roomID)
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Room not found")
		return
	}

	// The seat set belongs to the round while one is running.
	if h.roundInProgress(roomID) {
		errorResponse(w, http.StatusConflict, "Round in progress")
		return
	}

	player := game.PlayerInfo{ID: req.PlayerID, Name: req.PlayerName, Balance: 1000}
	if h.database != nil {
		account, err := h.database.GetPlayerByID(req.PlayerID)
		if err == nil && account != nil {
			player = *account
		}
	}

	if _, err := room.Sit(player); err != nil {
		errorResponse(w, seatingStatus(err), err.Error())
		return
	}
	seat, _ := room.SeatInfo(req.PlayerID)

	if err := h.store.SaveRoom(room); err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to update room")
		return
	}

	if h.hub != nil {
		h.hub.BroadcastToRoom(roomID, Message{
			Type:     "playerJoined",
			RoomID:   roomID,
			PlayerID: req.PlayerID,
			Data:     seat,
		})
	}

	response(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"seat":    seat,
		"room":    room,
	})
}

// LeaveRoom removes a player's seat
func (h *Handlers) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID := vars["id"]

	var req struct {
		PlayerID string `json:"playerId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	room, err := h.store.GetRoom(roomID)
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Room not found")
		return
	}

	if h.roundInProgress(roomID) {
		errorResponse(w, http.StatusConflict, "Round in progress")
		return
	}

	if !room.Leave(req.PlayerID) {
		errorResponse(w, http.StatusBadRequest, "Player not seated in room")
		return
	}

	if err := h.store.SaveRoom(room); err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to update room")
		return
	}

	if h.hub != nil {
		h.hub.BroadcastToRoom(roomID, Message{
			Type:     "playerLeft",
			RoomID:   roomID,
			PlayerID: req.PlayerID,
		})
	}

	response(w, http.StatusOK, map[string]string{
		"success": "true",
		"message": "Successfully left room",
	})
}

// CloseRoom closes a room; no further rounds may run in it
func (h *Handlers) CloseRoom(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID := vars["id"]

	room, err := h.store.GetRoom(roomID)
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Room not found")
		return
	}

	room.Close()

	if err := h.store.SaveRoom(room); err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to update room")
		return
	}

	if h.hub != nil {
		h.hub.BroadcastToRoom(roomID, Message{
			Type:   "roomClosed",
			RoomID: roomID,
		})
	}

	response(w, http.StatusOK, map[string]string{"success": "true"})
}

// StartRound starts one round in the room. The round runs asynchronously:
// seated players get action requests over their WebSocket connections and
// the result is broadcast to the room when the dealer finishes.
func (h *Handlers) StartRound(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID := vars["id"]

	room, err := h.store.GetRoom(roomID)
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Room not found")
		return
	}

	if err := room.CanStartRound(); err != nil {
		errorResponse(w, seatingStatus(err), err.Error())
		return
	}

	h.roundsMu.Lock()
	if h.activeRounds[roomID] {
		h.roundsMu.Unlock()
		errorResponse(w, http.StatusConflict, "Round already in progress")
		return
	}
	h.activeRounds[roomID] = true
	h.roundsMu.Unlock()

	table := game.NewTable(room, h.shoe, h.hub.AgentFor, game.TableConfig{
		ActionTimeout: h.timeout,
		Logger:        h.logger,
		Events:        &logSink{logger: h.logger},
		Settler:       h.settler(),
	})

	go func() {
		defer func() {
			h.roundsMu.Lock()
			delete(h.activeRounds, roomID)
			h.roundsMu.Unlock()
		}()

		round, err := table.PlayRound(context.Background())
		if err != nil {
			h.logger.Error("round failed", "room", roomID, "error", err)
			return
		}

		if err := h.store.SaveRoom(room); err != nil {
			h.logger.Error("failed to save room after round", "room", roomID, "error", err)
		}

		h.hub.BroadcastToRoom(roomID, Message{
			Type:    "roundResult",
			RoomID:  roomID,
			RoundID: round.ID,
			Data:    round,
		})
	}()

	response(w, http.StatusAccepted, map[string]string{
		"status": "roundStarted",
		"roomId": roomID,
	})
}

// roundInProgress reports whether a round is currently playing in the
// room. Seating changes are rejected while one is.
func (h *Handlers) roundInProgress(roomID string) bool {
	h.roundsMu.Lock()
	defer h.roundsMu.Unlock()
	return h.activeRounds[roomID]
}

// settler returns the settlement collaborator, or nil when running
// without persistence.
func (h *Handlers) settler() game.Settler {
	if h.database == nil {
		return nil
	}
	return h.database
}

// GetRoom returns the current state of a room
func (h *Handlers) GetRoom(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID := vars["id"]

	room, err := h.store.GetRoom(roomID)
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Room not found")
		return
	}

	response(w, http.StatusOK, room)
}

// ListRooms returns all rooms, optionally filtered by kind
func (h *Handlers) ListRooms(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")

	var rooms []*game.Room
	var err error
	if kind != "" {
		rooms, err = h.store.GetRoomsByKind(kind)
	} else {
		rooms, err = h.store.GetAllRooms()
	}
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Error retrieving rooms")
		return
	}

	list := make([]game.Summary, 0, len(rooms))
	for _, room := range rooms {
		list = append(list, room.Summarize())
	}

	response(w, http.StatusOK, list)
}

// RegisterPlayer registers a new player account
func (h *Handlers) RegisterPlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		errorResponse(w, http.StatusBadRequest, "Player name is required")
		return
	}

	playerID := uuid.New().String()
	initialBalance := 1000 // Default starting balance

	if h.database != nil {
		if err := h.database.CreatePlayer(playerID, req.Name, initialBalance); err != nil {
			errorResponse(w, http.StatusInternalServerError, "Failed to create player")
			return
		}
	}

	response(w, http.StatusCreated, game.PlayerInfo{
		ID:      playerID,
		Name:    req.Name,
		Balance: initialBalance,
	})
}

// GetPlayer returns player account information
func (h *Handlers) GetPlayer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	playerID := vars["id"]

	if h.database == nil {
		errorResponse(w, http.StatusInternalServerError, "Database not available")
		return
	}

	player, err := h.database.GetPlayerByID(playerID)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Error retrieving player")
		return
	}

	if player == nil {
		errorResponse(w, http.StatusNotFound, "Player not found")
		return
	}

	if err := h.database.UpdatePlayerLastSeen(playerID); err != nil {
		h.logger.Warn("failed to update last seen", "player", playerID, "error", err)
	}

	response(w, http.StatusOK, player)
}

// GetPlayerStats returns player statistics over settled rounds
func (h *Handlers) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	playerID := vars["id"]

	if h.database == nil {
		errorResponse(w, http.StatusInternalServerError, "Database not available")
		return
	}

	stats, err := h.database.GetPlayerStats(playerID)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Error retrieving player statistics")
		return
	}

	response(w, http.StatusOK, stats)
}

// logSink reports engine events through the server log.
type logSink struct {
	logger *log.Logger
}

func (s *logSink) Publish(e game.Event) {
	s.logger.Debug("engine event", "type", e.EventType(), "at", e.Timestamp())
}
