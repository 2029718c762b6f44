package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gamerooms/casino-be/internal/game"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now, customize this in production
	},
}

// Message represents a WebSocket message
type Message struct {
	Type     string      `json:"type"`
	RoomID   string      `json:"roomId,omitempty"`
	RoundID  string      `json:"roundId,omitempty"`
	PlayerID string      `json:"playerId,omitempty"`
	Action   string      `json:"action,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	conn     *websocket.Conn
	send     chan []byte
	roomID   string
	playerID string
	hub      *Hub
}

// Hub maintains the set of active clients, routes broadcasts to rooms and
// players, and bridges incoming action decisions to waiting remote agents.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	playerMap  map[string]*Client
	agents     map[string]*RemoteAgent
	logger     *log.Logger
	mu         sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		playerMap:  make(map[string]*Client),
		agents:     make(map[string]*RemoteAgent),
		logger:     logger.WithPrefix("hub"),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true

			if client.roomID != "" {
				if _, exists := h.rooms[client.roomID]; !exists {
					h.rooms[client.roomID] = make(map[*Client]bool)
				}
				h.rooms[client.roomID][client] = true
			}

			if client.playerID != "" {
				h.playerMap[client.playerID] = client
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)

				if client.roomID != "" && h.rooms[client.roomID] != nil {
					delete(h.rooms[client.roomID], client)
					if len(h.rooms[client.roomID]) == 0 {
						delete(h.rooms, client.roomID)
					}
				}

				if client.playerID != "" {
					delete(h.playerMap, client.playerID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// AgentFor returns the remote agent answering action requests for the
// given player, or nil when no client is connected. Satisfies the
// engine's AgentResolver; disconnected players fall back to standing.
func (h *Hub) AgentFor(playerID string) game.Agent {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, connected := h.playerMap[playerID]; !connected {
		return nil
	}

	agent, exists := h.agents[playerID]
	if !exists {
		agent = NewRemoteAgent(playerID, h, h.logger)
		h.agents[playerID] = agent
	}
	return agent
}

// dispatchDecision hands a client's hit/stand reply to its waiting agent.
func (h *Hub) dispatchDecision(playerID, action string) {
	h.mu.RLock()
	agent := h.agents[playerID]
	h.mu.RUnlock()

	if agent == nil {
		h.logger.Warn("decision with no pending request", "player", playerID)
		return
	}
	agent.HandleDecision(action)
}

// BroadcastToRoom sends a message to all clients in a specific room
func (h *Hub) BroadcastToRoom(roomID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("error marshaling message", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if roomClients, exists := h.rooms[roomID]; exists {
		for client := range roomClients {
			select {
			case client.send <- data:
			default:
				// If client buffer is full, we'll handle on next write
			}
		}
	}
}

// SendToPlayer sends a message to a specific player. Reports whether the
// player had a connected client.
func (h *Hub) SendToPlayer(playerID string, message interface{}) bool {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("error marshaling message", "error", err)
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	client, exists := h.playerMap[playerID]
	if !exists {
		return false
	}

	select {
	case client.send <- data:
	default:
		// If client buffer is full, we'll handle on next write
	}
	return true
}

// WebSocketHandler handles WebSocket connections
func (h *Hub) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("upgrade failed", "error", err)
		return
	}

	playerID := r.URL.Query().Get("playerId")
	roomID := r.URL.Query().Get("roomId")

	client := &Client{
		conn:     conn,
		send:     make(chan []byte, 256),
		roomID:   roomID,
		playerID: playerID,
		hub:      h,
	}
	h.register <- client

	welcomeMsg := Message{
		Type: "welcome",
		Data: map[string]string{
			"message":  "Connected to casino room server",
			"playerId": playerID,
			"roomId":   roomID,
		},
	}
	welcomeData, err := json.Marshal(welcomeMsg)
	if err != nil {
		h.logger.Error("error marshaling message", "error", err)
	} else {
		client.send <- welcomeData
	}

	go client.readPump()
	go client.writePump()
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512 * 1024) // 512KB max message size
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("websocket error", "error", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			c.hub.logger.Error("error unmarshaling message", "error", err)
			continue
		}

		switch msg.Type {
		case "action":
			c.hub.dispatchDecision(c.playerID, msg.Action)
		case "ping":
			// keepalive only
		default:
			c.hub.logger.Debug("unhandled message type", "type", msg.Type)
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
