package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/team5526/pitcrew/internal/logger"
	"github.com/team5526/pitcrew/internal/models"
	"github.com/team5526/pitcrew/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// teamMessage routes a message to one team's clients. An empty team id
// broadcasts to everyone.
type teamMessage struct {
	teamID  string
	message models.WSMessage
}

// Hub maintains the set of active clients and pushes team-scoped updates:
// inspection progress as it is recorded and match alerts as matches approach.
type Hub struct {
	log        logger.Logger
	clients    map[*Client]bool
	broadcast  chan teamMessage
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	matches    services.MatchServicer
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan models.WSMessage
	teamID string
}

// New creates a new Hub instance with injected dependencies
func New(log logger.Logger, matches services.MatchServicer) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan teamMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		matches:    matches,
	}
}

// Start begins the hub's main loop in a goroutine
func (h *Hub) Start() {
	go h.run()
}

// run handles client registration/unregistration and message broadcasting
func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			h.log.Debug("client connected", "team", client.teamID, "total_clients", len(h.clients))

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			h.log.Debug("client disconnected", "total_clients", len(h.clients))

		case tm := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				if tm.teamID != "" && client.teamID != tm.teamID {
					continue
				}
				select {
				case client.send <- tm.message:
				default:
					// Client's send channel is full, unregister
					go func(c *Client) {
						h.unregister <- c
					}(client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// BroadcastMessage sends a message to one team's clients
func (h *Hub) BroadcastMessage(teamID, msgType string, payload interface{}) {
	h.broadcast <- teamMessage{
		teamID:  teamID,
		message: models.WSMessage{Type: msgType, Payload: payload},
	}
}

// BroadcastInspectionUpdate implements services.Broadcaster
func (h *Hub) BroadcastInspectionUpdate(teamID string, session *models.InspectionSession) {
	h.BroadcastMessage(teamID, "inspection_update", session)
}

// BroadcastMatchAlert implements services.Broadcaster
func (h *Hub) BroadcastMatchAlert(teamID string, payload interface{}) {
	h.BroadcastMessage(teamID, "match_alert", payload)
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("websocket error", "error", err)
			}
			break
		}

		var msg models.WSMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.hub.log.Debug("received message", "type", msg.Type, "team", c.teamID)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			msgBytes, _ := json.Marshal(message)
			w.Write(msgBytes)

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

// ServeWs handles websocket requests from clients. Clients subscribe to one
// team's updates via the team query parameter.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan models.WSMessage, 256),
		teamID: r.URL.Query().Get("team"),
	}
	h.register <- client

	// Allow collection of memory referenced by the caller by doing all work in new goroutines
	go client.writePump()
	go client.readPump()
}

// matchAlertInterval is how often connected teams get a countdown refresh
const matchAlertInterval = 30 * time.Second

// StartMatchAlerts runs the countdown loop with context-based cancellation.
// Every tick it recomputes the preparation status for each team with at
// least one connected client and pushes it as a match alert.
func (h *Hub) StartMatchAlerts(ctx context.Context) {
	ticker := time.NewTicker(matchAlertInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info("match alert loop stopped")
			return
		case <-ticker.C:
			h.pushMatchAlerts(ctx)
		}
	}
}

// pushMatchAlerts sends the current preparation status to every subscribed team
func (h *Hub) pushMatchAlerts(ctx context.Context) {
	if h.matches == nil {
		return
	}
	for _, teamID := range h.connectedTeams() {
		status, err := h.matches.GetPreparationStatus(ctx, teamID)
		if err != nil {
			h.log.Debug("preparation status failed", "team", teamID, "error", err)
			continue
		}
		h.BroadcastMatchAlert(teamID, status)
	}
}

// connectedTeams returns the distinct team ids with at least one client
func (h *Hub) connectedTeams() []string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	seen := map[string]bool{}
	var teams []string
	for client := range h.clients {
		if client.teamID == "" || seen[client.teamID] {
			continue
		}
		seen[client.teamID] = true
		teams = append(teams, client.teamID)
	}
	return teams
}
