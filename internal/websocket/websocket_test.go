package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/team5526/pitcrew/internal/logger"
	"github.com/team5526/pitcrew/internal/models"
)

func httpHandler(hub *Hub) http.Handler {
	return http.HandlerFunc(hub.ServeWs)
}

func dial(t *testing.T, server *httptest.Server, teamID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?team=" + teamID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) *models.WSMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	var msg models.WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("failed to decode message: %v", err)
	}
	return &msg
}

func expectNoMessage(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected no message, got one")
	}
}

func TestBroadcastScopedToTeam(t *testing.T) {
	hub := New(logger.New(), nil)
	hub.Start()
	server := httptest.NewServer(httpHandler(hub))
	defer server.Close()

	team1 := dial(t, server, "team-1")
	team2 := dial(t, server, "team-2")
	waitForClients(t, hub, 2)

	session := &models.InspectionSession{ID: "insp-1", TeamID: "team-1"}
	hub.BroadcastInspectionUpdate("team-1", session)

	msg := readMessage(t, team1)
	if msg.Type != "inspection_update" {
		t.Errorf("expected inspection_update, got %s", msg.Type)
	}
	expectNoMessage(t, team2)
}

func TestBroadcastAllTeams(t *testing.T) {
	hub := New(logger.New(), nil)
	hub.Start()
	server := httptest.NewServer(httpHandler(hub))
	defer server.Close()

	team1 := dial(t, server, "team-1")
	team2 := dial(t, server, "team-2")
	waitForClients(t, hub, 2)

	hub.BroadcastMessage("", "announcement", map[string]string{"text": "pits closing"})

	for _, conn := range []*websocket.Conn{team1, team2} {
		msg := readMessage(t, conn)
		if msg.Type != "announcement" {
			t.Errorf("expected announcement, got %s", msg.Type)
		}
	}
}

func TestMatchAlertPayload(t *testing.T) {
	hub := New(logger.New(), nil)
	hub.Start()
	server := httptest.NewServer(httpHandler(hub))
	defer server.Close()

	conn := dial(t, server, "team-1")
	waitForClients(t, hub, 1)

	hub.BroadcastMatchAlert("team-1", map[string]interface{}{
		"alertLevel": "urgent", "minutesUntilMatch": 4,
	})

	msg := readMessage(t, conn)
	if msg.Type != "match_alert" {
		t.Fatalf("expected match_alert, got %s", msg.Type)
	}
	payload, ok := msg.Payload.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected payload type: %T", msg.Payload)
	}
	if payload["alertLevel"] != "urgent" {
		t.Errorf("unexpected payload: %v", payload)
	}
}

func TestConnectedTeams(t *testing.T) {
	hub := New(logger.New(), nil)
	hub.Start()
	server := httptest.NewServer(httpHandler(hub))
	defer server.Close()

	dial(t, server, "team-1")
	dial(t, server, "team-1")
	dial(t, server, "team-2")
	waitForClients(t, hub, 3)

	teams := hub.connectedTeams()
	if len(teams) != 2 {
		t.Errorf("expected 2 distinct teams, got %v", teams)
	}
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mutex.RLock()
		n := len(hub.clients)
		hub.mutex.RUnlock()
		if n >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d clients", want)
}
