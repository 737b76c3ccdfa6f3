package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexivo/pkg/apperr"
)

// ownerOnly lets a user into the rooms of the projects listed for them.
type ownerOnly map[string]string

func (o ownerOnly) Authorize(_ context.Context, projectID, userID string) error {
	if o[projectID] != userID {
		return apperr.NotFound("Project")
	}
	return nil
}

// Helper function to read messages from a WebSocket connection with a timeout.
func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	var msg WSMessage
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, p, err := conn.ReadMessage()
	require.NoError(t, err, "Failed to read message from WebSocket")
	require.NoError(t, json.Unmarshal(p, &msg), "Failed to unmarshal WSMessage JSON")
	return msg
}

func presenceOf(t *testing.T, msg WSMessage) []string {
	t.Helper()
	require.Equal(t, PresenceUpdateType, msg.Type)
	var p PresencePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &p))
	return p.Users
}

func startHub(t *testing.T, auth ProjectAuthorizer) (*Hub, string) {
	t.Helper()
	hub := NewHub(auth)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r, r.URL.Query().Get("user_id"))
	}))
	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return hub, "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}

func TestHubIntegration(t *testing.T) {
	hub, wsURL := startHub(t, ownerOnly{"proj-1": "user1"})

	conn1, _, err := websocket.DefaultDialer.Dial(wsURL+"?projectId=proj-1&user_id=user1", nil)
	require.NoError(t, err, "Client 1 failed to connect")
	defer conn1.Close()
	assert.Equal(t, []string{"user1"}, presenceOf(t, readMessage(t, conn1)))

	// A second tab of the same user joins the room.
	conn2, _, err := websocket.DefaultDialer.Dial(wsURL+"?projectId=proj-1&user_id=user1", nil)
	require.NoError(t, err, "Client 2 failed to connect")
	defer conn2.Close()
	assert.Equal(t, []string{"user1"}, presenceOf(t, readMessage(t, conn1)))
	assert.Equal(t, []string{"user1"}, presenceOf(t, readMessage(t, conn2)))

	hub.Publish("proj-1", SlideCreatedType, "user1", map[string]string{"id": "slide-1"})
	for _, conn := range []*websocket.Conn{conn1, conn2} {
		msg := readMessage(t, conn)
		assert.Equal(t, SlideCreatedType, msg.Type)
		assert.Equal(t, "proj-1", msg.ProjectID)
		assert.JSONEq(t, `{"id":"slide-1"}`, string(msg.Payload))
	}

	// Events for another project never reach this room.
	hub.Publish("proj-2", SlideDeletedType, "user2", nil)
	hub.Publish("proj-1", SlidesReorderedType, "user1", []string{"a", "b"})
	assert.Equal(t, SlidesReorderedType, readMessage(t, conn1).Type)
}

func TestHub_LeaveUpdatesPresence(t *testing.T) {
	hub, wsURL := startHub(t, ownerOnly{"proj-1": "user1"})

	conn1, _, err := websocket.DefaultDialer.Dial(wsURL+"?projectId=proj-1&user_id=user1", nil)
	require.NoError(t, err)
	defer conn1.Close()
	readMessage(t, conn1)

	conn2, _, err := websocket.DefaultDialer.Dial(wsURL+"?projectId=proj-1&user_id=user1", nil)
	require.NoError(t, err)
	readMessage(t, conn1)
	readMessage(t, conn2)

	conn2.Close()
	assert.Equal(t, []string{"user1"}, presenceOf(t, readMessage(t, conn1)))
	assert.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.Rooms["proj-1"]) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestHub_CloseProjectDisconnects(t *testing.T) {
	hub, wsURL := startHub(t, ownerOnly{"proj-1": "user1"})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?projectId=proj-1&user_id=user1", nil)
	require.NoError(t, err)
	defer conn.Close()
	readMessage(t, conn)

	hub.CloseProject("proj-1")

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
	assert.Empty(t, hub.ConnectedUsers("proj-1"))
}

func TestServeWs_RejectsForeignProject(t *testing.T) {
	_, wsURL := startHub(t, ownerOnly{"proj-1": "user1"})

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"?projectId=proj-1&user_id=intruder", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServeWs_MissingProjectID(t *testing.T) {
	_, wsURL := startHub(t, ownerOnly{})

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"?user_id=user1", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPublish_DoesNotBlockWithoutRunningHub(t *testing.T) {
	hub := NewHub(ownerOnly{})
	for i := 0; i < cap(hub.Broadcast)+10; i++ {
		hub.Publish("proj-1", SlideUpdatedType, "user1", i)
	}
	assert.Len(t, hub.Broadcast, cap(hub.Broadcast))
}

// closedWithin drains ch and reports whether it was closed before the deadline.
func closedWithin(ch chan []byte, d time.Duration) bool {
	deadline := time.After(d)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return true
			}
		case <-deadline:
			return false
		}
	}
}

func runHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(ownerOnly{})
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := runHub(t)

	// The join presence update fills the only slot; nothing ever reads it.
	slow := &Client{Hub: hub, ProjectID: "proj-1", UserID: "lagging", Send: make(chan []byte, 1)}
	hub.Register <- slow
	require.Eventually(t, func() bool {
		return len(hub.ConnectedUsers("proj-1")) == 1
	}, time.Second, 10*time.Millisecond)

	for i := 0; i < 5; i++ {
		hub.Publish("proj-1", SlideUpdatedType, "user1", i)
	}

	assert.Eventually(t, func() bool {
		return len(hub.ConnectedUsers("proj-1")) == 0
	}, time.Second, 10*time.Millisecond)
	assert.True(t, closedWithin(slow.Send, time.Second), "send channel of a dropped client must be closed")
}

func TestHub_RefusesClientOfClosedProject(t *testing.T) {
	hub := runHub(t)

	hub.CloseProject("deleted")
	late := &Client{Hub: hub, ProjectID: "deleted", UserID: "user1", Send: make(chan []byte, sendBuffer)}
	hub.Register <- late

	assert.True(t, closedWithin(late.Send, time.Second), "late client must be disconnected")
	assert.Empty(t, hub.ConnectedUsers("deleted"))
}
