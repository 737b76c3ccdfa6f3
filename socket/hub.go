package socket

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"lexivo/pkg/logger"
)

const (
	SlideCreatedType    = "SLIDE_CREATED"    // A slide was added
	SlideUpdatedType    = "SLIDE_UPDATED"    // Slide text, tone or number changed
	SlideDeletedType    = "SLIDE_DELETED"    // A slide was removed
	SlidesReorderedType = "SLIDES_REORDERED" // Slides were renumbered
	SlidesGeneratedType = "SLIDES_GENERATED" // AI replaced all slides
	ProjectUpdatedType  = "PROJECT_UPDATED"  // Project title or template changed
	PresenceUpdateType  = "PRESENCE_UPDATE"  // A user joined or left
)

type WSMessage struct {
	Type      string          `json:"type"`
	ProjectID string          `json:"project_id"`
	UserID    string          `json:"user_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// PresencePayload lists the users currently connected to a project.
type PresencePayload struct {
	Users []string `json:"users"`
}

// ProjectAuthorizer decides whether userID may join the room of projectID.
// It returns an apperr.ErrNotFound error when the project is missing or not owned.
type ProjectAuthorizer interface {
	Authorize(ctx context.Context, projectID, userID string) error
}

type Hub struct {
	Rooms      map[string]map[*Client]bool
	Broadcast  chan WSMessage
	Register   chan *Client
	Unregister chan *Client
	closeRoom  chan string
	closed     map[string]bool // deleted projects, owned by Run
	done       chan struct{}
	mu         sync.RWMutex
	auth       ProjectAuthorizer
}

func NewHub(auth ProjectAuthorizer) *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan WSMessage, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		closeRoom:  make(chan string, 16),
		closed:     make(map[string]bool),
		done:       make(chan struct{}),
		auth:       auth,
	}
}

// Run is the hub's event loop. Room membership is only changed here.
// It returns when ctx is cancelled, after disconnecting every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for projectID, clients := range h.Rooms {
				for client := range clients {
					close(client.Send)
				}
				delete(h.Rooms, projectID)
			}
			h.mu.Unlock()
			logger.Sugar.Info("Realtime hub stopped")
			return

		case client := <-h.Register:
			if h.closed[client.ProjectID] {
				// Authorized before the project was deleted.
				close(client.Send)
				continue
			}
			h.mu.Lock()
			if h.Rooms[client.ProjectID] == nil {
				h.Rooms[client.ProjectID] = make(map[*Client]bool)
			}
			h.Rooms[client.ProjectID][client] = true
			h.mu.Unlock()
			h.broadcastPresenceUpdate(client.ProjectID)

		case client := <-h.Unregister:
			if h.remove(client) {
				h.broadcastPresenceUpdate(client.ProjectID)
			}

		case projectID := <-h.closeRoom:
			h.closed[projectID] = true
			h.mu.Lock()
			for client := range h.Rooms[projectID] {
				close(client.Send)
			}
			delete(h.Rooms, projectID)
			h.mu.Unlock()
			logger.Sugar.Infof("Closed room of deleted project: %s", projectID)

		case msg := <-h.Broadcast:
			payload, err := json.Marshal(msg)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling broadcast message: %v", err)
				continue
			}

			h.mu.RLock()
			clientsToSend := make([]*Client, 0, len(h.Rooms[msg.ProjectID]))
			for client := range h.Rooms[msg.ProjectID] {
				clientsToSend = append(clientsToSend, client)
			}
			h.mu.RUnlock()

			dropped := false
			for _, client := range clientsToSend {
				select {
				case client.Send <- payload:
				default:
					// The client is lagging; drop it rather than block the hub.
					logger.Sugar.Warnf("Client %s's send buffer is full. Unregistering.", client.UserID)
					dropped = h.remove(client) || dropped
				}
			}
			if dropped {
				h.broadcastPresenceUpdate(msg.ProjectID)
			}
		}
	}
}

// remove takes client out of its room and closes its send channel.
// It reports false if the client was already gone.
func (h *Hub) remove(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.Rooms[client.ProjectID]
	if !ok || !room[client] {
		return false
	}
	delete(room, client)
	close(client.Send)
	if len(room) == 0 {
		delete(h.Rooms, client.ProjectID)
		logger.Sugar.Infof("Closed and cleaned up empty room: %s", client.ProjectID)
	}
	return true
}

// Publish queues a server event for everyone in the project's room.
// It never blocks the caller; the event is dropped if the hub is saturated.
func (h *Hub) Publish(projectID, eventType, userID string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling %s payload: %v", eventType, err)
		return
	}
	select {
	case h.Broadcast <- WSMessage{Type: eventType, ProjectID: projectID, UserID: userID, Payload: raw}:
	default:
		logger.Sugar.Warnf("Hub queue full, dropping %s for project %s", eventType, projectID)
	}
}

// CloseProject disconnects every client of a deleted project.
func (h *Hub) CloseProject(projectID string) {
	select {
	case h.closeRoom <- projectID:
	case <-h.done:
	}
}

// ConnectedUsers returns the distinct user ids connected to a project, sorted.
func (h *Hub) ConnectedUsers(projectID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.usersLocked(projectID)
}

func (h *Hub) usersLocked(projectID string) []string {
	seen := make(map[string]bool)
	users := []string{}
	for client := range h.Rooms[projectID] {
		if !seen[client.UserID] {
			seen[client.UserID] = true
			users = append(users, client.UserID)
		}
	}
	sort.Strings(users)
	return users
}

func (h *Hub) broadcastPresenceUpdate(projectID string) {
	h.mu.RLock()
	users := h.usersLocked(projectID)
	clientsToSend := make([]*Client, 0, len(h.Rooms[projectID]))
	for client := range h.Rooms[projectID] {
		clientsToSend = append(clientsToSend, client)
	}
	h.mu.RUnlock()

	if len(clientsToSend) == 0 {
		return
	}

	payload, err := json.Marshal(PresencePayload{Users: users})
	if err != nil {
		logger.Sugar.Errorf("Error marshalling presence broadcast: %v", err)
		return
	}
	broadcastPayload, _ := json.Marshal(WSMessage{Type: PresenceUpdateType, ProjectID: projectID, Payload: payload})

	for _, client := range clientsToSend {
		select {
		case client.Send <- broadcastPayload:
		default:
			// The pumps will notice an unresponsive client on their own.
			logger.Sugar.Warnf("Client %s's send buffer was full during presence update.", client.UserID)
		}
	}
}
