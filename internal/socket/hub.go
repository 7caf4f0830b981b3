// internal/socket/hub.go
package socket

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// MessageType defines the type of a WebSocket frame. Workspace events reuse
// the event type names of the store.
type MessageType string

const (
	MessageUserTyping MessageType = "user_typing"
	MessageError      MessageType = "error"

	MessageNotification MessageType = "notification"

	MessagePing MessageType = "ping"
	MessagePong MessageType = "pong"
	MessageAck  MessageType = "ack"
)

const roomPrefix = "workspace:"

// WorkspaceRoom returns the room clients join to follow a workspace.
func WorkspaceRoom(workspaceID string) string {
	return roomPrefix + workspaceID
}

// WorkspaceFromRoom extracts the workspace id of a room name.
func WorkspaceFromRoom(room string) (string, bool) {
	id, ok := strings.CutPrefix(room, roomPrefix)
	return id, ok && id != ""
}

// Message is one frame sent to clients.
type Message struct {
	Type        MessageType `json:"type"`
	WorkspaceID string      `json:"workspaceId,omitempty"`
	Version     uint64      `json:"version,omitempty"`
	Payload     interface{} `json:"payload,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

// Client represents a connected WebSocket client.
type Client struct {
	ID       string
	MemberID string
	Conn     *websocket.Conn
	Hub      *Hub
	Send     chan []byte
	Rooms    map[string]bool
	mu       sync.Mutex
	closed   bool
}

// PresenceFunc is told when a member connects, disconnects or pings. at is
// when the hub observed it, so callbacks applied out of order still resolve
// to the latest signal.
type PresenceFunc func(memberID string, online bool, at time.Time)

// RoomGuard decides whether a member may join a room.
type RoomGuard func(memberID, room string) error

// RoomMessage represents a frame to be sent to a room, or to every
// connection of one member when Member is set.
type RoomMessage struct {
	Room    string
	Member  string
	Message []byte
	Exclude string // member id to skip
}

// Hub maintains the set of active clients and fans frames out to rooms.
type Hub struct {
	clients       map[*Client]bool
	memberClients map[string]map[*Client]bool
	roomClients   map[string]map[*Client]bool

	register      chan *Client
	unregister    chan *Client
	roomBroadcast chan *RoomMessage
	done          chan struct{}

	presence      PresenceFunc
	guard         RoomGuard
	onClientCount func(int)
	pingInterval  time.Duration
	logger        zerolog.Logger

	mu sync.RWMutex
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithPresence registers the presence callback.
func WithPresence(fn PresenceFunc) HubOption {
	return func(h *Hub) { h.presence = fn }
}

// WithRoomGuard registers the room join check.
func WithRoomGuard(fn RoomGuard) HubOption {
	return func(h *Hub) { h.guard = fn }
}

// WithClientGauge reports the connected client count on every change.
func WithClientGauge(fn func(int)) HubOption {
	return func(h *Hub) { h.onClientCount = fn }
}

// NewHub creates a new Hub.
func NewHub(logger zerolog.Logger, opts ...HubOption) *Hub {
	h := &Hub{
		clients:       make(map[*Client]bool),
		memberClients: make(map[string]map[*Client]bool),
		roomClients:   make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		roomBroadcast: make(chan *RoomMessage, 256),
		done:          make(chan struct{}),
		pingInterval:  30 * time.Second,
		logger:        logger.With().Str("component", "socket.hub").Logger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run starts the hub's main loop and returns when ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	h.logger.Info().Msg("websocket hub started")
	defer close(h.done)

	pingTicker := time.NewTicker(h.pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case rm := <-h.roomBroadcast:
			h.broadcastToRoom(rm)

		case <-pingTicker.C:
			h.pingClients()
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	first := h.memberClients[client.MemberID] == nil
	if first {
		h.memberClients[client.MemberID] = make(map[*Client]bool)
	}
	h.memberClients[client.MemberID][client] = true

	h.logger.Debug().Str("member_id", client.MemberID).Str("client_id", client.ID).
		Int("clients", len(h.clients)).Msg("client registered")
	h.reportCount()
	if first {
		h.notifyPresence(client.MemberID, true)
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)

	if clients, ok := h.memberClients[client.MemberID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.memberClients, client.MemberID)
			// Last connection of the member went away.
			h.notifyPresence(client.MemberID, false)
		}
	}

	client.mu.Lock()
	for room := range client.Rooms {
		if clients, ok := h.roomClients[room]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.roomClients, room)
			}
		}
	}
	client.closed = true
	close(client.Send)
	client.mu.Unlock()

	h.logger.Debug().Str("member_id", client.MemberID).Str("client_id", client.ID).
		Int("clients", len(h.clients)).Msg("client disconnected")
	h.reportCount()
}

// notifyPresence runs the callback off the hub goroutine: it ends up
// publishing into roomBroadcast, which this goroutine drains.
func (h *Hub) notifyPresence(memberID string, online bool) {
	if h.presence != nil {
		go h.presence(memberID, online, time.Now())
	}
}

func (h *Hub) reportCount() {
	if h.onClientCount != nil {
		h.onClientCount(len(h.clients))
	}
}

func (h *Hub) broadcastToRoom(rm *RoomMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	targets := h.roomClients[rm.Room]
	if rm.Member != "" {
		targets = h.memberClients[rm.Member]
	}
	sent := 0
	for client := range targets {
		if rm.Exclude != "" && client.MemberID == rm.Exclude {
			continue
		}
		select {
		case client.Send <- rm.Message:
			sent++
		default:
			h.dropSlow(client)
		}
	}
	h.logger.Debug().Str("room", rm.Room).Str("member_id", rm.Member).Int("sent", sent).Msg("room broadcast")
}

func (h *Hub) pingClients() {
	data, _ := json.Marshal(Message{Type: MessagePing, Timestamp: time.Now()})

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			h.dropSlow(client)
		}
	}
}

// dropSlow schedules the removal of a client whose send buffer is full.
func (h *Hub) dropSlow(client *Client) {
	go h.leave(client)
}

// leave hands a client to the hub for removal unless the hub has stopped.
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// enter registers a client. It reports false once the hub has stopped.
func (h *Hub) enter(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	// Closing the connections ends both pumps of every client.
	for client := range h.clients {
		if client.Conn != nil {
			client.Conn.Close()
		}
		delete(h.clients, client)
	}
	h.memberClients = make(map[string]map[*Client]bool)
	h.roomClients = make(map[string]map[*Client]bool)
	h.reportCount()
}

// ============================================
// Room Management
// ============================================

// JoinRoom adds a client to a room after the guard approves it.
func (h *Hub) JoinRoom(client *Client, room string) error {
	if h.guard != nil {
		if err := h.guard(client.MemberID, room); err != nil {
			return err
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	client.mu.Lock()
	client.Rooms[room] = true
	client.mu.Unlock()

	if h.roomClients[room] == nil {
		h.roomClients[room] = make(map[*Client]bool)
	}
	h.roomClients[room][client] = true

	h.logger.Debug().Str("member_id", client.MemberID).Str("room", room).Msg("client joined room")
	return nil
}

// LeaveRoom removes a client from a room.
func (h *Hub) LeaveRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.mu.Lock()
	delete(client.Rooms, room)
	client.mu.Unlock()

	if clients, ok := h.roomClients[room]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.roomClients, room)
		}
	}
}

// ============================================
// Sending
// ============================================

// SendToRoom queues a frame for every client in room. It never blocks: when
// the queue is full the frame is dropped and false is returned.
func (h *Hub) SendToRoom(room string, msg Message, excludeMemberID string) bool {
	return h.queue(&RoomMessage{Room: room, Exclude: excludeMemberID}, msg)
}

// SendToMember queues a frame for every connection of a member. Like
// SendToRoom it never blocks.
func (h *Hub) SendToMember(memberID string, msg Message) bool {
	return h.queue(&RoomMessage{Member: memberID}, msg)
}

func (h *Hub) queue(rm *RoomMessage, msg Message) bool {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Str("type", string(msg.Type)).Msg("marshal frame")
		return false
	}
	rm.Message = data

	select {
	case h.roomBroadcast <- rm:
		return true
	default:
		h.logger.Warn().Str("room", rm.Room).Str("member_id", rm.Member).Str("type", string(msg.Type)).Msg("room queue full, frame dropped")
		return false
	}
}

// ============================================
// Queries
// ============================================

// OnlineMembers returns the ids of connected members.
func (h *Hub) OnlineMembers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := make([]string, 0, len(h.memberClients))
	for id := range h.memberClients {
		members = append(members, id)
	}
	return members
}

// IsMemberOnline reports whether a member has at least one connection.
func (h *Hub) IsMemberOnline(memberID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.memberClients[memberID]
	return ok
}

// RoomClients returns the number of clients in a room.
func (h *Hub) RoomClients(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.roomClients[room])
}

// ConnectedClients returns the total number of clients.
func (h *Hub) ConnectedClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
