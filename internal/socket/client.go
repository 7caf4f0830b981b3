// internal/socket/client.go
package socket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WebSocket connection constants
const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer (4KB)
	maxMessageSize int64 = 4096
)

// ClientMessage represents an incoming frame from a client.
type ClientMessage struct {
	Action string `json:"action"`
	Room   string `json:"room,omitempty"`
}

// NewClient creates a client for an authenticated member.
func NewClient(hub *Hub, memberID string, conn *websocket.Conn) *Client {
	return &Client{
		ID:       uuid.New().String(),
		MemberID: memberID,
		Conn:     conn,
		Hub:      hub,
		Send:     make(chan []byte, 256),
		Rooms:    make(map[string]bool),
	}
}

// ReadPump pumps frames from the WebSocket connection to the hub.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.leave(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn().Err(err).Str("member_id", c.MemberID).Msg("websocket read error")
			}
			break
		}
		c.handleMessage(message)
	}
}

// WritePump pumps frames from the hub to the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Coalesce queued frames into the current message.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes one frame from the client.
func (c *Client) handleMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.sendError("malformed frame")
		return
	}

	switch msg.Action {
	case "join":
		if msg.Room == "" {
			c.sendError("room required")
			return
		}
		if err := c.Hub.JoinRoom(c, msg.Room); err != nil {
			c.sendError(err.Error())
			return
		}
		c.sendAck("joined", msg.Room)

	case "leave":
		if msg.Room != "" {
			c.Hub.LeaveRoom(c, msg.Room)
			c.sendAck("left", msg.Room)
		}

	case "typing":
		c.mu.Lock()
		joined := c.Rooms[msg.Room]
		c.mu.Unlock()
		if joined {
			c.Hub.SendToRoom(msg.Room, Message{
				Type:    MessageUserTyping,
				Payload: map[string]interface{}{"memberId": c.MemberID, "room": msg.Room},
			}, c.MemberID)
		}

	case "ping":
		// An application ping doubles as a presence heartbeat.
		c.Hub.notifyPresence(c.MemberID, true)
		c.send(Message{Type: MessagePong, Payload: map[string]interface{}{"time": time.Now().Unix()}})

	case "pong":
		c.Hub.notifyPresence(c.MemberID, true)

	default:
		c.sendError("unknown action " + msg.Action)
	}
}

func (c *Client) sendAck(action, room string) {
	c.send(Message{Type: MessageAck, Payload: map[string]interface{}{"action": action, "room": room}})
}

func (c *Client) sendError(reason string) {
	c.send(Message{Type: MessageError, Payload: map[string]interface{}{"error": reason}})
}

// send queues a frame for this client only. It is safe to call after the
// hub has closed the client.
func (c *Client) send(msg Message) bool {
	msg.Timestamp = time.Now()
	data, err := json.Marshal(msg)
	if err != nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		c.Hub.logger.Debug().Str("member_id", c.MemberID).Msg("client buffer full, frame dropped")
		return false
	}
}
