// internal/socket/handler.go
package socket

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Marga-Ghale/ora-casework/internal/api/middleware"
)

// Handler upgrades authenticated requests to WebSocket connections.
type Handler struct {
	Hub       *Hub
	JWTSecret string
	upgrader  websocket.Upgrader
}

// NewHandler creates a WebSocket handler. An empty origin list accepts any
// origin.
func NewHandler(hub *Hub, jwtSecret string, allowedOrigins []string) *Handler {
	return &Handler{
		Hub:       hub,
		JWTSecret: jwtSecret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowedOrigins) == 0 || origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// HandleWebSocket authenticates with the token query parameter, since
// browsers cannot set headers on WebSocket requests, or a bearer header.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		tokenString, _ = middleware.BearerToken(c)
	}
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
		return
	}

	memberID, err := middleware.ParseToken(h.JWTSecret, tokenString)
	if err != nil {
		h.Hub.logger.Debug().Err(err).Msg("websocket token rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Hub.logger.Warn().Err(err).Str("member_id", memberID).Msg("websocket upgrade failed")
		return
	}

	client := NewClient(h.Hub, memberID, conn)
	if !h.Hub.enter(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
