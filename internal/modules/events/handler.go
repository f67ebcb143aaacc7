package events

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tourbook/internal/pkg/jwt"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,

	// Browsers cannot set headers on the upgrade request, so origin
	// checking is the only gate here. Tightened per deployment.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades authenticated clients onto the status event stream.
// The stream is one-way: the server pushes booking lifecycle events and
// the client only sends keep-alive pings.
type WSHandler struct {
	hub        *Hub
	jwtService *jwt.Service
	logger     *zap.Logger
}

func NewWSHandler(hub *Hub, jwtService *jwt.Service, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{hub: hub, jwtService: jwtService, logger: logger}
}

func (h *WSHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/events/ws", h.HandleWebSocket)
}

// HandleWebSocket authenticates via the token query parameter because the
// browser WebSocket API cannot attach an Authorization header.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required. Use ?token=YOUR_JWT_TOKEN"})
		return
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	userID := claims.UserID
	h.hub.Register(userID, conn)
	h.logger.Info("user connected to event stream", zap.Int64("user_id", userID))

	defer func() {
		h.hub.Unregister(userID)
		h.logger.Info("user disconnected from event stream", zap.Int64("user_id", userID))
	}()

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	go h.pingLoop(conn)

	h.readLoop(conn, userID)
}

func (h *WSHandler) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			return
		}
	}
}

func (h *WSHandler) readLoop(conn *websocket.Conn, userID int64) {
	for {
		_, rawMsg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read error",
					zap.Int64("user_id", userID), zap.Error(err))
			}
			return
		}

		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(rawMsg, &msg); err != nil {
			continue
		}

		if msg.Type == "ping" {
			_ = conn.WriteJSON(gin.H{"type": "pong"})
		}
	}
}
