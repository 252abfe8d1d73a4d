package handlers

import (
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tabeshpress/order-panel/internal/realtime"
	"github.com/tabeshpress/order-panel/internal/utils"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
)

type WSHandler struct {
	Hub       *realtime.Hub
	JWTSecret string
	Logger    *zap.Logger
}

func NewWSHandler(hub *realtime.Hub, jwtSecret string, logger *zap.Logger) *WSHandler {
	return &WSHandler{Hub: hub, JWTSecret: jwtSecret, Logger: logger}
}

// Serve upgrades the connection and pumps hub events to the client. Browsers
// cannot set headers on websocket dials, so the token rides in the cookie or
// a query parameter.
func (h *WSHandler) Serve(conn *websocket.Conn) {
	token := conn.Cookies(authCookieName)
	if token == "" {
		token = conn.Query("token")
	}

	claims, err := utils.ParseClaims(h.JWTSecret, token)
	if err != nil {
		h.Logger.Warn("websocket auth failed", zap.Error(err))
		_ = conn.Close()
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		_ = conn.Close()
		return
	}

	client := &realtime.Client{
		ID:     uuid.NewString(),
		UserID: userID,
		Role:   claims.Role,
		Conn:   realtime.NewWebSocketConn(conn),
		Send:   make(chan []byte, 64),
	}

	h.Hub.RegisterClient(client)

	done := make(chan struct{})
	go h.writePump(client, done)
	h.readPump(client)
	close(done)
}

func (h *WSHandler) readPump(client *realtime.Client) {
	conn := client.Conn.Conn
	defer func() {
		h.Hub.UnregisterClient(client)
		_ = conn.Close()
	}()

	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// Incoming frames are ignored; the feed is one-way.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WSHandler) writePump(client *realtime.Client, done <-chan struct{}) {
	conn := client.Conn.Conn
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
