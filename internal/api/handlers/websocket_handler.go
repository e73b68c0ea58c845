// server/internal/api/handlers/websocket_handler.go
package handlers

import (
	"net/http"
	"time"

	"coffee-os-api-server/internal/api/middleware"
	"coffee-os-api-server/internal/apperror"
	"coffee-os-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Maximum time to wait for the next message (or ping) from the client.
const pongWait = 60 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	Hub      *socket.Hub
	Verifier middleware.TokenVerifier
}

// ServeWs authenticates the ?token= (or bearer header) and subscribes the
// connection to change events.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		tokenString, _ = middleware.BearerToken(c.GetHeader("Authorization"))
	}
	if tokenString == "" {
		_ = c.Error(apperror.ErrNoToken)
		return
	}

	claims, err := h.Verifier.Verify(c.Request.Context(), tokenString)
	if err != nil {
		_ = c.Error(err)
		return
	}
	userID := claims.UserID

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.Hub.Register(userID, conn)
	defer func() {
		h.Hub.Unregister(userID, conn)
		conn.Close()
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	// gorilla answers pings itself; each ping extends the deadline.
	conn.SetPingHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(time.Second))
	})

	// Read loop. Clients are not expected to send anything useful.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Debug("websocket closed", zap.String("user_id", userID), zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}
