package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/blackicons2020/skillskonnect-sub001/internal/config"
	"github.com/blackicons2020/skillskonnect-sub001/internal/hub"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/middleware"
)

// WSHandler upgrades authenticated requests to notification sockets.
type WSHandler struct {
	hub            *hub.Hub
	wsCfg          config.WebSocketConfig
	authMiddleware *middleware.AuthMiddleware
	upgrader       websocket.Upgrader
}

func NewWSHandler(h *hub.Hub, wsCfg config.WebSocketConfig, authMiddleware *middleware.AuthMiddleware, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		hub:            h,
		wsCfg:          wsCfg,
		authMiddleware: authMiddleware,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// RegisterRoutes mounts GET /api/ws, authenticated with ?token=.
func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/ws", h.authMiddleware.RequireAuthQuery(), h.HandleWebSocket)
}

func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	l := log.Ctx(c.Request.Context())
	userID := middleware.GetUserID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(userID, h.hub, conn, h.wsCfg)
	if !h.hub.Register(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server shutting down"))
		conn.Close()
		return
	}

	l.Debug().Str(log.FieldUserID, userID).Msg("websocket connected")

	go client.WritePump()
	go client.ReadPump()
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

