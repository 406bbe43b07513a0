package chat

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/business-nexus/backend/internal/config"
)

// Handler upgrades HTTP requests to chat channels and runs their sessions.
// It owns the presence registry's lifetime together with the relay that
// shares it.
type Handler struct {
	logger   *slog.Logger
	verifier TokenVerifier
	registry *Registry
	relay    *Relay
	cfg      config.ChatConfig
	upgrader websocket.Upgrader
}

// NewHandler builds the websocket endpoint handler.
func NewHandler(logger *slog.Logger, verifier TokenVerifier, registry *Registry, relay *Relay, cfg config.ChatConfig) *Handler {
	return &Handler{
		logger:   logger,
		verifier: verifier,
		registry: registry,
		relay:    relay,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Credentials travel in the first frame, not in cookies, so
			// cross-origin upgrades carry no ambient authority.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Serve is the gin handler mounted at the websocket path. It blocks for the
// lifetime of the connection.
func (h *Handler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", c.Request.RemoteAddr, "error", err)
		return
	}

	session := newSession(conn, h.verifier, h.registry, h.relay, h.logger, h.cfg.SendBuffer)
	go session.writePump()
	session.readLoop(c.Request.Context(), h.cfg.ReadLimit)
}
