package broadcast

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"fieldcheck/pkg/domain"
)

// Publisher is what the rest of the service needs from the channel layer:
// fire-and-forget event publication. The hub satisfies it directly; the Redis
// bridge satisfies it for multi-instance deployments.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Handler exposes the channel endpoints: the WebSocket upgrade and the
// internal /broadcast fan-in that decouples HTTP request handling from the
// channel layer.
type Handler struct {
	hub       *Hub
	publisher Publisher
	logger    *slog.Logger
	upgrader  websocket.Upgrader

	pingPeriod time.Duration
}

func NewHandler(hub *Hub, publisher Publisher, logger *slog.Logger, pingPeriod time.Duration) *Handler {
	return &Handler{
		hub:       hub,
		publisher: publisher,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser tabs connect from the application origin; channel
			// frames carry no credentials and reviewers are not
			// authenticated here, so any origin is accepted.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		pingPeriod: pingPeriod,
	}
}

// Register mounts the channel routes. ws is the bare router for the upgrade
// endpoint, which must stay outside timeout middleware; api carries the
// normal JSON chain for the fan-in endpoint.
func (h *Handler) Register(ws chi.Router, api chi.Router) {
	ws.Get("/ws", h.handleWS)
	api.Post("/broadcast", h.handleBroadcast)
}

// handleWS upgrades the connection, registers the session, and acknowledges
// it with WS_CONNECTED. The ack is best-effort like every other frame.
func (h *Handler) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	session := NewSession(domain.NewChannelID(), conn, h.logger)
	h.hub.Subscribe(session)

	if ack, err := json.Marshal(Connected(session.ID())); err == nil {
		session.TrySend(ack)
	}

	go session.writePump(h.pingPeriod)

	// Block on the read side; when the peer disconnects or misses the pong
	// deadline the session is torn down and deregistered.
	pongWait := h.pingPeriod * 10 / 9
	session.readPump(pongWait)
	session.Close()
	h.hub.Unsubscribe(session.ID())
}

// handleBroadcast accepts {type, payload} and relays the frame verbatim to
// all open channels. Any process that creates or transitions a submission
// posts here, keeping the HTTP layer and the channel layer decoupled.
func (h *Handler) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	ev, err := Decode(body)
	if err != nil {
		h.logger.WarnContext(r.Context(), "rejected broadcast frame", "error", err)
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	if err := h.publisher.Publish(r.Context(), ev); err != nil {
		// Fan-out is best-effort by contract; a bridge failure is logged and
		// the caller still gets 200.
		h.logger.ErrorContext(r.Context(), "broadcast publish failed", "type", ev.Type, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true}`))
}
