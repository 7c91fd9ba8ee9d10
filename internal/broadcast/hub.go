package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"fieldcheck/internal/platform/metrics"
	"fieldcheck/pkg/domain"
)

// Hub is the in-process fan-out relay. It owns the registry of live sessions
// and delivers each published event to every one of them, at most once, in
// publish order per session. Delivery to a session whose buffer is full or
// whose transport has closed is skipped silently; disconnected clients
// reconcile by re-fetching the submission list on reconnect.
type Hub struct {
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu       sync.RWMutex
	sessions map[domain.ChannelID]*Session
}

func NewHub(logger *slog.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		logger:   logger,
		metrics:  m,
		sessions: make(map[domain.ChannelID]*Session),
	}
}

// Subscribe registers a session so it receives subsequent events.
func (h *Hub) Subscribe(s *Session) {
	h.mu.Lock()
	h.sessions[s.ID()] = s
	n := len(h.sessions)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.ConnectedChannels.Set(float64(n))
	}
	h.logger.Info("channel subscribed", "channel_id", s.ID(), "connected", n)
}

// Unsubscribe removes a session. Idempotent and safe to call from disconnect
// callbacks; a second call for the same id is a no-op.
func (h *Hub) Unsubscribe(id domain.ChannelID) {
	h.mu.Lock()
	_, present := h.sessions[id]
	delete(h.sessions, id)
	n := len(h.sessions)
	h.mu.Unlock()

	if !present {
		return
	}
	if h.metrics != nil {
		h.metrics.ConnectedChannels.Set(float64(n))
	}
	h.logger.Info("channel unsubscribed", "channel_id", id, "connected", n)
}

// Publish marshals the event once and fans it out to every live session.
// Fire-and-forget: the returned error covers marshaling only, never delivery.
func (h *Hub) Publish(_ context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	h.fanOut(data, ev.Type)
	return nil
}

// PublishRaw relays an already-encoded frame verbatim to every live session.
// The frame must have passed Decode so its type is known for metrics.
func (h *Hub) PublishRaw(data []byte, eventType EventType) {
	h.fanOut(data, eventType)
}

func (h *Hub) fanOut(data []byte, eventType EventType) {
	h.mu.RLock()
	// Snapshot so a session disconnecting mid-broadcast cannot corrupt the
	// iteration.
	targets := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	dropped := 0
	for _, s := range targets {
		if !s.TrySend(data) {
			dropped++
		}
	}

	if h.metrics != nil {
		h.metrics.EventsPublished.WithLabelValues(string(eventType)).Inc()
		if dropped > 0 {
			h.metrics.EventsDropped.Add(float64(dropped))
		}
	}
	h.logger.Debug("event broadcast",
		"type", eventType,
		"channels", len(targets),
		"dropped", dropped,
	)
}

// Shutdown closes every live session and empties the registry. http.Server's
// Shutdown ignores hijacked connections, so graceful shutdown calls this to
// actually disconnect channels; clients reconnect on their own once an
// instance is back.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[domain.ChannelID]*Session)
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	if h.metrics != nil {
		h.metrics.ConnectedChannels.Set(0)
	}
	h.logger.Info("closed all channels", "count", len(sessions))
}

// ConnectedCount returns the number of live sessions.
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
