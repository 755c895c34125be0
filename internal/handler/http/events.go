package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
)

const keepaliveInterval = 30 * time.Second

// EventSubscriber is the subscribing half of *sse.Hub.
type EventSubscriber interface {
	Subscribe(channels ...string) (chan sse.Event, func())
}

type EventsHandler interface {
	Stream(w http.ResponseWriter, r *http.Request)
}

type eventsHandlerImpl struct {
	jwtService jwt.Service
	hub        EventSubscriber
	keepalive  time.Duration
}

func NewEventsHandler(jwtService jwt.Service, hub EventSubscriber) EventsHandler {
	return &eventsHandlerImpl{jwtService: jwtService, hub: hub, keepalive: keepaliveInterval}
}

// streamChannels lists the channels a principal may follow: its own, plus
// the company duty board for roles that can see the roster.
func streamChannels(p user.Principal) []string {
	channels := []string{sse.UserChannel(p.UserID)}
	if p.Capabilities().Can(user.PermissionEmployeeViewAll) {
		channels = append(channels, sse.CompanyChannel(p.CompanyKey))
	}
	return channels
}

// Stream handles the SSE connection. The token comes from the query string
// because EventSource cannot send headers.
func (h *eventsHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	principal, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(streamChannels(principal)...)
	defer cleanup()
	slog.Debug("Event stream opened", "user_id", principal.UserID)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"user_id\":%q}\n\n", principal.UserID)
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Warn("Dropping unencodable event", "event", event.Event, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			slog.Debug("Event stream closed", "user_id", principal.UserID)
			return
		}
	}
}
