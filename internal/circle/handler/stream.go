package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	circleModel "github.com/festy23/kurukatsu/internal/circle/model"
	"github.com/festy23/kurukatsu/internal/events"
	memberModel "github.com/festy23/kurukatsu/internal/member/model"
	"github.com/festy23/kurukatsu/internal/middleware"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
)

// Stream message types.
const (
	MessageSnapshot = "snapshot"
	MessageCount    = "count"
)

// StreamMessage is one frame of the count stream.
type StreamMessage struct {
	Type   string              `json:"type"`
	Counts *circleModel.Counts `json:"counts,omitempty"`
	Event  *events.Event       `json:"event,omitempty"`
}

type websocketUpgrader interface {
	Upgrade(w http.ResponseWriter, r *http.Request, responseHeader http.Header) (*websocket.Conn, error)
}

func newUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if len(allowed) == 0 || origin == "" {
				return true
			}
			if _, ok := allowed[origin]; ok {
				return true
			}
			u, err := url.Parse(origin)
			return err == nil && u.Host == r.Host
		},
	}
}

// StreamCounts handles GET /circles/:circle_id/counts/stream.
// The first frame is a snapshot; later frames are count events. Events that
// do not fit the buffer are dropped, so clients resync by reconnecting.
func (h *Handler) StreamCounts(c *gin.Context) {
	circleID := c.Param("circle_id")
	actorID := middleware.ActorID(c)

	watch, err := h.service.Watch(c.Request.Context(), circleID, actorID)
	if err != nil {
		if errors.Is(err, memberModel.ErrPermissionDenied) {
			errorResponse(c, "FORBIDDEN", "only circle members can watch counts", http.StatusForbidden)
			return
		}
		h.logger.Errorw("error opening count stream", "circle_id", circleID, "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}
	defer watch.Cancel()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Debugw("StreamCounts upgrade failed", "circle_id", circleID, "error", err)
		return
	}
	defer conn.Close()

	h.logger.Infow("StreamCounts connected", "circle_id", circleID, "user_id", actorID)

	// the read loop only exists to notice the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(streamPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(msg StreamMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		return conn.WriteJSON(msg)
	}

	if err := write(StreamMessage{Type: MessageSnapshot, Counts: watch.Snapshot}); err != nil {
		return
	}

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			h.logger.Infow("StreamCounts disconnected", "circle_id", circleID, "user_id", actorID)
			return
		case event, ok := <-watch.Events:
			if !ok {
				return
			}
			if !watch.Visible(event.Kind) {
				continue
			}
			if err := write(StreamMessage{Type: MessageCount, Event: &event}); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
