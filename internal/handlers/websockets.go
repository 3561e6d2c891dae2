package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"catframe/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000 // 10s in ms
	streamWindow     = 20     // newest comments per snapshot
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Upgrader for HTTP -> WebSocket. The feed is public and read-only.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// commentFeed remembers the last snapshot sent so unchanged polls are skipped.
type commentFeed struct {
	movieID int64
	newest  int64
	count   int
	sent    bool
}

func (f *commentFeed) changed(comments []models.Comment) bool {
	var newest int64
	if len(comments) > 0 {
		newest = comments[0].ID
	}
	if f.sent && newest == f.newest && len(comments) == f.count {
		return false
	}
	f.newest, f.count, f.sent = newest, len(comments), true
	return true
}

// @Summary      Live comment feed
// @Description  WebSocket. Sends {"type":"comments","data":[...]} with the newest comments whenever they change.
// @Tags         comments
// @Param        id           path   int     true   "Movie ID"
// @Param        interval     query  string  false  "Poll interval, e.g. 2s (max 10s)"
// @Param        interval_ms  query  int     false  "Poll interval in milliseconds"
// @Router       /ws/movies/{id}/comments [get]
func (h *Handler) commentStream(c *gin.Context) {
	movieID, ok := pathID(c, "id")
	if !ok {
		return
	}
	// Reject unknown movies before upgrading so clients get a plain 404.
	if _, err := h.services.GetMovie(c.Request.Context(), movieID); err != nil {
		h.writeServiceError(c, err, "ws_movie_lookup_failed", "movie_id", movieID)
		return
	}

	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorw("ws_upgrade_failed", "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine to handle control frames and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	feed := &commentFeed{movieID: movieID}
	ctx := c.Request.Context()

	// Send the initial snapshot immediately.
	if err := h.sendComments(ctx, conn, feed); err != nil {
		h.log.Infow("ws_write_failed_initial", "err", err, "movie_id", movieID)
		return
	}

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.log.Infow("ws_ping_failed", "err", err)
				return
			}
		case <-ticker.C:
			if err := h.sendComments(ctx, conn, feed); err != nil {
				h.log.Infow("ws_write_failed", "err", err, "movie_id", movieID)
				return
			}
		}
	}
}

// Helper: parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	interval := defaultInterval

	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return interval
}

// Helper: startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.log.Debugw("ws_read_closed", "err", err)
			return
		}
	}
}

// Helper: sendComments writes the newest comments when they differ from the last snapshot.
// A movie deleted mid-stream ends the feed with an error envelope.
func (h *Handler) sendComments(ctx context.Context, conn *websocket.Conn, feed *commentFeed) error {
	comments, err := h.services.ListComments(ctx, feed.movieID, 0, streamWindow)
	if err != nil {
		h.log.Errorw("ws_list_comments_failed", "err", err, "movie_id", feed.movieID)
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteJSON(wsEnvelope{Type: "error", Error: "comments unavailable"})
		return err
	}
	if !feed.changed(comments) {
		return nil
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(wsEnvelope{Type: "comments", Data: comments})
}
