package api

import (
	"context"
	"net/http"
	"time"

	"BizPulse/internal/domain/models"
	applogger "BizPulse/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type snapshotter interface {
	Snapshot(ctx context.Context) models.Snapshot
}

// SnapshotStream pushes a freshly computed Snapshot to each websocket client
// on connect and then every interval. Clients only read.
type SnapshotStream struct {
	source   snapshotter
	interval time.Duration
	upgrader websocket.Upgrader
	logger   *applogger.Logger
}

func NewSnapshotStream(source snapshotter, interval time.Duration, logger *applogger.Logger) *SnapshotStream {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &SnapshotStream{
		source:   source,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

func (s *SnapshotStream) Serve(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Warn("websocket upgrade failed", applogger.Error(err))
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	go s.readPump(conn, cancel)

	s.logger.Debug("websocket client connected", applogger.String("remote_ip", c.RealIP()))
	s.writePump(ctx, conn)
	s.logger.Debug("websocket client disconnected", applogger.String("remote_ip", c.RealIP()))
	return nil
}

// readPump drains control frames and cancels the stream once the client goes away.
func (s *SnapshotStream) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *SnapshotStream) writePump(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	if !s.push(ctx, conn) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case <-ticker.C:
			if !s.push(ctx, conn) {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (s *SnapshotStream) push(ctx context.Context, conn *websocket.Conn) bool {
	snapshot := s.source.Snapshot(ctx)
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(snapshot); err != nil {
		s.logger.Debug("websocket write failed", applogger.Error(err))
		return false
	}
	return true
}
