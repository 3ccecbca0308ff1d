package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"quayside/internal/logging"
	"quayside/models"
)

const (
	statsPushInterval = 2 * time.Second
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The dashboard is same-origin; CORS policy is enforced on the
		// REST routes. TODO: check Origin against AllowedOrigins here too.
		return true
	},
}

// StatsFrame is one WebSocket push: a metrics snapshot per running
// container, taken at the same instant.
type StatsFrame struct {
	Timestamp string                          `json:"timestamp"`
	Stats     []models.ContainerStatsSnapshot `json:"stats"`
}

// streamStats handles GET /api/v1/ws/stats. It upgrades the connection
// and pushes a StatsFrame every push interval until the peer goes away.
func (s *Server) streamStats(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	// The request context is cancelled as soon as this handler returns,
	// hijacked connection or not, so the stream anchors its own context.
	// The read pump cancels it when the peer goes away.
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		defer cancel()
		ws.SetReadDeadline(time.Now().Add(pongWait))
		ws.SetPongHandler(func(string) error {
			ws.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go s.pushStats(ctx, ws, cancel)

	return nil
}

// pushStats runs the write side of one stats stream.
func (s *Server) pushStats(ctx context.Context, ws *websocket.Conn, cancel context.CancelFunc) {
	log := logging.WithComponent("websocket")

	pusher := time.NewTicker(s.statsInterval)
	pinger := time.NewTicker(pingPeriod)
	defer func() {
		pusher.Stop()
		pinger.Stop()
		cancel()
		ws.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case <-pinger.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-pusher.C:
			frame, err := s.collectStats(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("stats collection failed, skipping push")
				continue
			}

			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteJSON(frame); err != nil {
				return
			}
		}
	}
}

// collectStats samples every running container once.
func (s *Server) collectStats(ctx context.Context) (*StatsFrame, error) {
	containers, err := s.ops.List(ctx)
	if err != nil {
		return nil, err
	}

	frame := &StatsFrame{
		Timestamp: time.Now().Format(time.RFC3339),
		Stats:     make([]models.ContainerStatsSnapshot, 0, len(containers)),
	}

	for _, c := range containers {
		if c.State != "running" {
			continue
		}
		snap, err := s.ops.ContainerStats(ctx, c.ID)
		if err != nil {
			// Container may have stopped between list and stats.
			continue
		}
		frame.Stats = append(frame.Stats, *snap)
	}

	return frame, nil
}
