package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/AminKei/real-chees/internal/session"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const wsWriteTimeout = 5 * time.Second

// handleWS streams session snapshots: the current one on connect, then one
// per committed change. The stream ends when the session is deleted.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	// subscribe first so nothing committed after the initial read is lost
	updates, cancelSub := s.sessions.Subscribe(id)
	defer cancelSub()

	rec, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		s.writeSessionError(w, r, err)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		s.logger.Warn("ws_accept_error", zap.String("session_id", id), zap.Error(err))
		return
	}
	defer conn.CloseNow()

	// the client never sends; CloseRead handles control frames and cancels ctx on close
	ctx := conn.CloseRead(r.Context())
	s.logger.Debug("ws_open", zap.String("session_id", id))

	if err := s.writeSnapshot(ctx, conn, rec); err != nil {
		return
	}

	ping := time.NewTicker(s.pingInterval)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case next, ok := <-updates:
			if !ok {
				_ = conn.Close(websocket.StatusNormalClosure, "session closed")
				return
			}
			if next.Version <= rec.Version {
				continue
			}
			rec = &next
			if err := s.writeSnapshot(ctx, conn, rec); err != nil {
				return
			}
		case <-ping.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				s.logger.Debug("ws_ping_failed", zap.String("session_id", id), zap.Error(err))
				return
			}
		}
	}
}

func (s *Server) writeSnapshot(ctx context.Context, conn *websocket.Conn, rec *session.Record) error {
	wctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	err := wsjson.Write(wctx, conn, s.toDTO(rec))
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Debug("ws_write_failed", zap.String("session_id", rec.ID), zap.Error(err))
	}
	return err
}
