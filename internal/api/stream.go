package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/MrWong99/gambit/internal/dialogue"
	"github.com/MrWong99/gambit/internal/message"
	"github.com/MrWong99/gambit/internal/observe"
)

// Frame types sent on the transcript stream.
const (
	frameSnapshot = "snapshot"
	frameMessage  = "message"
)

// streamFrame is one JSON frame on the transcript stream. The first frame is
// a snapshot carrying the whole transcript; each later frame carries the
// appended message and the state after the append.
type streamFrame struct {
	Type      string            `json:"type"`
	SessionID string            `json:"session_id"`
	State     dialogue.State    `json:"state"`
	Messages  []message.Message `json:"messages,omitempty"`
	Message   *message.Message  `json:"message,omitempty"`
}

func (s *Server) streamTranscript(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.originPatterns(),
	})
	if err != nil {
		observe.Logger(r.Context()).Warn("transcript stream upgrade failed", "err", err)
		return
	}
	defer ws.CloseNow()

	// Clients only listen; CloseRead handles control frames and cancels ctx
	// when the peer goes away.
	ctx := ws.CloseRead(r.Context())

	s.metrics.StreamSubscribers.Add(ctx, 1)
	defer s.metrics.StreamSubscribers.Add(context.WithoutCancel(ctx), -1)

	sess := s.sessions.Session()
	events, cancel := sess.Subscribe()
	defer cancel()

	// Subscribe before taking the snapshot so nothing is missed; events the
	// snapshot already holds are skipped by sequence number.
	snapshot := sess.Transcript()
	var lastSeq uint64
	if n := len(snapshot); n > 0 {
		lastSeq = snapshot[n-1].Seq
	}
	err = wsjson.Write(ctx, ws, streamFrame{
		Type:      frameSnapshot,
		SessionID: sess.ID(),
		State:     sess.State(),
		Messages:  snapshot,
	})
	if err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				ws.Close(websocket.StatusNormalClosure, "session closed")
				return
			}
			if ev.Message.Seq <= lastSeq {
				continue
			}
			lastSeq = ev.Message.Seq
			err := wsjson.Write(ctx, ws, streamFrame{
				Type:      frameMessage,
				SessionID: sess.ID(),
				State:     ev.State,
				Message:   &ev.Message,
			})
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					observe.Logger(r.Context()).Debug("transcript stream write failed", "err", err)
				}
				return
			}
		}
	}
}
