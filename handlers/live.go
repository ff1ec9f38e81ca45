package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/pollcast/pollcast/fanout"
	"github.com/pollcast/pollcast/store"
)

// A connection may send this many undecodable frames before the server
// gives up on it.
const maxDecodeErrors = 3

// LiveHandler serves the push channel. Each connection runs one
// goroutine that reads join/leave frames and registers the connection
// with the fanout hub; vote broadcasts arrive from the admission
// pipeline through the hub.
type LiveHandler struct {
	store *store.Store
	hub   *fanout.Hub
}

func NewLiveHandler(st *store.Store, hub *fanout.Hub) *LiveHandler {
	return &LiveHandler{store: st, hub: hub}
}

// Socket returns the websocket endpoint for GET /live.
func (h *LiveHandler) Socket() http.Handler {
	return websocket.Handler(h.serve)
}

func (h *LiveHandler) serve(ws *websocket.Conn) {
	defer ws.Close()

	conn := fanout.NewConn(ws)
	defer h.hub.Disconnect(conn)

	ctx := ws.Request().Context()
	decoder := json.NewDecoder(ws)
	decodeErrors := 0

	for {
		var frame fanout.Frame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			_ = conn.Send(fanout.Frame{Type: fanout.FrameError, Message: "invalid frame"})
			if decodeErrors >= maxDecodeErrors {
				return
			}
			continue
		}
		decodeErrors = 0

		switch frame.Type {
		case fanout.FrameJoin:
			if _, err := uuid.Parse(frame.PollID); err != nil {
				_ = conn.Send(fanout.Frame{Type: fanout.FrameError, Message: "invalid poll id"})
				continue
			}

			tally, err := h.store.GetTally(ctx, frame.PollID)
			if err != nil {
				slog.Error("failed to query tally for join", "error", err, "poll_id", frame.PollID)
				_ = conn.Send(fanout.Frame{Type: fanout.FrameError, Message: "poll unavailable"})
				continue
			}
			if len(tally.Options) == 0 {
				_ = conn.Send(fanout.Frame{Type: fanout.FrameError, Message: "poll not found"})
				continue
			}

			h.hub.Subscribe(conn, frame.PollID)

			// Immediate snapshot so a reconnecting viewer resyncs
			// without a separate fetch
			_ = conn.Send(fanout.Frame{
				Type:    fanout.FrameUpdate,
				PollID:  frame.PollID,
				Options: tally.Options,
			})

		case fanout.FrameLeave:
			h.hub.Unsubscribe(conn, frame.PollID)

		default:
			_ = conn.Send(fanout.Frame{Type: fanout.FrameError, Message: "unsupported frame type"})
		}
	}
}
