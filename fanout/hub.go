package fanout

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"github.com/pollcast/pollcast/models"
)

// Frame is the push-channel wire format, both directions.
// Client to server: join / leave. Server to client: update / error.
type Frame struct {
	Type    string               `json:"type"`
	PollID  string               `json:"poll_id,omitempty"`
	Options []models.OptionCount `json:"options,omitempty"`
	Message string               `json:"message,omitempty"`
}

// Frame types
const (
	FrameJoin   = "join"
	FrameLeave  = "leave"
	FrameUpdate = "update"
	FrameError  = "error"
)

// Conn is one live push connection. Writes are serialized through a
// mutex so a broadcast and a join reply never interleave bytes on the
// wire.
type Conn struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewConn(w io.Writer) *Conn {
	return &Conn{enc: json.NewEncoder(w)}
}

// Send writes a single frame. Best-effort: callers treat an error as
// "this connection missed the update", nothing more.
func (c *Conn) Send(frame Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enc.Encode(frame)
}

// Hub tracks which connections watch which polls and broadcasts tally
// updates to them. Membership is a many-to-many relation held as two
// maps kept in sync under one lock; broadcast snapshots the subscriber
// set and writes outside the critical section.
//
// The hub holds no durable state: a disconnected client must re-join
// the polls it cares about after reconnecting.
type Hub struct {
	mu    sync.Mutex
	subs  map[string]map[*Conn]struct{} // poll id -> connections
	polls map[*Conn]map[string]struct{} // connection -> poll ids
}

func NewHub() *Hub {
	return &Hub{
		subs:  make(map[string]map[*Conn]struct{}),
		polls: make(map[*Conn]map[string]struct{}),
	}
}

// Subscribe adds the connection to the poll's broadcast group.
// Idempotent: a repeated subscribe cannot cause duplicate delivery.
func (h *Hub) Subscribe(c *Conn, pollID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[pollID] == nil {
		h.subs[pollID] = make(map[*Conn]struct{})
	}
	h.subs[pollID][c] = struct{}{}

	if h.polls[c] == nil {
		h.polls[c] = make(map[string]struct{})
	}
	h.polls[c][pollID] = struct{}{}
}

// Unsubscribe removes the connection from the poll's broadcast group.
// Safe to call when the membership does not exist.
func (h *Hub) Unsubscribe(c *Conn, pollID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c, pollID)
}

// Disconnect drops every membership the connection holds. Called when
// the push channel closes, however it closes.
func (h *Hub) Disconnect(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for pollID := range h.polls[c] {
		h.removeLocked(c, pollID)
	}
	delete(h.polls, c)
}

func (h *Hub) removeLocked(c *Conn, pollID string) {
	if group := h.subs[pollID]; group != nil {
		delete(group, c)
		if len(group) == 0 {
			delete(h.subs, pollID)
		}
	}
	if owned := h.polls[c]; owned != nil {
		delete(owned, pollID)
		if len(owned) == 0 {
			delete(h.polls, c)
		}
	}
}

// Broadcast delivers the tally to every connection currently subscribed
// to the poll, and only those. Delivery is at-most-once per connection,
// fire-and-forget: a failed write is logged and the connection simply
// misses this update.
func (h *Hub) Broadcast(pollID string, tally models.Tally) {
	h.mu.Lock()
	recipients := make([]*Conn, 0, len(h.subs[pollID]))
	for c := range h.subs[pollID] {
		recipients = append(recipients, c)
	}
	h.mu.Unlock()

	frame := Frame{
		Type:    FrameUpdate,
		PollID:  pollID,
		Options: tally.Options,
	}
	for _, c := range recipients {
		if err := c.Send(frame); err != nil {
			slog.Warn("fanout delivery failed", "poll_id", pollID, "error", err)
		}
	}
}

// SubscriberCount reports the current size of a poll's broadcast group.
func (h *Hub) SubscriberCount(pollID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[pollID])
}
