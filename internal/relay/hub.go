// Package relay is the authoritative process core: it owns the session
// registry, serializes every inbound mutation through one goroutine,
// applies it to the right session, and fans the resulting events out to
// the session's room.
package relay

import (
	"context"
	"log/slog"
	"time"

	"github.com/tcollab-dev/tcollab/internal/auditlog"
	"github.com/tcollab-dev/tcollab/internal/board"
)

// conn is one attached client connection from the hub's point of view.
// Send must never block: slow consumers are dropped by their own
// transport, not by the hub.
type conn interface {
	SessionID() string
	Send(env Envelope)
}

// command is one inbound envelope from one connection.
type command struct {
	client conn
	env    Envelope
}

// Hub owns the registry and the room membership. All session state is
// mutated only inside the run loop, so the handlers need no locking and
// every client observes broadcasts in the same order.
type Hub struct {
	logger   *slog.Logger
	registry *board.Registry
	audit    *auditlog.Log // nil disables the audit trail

	rooms map[string]map[conn]bool

	register   chan conn
	unregister chan conn
	inbound    chan command
}

// NewHub creates a hub around a session registry. audit may be nil.
func NewHub(logger *slog.Logger, registry *board.Registry, audit *auditlog.Log) *Hub {
	return &Hub{
		logger:     logger,
		registry:   registry,
		audit:      audit,
		rooms:      make(map[string]map[conn]bool),
		register:   make(chan conn),
		unregister: make(chan conn),
		inbound:    make(chan command, 64),
	}
}

// Register queues a connection for joining its session's room.
func (h *Hub) Register(c conn) {
	h.register <- c
}

// Unregister queues a connection for removal.
func (h *Hub) Unregister(c conn) {
	h.unregister <- c
}

// Dispatch queues an inbound envelope for processing.
func (h *Hub) Dispatch(c conn, env Envelope) {
	h.inbound <- command{client: c, env: env}
}

// Run processes registrations and mutations until the context ends.
// It is the only goroutine that touches the registry or any session.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.join(c)
		case c := <-h.unregister:
			h.leave(c)
		case cmd := <-h.inbound:
			h.handle(cmd.client, cmd.env)
		case <-ctx.Done():
			return
		}
	}
}

// join attaches a connection to its session's room, lazily creating the
// session, and replays the current state to the newcomer.
func (h *Hub) join(c conn) {
	sessionID := c.SessionID()
	_, existed := h.registry.Get(sessionID)
	sess := h.registry.GetOrCreate(sessionID)
	sess.ConnectedUsers++

	room := h.rooms[sessionID]
	if room == nil {
		room = make(map[conn]bool)
		h.rooms[sessionID] = room
	}
	room[c] = true

	h.toClient(c, EventInitialSessionTitle, sess.Title)
	h.toClient(c, EventInitialAccounts, sess.Accounts())
	h.toClient(c, EventInitialTransactions, sess.Transactions())
	h.toClient(c, EventActiveSessionsList, h.registry.Directory())
	h.toRoom(sessionID, EventUserCountUpdate, sess.ConnectedUsers)

	if !existed {
		h.toAll(EventActiveSessionsList, h.registry.Directory())
	}

	h.logger.Info("client joined", "session", sessionID, "users", sess.ConnectedUsers)
}

// leave detaches a connection. Disconnects only touch connection counts,
// never ledger data; the session itself persists at zero members.
func (h *Hub) leave(c conn) {
	sessionID := c.SessionID()
	room := h.rooms[sessionID]
	if room == nil || !room[c] {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, sessionID)
	}

	if sess, ok := h.registry.Get(sessionID); ok {
		sess.ConnectedUsers--
		h.toRoom(sessionID, EventUserCountUpdate, sess.ConnectedUsers)
		h.logger.Info("client left", "session", sessionID, "users", sess.ConnectedUsers)
	}
}

func (h *Hub) envelope(event string, data any) (Envelope, bool) {
	env, err := NewEnvelope(event, data)
	if err != nil {
		h.logger.Error("dropping broadcast", "event", event, "error", err)
		return Envelope{}, false
	}
	return env, true
}

func (h *Hub) toClient(c conn, event string, data any) {
	if env, ok := h.envelope(event, data); ok {
		c.Send(env)
	}
}

func (h *Hub) toRoom(sessionID, event string, data any) {
	env, ok := h.envelope(event, data)
	if !ok {
		return
	}
	for c := range h.rooms[sessionID] {
		c.Send(env)
	}
}

func (h *Hub) toRoomExcept(sessionID string, except conn, event string, data any) {
	env, ok := h.envelope(event, data)
	if !ok {
		return
	}
	for c := range h.rooms[sessionID] {
		if c != except {
			c.Send(env)
		}
	}
}

func (h *Hub) toAll(event string, data any) {
	env, ok := h.envelope(event, data)
	if !ok {
		return
	}
	for _, room := range h.rooms {
		for c := range room {
			c.Send(env)
		}
	}
}

// recordAudit appends one row to the mutation trail, when enabled.
func (h *Hub) recordAudit(sessionID, event, entityID, details string) {
	if h.audit == nil {
		return
	}
	err := h.audit.Append(auditlog.Record{
		Timestamp: time.Now().UTC(),
		Session:   sessionID,
		Event:     event,
		EntityID:  entityID,
		Details:   details,
	})
	if err != nil {
		h.logger.Error("audit log append failed", "error", err)
	}
}
