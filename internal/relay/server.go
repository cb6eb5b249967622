package relay

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/tcollab-dev/tcollab/internal/board"
)

// Server exposes the hub over HTTP: a websocket endpoint at /ws plus the
// static board UI.
type Server struct {
	hub       *Hub
	logger    *slog.Logger
	publicDir string
	upgrader  websocket.Upgrader
}

// NewServer creates a Server. publicDir may be empty to disable static
// serving.
func NewServer(logger *slog.Logger, hub *Hub, publicDir string) *Server {
	return &Server{
		hub:       hub,
		logger:    logger,
		publicDir: publicDir,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// Handler returns the HTTP routing for the relay.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebsocket)
	if s.publicDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.publicDir)))
	}
	return mux
}

// handleWebsocket upgrades the connection and attaches it to the session
// named by the query parameter. Absent or unset values land in the
// default session.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	sessionID := board.Normalize(r.URL.Query().Get("session"))

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(s.hub, ws, sessionID, s.logger)
	s.hub.Register(client)
	go client.WritePump()
	go client.ReadPump()
}
