package board

import (
	"errors"
	"fmt"
)

// DefaultSessionID is the reserved session every connection without an
// explicit session lands in. It is created at startup and can never be
// deleted.
const DefaultSessionID = "default"

var (
	// ErrDefaultSession is returned when a caller tries to delete the
	// reserved default session.
	ErrDefaultSession = errors.New("the default session cannot be deleted")
	// ErrSessionNotFound is returned when a session id is unknown.
	ErrSessionNotFound = errors.New("session not found")
)

// SessionInfo is one row of the cross-session directory listing.
type SessionInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Users int    `json:"userCount"`
}

// Registry maps session ids to their aggregates. Sessions are created
// lazily on first reference and persist at zero connections; only an
// explicit delete removes one. Like Session, the registry assumes
// single-threaded access from the relay.
type Registry struct {
	sessions map[string]*Session
	order    []string
}

// NewRegistry creates a registry holding the default session with the
// given title.
func NewRegistry(defaultTitle string) *Registry {
	r := &Registry{sessions: make(map[string]*Session)}
	r.add(NewSession(DefaultSessionID, defaultTitle))
	return r
}

func (r *Registry) add(s *Session) {
	r.sessions[s.ID] = s
	r.order = append(r.order, s.ID)
}

// Normalize maps the unset query values a browser sends to the default
// session id.
func Normalize(sessionID string) string {
	switch sessionID {
	case "", "null", "undefined":
		return DefaultSessionID
	}
	return sessionID
}

// Get returns an existing session.
func (r *Registry) Get(id string) (*Session, bool) {
	s, ok := r.sessions[id]
	return s, ok
}

// GetOrCreate returns the session for id, lazily creating it with a title
// derived from the id.
func (r *Registry) GetOrCreate(id string) *Session {
	if s, ok := r.sessions[id]; ok {
		return s
	}
	s := NewSession(id, fmt.Sprintf("Session %s", id))
	r.add(s)
	return s
}

// Delete removes a non-default session. Deleting the default session or an
// unknown id is rejected.
func (r *Registry) Delete(id string) error {
	if id == DefaultSessionID {
		return ErrDefaultSession
	}
	if _, ok := r.sessions[id]; !ok {
		return fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	delete(r.sessions, id)
	for i, sid := range r.order {
		if sid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Directory returns the global session listing in creation order.
func (r *Registry) Directory() []SessionInfo {
	infos := make([]SessionInfo, 0, len(r.order))
	for _, id := range r.order {
		s := r.sessions[id]
		infos = append(infos, SessionInfo{ID: s.ID, Title: s.Title, Users: s.ConnectedUsers})
	}
	return infos
}
