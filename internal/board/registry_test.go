package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_HasDefaultSession(t *testing.T) {
	r := NewRegistry("Main Board")
	s, ok := r.Get(DefaultSessionID)
	require.True(t, ok)
	assert.Equal(t, "Main Board", s.Title)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", DefaultSessionID},
		{"null", DefaultSessionID},
		{"undefined", DefaultSessionID},
		{"team-1", "team-1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in))
	}
}

func TestGetOrCreate_Lazy(t *testing.T) {
	r := NewRegistry("Main Board")

	_, ok := r.Get("team-1")
	assert.False(t, ok)

	s := r.GetOrCreate("team-1")
	assert.Equal(t, "team-1", s.ID)
	assert.Equal(t, "Session team-1", s.Title)

	// A second call returns the same aggregate.
	assert.Same(t, s, r.GetOrCreate("team-1"))
}

func TestDelete(t *testing.T) {
	r := NewRegistry("Main Board")
	r.GetOrCreate("team-1")

	require.NoError(t, r.Delete("team-1"))
	_, ok := r.Get("team-1")
	assert.False(t, ok)

	assert.ErrorIs(t, r.Delete("team-1"), ErrSessionNotFound)
	assert.ErrorIs(t, r.Delete(DefaultSessionID), ErrDefaultSession)
}

func TestDirectory(t *testing.T) {
	r := NewRegistry("Main Board")
	r.GetOrCreate("team-1")
	team2 := r.GetOrCreate("team-2")
	team2.ConnectedUsers = 3

	dir := r.Directory()
	require.Len(t, dir, 3)
	assert.Equal(t, DefaultSessionID, dir[0].ID)
	assert.Equal(t, "team-1", dir[1].ID)
	assert.Equal(t, SessionInfo{ID: "team-2", Title: "Session team-2", Users: 3}, dir[2])

	require.NoError(t, r.Delete("team-1"))
	dir = r.Directory()
	require.Len(t, dir, 2)
	assert.Equal(t, "team-2", dir[1].ID)
}

func TestSessionsPersistAtZeroConnections(t *testing.T) {
	r := NewRegistry("Main Board")
	s := r.GetOrCreate("team-1")
	s.ConnectedUsers = 1
	s.ConnectedUsers = 0

	_, ok := r.Get("team-1")
	assert.True(t, ok, "sessions are never reaped automatically")
}
