package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return &Manager{Secret: []byte("test-session-secret"), TTL: time.Hour}
}

func TestIssueAndParse(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	token, err := m.Issue(time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseExpiredToken(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	token, err := m.Issue(time.Now().Add(-2 * time.Hour))
	require.NoError(t, err)

	claims, err := m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestParseGarbage(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	claims, err := m.Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestParseWrongSecret(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	token, err := m.Issue(time.Now())
	require.NoError(t, err)

	other := &Manager{Secret: []byte("different-secret"), TTL: time.Hour}
	claims, err := other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}
