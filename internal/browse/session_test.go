package browse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerRetryLifecycle(t *testing.T) {
	mgr := NewManager(time.Minute)
	pool := NewPool("port:80", testMatches(2))

	sess := mgr.Create(100, 42, pool)
	require.NotEmpty(t, sess.ID)

	mgr.Bind(sess.ID, 555)
	assert.Equal(t, 555, sess.MessageID)

	_, err := sess.Sampler.Draw()
	require.NoError(t, err)

	// One item left, owner retry succeeds.
	item, got, err := mgr.Retry(sess.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.NotEmpty(t, item.Addr)

	// Pool exhausted, session is removed for good.
	_, _, err = mgr.Retry(sess.ID, 42)
	assert.ErrorIs(t, err, ErrExhausted)

	_, _, err = mgr.Retry(sess.ID, 42)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestManagerRetryUnauthorizedKeepsSession(t *testing.T) {
	mgr := NewManager(time.Minute)
	pool := NewPool("port:80", testMatches(3))

	sess := mgr.Create(100, 42, pool)

	_, _, err := mgr.Retry(sess.ID, 7)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// The session survives unauthorized presses.
	_, _, err = mgr.Retry(sess.ID, 42)
	assert.NoError(t, err)
}

func TestManagerUnknownSessionExpired(t *testing.T) {
	mgr := NewManager(time.Minute)

	_, _, err := mgr.Retry("missing", 42)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestManagerExpireDue(t *testing.T) {
	mgr := NewManager(time.Minute)

	now := time.Now()
	mgr.now = func() time.Time { return now }

	pool := NewPool("port:80", testMatches(5))
	stale := mgr.Create(100, 42, pool)
	fresh := mgr.Create(200, 43, pool)

	// The fresh session's deadline gets pushed by a successful retry.
	now = now.Add(45 * time.Second)

	_, _, err := mgr.Retry(fresh.ID, 43)
	require.NoError(t, err)

	now = now.Add(30 * time.Second)

	due := mgr.ExpireDue()
	require.Len(t, due, 1)
	assert.Equal(t, stale.ID, due[0].ID)

	// The expired session no longer accepts retries.
	_, _, err = mgr.Retry(stale.ID, 42)
	assert.ErrorIs(t, err, ErrExpired)

	// The fresh one still does.
	_, _, err = mgr.Retry(fresh.ID, 43)
	assert.NoError(t, err)
}
