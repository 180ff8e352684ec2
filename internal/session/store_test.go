package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestCreateAndResolve(t *testing.T) {
	store := newTestStore(t)

	created, err := store.Create("alice", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, created.Token)
	assert.Equal(t, "alice", created.Username)

	resolved, err := store.Resolve(created.Token)
	require.NoError(t, err)
	assert.Equal(t, created.Token, resolved.Token)
	assert.Equal(t, "alice", resolved.Username)
}

func TestResolve_UnknownToken(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Resolve("no-such-token")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Resolve("")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_ExpiredToken(t *testing.T) {
	store := newTestStore(t)

	created, err := store.Create("alice", time.Millisecond)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	_, err = store.Resolve(created.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)

	created, err := store.Create("alice", time.Hour)
	require.NoError(t, err)

	require.NoError(t, store.Delete(created.Token))

	_, err = store.Resolve(created.Token)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is fine
	require.NoError(t, store.Delete(created.Token))
	require.NoError(t, store.Delete(""))
}

func TestTokensAreUnique(t *testing.T) {
	store := newTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s, err := store.Create("alice", time.Hour)
		require.NoError(t, err)
		require.False(t, seen[s.Token], "duplicate token issued")
		seen[s.Token] = true
	}
}

func TestOpen_OnDisk(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	require.NoError(t, err)

	created, err := store.Create("alice", time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening keeps the session alive
	store, err = Open(dir)
	require.NoError(t, err)
	defer store.Close()

	resolved, err := store.Resolve(created.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", resolved.Username)
}
