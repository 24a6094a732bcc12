package allowlist

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "allowlist.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, dbPath
}

func member(id int64, name string) Member {
	return Member{UserID: id, Name: name, AddedAt: time.Now().UTC(), AddedBy: 1}
}

func TestMissingDatabaseIsEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	admins, err := store.ListAdmins()
	require.NoError(t, err)
	assert.Empty(t, admins)

	users, err := store.ListUsers()
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestAddRemoveRoundTrip(t *testing.T) {
	store, dbPath := newTestStore(t)

	require.NoError(t, store.AddAdmin(member(555, "alice")))
	require.NoError(t, store.AddUser(member(777, "bob")))
	require.NoError(t, store.AddUser(member(888, "carol")))
	require.NoError(t, store.RemoveUser(888))

	// A fresh store over the same file must see exactly the final sets
	store.Close()
	reopened, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	admins, err := reopened.ListAdmins()
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, int64(555), admins[0].UserID)
	assert.Equal(t, "alice", admins[0].Name)

	users, err := reopened.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int64(777), users[0].UserID)
}

func TestAddIsUpsert(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.AddUser(member(777, "bob")))
	require.NoError(t, store.AddUser(member(777, "robert")))

	users, err := store.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "robert", users[0].Name)
}

func TestIsAuthorizedUser(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.AddAdmin(member(555, "alice")))
	require.NoError(t, store.AddUser(member(777, "bob")))

	for _, id := range []int64{555, 777} {
		ok, err := store.IsAuthorizedUser(id)
		require.NoError(t, err)
		assert.True(t, ok, "id %d should be authorized", id)
	}

	ok, err := store.IsAuthorizedUser(999)
	require.NoError(t, err)
	assert.False(t, ok)

	// Admins are not members of the user set itself
	ok, err = store.IsUser(555)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemovalRevokesAuthorization(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.AddUser(member(777, "bob")))
	ok, err := store.IsAuthorizedUser(777)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.RemoveUser(777))
	ok, err = store.IsAuthorizedUser(777)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemoveMissingIsNoError(t *testing.T) {
	store, _ := newTestStore(t)
	assert.NoError(t, store.RemoveAdmin(123))
	assert.NoError(t, store.RemoveUser(123))
}
