package drafts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftstream/driftstream-cli/internal/api"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "nested", "saved_jobs.json"))
}

func TestSaveAssignsID(t *testing.T) {
	store := newTestStore(t)

	saved, err := store.Save(Draft{Name: "incomplete"})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.NotEmpty(t, saved.SavedAt)
}

func TestSaveReplacesByID(t *testing.T) {
	store := newTestStore(t)

	saved, err := store.Save(Draft{Name: "v1"})
	require.NoError(t, err)

	saved.Name = "v2"
	_, err = store.Save(*saved)
	require.NoError(t, err)

	all, err := store.List()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "v2", all[0].Name)
}

func TestListNewestFirst(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(Draft{Name: "older"})
	require.NoError(t, err)
	_, err = store.Save(Draft{Name: "newer"})
	require.NoError(t, err)

	all, err := store.List()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "newer", all[0].Name)
}

func TestListMissingFileIsEmpty(t *testing.T) {
	store := newTestStore(t)

	all, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGet(t *testing.T) {
	store := newTestStore(t)

	saved, err := store.Save(Draft{
		Name:   "with endpoints",
		Source: &api.JobEndpoint{Name: "pg", Type: "postgres"},
	})
	require.NoError(t, err)

	got, err := store.Get(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "with endpoints", got.Name)
	require.NotNil(t, got.Source)
	assert.Equal(t, "postgres", got.Source.Type)

	_, err = store.Get("no-such-id")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)

	saved, err := store.Save(Draft{Name: "doomed"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(saved.ID))
	all, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, all)

	// Unknown ids are a no-op.
	require.NoError(t, store.Delete("no-such-id"))
}

func TestCorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved_jobs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewStore(path)
	_, err := store.List()
	assert.Error(t, err)
}
