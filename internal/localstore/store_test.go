package localstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	t.Run("Success - values survive reopen", func(t *testing.T) {
		// Arrange
		path := filepath.Join(t.TempDir(), "session.json")
		store, err := NewFileStore(path)
		require.NoError(t, err)

		// Act
		require.NoError(t, store.Set("access_token", "A"))
		require.NoError(t, store.Set("user_data", `{"id":1}`))

		reopened, err := NewFileStore(path)
		require.NoError(t, err)

		// Assert
		assert.Equal(t, "A", reopened.Get("access_token"))
		assert.Equal(t, `{"id":1}`, reopened.Get("user_data"))
	})

	t.Run("Success - missing key reads as empty", func(t *testing.T) {
		store, err := NewFileStore(filepath.Join(t.TempDir(), "s.json"))
		require.NoError(t, err)
		assert.Equal(t, "", store.Get("nope"))
	})

	t.Run("Success - remove is idempotent", func(t *testing.T) {
		store, err := NewFileStore(filepath.Join(t.TempDir(), "s.json"))
		require.NoError(t, err)

		require.NoError(t, store.Set("k", "v"))
		require.NoError(t, store.Remove("k"))
		require.NoError(t, store.Remove("k"))
		assert.Equal(t, "", store.Get("k"))
	})

	t.Run("Failure - empty path rejected", func(t *testing.T) {
		_, err := NewFileStore("  ")
		assert.Error(t, err)
	})

	t.Run("Success - nested directory created on write", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "deep", "nested", "session.json")
		store, err := NewFileStore(path)
		require.NoError(t, err)
		assert.NoError(t, store.Set("k", "v"))
	})
}

func TestMemStore(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.Set("k", "v"))
	assert.Equal(t, "v", store.Get("k"))
	require.NoError(t, store.Remove("k"))
	assert.Equal(t, "", store.Get("k"))
}
