package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	t.Run("Save And Read", func(t *testing.T) {
		path, err := store.SaveFile("transcript-abc.json", []byte(`{"text":"hello"}`))
		require.NoError(t, err)

		data, err := store.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, `{"text":"hello"}`, string(data))
	})

	t.Run("Read Missing", func(t *testing.T) {
		_, err := store.ReadFile("/nowhere/at/all.json")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("FileExists", func(t *testing.T) {
		path, err := store.SaveFile("audio-xyz.mp3", []byte{1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, path, store.FileExists("audio-xyz.mp3"))
		assert.Empty(t, store.FileExists("never-saved.bin"))
	})

	t.Run("Delete Is Idempotent", func(t *testing.T) {
		path, err := store.SaveFile("tmp.bin", []byte("x"))
		require.NoError(t, err)
		require.NoError(t, store.DeleteFile(path))
		require.NoError(t, store.DeleteFile(path))
		assert.Empty(t, store.FileExists("tmp.bin"))
	})

	t.Run("Save Strips Directories", func(t *testing.T) {
		path, err := store.SaveFile("../escape.txt", []byte("x"))
		require.NoError(t, err)
		assert.Equal(t, path, store.FileExists("escape.txt"))
	})
}
