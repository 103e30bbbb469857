package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreSaveDelete(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:3000")
	require.NoError(t, err)

	err = store.Save("abc.jpg", strings.NewReader("blob-bytes"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(store.baseDir, "abc.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "blob-bytes", string(data))

	assert.Equal(t, "http://localhost:3000/photos/abc.jpg", store.URL("abc.jpg"))

	require.NoError(t, store.Delete("abc.jpg"))
	_, err = os.Stat(filepath.Join(store.baseDir, "abc.jpg"))
	assert.True(t, os.IsNotExist(err))

	// Deleting a missing blob is not an error
	assert.NoError(t, store.Delete("abc.jpg"))
}

func TestLocalStoreRejectsBadKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:3000")
	require.NoError(t, err)

	assert.Error(t, store.Save("../escape.jpg", strings.NewReader("x")))
	assert.Error(t, store.Save("a/b.jpg", strings.NewReader("x")))
	assert.Error(t, store.Delete(""))
}
