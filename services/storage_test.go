package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func TestLocalFileStoreRoundtrip(t *testing.T) {
	store, err := NewLocalFileStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	path, err := store.Save("photo.png", pngBytes)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "uploads/cloth_"))
	assert.True(t, strings.HasSuffix(path, ".png"))

	localPath, err := store.Open(path)
	require.NoError(t, err)
	content, err := os.ReadFile(localPath)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, content)

	url, err := store.ReadURL(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "/"+path, url)

	require.NoError(t, store.Remove(path))
	_, err = store.Open(path)
	assert.Error(t, err)
	// removing again is fine
	assert.NoError(t, store.Remove(path))
}

func TestLocalFileStoreRejectsNonImage(t *testing.T) {
	store, err := NewLocalFileStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	_, err = store.Save("notes.txt", []byte("plain text, not an image"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestClothFileNameExtensionFromMime(t *testing.T) {
	name, err := clothFileName("whatever", pngBytes)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))
}
