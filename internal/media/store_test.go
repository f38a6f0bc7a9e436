package media

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Rice Field A", "rice-field-a"},
		{"My Farm #1", "my-farm-1"},
		{"../etc/passwd", "etc-passwd"},
		{"  trailing  ", "trailing"},
		{"UPPER_case-9", "upper_case-9"},
		{"", "area"},
		{"///", "area"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeName(tt.in))
		})
	}
}

func TestStore_SaveWithDataURI(t *testing.T) {
	store := NewStore(t.TempDir())

	content := []byte("fake png bytes")
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(content)

	relPath, err := store.Save("Rice Field A", payload, "image/png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(relPath, "rice-field-a/"))
	assert.True(t, strings.HasSuffix(relPath, ".png"))
	assert.False(t, filepath.IsAbs(relPath))

	written, err := os.ReadFile(filepath.Join(store.root, filepath.FromSlash(relPath)))
	require.NoError(t, err)
	assert.Equal(t, content, written)
}

func TestStore_SaveExtensionFallback(t *testing.T) {
	store := NewStore(t.TempDir())
	payload := base64.StdEncoding.EncodeToString([]byte("bytes"))

	relPath, err := store.Save("plot", payload, "application/octet-stream")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(relPath, ".jpg"))

	relPath, err = store.Save("plot", payload, "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(relPath, ".jpg"))
}

func TestStore_SaveInvalidBase64(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Save("plot", "!!! not base64 !!!", "image/png")
	assert.Error(t, err)
}

func TestStore_UniqueFilenames(t *testing.T) {
	store := NewStore(t.TempDir())
	payload := base64.StdEncoding.EncodeToString([]byte("bytes"))

	first, err := store.Save("plot", payload, "image/png")
	require.NoError(t, err)
	second, err := store.Save("plot", payload, "image/png")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestStore_Remove(t *testing.T) {
	store := NewStore(t.TempDir())
	payload := base64.StdEncoding.EncodeToString([]byte("bytes"))

	relPath, err := store.Save("plot", payload, "image/png")
	require.NoError(t, err)

	require.NoError(t, store.Remove(relPath))
	_, err = os.Stat(filepath.Join(store.root, filepath.FromSlash(relPath)))
	assert.True(t, os.IsNotExist(err))

	// Removing twice is fine.
	assert.NoError(t, store.Remove(relPath))

	// Escapes are rejected.
	assert.ErrorIs(t, store.Remove("../outside.png"), ErrUnsafePath)
	assert.ErrorIs(t, store.Remove("/etc/passwd"), ErrUnsafePath)
}
