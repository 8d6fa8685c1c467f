package upload

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("flyer", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["flyer"][0]
}

func TestStore_SaveAndRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, 1024)
	require.NoError(t, err)

	public, err := store.Save(fileHeader(t, "Poster.PNG", []byte("png-bytes")), KindFlyer)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(public, "/uploads/flyer-"))
	assert.True(t, strings.HasSuffix(public, ".png"))

	onDisk := filepath.Join(dir, strings.TrimPrefix(public, PublicPrefix))
	data, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, store.Remove(public))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))

	// removing twice is fine
	assert.NoError(t, store.Remove(public))
}

func TestStore_Rejects(t *testing.T) {
	store, err := NewStore(t.TempDir(), 4)
	require.NoError(t, err)

	_, err = store.Save(fileHeader(t, "script.sh", []byte("x")), KindFlyer)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = store.Save(fileHeader(t, "big.jpg", []byte("too many bytes")), KindProfile)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestStore_RemoveIgnoresForeignPaths(t *testing.T) {
	dir := t.TempDir()
	keep := filepath.Join(dir, "keep.txt")
	require.NoError(t, os.WriteFile(keep, []byte("x"), 0o644))
	store, err := NewStore(filepath.Join(dir, "uploads"), 0)
	require.NoError(t, err)

	assert.NoError(t, store.Remove("/etc/passwd"))
	assert.NoError(t, store.Remove("/uploads/../keep.txt"))
	_, err = os.Stat(keep)
	assert.NoError(t, err)
}
