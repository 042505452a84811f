package storage

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("photo", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	_, fh, err := req.FormFile("photo")
	require.NoError(t, err)
	return fh
}

func TestSaveUploadGeneric(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, 10<<20)

	saved, err := store.SaveUpload(fileHeader(t, "leaf.png", pngBytes(t, 4, 3)), "", "")
	require.NoError(t, err)

	assert.Equal(t, 4, saved.Width)
	assert.Equal(t, 3, saved.Height)
	assert.Equal(t, "png", saved.Format)
	assert.Regexp(t, `^/uploads/\d+_[0-9a-f]+\.png$`, saved.URL)

	_, err = os.Stat(filepath.Join(dir, "uploads", saved.Filename))
	assert.NoError(t, err, "file must exist under the public directory")
}

func TestSaveUploadPlantScoped(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, 10<<20)

	saved, err := store.SaveUpload(fileHeader(t, "leaf.png", pngBytes(t, 2, 2)), "watering", "plant-123")
	require.NoError(t, err)

	assert.Regexp(t, `^/uploads/plants/plant-123/`, saved.URL)
	_, err = os.Stat(filepath.Join(dir, "uploads", "plants", "plant-123", saved.Filename))
	assert.NoError(t, err)
}

func TestSaveUploadSubdir(t *testing.T) {
	store := New(t.TempDir(), 10<<20)

	saved, err := store.SaveUpload(fileHeader(t, "leaf.png", pngBytes(t, 2, 2)), "watering", "")
	require.NoError(t, err)
	assert.Regexp(t, `^/uploads/watering/`, saved.URL)
}

func TestSaveUploadRejectsNonImage(t *testing.T) {
	store := New(t.TempDir(), 10<<20)

	_, err := store.SaveUpload(fileHeader(t, "notes.txt", []byte("just some plain text, not pixels")), "", "")
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
}

func TestSaveUploadRejectsOversize(t *testing.T) {
	store := New(t.TempDir(), 64) // 64 bytes

	_, err := store.SaveUpload(fileHeader(t, "leaf.png", pngBytes(t, 100, 100)), "", "")
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestSaveUploadReportsIOFailure(t *testing.T) {
	// The public dir path is a regular file, so the uploads directory
	// cannot be created underneath it.
	blocked := filepath.Join(t.TempDir(), "public")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0644))
	store := New(blocked, 10<<20)

	_, err := store.SaveUpload(fileHeader(t, "leaf.png", pngBytes(t, 2, 2)), "", "")
	assert.ErrorIs(t, err, ErrIO)
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, 10<<20)

	saved, err := store.SaveUpload(fileHeader(t, "leaf.png", pngBytes(t, 2, 2)), "", "")
	require.NoError(t, err)

	require.NoError(t, store.Remove(saved.URL))
	_, err = os.Stat(filepath.Join(dir, "uploads", saved.Filename))
	assert.True(t, os.IsNotExist(err))

	// Missing files report an error but nothing worse happens.
	assert.Error(t, store.Remove(saved.URL))
}

func TestRemoveRefusesPathsOutsideUploads(t *testing.T) {
	store := New(t.TempDir(), 10<<20)

	assert.Error(t, store.Remove("/etc/passwd"))
	assert.Error(t, store.Remove("/uploads/../secrets.txt"))
}
