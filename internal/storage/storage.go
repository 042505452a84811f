// Package storage persists uploaded plant images under the public static
// directory tree and hands back their public URLs.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Support GIF sniffing for DecodeConfig
	_ "image/jpeg" // Support JPEG
	_ "image/png"  // Support PNG
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // Support WebP

	"sprout/pkg/logger"
)

const uploadsRoot = "uploads"

var (
	// ErrUnsupportedMedia rejects anything that does not sniff as JPEG/PNG/WebP.
	ErrUnsupportedMedia = errors.New("only JPEG, PNG, and WebP files are allowed")

	// ErrFileTooLarge rejects payloads above the configured limit.
	ErrFileTooLarge = errors.New("file exceeds size limit")

	// ErrIO marks a disk failure while persisting an upload, as opposed to a
	// bad file from the client.
	ErrIO = errors.New("failed to persist upload")
)

// allowedTypes are matched against http.DetectContentType output, so the check
// is on file content, not on the client-declared MIME type.
var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// SavedImage describes one persisted upload.
type SavedImage struct {
	URL      string `json:"imageUrl"`
	Filename string `json:"filename"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Size     int64  `json:"size"`
}

// Store writes image files under publicDir and serves their public URL paths.
type Store struct {
	publicDir string
	maxSize   int64
}

func New(publicDir string, maxSize int64) *Store {
	return &Store{publicDir: publicDir, maxSize: maxSize}
}

// SaveUpload validates and persists a multipart image file.
//
// Layout: plantID set -> uploads/plants/<plantID>/, else uploads/<subdir>/
// (or uploads/ when subdir is empty). Filenames combine a millisecond
// timestamp with a random suffix to resist collisions.
func (s *Store) SaveUpload(fh *multipart.FileHeader, subdir, plantID string) (*SavedImage, error) {
	if fh.Size > s.maxSize {
		return nil, ErrFileTooLarge
	}

	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrIO, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrIO, err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, ErrFileTooLarge
	}

	sniffLen := len(data)
	if sniffLen > 512 {
		sniffLen = 512
	}
	if !allowedTypes[http.DetectContentType(data[:sniffLen])] {
		return nil, ErrUnsupportedMedia
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrUnsupportedMedia
	}

	relDir := uploadsRoot
	switch {
	case plantID != "":
		relDir = path.Join(uploadsRoot, "plants", plantID)
	case subdir != "":
		relDir = path.Join(uploadsRoot, subdir)
	}

	absDir := filepath.Join(s.publicDir, filepath.FromSlash(relDir))
	if err := os.MkdirAll(absDir, 0750); err != nil {
		return nil, fmt.Errorf("%w: mkdir: %v", ErrIO, err)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	filename := fmt.Sprintf("%d_%s%s", time.Now().UnixMilli(), strings.Split(uuid.NewString(), "-")[0], ext)

	if err := os.WriteFile(filepath.Join(absDir, filename), data, 0644); err != nil {
		return nil, fmt.Errorf("%w: write: %v", ErrIO, err)
	}

	return &SavedImage{
		URL:      "/" + path.Join(relDir, filename),
		Filename: filename,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Format:   format,
		Size:     int64(len(data)),
	}, nil
}

// Remove deletes the file behind a public URL. Failure is logged and returned
// but callers treat it as non-fatal: the owning record is already gone.
func (s *Store) Remove(publicURL string) error {
	rel := strings.TrimPrefix(path.Clean("/"+publicURL), "/")
	if !strings.HasPrefix(rel, uploadsRoot+"/") {
		return fmt.Errorf("refusing to remove file outside %s: %s", uploadsRoot, publicURL)
	}

	if err := os.Remove(filepath.Join(s.publicDir, filepath.FromSlash(rel))); err != nil {
		logger.LogWarn("Could not delete physical file %s: %v", publicURL, err)
		return err
	}
	return nil
}
