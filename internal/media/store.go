package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUnsafePath is returned when a relative path would escape the upload root.
var ErrUnsafePath = errors.New("path escapes upload root")

var extByMIME = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
	"image/bmp":  "bmp",
}

// Store writes uploaded images under a configured root directory, namespaced
// by a sanitized area name. Returned paths are always relative to the root.
type Store struct {
	root string
}

// NewStore creates a media store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Save decodes a base64 image payload (with or without a data-URI prefix) and
// writes it to disk. The filename combines a timestamp with a random suffix so
// concurrent submissions into the same area directory cannot collide.
func (s *Store) Save(areaName, payload, mimeType string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(stripDataURI(payload))
	if err != nil {
		return "", fmt.Errorf("decode image payload: %w", err)
	}

	dir := SanitizeName(areaName)
	if err := os.MkdirAll(filepath.Join(s.root, dir), 0o755); err != nil {
		return "", fmt.Errorf("create area directory: %w", err)
	}

	name := fmt.Sprintf("%d-%s.%s", time.Now().UnixNano(), uuid.New().String()[:8], extFor(mimeType))
	relPath := filepath.ToSlash(filepath.Join(dir, name))
	if err := os.WriteFile(filepath.Join(s.root, dir, name), raw, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return relPath, nil
}

// Remove deletes a previously saved image, used to clean up best-effort writes
// when the surrounding transaction rolls back.
func (s *Store) Remove(relPath string) error {
	cleaned := filepath.Clean(filepath.FromSlash(relPath))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return ErrUnsafePath
	}
	err := os.Remove(filepath.Join(s.root, cleaned))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// SanitizeName maps a user-supplied area name to a filesystem-safe directory
// component: lowercase, [a-z0-9-_] kept, runs of anything else collapsed to
// a single dash.
func SanitizeName(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
			dash = false
		default:
			if !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "area"
	}
	return out
}

func stripDataURI(payload string) string {
	if !strings.HasPrefix(payload, "data:") {
		return payload
	}
	if i := strings.Index(payload, ";base64,"); i >= 0 {
		return payload[i+len(";base64,"):]
	}
	return payload
}

func extFor(mimeType string) string {
	if ext, ok := extByMIME[strings.ToLower(strings.TrimSpace(mimeType))]; ok {
		return ext
	}
	return "jpg"
}
