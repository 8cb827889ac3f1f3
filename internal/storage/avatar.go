// Package storage keeps uploaded avatar images on the local filesystem.
package storage

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"heartbridge/internal/logger"
	"heartbridge/internal/validation"
)

var allowedAvatarTypes = map[string][]string{
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
}

// AvatarStore saves avatar uploads under one directory with random names
type AvatarStore struct {
	basePath string
	maxSize  int64
}

// NewAvatarStore ensures basePath exists. maxSize caps each upload in bytes.
func NewAvatarStore(basePath string, maxSize int64) (*AvatarStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create avatar directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Avatar directory ensured")
	return &AvatarStore{basePath: basePath, maxSize: maxSize}, nil
}

// BasePath is the directory avatars are served from
func (s *AvatarStore) BasePath() string {
	return s.basePath
}

// Save checks the upload and writes it, returning the stored file name.
// Both the extension and the sniffed content type must be JPEG or PNG.
func (s *AvatarStore) Save(r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	types, ok := allowedAvatarTypes[ext]
	if !ok {
		return "", validation.ValidationError{Field: "avatar", Message: "avatar must be a .jpg, .jpeg or .png file"}
	}

	// read one byte past the cap to detect oversize uploads
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read avatar upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return "", validation.ValidationError{Field: "avatar", Message: fmt.Sprintf("avatar must be at most %d bytes", s.maxSize)}
	}
	if len(data) == 0 {
		return "", validation.ValidationError{Field: "avatar", Message: "avatar file is empty"}
	}

	contentType := http.DetectContentType(data)
	if !matchesType(contentType, types) {
		return "", validation.ValidationError{Field: "avatar", Message: "avatar content is not a JPEG or PNG image"}
	}

	name := uuid.New().String() + ext
	dst := filepath.Join(s.basePath, name)
	if err := writeFile(dst, data); err != nil {
		return "", err
	}

	logger.Info().Str("filename", originalName).Str("saved_as", name).Msg("Avatar saved")
	return name, nil
}

// Delete removes a stored avatar. Missing files are not an error.
func (s *AvatarStore) Delete(name string) error {
	path, ok := s.Path(name)
	if !ok {
		return fmt.Errorf("invalid avatar name: %q", name)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete avatar: %w", err)
	}
	return nil
}

// Path resolves a stored file name to its location, rejecting anything
// that is not a bare file name.
func (s *AvatarStore) Path(name string) (string, bool) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", false
	}
	return filepath.Join(s.basePath, name), true
}

func matchesType(contentType string, allowed []string) bool {
	for _, t := range allowed {
		if contentType == t {
			return true
		}
	}
	return false
}

func writeFile(path string, data []byte) error {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create avatar file: %w", err)
	}
	if _, err := io.Copy(dst, bytes.NewReader(data)); err != nil {
		dst.Close()
		_ = os.Remove(path)
		return fmt.Errorf("failed to write avatar file: %w", err)
	}
	return dst.Close()
}
