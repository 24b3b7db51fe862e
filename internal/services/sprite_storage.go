package services

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// MaxSpriteBytes caps uploaded sprite size.
const MaxSpriteBytes = 1 << 20

var (
	ErrUnsupportedSprite = errors.New("unsupported sprite format")
	// ErrUnsafeSprite rejects SVG sprites that could run script when the
	// file is opened directly from /sprites.
	ErrUnsafeSprite = errors.New("sprite contains active content")
)

var activeSVGContent = regexp.MustCompile(`(?i)<\s*(script|foreignobject|iframe|embed|object)\b|[\s/"']on[a-z]+\s*=|javascript:`)

var spriteExtensions = map[string]string{
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// SpriteStorageService stores uploaded item sprites on disk. Stored sprites
// are served under /sprites/ and referenced by root-relative path.
type SpriteStorageService struct {
	storageDir string
}

func NewSpriteStorageService(storageDir string) *SpriteStorageService {
	if err := os.MkdirAll(storageDir, 0755); err != nil {
		// Writes will fail later with a clearer error.
		log.Printf("Warning: could not create sprite directory: %v", err)
	}
	return &SpriteStorageService{storageDir: storageDir}
}

// SaveSprite writes data under a fresh name and returns the sprite's
// root-relative URL.
func (s *SpriteStorageService) SaveSprite(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty sprite data")
	}
	if len(data) > MaxSpriteBytes {
		return "", fmt.Errorf("sprite is %d bytes, limit is %d", len(data), MaxSpriteBytes)
	}
	ct := sniffSprite(data)
	ext, ok := spriteExtensions[ct]
	if !ok {
		return "", ErrUnsupportedSprite
	}
	if ct == "image/svg+xml" && activeSVGContent.Match(data) {
		return "", ErrUnsafeSprite
	}

	filename := uuid.New().String() + ext
	if err := os.WriteFile(filepath.Join(s.storageDir, filename), data, 0644); err != nil {
		return "", fmt.Errorf("failed to save sprite: %w", err)
	}
	return "/sprites/" + filename, nil
}

// DeleteSprite removes a sprite previously returned by SaveSprite. Only the
// base name of url is used, so it cannot reach outside the storage directory.
func (s *SpriteStorageService) DeleteSprite(url string) error {
	name := filepath.Base(strings.TrimPrefix(url, "/sprites/"))
	if name == "." || name == "/" || name == "" {
		return fmt.Errorf("invalid sprite url %q", url)
	}
	if err := os.Remove(filepath.Join(s.storageDir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete sprite: %w", err)
	}
	return nil
}

// sniffSprite detects the content type, treating XML documents with an
// <svg root as SVG.
func sniffSprite(data []byte) string {
	ct := http.DetectContentType(data)
	head := data[:min(len(data), 512)]
	if bytes.Contains(head, []byte("<svg")) {
		return "image/svg+xml"
	}
	return ct
}

// GetStorageDir returns the storage directory path
func (s *SpriteStorageService) GetStorageDir() string {
	return s.storageDir
}
