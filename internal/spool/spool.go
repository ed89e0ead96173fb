package spool

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/png"
)

// Artifact extensions by submission kind.
const (
	TextExt  = ".txt"
	ImageExt = ".jpg"
)

// Spool is the artifact directory: the durable home of every job's original
// submitted content, written before the audit record and read back on reprint.
type Spool struct {
	Dir string
}

func (s Spool) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Spool) textPath(printID string) string {
	return filepath.Join(s.Dir, printID+TextExt)
}

func (s Spool) imagePath(printID string) string {
	return filepath.Join(s.Dir, printID+ImageExt)
}

// SaveText persists a text submission and returns the artifact path.
func (s Spool) SaveText(printID, text string) (string, error) {
	if err := s.Ensure(); err != nil {
		return "", err
	}
	path := s.textPath(printID)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// SaveImage persists an image submission as JPEG and returns the artifact path.
func (s Spool) SaveImage(printID string, img image.Image) (string, error) {
	if err := s.Ensure(); err != nil {
		return "", err
	}
	path := s.imagePath(printID)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, nil); err != nil {
		return "", err
	}
	return path, nil
}

// ReadText loads a text artifact back for reprint.
func (s Spool) ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read artifact: %w", err)
	}
	return string(data), nil
}

// ReadImage loads an image artifact back for reprint.
func (s Spool) ReadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", path, err)
	}
	return img, nil
}
