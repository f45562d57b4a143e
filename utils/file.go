package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var (
	ErrFileTooLarge    = errors.New("file size exceeds maximum allowed size")
	ErrInvalidFileType = errors.New("invalid file type. Only jpg, jpeg, png, gif, webp allowed")
)

func ValidateImage(filename string, size, maxSize int64) error {
	if size > maxSize {
		return ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExtensions[ext] {
		return ErrInvalidFileType
	}
	return nil
}

// LocalStorage keeps uploaded images on disk under Root and serves them
// from BaseURL.
type LocalStorage struct {
	Root    string
	BaseURL string
}

// Save writes r to <Root>/<subDir>/<uuid><ext> and returns the public URL.
func (s *LocalStorage) Save(r io.Reader, filename, subDir string) (string, error) {
	dir := filepath.Join(s.Root, subDir)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", err
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.BaseURL, "/"), filepath.ToSlash(subDir), name), nil
}

func (s *LocalStorage) Delete(relPath string) error {
	fullPath := filepath.Join(s.Root, relPath)
	if _, err := os.Stat(fullPath); err == nil {
		return os.Remove(fullPath)
	}
	return nil
}
