// Package storage persists uploaded videos and pipeline artifacts on the
// local filesystem. Both roots are injected configuration.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type FileStore struct {
	uploadDir string
	outputDir string
}

func NewFileStore(uploadDir, outputDir string) (*FileStore, error) {
	if strings.TrimSpace(uploadDir) == "" {
		return nil, fmt.Errorf("storage: upload directory is required")
	}
	if strings.TrimSpace(outputDir) == "" {
		return nil, fmt.Errorf("storage: output directory is required")
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure upload directory: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure output directory: %w", err)
	}
	return &FileStore{uploadDir: uploadDir, outputDir: outputDir}, nil
}

func (s *FileStore) UploadDir() string { return s.uploadDir }
func (s *FileStore) OutputDir() string { return s.outputDir }

// SaveUpload writes the uploaded video under the upload root with a
// collision-free name and returns the stored path.
func (s *FileStore) SaveUpload(src io.Reader, originalFilename string) (string, error) {
	base := filepath.Base(strings.TrimSpace(originalFilename))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("storage: invalid filename %q", originalFilename)
	}

	path := filepath.Join(s.uploadDir, uuid.New().String()+"_"+base)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("storage: create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("storage: write upload file: %w", err)
	}

	return path, nil
}

// ProjectDir returns the artifact directory for a project, creating it and
// its thumbnails subdirectory if needed.
func (s *FileStore) ProjectDir(projectID int64) (string, error) {
	dir := filepath.Join(s.outputDir, fmt.Sprintf("project_%d", projectID))
	if err := os.MkdirAll(filepath.Join(dir, "thumbnails"), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure project directory: %w", err)
	}
	return dir, nil
}

// RemoveProject deletes a project's artifact directory. Missing directories
// are not an error.
func (s *FileStore) RemoveProject(projectID int64) error {
	dir := filepath.Join(s.outputDir, fmt.Sprintf("project_%d", projectID))
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("storage: remove project directory: %w", err)
	}
	return nil
}
