package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Store defines the interface for evidence file storage backends
type Store interface {
	Put(ctx context.Context, objectName string, reader io.Reader) (int64, string, error)
	Open(ctx context.Context, objectName string) (io.ReadCloser, error)
	Delete(ctx context.Context, objectName string) error
}

// LocalStore implements Store on the local filesystem
type LocalStore struct {
	baseDir string
}

// NewLocalStore creates a filesystem-backed evidence store
func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

// Put writes an object and returns the byte count and content SHA256
func (s *LocalStore) Put(ctx context.Context, objectName string, reader io.Reader) (int64, string, error) {
	fullPath, err := s.resolve(objectName)
	if err != nil {
		return 0, "", err
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return 0, "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	hash := sha256.New()
	written, err := io.Copy(file, io.TeeReader(reader, hash))
	if err != nil {
		return 0, "", fmt.Errorf("failed to write file: %w", err)
	}
	return written, hex.EncodeToString(hash.Sum(nil)), nil
}

func (s *LocalStore) Open(ctx context.Context, objectName string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(objectName)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (s *LocalStore) Delete(ctx context.Context, objectName string) error {
	fullPath, err := s.resolve(objectName)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// resolve rejects names that would escape the base directory
func (s *LocalStore) resolve(objectName string) (string, error) {
	if objectName == "" || objectName != filepath.Base(objectName) {
		return "", fmt.Errorf("invalid object name: %q", objectName)
	}
	return filepath.Join(s.baseDir, objectName), nil
}

// NewObjectName derives a unique stored name, keeping the original extension
func NewObjectName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return ulid.Make().String() + ext
}
