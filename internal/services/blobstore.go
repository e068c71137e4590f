package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/orbitlabs/orbit-assess/internal/platform/logger"
)

// BlobStore keeps attachment bytes on disk under
// <root>/<domainId>/<areaId>/<fileName>, mirroring the layout of the
// ZIP bundle's attachments tree. The store holds metadata rows only;
// this is where the blobs themselves live.
type BlobStore struct {
	root string
	log  *logger.Logger
}

func NewBlobStore(root string, baseLog *logger.Logger) (*BlobStore, error) {
	if root == "" {
		return nil, fmt.Errorf("blob store root not configured")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob store root: %w", err)
	}
	return &BlobStore{root: root, log: baseLog.With("service", "BlobStore")}, nil
}

func (s *BlobStore) path(domainID, areaID, fileName string) string {
	// Base strips any path separators a hostile bundle could smuggle in.
	return filepath.Join(s.root, filepath.Base(domainID), filepath.Base(areaID), filepath.Base(fileName))
}

func (s *BlobStore) Save(domainID, areaID, fileName string, data []byte) (string, error) {
	p := s.path(domainID, areaID, fileName)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("create attachment dir: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("write attachment %q: %w", fileName, err)
	}
	return p, nil
}

func (s *BlobStore) Open(domainID, areaID, fileName string) ([]byte, error) {
	return os.ReadFile(s.path(domainID, areaID, fileName))
}

func (s *BlobStore) Remove(domainID, areaID, fileName string) error {
	err := os.Remove(s.path(domainID, areaID, fileName))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
