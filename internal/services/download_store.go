package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/resume-studio/internal/metrics"
	"alfredoptarigan/resume-studio/internal/models"
)

var ErrDownloadNotFound = errors.New("download not found")

const downloadFilePrefix = "enhanced_"

// DownloadStore holds decoded enhanced documents on disk until they are
// released or expire. A download is only visible to the session that owns it.
type DownloadStore interface {
	EnsureDownloadDir() error
	Put(owner string, data []byte, pageCount int) (*models.DownloadRef, error)
	Get(owner, id string) (*models.Download, error)
	Exists(owner, id string) bool
	Release(id string) error
	Sweep(ctx context.Context, now time.Time) (int, error)
}

type downloadStore struct {
	downloadPath string
	ttl          time.Duration

	mu        sync.Mutex
	downloads map[string]*models.Download
}

func NewDownloadStore(downloadPath string, ttl time.Duration) DownloadStore {
	return &downloadStore{
		downloadPath: downloadPath,
		ttl:          ttl,
		downloads:    make(map[string]*models.Download),
	}
}

// EnsureDownloadDir creates the download directory and removes documents
// left behind by a previous process; their index entries are gone.
func (s *downloadStore) EnsureDownloadDir() error {
	if err := os.MkdirAll(s.downloadPath, 0755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	entries, err := os.ReadDir(s.downloadPath)
	if err != nil {
		return fmt.Errorf("failed to read download directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), downloadFilePrefix) {
			continue
		}
		if err := os.Remove(filepath.Join(s.downloadPath, entry.Name())); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stale download: %w", err)
		}
	}

	return nil
}

func (s *downloadStore) Put(owner string, data []byte, pageCount int) (*models.DownloadRef, error) {
	id := uuid.New().String()
	filePath := filepath.Join(s.downloadPath, downloadFilePrefix+id+".pdf")

	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to save download: %w", err)
	}

	download := &models.Download{
		DownloadRef: models.DownloadRef{
			ID:        id,
			Filename:  models.EnhancedFilename,
			Size:      int64(len(data)),
			PageCount: pageCount,
			CreatedAt: time.Now(),
		},
		Owner:    owner,
		FilePath: filePath,
	}

	s.mu.Lock()
	s.downloads[id] = download
	s.mu.Unlock()
	metrics.DownloadsActive.Inc()

	ref := download.DownloadRef
	return &ref, nil
}

func (s *downloadStore) Get(owner, id string) (*models.Download, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	download, ok := s.downloads[id]
	if !ok || download.Owner != owner {
		return nil, ErrDownloadNotFound
	}

	copied := *download
	return &copied, nil
}

func (s *downloadStore) Exists(owner, id string) bool {
	_, err := s.Get(owner, id)
	return err == nil
}

// Release deletes a download. Releasing an unknown id is a no-op.
func (s *downloadStore) Release(id string) error {
	s.mu.Lock()
	download, ok := s.downloads[id]
	if ok {
		delete(s.downloads, id)
	}
	s.mu.Unlock()

	if !ok {
		return nil
	}
	metrics.DownloadsActive.Dec()

	if err := os.Remove(download.FilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete download: %w", err)
	}
	return nil
}

// Sweep releases downloads older than the store TTL.
func (s *downloadStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	var expired []string
	for id, download := range s.downloads {
		if now.Sub(download.CreatedAt) >= s.ttl {
			expired = append(expired, id)
		}
	}
	s.mu.Unlock()

	var errs []error
	for _, id := range expired {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := s.Release(id); err != nil {
			errs = append(errs, err)
		}
	}

	return len(expired), errors.Join(errs...)
}
