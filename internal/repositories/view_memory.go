package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"alfredoptarigan/resume-studio/internal/models"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryViewRepository is a ViewRepository backed by a map.
type MemoryViewRepository struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

// NewMemoryViewRepository keeps views in process. Reads extend the entry
// lifetime by ttl, the same way the redis repository does.
func NewMemoryViewRepository(ttl time.Duration) *MemoryViewRepository {
	return &MemoryViewRepository{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
	}
}

func (r *MemoryViewRepository) GetScore(ctx context.Context, sessionID string) (*models.ScoreView, error) {
	view := models.NewScoreView()
	if err := r.load(viewKey(sessionID, models.WidgetScore), view); err != nil {
		return nil, err
	}
	return view, nil
}

func (r *MemoryViewRepository) SaveScore(ctx context.Context, sessionID string, view *models.ScoreView) error {
	return r.store(viewKey(sessionID, models.WidgetScore), view)
}

func (r *MemoryViewRepository) GetEnhance(ctx context.Context, sessionID string) (*models.EnhanceView, error) {
	view := models.NewEnhanceView()
	if err := r.load(viewKey(sessionID, models.WidgetEnhance), view); err != nil {
		return nil, err
	}
	return view, nil
}

func (r *MemoryViewRepository) SaveEnhance(ctx context.Context, sessionID string, view *models.EnhanceView) error {
	return r.store(viewKey(sessionID, models.WidgetEnhance), view)
}

func (r *MemoryViewRepository) Delete(ctx context.Context, sessionID string, widget models.Widget) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, viewKey(sessionID, widget))
	return nil
}

// Sweep drops entries that were not touched within the ttl.
func (r *MemoryViewRepository) Sweep(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, entry := range r.entries {
		if !now.Before(entry.expiresAt) {
			delete(r.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (r *MemoryViewRepository) load(key string, dst any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[key]
	if !ok {
		return nil
	}
	if !time.Now().Before(entry.expiresAt) {
		delete(r.entries, key)
		return nil
	}

	entry.expiresAt = time.Now().Add(r.ttl)
	r.entries[key] = entry

	if err := json.Unmarshal(entry.payload, dst); err != nil {
		return fmt.Errorf("failed to decode view: %w", err)
	}
	return nil
}

func (r *MemoryViewRepository) store(key string, view any) error {
	payload, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to encode view: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[key] = memoryEntry{payload: payload, expiresAt: time.Now().Add(r.ttl)}
	return nil
}
