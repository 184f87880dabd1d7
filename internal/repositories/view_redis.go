package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"alfredoptarigan/resume-studio/internal/models"
)

type redisViewRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisViewRepository(client *redis.Client, ttl time.Duration) ViewRepository {
	return &redisViewRepository{client: client, ttl: ttl}
}

func (r *redisViewRepository) GetScore(ctx context.Context, sessionID string) (*models.ScoreView, error) {
	view := models.NewScoreView()
	if err := r.load(ctx, viewKey(sessionID, models.WidgetScore), view); err != nil {
		return nil, err
	}
	return view, nil
}

func (r *redisViewRepository) SaveScore(ctx context.Context, sessionID string, view *models.ScoreView) error {
	return r.store(ctx, viewKey(sessionID, models.WidgetScore), view)
}

func (r *redisViewRepository) GetEnhance(ctx context.Context, sessionID string) (*models.EnhanceView, error) {
	view := models.NewEnhanceView()
	if err := r.load(ctx, viewKey(sessionID, models.WidgetEnhance), view); err != nil {
		return nil, err
	}
	return view, nil
}

func (r *redisViewRepository) SaveEnhance(ctx context.Context, sessionID string, view *models.EnhanceView) error {
	return r.store(ctx, viewKey(sessionID, models.WidgetEnhance), view)
}

func (r *redisViewRepository) Delete(ctx context.Context, sessionID string, widget models.Widget) error {
	if err := r.client.Del(ctx, viewKey(sessionID, widget)).Err(); err != nil {
		return fmt.Errorf("failed to delete view: %w", err)
	}
	return nil
}

func (r *redisViewRepository) load(ctx context.Context, key string, dst any) error {
	payload, err := r.client.GetEx(ctx, key, r.ttl).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("failed to get view: %w", err)
	}

	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("failed to decode view: %w", err)
	}
	return nil
}

func (r *redisViewRepository) store(ctx context.Context, key string, view any) error {
	payload, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to encode view: %w", err)
	}

	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save view: %w", err)
	}
	return nil
}
