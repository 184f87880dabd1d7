package repositories

import (
	"context"
	"fmt"

	"alfredoptarigan/resume-studio/internal/models"
)

// ViewRepository persists the per-session state of both widgets. A session
// with nothing stored reads back as a fresh idle view.
type ViewRepository interface {
	GetScore(ctx context.Context, sessionID string) (*models.ScoreView, error)
	SaveScore(ctx context.Context, sessionID string, view *models.ScoreView) error
	GetEnhance(ctx context.Context, sessionID string) (*models.EnhanceView, error)
	SaveEnhance(ctx context.Context, sessionID string, view *models.EnhanceView) error
	Delete(ctx context.Context, sessionID string, widget models.Widget) error
}

func viewKey(sessionID string, widget models.Widget) string {
	return fmt.Sprintf("rs:view:%s:%s", widget, sessionID)
}
