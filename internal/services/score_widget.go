package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/resume-studio/internal/apperror"
	"alfredoptarigan/resume-studio/internal/metrics"
	"alfredoptarigan/resume-studio/internal/models"
	"alfredoptarigan/resume-studio/internal/repositories"
)

type ScoreWidget interface {
	Upload(ctx context.Context, sessionID string, file ResumeFile) (*models.ScoreView, error)
	View(ctx context.Context, sessionID string) (*models.ScoreView, error)
	Reset(ctx context.Context, sessionID string) error
}

type scoreWidget struct {
	client  MatchClient
	views   repositories.ViewRepository
	tracker *TaskTracker
	logger  *zap.Logger
}

func NewScoreWidget(
	client MatchClient,
	views repositories.ViewRepository,
	tracker *TaskTracker,
	logger *zap.Logger,
) ScoreWidget {
	return &scoreWidget{
		client:  client,
		views:   views,
		tracker: tracker,
		logger:  logger,
	}
}

func scoreTaskKey(sessionID string) string {
	return string(models.WidgetScore) + ":" + sessionID
}

// Upload sends file to the match service and records the outcome as the
// session's score view. When a newer upload for the same session started in
// the meantime the outcome is dropped and the current view is returned.
func (s *scoreWidget) Upload(ctx context.Context, sessionID string, file ResumeFile) (*models.ScoreView, error) {
	key := scoreTaskKey(sessionID)
	taskCtx, gen := s.tracker.Begin(ctx, key)

	_, err := s.tracker.Commit(key, gen, func() error {
		view, err := s.views.GetScore(ctx, sessionID)
		if err != nil {
			return err
		}
		view.Status = models.StatusUploading
		view.Generation = gen
		view.Error = nil
		view.UpdatedAt = time.Now()
		return s.views.SaveScore(ctx, sessionID, view)
	})
	if err != nil {
		s.tracker.Cancel(key)
		return nil, fmt.Errorf("failed to mark upload in progress: %w", err)
	}

	s.logger.Info("📤 Uploading resume for scoring",
		zap.String("session", sessionID),
		zap.String("filename", file.Filename),
		zap.Uint64("generation", gen),
	)

	start := time.Now()
	result, matchErr := s.client.Match(taskCtx, file)
	metrics.UploadDuration.WithLabelValues(string(models.WidgetScore)).Observe(time.Since(start).Seconds())

	next := &models.ScoreView{
		Generation: gen,
		UpdatedAt:  time.Now(),
	}
	if matchErr != nil {
		next.Status = models.StatusError
		next.Error = errorView(matchErr)
	} else {
		next.Status = models.StatusSuccess
		next.Result = result
	}

	applied, err := s.tracker.Finish(key, gen, func() error {
		err := s.views.SaveScore(ctx, sessionID, next)
		if err != nil {
			s.saveFailure(ctx, sessionID, gen, err)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save score view: %w", err)
	}

	if !applied {
		metrics.UploadsSuperseded.WithLabelValues(string(models.WidgetScore)).Inc()
		s.logger.Info("⏭️  Score upload superseded, response discarded",
			zap.String("session", sessionID),
			zap.Uint64("generation", gen),
		)
		return s.View(ctx, sessionID)
	}

	if matchErr != nil {
		metrics.UploadsTotal.WithLabelValues(string(models.WidgetScore), next.Error.Kind).Inc()
		s.logger.Warn("❌ Score upload failed", zap.String("session", sessionID), zap.Error(matchErr))
		return next, nil
	}

	metrics.UploadsTotal.WithLabelValues(string(models.WidgetScore), "success").Inc()
	s.logger.Info("✅ Resume scored",
		zap.String("session", sessionID),
		zap.Int("score", result.Score),
		zap.Int("matched", len(result.MatchedKeywords)),
		zap.Int("missing", len(result.MissingKeywords)),
	)
	return next, nil
}

// View returns the session's score view. An upload left unfinished by a
// failed write or a restart is reported as an error.
func (s *scoreWidget) View(ctx context.Context, sessionID string) (*models.ScoreView, error) {
	view, err := s.views.GetScore(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load score view: %w", err)
	}

	if view.Status == models.StatusUploading && !s.tracker.InFlight(scoreTaskKey(sessionID)) {
		view.Status = models.StatusError
		view.Result = nil
		view.Error = errorView(apperror.New(apperror.KindInternal, "score", ErrUploadInterrupted))
	}
	return view, nil
}

// Reset aborts any in-flight upload and returns the widget to idle.
func (s *scoreWidget) Reset(ctx context.Context, sessionID string) error {
	s.tracker.Cancel(scoreTaskKey(sessionID))
	if err := s.views.Delete(ctx, sessionID, models.WidgetScore); err != nil {
		return fmt.Errorf("failed to reset score view: %w", err)
	}
	return nil
}

// saveFailure records cause as the outcome of upload gen once its result could
// not be saved. Failing that, View still reports the upload as interrupted.
func (s *scoreWidget) saveFailure(ctx context.Context, sessionID string, gen uint64, cause error) {
	failed := &models.ScoreView{
		Status:     models.StatusError,
		Generation: gen,
		Error:      errorView(apperror.New(apperror.KindInternal, "score", cause)),
		UpdatedAt:  time.Now(),
	}
	if err := s.views.SaveScore(ctx, sessionID, failed); err != nil {
		s.logger.Error("❌ Failed to record score upload failure", zap.String("session", sessionID), zap.Error(err))
	}
}
