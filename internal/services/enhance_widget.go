package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/resume-studio/internal/apperror"
	"alfredoptarigan/resume-studio/internal/metrics"
	"alfredoptarigan/resume-studio/internal/models"
	"alfredoptarigan/resume-studio/internal/repositories"
)

type EnhanceWidget interface {
	Upload(ctx context.Context, sessionID string, file ResumeFile) (*models.EnhanceView, error)
	View(ctx context.Context, sessionID string) (*models.EnhanceView, error)
	Download(ctx context.Context, sessionID, id string) (*models.Download, error)
	Reset(ctx context.Context, sessionID string) error
}

type enhanceWidget struct {
	client    EnhanceClient
	views     repositories.ViewRepository
	downloads DownloadStore
	inspector PDFInspector
	tracker   *TaskTracker
	logger    *zap.Logger
}

func NewEnhanceWidget(
	client EnhanceClient,
	views repositories.ViewRepository,
	downloads DownloadStore,
	inspector PDFInspector,
	tracker *TaskTracker,
	logger *zap.Logger,
) EnhanceWidget {
	return &enhanceWidget{
		client:    client,
		views:     views,
		downloads: downloads,
		inspector: inspector,
		tracker:   tracker,
		logger:    logger,
	}
}

func enhanceTaskKey(sessionID string) string {
	return string(models.WidgetEnhance) + ":" + sessionID
}

// Upload sends file to the enhancement service. Suggestions and the decoded
// document replace the previous result as a whole; the previous document is
// released once the new view is saved.
func (e *enhanceWidget) Upload(ctx context.Context, sessionID string, file ResumeFile) (*models.EnhanceView, error) {
	key := enhanceTaskKey(sessionID)
	taskCtx, gen := e.tracker.Begin(ctx, key)

	_, err := e.tracker.Commit(key, gen, func() error {
		view, err := e.views.GetEnhance(ctx, sessionID)
		if err != nil {
			return err
		}
		view.Status = models.StatusUploading
		view.Generation = gen
		view.Error = nil
		view.UpdatedAt = time.Now()
		return e.views.SaveEnhance(ctx, sessionID, view)
	})
	if err != nil {
		e.tracker.Cancel(key)
		return nil, fmt.Errorf("failed to mark upload in progress: %w", err)
	}

	e.logger.Info("📤 Uploading resume for enhancement",
		zap.String("session", sessionID),
		zap.String("filename", file.Filename),
		zap.Uint64("generation", gen),
	)

	start := time.Now()
	outcome, enhanceErr := e.client.Enhance(taskCtx, file)
	metrics.UploadDuration.WithLabelValues(string(models.WidgetEnhance)).Observe(time.Since(start).Seconds())

	next := &models.EnhanceView{
		Generation: gen,
		UpdatedAt:  time.Now(),
	}

	var stored *models.DownloadRef
	if enhanceErr != nil {
		next.Status = models.StatusError
		next.Error = errorView(enhanceErr)
	} else {
		next.Status = models.StatusSuccess
		next.Suggestions = outcome.Suggestions

		docErr := outcome.DocumentErr
		if docErr == nil && outcome.Document != nil {
			stored, docErr = e.storeDocument(sessionID, outcome.Document)
		}
		next.Download = stored
		if docErr != nil {
			next.DocumentError = errorView(docErr)
			e.logger.Warn("⚠️  Enhanced document unavailable", zap.String("session", sessionID), zap.Error(docErr))
		}
	}

	var previous *models.DownloadRef
	failureSaved := false
	applied, err := e.tracker.Finish(key, gen, func() error {
		current, err := e.views.GetEnhance(ctx, sessionID)
		if err == nil {
			previous = current.Download
			err = e.views.SaveEnhance(ctx, sessionID, next)
		}
		if err != nil {
			failureSaved = e.saveFailure(ctx, sessionID, gen, err)
		}
		return err
	})
	if err != nil || !applied {
		e.release(stored)
	}
	if err != nil {
		if failureSaved {
			e.release(previous)
		}
		return nil, fmt.Errorf("failed to save enhance view: %w", err)
	}

	if !applied {
		metrics.UploadsSuperseded.WithLabelValues(string(models.WidgetEnhance)).Inc()
		e.logger.Info("⏭️  Enhance upload superseded, response discarded",
			zap.String("session", sessionID),
			zap.Uint64("generation", gen),
		)
		return e.View(ctx, sessionID)
	}

	if previous != nil && (stored == nil || previous.ID != stored.ID) {
		e.release(previous)
	}

	if enhanceErr != nil {
		metrics.UploadsTotal.WithLabelValues(string(models.WidgetEnhance), next.Error.Kind).Inc()
		e.logger.Warn("❌ Enhance upload failed", zap.String("session", sessionID), zap.Error(enhanceErr))
		return next, nil
	}

	metrics.UploadsTotal.WithLabelValues(string(models.WidgetEnhance), "success").Inc()
	e.logger.Info("✅ Resume enhanced",
		zap.String("session", sessionID),
		zap.Int("suggestions", len(next.Suggestions)),
		zap.Bool("document", stored != nil),
	)
	return next, nil
}

// View returns the session's enhance view. A download whose file has
// expired is dropped from the returned view, and an upload left unfinished
// is reported as an error.
func (e *enhanceWidget) View(ctx context.Context, sessionID string) (*models.EnhanceView, error) {
	view, err := e.views.GetEnhance(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load enhance view: %w", err)
	}

	if view.Status == models.StatusUploading && !e.tracker.InFlight(enhanceTaskKey(sessionID)) {
		view.Status = models.StatusError
		view.Suggestions = nil
		view.Download = nil
		view.DocumentError = nil
		view.Error = errorView(apperror.New(apperror.KindInternal, "enhance", ErrUploadInterrupted))
	}

	if view.Download != nil && !e.downloads.Exists(sessionID, view.Download.ID) {
		view.Download = nil
	}
	return view, nil
}

func (e *enhanceWidget) Download(ctx context.Context, sessionID, id string) (*models.Download, error) {
	download, err := e.downloads.Get(sessionID, id)
	if err != nil {
		return nil, err
	}
	return download, nil
}

// Reset aborts any in-flight upload, releases the held document and returns
// the widget to idle.
func (e *enhanceWidget) Reset(ctx context.Context, sessionID string) error {
	e.tracker.Cancel(enhanceTaskKey(sessionID))

	view, err := e.views.GetEnhance(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load enhance view: %w", err)
	}
	e.release(view.Download)

	if err := e.views.Delete(ctx, sessionID, models.WidgetEnhance); err != nil {
		return fmt.Errorf("failed to reset enhance view: %w", err)
	}
	return nil
}

func (e *enhanceWidget) storeDocument(sessionID string, document []byte) (*models.DownloadRef, error) {
	pageCount, err := e.inspector.PageCount(document)
	if err != nil {
		e.logger.Warn("⚠️  Enhanced document could not be inspected", zap.String("session", sessionID), zap.Error(err))
	}

	ref, err := e.downloads.Put(sessionID, document, pageCount)
	if err != nil {
		return nil, apperror.New(apperror.KindInternal, "enhance", err)
	}
	return ref, nil
}

// saveFailure records cause as the outcome of upload gen once its result could
// not be saved, and reports whether that write went through.
func (e *enhanceWidget) saveFailure(ctx context.Context, sessionID string, gen uint64, cause error) bool {
	failed := &models.EnhanceView{
		Status:     models.StatusError,
		Generation: gen,
		Error:      errorView(apperror.New(apperror.KindInternal, "enhance", cause)),
		UpdatedAt:  time.Now(),
	}
	if err := e.views.SaveEnhance(ctx, sessionID, failed); err != nil {
		e.logger.Error("❌ Failed to record enhance upload failure", zap.String("session", sessionID), zap.Error(err))
		return false
	}
	return true
}

func (e *enhanceWidget) release(ref *models.DownloadRef) {
	if ref == nil {
		return
	}
	if err := e.downloads.Release(ref.ID); err != nil {
		e.logger.Warn("⚠️  Failed to release download", zap.String("download", ref.ID), zap.Error(err))
	}
}

func errorView(err error) *models.ErrorView {
	return &models.ErrorView{
		Kind:    string(apperror.KindOf(err)),
		Message: apperror.UserMessage(err),
	}
}

// ErrUploadInterrupted marks an upload whose result was never recorded.
var ErrUploadInterrupted = errors.New("upload interrupted")

// IsDownloadNotFound reports whether err means the requested document is
// unknown to the caller's session.
func IsDownloadNotFound(err error) bool {
	return errors.Is(err, ErrDownloadNotFound)
}
