package services

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"alfredoptarigan/resume-studio/internal/apperror"
	"alfredoptarigan/resume-studio/internal/models"
	"alfredoptarigan/resume-studio/internal/repositories"
)

type matchFunc func(ctx context.Context, file ResumeFile) (*models.MatchResult, error)

func (f matchFunc) Match(ctx context.Context, file ResumeFile) (*models.MatchResult, error) {
	return f(ctx, file)
}

type enhanceFunc func(ctx context.Context, file ResumeFile) (*EnhanceOutcome, error)

func (f enhanceFunc) Enhance(ctx context.Context, file ResumeFile) (*EnhanceOutcome, error) {
	return f(ctx, file)
}

func newTestScoreWidget(t *testing.T, client MatchClient) ScoreWidget {
	t.Helper()
	return NewScoreWidget(client, repositories.NewMemoryViewRepository(time.Hour), NewTaskTracker(), zaptest.NewLogger(t))
}

func newTestEnhanceWidget(t *testing.T, client EnhanceClient) (EnhanceWidget, DownloadStore) {
	t.Helper()
	store, _ := newTestDownloadStore(t, time.Hour)
	widget := NewEnhanceWidget(
		client,
		repositories.NewMemoryViewRepository(time.Hour),
		store,
		NewPDFInspector(),
		NewTaskTracker(),
		zaptest.NewLogger(t),
	)
	return widget, store
}

func TestScoreWidget_UploadSuccess(t *testing.T) {
	svc := newFakeService(t, http.StatusOK, map[string]any{
		"score":            72,
		"matched_keywords": []string{"python"},
		"missing_keywords": []string{"java"},
	})
	widget := newTestScoreWidget(t, NewMatchClient(svc.URL, 5*time.Second))
	ctx := context.Background()

	view, err := widget.View(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusIdle, view.Status)
	assert.Nil(t, view.Result)

	view, err = widget.Upload(ctx, "s1", sampleResume())
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, view.Status)
	require.NotNil(t, view.Result)
	assert.Equal(t, 72, view.Result.Score)
	assert.Equal(t, "#ffc107", models.ScoreColor(view.Result.Score))

	stored, err := widget.View(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, view.Result, stored.Result)

	other, err := widget.View(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusIdle, other.Status)
}

func TestScoreWidget_ErrorClearsResult(t *testing.T) {
	fail := false
	widget := newTestScoreWidget(t, matchFunc(func(ctx context.Context, file ResumeFile) (*models.MatchResult, error) {
		if fail {
			return nil, apperror.Status("match", http.StatusBadRequest, "No resume uploaded")
		}
		return &models.MatchResult{Score: 90, MatchedKeywords: []string{}, MissingKeywords: []string{}}, nil
	}))
	ctx := context.Background()

	_, err := widget.Upload(ctx, "s1", sampleResume())
	require.NoError(t, err)

	fail = true
	view, err := widget.Upload(ctx, "s1", sampleResume())
	require.NoError(t, err)

	assert.Equal(t, models.StatusError, view.Status)
	assert.Nil(t, view.Result)
	require.NotNil(t, view.Error)
	assert.Equal(t, string(apperror.KindStatus), view.Error.Kind)
	assert.Contains(t, view.Error.Message, "No resume uploaded")
}

func TestScoreWidget_StaleResponseIsDiscarded(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})

	var mu sync.Mutex
	calls := 0
	widget := newTestScoreWidget(t, matchFunc(func(ctx context.Context, file ResumeFile) (*models.MatchResult, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()

		if n == 1 {
			close(firstStarted)
			// Ignores cancellation on purpose: the response arrives late.
			<-releaseFirst
			return &models.MatchResult{Score: 30, MatchedKeywords: []string{}, MissingKeywords: []string{"go"}}, nil
		}
		return &models.MatchResult{Score: 85, MatchedKeywords: []string{"go"}, MissingKeywords: []string{}}, nil
	}))
	ctx := context.Background()

	type result struct {
		view *models.ScoreView
		err  error
	}
	firstDone := make(chan result, 1)
	go func() {
		view, err := widget.Upload(ctx, "s1", ResumeFile{Filename: "old.pdf", Content: []byte("old")})
		firstDone <- result{view, err}
	}()
	<-firstStarted

	newer, err := widget.Upload(ctx, "s1", ResumeFile{Filename: "new.pdf", Content: []byte("new")})
	require.NoError(t, err)
	assert.Equal(t, 85, newer.Result.Score)

	close(releaseFirst)
	stale := <-firstDone
	require.NoError(t, stale.err)
	require.NotNil(t, stale.view)
	assert.Equal(t, 85, stale.view.Result.Score)

	final, err := widget.View(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, final.Status)
	assert.Equal(t, 85, final.Result.Score)
	assert.Equal(t, newer.Generation, final.Generation)
}

func TestScoreWidget_SupersededRequestIsCanceled(t *testing.T) {
	firstStarted := make(chan struct{})
	var once sync.Once

	widget := newTestScoreWidget(t, matchFunc(func(ctx context.Context, file ResumeFile) (*models.MatchResult, error) {
		if file.Filename == "old.pdf" {
			once.Do(func() { close(firstStarted) })
			<-ctx.Done()
			return nil, apperror.Network("match", ctx.Err())
		}
		return &models.MatchResult{Score: 50, MatchedKeywords: []string{}, MissingKeywords: []string{}}, nil
	}))
	ctx := context.Background()

	firstDone := make(chan error, 1)
	go func() {
		_, err := widget.Upload(ctx, "s1", ResumeFile{Filename: "old.pdf"})
		firstDone <- err
	}()
	<-firstStarted

	_, err := widget.Upload(ctx, "s1", ResumeFile{Filename: "new.pdf"})
	require.NoError(t, err)
	require.NoError(t, <-firstDone)

	final, err := widget.View(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, final.Status)
	assert.Nil(t, final.Error)
	assert.Equal(t, 50, final.Result.Score)
}

func TestScoreWidget_Reset(t *testing.T) {
	widget := newTestScoreWidget(t, matchFunc(func(ctx context.Context, file ResumeFile) (*models.MatchResult, error) {
		return &models.MatchResult{Score: 10, MatchedKeywords: []string{}, MissingKeywords: []string{}}, nil
	}))
	ctx := context.Background()

	_, err := widget.Upload(ctx, "s1", sampleResume())
	require.NoError(t, err)
	require.NoError(t, widget.Reset(ctx, "s1"))

	view, err := widget.View(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusIdle, view.Status)
	assert.Nil(t, view.Result)
}

func TestEnhanceWidget_EmptyResponse(t *testing.T) {
	svc := newFakeService(t, http.StatusOK, `{"suggestions":[],"enhanced_pdf":null}`)
	widget, _ := newTestEnhanceWidget(t, NewEnhanceClient(svc.URL, 5*time.Second))

	view, err := widget.Upload(context.Background(), "s1", sampleResume())
	require.NoError(t, err)

	assert.Equal(t, models.StatusSuccess, view.Status)
	assert.Empty(t, view.Suggestions)
	assert.Nil(t, view.Download)
	assert.Nil(t, view.DocumentError)
}

func TestEnhanceWidget_SuggestionsAndDocument(t *testing.T) {
	doc := minimalPDF("Enhanced")
	svc := newFakeService(t, http.StatusOK, map[string]any{
		"suggestions":  []string{"Quantify impact", "Lead with skills"},
		"enhanced_pdf": base64.StdEncoding.EncodeToString(doc),
	})
	widget, _ := newTestEnhanceWidget(t, NewEnhanceClient(svc.URL, 5*time.Second))
	ctx := context.Background()

	view, err := widget.Upload(ctx, "s1", sampleResume())
	require.NoError(t, err)

	assert.Equal(t, []string{"Quantify impact", "Lead with skills"}, view.Suggestions)
	require.NotNil(t, view.Download)
	assert.Equal(t, models.EnhancedFilename, view.Download.Filename)
	assert.Equal(t, 1, view.Download.PageCount)

	download, err := widget.Download(ctx, "s1", view.Download.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(len(doc)), download.Size)

	_, err = widget.Download(ctx, "s2", view.Download.ID)
	assert.True(t, IsDownloadNotFound(err))
}

func TestEnhanceWidget_MalformedDocumentKeepsSuggestions(t *testing.T) {
	widget, _ := newTestEnhanceWidget(t, enhanceFunc(func(ctx context.Context, file ResumeFile) (*EnhanceOutcome, error) {
		return &EnhanceOutcome{
			EnhanceResult: models.EnhanceResult{Suggestions: []string{"Shorter summary"}},
			DocumentErr:   apperror.MalformedDocument("enhance", errors.New("illegal base64 data")),
		}, nil
	}))

	view, err := widget.Upload(context.Background(), "s1", sampleResume())
	require.NoError(t, err)

	assert.Equal(t, models.StatusSuccess, view.Status)
	assert.Equal(t, []string{"Shorter summary"}, view.Suggestions)
	assert.Nil(t, view.Download)
	require.NotNil(t, view.DocumentError)
	assert.Equal(t, string(apperror.KindMalformedDocument), view.DocumentError.Kind)
}

func TestEnhanceWidget_UnreadablePDFIsStillOffered(t *testing.T) {
	widget, store := newTestEnhanceWidget(t, enhanceFunc(func(ctx context.Context, file ResumeFile) (*EnhanceOutcome, error) {
		return &EnhanceOutcome{EnhanceResult: models.EnhanceResult{Document: []byte("not really a pdf")}}, nil
	}))

	view, err := widget.Upload(context.Background(), "s1", sampleResume())
	require.NoError(t, err)

	require.NotNil(t, view.Download)
	assert.Equal(t, 0, view.Download.PageCount)
	assert.True(t, store.Exists("s1", view.Download.ID))
}

func TestEnhanceWidget_NewUploadReleasesPreviousDocument(t *testing.T) {
	widget, store := newTestEnhanceWidget(t, enhanceFunc(func(ctx context.Context, file ResumeFile) (*EnhanceOutcome, error) {
		return &EnhanceOutcome{EnhanceResult: models.EnhanceResult{
			Suggestions: []string{file.Filename},
			Document:    []byte("%PDF-1.4 " + file.Filename),
		}}, nil
	}))
	ctx := context.Background()

	first, err := widget.Upload(ctx, "s1", ResumeFile{Filename: "one.pdf"})
	require.NoError(t, err)
	second, err := widget.Upload(ctx, "s1", ResumeFile{Filename: "two.pdf"})
	require.NoError(t, err)

	assert.False(t, store.Exists("s1", first.Download.ID))
	assert.True(t, store.Exists("s1", second.Download.ID))
	assert.Equal(t, []string{"two.pdf"}, second.Suggestions)
}

func TestEnhanceWidget_StaleDocumentIsReleased(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})

	widget, store := newTestEnhanceWidget(t, enhanceFunc(func(ctx context.Context, file ResumeFile) (*EnhanceOutcome, error) {
		if file.Filename == "old.pdf" {
			close(firstStarted)
			<-releaseFirst
		}
		return &EnhanceOutcome{EnhanceResult: models.EnhanceResult{
			Suggestions: []string{file.Filename},
			Document:    []byte("%PDF-1.4 " + file.Filename),
		}}, nil
	}))
	ctx := context.Background()

	firstDone := make(chan *models.EnhanceView, 1)
	go func() {
		view, _ := widget.Upload(ctx, "s1", ResumeFile{Filename: "old.pdf"})
		firstDone <- view
	}()
	<-firstStarted

	newer, err := widget.Upload(ctx, "s1", ResumeFile{Filename: "new.pdf"})
	require.NoError(t, err)

	close(releaseFirst)
	stale := <-firstDone
	require.NotNil(t, stale)
	assert.Equal(t, []string{"new.pdf"}, stale.Suggestions)

	final, err := widget.View(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"new.pdf"}, final.Suggestions)
	require.NotNil(t, final.Download)
	assert.Equal(t, newer.Download.ID, final.Download.ID)
	assert.True(t, store.Exists("s1", newer.Download.ID))

	removed, err := store.Sweep(ctx, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed, "only the current document should have been held")
}

func TestEnhanceWidget_ResetReleasesDocument(t *testing.T) {
	widget, store := newTestEnhanceWidget(t, enhanceFunc(func(ctx context.Context, file ResumeFile) (*EnhanceOutcome, error) {
		return &EnhanceOutcome{EnhanceResult: models.EnhanceResult{Document: []byte("%PDF-1.4")}}, nil
	}))
	ctx := context.Background()

	view, err := widget.Upload(ctx, "s1", sampleResume())
	require.NoError(t, err)
	require.NotNil(t, view.Download)

	require.NoError(t, widget.Reset(ctx, "s1"))

	assert.False(t, store.Exists("s1", view.Download.ID))
	after, err := widget.View(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusIdle, after.Status)
	assert.Nil(t, after.Download)
}

func TestEnhanceWidget_ViewDropsExpiredDownload(t *testing.T) {
	widget, store := newTestEnhanceWidget(t, enhanceFunc(func(ctx context.Context, file ResumeFile) (*EnhanceOutcome, error) {
		return &EnhanceOutcome{EnhanceResult: models.EnhanceResult{
			Suggestions: []string{"keep me"},
			Document:    []byte("%PDF-1.4"),
		}}, nil
	}))
	ctx := context.Background()

	view, err := widget.Upload(ctx, "s1", sampleResume())
	require.NoError(t, err)
	require.NoError(t, store.Release(view.Download.ID))

	after, err := widget.View(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, after.Download)
	assert.Equal(t, []string{"keep me"}, after.Suggestions)
}
