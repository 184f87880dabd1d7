package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-studio/internal/models"
)

func newTestRedisRepository(t *testing.T, ttl time.Duration) (ViewRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisViewRepository(client, ttl), mr
}

func sampleScoreView() *models.ScoreView {
	return &models.ScoreView{
		Status:     models.StatusSuccess,
		Generation: 7,
		Result: &models.MatchResult{
			Score:           72,
			MatchedKeywords: []string{"python"},
			MissingKeywords: []string{"java"},
		},
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func sampleEnhanceView() *models.EnhanceView {
	return &models.EnhanceView{
		Status:      models.StatusSuccess,
		Generation:  3,
		Suggestions: []string{"Quantify impact", "Lead with skills"},
		Download: &models.DownloadRef{
			ID:        "d-1",
			Filename:  models.EnhancedFilename,
			Size:      1024,
			PageCount: 2,
			CreatedAt: time.Now().UTC().Truncate(time.Second),
		},
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestViewRepositories(t *testing.T) {
	repos := map[string]func(t *testing.T) ViewRepository{
		"memory": func(t *testing.T) ViewRepository { return NewMemoryViewRepository(time.Hour) },
		"redis": func(t *testing.T) ViewRepository {
			repo, _ := newTestRedisRepository(t, time.Hour)
			return repo
		},
	}

	for name, newRepo := range repos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("missing views are idle", func(t *testing.T) {
				repo := newRepo(t)

				score, err := repo.GetScore(ctx, "nobody")
				require.NoError(t, err)
				assert.Equal(t, models.StatusIdle, score.Status)
				assert.Nil(t, score.Result)

				enhance, err := repo.GetEnhance(ctx, "nobody")
				require.NoError(t, err)
				assert.Equal(t, models.StatusIdle, enhance.Status)
				assert.Nil(t, enhance.Download)
			})

			t.Run("round trip", func(t *testing.T) {
				repo := newRepo(t)

				require.NoError(t, repo.SaveScore(ctx, "s1", sampleScoreView()))
				require.NoError(t, repo.SaveEnhance(ctx, "s1", sampleEnhanceView()))

				score, err := repo.GetScore(ctx, "s1")
				require.NoError(t, err)
				assert.Equal(t, sampleScoreView().Result, score.Result)
				assert.Equal(t, uint64(7), score.Generation)

				enhance, err := repo.GetEnhance(ctx, "s1")
				require.NoError(t, err)
				assert.Equal(t, sampleEnhanceView().Suggestions, enhance.Suggestions)
				assert.Equal(t, "d-1", enhance.Download.ID)
			})

			t.Run("delete is per widget", func(t *testing.T) {
				repo := newRepo(t)

				require.NoError(t, repo.SaveScore(ctx, "s1", sampleScoreView()))
				require.NoError(t, repo.SaveEnhance(ctx, "s1", sampleEnhanceView()))
				require.NoError(t, repo.Delete(ctx, "s1", models.WidgetScore))

				score, err := repo.GetScore(ctx, "s1")
				require.NoError(t, err)
				assert.Equal(t, models.StatusIdle, score.Status)

				enhance, err := repo.GetEnhance(ctx, "s1")
				require.NoError(t, err)
				assert.Equal(t, models.StatusSuccess, enhance.Status)
			})

			t.Run("sessions are isolated", func(t *testing.T) {
				repo := newRepo(t)

				require.NoError(t, repo.SaveScore(ctx, "s1", sampleScoreView()))

				score, err := repo.GetScore(ctx, "s2")
				require.NoError(t, err)
				assert.Nil(t, score.Result)
			})
		})
	}
}

func TestRedisViewRepository_TTL(t *testing.T) {
	repo, mr := newTestRedisRepository(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.SaveScore(ctx, "s1", sampleScoreView()))
	assert.Equal(t, time.Minute, mr.TTL("rs:view:score:s1"))

	mr.FastForward(40 * time.Second)
	_, err := repo.GetScore(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL("rs:view:score:s1"), "reads extend the session")

	mr.FastForward(2 * time.Minute)
	score, err := repo.GetScore(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusIdle, score.Status)
}

func TestRedisViewRepository_Unavailable(t *testing.T) {
	repo, mr := newTestRedisRepository(t, time.Minute)
	mr.Close()

	_, err := repo.GetScore(context.Background(), "s1")
	assert.Error(t, err)
}

func TestMemoryViewRepository_Sweep(t *testing.T) {
	repo := NewMemoryViewRepository(time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.SaveScore(ctx, "s1", sampleScoreView()))
	require.NoError(t, repo.SaveEnhance(ctx, "s2", sampleEnhanceView()))

	removed, err := repo.Sweep(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	removed, err = repo.Sweep(ctx, time.Now().Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	score, err := repo.GetScore(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusIdle, score.Status)
}
