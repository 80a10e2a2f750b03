package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
)

type brokenCache struct{}

func (brokenCache) Get(context.Context, string, interface{}) error { return errors.New("down") }
func (brokenCache) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("down")
}
func (brokenCache) Delete(context.Context, ...string) error { return errors.New("down") }

func TestCacheServiceDisabled(t *testing.T) {
	svc := NewCacheService(newMemoryCache(), nil, 0, zap.NewNop(), false)

	var dest []models.ScoreDetail
	hit, err := svc.Get(context.Background(), "k", &dest)
	assert.False(t, hit)
	assert.NoError(t, err)
	assert.NoError(t, svc.Set(context.Background(), "k", []models.ScoreDetail{}, 0))
	assert.NoError(t, svc.Invalidate(context.Background(), "k"))
}

func TestCacheServiceHitAndInvalidate(t *testing.T) {
	metrics := NewMetricsService("postgres")
	repo := newMemoryCache()
	svc := NewCacheService(repo, metrics, time.Minute, zap.NewNop(), true)
	key := ScoreCacheKey("sess-1", "stu-1")
	assert.Equal(t, "scores:sess-1:stu-1", key)

	require.NoError(t, svc.Set(context.Background(), key, []models.ScoreDetail{{Name: "Miệng"}}, 0))

	var dest []models.ScoreDetail
	hit, err := svc.Get(context.Background(), key, &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "Miệng", dest[0].Name)

	require.NoError(t, svc.Invalidate(context.Background(), key))
	hit, err = svc.Get(context.Background(), key, &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheMisses))
}

func TestCacheServiceSurfacesBackendErrors(t *testing.T) {
	svc := NewCacheService(brokenCache{}, nil, 0, zap.NewNop(), true)

	var dest []models.ScoreDetail
	hit, err := svc.Get(context.Background(), "k", &dest)
	assert.False(t, hit)
	assert.Error(t, err)
	assert.Error(t, svc.Invalidate(context.Background(), "k"))
}

func TestMetricsServiceGuardFailures(t *testing.T) {
	metrics := NewMetricsService("firebase")
	metrics.RecordGuardFailure("CLASS_MISMATCH")
	metrics.RecordGuardFailure("CLASS_MISMATCH")

	expected := `
# HELP score_guard_failures_total Score writes rejected by session or class guards
# TYPE score_guard_failures_total counter
score_guard_failures_total{kind="CLASS_MISMATCH",store="firebase"} 2
`
	require.NoError(t, testutil.CollectAndCompare(metrics.guardFailures, strings.NewReader(expected), "score_guard_failures_total"))

	var nilMetrics *MetricsService
	assert.NotPanics(t, func() { nilMetrics.RecordGuardFailure("X") })
}
