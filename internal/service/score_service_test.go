package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
)

var currentScope = models.ScoreScope{SessionID: "sess-1", ClassID: "cls-A"}

func newTestScoreService(store *fakeSessionStore, cache *memoryCache) *ScoreService {
	var cacheSvc *CacheService
	if cache != nil {
		cacheSvc = NewCacheService(cache, nil, 0, zap.NewNop(), true)
	}
	return NewScoreService(store, cacheSvc, nil, nil, zap.NewNop())
}

func TestLoadScoresSynthesisesTestScoreFirst(t *testing.T) {
	scores := LoadScores(sampleSession(), "stu-1")

	require.Len(t, scores, 2)
	assert.Equal(t, models.ScoreDetail{
		Name:      "Kiểm tra 15 phút",
		Score:     8.5,
		Date:      "2024-05-10",
		Note:      "Điểm kiểm tra lớp Toán 9A ngày 10/05/2024",
		SessionID: "sess-1",
		ClassID:   "cls-A",
	}, scores[0])
	assert.Equal(t, "Miệng", scores[1].Name)
	assert.Equal(t, "sess-1", scores[1].SessionID)
	assert.Equal(t, "cls-A", scores[1].ClassID)
}

func TestLoadScoresFallsBackToClassIDInNote(t *testing.T) {
	session := sampleSession()
	session.ClassName = ""

	scores := LoadScores(session, "stu-1")
	require.NotEmpty(t, scores)
	assert.Equal(t, "Điểm kiểm tra lớp cls-A ngày 10/05/2024", scores[0].Note)
}

func TestLoadScoresEmptyWithoutRecord(t *testing.T) {
	scores := LoadScores(sampleSession(), "stu-404")
	assert.NotNil(t, scores)
	assert.Empty(t, scores)
}

func TestLoadScoresSkipsIncompleteTestScore(t *testing.T) {
	session := sampleSession()
	session.AttendanceRecords[0].TestName = "   "

	scores := LoadScores(session, "stu-1")
	require.Len(t, scores, 1)
	assert.Equal(t, "Miệng", scores[0].Name)

	session.AttendanceRecords[0].TestName = "Kiểm tra"
	session.AttendanceRecords[0].TestScore = nil
	scores = LoadScores(session, "stu-1")
	require.Len(t, scores, 1)
}

func TestLoadScoresOnlyCurrentSessionAndIdempotent(t *testing.T) {
	session := sampleSession()

	first := LoadScores(session, "stu-1")
	second := LoadScores(session, "stu-1")

	assert.Equal(t, first, second)
	for _, score := range first {
		assert.Equal(t, session.ID, score.SessionID)
	}
}

func TestScoreServiceUpsertAppends(t *testing.T) {
	store := newFakeSessionStore(sampleSession())
	cache := newMemoryCache()
	svc := newTestScoreService(store, cache)

	scores, err := svc.Upsert(context.Background(), currentScope, "stu-1", dto.ScoreCandidate{
		Name: "Bài tập nhóm", Score: 9, Date: "2024-05-10",
	}, nil)
	require.NoError(t, err)

	require.Len(t, store.scoreWrites, 1)
	write := store.scoreWrites[0]
	assert.Equal(t, "sess-1", write.sessionID)
	assert.Equal(t, "0", write.recordKey)
	require.Len(t, write.details, 2)
	assert.Equal(t, "Miệng", write.details[0].Name)
	assert.Equal(t, models.ScoreDetail{Name: "Bài tập nhóm", Score: 9, Date: "2024-05-10", SessionID: "sess-1", ClassID: "cls-A"}, write.details[1])
	for _, detail := range write.details {
		assert.Equal(t, currentScope, detail.Scope())
	}

	require.Len(t, scores, 3)
	assert.Equal(t, "Kiểm tra 15 phút", scores[0].Name)
	assert.Equal(t, "Bài tập nhóm", scores[2].Name)
	assert.Equal(t, scores, cache.values[ScoreCacheKey("sess-1", "stu-1")])
}

func TestScoreServiceUpsertEditsLegacyEntry(t *testing.T) {
	store := newFakeSessionStore(sampleSession())
	svc := newTestScoreService(store, nil)

	scores, err := svc.Upsert(context.Background(), currentScope, "stu-1",
		dto.ScoreCandidate{Name: "Miệng", Score: 7.5, Date: "2024-05-10", Note: "sửa"},
		&models.ScoreKey{Name: "Miệng", Date: "2024-05-10"})
	require.NoError(t, err)

	require.Len(t, store.scoreWrites, 1)
	details := store.scoreWrites[0].details
	require.Len(t, details, 1)
	assert.Equal(t, 7.5, details[0].Score)
	assert.Equal(t, "sửa", details[0].Note)
	assert.Equal(t, currentScope, details[0].Scope())
	require.Len(t, scores, 2)
}

func TestScoreServiceUpsertEditingMissingEntry(t *testing.T) {
	store := newFakeSessionStore(sampleSession())
	svc := newTestScoreService(store, nil)

	_, err := svc.Upsert(context.Background(), currentScope, "stu-1",
		dto.ScoreCandidate{Name: "Miệng", Score: 7, Date: "2024-05-10"},
		&models.ScoreKey{Name: "Không có", Date: "2024-05-10", SessionID: "sess-1", ClassID: "cls-A"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
	assert.Empty(t, store.scoreWrites)
}

func TestScoreServiceUpsertDuplicateAddConflicts(t *testing.T) {
	cases := map[string]dto.ScoreCandidate{
		"manual entry": {Name: "Miệng", Score: 9, Date: "2024-05-10"},
		"test score":   {Name: "Kiểm tra 15 phút", Score: 9, Date: "2024-05-10"},
	}
	for name, candidate := range cases {
		t.Run(name, func(t *testing.T) {
			store := newFakeSessionStore(sampleSession())
			svc := newTestScoreService(store, nil)

			_, err := svc.Upsert(context.Background(), currentScope, "stu-1", candidate, nil)
			require.Error(t, err)
			assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
			assert.Empty(t, store.scoreWrites)
		})
	}
}

func TestScoreServiceWriteDropsSameSessionOtherClassEntry(t *testing.T) {
	session := sampleSession()
	session.AttendanceRecords[0].ScoreDetails = append(session.AttendanceRecords[0].ScoreDetails,
		models.ScoreDetail{Name: "Lạc lớp", Score: 5, Date: "2024-05-10", SessionID: "sess-1", ClassID: "cls-B"})

	// Load filters on the session key only, so the entry is displayed.
	loaded := LoadScores(session, "stu-1")
	require.Len(t, loaded, 3)
	assert.Equal(t, "Lạc lớp", loaded[2].Name)
	assert.Equal(t, "cls-B", loaded[2].ClassID)

	store := newFakeSessionStore(session)
	svc := newTestScoreService(store, nil)

	scores, err := svc.Upsert(context.Background(), currentScope, "stu-1", dto.ScoreCandidate{
		Name: "Bài tập nhóm", Score: 9, Date: "2024-05-10",
	}, nil)
	require.NoError(t, err)

	require.Len(t, store.scoreWrites, 1)
	for _, detail := range store.scoreWrites[0].details {
		assert.Equal(t, currentScope, detail.Scope())
		assert.NotEqual(t, "Lạc lớp", detail.Name)
	}
	for _, score := range scores {
		assert.Equal(t, "cls-A", score.ClassID)
	}

	_, err = svc.Delete(context.Background(), currentScope, "stu-1",
		models.ScoreKey{Name: "Lạc lớp", Date: "2024-05-10", SessionID: "sess-1", ClassID: "cls-B"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrClassMismatch))
	assert.Len(t, store.scoreWrites, 1)
}

func TestScoreServiceUpsertCrossSessionTouchesNothing(t *testing.T) {
	store := newFakeSessionStore(sampleSession())
	svc := newTestScoreService(store, nil)

	_, err := svc.Upsert(context.Background(), currentScope, "stu-1",
		dto.ScoreCandidate{Name: "Cũ", Score: 6, Date: "2024-04-01"},
		&models.ScoreKey{Name: "Cũ", Date: "2024-04-01", SessionID: "sess-2", ClassID: "cls-A"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrCrossSessionWrite))

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 409, appErr.Status)
	assert.Zero(t, store.storeCalls())
}

func TestScoreServiceUpsertClassMismatch(t *testing.T) {
	session := sampleSession()
	session.ClassID = "cls-B"
	store := newFakeSessionStore(session)
	svc := newTestScoreService(store, nil)

	_, err := svc.Upsert(context.Background(), currentScope, "stu-1",
		dto.ScoreCandidate{Name: "Bài tập nhóm", Score: 9, Date: "2024-05-10"}, nil)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrClassMismatch))
	assert.Equal(t, 1, store.getCalls)
	assert.Empty(t, store.scoreWrites)
}

func TestScoreServiceUpsertSessionNotFound(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestScoreService(store, nil)

	_, err := svc.Upsert(context.Background(), currentScope, "stu-1",
		dto.ScoreCandidate{Name: "Bài tập nhóm", Score: 9, Date: "2024-05-10"}, nil)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrSessionNotFound))
}

func TestScoreServiceUpsertStudentMissing(t *testing.T) {
	store := newFakeSessionStore(sampleSession())
	svc := newTestScoreService(store, nil)

	_, err := svc.Upsert(context.Background(), currentScope, "stu-404",
		dto.ScoreCandidate{Name: "Bài tập nhóm", Score: 9, Date: "2024-05-10"}, nil)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestScoreServiceUpsertPersistenceError(t *testing.T) {
	store := newFakeSessionStore(sampleSession())
	store.updateErr = errors.New("connection reset")
	cache := newMemoryCache()
	svc := newTestScoreService(store, cache)

	_, err := svc.Upsert(context.Background(), currentScope, "stu-1",
		dto.ScoreCandidate{Name: "Bài tập nhóm", Score: 9, Date: "2024-05-10"}, nil)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPersistence))
	assert.Empty(t, cache.values)
}

func TestScoreServiceUpsertValidation(t *testing.T) {
	cases := map[string]dto.ScoreCandidate{
		"missing name":  {Score: 5, Date: "2024-05-10"},
		"above ten":     {Name: "x", Score: 10.5, Date: "2024-05-10"},
		"negative":      {Name: "x", Score: -1, Date: "2024-05-10"},
		"not half step": {Name: "x", Score: 7.3, Date: "2024-05-10"},
		"bad date":      {Name: "x", Score: 7, Date: "10/05/2024"},
	}
	for name, candidate := range cases {
		t.Run(name, func(t *testing.T) {
			store := newFakeSessionStore(sampleSession())
			svc := newTestScoreService(store, nil)

			_, err := svc.Upsert(context.Background(), currentScope, "stu-1", candidate, nil)
			assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
			assert.Zero(t, store.storeCalls())
		})
	}
}

func TestScoreServiceDelete(t *testing.T) {
	store := newFakeSessionStore(sampleSession())
	svc := newTestScoreService(store, nil)

	scores, err := svc.Delete(context.Background(), currentScope, "stu-1", models.ScoreKey{Name: "Miệng", Date: "2024-05-10"})
	require.NoError(t, err)

	require.Len(t, store.scoreWrites, 1)
	assert.Empty(t, store.scoreWrites[0].details)
	assert.NotNil(t, store.scoreWrites[0].details)
	require.Len(t, scores, 1)
	assert.Equal(t, "Kiểm tra 15 phút", scores[0].Name)
}

func TestScoreServiceDeleteGuards(t *testing.T) {
	store := newFakeSessionStore(sampleSession())
	svc := newTestScoreService(store, nil)

	_, err := svc.Delete(context.Background(), currentScope, "stu-1",
		models.ScoreKey{Name: "Cũ", Date: "2024-04-01", SessionID: "sess-0", ClassID: "cls-A"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrCrossSessionWrite))
	assert.Zero(t, store.storeCalls())

	_, err = svc.Delete(context.Background(), currentScope, "stu-1", models.ScoreKey{Name: "Không có", Date: "2024-05-10"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
	assert.Empty(t, store.scoreWrites)
}

func TestScoreServiceLoadForSessionUsesCache(t *testing.T) {
	store := newFakeSessionStore(sampleSession())
	cache := newMemoryCache()
	svc := newTestScoreService(store, cache)

	first, hit, err := svc.LoadForSession(context.Background(), "sess-1", "stu-1", false)
	require.NoError(t, err)
	assert.False(t, hit)
	second, hit, err := svc.LoadForSession(context.Background(), "sess-1", "stu-1", false)
	require.NoError(t, err)
	assert.True(t, hit)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.getCalls)

	_, hit, err = svc.LoadForSession(context.Background(), "sess-1", "stu-1", true)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, store.getCalls)
}

func TestScoreServiceLoadForSessionErrors(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestScoreService(store, nil)

	_, _, err := svc.LoadForSession(context.Background(), "sess-1", "stu-1", false)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrSessionNotFound))

	store.getErr = errors.New("unreachable")
	_, _, err = svc.LoadForSession(context.Background(), "sess-1", "stu-1", false)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPersistence))
}

func TestNewValidatorRules(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Struct(dto.ScoreCandidate{Name: "x", Score: 9.5, Date: "2024-05-10"}))
	assert.NoError(t, v.Struct(dto.SaveCommentRequest{StudentID: "s", ClassID: "c", Month: "2024-05", Content: "ok"}))
	assert.Error(t, v.Struct(dto.SaveCommentRequest{StudentID: "s", ClassID: "c", Month: "2024-13", Content: "ok"}))
}
