package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
)

// LoadScores reconciles the scores displayed for studentID in session: the
// session's test score (when both name and value are set) followed by the
// manual entries scoped to this session, in stored order. Entries without
// scoping keys are treated as belonging to this session.
func LoadScores(session *models.Session, studentID string) []models.ScoreDetail {
	scores := make([]models.ScoreDetail, 0)
	record := session.FindRecord(studentID)
	if record == nil {
		return scores
	}

	scope := session.Scope()
	if record.HasTestScore() {
		scores = append(scores, models.ScoreDetail{
			Name:      strings.TrimSpace(record.TestName),
			Score:     *record.TestScore,
			Date:      session.Date,
			Note:      testScoreNote(session),
			SessionID: scope.SessionID,
			ClassID:   scope.ClassID,
		})
	}

	for _, detail := range record.ScoreDetails {
		if detail.SessionID != "" && detail.SessionID != session.ID {
			continue
		}
		scores = append(scores, detail.WithDefaultScope(scope))
	}
	return scores
}

func testScoreNote(session *models.Session) string {
	return fmt.Sprintf("Điểm kiểm tra lớp %s ngày %s", session.ClassLabel(), displayDate(session.Date))
}

// displayDate renders YYYY-MM-DD as dd/mm/yyyy, leaving other input unchanged.
func displayDate(value string) string {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return value
	}
	return t.Format("02/01/2006")
}

// ScoreService edits the manual score entries of attendance records.
type ScoreService struct {
	sessions  SessionStore
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScoreService constructs a ScoreService.
func NewScoreService(sessions SessionStore, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ScoreService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoreService{sessions: sessions, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// LoadForSession returns the reconciled scores, served from the display cache
// unless refresh is set. cacheHit reports whether the cache answered.
func (s *ScoreService) LoadForSession(ctx context.Context, sessionID, studentID string, refresh bool) (scores []models.ScoreDetail, cacheHit bool, err error) {
	key := ScoreCacheKey(sessionID, studentID)
	if !refresh {
		var cached []models.ScoreDetail
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return cached, true, nil
		}
	}

	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	scores = LoadScores(session, studentID)
	_ = s.cache.Set(ctx, key, scores, 0)
	return scores, false, nil
}

// Upsert validates candidate and writes it into the scores of studentID in
// the current session. With editing set, the matching entry is replaced;
// otherwise the candidate is appended, unless an entry with the same identity
// tuple is already displayed, which is a conflict. It returns the reconciled list built
// from what was persisted.
func (s *ScoreService) Upsert(ctx context.Context, current models.ScoreScope, studentID string, candidate dto.ScoreCandidate, editing *models.ScoreKey) ([]models.ScoreDetail, error) {
	if err := s.validator.Struct(candidate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid score")
	}

	target := current
	var editKey models.ScoreKey
	if editing != nil {
		if err := s.validator.Struct(editing); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid editing target")
		}
		target = resolveScope(*editing, current)
		editKey = scopedKey(*editing, target)
	}

	session, record, err := s.loadTarget(ctx, current, target, studentID)
	if err != nil {
		return nil, err
	}

	stored := normaliseScores(record.ScoreDetails, target)
	entry := models.ScoreDetail{
		Name:      strings.TrimSpace(candidate.Name),
		Score:     candidate.Score,
		Date:      candidate.Date,
		Note:      strings.TrimSpace(candidate.Note),
		SessionID: target.SessionID,
		ClassID:   target.ClassID,
	}

	if editing != nil {
		idx := indexOfScore(stored, editKey)
		if idx < 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "score entry not found")
		}
		stored[idx] = entry
	} else {
		if indexOfScore(stored, entry.Key()) >= 0 || isTestScoreKey(session, record, entry.Key()) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "score entry already exists")
		}
		stored = append(stored, entry)
	}

	return s.persist(ctx, session, record, studentID, filterScope(stored, target))
}

// Delete removes the entry identified by target from the scores of studentID
// in the current session and returns the reconciled list.
func (s *ScoreService) Delete(ctx context.Context, current models.ScoreScope, studentID string, target models.ScoreKey) ([]models.ScoreDetail, error) {
	if err := s.validator.Struct(target); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid delete target")
	}

	scope := resolveScope(target, current)
	session, record, err := s.loadTarget(ctx, current, scope, studentID)
	if err != nil {
		return nil, err
	}

	stored := normaliseScores(record.ScoreDetails, scope)
	idx := indexOfScore(stored, scopedKey(target, scope))
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "score entry not found")
	}
	stored = append(stored[:idx], stored[idx+1:]...)

	return s.persist(ctx, session, record, studentID, filterScope(stored, scope))
}

// loadTarget applies the write guards and fetches the authoritative session.
// The session guard runs before any store access.
func (s *ScoreService) loadTarget(ctx context.Context, current, target models.ScoreScope, studentID string) (*models.Session, *models.AttendanceRecord, error) {
	if target.SessionID != current.SessionID {
		return nil, nil, s.guardFailure(appErrors.ErrCrossSessionWrite, current, target, studentID)
	}

	session, err := s.getSession(ctx, target.SessionID)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrSessionNotFound) {
			return nil, nil, s.guardFailure(appErrors.ErrSessionNotFound, current, target, studentID)
		}
		return nil, nil, err
	}
	if session.ClassID != target.ClassID {
		return nil, nil, s.guardFailure(appErrors.ErrClassMismatch, current, target, studentID)
	}

	record := session.FindRecord(studentID)
	if record == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "student has no attendance record in this session")
	}
	return session, record, nil
}

func (s *ScoreService) getSession(ctx context.Context, sessionID string) (*models.Session, error) {
	return fetchSession(ctx, s.sessions, s.metrics, s.logger, sessionID)
}

// persist writes details as the record's scoreDetails and rebuilds the
// display list from the written value.
func (s *ScoreService) persist(ctx context.Context, session *models.Session, record *models.AttendanceRecord, studentID string, details []models.ScoreDetail) ([]models.ScoreDetail, error) {
	start := time.Now()
	err := s.sessions.UpdateScoreDetails(ctx, session.ID, record.Key, details)
	s.metrics.ObserveStoreOperation("update_scores", err, time.Since(start))
	if err != nil {
		s.logger.Error("failed to persist scores",
			zap.String("session_id", session.ID),
			zap.String("student_id", studentID),
			zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}

	record.ScoreDetails = details
	scores := LoadScores(session, studentID)
	_ = s.cache.Set(ctx, ScoreCacheKey(session.ID, studentID), scores, 0)
	return scores, nil
}

func (s *ScoreService) guardFailure(kind *appErrors.Error, current, target models.ScoreScope, studentID string) error {
	s.metrics.RecordGuardFailure(kind.Code)
	s.logger.Warn("score write rejected",
		zap.String("kind", kind.Code),
		zap.String("current_session_id", current.SessionID),
		zap.String("current_class_id", current.ClassID),
		zap.String("target_session_id", target.SessionID),
		zap.String("target_class_id", target.ClassID),
		zap.String("student_id", studentID))
	return appErrors.Clone(kind, "")
}

// resolveScope returns the scope named by key, falling back per field to current.
func resolveScope(key models.ScoreKey, current models.ScoreScope) models.ScoreScope {
	scope := models.ScoreScope{SessionID: key.SessionID, ClassID: key.ClassID}
	if scope.SessionID == "" {
		scope.SessionID = current.SessionID
	}
	if scope.ClassID == "" {
		scope.ClassID = current.ClassID
	}
	return scope
}

func scopedKey(key models.ScoreKey, scope models.ScoreScope) models.ScoreKey {
	key.SessionID = scope.SessionID
	key.ClassID = scope.ClassID
	return key
}

// normaliseScores copies details with missing scoping keys backfilled from scope.
func normaliseScores(details []models.ScoreDetail, scope models.ScoreScope) []models.ScoreDetail {
	normalised := make([]models.ScoreDetail, 0, len(details)+1)
	for _, detail := range details {
		normalised = append(normalised, detail.WithDefaultScope(scope))
	}
	return normalised
}

func filterScope(details []models.ScoreDetail, scope models.ScoreScope) []models.ScoreDetail {
	filtered := make([]models.ScoreDetail, 0, len(details))
	for _, detail := range details {
		if detail.Scope() == scope {
			filtered = append(filtered, detail)
		}
	}
	return filtered
}

// isTestScoreKey reports whether key names the score synthesised from the
// record's test fields.
func isTestScoreKey(session *models.Session, record *models.AttendanceRecord, key models.ScoreKey) bool {
	if !record.HasTestScore() {
		return false
	}
	scope := session.Scope()
	return key == models.ScoreKey{
		Name:      strings.TrimSpace(record.TestName),
		Date:      session.Date,
		SessionID: scope.SessionID,
		ClassID:   scope.ClassID,
	}
}

func indexOfScore(details []models.ScoreDetail, key models.ScoreKey) int {
	for i, detail := range details {
		if detail.Key() == key {
			return i
		}
	}
	return -1
}
