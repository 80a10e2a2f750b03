package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
)

// AttendanceService reads sessions and records attendance.
type AttendanceService struct {
	sessions  SessionStore
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(sessions SessionStore, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{sessions: sessions, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// GetSession returns a session with its attendance roster.
func (s *AttendanceService) GetSession(ctx context.Context, id string) (*models.Session, error) {
	return fetchSession(ctx, s.sessions, s.metrics, s.logger, id)
}

// ListClassSessions lists a class's sessions within [from, to], ordered by date.
func (s *AttendanceService) ListClassSessions(ctx context.Context, classID string, query dto.ListSessionsQuery) ([]models.Session, error) {
	if strings.TrimSpace(classID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class id is required")
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date range")
	}
	if query.From != "" && query.To != "" && query.From > query.To {
		return nil, appErrors.Clone(appErrors.ErrValidation, "from must not be after to")
	}

	start := time.Now()
	sessions, err := s.sessions.ListByClass(ctx, classID, query.From, query.To)
	s.metrics.ObserveStoreOperation("list", err, time.Since(start))
	if err != nil {
		s.logger.Error("failed to list sessions", zap.String("class_id", classID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	return sessions, nil
}

// MarkAttendance replaces the attendance fields of one student's record and
// returns the updated record. Excused clears present and late; late implies present.
func (s *AttendanceService) MarkAttendance(ctx context.Context, sessionID, studentID string, req dto.MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	update := normaliseAttendance(req)

	session, err := fetchSession(ctx, s.sessions, s.metrics, s.logger, sessionID)
	if err != nil {
		return nil, err
	}
	record := session.FindRecord(studentID)
	if record == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student has no attendance record in this session")
	}

	start := time.Now()
	err = s.sessions.UpdateAttendance(ctx, sessionID, record.Key, update.Fields())
	s.metrics.ObserveStoreOperation("update_attendance", err, time.Since(start))
	if err != nil {
		s.logger.Error("failed to update attendance",
			zap.String("session_id", sessionID),
			zap.String("student_id", studentID),
			zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}

	_ = s.cache.Invalidate(ctx, ScoreCacheKey(sessionID, studentID))

	record.Present = update.Present
	record.Late = update.Late
	record.Excused = update.Excused
	record.HomeworkPercent = update.HomeworkPercent
	record.TestName = update.TestName
	record.TestScore = update.TestScore
	record.BonusPoints = update.BonusPoints
	record.Note = update.Note
	return record, nil
}

func normaliseAttendance(req dto.MarkAttendanceRequest) models.AttendanceUpdate {
	update := models.AttendanceUpdate{
		Present:         req.Present,
		Late:            req.Late,
		Excused:         req.Excused,
		HomeworkPercent: req.HomeworkPercent,
		TestName:        strings.TrimSpace(req.TestName),
		TestScore:       req.TestScore,
		BonusPoints:     req.BonusPoints,
		Note:            strings.TrimSpace(req.Note),
	}
	switch {
	case update.Excused:
		update.Present = false
		update.Late = false
	case update.Late:
		update.Present = true
	}
	return update
}
