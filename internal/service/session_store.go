package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
)

// SessionStore reads session documents and patches single attendance records.
// Missing sessions and records are reported as wrapped sql.ErrNoRows.
type SessionStore interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	ListByClass(ctx context.Context, classID, from, to string) ([]models.Session, error)
	UpdateScoreDetails(ctx context.Context, sessionID, recordKey string, details []models.ScoreDetail) error
	UpdateAttendance(ctx context.Context, sessionID, recordKey string, fields map[string]interface{}) error
}

// fetchSession reads a session and translates store errors: a missing
// session becomes SESSION_NOT_FOUND, anything else PERSISTENCE_ERROR.
func fetchSession(ctx context.Context, store SessionStore, metrics *MetricsService, logger *zap.Logger, sessionID string) (*models.Session, error) {
	start := time.Now()
	session, err := store.Get(ctx, sessionID)
	metrics.ObserveStoreOperation("get", err, time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrSessionNotFound, "")
		}
		logger.Error("failed to fetch session", zap.String("session_id", sessionID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}
	return session, nil
}
