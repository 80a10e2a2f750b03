package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"firebase.google.com/go/v4/db"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
)

const sessionsPath = "sessions"

// FirebaseSessionRepository reads and patches session documents stored in the
// Firebase Realtime Database under /sessions/{id}.
type FirebaseSessionRepository struct {
	client *db.Client
}

// NewFirebaseSessionRepository constructs the repository.
func NewFirebaseSessionRepository(client *db.Client) *FirebaseSessionRepository {
	return &FirebaseSessionRepository{client: client}
}

// Get fetches one session document. Missing documents return sql.ErrNoRows so
// callers treat both stores alike.
func (r *FirebaseSessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	var raw map[string]interface{}
	if err := r.client.NewRef(sessionsPath).Child(id).Get(ctx, &raw); err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("get session %s: %w", id, sql.ErrNoRows)
	}
	return decodeSession(id, raw), nil
}

// ListByClass queries sessions by classId and filters the date range locally.
// Requires ".indexOn": ["classId"] on /sessions.
func (r *FirebaseSessionRepository) ListByClass(ctx context.Context, classID, from, to string) ([]models.Session, error) {
	var raw map[string]map[string]interface{}
	if err := r.client.NewRef(sessionsPath).OrderByChild("classId").EqualTo(classID).Get(ctx, &raw); err != nil {
		return nil, fmt.Errorf("list sessions for class %s: %w", classID, err)
	}
	sessions := make([]models.Session, 0, len(raw))
	for id, doc := range raw {
		session := decodeSession(id, doc)
		if from != "" && session.Date < from {
			continue
		}
		if to != "" && session.Date > to {
			continue
		}
		sessions = append(sessions, *session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].Date != sessions[j].Date {
			return sessions[i].Date < sessions[j].Date
		}
		return sessions[i].StartTime < sessions[j].StartTime
	})
	return sessions, nil
}

// UpdateScoreDetails replaces the scoreDetails array of one attendance record
// with a single partial update.
func (r *FirebaseSessionRepository) UpdateScoreDetails(ctx context.Context, sessionID, recordKey string, details []models.ScoreDetail) error {
	ref := r.recordRef(sessionID, recordKey)
	if err := ref.Update(ctx, map[string]interface{}{"scoreDetails": encodeScoreDetails(details)}); err != nil {
		return fmt.Errorf("update score details for session %s: %w", sessionID, err)
	}
	return nil
}

// UpdateAttendance merges fields into one attendance record. Nil values
// remove the field, which is how a cleared test score is stored.
func (r *FirebaseSessionRepository) UpdateAttendance(ctx context.Context, sessionID, recordKey string, fields map[string]interface{}) error {
	if err := r.recordRef(sessionID, recordKey).Update(ctx, fields); err != nil {
		return fmt.Errorf("update attendance for session %s: %w", sessionID, err)
	}
	return nil
}

func (r *FirebaseSessionRepository) recordRef(sessionID, recordKey string) *db.Ref {
	return r.client.NewRef(sessionsPath).Child(sessionID).Child("attendanceRecords").Child(recordKey)
}
