package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
)

const sessionColumns = `id, class_id, class_name, date, start_time, end_time, teacher, attendance_records`

// sessionRow is the relational shape of a session; attendance records stay
// as a jsonb document.
type sessionRow struct {
	ID                string `db:"id"`
	ClassID           string `db:"class_id"`
	ClassName         string `db:"class_name"`
	Date              string `db:"date"`
	StartTime         string `db:"start_time"`
	EndTime           string `db:"end_time"`
	Teacher           string `db:"teacher"`
	AttendanceRecords []byte `db:"attendance_records"`
}

func (r sessionRow) toModel() (*models.Session, error) {
	var records interface{}
	if len(r.AttendanceRecords) > 0 {
		if err := json.Unmarshal(r.AttendanceRecords, &records); err != nil {
			return nil, fmt.Errorf("decode attendance records for session %s: %w", r.ID, err)
		}
	}
	return &models.Session{
		ID:                r.ID,
		ClassID:           r.ClassID,
		ClassName:         r.ClassName,
		Date:              r.Date,
		StartTime:         r.StartTime,
		EndTime:           r.EndTime,
		Teacher:           r.Teacher,
		AttendanceRecords: decodeAttendanceRecords(records),
	}, nil
}

// SessionRepository stores session documents in Postgres (Supabase).
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get fetches one session. Missing sessions return sql.ErrNoRows.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	var row sessionRow
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return row.toModel()
}

// ListByClass returns a class's sessions with from <= date <= to, ordered by date.
// Empty bounds are open.
func (r *SessionRepository) ListByClass(ctx context.Context, classID, from, to string) ([]models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions
WHERE class_id = $1 AND ($2::text = '' OR date >= $2::text) AND ($3::text = '' OR date <= $3::text)
ORDER BY date, start_time`
	var rows []sessionRow
	if err := r.db.SelectContext(ctx, &rows, query, classID, from, to); err != nil {
		return nil, fmt.Errorf("list sessions for class %s: %w", classID, err)
	}
	sessions := make([]models.Session, 0, len(rows))
	for _, row := range rows {
		session, err := row.toModel()
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, nil
}

// UpdateScoreDetails replaces the scoreDetails array of one attendance record.
func (r *SessionRepository) UpdateScoreDetails(ctx context.Context, sessionID, recordKey string, details []models.ScoreDetail) error {
	payload, err := json.Marshal(encodeScoreDetails(details))
	if err != nil {
		return fmt.Errorf("encode score details: %w", err)
	}
	query := `UPDATE sessions
SET attendance_records = jsonb_set(attendance_records, $2::text[], $3::jsonb, true), updated_at = NOW()
WHERE id = $1 AND attendance_records #> $4::text[] IS NOT NULL`
	res, err := r.db.ExecContext(ctx, query, sessionID, pq.Array([]string{recordKey, "scoreDetails"}), string(payload), pq.Array([]string{recordKey}))
	if err != nil {
		return fmt.Errorf("update score details for session %s: %w", sessionID, err)
	}
	return expectAffected(res, "update score details", sessionID)
}

// UpdateAttendance merges fields into one attendance record.
func (r *SessionRepository) UpdateAttendance(ctx context.Context, sessionID, recordKey string, fields map[string]interface{}) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode attendance fields: %w", err)
	}
	query := `UPDATE sessions
SET attendance_records = jsonb_set(attendance_records, $2::text[], (attendance_records #> $2::text[]) || $3::jsonb, false), updated_at = NOW()
WHERE id = $1 AND attendance_records #> $2::text[] IS NOT NULL`
	res, err := r.db.ExecContext(ctx, query, sessionID, pq.Array([]string{recordKey}), string(payload))
	if err != nil {
		return fmt.Errorf("update attendance for session %s: %w", sessionID, err)
	}
	return expectAffected(res, "update attendance", sessionID)
}

func expectAffected(res sql.Result, op, sessionID string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s for session %s: %w", op, sessionID, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s for session %s: %w", op, sessionID, sql.ErrNoRows)
	}
	return nil
}
