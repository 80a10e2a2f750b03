package migration

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
)

// SessionReader fetches one decoded session.
type SessionReader interface {
	Get(ctx context.Context, id string) (*models.Session, error)
}

// Mismatch describes one session that reads differently from the two stores.
type Mismatch struct {
	SessionID string `json:"sessionId"`
	Reason    string `json:"reason"`
}

// Verifier reads every migrated session back from both stores and compares
// the decoded documents.
type Verifier struct {
	source Source
	legacy SessionReader
	target SessionReader
	logger *zap.Logger
}

// NewVerifier builds a verifier. legacy and target are usually the Firebase
// and Postgres session repositories.
func NewVerifier(source Source, legacy, target SessionReader, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{source: source, legacy: legacy, target: target, logger: logger}
}

// VerifySessions returns the sessions whose documents differ.
func (v *Verifier) VerifySessions(ctx context.Context) ([]Mismatch, error) {
	table, _ := TableFor("sessions")
	records, err := v.source.Read(ctx, table.Collection)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(records))
	for key, raw := range records {
		if _, err := table.MapRecord(key, raw); err != nil {
			continue
		}
		ids = append(ids, key)
	}
	sort.Strings(ids)

	mismatches := make([]Mismatch, 0)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return mismatches, err
		}
		if reason := v.compare(ctx, id); reason != "" {
			mismatches = append(mismatches, Mismatch{SessionID: id, Reason: reason})
			v.logger.Warn("session differs after migration", zap.String("session_id", id), zap.String("reason", reason))
		}
	}
	v.logger.Info("session verification finished", zap.Int("checked", len(ids)), zap.Int("mismatches", len(mismatches)))
	return mismatches, nil
}

func (v *Verifier) compare(ctx context.Context, id string) string {
	legacy, err := v.legacy.Get(ctx, id)
	if err != nil {
		return fmt.Sprintf("legacy read failed: %v", err)
	}
	migrated, err := v.target.Get(ctx, id)
	if err != nil {
		return fmt.Sprintf("migrated read failed: %v", err)
	}
	if legacy.ClassID != migrated.ClassID || legacy.Date != migrated.Date {
		return "class or date differs"
	}
	if len(legacy.AttendanceRecords) != len(migrated.AttendanceRecords) {
		return fmt.Sprintf("attendance records %d != %d", len(legacy.AttendanceRecords), len(migrated.AttendanceRecords))
	}
	if !reflect.DeepEqual(legacy, migrated) {
		return "attendance records differ"
	}
	return ""
}
