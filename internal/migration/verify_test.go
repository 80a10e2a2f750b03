package migration

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
)

type mapReader map[string]*models.Session

func (m mapReader) Get(ctx context.Context, id string) (*models.Session, error) {
	s, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("get session %s: %w", id, sql.ErrNoRows)
	}
	clone := *s
	return &clone, nil
}

func TestVerifySessions(t *testing.T) {
	source := &fakeSource{collections: map[string]map[string]interface{}{
		"sessions": {
			"sess-1": map[string]interface{}{"classId": "cls-A", "date": "2024-05-10"},
			"sess-2": map[string]interface{}{"classId": "cls-A", "date": "2024-05-17"},
			"sess-3": map[string]interface{}{"classId": "cls-A", "date": "2024-05-24"},
			"broken": map[string]interface{}{"classId": "cls-A"},
		},
	}}
	score := 8.5
	legacy := mapReader{
		"sess-1": {ID: "sess-1", ClassID: "cls-A", Date: "2024-05-10", AttendanceRecords: []models.AttendanceRecord{{Key: "0", StudentID: "stu-1", TestScore: &score}}},
		"sess-2": {ID: "sess-2", ClassID: "cls-A", Date: "2024-05-17", AttendanceRecords: []models.AttendanceRecord{{Key: "0", StudentID: "stu-1", Present: true}}},
		"sess-3": {ID: "sess-3", ClassID: "cls-A", Date: "2024-05-24"},
	}
	migrated := mapReader{
		"sess-1": {ID: "sess-1", ClassID: "cls-A", Date: "2024-05-10", AttendanceRecords: []models.AttendanceRecord{{Key: "0", StudentID: "stu-1", TestScore: &score}}},
		"sess-2": {ID: "sess-2", ClassID: "cls-A", Date: "2024-05-17", AttendanceRecords: []models.AttendanceRecord{{Key: "0", StudentID: "stu-1"}}},
	}

	mismatches, err := NewVerifier(source, legacy, migrated, nil).VerifySessions(context.Background())
	require.NoError(t, err)
	require.Len(t, mismatches, 2)
	assert.Equal(t, "sess-2", mismatches[0].SessionID)
	assert.Equal(t, "attendance records differ", mismatches[0].Reason)
	assert.Equal(t, "sess-3", mismatches[1].SessionID)
	assert.Contains(t, mismatches[1].Reason, "migrated read failed")
}
