package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
)

func newSessionRepoMock(t *testing.T) (*SessionRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return NewSessionRepository(sqlxDB), mock, func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		sqlxDB.Close()
	}
}

var sessionRowColumns = []string{"id", "class_id", "class_name", "date", "start_time", "end_time", "teacher", "attendance_records"}

const sessionRecordsJSON = `[
  {"studentId": "stu-1", "studentName": "An", "present": true, "homeworkPercent": "80",
   "testName": "Kiểm tra 15 phút", "testScore": 8.5,
   "scoreDetails": [{"name": "Bài tập nhóm", "score": 9, "date": "2024-05-10", "sessionId": "sess-1", "classId": "cls-A"}]},
  {"studentId": "stu-2", "present": "false", "testScore": "abc"}
]`

func TestSessionRepositoryGet(t *testing.T) {
	repo, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id, class_id").
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows(sessionRowColumns).
			AddRow("sess-1", "cls-A", "Toán 9", "2024-05-10", "18:00", "19:30", "Cô Lan", []byte(sessionRecordsJSON)))

	session, err := repo.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "cls-A", session.ClassID)
	require.Len(t, session.AttendanceRecords, 2)

	first := session.AttendanceRecords[0]
	assert.Equal(t, "0", first.Key)
	assert.Equal(t, 80.0, first.HomeworkPercent)
	require.NotNil(t, first.TestScore)
	assert.Equal(t, 8.5, *first.TestScore)
	require.Len(t, first.ScoreDetails, 1)
	assert.Equal(t, "Bài tập nhóm", first.ScoreDetails[0].Name)

	second := session.AttendanceRecords[1]
	assert.Equal(t, "1", second.Key)
	assert.False(t, second.Present)
	assert.Nil(t, second.TestScore)
	assert.Empty(t, second.ScoreDetails)
}

func TestSessionRepositoryGetNotFound(t *testing.T) {
	repo, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id, class_id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestSessionRepositoryListByClass(t *testing.T) {
	repo, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id, class_id").
		WithArgs("cls-A", "2024-05-01", "2024-05-31").
		WillReturnRows(sqlmock.NewRows(sessionRowColumns).
			AddRow("sess-1", "cls-A", "", "2024-05-03", "18:00", "19:30", "Cô Lan", []byte(`[]`)).
			AddRow("sess-2", "cls-A", "", "2024-05-10", "18:00", "19:30", "Cô Lan", nil))

	sessions, err := repo.ListByClass(context.Background(), "cls-A", "2024-05-01", "2024-05-31")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "sess-1", sessions[0].ID)
	assert.Empty(t, sessions[1].AttendanceRecords)
}

func TestSessionRepositoryUpdateScoreDetails(t *testing.T) {
	repo, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	payload := `[{"name":"Bài tập nhóm","score":9,"date":"2024-05-10","note":"","sessionId":"sess-1","classId":"cls-A"}]`
	mock.ExpectExec("UPDATE sessions").
		WithArgs("sess-1", sqlmock.AnyArg(), payload, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateScoreDetails(context.Background(), "sess-1", "0", []models.ScoreDetail{
		{Name: "Bài tập nhóm", Score: 9, Date: "2024-05-10", SessionID: "sess-1", ClassID: "cls-A"},
	})
	require.NoError(t, err)
}

func TestSessionRepositoryUpdateScoreDetailsEmptyList(t *testing.T) {
	repo, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE sessions").
		WithArgs("sess-1", sqlmock.AnyArg(), "[]", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateScoreDetails(context.Background(), "sess-1", "0", nil))
}

func TestSessionRepositoryUpdateAttendanceMissingRecord(t *testing.T) {
	repo, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE sessions").
		WithArgs("sess-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateAttendance(context.Background(), "sess-1", "7", map[string]interface{}{"present": true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}
