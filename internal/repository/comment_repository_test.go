package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
)

func newCommentRepoMock(t *testing.T) (*CommentRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return NewCommentRepository(sqlxDB), mock, func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		sqlxDB.Close()
	}
}

var commentRowColumns = []string{"id", "student_id", "class_id", "month", "content", "ai_suggested", "author_id", "created_at", "updated_at"}

func TestCommentRepositoryListFiltersByClassAndMonth(t *testing.T) {
	repo, mock, cleanup := newCommentRepoMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(`FROM monthly_comments WHERE class_id = \$1 AND month = \$2`).
		WithArgs("cls-A", "2024-05").
		WillReturnRows(sqlmock.NewRows(commentRowColumns).
			AddRow("c-1", "stu-1", "cls-A", "2024-05", "Tiến bộ tốt", true, "teacher-1", now, now))

	comments, err := repo.List(context.Background(), models.MonthlyCommentFilter{ClassID: "cls-A", Month: "2024-05"})
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.True(t, comments[0].AISuggested)
}

func TestCommentRepositoryUpsertReturnsStoredRow(t *testing.T) {
	repo, mock, cleanup := newCommentRepoMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("INSERT INTO monthly_comments").
		WithArgs("c-new", "stu-1", "cls-A", "2024-05", "Chăm chỉ", false, "teacher-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(commentRowColumns).
			AddRow("c-old", "stu-1", "cls-A", "2024-05", "Chăm chỉ", false, "teacher-1", now, now))

	stored, err := repo.Upsert(context.Background(), &models.MonthlyComment{
		ID: "c-new", StudentID: "stu-1", ClassID: "cls-A", Month: "2024-05", Content: "Chăm chỉ", AuthorID: "teacher-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "c-old", stored.ID)
}

func TestCommentRepositoryDeleteMissing(t *testing.T) {
	repo, mock, cleanup := newCommentRepoMock(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM monthly_comments").
		WithArgs("c-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "c-1")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}
