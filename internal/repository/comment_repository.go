package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
)

const commentColumns = `id, student_id, class_id, month, content, ai_suggested, author_id, created_at, updated_at`

// CommentRepository persists monthly report comments.
type CommentRepository struct {
	db *sqlx.DB
}

// NewCommentRepository constructs the repository.
func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// List returns comments matching the filter ordered by student.
func (r *CommentRepository) List(ctx context.Context, filter models.MonthlyCommentFilter) ([]models.MonthlyComment, error) {
	var (
		conditions []string
		args       []interface{}
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("class_id", filter.ClassID)
	add("month", filter.Month)
	add("student_id", filter.StudentID)

	query := `SELECT ` + commentColumns + ` FROM monthly_comments`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY month DESC, student_id ASC`

	comments := make([]models.MonthlyComment, 0)
	if err := r.db.SelectContext(ctx, &comments, query, args...); err != nil {
		return nil, fmt.Errorf("list monthly comments: %w", err)
	}
	return comments, nil
}

// FindByID fetches a comment. Missing comments return sql.ErrNoRows.
func (r *CommentRepository) FindByID(ctx context.Context, id string) (*models.MonthlyComment, error) {
	query := `SELECT ` + commentColumns + ` FROM monthly_comments WHERE id = $1`
	var comment models.MonthlyComment
	if err := r.db.GetContext(ctx, &comment, query, id); err != nil {
		return nil, fmt.Errorf("find monthly comment %s: %w", id, err)
	}
	return &comment, nil
}

// Upsert writes the comment for its (student, class, month) and returns the stored row.
// The id of an existing row is kept.
func (r *CommentRepository) Upsert(ctx context.Context, comment *models.MonthlyComment) (*models.MonthlyComment, error) {
	const query = `INSERT INTO monthly_comments (id, student_id, class_id, month, content, ai_suggested, author_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
ON CONFLICT (student_id, class_id, month)
DO UPDATE SET content = EXCLUDED.content, ai_suggested = EXCLUDED.ai_suggested,
              author_id = EXCLUDED.author_id, updated_at = EXCLUDED.updated_at
RETURNING ` + commentColumns
	now := time.Now().UTC()
	var stored models.MonthlyComment
	err := r.db.GetContext(ctx, &stored, query,
		comment.ID, comment.StudentID, comment.ClassID, comment.Month,
		comment.Content, comment.AISuggested, comment.AuthorID, now)
	if err != nil {
		return nil, fmt.Errorf("upsert monthly comment: %w", err)
	}
	return &stored, nil
}

// Delete removes a comment by id. Missing comments return sql.ErrNoRows.
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM monthly_comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete monthly comment %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete monthly comment %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("delete monthly comment %s: %w", id, sql.ErrNoRows)
	}
	return nil
}
