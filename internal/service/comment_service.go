package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
)

type commentRepository interface {
	List(ctx context.Context, filter models.MonthlyCommentFilter) ([]models.MonthlyComment, error)
	FindByID(ctx context.Context, id string) (*models.MonthlyComment, error)
	Upsert(ctx context.Context, comment *models.MonthlyComment) (*models.MonthlyComment, error)
	Delete(ctx context.Context, id string) error
}

// Completer produces a text completion for a system and user prompt.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

const suggestionSystemPrompt = "Bạn là giáo viên chủ nhiệm tại một trung tâm dạy thêm. " +
	"Viết nhận xét tháng ngắn gọn (3-5 câu) bằng tiếng Việt gửi phụ huynh, dựa trên số liệu được cung cấp. " +
	"Không bịa thêm thông tin."

var suggestionTones = map[string]string{
	"encouraging": "Giọng văn động viên, ghi nhận cố gắng.",
	"neutral":     "Giọng văn khách quan, trung lập.",
	"strict":      "Giọng văn nghiêm túc, nêu rõ điểm cần khắc phục.",
}

// CommentService manages monthly report comments and their AI drafts.
type CommentService struct {
	sessions  SessionStore
	repo      commentRepository
	completer Completer
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCommentService constructs the service. A nil completer disables suggestions.
func NewCommentService(sessions SessionStore, repo commentRepository, completer Completer, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *CommentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{sessions: sessions, repo: repo, completer: completer, metrics: metrics, validator: validate, logger: logger}
}

// MonthlySummary aggregates a student's sessions of one class in month (YYYY-MM).
func (s *CommentService) MonthlySummary(ctx context.Context, classID, studentID, month string) (*models.MonthlyStudentSummary, error) {
	if err := s.validator.Struct(dto.MonthlySummaryQuery{Month: month}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "month must be YYYY-MM")
	}

	start := time.Now()
	sessions, err := s.sessions.ListByClass(ctx, classID, month+"-01", month+"-31")
	s.metrics.ObserveStoreOperation("list", err, time.Since(start))
	if err != nil {
		s.logger.Error("failed to list sessions for summary", zap.String("class_id", classID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}

	return summarise(sessions, classID, studentID, month), nil
}

func summarise(sessions []models.Session, classID, studentID, month string) *models.MonthlyStudentSummary {
	summary := &models.MonthlyStudentSummary{
		StudentID: studentID,
		ClassID:   classID,
		Month:     month,
		Scores:    make([]models.ScoreDetail, 0),
	}

	var homeworkTotal, scoreTotal float64
	for i := range sessions {
		session := &sessions[i]
		record := session.FindRecord(studentID)
		if record == nil {
			continue
		}
		if summary.ClassName == "" {
			summary.ClassName = session.ClassLabel()
		}
		if summary.StudentName == "" {
			summary.StudentName = strings.TrimSpace(record.StudentName)
		}

		summary.Sessions++
		switch record.Status() {
		case models.AttendanceExcused:
			summary.Excused++
		case models.AttendanceLate:
			summary.Late++
			summary.Present++
		case models.AttendancePresent:
			summary.Present++
		default:
			summary.Absent++
		}
		homeworkTotal += record.HomeworkPercent
		summary.BonusPoints += record.BonusPoints
		if note := strings.TrimSpace(record.Note); note != "" {
			summary.Notes = append(summary.Notes, note)
		}
		for _, score := range LoadScores(session, studentID) {
			summary.Scores = append(summary.Scores, score)
			scoreTotal += score.Score
		}
	}

	if summary.Sessions > 0 {
		summary.AverageHomework = round2(homeworkTotal / float64(summary.Sessions))
	}
	if len(summary.Scores) > 0 {
		avg := round2(scoreTotal / float64(len(summary.Scores)))
		summary.AverageScore = &avg
	}
	return summary
}

// round2 rounds to two decimals.
func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// SuggestComment drafts a monthly comment from the student's summary.
func (s *CommentService) SuggestComment(ctx context.Context, req dto.SuggestCommentRequest) (*dto.SuggestCommentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid suggestion request")
	}
	if s.completer == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "comment suggestions are not configured")
	}

	summary, err := s.MonthlySummary(ctx, req.ClassID, req.StudentID, req.Month)
	if err != nil {
		return nil, err
	}
	if summary.Sessions == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student has no sessions in this month")
	}

	prompt := BuildSuggestionPrompt(summary, req.Tone)
	content, err := s.completer.Complete(ctx, suggestionSystemPrompt, prompt)
	if err != nil {
		s.metrics.RecordSuggestion("error")
		s.logger.Warn("comment suggestion failed",
			zap.String("class_id", req.ClassID),
			zap.String("student_id", req.StudentID),
			zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "suggestion service unavailable")
	}
	s.metrics.RecordSuggestion("ok")
	return &dto.SuggestCommentResponse{Content: strings.TrimSpace(content), Prompt: prompt}, nil
}

// BuildSuggestionPrompt renders the summary as the user prompt.
func BuildSuggestionPrompt(summary *models.MonthlyStudentSummary, tone string) string {
	var b strings.Builder
	name := summary.StudentName
	if name == "" {
		name = summary.StudentID
	}
	fmt.Fprintf(&b, "Học sinh: %s\n", name)
	fmt.Fprintf(&b, "Lớp: %s\n", firstNonEmpty(summary.ClassName, summary.ClassID))
	fmt.Fprintf(&b, "Tháng: %s\n", summary.Month)
	fmt.Fprintf(&b, "Số buổi: %d (có mặt %d, đi muộn %d, vắng có phép %d, vắng %d)\n",
		summary.Sessions, summary.Present, summary.Late, summary.Excused, summary.Absent)
	fmt.Fprintf(&b, "Bài tập về nhà trung bình: %s%%\n", formatNumber(summary.AverageHomework))
	if summary.AverageScore != nil {
		fmt.Fprintf(&b, "Điểm trung bình: %s\n", formatNumber(*summary.AverageScore))
	}
	if len(summary.Scores) > 0 {
		b.WriteString("Các đầu điểm:\n")
		for _, score := range summary.Scores {
			fmt.Fprintf(&b, "- %s (%s): %s\n", score.Name, displayDate(score.Date), formatNumber(score.Score))
		}
	}
	if len(summary.Notes) > 0 {
		b.WriteString("Ghi chú của giáo viên:\n")
		for _, note := range summary.Notes {
			fmt.Fprintf(&b, "- %s\n", note)
		}
	}
	if instruction, ok := suggestionTones[tone]; ok {
		b.WriteString(instruction)
		b.WriteString("\n")
	}
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// SaveComment stores the comment for (student, class, month), replacing any existing one.
func (s *CommentService) SaveComment(ctx context.Context, authorID string, req dto.SaveCommentRequest) (*models.MonthlyComment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comment payload")
	}
	comment := &models.MonthlyComment{
		ID:          uuid.NewString(),
		StudentID:   req.StudentID,
		ClassID:     req.ClassID,
		Month:       req.Month,
		Content:     strings.TrimSpace(req.Content),
		AISuggested: req.AISuggested,
		AuthorID:    authorID,
	}
	stored, err := s.repo.Upsert(ctx, comment)
	if err != nil {
		s.logger.Error("failed to save comment", zap.String("student_id", req.StudentID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save comment")
	}
	return stored, nil
}

// ListComments lists a class's comments, optionally for one month.
func (s *CommentService) ListComments(ctx context.Context, classID, month string) ([]models.MonthlyComment, error) {
	if month != "" {
		if err := s.validator.Var(month, "yyyymm"); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "month must be YYYY-MM")
		}
	}
	comments, err := s.repo.List(ctx, models.MonthlyCommentFilter{ClassID: classID, Month: month})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list comments")
	}
	return comments, nil
}

// DeleteComment removes a comment by id. Teachers may only delete comments they wrote.
func (s *CommentService) DeleteComment(ctx context.Context, id string, actor *models.JWTClaims) error {
	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "comment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comment")
	}
	if actor.AppRole() != models.RoleAdmin && comment.AuthorID != actor.UserID() {
		return appErrors.Clone(appErrors.ErrForbidden, "only the author or an admin can delete this comment")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "comment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete comment")
	}
	return nil
}
