package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
	"github.com/noah-isme/tutoring-admin-api/pkg/export"
)

// Export formats.
const (
	ExportCSV  = "csv"
	ExportPDF  = "pdf"
	ExportXLSX = "xlsx"
)

var exportContentTypes = map[string]string{
	ExportCSV:  "text/csv; charset=utf-8",
	ExportPDF:  "application/pdf",
	ExportXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

var sessionSheetHeaders = []string{"STT", "Học sinh", "Điểm danh", "Bài tập (%)", "Điểm cộng", "Điểm", "Ghi chú"}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportService renders session score sheets.
type ExportService struct {
	sessions  SessionStore
	renderers map[string]datasetRenderer
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to
// the package exporters.
func NewExportService(sessions SessionStore, metrics *MetricsService, logger *zap.Logger, csv, pdf, xlsx datasetRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter()
	}
	return &ExportService{
		sessions:  sessions,
		renderers: map[string]datasetRenderer{ExportCSV: csv, ExportPDF: pdf, ExportXLSX: xlsx},
		metrics:   metrics,
		logger:    logger,
	}
}

// ExportSession renders the score sheet of a session in format.
func (s *ExportService) ExportSession(ctx context.Context, sessionID, format string) (*dto.ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv, pdf or xlsx")
	}

	session, err := fetchSession(ctx, s.sessions, s.metrics, s.logger, sessionID)
	if err != nil {
		return nil, err
	}

	body, err := renderer.Render(SessionDataset(session))
	if err != nil {
		s.logger.Error("failed to render export", zap.String("session_id", sessionID), zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &dto.ExportFile{
		Filename:    fmt.Sprintf("bang-diem-%s-%s.%s", session.ID, session.Date, format),
		ContentType: exportContentTypes[format],
		Body:        body,
	}, nil
}

// SessionDataset lays out one row per attendance record with the reconciled
// score list joined into a single cell.
func SessionDataset(session *models.Session) export.Dataset {
	data := export.Dataset{
		Title: "Bảng điểm lớp " + session.ClassLabel(),
		Subtitles: []string{
			fmt.Sprintf("Ngày %s, %s - %s", displayDate(session.Date), session.StartTime, session.EndTime),
			"Giáo viên: " + session.Teacher,
		},
		Headers: sessionSheetHeaders,
		Rows:    make([]map[string]string, 0, len(session.AttendanceRecords)),
	}
	for i := range session.AttendanceRecords {
		record := &session.AttendanceRecords[i]
		scores := LoadScores(session, record.StudentID)
		parts := make([]string, 0, len(scores))
		for _, score := range scores {
			parts = append(parts, fmt.Sprintf("%s: %s", score.Name, formatNumber(score.Score)))
		}
		data.Rows = append(data.Rows, map[string]string{
			"STT":         fmt.Sprintf("%d", i+1),
			"Học sinh":    studentLabel(record),
			"Điểm danh":   record.Status().Label(),
			"Bài tập (%)": formatNumber(record.HomeworkPercent),
			"Điểm cộng":   formatNumber(record.BonusPoints),
			"Điểm":        strings.Join(parts, "; "),
			"Ghi chú":     record.Note,
		})
	}
	return data
}
