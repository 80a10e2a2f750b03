package service

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
	"github.com/noah-isme/tutoring-admin-api/pkg/storage"
)

//go:embed templates/print_report.html
var reportTemplates embed.FS

var printTemplate = template.Must(template.ParseFS(reportTemplates, "templates/print_report.html"))

type printLinkSigner interface {
	Generate(sessionID, studentID string) (string, time.Time, error)
	Parse(token string) (*storage.PrintTarget, error)
}

// ReportServiceConfig configures print links.
type ReportServiceConfig struct {
	// PrintPath is the route prefix the token is appended to, e.g. /api/v1/print/.
	PrintPath string
}

// ReportService issues print links and renders printable session reports.
type ReportService struct {
	sessions SessionStore
	signer   printLinkSigner
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      ReportServiceConfig
}

// NewReportService constructs the report service.
func NewReportService(sessions SessionStore, signer printLinkSigner, metrics *MetricsService, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PrintPath == "" {
		cfg.PrintPath = "/print/"
	}
	if !strings.HasSuffix(cfg.PrintPath, "/") {
		cfg.PrintPath += "/"
	}
	return &ReportService{sessions: sessions, signer: signer, metrics: metrics, logger: logger, cfg: cfg}
}

// PrintLink returns a short-lived signed link to the printable report of
// one student in one session.
func (s *ReportService) PrintLink(ctx context.Context, sessionID, studentID string) (*dto.PrintLinkResponse, error) {
	session, err := fetchSession(ctx, s.sessions, s.metrics, s.logger, sessionID)
	if err != nil {
		return nil, err
	}
	if session.FindRecord(studentID) == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student has no attendance record in this session")
	}

	token, expiresAt, err := s.signer.Generate(sessionID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign print link")
	}
	return &dto.PrintLinkResponse{Token: token, URL: s.cfg.PrintPath + token, ExpiresAt: expiresAt}, nil
}

type printView struct {
	ClassLabel  string
	Date        string
	StartTime   string
	EndTime     string
	Teacher     string
	StudentName string
	Status      string
	Homework    string
	TestName    string
	TestScore   string
	Bonus       string
	Note        string
	Scores      []printScore
}

type printScore struct {
	Name  string
	Score string
	Date  string
	Note  string
}

// RenderPrint verifies token and renders the HTML report it points at.
func (s *ReportService) RenderPrint(ctx context.Context, token string) ([]byte, error) {
	target, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired print link")
	}

	session, err := fetchSession(ctx, s.sessions, s.metrics, s.logger, target.SessionID)
	if err != nil {
		return nil, err
	}
	record := session.FindRecord(target.StudentID)
	if record == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student has no attendance record in this session")
	}

	view := printView{
		ClassLabel:  session.ClassLabel(),
		Date:        displayDate(session.Date),
		StartTime:   session.StartTime,
		EndTime:     session.EndTime,
		Teacher:     session.Teacher,
		StudentName: studentLabel(record),
		Status:      record.Status().Label(),
		Homework:    formatNumber(record.HomeworkPercent),
		TestName:    record.TestName,
		Bonus:       formatNumber(record.BonusPoints),
		Note:        record.Note,
	}
	if record.TestScore != nil {
		view.TestScore = formatNumber(*record.TestScore)
	}
	for _, score := range LoadScores(session, target.StudentID) {
		view.Scores = append(view.Scores, printScore{
			Name:  score.Name,
			Score: formatNumber(score.Score),
			Date:  displayDate(score.Date),
			Note:  score.Note,
		})
	}

	var buf bytes.Buffer
	if err := printTemplate.Execute(&buf, view); err != nil {
		s.logger.Error("failed to render print report", zap.String("session_id", session.ID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	return buf.Bytes(), nil
}

func studentLabel(record *models.AttendanceRecord) string {
	if name := strings.TrimSpace(record.StudentName); name != "" {
		return name
	}
	return record.StudentID
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
