package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	"github.com/noah-isme/tutoring-admin-api/pkg/response"
)

type attendanceService interface {
	GetSession(ctx context.Context, id string) (*models.Session, error)
	ListClassSessions(ctx context.Context, classID string, query dto.ListSessionsQuery) ([]models.Session, error)
	MarkAttendance(ctx context.Context, sessionID, studentID string, req dto.MarkAttendanceRequest) (*models.AttendanceRecord, error)
}

// SessionHandler exposes session and attendance endpoints.
type SessionHandler struct {
	service attendanceService
}

// NewSessionHandler builds a new handler.
func NewSessionHandler(service attendanceService) *SessionHandler {
	return &SessionHandler{service: service}
}

// Get godoc
// @Summary Get a session with its attendance roster
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// ListByClass godoc
// @Summary List a class's sessions
// @Tags Sessions
// @Produce json
// @Param id path string true "Class ID"
// @Param from query string false "First date (YYYY-MM-DD)"
// @Param to query string false "Last date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/sessions [get]
func (h *SessionHandler) ListByClass(c *gin.Context) {
	var query dto.ListSessionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid query parameters"))
		return
	}
	sessions, err := h.service.ListClassSessions(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	items := make([]dto.SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, dto.NewSessionSummary(s))
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// MarkAttendance godoc
// @Summary Record a student's attendance for a session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param studentId path string true "Student ID"
// @Param payload body dto.MarkAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/attendance/{studentId} [patch]
func (h *SessionHandler) MarkAttendance(c *gin.Context) {
	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid attendance payload"))
		return
	}
	record, err := h.service.MarkAttendance(c.Request.Context(), c.Param("id"), c.Param("studentId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}
