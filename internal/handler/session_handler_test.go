package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
)

type attendanceServiceMock struct {
	session   *models.Session
	sessions  []models.Session
	record    *models.AttendanceRecord
	err       error
	query     dto.ListSessionsQuery
	markReq   dto.MarkAttendanceRequest
	studentID string
}

func (m *attendanceServiceMock) GetSession(ctx context.Context, id string) (*models.Session, error) {
	return m.session, m.err
}

func (m *attendanceServiceMock) ListClassSessions(ctx context.Context, classID string, query dto.ListSessionsQuery) ([]models.Session, error) {
	m.query = query
	return m.sessions, m.err
}

func (m *attendanceServiceMock) MarkAttendance(ctx context.Context, sessionID, studentID string, req dto.MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	m.studentID = studentID
	m.markReq = req
	return m.record, m.err
}

func newSessionRouter(svc attendanceService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewSessionHandler(svc)
	r := gin.New()
	r.GET("/sessions/:id", h.Get)
	r.GET("/classes/:id/sessions", h.ListByClass)
	r.PATCH("/sessions/:id/attendance/:studentId", h.MarkAttendance)
	return r
}

func TestSessionHandlerGetNotFound(t *testing.T) {
	r := newSessionRouter(&attendanceServiceMock{err: appErrors.Clone(appErrors.ErrSessionNotFound, "")})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandlerListByClass(t *testing.T) {
	svc := &attendanceServiceMock{sessions: []models.Session{{
		ID: "sess-1", ClassID: "cls-A", Date: "2024-05-10",
		AttendanceRecords: []models.AttendanceRecord{{StudentID: "stu-1", Present: true}, {StudentID: "stu-2"}},
	}}}
	r := newSessionRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/classes/cls-A/sessions?from=2024-05-01&to=2024-05-31", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.ListSessionsQuery{From: "2024-05-01", To: "2024-05-31"}, svc.query)
	var env struct {
		Data []dto.SessionSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, 2, env.Data[0].Students)
	assert.Equal(t, 1, env.Data[0].Present)
}

func TestSessionHandlerMarkAttendance(t *testing.T) {
	svc := &attendanceServiceMock{record: &models.AttendanceRecord{StudentID: "stu-1", Present: true}}
	r := newSessionRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/sessions/sess-1/attendance/stu-1",
		bytes.NewBufferString(`{"present":true,"homeworkPercent":80,"testScore":null}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stu-1", svc.studentID)
	assert.Equal(t, 80.0, svc.markReq.HomeworkPercent)
	assert.Nil(t, svc.markReq.TestScore)
}

func TestSessionHandlerMarkAttendanceBadJSON(t *testing.T) {
	r := newSessionRouter(&attendanceServiceMock{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/sessions/sess-1/attendance/stu-1", bytes.NewBufferString(`{"present":`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
