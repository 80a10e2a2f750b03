package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	"github.com/noah-isme/tutoring-admin-api/pkg/response"
)

type reportService interface {
	PrintLink(ctx context.Context, sessionID, studentID string) (*dto.PrintLinkResponse, error)
	RenderPrint(ctx context.Context, token string) ([]byte, error)
}

type exportService interface {
	ExportSession(ctx context.Context, sessionID, format string) (*dto.ExportFile, error)
}

// ReportHandler exposes printable reports and score sheet exports.
type ReportHandler struct {
	reports reportService
	exports exportService
}

// NewReportHandler builds a new handler.
func NewReportHandler(reports reportService, exports exportService) *ReportHandler {
	return &ReportHandler{reports: reports, exports: exports}
}

// PrintLink godoc
// @Summary Create a signed link to a printable report
// @Tags Reports
// @Produce json
// @Param id path string true "Session ID"
// @Param studentId path string true "Student ID"
// @Success 201 {object} response.Envelope
// @Router /sessions/{id}/students/{studentId}/print-link [post]
func (h *ReportHandler) PrintLink(c *gin.Context) {
	link, err := h.reports.PrintLink(c.Request.Context(), c.Param("id"), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// Print godoc
// @Summary Render a printable report
// @Description Public; the signed token authorises the request.
// @Tags Reports
// @Produce html
// @Param token path string true "Signed print token"
// @Success 200 {string} string "HTML document"
// @Failure 401 {object} response.Envelope
// @Router /print/{token} [get]
func (h *ReportHandler) Print(c *gin.Context) {
	page, err := h.reports.RenderPrint(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.HTML(c, page)
}

// Export godoc
// @Summary Download a session score sheet
// @Tags Reports
// @Produce octet-stream
// @Param id path string true "Session ID"
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 200 {file} file
// @Router /sessions/{id}/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	file, err := h.exports.ExportSession(c.Request.Context(), c.Param("id"), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
