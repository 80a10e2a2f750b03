package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
	"github.com/noah-isme/tutoring-admin-api/pkg/response"
)

type commentService interface {
	MonthlySummary(ctx context.Context, classID, studentID, month string) (*models.MonthlyStudentSummary, error)
	SuggestComment(ctx context.Context, req dto.SuggestCommentRequest) (*dto.SuggestCommentResponse, error)
	SaveComment(ctx context.Context, authorID string, req dto.SaveCommentRequest) (*models.MonthlyComment, error)
	ListComments(ctx context.Context, classID, month string) ([]models.MonthlyComment, error)
	DeleteComment(ctx context.Context, id string, actor *models.JWTClaims) error
}

// CommentHandler exposes monthly comment endpoints.
type CommentHandler struct {
	service commentService
}

// NewCommentHandler builds a new handler.
func NewCommentHandler(service commentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// MonthlySummary godoc
// @Summary Summarise a student's month in a class
// @Tags Comments
// @Produce json
// @Param id path string true "Class ID"
// @Param studentId path string true "Student ID"
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/students/{studentId}/monthly-summary [get]
func (h *CommentHandler) MonthlySummary(c *gin.Context) {
	summary, err := h.service.MonthlySummary(c.Request.Context(), c.Param("id"), c.Param("studentId"), c.Query("month"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Suggest godoc
// @Summary Draft a monthly comment with the AI assistant
// @Tags Comments
// @Accept json
// @Produce json
// @Param payload body dto.SuggestCommentRequest true "Suggestion request"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /comments/suggest [post]
func (h *CommentHandler) Suggest(c *gin.Context) {
	var req dto.SuggestCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid suggestion payload"))
		return
	}
	suggestion, err := h.service.SuggestComment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestion, nil)
}

// List godoc
// @Summary List a class's monthly comments
// @Tags Comments
// @Produce json
// @Param id path string true "Class ID"
// @Param month query string false "Month (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/comments [get]
func (h *CommentHandler) List(c *gin.Context) {
	comments, err := h.service.ListComments(c.Request.Context(), c.Param("id"), c.Query("month"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, comments, nil)
}

// Save godoc
// @Summary Save the monthly comment of a student
// @Tags Comments
// @Accept json
// @Produce json
// @Param payload body dto.SaveCommentRequest true "Comment payload"
// @Success 200 {object} response.Envelope
// @Router /comments [put]
func (h *CommentHandler) Save(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.SaveCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid comment payload"))
		return
	}
	comment, err := h.service.SaveComment(c.Request.Context(), claims.UserID(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, comment, nil)
}

// Delete godoc
// @Summary Delete a monthly comment
// @Tags Comments
// @Param id path string true "Comment ID"
// @Success 204
// @Router /comments/{id} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.DeleteComment(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
