package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	"github.com/noah-isme/tutoring-admin-api/internal/middleware"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	"github.com/noah-isme/tutoring-admin-api/pkg/response"
)

type scoreService interface {
	LoadForSession(ctx context.Context, sessionID, studentID string, refresh bool) ([]models.ScoreDetail, bool, error)
	Upsert(ctx context.Context, current models.ScoreScope, studentID string, candidate dto.ScoreCandidate, editing *models.ScoreKey) ([]models.ScoreDetail, error)
	Delete(ctx context.Context, current models.ScoreScope, studentID string, target models.ScoreKey) ([]models.ScoreDetail, error)
}

// ScoreHandler exposes the score dialog endpoints.
type ScoreHandler struct {
	service scoreService
}

// NewScoreHandler builds a new handler.
func NewScoreHandler(service scoreService) *ScoreHandler {
	return &ScoreHandler{service: service}
}

// List godoc
// @Summary List a student's scores for a session
// @Description Returns the session test score followed by manual scores of this session.
// @Tags Scores
// @Produce json
// @Param id path string true "Session ID"
// @Param studentId path string true "Student ID"
// @Param refresh query bool false "Bypass the score cache"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/students/{studentId}/scores [get]
func (h *ScoreHandler) List(c *gin.Context) {
	refresh, _ := strconv.ParseBool(c.Query("refresh"))
	sessionID, studentID := c.Param("id"), c.Param("studentId")
	scores, cacheHit, err := h.service.LoadForSession(c.Request.Context(), sessionID, studentID, refresh)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, dto.NewScoreListResponse(sessionID, studentID, scores), nil, middleware.ExtractMeta(c))
}

// Upsert godoc
// @Summary Add or edit a manual score
// @Tags Scores
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param studentId path string true "Student ID"
// @Param payload body dto.UpsertScoreRequest true "Score payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions/{id}/students/{studentId}/scores [put]
func (h *ScoreHandler) Upsert(c *gin.Context) {
	var req dto.UpsertScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid score payload"))
		return
	}
	sessionID, studentID := c.Param("id"), c.Param("studentId")
	current := models.ScoreScope{SessionID: sessionID, ClassID: req.ClassID}
	scores, err := h.service.Upsert(c.Request.Context(), current, studentID, req.Score, req.Editing)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewScoreListResponse(sessionID, studentID, scores), nil)
}

// Delete godoc
// @Summary Delete a manual score
// @Tags Scores
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param studentId path string true "Student ID"
// @Param payload body dto.DeleteScoreRequest true "Entry to delete"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions/{id}/students/{studentId}/scores [delete]
func (h *ScoreHandler) Delete(c *gin.Context) {
	var req dto.DeleteScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid delete payload"))
		return
	}
	sessionID, studentID := c.Param("id"), c.Param("studentId")
	current := models.ScoreScope{SessionID: sessionID, ClassID: req.ClassID}
	scores, err := h.service.Delete(c.Request.Context(), current, studentID, req.Target)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewScoreListResponse(sessionID, studentID, scores), nil)
}
