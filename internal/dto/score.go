package dto

import "github.com/noah-isme/tutoring-admin-api/internal/models"

// ScoreCandidate is a manual score entered in the score dialog.
type ScoreCandidate struct {
	Name  string  `json:"name" validate:"required,max=120"`
	Score float64 `json:"score" validate:"gte=0,lte=10,score_step"`
	Date  string  `json:"date" validate:"required,datetime=2006-01-02"`
	Note  string  `json:"note" validate:"max=500"`
}

// UpsertScoreRequest adds a score, or replaces Editing when it is set.
// ClassID is the class of the session currently open in the client.
type UpsertScoreRequest struct {
	ClassID string           `json:"classId" binding:"required"`
	Score   ScoreCandidate   `json:"score"`
	Editing *models.ScoreKey `json:"editing,omitempty"`
}

// DeleteScoreRequest removes the entry identified by Target.
type DeleteScoreRequest struct {
	ClassID string          `json:"classId" binding:"required"`
	Target  models.ScoreKey `json:"target"`
}

// ScoreRow is one displayed score with the key the client uses for its row.
type ScoreRow struct {
	models.ScoreDetail
	RowKey string `json:"rowKey"`
}

// ScoreListResponse is the reconciled score list of one student in one session.
type ScoreListResponse struct {
	SessionID string     `json:"sessionId"`
	StudentID string     `json:"studentId"`
	Scores    []ScoreRow `json:"scores"`
}

// NewScoreListResponse keys every score by its identity tuple.
func NewScoreListResponse(sessionID, studentID string, scores []models.ScoreDetail) ScoreListResponse {
	rows := make([]ScoreRow, 0, len(scores))
	for _, score := range scores {
		rows = append(rows, ScoreRow{ScoreDetail: score, RowKey: score.Key().RowKey()})
	}
	return ScoreListResponse{SessionID: sessionID, StudentID: studentID, Scores: rows}
}
