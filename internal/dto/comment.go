package dto

// MonthlySummaryQuery selects the month for a summary.
type MonthlySummaryQuery struct {
	Month string `form:"month" validate:"required,yyyymm"`
}

// SuggestCommentRequest asks for an AI draft of a monthly comment.
type SuggestCommentRequest struct {
	ClassID   string `json:"classId" validate:"required"`
	StudentID string `json:"studentId" validate:"required"`
	Month     string `json:"month" validate:"required,yyyymm"`
	Tone      string `json:"tone" validate:"omitempty,oneof=encouraging neutral strict"`
}

// SuggestCommentResponse is the drafted comment.
type SuggestCommentResponse struct {
	Content string `json:"content"`
	Prompt  string `json:"prompt,omitempty"`
}

// SaveCommentRequest stores the comment for (student, class, month).
type SaveCommentRequest struct {
	StudentID   string `json:"studentId" validate:"required"`
	ClassID     string `json:"classId" validate:"required"`
	Month       string `json:"month" validate:"required,yyyymm"`
	Content     string `json:"content" validate:"required,max=2000"`
	AISuggested bool   `json:"aiSuggested"`
}
