package models

import "time"

// MonthlyComment is a teacher's report comment for one student in one class month.
type MonthlyComment struct {
	ID          string    `db:"id" json:"id"`
	StudentID   string    `db:"student_id" json:"studentId"`
	ClassID     string    `db:"class_id" json:"classId"`
	Month       string    `db:"month" json:"month"`
	Content     string    `db:"content" json:"content"`
	AISuggested bool      `db:"ai_suggested" json:"aiSuggested"`
	AuthorID    string    `db:"author_id" json:"authorId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// MonthlyCommentFilter scopes comment listing.
type MonthlyCommentFilter struct {
	ClassID   string
	Month     string
	StudentID string
}

// MonthlyStudentSummary aggregates one student's month in one class.
type MonthlyStudentSummary struct {
	StudentID       string        `json:"studentId"`
	StudentName     string        `json:"studentName"`
	ClassID         string        `json:"classId"`
	ClassName       string        `json:"className"`
	Month           string        `json:"month"`
	Sessions        int           `json:"sessions"`
	Present         int           `json:"present"`
	Late            int           `json:"late"`
	Excused         int           `json:"excused"`
	Absent          int           `json:"absent"`
	AverageHomework float64       `json:"averageHomework"`
	AverageScore    *float64      `json:"averageScore,omitempty"`
	BonusPoints     float64       `json:"bonusPoints"`
	Scores          []ScoreDetail `json:"scores"`
	Notes           []string      `json:"notes,omitempty"`
}
