package dto

import "github.com/noah-isme/tutoring-admin-api/internal/models"

// MarkAttendanceRequest replaces the attendance fields of one record.
type MarkAttendanceRequest struct {
	Present         bool     `json:"present"`
	Late            bool     `json:"late"`
	Excused         bool     `json:"excused"`
	HomeworkPercent float64  `json:"homeworkPercent" validate:"gte=0,lte=100"`
	TestName        string   `json:"testName" validate:"max=120"`
	TestScore       *float64 `json:"testScore" validate:"omitempty,gte=0,lte=10"`
	BonusPoints     float64  `json:"bonusPoints" validate:"gte=0"`
	Note            string   `json:"note" validate:"max=500"`
}

// ListSessionsQuery bounds a class session listing by date.
type ListSessionsQuery struct {
	From string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" validate:"omitempty,datetime=2006-01-02"`
}

// SessionSummary is the list view of a session.
type SessionSummary struct {
	ID        string `json:"id"`
	ClassID   string `json:"classId"`
	ClassName string `json:"className,omitempty"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Teacher   string `json:"teacher"`
	Students  int    `json:"students"`
	Present   int    `json:"present"`
}

// NewSessionSummary condenses a session for list responses.
func NewSessionSummary(s models.Session) SessionSummary {
	summary := SessionSummary{
		ID:        s.ID,
		ClassID:   s.ClassID,
		ClassName: s.ClassName,
		Date:      s.Date,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Teacher:   s.Teacher,
		Students:  len(s.AttendanceRecords),
	}
	for _, record := range s.AttendanceRecords {
		if record.Present {
			summary.Present++
		}
	}
	return summary
}
