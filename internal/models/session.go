package models

import "strings"

// Session is one scheduled class meeting with its attendance roster.
type Session struct {
	ID                string             `db:"id" json:"id"`
	ClassID           string             `db:"class_id" json:"classId"`
	ClassName         string             `db:"class_name" json:"className,omitempty"`
	Date              string             `db:"date" json:"date"`
	StartTime         string             `db:"start_time" json:"startTime"`
	EndTime           string             `db:"end_time" json:"endTime"`
	Teacher           string             `db:"teacher" json:"teacher"`
	AttendanceRecords []AttendanceRecord `db:"-" json:"attendanceRecords"`
}

// ClassLabel returns the display name of the owning class, falling back to its id.
func (s *Session) ClassLabel() string {
	if name := strings.TrimSpace(s.ClassName); name != "" {
		return name
	}
	return s.ClassID
}

// Scope returns the scoping keys entries persisted under this session must carry.
func (s *Session) Scope() ScoreScope {
	return ScoreScope{SessionID: s.ID, ClassID: s.ClassID}
}

// FindRecord returns the attendance record for studentID, or nil.
func (s *Session) FindRecord(studentID string) *AttendanceRecord {
	if s == nil {
		return nil
	}
	for i := range s.AttendanceRecords {
		if s.AttendanceRecords[i].StudentID == studentID {
			return &s.AttendanceRecords[i]
		}
	}
	return nil
}

// AttendanceRecord is one student's presence and score data for a session.
type AttendanceRecord struct {
	// Key is the storage slot of the record inside the session document
	// (array index or child key) and addresses partial updates.
	Key string `json:"-"`

	StudentID       string        `json:"studentId"`
	StudentName     string        `json:"studentName,omitempty"`
	Present         bool          `json:"present"`
	Late            bool          `json:"late"`
	Excused         bool          `json:"excused"`
	HomeworkPercent float64       `json:"homeworkPercent"`
	TestName        string        `json:"testName"`
	TestScore       *float64      `json:"testScore"`
	BonusPoints     float64       `json:"bonusPoints"`
	Note            string        `json:"note"`
	ScoreDetails    []ScoreDetail `json:"scoreDetails"`
}

// Status summarises the presence flags for reports.
func (r *AttendanceRecord) Status() AttendanceStatus {
	switch {
	case r.Excused:
		return AttendanceExcused
	case r.Late:
		return AttendanceLate
	case r.Present:
		return AttendancePresent
	default:
		return AttendanceAbsent
	}
}

// HasTestScore reports whether the record carries an auto-derived test score.
func (r *AttendanceRecord) HasTestScore() bool {
	return strings.TrimSpace(r.TestName) != "" && r.TestScore != nil
}

// AttendanceStatus is the derived presence label of a record.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceLate    AttendanceStatus = "LATE"
	AttendanceExcused AttendanceStatus = "EXCUSED"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
)

// Label returns the Vietnamese label used on printed reports.
func (s AttendanceStatus) Label() string {
	switch s {
	case AttendancePresent:
		return "Có mặt"
	case AttendanceLate:
		return "Đi muộn"
	case AttendanceExcused:
		return "Vắng có phép"
	default:
		return "Vắng"
	}
}

// AttendanceUpdate carries the record fields a partial attendance write replaces.
type AttendanceUpdate struct {
	Present         bool     `json:"present"`
	Late            bool     `json:"late"`
	Excused         bool     `json:"excused"`
	HomeworkPercent float64  `json:"homeworkPercent"`
	TestName        string   `json:"testName"`
	TestScore       *float64 `json:"testScore"`
	BonusPoints     float64  `json:"bonusPoints"`
	Note            string   `json:"note"`
}

// Fields renders the update as a store document patch.
func (u AttendanceUpdate) Fields() map[string]interface{} {
	var testScore interface{}
	if u.TestScore != nil {
		testScore = *u.TestScore
	}
	return map[string]interface{}{
		"present":         u.Present,
		"late":            u.Late,
		"excused":         u.Excused,
		"homeworkPercent": u.HomeworkPercent,
		"testName":        u.TestName,
		"testScore":       testScore,
		"bonusPoints":     u.BonusPoints,
		"note":            u.Note,
	}
}
