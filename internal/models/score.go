package models

// ScoreDetail is one manually entered score for a student, scoped to a
// session/class pair. Entries stored before scoping existed have empty keys.
type ScoreDetail struct {
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Date      string  `json:"date"`
	Note      string  `json:"note"`
	SessionID string  `json:"sessionId,omitempty"`
	ClassID   string  `json:"classId,omitempty"`
}

// ScoreScope is the (session, class) pair that owns a score entry.
type ScoreScope struct {
	SessionID string `json:"sessionId"`
	ClassID   string `json:"classId"`
}

// ScoreKey is the identity of a score entry in the absence of a stable id.
type ScoreKey struct {
	Name      string `json:"name" validate:"required"`
	Date      string `json:"date" validate:"required"`
	SessionID string `json:"sessionId"`
	ClassID   string `json:"classId"`
}

// Key returns the identity tuple of the entry.
func (d ScoreDetail) Key() ScoreKey {
	return ScoreKey{Name: d.Name, Date: d.Date, SessionID: d.SessionID, ClassID: d.ClassID}
}

// Scope returns the scoping keys the entry carries.
func (d ScoreDetail) Scope() ScoreScope {
	return ScoreScope{SessionID: d.SessionID, ClassID: d.ClassID}
}

// WithDefaultScope backfills whichever scoping key is missing from scope.
func (d ScoreDetail) WithDefaultScope(scope ScoreScope) ScoreDetail {
	if d.SessionID == "" {
		d.SessionID = scope.SessionID
	}
	if d.ClassID == "" {
		d.ClassID = scope.ClassID
	}
	return d
}

// RowKey renders the identity tuple as a display row key.
func (k ScoreKey) RowKey() string {
	return k.SessionID + "|" + k.ClassID + "|" + k.Date + "|" + k.Name
}
