package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
)

type scoreWrite struct {
	sessionID string
	recordKey string
	details   []models.ScoreDetail
}

type attendanceWrite struct {
	sessionID string
	recordKey string
	fields    map[string]interface{}
}

type fakeSessionStore struct {
	sessions         map[string]*models.Session
	getErr           error
	updateErr        error
	getCalls         int
	scoreWrites      []scoreWrite
	attendanceWrites []attendanceWrite
}

func newFakeSessionStore(sessions ...*models.Session) *fakeSessionStore {
	store := &fakeSessionStore{sessions: make(map[string]*models.Session)}
	for _, session := range sessions {
		store.sessions[session.ID] = session
	}
	return store
}

func (f *fakeSessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	session, ok := f.sessions[id]
	if !ok {
		return nil, fmt.Errorf("get session %s: %w", id, sql.ErrNoRows)
	}
	clone := *session
	clone.AttendanceRecords = make([]models.AttendanceRecord, len(session.AttendanceRecords))
	for i, record := range session.AttendanceRecords {
		record.ScoreDetails = append([]models.ScoreDetail(nil), record.ScoreDetails...)
		clone.AttendanceRecords[i] = record
	}
	return &clone, nil
}

func (f *fakeSessionStore) ListByClass(ctx context.Context, classID, from, to string) ([]models.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	var result []models.Session
	for _, id := range sortedKeys(f.sessions) {
		session := f.sessions[id]
		if session.ClassID != classID {
			continue
		}
		if (from != "" && session.Date < from) || (to != "" && session.Date > to) {
			continue
		}
		result = append(result, *session)
	}
	return result, nil
}

func (f *fakeSessionStore) UpdateScoreDetails(ctx context.Context, sessionID, recordKey string, details []models.ScoreDetail) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.scoreWrites = append(f.scoreWrites, scoreWrite{sessionID: sessionID, recordKey: recordKey, details: details})
	if session, ok := f.sessions[sessionID]; ok {
		for i := range session.AttendanceRecords {
			if session.AttendanceRecords[i].Key == recordKey {
				session.AttendanceRecords[i].ScoreDetails = details
			}
		}
	}
	return nil
}

func (f *fakeSessionStore) UpdateAttendance(ctx context.Context, sessionID, recordKey string, fields map[string]interface{}) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.attendanceWrites = append(f.attendanceWrites, attendanceWrite{sessionID: sessionID, recordKey: recordKey, fields: fields})
	return nil
}

func (f *fakeSessionStore) storeCalls() int {
	return f.getCalls + len(f.scoreWrites) + len(f.attendanceWrites)
}

func sortedKeys(m map[string]*models.Session) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type memoryCache struct {
	values  map[string][]models.ScoreDetail
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string][]models.ScoreDetail)}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	value, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*(dest.(*[]models.ScoreDetail)) = value
	return nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.values[key] = value.([]models.ScoreDetail)
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
		m.deleted = append(m.deleted, key)
	}
	return nil
}

func floatPtr(v float64) *float64 {
	return &v
}

// sampleSession is session sess-1 of class cls-A with one student holding a
// test score, a legacy entry and an entry leaked from another session.
func sampleSession() *models.Session {
	return &models.Session{
		ID:        "sess-1",
		ClassID:   "cls-A",
		ClassName: "Toán 9A",
		Date:      "2024-05-10",
		StartTime: "18:00",
		EndTime:   "19:30",
		Teacher:   "Cô Lan",
		AttendanceRecords: []models.AttendanceRecord{
			{
				Key:             "0",
				StudentID:       "stu-1",
				StudentName:     "Nguyễn An",
				Present:         true,
				HomeworkPercent: 90,
				TestName:        "Kiểm tra 15 phút",
				TestScore:       floatPtr(8.5),
				ScoreDetails: []models.ScoreDetail{
					{Name: "Miệng", Score: 7, Date: "2024-05-10"},
					{Name: "Cũ", Score: 6, Date: "2024-04-01", SessionID: "sess-0", ClassID: "cls-A"},
				},
			},
			{Key: "1", StudentID: "stu-2", StudentName: "Trần Bình"},
		},
	}
}
