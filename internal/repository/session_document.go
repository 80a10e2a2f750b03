package repository

import (
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
)

// Session documents come from stores without a schema (Firebase, jsonb). They
// are mapped into typed records here and nowhere else. Values of the wrong
// type fall back to zero values; a test score that cannot be read is null.

func decodeSession(id string, raw map[string]interface{}) *models.Session {
	return &models.Session{
		ID:                id,
		ClassID:           str(raw["classId"]),
		ClassName:         str(raw["className"]),
		Date:              str(raw["date"]),
		StartTime:         str(raw["startTime"]),
		EndTime:           str(raw["endTime"]),
		Teacher:           str(raw["teacher"]),
		AttendanceRecords: decodeAttendanceRecords(raw["attendanceRecords"]),
	}
}

func decodeAttendanceRecords(raw interface{}) []models.AttendanceRecord {
	records := make([]models.AttendanceRecord, 0)
	forEachChild(raw, func(key string, child interface{}) {
		fields, ok := child.(map[string]interface{})
		if !ok {
			return
		}
		records = append(records, decodeAttendanceRecord(key, fields))
	})
	return records
}

func decodeAttendanceRecord(key string, raw map[string]interface{}) models.AttendanceRecord {
	return models.AttendanceRecord{
		Key:             key,
		StudentID:       str(raw["studentId"]),
		StudentName:     str(raw["studentName"]),
		Present:         boolean(raw["present"]),
		Late:            boolean(raw["late"]),
		Excused:         boolean(raw["excused"]),
		HomeworkPercent: number(first(raw, "homeworkPercent", "homework")),
		TestName:        strings.TrimSpace(str(raw["testName"])),
		TestScore:       optionalNumber(raw["testScore"]),
		BonusPoints:     number(first(raw, "bonusPoints", "bonus")),
		Note:            str(raw["note"]),
		ScoreDetails:    decodeScoreDetails(raw["scoreDetails"]),
	}
}

func decodeScoreDetails(raw interface{}) []models.ScoreDetail {
	details := make([]models.ScoreDetail, 0)
	forEachChild(raw, func(_ string, child interface{}) {
		fields, ok := child.(map[string]interface{})
		if !ok {
			return
		}
		details = append(details, models.ScoreDetail{
			Name:      str(first(fields, "name", "scoreName")),
			Score:     number(first(fields, "score", "value")),
			Date:      str(fields["date"]),
			Note:      str(fields["note"]),
			SessionID: str(fields["sessionId"]),
			ClassID:   str(fields["classId"]),
		})
	})
	return details
}

// encodeScoreDetails renders entries for a store write; an empty list is
// written as [] rather than null.
func encodeScoreDetails(details []models.ScoreDetail) []models.ScoreDetail {
	if details == nil {
		return []models.ScoreDetail{}
	}
	return details
}

// forEachChild walks a JSON array or an index-keyed object in order. Firebase
// returns sparse arrays as objects and keeps null holes in dense ones.
func forEachChild(raw interface{}, fn func(key string, child interface{})) {
	switch v := raw.(type) {
	case []interface{}:
		for i, child := range v {
			if child == nil {
				continue
			}
			fn(strconv.Itoa(i), child)
		}
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })
		for _, k := range keys {
			if v[k] == nil {
				continue
			}
			fn(k, v[k])
		}
	}
}

func lessKey(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		return ai < bi
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	default:
		return a < b
	}
}

func first(raw map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func str(v interface{}) string {
	switch v.(type) {
	case nil, map[string]interface{}, []interface{}:
		return ""
	}
	return cast.ToString(v)
}

func number(v interface{}) float64 {
	if s, ok := v.(string); ok {
		v = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0
	}
	return f
}

func optionalNumber(v interface{}) *float64 {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
		if s == "" {
			return nil
		}
		v = s
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil
	}
	return &f
}

func boolean(v interface{}) bool {
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false
	}
	return b
}
