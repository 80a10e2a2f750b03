package migration

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// Converter turns a non-null source value into the value written to the column.
type Converter func(value interface{}) (interface{}, error)

// Field maps one source key onto one destination column.
type Field struct {
	Source   string
	Column   string
	Default  interface{}
	Required bool
	Convert  Converter
}

// Table is the static mapping of one Firebase collection onto one Postgres table.
// Every table is keyed by an "id" column holding the Firebase child key.
type Table struct {
	Collection string
	Name       string
	Fields     []Field
}

// Tables lists the collections the migration knows how to copy, in the
// order they are migrated by default.
var Tables = []Table{
	{
		Collection: "classes",
		Name:       "classes",
		Fields: []Field{
			{Source: "name", Column: "name", Default: "", Convert: asString},
			{Source: "teacher", Column: "teacher", Default: "", Convert: asString},
			{Source: "schedule", Column: "schedule", Default: "", Convert: asString},
		},
	},
	{
		Collection: "students",
		Name:       "students",
		Fields: []Field{
			{Source: "fullName", Column: "full_name", Default: "", Convert: asString},
			{Source: "classId", Column: "class_id", Default: "", Convert: asString},
			{Source: "phone", Column: "phone", Default: "", Convert: asString},
			{Source: "parentName", Column: "parent_name", Default: "", Convert: asString},
			{Source: "parentPhone", Column: "parent_phone", Default: "", Convert: asString},
			{Source: "birthDate", Column: "birth_date", Default: "", Convert: asString},
			{Source: "active", Column: "active", Default: true, Convert: asBool},
		},
	},
	{
		Collection: "sessions",
		Name:       "sessions",
		Fields: []Field{
			{Source: "classId", Column: "class_id", Required: true, Convert: asString},
			{Source: "className", Column: "class_name", Default: "", Convert: asString},
			{Source: "date", Column: "date", Required: true, Convert: asString},
			{Source: "startTime", Column: "start_time", Default: "", Convert: asString},
			{Source: "endTime", Column: "end_time", Default: "", Convert: asString},
			{Source: "teacher", Column: "teacher", Default: "", Convert: asString},
			{Source: "attendanceRecords", Column: "attendance_records", Default: "[]", Convert: asJSON},
		},
	},
	{
		Collection: "monthlyComments",
		Name:       "monthly_comments",
		Fields: []Field{
			{Source: "studentId", Column: "student_id", Required: true, Convert: asString},
			{Source: "classId", Column: "class_id", Required: true, Convert: asString},
			{Source: "month", Column: "month", Required: true, Convert: asString},
			{Source: "content", Column: "content", Default: "", Convert: asString},
			{Source: "aiSuggested", Column: "ai_suggested", Default: false, Convert: asBool},
			{Source: "authorId", Column: "author_id", Default: "", Convert: asString},
		},
	},
}

// TableFor returns the mapping registered for a Firebase collection.
func TableFor(collection string) (Table, bool) {
	for _, t := range Tables {
		if t.Collection == collection {
			return t, true
		}
	}
	return Table{}, false
}

// Columns returns the destination columns in insert order, id first.
func (t Table) Columns() []string {
	cols := make([]string, 0, len(t.Fields)+1)
	cols = append(cols, "id")
	for _, f := range t.Fields {
		cols = append(cols, f.Column)
	}
	return cols
}

// errSkip marks a record that cannot be mapped and is counted as skipped.
type errSkip struct {
	reason string
}

func (e errSkip) Error() string { return e.reason }

// MapRecord converts one Firebase child into the values for Columns.
// Absent and null keys take the field default.
func (t Table) MapRecord(key string, raw interface{}) ([]interface{}, error) {
	if strings.TrimSpace(key) == "" {
		return nil, errSkip{reason: "record has no key"}
	}
	doc, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errSkip{reason: fmt.Sprintf("record %s is not an object", key)}
	}

	values := make([]interface{}, 0, len(t.Fields)+1)
	values = append(values, key)
	for _, f := range t.Fields {
		value, present := doc[f.Source]
		if !present || value == nil {
			if f.Required {
				return nil, errSkip{reason: fmt.Sprintf("record %s is missing %s", key, f.Source)}
			}
			values = append(values, f.Default)
			continue
		}
		if f.Convert != nil {
			converted, err := f.Convert(value)
			if err != nil {
				return nil, fmt.Errorf("record %s field %s: %w", key, f.Source, err)
			}
			value = converted
		}
		if f.Required && value == "" {
			return nil, errSkip{reason: fmt.Sprintf("record %s has empty %s", key, f.Source)}
		}
		values = append(values, value)
	}
	return values, nil
}

func asString(v interface{}) (interface{}, error) {
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, err
	}
	return strings.TrimSpace(s), nil
}

func asBool(v interface{}) (interface{}, error) {
	return cast.ToBoolE(v)
}

// asJSON keeps nested documents verbatim; the session repository reads both
// the array and the keyed-object shape of attendanceRecords.
func asJSON(v interface{}) (interface{}, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}
