package database

import (
	"fmt"
	"strings"
	"time"
)

const defaultPingTimeout = 5 * time.Second

// sensitiveColumns are masked whenever a row is logged
var sensitiveColumns = []string{"password", "password_hash", "token", "secret", "api_key", "jwt"}

// Row is one result row keyed by column name. Text columns are always
// strings, never []byte
type Row map[string]interface{}

// String returns the column as text, or "" for NULL
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}

// NullString returns nil for NULL, otherwise the column as text
func (r Row) NullString(col string) *string {
	if r[col] == nil {
		return nil
	}
	s := r.String(col)
	return &s
}

// Int returns an integer column; counts come back as int64 from every driver
func (r Row) Int(col string) (int64, error) {
	switch v := r[col].(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		var n int64
		if _, err := fmt.Sscan(v, &n); err != nil {
			return 0, fmt.Errorf("column %s: %w", col, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("column %s: unexpected type %T", col, v)
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

// Time returns a timestamp column, or the zero time for NULL
func (r Row) Time(col string) (time.Time, error) {
	switch v := r[col].(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("column %s: unrecognised timestamp %q", col, v)
	default:
		return time.Time{}, fmt.Errorf("column %s: unexpected type %T", col, v)
	}
}

// NullTime returns nil for NULL, otherwise the parsed timestamp
func (r Row) NullTime(col string) (*time.Time, error) {
	if r[col] == nil {
		return nil, nil
	}
	t, err := r.Time(col)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// MaskRow returns a copy of row with sensitive columns replaced by "***"
func MaskRow(row Row) Row {
	masked := make(Row, len(row))
	for k, v := range row {
		if isSensitive(k) {
			masked[k] = "***"
			continue
		}
		masked[k] = v
	}
	return masked
}

func isSensitive(col string) bool {
	col = strings.ToLower(col)
	for _, s := range sensitiveColumns {
		if col == s {
			return true
		}
	}
	return false
}
