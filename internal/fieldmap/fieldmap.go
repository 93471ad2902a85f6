// Package fieldmap translates records between the local mirror's camelCase
// field names and the remote store's snake_case columns.
//
// Names come from the explicit per-table column lists in package schema. A
// key the table does not declare falls back to a convention-based renamer,
// so unknown fields still travel (renamed, untyped) instead of failing.
//
// Timestamps leave the client as ISO-8601 UTC strings with millisecond
// precision and are parsed back into time.Time on the way in.
package fieldmap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/dmitrijs2005/lifesync/internal/schema"
)

// ErrMalformedRecord marks a record that cannot be translated. The sync
// engine treats it like a per-record remote rejection.
var ErrMalformedRecord = errors.New("malformed record")

// TimeLayout is the wire form of every timestamp.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Record is a local, camelCase keyed record.
type Record map[string]any

// Row is a remote, snake_case keyed row.
type Row map[string]any

var timestampFields = map[string]struct{}{
	schema.FieldCreatedAt: {},
	schema.FieldUpdatedAt: {},
	schema.FieldDeletedAt: {},
	"startedAt":           {},
	"completedAt":         {},
}

// IsTimestampField reports whether a local field holds an instant.
func IsTimestampField(name string) bool {
	_, ok := timestampFields[name]
	return ok
}

// FormatTime renders t in the wire layout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime accepts any RFC 3339 string, which covers both the wire layout
// and the offset form Postgres returns.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ToRemote renames rec for table t and serializes timestamps. The local-only
// pendingSync field is dropped. Missing required columns and unreadable
// timestamps yield ErrMalformedRecord.
func ToRemote(t schema.Table, rec Record) (Row, error) {
	row := make(Row, len(rec))

	for key, value := range rec {
		if key == schema.FieldPendingSync {
			continue
		}

		name := SnakeCase(key)
		col, known := t.ByLocal(key)
		if known {
			name = col.Remote
		}

		v, err := remoteValue(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %v", ErrMalformedRecord, t.Local, key, err)
		}
		if known && col.Kind == schema.KindTime {
			if s, ok := v.(string); ok {
				if _, err := ParseTime(s); err != nil {
					return nil, fmt.Errorf("%w: %s.%s: %v", ErrMalformedRecord, t.Local, key, err)
				}
			}
		}
		row[name] = v
	}

	for _, col := range t.Columns() {
		v, present := row[col.Remote]
		switch {
		case !present && col.Nullable:
			row[col.Remote] = nil
		case (!present || v == nil) && !col.Nullable:
			return nil, fmt.Errorf("%w: %s is missing %s", ErrMalformedRecord, t.Local, col.Local)
		}
	}

	if id, ok := row[schema.ColumnID].(string); !ok || id == "" {
		return nil, fmt.Errorf("%w: %s has an empty id", ErrMalformedRecord, t.Local)
	}

	return row, nil
}

func remoteValue(v any) (any, error) {
	switch value := v.(type) {
	case time.Time:
		return FormatTime(value), nil
	case *time.Time:
		if value == nil {
			return nil, nil
		}
		return FormatTime(*value), nil
	default:
		return v, nil
	}
}

// ToLocal renames row for table t and parses timestamp fields. The
// remote-only user_id column is dropped.
func ToLocal(t schema.Table, row Row) (Record, error) {
	rec := make(Record, len(row))

	for key, value := range row {
		if key == schema.ColumnUserID {
			continue
		}

		name := CamelCase(key)
		if col, ok := t.ByRemote(key); ok {
			name = col.Local
		}

		if s, ok := value.(string); ok && IsTimestampField(name) {
			parsed, err := ParseTime(s)
			if err != nil {
				return nil, fmt.Errorf("%w: %s.%s: %v", ErrMalformedRecord, t.Remote, key, err)
			}
			rec[name] = parsed
			continue
		}
		rec[name] = value
	}

	return rec, nil
}

// FromStruct converts an entity into a Record through its JSON form.
// Timestamp fields come back as time.Time and numbers as json.Number.
func FromStruct(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	for key, value := range rec {
		s, ok := value.(string)
		if !ok || !IsTimestampField(key) {
			continue
		}
		parsed, err := ParseTime(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedRecord, key, err)
		}
		rec[key] = parsed
	}

	return rec, nil
}

// IntoStruct fills dst, a pointer to an entity, from rec.
func IntoStruct(rec Record, dst any) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return nil
}

// SnakeCase is the fallback renamer for keys no table declares:
// "fooBar" becomes "foo_bar" and "per100g" becomes "per_100g".
func SnakeCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	var prev rune
	for i, r := range s {
		switch {
		case unicode.IsUpper(r):
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsDigit(r) && unicode.IsLower(prev):
			b.WriteByte('_')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
		prev = r
	}

	return b.String()
}

// CamelCase reverses SnakeCase.
func CamelCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	upper := false
	for _, r := range s {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}

	return b.String()
}
