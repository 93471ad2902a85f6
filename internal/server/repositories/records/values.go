package records

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/common"
	"github.com/dmitrijs2005/lifesync/internal/fieldmap"
	"github.com/dmitrijs2005/lifesync/internal/schema"
)

func invalid(col schema.Column, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", common.ErrorValidation, col.Remote, fmt.Sprintf(format, args...))
}

// toDB converts a wire value into the parameter stored for col.
func toDB(col schema.Column, v any) (any, error) {
	if v == nil {
		if col.Nullable {
			return nil, nil
		}
		return nil, invalid(col, "is required")
	}

	switch col.Kind {
	case schema.KindString:
		s, ok := v.(string)
		if !ok {
			return nil, invalid(col, "want string, got %T", v)
		}
		return s, nil
	case schema.KindInt:
		return toInt(col, v)
	case schema.KindFloat:
		return toFloat(col, v)
	case schema.KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, invalid(col, "want bool, got %T", v)
		}
		return b, nil
	case schema.KindTime:
		switch value := v.(type) {
		case time.Time:
			return value.UTC(), nil
		case string:
			t, err := fieldmap.ParseTime(value)
			if err != nil {
				return nil, invalid(col, "%v", err)
			}
			return t, nil
		}
		return nil, invalid(col, "want timestamp, got %T", v)
	case schema.KindDate:
		s, ok := v.(string)
		if !ok {
			return nil, invalid(col, "want date, got %T", v)
		}
		if _, err := time.Parse(common.DateLayout, s); err != nil {
			return nil, invalid(col, "%v", err)
		}
		return s, nil
	default:
		return nil, invalid(col, "unknown kind %s", col.Kind)
	}
}

func toInt(col schema.Column, v any) (any, error) {
	switch value := v.(type) {
	case json.Number:
		if n, err := value.Int64(); err == nil {
			return n, nil
		}
		f, err := value.Float64()
		if err != nil {
			return nil, invalid(col, "%v", err)
		}
		return toInt(col, f)
	case float64:
		if value != math.Trunc(value) {
			return nil, invalid(col, "%v is not an integer", value)
		}
		return int64(value), nil
	case int:
		return int64(value), nil
	case int32:
		return int64(value), nil
	case int64:
		return value, nil
	}
	return nil, invalid(col, "want integer, got %T", v)
}

func toFloat(col schema.Column, v any) (any, error) {
	switch value := v.(type) {
	case json.Number:
		f, err := value.Float64()
		if err != nil {
			return nil, invalid(col, "%v", err)
		}
		return f, nil
	case float64:
		return value, nil
	case float32:
		return float64(value), nil
	case int:
		return float64(value), nil
	case int64:
		return float64(value), nil
	}
	return nil, invalid(col, "want number, got %T", v)
}

// fromDB converts a scanned value into its wire form.
func fromDB(col schema.Column, v any) any {
	switch value := v.(type) {
	case nil:
		return nil
	case time.Time:
		if col.Kind == schema.KindDate {
			return value.Format(common.DateLayout)
		}
		return fieldmap.FormatTime(value)
	case []byte:
		return string(value)
	default:
		return v
	}
}
