package table

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// KindOf maps a driver DatabaseTypeName to a column kind.
func KindOf(databaseTypeName string) Kind {
	name := strings.ToUpper(strings.TrimSpace(databaseTypeName))
	name = strings.TrimPrefix(name, "UNSIGNED ")
	switch name {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT", "YEAR":
		return KindInt
	case "DECIMAL", "NUMERIC", "FLOAT", "DOUBLE", "REAL":
		return KindFloat
	case "DATE", "DATETIME", "TIMESTAMP":
		return KindTime
	case "BIT", "BOOL", "BOOLEAN":
		return KindBool
	default:
		return KindString
	}
}

// Convert normalises a raw driver or JSON value to the Go type of kind.
// nil stays nil.
func Convert(kind Kind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if b, ok := v.([]byte); ok {
		if kind == KindBool && len(b) == 1 && b[0] <= 1 {
			return b[0] == 1, nil
		}
		v = string(b)
	}

	switch kind {
	case KindInt:
		return toInt(v)
	case KindFloat:
		return toFloat(v)
	case KindTime:
		return toTime(v)
	case KindBool:
		return toBool(v)
	default:
		return toString(v), nil
	}
}

// AsInt reads a normalised cell as an integer.
func AsInt(v any) (int64, bool) {
	n, err := toInt(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// AsFloat reads a normalised cell as a float.
func AsFloat(v any) (float64, bool) {
	f, err := toFloat(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

// AsString renders a cell as text; NULL becomes "".
func AsString(v any) string {
	if v == nil {
		return ""
	}
	return toString(v)
}

func toInt(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case uint64:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case float64:
		if x != float64(int64(x)) {
			return 0, fmt.Errorf("%w: %v is not integral", ErrConvert, x)
		}
		return int64(x), nil
	case json.Number:
		return strconv.ParseInt(x.String(), 10, 64)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q to int", ErrConvert, x)
		}
		return n, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("%w: %T to int", ErrConvert, v)
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q to float", ErrConvert, x)
		}
		return f, nil
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %T to float", ErrConvert, v)
	}
	return float64(n), nil
}

func toTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q to time", ErrConvert, x)
	}
	return time.Time{}, fmt.Errorf("%w: %T to time", ErrConvert, v)
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return false, fmt.Errorf("%w: %q to bool", ErrConvert, x)
		}
		return b, nil
	}
	n, err := toInt(v)
	if err != nil {
		return false, fmt.Errorf("%w: %T to bool", ErrConvert, v)
	}
	return n != 0, nil
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
