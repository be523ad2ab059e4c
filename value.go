package stelace

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// canonicalValue normalizes a record value for cursor encoding so that
// decode(encode(v)) compares equal to a freshly fetched copy of v.
// Dates become their RFC 3339 string form in UTC regardless of source
// zone or sub-second precision.
func canonicalValue(t SortKeyType, v any) (any, error) {
	switch t {
	case SortKeyNumber:
		if _, ok := toFloat64(v); !ok {
			return nil, fmt.Errorf("value %v (%T) is not a number", v, v)
		}
		return v, nil
	case SortKeyBoolean:
		if _, ok := v.(bool); !ok {
			return nil, fmt.Errorf("value %v (%T) is not a boolean", v, v)
		}
		return v, nil
	case SortKeyDate:
		ts, ok := toTime(v)
		if !ok {
			return nil, fmt.Errorf("value %v (%T) is not a date", v, v)
		}
		return ts.UTC().Format(time.RFC3339Nano), nil
	case SortKeyString:
		switch vt := v.(type) {
		case string:
			return vt, nil
		case []byte:
			return string(vt), nil
		default:
			return nil, fmt.Errorf("value %v (%T) is not a string", v, v)
		}
	default:
		return nil, fmt.Errorf("unknown sort key type '%s'", t)
	}
}

// parseValue interprets one raw JSON cursor value as its declared type.
// Numbers become int64 when integral so large identifiers survive the
// round trip without a float in between.
func parseValue(t SortKeyType, raw json.RawMessage) (any, error) {
	switch t {
	case SortKeyNumber:
		var num json.Number
		if err := json.Unmarshal(raw, &num); err != nil {
			return nil, fmt.Errorf("not a number: %w", err)
		}
		if i, err := num.Int64(); err == nil {
			return i, nil
		}
		f, err := num.Float64()
		if err != nil {
			return nil, fmt.Errorf("not a number: %w", err)
		}
		return f, nil
	case SortKeyBoolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("not a boolean: %w", err)
		}
		return b, nil
	case SortKeyDate:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("not a date string: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("not an RFC 3339 date: %w", err)
		}
		return ts, nil
	case SortKeyString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("not a string: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown sort key type '%s'", t)
	}
}

// equalValue reports whether a decoded cursor value and a record value
// denote the same point of the total order, coercing across the Go
// representations either side may use.
func equalValue(t SortKeyType, cursorValue, recordValue any) bool {
	switch t {
	case SortKeyNumber:
		// Integral values compare exactly: adjacent identifiers beyond
		// 2^53 fall within one float64 ulp and would alias through a
		// float.
		if a, okA := toInt64(cursorValue); okA {
			if b, okB := toInt64(recordValue); okB {
				return a == b
			}
		}
		a, okA := toFloat64(cursorValue)
		b, okB := toFloat64(recordValue)
		return okA && okB && a == b
	case SortKeyBoolean:
		a, okA := cursorValue.(bool)
		b, okB := recordValue.(bool)
		return okA && okB && a == b
	case SortKeyDate:
		a, okA := toTime(cursorValue)
		b, okB := toTime(recordValue)
		return okA && okB && a.Equal(b)
	case SortKeyString:
		a, okA := toString(cursorValue)
		b, okB := toString(recordValue)
		return okA && okB && a == b
	default:
		return false
	}
}

func toFloat64(v any) (float64, bool) {
	switch vt := v.(type) {
	case int:
		return float64(vt), true
	case int8:
		return float64(vt), true
	case int16:
		return float64(vt), true
	case int32:
		return float64(vt), true
	case int64:
		return float64(vt), true
	case uint:
		return float64(vt), true
	case uint8:
		return float64(vt), true
	case uint16:
		return float64(vt), true
	case uint32:
		return float64(vt), true
	case uint64:
		return float64(vt), true
	case float32:
		return float64(vt), true
	case float64:
		return vt, true
	case json.Number:
		f, err := vt.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// toInt64 converts losslessly or not at all: out-of-range unsigned and
// non-integral floats report false rather than a truncated value.
func toInt64(v any) (int64, bool) {
	switch vt := v.(type) {
	case int:
		return int64(vt), true
	case int8:
		return int64(vt), true
	case int16:
		return int64(vt), true
	case int32:
		return int64(vt), true
	case int64:
		return vt, true
	case uint:
		return toInt64(uint64(vt))
	case uint8:
		return int64(vt), true
	case uint16:
		return int64(vt), true
	case uint32:
		return int64(vt), true
	case uint64:
		if vt > math.MaxInt64 {
			return 0, false
		}
		return int64(vt), true
	case float32:
		return toInt64(float64(vt))
	case float64:
		if vt != math.Trunc(vt) || vt < math.MinInt64 || vt >= math.MaxInt64 {
			return 0, false
		}
		return int64(vt), true
	case json.Number:
		i, err := vt.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

func toTime(v any) (time.Time, bool) {
	switch vt := v.(type) {
	case time.Time:
		return vt, true
	case *time.Time:
		if vt == nil {
			return time.Time{}, false
		}
		return *vt, true
	case string:
		ts, err := time.Parse(time.RFC3339Nano, vt)
		return ts, err == nil
	case []byte:
		ts, err := time.Parse(time.RFC3339Nano, string(vt))
		return ts, err == nil
	default:
		return time.Time{}, false
	}
}

func toString(v any) (string, bool) {
	switch vt := v.(type) {
	case string:
		return vt, true
	case []byte:
		return string(vt), true
	default:
		return "", false
	}
}

