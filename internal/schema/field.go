// Package schema implements the declarative schema registry and the
// validation engine that enforces it. Each resource type declares an ordered
// list of typed fields with constraints; inbound payloads are validated and
// coerced against that declaration before they may reach the repository
// layer.
package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FieldType identifies the declared type of a schema field.
type FieldType int

const (
	// TypeString accepts string values only.
	TypeString FieldType = iota

	// TypeInt accepts integer values. Numeric strings and whole-valued
	// floats coerce; fractional values are a type mismatch.
	TypeInt

	// TypeFloat accepts floating point values. Integers and numeric
	// strings coerce.
	TypeFloat

	// TypeBool accepts booleans and the strings "true"/"false".
	TypeBool

	// TypeDate accepts "YYYY-MM-DD" strings or time.Time values; the
	// coerced value is a time.Time at midnight UTC.
	TypeDate

	// TypeDateTime accepts RFC 3339 strings or time.Time values.
	TypeDateTime

	// TypeJSON accepts any JSON value verbatim (objects, arrays, scalars).
	TypeJSON
)

// String returns the lowercase name of the type for use in error messages.
func (t FieldType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "boolean"
	case TypeDate:
		return "date"
	case TypeDateTime:
		return "datetime"
	case TypeJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Field declares one named, typed slot in a resource schema.
type Field struct {
	Name        string
	Type        FieldType
	Required    bool
	Constraints []Constraint
}

// dateLayout is the accepted wire format for TypeDate values.
const dateLayout = "2006-01-02"

// coerce converts a raw payload value to the field type's canonical Go
// representation: string, int64, float64, bool, time.Time, or (for TypeJSON)
// the value unchanged. Coercion rules are fixed and lossless; anything that
// would lose information is rejected.
func coerce(t FieldType, value any) (any, error) {
	switch t {
	case TypeString:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", value)
		}
		return s, nil

	case TypeInt:
		return coerceInt(value)

	case TypeFloat:
		return coerceFloat(value)

	case TypeBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			switch strings.ToLower(v) {
			case "true":
				return true, nil
			case "false":
				return false, nil
			}
			return nil, fmt.Errorf("expected boolean, got string %q", v)
		default:
			return nil, fmt.Errorf("expected boolean, got %T", value)
		}

	case TypeDate:
		switch v := value.(type) {
		case time.Time:
			return v, nil
		case string:
			parsed, err := time.Parse(dateLayout, v)
			if err != nil {
				return nil, fmt.Errorf("expected date in %s format, got %q", dateLayout, v)
			}
			return parsed, nil
		default:
			return nil, fmt.Errorf("expected date, got %T", value)
		}

	case TypeDateTime:
		switch v := value.(type) {
		case time.Time:
			return v, nil
		case string:
			parsed, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return nil, fmt.Errorf("expected RFC 3339 timestamp, got %q", v)
			}
			return parsed, nil
		default:
			return nil, fmt.Errorf("expected datetime, got %T", value)
		}

	case TypeJSON:
		return value, nil

	default:
		return nil, fmt.Errorf("unsupported field type %d", t)
	}
}

// coerceInt converts numeric inputs to int64. JSON decoding produces float64
// for every number, so whole-valued floats are accepted; fractional values
// are not silently truncated.
func coerceInt(value any) (any, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("expected integer, got fractional value %v", v)
		}
		if v > math.MaxInt64 || v < math.MinInt64 {
			return nil, fmt.Errorf("integer value %v out of range", v)
		}
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("expected integer, got string %q", v)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("expected integer, got %T", value)
	}
}

// coerceFloat converts numeric inputs to float64.
func coerceFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("expected float, got string %q", v)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("expected float, got %T", value)
	}
}
