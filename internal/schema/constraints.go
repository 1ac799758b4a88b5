package schema

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Violation is the result of a failed constraint check: the error kind plus
// a human-readable message naming the expected bound.
type Violation struct {
	Kind    ErrorKind
	Message string
}

// Constraint checks one already-coerced field value. Implementations must be
// pure and safe for concurrent use; constraints never see values whose type
// coercion failed.
type Constraint interface {
	// Check returns nil when the value satisfies the constraint.
	Check(value any) *Violation
}

// Range constrains a numeric field to an inclusive interval. Either bound
// may be omitted by using RangeMin/RangeMax.
type rangeConstraint struct {
	min, max float64
	hasMin   bool
	hasMax   bool
}

// Range returns a constraint requiring min <= value <= max.
func Range(min, max float64) Constraint {
	return rangeConstraint{min: min, max: max, hasMin: true, hasMax: true}
}

// RangeMin returns a constraint requiring value >= min.
func RangeMin(min float64) Constraint {
	return rangeConstraint{min: min, hasMin: true}
}

// RangeMax returns a constraint requiring value <= max.
func RangeMax(max float64) Constraint {
	return rangeConstraint{max: max, hasMax: true}
}

func (c rangeConstraint) Check(value any) *Violation {
	var f float64
	switch v := value.(type) {
	case int64:
		f = float64(v)
	case float64:
		f = v
	default:
		// Range declared on a non-numeric field is a schema authoring bug;
		// Registry.Register rejects it before validation can get here.
		return &Violation{Kind: KindRangeViolation, Message: fmt.Sprintf("range constraint on non-numeric value %T", value)}
	}
	if c.hasMin && f < c.min {
		return &Violation{Kind: KindRangeViolation, Message: fmt.Sprintf("must be at least %v", c.min)}
	}
	if c.hasMax && f > c.max {
		return &Violation{Kind: KindRangeViolation, Message: fmt.Sprintf("must be at most %v", c.max)}
	}
	return nil
}

type patternConstraint struct {
	re *regexp.Regexp
}

// Pattern returns a constraint requiring a string value to match expr.
// The expression is compiled at registration time; an invalid expression
// panics, which is correct for declarations built in code at startup.
func Pattern(expr string) Constraint {
	return patternConstraint{re: regexp.MustCompile(expr)}
}

func (c patternConstraint) Check(value any) *Violation {
	s, ok := value.(string)
	if !ok {
		return &Violation{Kind: KindPatternMismatch, Message: fmt.Sprintf("pattern constraint on non-string value %T", value)}
	}
	if !c.re.MatchString(s) {
		return &Violation{Kind: KindPatternMismatch, Message: fmt.Sprintf("must match %s", c.re.String())}
	}
	return nil
}

type enumConstraint struct {
	values []string
}

// OneOf returns a constraint requiring a string value to be one of the
// given members.
func OneOf(values ...string) Constraint {
	return enumConstraint{values: values}
}

func (c enumConstraint) Check(value any) *Violation {
	s, ok := value.(string)
	if !ok {
		return &Violation{Kind: KindEnumViolation, Message: fmt.Sprintf("enum constraint on non-string value %T", value)}
	}
	for _, v := range c.values {
		if s == v {
			return nil
		}
	}
	return &Violation{
		Kind:    KindEnumViolation,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(c.values, ", ")),
	}
}

// CrossFieldRule is a constraint spanning multiple fields. Rules run only
// after every per-field check has passed, so they never fire on values that
// are independently invalid.
type CrossFieldRule struct {
	// Field names the field the resulting error is reported against.
	Field string

	// Check inspects the fully coerced payload and returns a non-empty
	// message on violation. Absent optional fields appear as missing keys.
	Check func(p Payload) string
}

// DateOrder returns a cross-field rule requiring that, when both are
// present, the value of endField does not precede the value of startField.
func DateOrder(startField, endField string) CrossFieldRule {
	return CrossFieldRule{
		Field: endField,
		Check: func(p Payload) string {
			start, okStart := p[startField].(time.Time)
			end, okEnd := p[endField].(time.Time)
			if !okStart || !okEnd {
				return ""
			}
			if end.Before(start) {
				return fmt.Sprintf("must not precede %s", startField)
			}
			return ""
		},
	}
}
