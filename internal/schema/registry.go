package schema

import (
	"fmt"
	"sort"
	"time"
)

// Payload is the output of successful validation: field name to value, every
// value already coerced to its declared type (string, int64, float64, bool,
// time.Time, or raw JSON). A Payload is created fresh per request and is the
// only shape of data the repository layer accepts.
type Payload map[string]any

// GetString returns the named field as a string, reporting whether it was
// present in the payload.
func (p Payload) GetString(name string) (string, bool) {
	v, ok := p[name].(string)
	return v, ok
}

// GetInt returns the named field as an int64.
func (p Payload) GetInt(name string) (int64, bool) {
	v, ok := p[name].(int64)
	return v, ok
}

// GetFloat returns the named field as a float64.
func (p Payload) GetFloat(name string) (float64, bool) {
	v, ok := p[name].(float64)
	return v, ok
}

// GetBool returns the named field as a bool.
func (p Payload) GetBool(name string) (bool, bool) {
	v, ok := p[name].(bool)
	return v, ok
}

// GetTime returns the named field as a time.Time.
func (p Payload) GetTime(name string) (time.Time, bool) {
	v, ok := p[name].(time.Time)
	return v, ok
}

// Schema is the authoritative declaration of one resource type's valid
// shape: an ordered field list plus any cross-field rules.
type Schema struct {
	Resource   string
	Fields     []Field
	CrossField []CrossFieldRule

	fieldSet map[string]struct{}
}

// Validate checks raw against the schema. It returns either a complete
// coerced Payload, or a non-empty slice of field errors ordered by field
// declaration order (unknown payload keys follow, sorted by name). It never
// panics on malformed input.
//
// Per-field checks do not short-circuit: a field with several violated
// constraints reports all of them, and an invalid field never suppresses
// errors on other fields. A field whose type coercion fails skips its
// constraint checks. Cross-field rules run only once every per-field check
// has passed. A JSON null is treated as an absent field.
func (s *Schema) Validate(raw map[string]any) (Payload, []FieldError) {
	var errs []FieldError
	out := make(Payload, len(s.Fields))

	for _, f := range s.Fields {
		value, present := raw[f.Name]
		if !present || value == nil {
			if f.Required {
				errs = append(errs, FieldError{
					Field:   f.Name,
					Kind:    KindMissing,
					Message: "required field is missing",
				})
			}
			continue
		}

		coerced, err := coerce(f.Type, value)
		if err != nil {
			errs = append(errs, FieldError{
				Field:   f.Name,
				Kind:    KindTypeMismatch,
				Message: err.Error(),
			})
			continue
		}

		for _, c := range f.Constraints {
			if v := c.Check(coerced); v != nil {
				errs = append(errs, FieldError{
					Field:   f.Name,
					Kind:    v.Kind,
					Message: v.Message,
				})
			}
		}

		out[f.Name] = coerced
	}

	var unknown []string
	for name := range raw {
		if _, declared := s.fieldSet[name]; !declared {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		errs = append(errs, FieldError{
			Field:   name,
			Kind:    KindUnknown,
			Message: "field is not declared for this resource",
		})
	}

	if len(errs) > 0 {
		return nil, errs
	}

	for _, rule := range s.CrossField {
		if msg := rule.Check(out); msg != "" {
			errs = append(errs, FieldError{
				Field:   rule.Field,
				Kind:    KindCrossField,
				Message: msg,
			})
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	return out, nil
}

// Registry maps resource type names to their schemas. It is built once at
// startup from explicit Register calls and is read-only afterwards, so
// concurrent Validate calls need no locking.
type Registry struct {
	schemas map[string]*Schema
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register adds a schema to the registry. It rejects duplicate resource
// names, duplicate field names, and numeric constraints declared on
// non-numeric fields, so schema authoring mistakes fail at startup rather
// than at request time.
func (r *Registry) Register(s *Schema) error {
	if s.Resource == "" {
		return fmt.Errorf("schema has empty resource name")
	}
	if _, exists := r.schemas[s.Resource]; exists {
		return fmt.Errorf("schema for resource %q already registered", s.Resource)
	}

	s.fieldSet = make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("resource %q declares a field with an empty name", s.Resource)
		}
		if _, dup := s.fieldSet[f.Name]; dup {
			return fmt.Errorf("resource %q declares field %q twice", s.Resource, f.Name)
		}
		for _, c := range f.Constraints {
			if _, isRange := c.(rangeConstraint); isRange && f.Type != TypeInt && f.Type != TypeFloat {
				return fmt.Errorf("resource %q field %q: range constraint requires a numeric type", s.Resource, f.Name)
			}
		}
		s.fieldSet[f.Name] = struct{}{}
	}
	r.schemas[s.Resource] = s
	return nil
}

// MustRegister is Register for startup wiring code; it panics on error.
func (r *Registry) MustRegister(s *Schema) {
	if err := r.Register(s); err != nil {
		// ALLOW-PANIC: startup-time schema declarations are code, not input
		panic(err)
	}
}

// Schema returns the schema registered for the resource, if any.
func (r *Registry) Schema(resource string) (*Schema, bool) {
	s, ok := r.schemas[resource]
	return s, ok
}

// Resources returns the registered resource names in sorted order.
func (r *Registry) Resources() []string {
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate validates raw against the schema registered for resource.
// A nil error with a nil FieldError slice means the payload is valid.
// ErrUnknownResource indicates a wiring bug, never bad client input.
func (r *Registry) Validate(resource string, raw map[string]any) (Payload, []FieldError, error) {
	s, ok := r.schemas[resource]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownResource, resource)
	}
	payload, fieldErrs := s.Validate(raw)
	return payload, fieldErrs, nil
}
