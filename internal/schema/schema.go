package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FieldKind classifies how a clinical parameter is validated and edited.
type FieldKind int

const (
	// Continuous is a free numeric value (age, blood urea, ...).
	Continuous FieldKind = iota
	// Ordinal is a small integer scale (albumin and sugar, 0-5).
	Ordinal
	// Binary is a 0/1 encoded categorical.
	Binary
	// Enum is restricted to a fixed set of lab-standard values
	// (specific gravity).
	Enum
)

// Field describes one clinical parameter of a schema.
type Field struct {
	Name    string
	Label   string
	Unit    string
	Kind    FieldKind
	Min     float64
	Max     float64
	Step    float64
	Default float64
	Allowed []float64 // Enum only
}

// Schema is a named, ordered set of fields. The order is the column order
// the classifier was trained on; records are always vectorized in this
// order.
type Schema struct {
	Name   string
	fields []Field
	index  map[string]int
}

func newSchema(name string, fields []Field) *Schema {
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[f.Name] = i
	}
	return &Schema{Name: name, fields: fields, index: index}
}

// Fields returns the fields in model order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// FieldNames returns the field names in model order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	return len(s.fields)
}

// ValidationError reports a field that is missing, non-numeric, or outside
// its declared domain.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.Field, e.Reason)
}

// Record is a validated feature vector bound to its schema.
type Record struct {
	schema *Schema
	values []float64
}

// Schema returns the schema this record was assembled against.
func (r *Record) Schema() *Schema {
	return r.schema
}

// Vector returns the feature values in model order.
func (r *Record) Vector() []float64 {
	out := make([]float64, len(r.values))
	copy(out, r.values)
	return out
}

// Value returns the value of a named field.
func (r *Record) Value(name string) (float64, bool) {
	i, ok := r.schema.index[name]
	if !ok {
		return 0, false
	}
	return r.values[i], true
}

// Assemble converts raw textual form input into a Record. Every schema
// field must be present and convert to its declared numeric type; raw keys
// outside the schema are ignored. The returned record has exactly the
// schema's fields, in model order.
func Assemble(s *Schema, raw map[string]string) (*Record, error) {
	values := make([]float64, len(s.fields))
	for i, f := range s.fields {
		text, ok := raw[f.Name]
		if !ok || strings.TrimSpace(text) == "" {
			return nil, &ValidationError{Field: f.Name, Reason: "missing"}
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, &ValidationError{Field: f.Name, Reason: "not a number"}
		}
		if err := checkDomain(f, v); err != nil {
			return nil, err
		}
		values[i] = v
	}
	return &Record{schema: s, values: values}, nil
}

// FromValues builds a Record from already-numeric input, applying the same
// domain checks as Assemble. Used by the dashboard, where widgets supply
// numbers directly.
func FromValues(s *Schema, input map[string]float64) (*Record, error) {
	values := make([]float64, len(s.fields))
	for i, f := range s.fields {
		v, ok := input[f.Name]
		if !ok {
			return nil, &ValidationError{Field: f.Name, Reason: "missing"}
		}
		if err := checkDomain(f, v); err != nil {
			return nil, err
		}
		values[i] = v
	}
	return &Record{schema: s, values: values}, nil
}

func checkDomain(f Field, v float64) error {
	switch f.Kind {
	case Ordinal:
		if v != math.Trunc(v) || v < f.Min || v > f.Max {
			return &ValidationError{
				Field:  f.Name,
				Reason: fmt.Sprintf("must be an integer between %g and %g", f.Min, f.Max),
			}
		}
	case Binary:
		if v != 0 && v != 1 {
			return &ValidationError{Field: f.Name, Reason: "must be 0 or 1"}
		}
	case Enum:
		for _, a := range f.Allowed {
			if v == a {
				return nil
			}
		}
		return &ValidationError{
			Field:  f.Name,
			Reason: fmt.Sprintf("must be one of %v", f.Allowed),
		}
	}
	return nil
}
