package data

import (
	"cmp"
	"strconv"
	"strings"
	"time"

	"github.com/aoideee/catalogs/internal/validator"
)

// Record is implemented by every catalog entity. Implementations are value
// types so a store can hand out copies without aliasing its own state.
type Record[T any] interface {
	// Identifier returns the primary key.
	Identifier() string
	// Normalized returns a copy with free-text fields trimmed.
	Normalized() T
	// Validate records field failures on v in declaration order. now is only
	// consulted by clock-dependent rules.
	Validate(v *validator.Validator, now time.Time)
}

// Kind describes how a field is compared, parsed and rendered.
type Kind int

const (
	KindText Kind = iota
	KindEnum
	KindFloat
	KindInt
	KindTime
)

// Expect describes the value a field of kind k must hold.
func (k Kind) Expect() string {
	switch k {
	case KindFloat:
		return "must be a number"
	case KindInt:
		return "must be an integer"
	case KindTime:
		return "must be an RFC 3339 timestamp"
	default:
		return "must be a string"
	}
}

// Field is one entry of a schema's closed field registry.
type Field[T any] struct {
	Name       string
	Kind       Kind
	Values     []string // permitted literals for KindEnum
	Filterable bool     // exact-match filter accepted in list queries
	Searchable bool     // included in the case-insensitive search stage
	Value      func(T) any
}

// Text renders the field of r the way the search stage and CSV export see it.
func (f Field[T]) Text(r T) string {
	return textOf(f.Value(r))
}

func (f Field[T]) parse(raw string) (any, error) {
	switch f.Kind {
	case KindEnum:
		if !validator.In(raw, f.Values...) {
			return nil, invalid(f.Name, "not a recognized value")
		}
		return raw, nil
	case KindFloat:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, invalid(f.Name, f.Kind.Expect())
		}
		return v, nil
	case KindInt:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, invalid(f.Name, f.Kind.Expect())
		}
		return v, nil
	case KindTime:
		v, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, invalid(f.Name, f.Kind.Expect())
		}
		return v.UTC(), nil
	default:
		return raw, nil
	}
}

// Schema describes one catalog: its table, primary key and field registry in
// declaration order.
type Schema[T Record[T]] struct {
	Resource    string // singular, used as the JSON envelope key
	Plural      string
	Table       string
	Key         string
	Fields      []Field[T]
	CreateTable string
}

// Field looks name up in the registry.
func (s *Schema[T]) Field(name string) (Field[T], bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field[T]{}, false
}

// FieldNames returns every field name in declaration order.
func (s *Schema[T]) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// FilterNames returns the names accepted as exact-match filters.
func (s *Schema[T]) FilterNames() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Filterable {
			names = append(names, f.Name)
		}
	}
	return names
}

// Validate normalizes r and checks it. The result is the normalized record;
// the error, if any, is a *ValidationError for the first failing field.
func (s *Schema[T]) Validate(r T, now time.Time) (T, error) {
	n := r.Normalized()
	v := validator.New()
	n.Validate(v, now.UTC())
	if field, reason, failed := v.First(); failed {
		return n, invalid(field, reason)
	}
	return n, nil
}

func (s *Schema[T]) key() Field[T] {
	f, _ := s.Field(s.Key)
	return f
}

func textOf(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	default:
		return ""
	}
}

func compareValues(a, b any) int {
	switch x := a.(type) {
	case string:
		return strings.Compare(x, b.(string))
	case float64:
		return cmp.Compare(x, b.(float64))
	case int:
		return cmp.Compare(x, b.(int))
	case time.Time:
		return x.Compare(b.(time.Time))
	default:
		return 0
	}
}

func equalValues(a, b any) bool {
	return compareValues(a, b) == 0
}
