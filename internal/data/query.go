package data

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Default pagination values used when the caller supplies none.
const (
	DefaultPage    = 1
	DefaultPerPage = 10
)

// Query holds the search, filter, sort and pagination parameters of a list
// request, still in their raw string form.
type Query struct {
	Search  string
	Filters map[string]string // field name -> exact value
	Sort    string            // field name, prefix with "-" for descending
	Page    int
	PerPage int
}

// NewQuery returns a Query with default pagination and no narrowing.
func NewQuery() Query {
	return Query{Filters: map[string]string{}, Page: DefaultPage, PerPage: DefaultPerPage}
}

// Condition is an exact-match filter with its value already parsed by kind.
type Condition[T any] struct {
	Field Field[T]
	Value any
}

// Plan is a Query checked against a schema's field registry. Stores execute
// its stages in order: search, filter, sort, paginate.
type Plan[T Record[T]] struct {
	Search     string
	Searchable []Field[T]
	Conditions []Condition[T]
	SortBy     *Field[T]
	Descending bool
	Key        Field[T]
	Limit      int // zero means unbounded
	Offset     int
}

// Plan validates q and resolves every field name it mentions.
func (s *Schema[T]) Plan(q Query) (Plan[T], error) {
	p := s.everything()
	p.Search = q.Search

	if q.Page < 1 {
		return p, invalid("page", "must be greater than zero")
	}
	if q.PerPage < 1 {
		return p, invalid("per_page", "must be greater than zero")
	}
	p.Limit = q.PerPage
	// A page past math.MaxInt rows is empty; clamp instead of overflowing.
	if q.Page-1 > math.MaxInt/q.PerPage {
		p.Offset = math.MaxInt
	} else {
		p.Offset = (q.Page - 1) * q.PerPage
	}

	names := make([]string, 0, len(q.Filters))
	for name := range q.Filters {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		f, ok := s.Field(name)
		if !ok || !f.Filterable {
			return p, invalid(name, "is not a filterable field")
		}
		v, err := f.parse(q.Filters[name])
		if err != nil {
			return p, err
		}
		p.Conditions = append(p.Conditions, Condition[T]{Field: f, Value: v})
	}

	if q.Sort != "" {
		name := strings.TrimPrefix(q.Sort, "-")
		f, ok := s.Field(name)
		if !ok {
			return p, invalid("sort", fmt.Sprintf("unknown sort field %q", name))
		}
		p.SortBy = &f
		p.Descending = strings.HasPrefix(q.Sort, "-")
	}

	return p, nil
}

// everything is the plan used by export: all rows, primary-key order.
func (s *Schema[T]) everything() Plan[T] {
	p := Plan[T]{Key: s.key()}
	for _, f := range s.Fields {
		if f.Searchable {
			p.Searchable = append(p.Searchable, f)
		}
	}
	return p
}

// Apply runs the pipeline over records held in memory. records must already
// be in primary-key order, which becomes the tie-break for the sort stage.
func (p Plan[T]) Apply(records []T) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if p.matchesSearch(r) && p.matchesConditions(r) {
			out = append(out, r)
		}
	}

	if p.SortBy != nil {
		by := *p.SortBy
		slices.SortStableFunc(out, func(a, b T) int {
			c := compareValues(by.Value(a), by.Value(b))
			if p.Descending {
				return -c
			}
			return c
		})
	}

	if p.Offset < 0 || p.Offset >= len(out) {
		return []T{}
	}
	out = out[p.Offset:]
	if p.Limit > 0 && p.Limit < len(out) {
		out = out[:p.Limit]
	}
	return out
}

func (p Plan[T]) matchesSearch(r T) bool {
	if p.Search == "" {
		return true
	}
	needle := strings.ToLower(p.Search)
	for _, f := range p.Searchable {
		if strings.Contains(strings.ToLower(f.Text(r)), needle) {
			return true
		}
	}
	return false
}

func (p Plan[T]) matchesConditions(r T) bool {
	for _, c := range p.Conditions {
		if !equalValues(c.Field.Value(r), c.Value) {
			return false
		}
	}
	return true
}
