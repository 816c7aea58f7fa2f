package query

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"pixelforge-server-go/internal/platform/errors"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// Op is a predicate operator applied to a single column.
type Op string

const (
	OpEq  Op = "eq"
	OpGte Op = "gte"
	OpLte Op = "lte"
	OpLt  Op = "lt"
)

// FilterKind determines how a raw query parameter is parsed and matched.
type FilterKind int

const (
	FilterEnum     FilterKind = iota // equality against a closed value set
	FilterString                     // equality against an arbitrary string
	FilterUint                       // equality against a numeric identifier
	FilterTimeFrom                   // inclusive lower bound on a time column
	FilterTimeTo                     // inclusive upper bound on a time column
)

// Filter describes one allowed filter parameter of a collection.
type Filter struct {
	Column  string
	Kind    FilterKind
	Allowed []string // enum whitelist, only for FilterEnum
}

// Definition is the queryable surface of one collection: which fields may
// be sorted on and which filters are accepted. Anything outside the
// definition is rejected before a query is built.
type Definition struct {
	SortFields  map[string]string // parameter name -> column
	Filters     map[string]Filter // parameter name -> filter
	DefaultSort string
	Tiebreak    string // unique column appended to every sort for stable pagination
}

// Condition is one validated predicate, ready to be bound to a query.
type Condition struct {
	Column string
	Op     Op
	Value  any
}

// Spec is a fully validated filter/sort/pagination request.
type Spec struct {
	Page       int
	PageSize   int
	SortColumn string
	SortDir    SortDir
	Tiebreak   string
	Conditions []Condition
}

// Offset returns the row offset of the requested page.
func (s *Spec) Offset() int {
	return (s.Page - 1) * s.PageSize
}

// OrderClause renders the sort with its deterministic tiebreak.
func (s *Spec) OrderClause() string {
	clause := s.SortColumn + " " + string(s.SortDir)
	if s.Tiebreak != "" && s.Tiebreak != s.SortColumn {
		clause += ", " + s.Tiebreak + " asc"
	}
	return clause
}

// PagedResult carries one page of rows plus the predicate-matching total.
type PagedResult[T any] struct {
	Items    []T   `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

// Parse validates the raw request parameters against the definition and
// builds a Spec. Validation happens once, here, and collects every
// offending field instead of stopping at the first.
func (d Definition) Parse(params map[string]string) (*Spec, error) {
	var fields []errors.FieldError

	spec := &Spec{
		Page:     1,
		PageSize: DefaultPageSize,
		SortDir:  SortDesc,
		Tiebreak: d.Tiebreak,
	}

	if raw, ok := params["page"]; ok && raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			fields = append(fields, errors.FieldError{Field: "page", Message: "must be an integer >= 1"})
		} else {
			spec.Page = page
		}
	}

	if raw, ok := params["pageSize"]; ok && raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > MaxPageSize {
			fields = append(fields, errors.FieldError{
				Field:   "pageSize",
				Message: fmt.Sprintf("must be an integer in [1, %d]", MaxPageSize),
			})
		} else {
			spec.PageSize = size
		}
	}

	sortField := d.DefaultSort
	if raw, ok := params["sortField"]; ok && raw != "" {
		sortField = raw
	}
	if column, ok := d.SortFields[sortField]; ok {
		spec.SortColumn = column
	} else {
		fields = append(fields, errors.FieldError{Field: "sortField", Message: "unknown sort field"})
	}

	if raw, ok := params["sortDir"]; ok && raw != "" {
		switch SortDir(raw) {
		case SortAsc, SortDesc:
			spec.SortDir = SortDir(raw)
		default:
			fields = append(fields, errors.FieldError{Field: "sortDir", Message: "must be asc or desc"})
		}
	}

	// Deterministic parameter order keeps error lists and generated
	// predicates stable across calls.
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		switch name {
		case "page", "pageSize", "sortField", "sortDir":
			continue
		}
		raw := params[name]
		if raw == "" {
			continue
		}

		filter, ok := d.Filters[name]
		if !ok {
			fields = append(fields, errors.FieldError{Field: name, Message: "unknown filter"})
			continue
		}

		cond, fieldErr := filter.parse(name, raw)
		if fieldErr != nil {
			fields = append(fields, *fieldErr)
			continue
		}
		spec.Conditions = append(spec.Conditions, cond)
	}

	if len(fields) > 0 {
		return nil, errors.NewValidation("query.parse", fields)
	}
	return spec, nil
}

func (f Filter) parse(name, raw string) (Condition, *errors.FieldError) {
	switch f.Kind {
	case FilterEnum:
		for _, allowed := range f.Allowed {
			if raw == allowed {
				return Condition{Column: f.Column, Op: OpEq, Value: raw}, nil
			}
		}
		return Condition{}, &errors.FieldError{
			Field:   name,
			Message: fmt.Sprintf("must be one of %v", f.Allowed),
		}

	case FilterString:
		return Condition{Column: f.Column, Op: OpEq, Value: raw}, nil

	case FilterUint:
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return Condition{}, &errors.FieldError{Field: name, Message: "must be a positive integer"}
		}
		return Condition{Column: f.Column, Op: OpEq, Value: id}, nil

	case FilterTimeFrom:
		ts, _, err := parseTime(raw)
		if err != nil {
			return Condition{}, &errors.FieldError{Field: name, Message: "must be an RFC3339 timestamp or YYYY-MM-DD date"}
		}
		return Condition{Column: f.Column, Op: OpGte, Value: ts}, nil

	case FilterTimeTo:
		ts, dateOnly, err := parseTime(raw)
		if err != nil {
			return Condition{}, &errors.FieldError{Field: name, Message: "must be an RFC3339 timestamp or YYYY-MM-DD date"}
		}
		if dateOnly {
			// A bare date means "through the end of that day".
			return Condition{Column: f.Column, Op: OpLt, Value: ts.AddDate(0, 0, 1)}, nil
		}
		return Condition{Column: f.Column, Op: OpLte, Value: ts}, nil
	}

	return Condition{}, &errors.FieldError{Field: name, Message: "unsupported filter"}
}

func parseTime(raw string) (time.Time, bool, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, false, nil
	}
	ts, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return ts, true, nil
}
