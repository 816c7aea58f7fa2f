package query

import (
	"testing"
	"time"

	"pixelforge-server-go/internal/platform/errors"
)

func userDefinition() Definition {
	return Definition{
		SortFields: map[string]string{
			"createdAt": "created_at",
			"email":     "email",
		},
		Filters: map[string]Filter{
			"role":        {Column: "role", Kind: FilterEnum, Allowed: []string{"admin", "support", "user"}},
			"userId":      {Column: "user_id", Kind: FilterUint},
			"createdFrom": {Column: "created_at", Kind: FilterTimeFrom},
			"createdTo":   {Column: "created_at", Kind: FilterTimeTo},
		},
		DefaultSort: "createdAt",
		Tiebreak:    "id",
	}
}

func TestParseDefaults(t *testing.T) {
	spec, err := userDefinition().Parse(map[string]string{})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if spec.Page != 1 || spec.PageSize != DefaultPageSize {
		t.Errorf("unexpected pagination defaults: page=%d pageSize=%d", spec.Page, spec.PageSize)
	}
	if spec.SortColumn != "created_at" || spec.SortDir != SortDesc {
		t.Errorf("unexpected sort defaults: %s %s", spec.SortColumn, spec.SortDir)
	}
	if len(spec.Conditions) != 0 {
		t.Errorf("absent filters must impose no constraint, got %v", spec.Conditions)
	}
}

func TestParseCollectsEveryInvalidField(t *testing.T) {
	_, err := userDefinition().Parse(map[string]string{
		"page":     "0",
		"pageSize": "500",
		"role":     "superadmin",
		"banana":   "yes",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.IsKind(err, errors.KindValidation) {
		t.Fatalf("expected validation kind, got %v", err)
	}
	fields := errors.FieldsOf(err)
	if len(fields) != 4 {
		t.Fatalf("expected 4 field errors, got %d: %v", len(fields), fields)
	}
	seen := map[string]bool{}
	for _, f := range fields {
		seen[f.Field] = true
	}
	for _, want := range []string{"page", "pageSize", "role", "banana"} {
		if !seen[want] {
			t.Errorf("missing field error for %q", want)
		}
	}
}

func TestParseFilters(t *testing.T) {
	spec, err := userDefinition().Parse(map[string]string{
		"role":        "admin",
		"userId":      "42",
		"createdFrom": "2024-01-01",
		"createdTo":   "2024-01-31",
		"sortField":   "email",
		"sortDir":     "asc",
		"page":        "3",
		"pageSize":    "50",
	})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if spec.Offset() != 100 {
		t.Errorf("offset = %d, want 100", spec.Offset())
	}
	if got := spec.OrderClause(); got != "email asc, id asc" {
		t.Errorf("order clause = %q", got)
	}
	if len(spec.Conditions) != 4 {
		t.Fatalf("expected 4 conditions, got %d", len(spec.Conditions))
	}

	byColumnOp := map[string]Condition{}
	for _, c := range spec.Conditions {
		byColumnOp[c.Column+":"+string(c.Op)] = c
	}
	if c, ok := byColumnOp["role:eq"]; !ok || c.Value != "admin" {
		t.Errorf("missing role equality condition: %v", spec.Conditions)
	}
	if c, ok := byColumnOp["user_id:eq"]; !ok || c.Value != uint64(42) {
		t.Errorf("missing userId equality condition: %v", spec.Conditions)
	}

	from, ok := byColumnOp["created_at:gte"]
	if !ok {
		t.Fatalf("missing createdFrom condition")
	}
	if from.Value.(time.Time) != time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("unexpected createdFrom bound: %v", from.Value)
	}

	// A bare date upper bound covers the whole day.
	to, ok := byColumnOp["created_at:lt"]
	if !ok {
		t.Fatalf("missing createdTo condition")
	}
	if to.Value.(time.Time) != time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("unexpected createdTo bound: %v", to.Value)
	}
}

func TestParseSortTiebreakNotDuplicated(t *testing.T) {
	def := userDefinition()
	def.SortFields["id"] = "id"

	spec, err := def.Parse(map[string]string{"sortField": "id", "sortDir": "asc"})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := spec.OrderClause(); got != "id asc" {
		t.Errorf("order clause = %q, tiebreak should not repeat the sort column", got)
	}
}
