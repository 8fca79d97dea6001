package shared

import (
	"testing"
	"time"
)

func TestValidatorCollectsSortedIssues(t *testing.T) {
	v := NewValidator()
	v.Required("name", "", "name is required")
	v.Required("email", " ", "email is required")
	v.Required("role", "Staff Member", "role is required")

	if !v.HasIssues() {
		t.Fatal("expected issues")
	}
	issues := v.Issues()
	if len(issues) != 2 {
		t.Fatalf("got %d issues, want 2", len(issues))
	}
	if issues[0].Field != "email" || issues[1].Field != "name" {
		t.Fatalf("issues not sorted by field: %+v", issues)
	}
}

func TestValidatorEnum(t *testing.T) {
	v := NewValidator()
	v.Enum("status", "Draft", []string{"draft", "closed"}, "unknown status")
	if v.HasIssues() {
		t.Fatalf("case-insensitive enum match rejected: %+v", v.Issues())
	}
	v.Enum("status", "archived", []string{"draft", "closed"}, "unknown status")
	if !v.HasIssues() {
		t.Fatal("expected enum violation")
	}
}

func TestValidatorDateOrder(t *testing.T) {
	v := NewValidator()
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)
	v.DateOrder("periodStart", start, "periodEnd", end)
	if len(v.Issues()) != 2 {
		t.Fatalf("expected both fields flagged, got %+v", v.Issues())
	}
}

func TestParseDateFormats(t *testing.T) {
	if _, err := ParseDate("2025-06-01"); err != nil {
		t.Fatalf("plain date rejected: %v", err)
	}
	if _, err := ParseDate("2025-06-01T10:30:00Z"); err != nil {
		t.Fatalf("RFC3339 rejected: %v", err)
	}
	if _, err := ParseDate("June 1st"); err == nil {
		t.Fatal("expected parse failure")
	}

	parsed, err := ParseDate("2025-06-01")
	if err != nil {
		t.Fatalf("plain date rejected: %v", err)
	}
	if got := FormatDate(parsed); got != "2025-06-01" {
		t.Fatalf("expected round-trip date, got %q", got)
	}
	if got := FormatDate(time.Time{}); got != "" {
		t.Fatalf("expected empty string for zero time, got %q", got)
	}
}
