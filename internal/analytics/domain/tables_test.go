package domain

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"backflow_portal_backend/platform/apperr"
)

func TestDefaultTablesSeasonalLookup(t *testing.T) {
	tables := DefaultTables()
	if got := tables.Seasonal(time.October); got != 1.45 {
		t.Fatalf("expected October factor 1.45, got %v", got)
	}
	if got := tables.Seasonal(time.January); got != 0.7 {
		t.Fatalf("expected January factor 0.7, got %v", got)
	}
}

func TestDefaultTablesLookupsFallBack(t *testing.T) {
	tables := DefaultTables()
	if got := tables.CostFor("Service Vehicle"); got != 5000 {
		t.Fatalf("expected vehicle cost 5000, got %v", got)
	}
	if got := tables.CostFor("Ladder"); got != 1000 {
		t.Fatalf("expected default cost 1000, got %v", got)
	}
	if got := tables.UsageThreshold("Test Kit"); got != 2000 {
		t.Fatalf("expected default usage threshold 2000, got %v", got)
	}
	if got := tables.FailureOffset(RiskCritical); got != 30*24*time.Hour {
		t.Fatalf("expected 30 day critical offset, got %s", got)
	}
}

func TestParseTablesOverlaysDefaults(t *testing.T) {
	tables, err := ParseTables([]byte(`
seasonalFactors:
  10: 1.6
baselineDaily: 40
costImpact:
  Backhoe: 12000
failureOffsetDays:
  critical: 14
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tables.Seasonal(time.October) != 1.6 {
		t.Fatalf("expected overridden October factor, got %v", tables.Seasonal(time.October))
	}
	if tables.Seasonal(time.May) != 1.3 {
		t.Fatalf("expected default May factor to survive, got %v", tables.Seasonal(time.May))
	}
	if tables.BaselineDaily != 40 {
		t.Fatalf("expected baseline 40, got %v", tables.BaselineDaily)
	}
	if tables.CostFor("Backhoe") != 12000 || tables.CostFor("Test Kit") != 2000 {
		t.Fatalf("expected merged cost table, got %v", tables.CostImpact)
	}
	if tables.FailureOffset(RiskCritical) != 14*24*time.Hour {
		t.Fatalf("expected 14 day critical offset, got %s", tables.FailureOffset(RiskCritical))
	}
}

func TestParseTablesRejectsInvalidMonth(t *testing.T) {
	if _, err := ParseTables([]byte("seasonalFactors:\n  13: 1.0\n")); err == nil {
		t.Fatal("expected error for month 13")
	}
	if _, err := ParseTables([]byte("weekendRatio: 0\n")); err == nil {
		t.Fatal("expected error for zero weekend ratio")
	}
}

func TestParseTablesRejectsNegativeCosts(t *testing.T) {
	for _, doc := range []string{
		"costImpact:\n  Test Kit: -1\n",
		"defaultCostImpact: -250\n",
	} {
		if _, err := ParseTables([]byte(doc)); err == nil {
			t.Fatalf("expected error for %q", doc)
		}
	}
	tables, err := ParseTables([]byte("defaultCostImpact: 0\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tables.CostFor("Unlisted Gear") != 0 {
		t.Fatalf("expected zero default cost, got %v", tables.CostFor("Unlisted Gear"))
	}
}

func TestParseTablesDoesNotMutateDefaults(t *testing.T) {
	if _, err := ParseTables([]byte("costImpact:\n  Test Kit: 1\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if DefaultTables().CostFor("Test Kit") != 2000 {
		t.Fatal("expected defaults to be rebuilt for every call")
	}
}

func TestLoadTablesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	if err := os.WriteFile(path, []byte("weekendRatio: 0.5\n"), 0o600); err != nil {
		t.Fatalf("write tables: %v", err)
	}
	tables, err := LoadTables(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tables.WeekendRatio != 0.5 {
		t.Fatalf("expected weekend ratio 0.5, got %v", tables.WeekendRatio)
	}

	if _, err := LoadTables(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseTimeframe(t *testing.T) {
	tf, err := ParseTimeframe("")
	if err != nil || tf != Timeframe90Days {
		t.Fatalf("expected default 90d, got %q (%v)", tf, err)
	}
	tf, err = ParseTimeframe("6m")
	if err != nil || tf.Days() != 180 {
		t.Fatalf("expected 6m with 180 days, got %q (%v)", tf, err)
	}
	for _, raw := range []string{"2w", "90D", "6M", " 30d"} {
		if _, err := ParseTimeframe(raw); !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("%q: expected validation error, got %v", raw, err)
		}
	}
}
