package analytics

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"backflow_portal_backend/internal/analytics/domain"
	"backflow_portal_backend/internal/analytics/repository"
	"backflow_portal_backend/platform/config"
	"backflow_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type seededReport struct {
	external   []float64
	counts     []int
	confidence map[uuid.UUID]float64
}

func generateSeeded(t *testing.T, seed int64) seededReport {
	t.Helper()
	clock := func() time.Time { return time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC) }
	cfg := &config.Config{
		AnalyticsDemoSeed:   seed,
		AnalyticsFactorMode: config.FactorModeRandom,
		PhoneDefaultRegion:  "US",
	}
	log := logger.NewWithHandler(slog.NewTextHandler(io.Discard, nil))

	c := NewComponents(repository.NewDemoSource(seed, repository.WithDemoClock(clock)), domain.DefaultTables(), cfg, log)
	report, err := c.Engine.GeneratePredictiveInsights(context.Background(), repository.DemoTenantID(0), "30d")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	out := seededReport{confidence: make(map[uuid.UUID]float64, len(report.MaintenanceAlerts))}
	for _, f := range report.DemandForecast {
		out.external = append(out.external, f.Factors.External)
		out.counts = append(out.counts, f.PredictedAppointments)
	}
	for _, a := range report.MaintenanceAlerts {
		out.confidence[a.EquipmentID] = a.Confidence
	}
	return out
}

func TestNewComponentsSeededRandomModeIsReproducible(t *testing.T) {
	want := generateSeeded(t, 42)
	if len(want.external) != 30 {
		t.Fatalf("expected 30 forecast points, got %d", len(want.external))
	}

	for run := 0; run < 25; run++ {
		got := generateSeeded(t, 42)
		for i := range want.external {
			if got.external[i] != want.external[i] || got.counts[i] != want.counts[i] {
				t.Fatalf("run %d: forecast day %d differs: %v/%d vs %v/%d",
					run, i, got.external[i], got.counts[i], want.external[i], want.counts[i])
			}
		}
		if len(got.confidence) != len(want.confidence) {
			t.Fatalf("run %d: expected %d alerts, got %d", run, len(want.confidence), len(got.confidence))
		}
		for id, confidence := range want.confidence {
			if got.confidence[id] != confidence {
				t.Fatalf("run %d: alert %s confidence differs: %v vs %v", run, id, got.confidence[id], confidence)
			}
		}
	}
}

func TestNewComponentsSeedChangesExternalFactors(t *testing.T) {
	a, b := generateSeeded(t, 42), generateSeeded(t, 43)
	for i := range a.external {
		if a.external[i] != b.external[i] {
			return
		}
	}
	t.Fatal("expected different seeds to yield different external factors")
}
