package equipment

import (
	"testing"
	"time"

	"backflow_portal_backend/internal/analytics/domain"
	"backflow_portal_backend/internal/analytics/sampling"

	"github.com/google/uuid"
)

var refNow = time.Date(2026, time.October, 14, 8, 0, 0, 0, time.UTC)

func newScorer() *Scorer {
	return NewScorer(domain.DefaultTables(), sampling.Neutral{}, WithClock(func() time.Time { return refNow }))
}

func TestAssessOldLightlyUsedFreshlyServicedIsMedium(t *testing.T) {
	got := newScorer().Assess(domain.Equipment{
		ID:              uuid.New(),
		Type:            "Test Kit",
		AgeYears:        6,
		UsageReading:    500,
		LastMaintenance: refNow.AddDate(0, 0, -10),
	})
	if got.Score != 3 {
		t.Fatalf("expected score 3, got %d", got.Score)
	}
	if got.Level != domain.RiskMedium {
		t.Fatalf("expected medium, got %s", got.Level)
	}
}

func TestAlertOldHeavyOverdueIsCritical(t *testing.T) {
	s := newScorer()
	eq := domain.Equipment{
		ID:              uuid.New(),
		Type:            "Service Vehicle",
		AgeYears:        6,
		UsageReading:    80000,
		LastMaintenance: refNow.AddDate(0, 0, -200),
	}

	assessment := s.Assess(eq)
	if assessment.Score != 8 || assessment.Level != domain.RiskCritical {
		t.Fatalf("expected score 8 critical, got %d %s", assessment.Score, assessment.Level)
	}

	alert := s.Alert(eq)
	wantFailure := refNow.AddDate(0, 0, 30)
	if !alert.PredictedFailureDate.Equal(wantFailure) {
		t.Fatalf("expected failure %s, got %s", wantFailure, alert.PredictedFailureDate)
	}
	if !alert.MaintenanceWindow.Start.Equal(refNow) {
		t.Fatalf("expected window start now, got %s", alert.MaintenanceWindow.Start)
	}
	if !alert.MaintenanceWindow.End.Equal(refNow.AddDate(0, 0, 23)) {
		t.Fatalf("expected window end now+23d, got %s", alert.MaintenanceWindow.End)
	}
	if alert.EstimatedCostImpact != 5000 {
		t.Fatalf("expected vehicle cost 5000, got %v", alert.EstimatedCostImpact)
	}
	if len(alert.Factors) != 3 || len(alert.Recommendations) != 3 {
		t.Fatalf("expected three factors and recommendations, got %v / %v", alert.Factors, alert.Recommendations)
	}
}

func TestUsageThresholdDependsOnType(t *testing.T) {
	s := newScorer()
	fresh := refNow.AddDate(0, 0, -1)
	vehicle := s.Assess(domain.Equipment{Type: "Service Vehicle", UsageReading: 3000, LastMaintenance: fresh})
	kit := s.Assess(domain.Equipment{Type: "Test Kit", UsageReading: 3000, LastMaintenance: fresh})
	if vehicle.Score != 0 {
		t.Fatalf("expected 3000 miles to be light vehicle usage, got %d", vehicle.Score)
	}
	if kit.Score != 3 {
		t.Fatalf("expected 3000 hours to be heavy kit usage, got %d", kit.Score)
	}
}

func TestConfidenceIgnoresInput(t *testing.T) {
	s := NewScorer(domain.DefaultTables(), sampling.NewRandom(9), WithClock(func() time.Time { return refNow }))
	for i := 0; i < 200; i++ {
		c := s.Confidence()
		if c < 0.7 || c >= 0.9 {
			t.Fatalf("confidence %v out of [0.7, 0.9)", c)
		}
	}
	neutral := newScorer()
	a := neutral.Alert(domain.Equipment{Type: "Test Kit", AgeYears: 1, LastMaintenance: refNow})
	b := neutral.Alert(domain.Equipment{Type: "Test Kit", AgeYears: 9, UsageReading: 9000})
	if a.Confidence != b.Confidence {
		t.Fatalf("expected identical confidence, got %v and %v", a.Confidence, b.Confidence)
	}
}

func TestBandThresholds(t *testing.T) {
	cases := map[int]domain.RiskLevel{
		0: domain.RiskLow, 2: domain.RiskLow, 3: domain.RiskMedium,
		5: domain.RiskHigh, 6: domain.RiskHigh, 7: domain.RiskCritical,
	}
	for score, want := range cases {
		if got := Band(score); got != want {
			t.Fatalf("score %d: expected %s, got %s", score, want, got)
		}
	}
}

func TestProjectFailureByBand(t *testing.T) {
	s := newScorer()
	if got := s.ProjectFailure(domain.RiskHigh); !got.Equal(refNow.AddDate(0, 0, 90)) {
		t.Fatalf("expected now+90d, got %s", got)
	}
	if got := s.ProjectFailure(domain.RiskLow); !got.Equal(refNow.AddDate(0, 0, 365)) {
		t.Fatalf("expected now+365d, got %s", got)
	}
}
