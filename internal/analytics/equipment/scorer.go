// Package equipment scores equipment failure risk and projects maintenance windows.
package equipment

import (
	"time"

	"backflow_portal_backend/internal/analytics/domain"
	"backflow_portal_backend/internal/analytics/sampling"
)

// Factor codes identify which rule fired.
const (
	CodeAgeHigh            = "age_high"
	CodeAgeModerate        = "age_moderate"
	CodeUsageHeavy         = "usage_heavy"
	CodeMaintenanceOverdue = "maintenance_overdue"
)

const (
	criticalScore = 7
	highScore     = 5
	mediumScore   = 3

	overdueDays = 180

	confidenceLow  = 0.7
	confidenceHigh = 0.9

	windowLead  = 30 * 24 * time.Hour
	windowClose = 7 * 24 * time.Hour
)

// Factor is one rule's contribution to the risk score.
type Factor struct {
	Code   string
	Label  string
	Points int
}

// Assessment is the scored risk for one piece of equipment.
type Assessment struct {
	Score   int
	Level   domain.RiskLevel
	Factors []Factor
}

var recommendationsByCode = map[string]string{
	CodeAgeHigh:            "Plan replacement budget for aging equipment",
	CodeAgeModerate:        "Increase inspection frequency",
	CodeUsageHeavy:         "Rotate usage across units to spread wear",
	CodeMaintenanceOverdue: "Schedule preventive maintenance immediately",
}

// Scorer assesses equipment and builds maintenance alerts.
type Scorer struct {
	tables     domain.Tables
	confidence sampling.Source
	now        func() time.Time
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithClock overrides the reference time for projections.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) { s.now = now }
}

// NewScorer creates a scorer reading tables. Alert confidence is drawn from src
// and does not depend on the equipment.
func NewScorer(tables domain.Tables, src sampling.Source, opts ...Option) *Scorer {
	if src == nil {
		src = sampling.Neutral{}
	}
	s := &Scorer{tables: tables, confidence: src, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assess runs the threshold rules. A zero LastMaintenance counts as overdue.
func (s *Scorer) Assess(eq domain.Equipment) Assessment {
	factors := make([]Factor, 0, 3)

	switch {
	case eq.AgeYears > 5:
		factors = append(factors, Factor{CodeAgeHigh, "High age", 3})
	case eq.AgeYears > 3:
		factors = append(factors, Factor{CodeAgeModerate, "Moderate age", 2})
	}

	if eq.UsageReading > s.tables.UsageThreshold(eq.Type) {
		factors = append(factors, Factor{CodeUsageHeavy, "Heavy usage", 3})
	}

	if eq.LastMaintenance.IsZero() || s.now().Sub(eq.LastMaintenance) > overdueDays*24*time.Hour {
		factors = append(factors, Factor{CodeMaintenanceOverdue, "Overdue maintenance", 2})
	}

	score := 0
	for _, f := range factors {
		score += f.Points
	}

	return Assessment{Score: score, Level: Band(score), Factors: factors}
}

// Band classifies a risk score.
func Band(score int) domain.RiskLevel {
	switch {
	case score >= criticalScore:
		return domain.RiskCritical
	case score >= highScore:
		return domain.RiskHigh
	case score >= mediumScore:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// ProjectFailure returns now plus the band's fixed offset.
func (s *Scorer) ProjectFailure(level domain.RiskLevel) time.Time {
	return s.now().Add(s.tables.FailureOffset(level))
}

// Confidence draws an alert confidence in [0.7, 0.9).
func (s *Scorer) Confidence() float64 {
	return sampling.Uniform(s.confidence, confidenceLow, confidenceHigh)
}

// EstimateCost returns the failure cost impact for an equipment type.
func (s *Scorer) EstimateCost(equipmentType string) float64 {
	return s.tables.CostFor(equipmentType)
}

// Window returns the maintenance window ahead of a projected failure.
func Window(failure time.Time) domain.MaintenanceWindow {
	return domain.MaintenanceWindow{
		Start: failure.Add(-windowLead),
		End:   failure.Add(-windowClose),
	}
}

// Alert assesses eq and builds the full maintenance alert.
func (s *Scorer) Alert(eq domain.Equipment) domain.MaintenanceAlert {
	assessment := s.Assess(eq)
	failure := s.ProjectFailure(assessment.Level)

	labels := make([]string, 0, len(assessment.Factors))
	recs := make([]string, 0, len(assessment.Factors))
	for _, f := range assessment.Factors {
		labels = append(labels, f.Label)
		if rec, ok := recommendationsByCode[f.Code]; ok {
			recs = append(recs, rec)
		}
	}

	return domain.MaintenanceAlert{
		EquipmentID:          eq.ID,
		EquipmentType:        eq.Type,
		RiskLevel:            assessment.Level,
		PredictedFailureDate: failure,
		Confidence:           s.Confidence(),
		MaintenanceWindow:    Window(failure),
		EstimatedCostImpact:  s.EstimateCost(eq.Type),
		Factors:              labels,
		Recommendations:      recs,
	}
}
