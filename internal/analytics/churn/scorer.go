// Package churn scores how likely a customer is to stop booking service.
package churn

import (
	"time"

	"backflow_portal_backend/internal/analytics/domain"
	"backflow_portal_backend/platform/phone"
)

// Factor codes identify which rule fired.
const (
	CodeRecencyOverYear     = "recency_over_year"
	CodeRecencyOverHalfYear = "recency_over_6_months"
	CodeRecencyOverQuarter  = "recency_over_3_months"
	CodePaymentPoor         = "payment_poor"
	CodePaymentFair         = "payment_fair"
	CodePaymentGood         = "payment_good"
	CodeCancellations       = "cancellations"
	CodeSatisfactionLow     = "satisfaction_low"
	CodeSatisfactionFair    = "satisfaction_moderate"
	CodeFrequencyLow        = "frequency_low"
)

const (
	probabilityFloor   = 0.05
	probabilityCeiling = 0.95
	highThreshold      = 0.7
	mediumThreshold    = 0.4

	cancellationLabelRate = 0.2
	revenueHorizonYears   = 2
)

// Factor is one rule's contribution. Label is empty for rules that add points
// without being worth surfacing.
type Factor struct {
	Code   string
	Label  string
	Points float64
}

var strategies = map[string]string{
	CodeRecencyOverYear:     "Send a personalized re-engagement offer",
	CodeRecencyOverHalfYear: "Schedule a proactive annual test reminder call",
	CodeRecencyOverQuarter:  "Send an upcoming service reminder",
	CodePaymentPoor:         "Offer a flexible payment plan",
	CodePaymentFair:         "Offer a flexible payment plan",
	CodeCancellations:       "Offer flexible scheduling options",
	CodeSatisfactionLow:     "Escalate to account manager for service recovery",
	CodeSatisfactionFair:    "Request feedback and follow up on service quality",
	CodeFrequencyLow:        "Offer a multi-year service agreement discount",
}

// Scorer computes churn predictions.
type Scorer struct {
	now    func() time.Time
	region string
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithClock overrides the reference time for recency.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) { s.now = now }
}

// WithPhoneRegion sets the region used to normalize contact phones.
func WithPhoneRegion(region string) Option {
	return func(s *Scorer) { s.region = region }
}

// NewScorer creates a churn scorer.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{now: time.Now, region: phone.DefaultRegion}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Factors evaluates every rule once. A zero LastServiceDate counts as never serviced.
func (s *Scorer) Factors(b domain.CustomerBehavior) []Factor {
	factors := make([]Factor, 0, 5)

	days := s.daysSince(b.LastServiceDate)
	switch {
	case days > 365:
		factors = append(factors, Factor{CodeRecencyOverYear, "No service in over a year", 3})
	case days > 180:
		factors = append(factors, Factor{CodeRecencyOverHalfYear, "No service in over 6 months", 2})
	case days > 90:
		factors = append(factors, Factor{CodeRecencyOverQuarter, "No service in over 3 months", 1})
	}

	switch b.PaymentHistory {
	case domain.PaymentPoor:
		factors = append(factors, Factor{CodePaymentPoor, "Poor payment history", 3})
	case domain.PaymentFair:
		factors = append(factors, Factor{CodePaymentFair, "Fair payment history", 2})
	case domain.PaymentGood:
		factors = append(factors, Factor{CodePaymentGood, "", 0.5})
	}

	if b.CancellationRate > 0 {
		label := ""
		if b.CancellationRate >= cancellationLabelRate {
			label = "High cancellation rate"
		}
		factors = append(factors, Factor{CodeCancellations, label, b.CancellationRate * 10})
	}

	switch {
	case b.SatisfactionScore < 3:
		factors = append(factors, Factor{CodeSatisfactionLow, "Low satisfaction score", 2})
	case b.SatisfactionScore < 4:
		factors = append(factors, Factor{CodeSatisfactionFair, "Moderate satisfaction score", 1})
	}

	if b.AppointmentFrequency < 0.5 {
		factors = append(factors, Factor{CodeFrequencyLow, "Infrequent appointments", 1})
	}

	return factors
}

// Score converts a behavior sample into a prediction.
func (s *Scorer) Score(b domain.CustomerBehavior) domain.ChurnPrediction {
	factors := s.Factors(b)

	var points float64
	labels := make([]string, 0, len(factors))
	actions := make([]string, 0, len(factors))
	seen := make(map[string]struct{}, len(factors))
	for _, f := range factors {
		points += f.Points
		if f.Label == "" {
			continue
		}
		labels = append(labels, f.Label)
		if action, ok := strategies[f.Code]; ok {
			if _, dup := seen[action]; !dup {
				seen[action] = struct{}{}
				actions = append(actions, action)
			}
		}
	}

	probability := clamp(points/10, probabilityFloor, probabilityCeiling)

	return domain.ChurnPrediction{
		CustomerID:           b.CustomerID,
		CustomerName:         b.CustomerName,
		ContactPhone:         phone.NormalizeE164(b.ContactPhone, s.region),
		ChurnProbability:     probability,
		RiskLevel:            Band(probability),
		Factors:              labels,
		RetentionStrategies:  actions,
		EstimatedRevenueLoss: b.AverageServiceValue * b.AppointmentFrequency * revenueHorizonYears,
	}
}

// Band classifies a churn probability.
func Band(probability float64) domain.RiskLevel {
	switch {
	case probability >= highThreshold:
		return domain.RiskHigh
	case probability >= mediumThreshold:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

func (s *Scorer) daysSince(t time.Time) float64 {
	if t.IsZero() {
		return 366
	}
	return s.now().Sub(t).Hours() / 24
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
