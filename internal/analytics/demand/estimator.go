// Package demand estimates daily appointment volume from seasonality, growth
// trend and an external factor.
package demand

import (
	"math"
	"time"

	"backflow_portal_backend/internal/analytics/domain"
	"backflow_portal_backend/internal/analytics/sampling"
)

const (
	trendPerYear      = 0.15
	trendFloor        = 0.8
	decayPerYear      = 0.3
	decayFloor        = 0.5
	confidenceFloor   = 0.5
	seasonalVolWeight = 0.2
	externalVolWeight = 0.3

	externalLow  = 0.9
	externalHigh = 1.1

	highDemandRatio   = 0.2
	peakSeasonFactor  = 1.3
	externalFavorable = 1.1

	recHighDemand = "High demand expected: schedule additional technicians"
	recPeakSeason = "Peak testing season: send annual test reminders early"
	recExternal   = "External conditions favor demand: consider targeted outreach"
)

// Estimator computes demand forecast points. It is safe for concurrent use
// when its Source is.
type Estimator struct {
	tables   domain.Tables
	external sampling.Source
	now      func() time.Time
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithClock overrides the reference time used for trend and confidence decay.
func WithClock(now func() time.Time) Option {
	return func(e *Estimator) { e.now = now }
}

// NewEstimator creates an estimator reading tables and drawing the external factor from src.
func NewEstimator(tables domain.Tables, src sampling.Source, opts ...Option) *Estimator {
	if src == nil {
		src = sampling.Neutral{}
	}
	e := &Estimator{tables: tables, external: src, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Baseline returns the base appointment count for the day of week of date.
func (e *Estimator) Baseline(date time.Time) float64 {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return e.tables.BaselineDaily * e.tables.WeekendRatio
	default:
		return e.tables.BaselineDaily
	}
}

// Estimate returns the forecast point for date.
func (e *Estimator) Estimate(date time.Time) domain.DemandForecast {
	daysFromNow := date.Sub(e.now()).Hours() / 24
	yearsFromNow := daysFromNow / 365

	seasonal := e.tables.Seasonal(date.Month())
	trend := math.Max(trendFloor, 1+yearsFromNow*trendPerYear)
	external := sampling.Uniform(e.external, externalLow, externalHigh)

	baseline := e.Baseline(date)
	predicted := int(math.Round(baseline * seasonal * trend * external))

	timeDecay := math.Max(decayFloor, 1-(daysFromNow/365)*decayPerYear)
	stability := 1 - math.Abs(seasonal-1)*seasonalVolWeight - math.Abs(external-1)*externalVolWeight
	confidence := clamp(timeDecay*stability, confidenceFloor, 1)

	return domain.DemandForecast{
		Date:                  date,
		PredictedAppointments: predicted,
		Confidence:            confidence,
		Factors: domain.DemandFactors{
			Seasonal: seasonal,
			Trend:    trend,
			External: external,
		},
		Recommendations: recommendations(float64(predicted), baseline, seasonal, external),
	}
}

// Forecast returns one point per day starting at from.
func (e *Estimator) Forecast(from time.Time, days int) []domain.DemandForecast {
	if days <= 0 {
		return []domain.DemandForecast{}
	}
	points := make([]domain.DemandForecast, 0, days)
	for i := 0; i < days; i++ {
		points = append(points, e.Estimate(from.AddDate(0, 0, i)))
	}
	return points
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func recommendations(predicted, baseline, seasonal, external float64) []string {
	recs := make([]string, 0, 3)
	if (predicted-baseline)/baseline > highDemandRatio {
		recs = append(recs, recHighDemand)
	}
	if seasonal > peakSeasonFactor {
		recs = append(recs, recPeakSeason)
	}
	if external > externalFavorable {
		recs = append(recs, recExternal)
	}
	return recs
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
