package demand

import (
	"math"
	"testing"
	"time"

	"backflow_portal_backend/internal/analytics/domain"
	"backflow_portal_backend/internal/analytics/sampling"
)

var refNow = time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC)

func newNeutral() *Estimator {
	return NewEstimator(domain.DefaultTables(), sampling.Neutral{}, WithClock(func() time.Time { return refNow }))
}

func TestEstimateNeutralWeekdayInOctober(t *testing.T) {
	e := newNeutral()
	// Thursday, one day ahead.
	point := e.Estimate(time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC))

	if point.Factors.Seasonal != 1.45 {
		t.Fatalf("expected seasonal 1.45, got %v", point.Factors.Seasonal)
	}
	if point.Factors.External != 1.0 {
		t.Fatalf("expected neutral external factor 1.0, got %v", point.Factors.External)
	}
	wantTrend := 1 + (1.0/365)*0.15
	if math.Abs(point.Factors.Trend-wantTrend) > 1e-9 {
		t.Fatalf("expected trend %v, got %v", wantTrend, point.Factors.Trend)
	}
	want := int(math.Round(25 * 1.45 * wantTrend))
	if point.PredictedAppointments != want {
		t.Fatalf("expected %d appointments, got %d", want, point.PredictedAppointments)
	}
	if len(point.Recommendations) != 2 {
		t.Fatalf("expected high demand and peak season recommendations, got %v", point.Recommendations)
	}
}

func TestEstimateWeekendUsesReducedBaseline(t *testing.T) {
	e := newNeutral()
	friday := time.Date(2026, time.November, 6, 9, 0, 0, 0, time.UTC)
	saturday := friday.AddDate(0, 0, 1)
	sunday := friday.AddDate(0, 0, 2)

	if got := e.Baseline(friday); got != 25 {
		t.Fatalf("expected weekday baseline 25, got %v", got)
	}
	for _, d := range []time.Time{saturday, sunday} {
		if got := e.Baseline(d); got != 7.5 {
			t.Fatalf("expected weekend baseline 7.5 on %s, got %v", d.Weekday(), got)
		}
		point := e.Estimate(d)
		want := int(math.Round(7.5 * point.Factors.Seasonal * point.Factors.Trend * point.Factors.External))
		if point.PredictedAppointments != want {
			t.Fatalf("expected %d on %s, got %d", want, d.Weekday(), point.PredictedAppointments)
		}
	}
}

func TestEstimateConfidenceBounds(t *testing.T) {
	e := NewEstimator(domain.DefaultTables(), sampling.NewRandom(3), WithClock(func() time.Time { return refNow }))
	for i := -30; i < 3*365; i += 7 {
		point := e.Estimate(refNow.AddDate(0, 0, i))
		if point.Confidence < 0.5 || point.Confidence > 1 {
			t.Fatalf("confidence %v out of range at offset %d", point.Confidence, i)
		}
		if point.Factors.Trend < 0.8 {
			t.Fatalf("trend %v below floor at offset %d", point.Factors.Trend, i)
		}
	}
}

func TestEstimateConfidenceDecaysWithDistance(t *testing.T) {
	e := newNeutral()
	near := e.Estimate(time.Date(2027, time.July, 14, 9, 0, 0, 0, time.UTC))
	far := e.Estimate(time.Date(2028, time.July, 14, 9, 0, 0, 0, time.UTC))
	if far.Confidence >= near.Confidence {
		t.Fatalf("expected confidence to decay, near=%v far=%v", near.Confidence, far.Confidence)
	}
}

func TestEstimateQuietMonthHasNoRecommendations(t *testing.T) {
	e := newNeutral()
	point := e.Estimate(time.Date(2027, time.January, 13, 9, 0, 0, 0, time.UTC))
	if len(point.Recommendations) != 0 {
		t.Fatalf("expected no recommendations in January, got %v", point.Recommendations)
	}
}

func TestForecastReturnsOnePointPerDay(t *testing.T) {
	e := newNeutral()
	from := StartOfDay(refNow)
	points := e.Forecast(from, 14)
	if len(points) != 14 {
		t.Fatalf("expected 14 points, got %d", len(points))
	}
	for i, p := range points {
		if !p.Date.Equal(from.AddDate(0, 0, i)) {
			t.Fatalf("point %d has date %s", i, p.Date)
		}
	}
	if got := e.Forecast(from, 0); len(got) != 0 {
		t.Fatalf("expected empty forecast, got %d points", len(got))
	}
}

func TestExternalRecommendationUnreachableFromBuiltInSources(t *testing.T) {
	day := time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)
	for _, src := range []sampling.Source{sampling.Fixed(0.999999), sampling.Fixed(5)} {
		e := NewEstimator(domain.DefaultTables(), src, WithClock(func() time.Time { return refNow }))
		point := e.Estimate(day)
		if point.Factors.External >= externalFavorable {
			t.Fatalf("expected external factor below %v, got %v", externalFavorable, point.Factors.External)
		}
		for _, rec := range point.Recommendations {
			if rec == recExternal {
				t.Fatalf("unexpected external recommendation at factor %v", point.Factors.External)
			}
		}
	}

	if recs := recommendations(25, 25, 1, 1.2); len(recs) != 1 || recs[0] != recExternal {
		t.Fatalf("expected external recommendation above threshold, got %v", recs)
	}
}
