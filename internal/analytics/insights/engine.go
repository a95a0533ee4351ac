// Package insights combines the demand, churn and equipment calculators into a
// single tenant report.
package insights

import (
	"context"
	"fmt"
	"sort"
	"time"

	"backflow_portal_backend/internal/analytics/churn"
	"backflow_portal_backend/internal/analytics/demand"
	"backflow_portal_backend/internal/analytics/domain"
	"backflow_portal_backend/internal/analytics/equipment"
	"backflow_portal_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DataSource supplies the per-tenant inputs the calculators score.
type DataSource interface {
	ListCustomerBehavior(ctx context.Context, tenantID uuid.UUID) ([]domain.CustomerBehavior, error)
	ListEquipment(ctx context.Context, tenantID uuid.UUID) ([]domain.Equipment, error)
	AverageServiceValue(ctx context.Context, tenantID uuid.UUID) (float64, error)
}

// Engine generates predictive insights.
type Engine struct {
	data      DataSource
	demand    *demand.Estimator
	churn     *churn.Scorer
	equipment *equipment.Scorer
	now       func() time.Time
	log       *logger.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the generation timestamp and forecast start.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New wires the calculators to a data source.
func New(data DataSource, d *demand.Estimator, c *churn.Scorer, eq *equipment.Scorer, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		data:      data,
		demand:    d,
		churn:     c,
		equipment: eq,
		now:       time.Now,
		log:       log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GeneratePredictiveInsights runs every generator concurrently. Any failure
// rejects the whole report.
func (e *Engine) GeneratePredictiveInsights(ctx context.Context, tenantID uuid.UUID, rawTimeframe string) (*domain.PredictiveInsights, error) {
	timeframe, err := domain.ParseTimeframe(rawTimeframe)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	now := e.now()

	var (
		forecast   []domain.DemandForecast
		churnRisk  []domain.ChurnPrediction
		alerts     []domain.MaintenanceAlert
		avgService float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return fmt.Errorf("demand forecast: %w", err)
		}
		forecast = e.demand.Forecast(demand.StartOfDay(now), timeframe.Days())
		return nil
	})
	g.Go(func() error {
		list, err := e.ChurnRisk(gctx, tenantID)
		if err != nil {
			return fmt.Errorf("churn risk: %w", err)
		}
		churnRisk = list
		return nil
	})
	g.Go(func() error {
		list, err := e.MaintenanceAlerts(gctx, tenantID)
		if err != nil {
			return fmt.Errorf("maintenance alerts: %w", err)
		}
		alerts = list
		return nil
	})
	g.Go(func() error {
		value, err := e.data.AverageServiceValue(gctx, tenantID)
		if err != nil {
			return fmt.Errorf("average service value: %w", err)
		}
		avgService = value
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &domain.PredictiveInsights{
		TenantID:            tenantID,
		Timeframe:           timeframe,
		GeneratedAt:         now,
		DemandForecast:      forecast,
		ChurnRisk:           churnRisk,
		MaintenanceAlerts:   alerts,
		RevenueOptimization: revenueOptimization(forecast, churnRisk, alerts, avgService),
		SeasonalPatterns:    SeasonalPatterns(),
		RiskAssessment:      RiskAssessment(),
	}

	if e.log != nil {
		e.log.InsightsGenerated(tenantID.String(), string(timeframe), len(churnRisk), len(alerts), len(forecast),
			float64(time.Since(start).Milliseconds()))
	}
	return report, nil
}

// ChurnRisk scores every customer and keeps medium and high risk, most likely first.
func (e *Engine) ChurnRisk(ctx context.Context, tenantID uuid.UUID) ([]domain.ChurnPrediction, error) {
	customers, err := e.data.ListCustomerBehavior(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ChurnPrediction, 0, len(customers))
	for _, c := range customers {
		p := e.churn.Score(c)
		if p.RiskLevel == domain.RiskLow {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ChurnProbability > out[j].ChurnProbability
	})
	return out, nil
}

// MaintenanceAlerts assesses every piece of equipment and keeps non-low risk,
// earliest projected failure first.
func (e *Engine) MaintenanceAlerts(ctx context.Context, tenantID uuid.UUID) ([]domain.MaintenanceAlert, error) {
	items, err := e.data.ListEquipment(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.MaintenanceAlert, 0, len(items))
	for _, eq := range items {
		alert := e.equipment.Alert(eq)
		if alert.RiskLevel == domain.RiskLow {
			continue
		}
		out = append(out, alert)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PredictedFailureDate.Before(out[j].PredictedFailureDate)
	})
	return out, nil
}

// DemandForecast returns days points starting at the day of from.
func (e *Engine) DemandForecast(from time.Time, days int) []domain.DemandForecast {
	return e.demand.Forecast(demand.StartOfDay(from), days)
}
