package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"backflow_portal_backend/internal/analytics/domain"
	"backflow_portal_backend/internal/analytics/repository"
	"backflow_portal_backend/internal/events"
	"backflow_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// InsightsGenerator produces the tenant report the scan inspects.
type InsightsGenerator interface {
	GeneratePredictiveInsights(ctx context.Context, tenantID uuid.UUID, timeframe string) (*domain.PredictiveInsights, error)
}

// ScanResult counts what a tenant scan raised.
type ScanResult struct {
	ChurnAlerts       int
	MaintenanceAlerts int
	Suppressed        int
}

// AlertScanner turns insights into alert events.
type AlertScanner struct {
	tenants  repository.TenantReader
	insights InsightsGenerator
	dedupe   Deduper
	bus      events.Bus
	log      *logger.Logger
}

func NewAlertScanner(tenants repository.TenantReader, insights InsightsGenerator, dedupe Deduper, bus events.Bus, log *logger.Logger) *AlertScanner {
	if dedupe == nil {
		dedupe = NoopDeduper{}
	}
	return &AlertScanner{tenants: tenants, insights: insights, dedupe: dedupe, bus: bus, log: log}
}

// FanOut enqueues one tenant scan per organization and returns how many were enqueued.
func (s *AlertScanner) FanOut(ctx context.Context, enqueuer TenantScanEnqueuer, timeframe string) (int, error) {
	tenants, err := s.tenants.ListTenants(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tenants: %w", err)
	}

	var errs []error
	enqueued := 0
	for _, t := range tenants {
		if err := enqueuer.EnqueueTenantScan(ctx, TenantScanPayload{TenantID: t.ID.String(), Timeframe: timeframe}); err != nil {
			errs = append(errs, fmt.Errorf("enqueue tenant %s: %w", t.ID, err))
			continue
		}
		enqueued++
	}
	return enqueued, errors.Join(errs...)
}

// ScanTenant publishes ChurnRiskDetected for high churn risk and
// MaintenanceAlertRaised for critical equipment, once per subject per TTL.
func (s *AlertScanner) ScanTenant(ctx context.Context, tenantID uuid.UUID, timeframe string) (ScanResult, error) {
	report, err := s.insights.GeneratePredictiveInsights(ctx, tenantID, timeframe)
	if err != nil {
		return ScanResult{}, fmt.Errorf("generate insights: %w", err)
	}

	var result ScanResult
	for _, c := range report.ChurnRisk {
		if c.RiskLevel != domain.RiskHigh {
			continue
		}
		key := fmt.Sprintf("churn:%s:%s:%s", tenantID, c.CustomerID, c.RiskLevel)
		sent, err := s.deliver(ctx, key, newChurnEvent(tenantID, c))
		if err != nil {
			return result, err
		}
		if sent {
			result.ChurnAlerts++
		} else {
			result.Suppressed++
		}
	}

	for _, a := range report.MaintenanceAlerts {
		if a.RiskLevel != domain.RiskCritical {
			continue
		}
		key := fmt.Sprintf("maintenance:%s:%s:%s", tenantID, a.EquipmentID, a.RiskLevel)
		sent, err := s.deliver(ctx, key, newMaintenanceEvent(tenantID, a))
		if err != nil {
			return result, err
		}
		if sent {
			result.MaintenanceAlerts++
		} else {
			result.Suppressed++
		}
	}

	if s.log != nil {
		s.log.WithTenantID(tenantID.String()).Info("alert scan completed",
			slog.Int("churn_alerts", result.ChurnAlerts),
			slog.Int("maintenance_alerts", result.MaintenanceAlerts),
			slog.Int("suppressed", result.Suppressed),
		)
	}
	return result, nil
}

func (s *AlertScanner) deliver(ctx context.Context, key string, event events.Event) (bool, error) {
	first, err := s.dedupe.Claim(ctx, key)
	if err != nil {
		return false, err
	}
	if !first {
		return false, nil
	}
	if s.bus == nil {
		return true, nil
	}
	if err := s.bus.PublishSync(ctx, event); err != nil {
		if releaseErr := s.dedupe.Release(ctx, key); releaseErr != nil {
			err = errors.Join(err, releaseErr)
		}
		return false, fmt.Errorf("publish %s: %w", event.EventName(), err)
	}
	return true, nil
}

func newChurnEvent(tenantID uuid.UUID, c domain.ChurnPrediction) events.ChurnRiskDetected {
	return events.ChurnRiskDetected{
		BaseEvent:            events.NewBaseEvent(),
		TenantID:             tenantID,
		CustomerID:           c.CustomerID,
		CustomerName:         c.CustomerName,
		ContactPhone:         c.ContactPhone,
		ChurnProbability:     c.ChurnProbability,
		RiskLevel:            string(c.RiskLevel),
		Factors:              c.Factors,
		RetentionStrategies:  c.RetentionStrategies,
		EstimatedRevenueLoss: c.EstimatedRevenueLoss,
	}
}

func newMaintenanceEvent(tenantID uuid.UUID, a domain.MaintenanceAlert) events.MaintenanceAlertRaised {
	return events.MaintenanceAlertRaised{
		BaseEvent:            events.NewBaseEvent(),
		TenantID:             tenantID,
		EquipmentID:          a.EquipmentID,
		EquipmentType:        a.EquipmentType,
		RiskLevel:            string(a.RiskLevel),
		PredictedFailureDate: a.PredictedFailureDate,
		WindowStart:          a.MaintenanceWindow.Start,
		WindowEnd:            a.MaintenanceWindow.End,
		EstimatedCostImpact:  a.EstimatedCostImpact,
		Recommendations:      a.Recommendations,
	}
}
