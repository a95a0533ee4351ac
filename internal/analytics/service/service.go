package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"backflow_portal_backend/internal/analytics/churn"
	"backflow_portal_backend/internal/analytics/domain"
	"backflow_portal_backend/internal/analytics/equipment"
	"backflow_portal_backend/internal/analytics/insights"
	"backflow_portal_backend/internal/analytics/repository"
	"backflow_portal_backend/internal/analytics/transport"
	"backflow_portal_backend/platform/apperr"
	"backflow_portal_backend/platform/logger"
	"backflow_portal_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	defaultForecastDays = 14
	exportURLExpiry     = 24 * time.Hour
	exportContentType   = "application/json"
	dateLayout          = "2006-01-02"
)

// ReportStore persists exported insight reports.
type ReportStore interface {
	UploadReport(ctx context.Context, key string, body []byte, contentType string) error
	PresignReportURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Service provides the analytics use cases behind the HTTP API.
type Service struct {
	engine    *insights.Engine
	tenants   repository.TenantReader
	churn     *churn.Scorer
	equipment *equipment.Scorer
	reports   ReportStore
	log       *logger.Logger
	now       func() time.Time
}

// New creates the analytics service. reports may be nil when object storage is not configured.
func New(
	engine *insights.Engine,
	tenants repository.TenantReader,
	churnScorer *churn.Scorer,
	equipmentScorer *equipment.Scorer,
	reports ReportStore,
	log *logger.Logger,
) *Service {
	return &Service{
		engine:    engine,
		tenants:   tenants,
		churn:     churnScorer,
		equipment: equipmentScorer,
		reports:   reports,
		log:       log,
		now:       time.Now,
	}
}

// Insights generates the full predictive report for a tenant.
func (s *Service) Insights(ctx context.Context, tenantID uuid.UUID, timeframe string) (*domain.PredictiveInsights, error) {
	report, err := s.engine.GeneratePredictiveInsights(ctx, tenantID, timeframe)
	if err != nil {
		return nil, s.internal(ctx, "generate insights", err)
	}
	return report, nil
}

// DemandForecast returns daily forecast points.
func (s *Service) DemandForecast(_ context.Context, q transport.DemandQuery) (transport.DemandForecastResponse, error) {
	from := s.now()
	if q.From != "" {
		parsed, err := time.ParseInLocation(dateLayout, q.From, time.UTC)
		if err != nil {
			return transport.DemandForecastResponse{}, apperr.Validation("from must be a date in YYYY-MM-DD format")
		}
		from = parsed
	}
	days := q.Days
	if days <= 0 {
		days = defaultForecastDays
	}

	items := s.engine.DemandForecast(from, days)
	return transport.DemandForecastResponse{
		From:  from.Format(dateLayout),
		Days:  days,
		Items: items,
	}, nil
}

// ChurnRisk lists medium and high risk customers for a tenant.
func (s *Service) ChurnRisk(ctx context.Context, tenantID uuid.UUID) (transport.ChurnRiskResponse, error) {
	items, err := s.engine.ChurnRisk(ctx, tenantID)
	if err != nil {
		return transport.ChurnRiskResponse{}, s.internal(ctx, "list churn risk", err)
	}
	return transport.ChurnRiskResponse{Items: items, Total: len(items)}, nil
}

// ScoreCustomer scores a posted behavior sample.
func (s *Service) ScoreCustomer(req transport.ScoreChurnRequest) domain.ChurnPrediction {
	return s.churn.Score(toBehavior(req))
}

// AssessEquipment builds a maintenance alert for a posted equipment sample.
func (s *Service) AssessEquipment(req transport.AssessEquipmentRequest) domain.MaintenanceAlert {
	eq := domain.Equipment{
		Type:         sanitize.Label(req.EquipmentType),
		AgeYears:     req.AgeYears,
		UsageReading: req.UsageReading,
	}
	if req.EquipmentID != nil {
		eq.ID = *req.EquipmentID
	}
	if req.LastMaintenance != nil {
		eq.LastMaintenance = *req.LastMaintenance
	}
	return s.equipment.Alert(eq)
}

// Models returns model display metadata.
func (s *Service) Models() transport.ModelsResponse {
	return transport.ModelsResponse{Items: domain.Models()}
}

// ExportInsights uploads the tenant's report as JSON and returns a download link.
func (s *Service) ExportInsights(ctx context.Context, tenantID uuid.UUID, timeframe string) (transport.ExportInsightsResponse, error) {
	if s.reports == nil {
		return transport.ExportInsightsResponse{}, apperr.Unavailable("report storage is not configured")
	}

	tenant, err := s.tenants.GetTenant(ctx, tenantID)
	if err != nil {
		return transport.ExportInsightsResponse{}, s.internal(ctx, "load tenant", err)
	}

	report, err := s.Insights(ctx, tenantID, timeframe)
	if err != nil {
		return transport.ExportInsightsResponse{}, err
	}

	body, err := json.MarshalIndent(struct {
		Organization repository.Tenant `json:"organization"`
		*domain.PredictiveInsights
	}{tenant, report}, "", "  ")
	if err != nil {
		return transport.ExportInsightsResponse{}, s.internal(ctx, "encode report", err)
	}

	key := ReportKey(tenantID, report.Timeframe, report.GeneratedAt)
	if err := s.reports.UploadReport(ctx, key, body, exportContentType); err != nil {
		return transport.ExportInsightsResponse{}, s.internal(ctx, "upload report", err)
	}
	url, err := s.reports.PresignReportURL(ctx, key, exportURLExpiry)
	if err != nil {
		return transport.ExportInsightsResponse{}, s.internal(ctx, "presign report", err)
	}

	s.log.WithContext(ctx).Info("insights report exported",
		slog.String("tenant_id", tenantID.String()),
		slog.String("object_key", key),
		slog.Int("bytes", len(body)),
	)

	return transport.ExportInsightsResponse{
		ObjectKey:   key,
		DownloadURL: url,
		ExpiresAt:   s.now().Add(exportURLExpiry),
	}, nil
}

// ReportKey is the object key for an exported report.
func ReportKey(tenantID uuid.UUID, timeframe domain.Timeframe, generatedAt time.Time) string {
	return fmt.Sprintf("%s/insights-%s-%s.json", tenantID, timeframe, generatedAt.UTC().Format("20060102T150405Z"))
}

// internal passes typed errors through and hides everything else behind a 500.
func (s *Service) internal(ctx context.Context, op string, err error) error {
	if apperr.GetKind(err) != apperr.KindUnknown {
		return err
	}
	s.log.WithContext(ctx).Error("analytics operation failed",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
	return apperr.Wrap(apperr.KindInternal, "failed to "+op, err).WithOp(op)
}

func toBehavior(req transport.ScoreChurnRequest) domain.CustomerBehavior {
	b := domain.CustomerBehavior{
		CustomerName:         sanitize.Label(req.CustomerName),
		ContactPhone:         req.ContactPhone,
		AppointmentFrequency: req.AppointmentFrequency,
		AverageServiceValue:  req.AverageServiceValue,
		LastServiceDate:      req.LastServiceDate,
		TotalServices:        req.TotalServices,
		CancellationRate:     req.CancellationRate,
		PaymentHistory:       domain.PaymentHistory(req.PaymentHistory),
		SatisfactionScore:    req.SatisfactionScore,
		PreferredTimeSlots:   make([]domain.TimeSlot, 0, len(req.PreferredTimeSlots)),
		ServiceTypes:         make([]domain.ServiceType, 0, len(req.ServiceTypes)),
	}
	if req.CustomerID != nil {
		b.CustomerID = *req.CustomerID
	}
	for _, slot := range req.PreferredTimeSlots {
		b.PreferredTimeSlots = append(b.PreferredTimeSlots, domain.TimeSlot(slot))
	}
	for _, st := range req.ServiceTypes {
		b.ServiceTypes = append(b.ServiceTypes, domain.ServiceType(st))
	}
	return b
}
