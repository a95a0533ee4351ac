// Package notification provides event handlers that email organizations
// when the alert scan raises churn or maintenance alerts.
// Analytics code publishes events and never talks to email providers directly.
package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"backflow_portal_backend/internal/analytics/repository"
	"backflow_portal_backend/internal/email"
	"backflow_portal_backend/internal/events"
	"backflow_portal_backend/platform/logger"

	"github.com/google/uuid"
)

const tenantCacheTTL = 10 * time.Minute

type cachedTenant struct {
	tenant    repository.Tenant
	expiresAt time.Time
}

// Module handles all notification-related event subscriptions.
type Module struct {
	tenants     repository.TenantReader
	sender      email.Sender
	log         *logger.Logger
	tenantCache sync.Map // map[uuid.UUID]cachedTenant
	now         func() time.Time
}

// New creates a new notification module.
func New(tenants repository.TenantReader, sender email.Sender, log *logger.Logger) *Module {
	if sender == nil {
		sender = email.NoopSender{}
	}
	return &Module{
		tenants: tenants,
		sender:  sender,
		log:     log,
		now:     time.Now,
	}
}

// RegisterHandlers subscribes the module to analytics alert events.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.ChurnRiskDetected{}.EventName(), m)
	bus.Subscribe(events.MaintenanceAlertRaised{}.EventName(), m)
}

// Handle implements events.Handler.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ChurnRiskDetected:
		return m.handleChurnRiskDetected(ctx, e)
	case events.MaintenanceAlertRaised:
		return m.handleMaintenanceAlertRaised(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleChurnRiskDetected(ctx context.Context, e events.ChurnRiskDetected) error {
	tenant, ok, err := m.recipient(ctx, e.TenantID)
	if err != nil || !ok {
		return err
	}

	alert := email.ChurnAlert{
		OrganizationName:     tenant.Name,
		CustomerName:         e.CustomerName,
		ContactPhone:         e.ContactPhone,
		ChurnProbability:     e.ChurnProbability,
		Factors:              e.Factors,
		RetentionStrategies:  e.RetentionStrategies,
		EstimatedRevenueLoss: e.EstimatedRevenueLoss,
	}
	if err := m.sender.SendChurnRiskEmail(ctx, tenant.NotificationEmail, alert); err != nil {
		m.logError("failed to send churn risk email", e.TenantID, err)
		return fmt.Errorf("send churn risk email: %w", err)
	}
	m.logSent(e.EventName(), e.TenantID, e.CustomerID)
	return nil
}

func (m *Module) handleMaintenanceAlertRaised(ctx context.Context, e events.MaintenanceAlertRaised) error {
	tenant, ok, err := m.recipient(ctx, e.TenantID)
	if err != nil || !ok {
		return err
	}

	alert := email.MaintenanceAlert{
		OrganizationName:     tenant.Name,
		EquipmentType:        e.EquipmentType,
		PredictedFailureDate: e.PredictedFailureDate,
		WindowStart:          e.WindowStart,
		WindowEnd:            e.WindowEnd,
		EstimatedCostImpact:  e.EstimatedCostImpact,
		Recommendations:      e.Recommendations,
	}
	if err := m.sender.SendMaintenanceAlertEmail(ctx, tenant.NotificationEmail, alert); err != nil {
		m.logError("failed to send maintenance alert email", e.TenantID, err)
		return fmt.Errorf("send maintenance alert email: %w", err)
	}
	m.logSent(e.EventName(), e.TenantID, e.EquipmentID)
	return nil
}

// recipient resolves the tenant an alert goes to. ok is false when the
// organization has no notification address, which is not an error.
func (m *Module) recipient(ctx context.Context, tenantID uuid.UUID) (repository.Tenant, bool, error) {
	tenant, err := m.resolveTenant(ctx, tenantID)
	if err != nil {
		return repository.Tenant{}, false, fmt.Errorf("resolve organization %s: %w", tenantID, err)
	}
	if strings.TrimSpace(tenant.NotificationEmail) == "" {
		if m.log != nil {
			m.log.WithTenantID(tenantID.String()).Info("organization has no notification email, skipping alert")
		}
		return tenant, false, nil
	}
	return tenant, true, nil
}

func (m *Module) resolveTenant(ctx context.Context, tenantID uuid.UUID) (repository.Tenant, error) {
	if cached, ok := m.tenantCache.Load(tenantID); ok {
		entry := cached.(cachedTenant)
		if m.now().Before(entry.expiresAt) {
			return entry.tenant, nil
		}
		m.tenantCache.Delete(tenantID)
	}

	tenant, err := m.tenants.GetTenant(ctx, tenantID)
	if err != nil {
		return repository.Tenant{}, err
	}
	m.tenantCache.Store(tenantID, cachedTenant{tenant: tenant, expiresAt: m.now().Add(tenantCacheTTL)})
	return tenant, nil
}

func (m *Module) logSent(eventName string, tenantID, subjectID uuid.UUID) {
	if m.log == nil {
		return
	}
	m.log.WithTenantID(tenantID.String()).Info("alert email sent", "event", eventName, "subject_id", subjectID.String())
}

func (m *Module) logError(msg string, tenantID uuid.UUID, err error) {
	if m.log == nil {
		return
	}
	m.log.WithTenantID(tenantID.String()).Error(msg, "error", err)
}
