package repository

import (
	"context"

	"backflow_portal_backend/internal/analytics/domain"

	"github.com/google/uuid"
)

// Tenant is an organization the analytics engine reports on.
type Tenant struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	NotificationEmail string    `json:"notificationEmail,omitempty"`
}

// TenantReader provides read access to organizations.
type TenantReader interface {
	ListTenants(ctx context.Context) ([]Tenant, error)
	GetTenant(ctx context.Context, tenantID uuid.UUID) (Tenant, error)
}

// BehaviorReader provides the per-tenant inputs for scoring.
type BehaviorReader interface {
	ListCustomerBehavior(ctx context.Context, tenantID uuid.UUID) ([]domain.CustomerBehavior, error)
	ListEquipment(ctx context.Context, tenantID uuid.UUID) ([]domain.Equipment, error)
	AverageServiceValue(ctx context.Context, tenantID uuid.UUID) (float64, error)
}

// Reader is the full analytics read model.
type Reader interface {
	TenantReader
	BehaviorReader
}
