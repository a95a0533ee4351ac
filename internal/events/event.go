// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"backflow_portal_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Analytics Domain Events
// =============================================================================

// ChurnRiskDetected is published when the alert scan finds a high-risk customer.
type ChurnRiskDetected struct {
	BaseEvent
	TenantID             uuid.UUID `json:"tenantId"`
	CustomerID           uuid.UUID `json:"customerId"`
	CustomerName         string    `json:"customerName,omitempty"`
	ContactPhone         string    `json:"contactPhone,omitempty"`
	ChurnProbability     float64   `json:"churnProbability"`
	RiskLevel            string    `json:"riskLevel"`
	Factors              []string  `json:"factors"`
	RetentionStrategies  []string  `json:"retentionStrategies"`
	EstimatedRevenueLoss float64   `json:"estimatedRevenueLoss"`
}

func (e ChurnRiskDetected) EventName() string { return "analytics.churn.high_risk_detected" }

// MaintenanceAlertRaised is published when the alert scan finds critical equipment.
type MaintenanceAlertRaised struct {
	BaseEvent
	TenantID             uuid.UUID `json:"tenantId"`
	EquipmentID          uuid.UUID `json:"equipmentId"`
	EquipmentType        string    `json:"equipmentType"`
	RiskLevel            string    `json:"riskLevel"`
	PredictedFailureDate time.Time `json:"predictedFailureDate"`
	WindowStart          time.Time `json:"windowStart"`
	WindowEnd            time.Time `json:"windowEnd"`
	EstimatedCostImpact  float64   `json:"estimatedCostImpact"`
	Recommendations      []string  `json:"recommendations"`
}

func (e MaintenanceAlertRaised) EventName() string { return "analytics.maintenance.alert_raised" }
