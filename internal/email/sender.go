package email

import (
	"context"
	"time"
)

// ChurnAlert is the content of a high churn risk notification.
type ChurnAlert struct {
	OrganizationName     string
	CustomerName         string
	ContactPhone         string
	ChurnProbability     float64
	Factors              []string
	RetentionStrategies  []string
	EstimatedRevenueLoss float64
}

// MaintenanceAlert is the content of a critical equipment notification.
type MaintenanceAlert struct {
	OrganizationName     string
	EquipmentType        string
	PredictedFailureDate time.Time
	WindowStart          time.Time
	WindowEnd            time.Time
	EstimatedCostImpact  float64
	Recommendations      []string
}

type Sender interface {
	SendChurnRiskEmail(ctx context.Context, toEmail string, alert ChurnAlert) error
	SendMaintenanceAlertEmail(ctx context.Context, toEmail string, alert MaintenanceAlert) error
}

type NoopSender struct{}

func (NoopSender) SendChurnRiskEmail(context.Context, string, ChurnAlert) error {
	return nil
}

func (NoopSender) SendMaintenanceAlertEmail(context.Context, string, MaintenanceAlert) error {
	return nil
}
