package transport

import (
	"time"

	"backflow_portal_backend/internal/analytics/domain"

	"github.com/google/uuid"
)

// InsightsQuery selects the report horizon.
type InsightsQuery struct {
	Timeframe string `form:"timeframe" validate:"omitempty,oneof=30d 90d 6m 1y"`
}

// DemandQuery selects a forecast range. From defaults to today, Days to 14.
type DemandQuery struct {
	From string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	Days int    `form:"days" validate:"omitempty,min=1,max=365"`
}

// ScoreChurnRequest is an ad-hoc customer behavior sample to score.
type ScoreChurnRequest struct {
	CustomerID           *uuid.UUID `json:"customerId,omitempty"`
	CustomerName         string     `json:"customerName,omitempty" validate:"omitempty,max=200"`
	ContactPhone         string     `json:"contactPhone,omitempty" validate:"omitempty,max=40"`
	AppointmentFrequency float64    `json:"appointmentFrequency" validate:"gte=0"`
	AverageServiceValue  float64    `json:"averageServiceValue" validate:"gte=0"`
	LastServiceDate      time.Time  `json:"lastServiceDate" validate:"required"`
	TotalServices        int        `json:"totalServices" validate:"gte=0"`
	CancellationRate     float64    `json:"cancellationRate" validate:"gte=0,lte=1"`
	PaymentHistory       string     `json:"paymentHistory" validate:"required,oneof=excellent good fair poor"`
	SatisfactionScore    float64    `json:"satisfactionScore" validate:"gte=1,lte=5"`
	PreferredTimeSlots   []string   `json:"preferredTimeSlots,omitempty" validate:"omitempty,dive,oneof=morning afternoon evening"`
	ServiceTypes         []string   `json:"serviceTypes,omitempty" validate:"omitempty,dive,oneof=annual_test repair installation inspection"`
}

// AssessEquipmentRequest is an ad-hoc equipment sample to assess.
type AssessEquipmentRequest struct {
	EquipmentID     *uuid.UUID `json:"equipmentId,omitempty"`
	EquipmentType   string     `json:"equipmentType" validate:"required,min=1,max=100"`
	AgeYears        float64    `json:"ageYears" validate:"gte=0,lte=100"`
	UsageReading    float64    `json:"usageReading" validate:"gte=0"`
	LastMaintenance *time.Time `json:"lastMaintenance,omitempty"`
}

// ExportInsightsRequest selects the report to export.
type ExportInsightsRequest struct {
	Timeframe string `json:"timeframe" validate:"omitempty,oneof=30d 90d 6m 1y"`
}

// DemandForecastResponse wraps forecast points.
type DemandForecastResponse struct {
	From  string                  `json:"from"`
	Days  int                     `json:"days"`
	Items []domain.DemandForecast `json:"items"`
}

// ChurnRiskResponse wraps the medium and high risk customer list.
type ChurnRiskResponse struct {
	Items []domain.ChurnPrediction `json:"items"`
	Total int                      `json:"total"`
}

// ModelsResponse lists model display metadata.
type ModelsResponse struct {
	Items []domain.ModelInfo `json:"items"`
}

// ExportInsightsResponse points at an uploaded report.
type ExportInsightsResponse struct {
	ObjectKey   string    `json:"objectKey"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
