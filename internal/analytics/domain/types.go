// Package domain holds the analytics value types and the lookup tables the
// calculators read from.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentHistory is a coarse category for how reliably a customer pays.
type PaymentHistory string

const (
	PaymentExcellent PaymentHistory = "excellent"
	PaymentGood      PaymentHistory = "good"
	PaymentFair      PaymentHistory = "fair"
	PaymentPoor      PaymentHistory = "poor"
)

// TimeSlot is a preferred appointment part of day.
type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"
	SlotAfternoon TimeSlot = "afternoon"
	SlotEvening   TimeSlot = "evening"
)

// ServiceType is a category of field visit.
type ServiceType string

const (
	ServiceAnnualTest   ServiceType = "annual_test"
	ServiceRepair       ServiceType = "repair"
	ServiceInstallation ServiceType = "installation"
	ServiceInspection   ServiceType = "inspection"
)

// RiskLevel is a discrete severity band derived from a numeric score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// CustomerBehavior is the behavioral summary the churn scorer consumes.
// Ranges are not enforced; out-of-range values skew the score.
type CustomerBehavior struct {
	CustomerID           uuid.UUID      `json:"customerId"`
	CustomerName         string         `json:"customerName,omitempty"`
	ContactPhone         string         `json:"contactPhone,omitempty"`
	AppointmentFrequency float64        `json:"appointmentFrequency"`
	AverageServiceValue  float64        `json:"averageServiceValue"`
	LastServiceDate      time.Time      `json:"lastServiceDate"`
	TotalServices        int            `json:"totalServices"`
	CancellationRate     float64        `json:"cancellationRate"`
	PaymentHistory       PaymentHistory `json:"paymentHistory"`
	SatisfactionScore    float64        `json:"satisfactionScore"`
	PreferredTimeSlots   []TimeSlot     `json:"preferredTimeSlots"`
	ServiceTypes         []ServiceType  `json:"serviceTypes"`
}

// ChurnPrediction is the scored outcome for one customer.
type ChurnPrediction struct {
	CustomerID           uuid.UUID `json:"customerId"`
	CustomerName         string    `json:"customerName,omitempty"`
	ContactPhone         string    `json:"contactPhone,omitempty"`
	ChurnProbability     float64   `json:"churnProbability"`
	RiskLevel            RiskLevel `json:"riskLevel"`
	Factors              []string  `json:"factors"`
	RetentionStrategies  []string  `json:"retentionStrategies"`
	EstimatedRevenueLoss float64   `json:"estimatedRevenueLoss"`
}

// Equipment is a company asset tracked for preventive maintenance.
// UsageReading is hours or miles depending on Type.
type Equipment struct {
	ID              uuid.UUID `json:"id"`
	Type            string    `json:"type"`
	AgeYears        float64   `json:"ageYears"`
	UsageReading    float64   `json:"usageReading"`
	LastMaintenance time.Time `json:"lastMaintenance"`
}

// MaintenanceWindow is the recommended range for preventive work.
type MaintenanceWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// MaintenanceAlert is the projected failure outlook for one piece of equipment.
type MaintenanceAlert struct {
	EquipmentID          uuid.UUID         `json:"equipmentId"`
	EquipmentType        string            `json:"equipmentType"`
	RiskLevel            RiskLevel         `json:"riskLevel"`
	PredictedFailureDate time.Time         `json:"predictedFailureDate"`
	Confidence           float64           `json:"confidence"`
	MaintenanceWindow    MaintenanceWindow `json:"maintenanceWindow"`
	EstimatedCostImpact  float64           `json:"estimatedCostImpact"`
	Factors              []string          `json:"factors"`
	Recommendations      []string          `json:"recommendations"`
}

// DemandFactors is the multiplier breakdown behind a forecast point.
type DemandFactors struct {
	Seasonal float64 `json:"seasonal"`
	Trend    float64 `json:"trend"`
	External float64 `json:"external"`
}

// DemandForecast is the predicted appointment volume for one day.
type DemandForecast struct {
	Date                  time.Time     `json:"date"`
	PredictedAppointments int           `json:"predictedAppointments"`
	Confidence            float64       `json:"confidence"`
	Factors               DemandFactors `json:"factors"`
	Recommendations       []string      `json:"recommendations"`
}

// RevenueOptimization summarizes revenue exposure over the requested timeframe.
type RevenueOptimization struct {
	ProjectedAppointments int      `json:"projectedAppointments"`
	AverageServiceValue   float64  `json:"averageServiceValue"`
	ProjectedRevenue      float64  `json:"projectedRevenue"`
	RevenueAtRisk         float64  `json:"revenueAtRisk"`
	MaintenanceExposure   float64  `json:"maintenanceExposure"`
	Opportunities         []string `json:"opportunities"`
}

// SeasonalPattern is descriptive text about a recurring demand period.
type SeasonalPattern struct {
	Period         string  `json:"period"`
	Pattern        string  `json:"pattern"`
	DemandFactor   float64 `json:"demandFactor"`
	Recommendation string  `json:"recommendation"`
}

// RiskItem is descriptive text about a business risk and its mitigation.
type RiskItem struct {
	Category    string    `json:"category"`
	Level       RiskLevel `json:"level"`
	Description string    `json:"description"`
	Mitigation  string    `json:"mitigation"`
}

// PredictiveInsights is the combined analytics report for one tenant.
type PredictiveInsights struct {
	TenantID            uuid.UUID           `json:"tenantId"`
	Timeframe           Timeframe           `json:"timeframe"`
	GeneratedAt         time.Time           `json:"generatedAt"`
	DemandForecast      []DemandForecast    `json:"demandForecast"`
	ChurnRisk           []ChurnPrediction   `json:"churnRisk"`
	MaintenanceAlerts   []MaintenanceAlert  `json:"maintenanceAlerts"`
	RevenueOptimization RevenueOptimization `json:"revenueOptimization"`
	SeasonalPatterns    []SeasonalPattern   `json:"seasonalPatterns"`
	RiskAssessment      []RiskItem          `json:"riskAssessment"`
}
