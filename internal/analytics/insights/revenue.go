package insights

import (
	"math"

	"backflow_portal_backend/internal/analytics/domain"
)

const (
	churnExposureShare = 0.1
	peakSeasonFactor   = 1.3

	oppRetention   = "Prioritize retention outreach: revenue at risk exceeds 10% of projected revenue"
	oppPeakBooking = "Pre-book peak season annual tests to lock in capacity"
	oppCritical    = "Service critical equipment before peak season to protect technician capacity"
	oppBundling    = "Bundle inspections with annual tests to raise average ticket value"
)

func revenueOptimization(
	forecast []domain.DemandForecast,
	churnRisk []domain.ChurnPrediction,
	alerts []domain.MaintenanceAlert,
	avgService float64,
) domain.RevenueOptimization {
	appointments := 0
	peak := false
	for _, p := range forecast {
		appointments += p.PredictedAppointments
		if p.Factors.Seasonal > peakSeasonFactor {
			peak = true
		}
	}

	var atRisk float64
	for _, c := range churnRisk {
		atRisk += c.EstimatedRevenueLoss
	}

	var exposure float64
	critical := false
	for _, a := range alerts {
		exposure += a.EstimatedCostImpact
		if a.RiskLevel == domain.RiskCritical {
			critical = true
		}
	}

	projected := round2(float64(appointments) * avgService)

	opportunities := make([]string, 0, 4)
	if projected > 0 && atRisk > projected*churnExposureShare {
		opportunities = append(opportunities, oppRetention)
	}
	if peak {
		opportunities = append(opportunities, oppPeakBooking)
	}
	if critical {
		opportunities = append(opportunities, oppCritical)
	}
	if len(churnRisk) > 0 {
		opportunities = append(opportunities, oppBundling)
	}

	return domain.RevenueOptimization{
		ProjectedAppointments: appointments,
		AverageServiceValue:   round2(avgService),
		ProjectedRevenue:      projected,
		RevenueAtRisk:         round2(atRisk),
		MaintenanceExposure:   round2(exposure),
		Opportunities:         opportunities,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
