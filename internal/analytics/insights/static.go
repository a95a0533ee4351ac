package insights

import "backflow_portal_backend/internal/analytics/domain"

// SeasonalPatterns returns the fixed seasonal demand notes.
func SeasonalPatterns() []domain.SeasonalPattern {
	return []domain.SeasonalPattern{
		{
			Period:         "Spring (Mar-May)",
			Pattern:        "Irrigation systems come back online and annual test notices go out",
			DemandFactor:   1.15,
			Recommendation: "Send annual test reminders in February",
		},
		{
			Period:         "Summer (Jun-Aug)",
			Pattern:        "Steady demand driven by installations and repairs",
			DemandFactor:   1.07,
			Recommendation: "Schedule equipment maintenance during the summer plateau",
		},
		{
			Period:         "Fall (Sep-Nov)",
			Pattern:        "Compliance deadlines before winterization produce the yearly peak",
			DemandFactor:   1.27,
			Recommendation: "Add technician capacity for September and October",
		},
		{
			Period:         "Winter (Dec-Feb)",
			Pattern:        "Lowest demand, mostly freeze damage repairs",
			DemandFactor:   0.75,
			Recommendation: "Use the slow season for training and customer outreach",
		},
	}
}

// RiskAssessment returns the fixed business risk notes.
func RiskAssessment() []domain.RiskItem {
	return []domain.RiskItem{
		{
			Category:    "Technician capacity",
			Level:       domain.RiskHigh,
			Description: "Fall demand can exceed available technician hours",
			Mitigation:  "Cross-train staff and pre-book peak season slots",
		},
		{
			Category:    "Regulatory compliance",
			Level:       domain.RiskMedium,
			Description: "Missed annual tests expose customers to water authority penalties",
			Mitigation:  "Automate reminder schedules against each device's due date",
		},
		{
			Category:    "Customer retention",
			Level:       domain.RiskMedium,
			Description: "Lapsed customers often switch to the cheapest local tester",
			Mitigation:  "Run retention campaigns for medium and high churn risk customers",
		},
		{
			Category:    "Equipment reliability",
			Level:       domain.RiskLow,
			Description: "Test kit calibration drift can invalidate results",
			Mitigation:  "Keep calibration certificates current and rotate spare kits",
		},
	}
}
