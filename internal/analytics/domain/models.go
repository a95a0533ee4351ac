package domain

// ModelInfo is display metadata about a scoring model. Scoring never reads it.
type ModelInfo struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Version     string  `json:"version"`
	Accuracy    float64 `json:"accuracy"`
	Description string  `json:"description"`
}

// Models lists the analytics models shown in the portal.
func Models() []ModelInfo {
	return []ModelInfo{
		{
			Key:         "demand_forecasting",
			Name:        "Seasonal demand estimator",
			Version:     "1.2.0",
			Accuracy:    0.87,
			Description: "Monthly seasonality with linear growth trend",
		},
		{
			Key:         "churn_prediction",
			Name:        "Customer churn scorer",
			Version:     "1.1.0",
			Accuracy:    0.82,
			Description: "Additive rule score over recency, payment, cancellations and satisfaction",
		},
		{
			Key:         "equipment_maintenance",
			Name:        "Equipment risk scorer",
			Version:     "1.0.3",
			Accuracy:    0.79,
			Description: "Age, usage and maintenance thresholds with banded failure projection",
		},
	}
}
