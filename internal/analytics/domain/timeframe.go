package domain

import "backflow_portal_backend/platform/apperr"

// Timeframe is the horizon of an insights request.
type Timeframe string

const (
	Timeframe30Days   Timeframe = "30d"
	Timeframe90Days   Timeframe = "90d"
	Timeframe6Months  Timeframe = "6m"
	Timeframe1Year    Timeframe = "1y"
	DefaultTimeframe            = Timeframe90Days
)

var timeframeDays = map[Timeframe]int{
	Timeframe30Days:  30,
	Timeframe90Days:  90,
	Timeframe6Months: 180,
	Timeframe1Year:   365,
}

// ParseTimeframe accepts exactly 30d, 90d, 6m and 1y, the same set request
// validation allows. Empty input yields the default.
func ParseTimeframe(raw string) (Timeframe, error) {
	value := Timeframe(raw)
	if value == "" {
		return DefaultTimeframe, nil
	}
	if _, ok := timeframeDays[value]; !ok {
		return "", apperr.Validation("timeframe must be one of 30d, 90d, 6m, 1y").
			WithDetails(map[string]string{"timeframe": raw})
	}
	return value, nil
}

// Days returns the forecast horizon in days.
func (t Timeframe) Days() int {
	return timeframeDays[t]
}
