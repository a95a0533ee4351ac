package domain

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Tables holds every constant the calculators consult.
type Tables struct {
	// SeasonalFactors is indexed by calendar month minus one.
	SeasonalFactors       [12]float64
	BaselineDaily         float64
	WeekendRatio          float64
	FailureOffsetDays     map[RiskLevel]int
	CostImpact            map[string]float64
	DefaultCostImpact     float64
	UsageThresholds       map[string]float64
	DefaultUsageThreshold float64
}

// DefaultTables returns the built-in model tables.
func DefaultTables() Tables {
	return Tables{
		SeasonalFactors: [12]float64{
			0.7,  // January
			0.75, // February
			0.95, // March
			1.2,  // April
			1.3,  // May
			1.15, // June
			1.0,  // July
			1.05, // August
			1.25, // September
			1.45, // October
			1.1,  // November
			0.8,  // December
		},
		BaselineDaily: 25,
		WeekendRatio:  0.3,
		FailureOffsetDays: map[RiskLevel]int{
			RiskCritical: 30,
			RiskHigh:     90,
			RiskMedium:   180,
			RiskLow:      365,
		},
		CostImpact: map[string]float64{
			"Service Vehicle":  5000,
			"Test Kit":         2000,
			"Safety Equipment": 500,
		},
		DefaultCostImpact: 1000,
		UsageThresholds: map[string]float64{
			"Service Vehicle": 50000,
		},
		DefaultUsageThreshold: 2000,
	}
}

// Seasonal returns the multiplier for a calendar month.
func (t Tables) Seasonal(m time.Month) float64 {
	if m < time.January || m > time.December {
		return 1
	}
	return t.SeasonalFactors[m-1]
}

// FailureOffset returns the projected time to failure for a band.
func (t Tables) FailureOffset(level RiskLevel) time.Duration {
	days, ok := t.FailureOffsetDays[level]
	if !ok {
		days = t.FailureOffsetDays[RiskLow]
	}
	return time.Duration(days) * 24 * time.Hour
}

// CostFor returns the estimated failure cost for an equipment type.
func (t Tables) CostFor(equipmentType string) float64 {
	if cost, ok := t.CostImpact[equipmentType]; ok {
		return cost
	}
	return t.DefaultCostImpact
}

// UsageThreshold returns the heavy-usage cutoff for an equipment type.
func (t Tables) UsageThreshold(equipmentType string) float64 {
	if limit, ok := t.UsageThresholds[equipmentType]; ok {
		return limit
	}
	return t.DefaultUsageThreshold
}

type tablesFile struct {
	SeasonalFactors       map[int]float64    `yaml:"seasonalFactors"`
	BaselineDaily         *float64           `yaml:"baselineDaily"`
	WeekendRatio          *float64           `yaml:"weekendRatio"`
	FailureOffsetDays     map[string]int     `yaml:"failureOffsetDays"`
	CostImpact            map[string]float64 `yaml:"costImpact"`
	DefaultCostImpact     *float64           `yaml:"defaultCostImpact"`
	UsageThresholds       map[string]float64 `yaml:"usageThresholds"`
	DefaultUsageThreshold *float64           `yaml:"defaultUsageThreshold"`
}

// LoadTables returns DefaultTables overlaid with the YAML file at path.
// Keys missing from the file keep their default. An empty path returns the defaults.
func LoadTables(path string) (Tables, error) {
	tables := DefaultTables()
	if strings.TrimSpace(path) == "" {
		return tables, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read model tables: %w", err)
	}
	if err := tables.apply(raw); err != nil {
		return Tables{}, fmt.Errorf("load model tables %s: %w", path, err)
	}
	return tables, nil
}

// ParseTables overlays YAML content on the default tables.
func ParseTables(raw []byte) (Tables, error) {
	tables := DefaultTables()
	if err := tables.apply(raw); err != nil {
		return Tables{}, err
	}
	return tables, nil
}

func (t *Tables) apply(raw []byte) error {
	var file tablesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}

	for month, factor := range file.SeasonalFactors {
		if month < 1 || month > 12 {
			return fmt.Errorf("seasonalFactors: month %d out of range 1-12", month)
		}
		if factor <= 0 {
			return fmt.Errorf("seasonalFactors: month %d must be positive", month)
		}
		t.SeasonalFactors[month-1] = factor
	}

	if file.BaselineDaily != nil {
		if *file.BaselineDaily <= 0 {
			return fmt.Errorf("baselineDaily must be positive")
		}
		t.BaselineDaily = *file.BaselineDaily
	}
	if file.WeekendRatio != nil {
		if *file.WeekendRatio <= 0 || *file.WeekendRatio > 1 {
			return fmt.Errorf("weekendRatio must be in (0, 1]")
		}
		t.WeekendRatio = *file.WeekendRatio
	}

	for band, days := range file.FailureOffsetDays {
		level := RiskLevel(strings.ToLower(band))
		switch level {
		case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		default:
			return fmt.Errorf("failureOffsetDays: unknown band %q", band)
		}
		if days <= 0 {
			return fmt.Errorf("failureOffsetDays: %s must be positive", band)
		}
		t.FailureOffsetDays[level] = days
	}

	for equipmentType, cost := range file.CostImpact {
		if cost < 0 {
			return fmt.Errorf("costImpact: %s must not be negative", equipmentType)
		}
		t.CostImpact[equipmentType] = cost
	}
	if file.DefaultCostImpact != nil {
		if *file.DefaultCostImpact < 0 {
			return fmt.Errorf("defaultCostImpact must not be negative")
		}
		t.DefaultCostImpact = *file.DefaultCostImpact
	}

	for equipmentType, limit := range file.UsageThresholds {
		if limit <= 0 {
			return fmt.Errorf("usageThresholds: %s must be positive", equipmentType)
		}
		t.UsageThresholds[equipmentType] = limit
	}
	if file.DefaultUsageThreshold != nil {
		if *file.DefaultUsageThreshold <= 0 {
			return fmt.Errorf("defaultUsageThreshold must be positive")
		}
		t.DefaultUsageThreshold = *file.DefaultUsageThreshold
	}

	return nil
}
