package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskAnalyticsAlertScan is the periodic task that fans out one tenant scan per organization.
const TaskAnalyticsAlertScan = "analytics.alerts.scan"

// TaskAnalyticsTenantScan scores one tenant and raises alerts.
const TaskAnalyticsTenantScan = "analytics.tenant.scan"

const defaultScanTimeframe = "30d"

type TenantScanPayload struct {
	TenantID  string `json:"tenantId"`
	Timeframe string `json:"timeframe,omitempty"`
}

func NewAlertScanTask() *asynq.Task {
	return asynq.NewTask(TaskAnalyticsAlertScan, nil)
}

func NewTenantScanTask(payload TenantScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnalyticsTenantScan, data), nil
}

func ParseTenantScanPayload(task *asynq.Task) (TenantScanPayload, error) {
	var payload TenantScanPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return TenantScanPayload{}, err
	}
	if payload.Timeframe == "" {
		payload.Timeframe = defaultScanTimeframe
	}
	return payload, nil
}
