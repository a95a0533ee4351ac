package email

const (
	subjectChurnRiskFmt        = "High churn risk: %s"
	subjectMaintenanceAlertFmt = "Critical maintenance alert: %s"
)
