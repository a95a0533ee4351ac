package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title            string
	Heading          string
	Subheading       string
	OrganizationName string
}

type churnRiskEmailData struct {
	baseEmailData
	CustomerName         string
	ContactPhone         string
	Probability          string
	Factors              []string
	RetentionStrategies  []string
	EstimatedRevenueLoss string
}

type maintenanceAlertEmailData struct {
	baseEmailData
	EquipmentType        string
	PredictedFailureDate string
	WindowStart          string
	WindowEnd            string
	EstimatedCostImpact  string
	Recommendations      []string
}

const emailDateLayout = "Jan 2, 2006"

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderChurnRisk(alert ChurnAlert) (subject, body string, err error) {
	subject = fmt.Sprintf(subjectChurnRiskFmt, displayName(alert.CustomerName))
	body, err = renderEmailTemplate("churn_risk.html", churnRiskEmailData{
		baseEmailData: baseEmailData{
			Title:            "Customer at risk",
			Heading:          "A customer is likely to churn",
			Subheading:       "Reach out before the next service window closes.",
			OrganizationName: alert.OrganizationName,
		},
		CustomerName:         displayName(alert.CustomerName),
		ContactPhone:         alert.ContactPhone,
		Probability:          fmt.Sprintf("%.0f%%", alert.ChurnProbability*100),
		Factors:              alert.Factors,
		RetentionStrategies:  alert.RetentionStrategies,
		EstimatedRevenueLoss: formatCurrencyUSD(alert.EstimatedRevenueLoss),
	})
	return subject, body, err
}

func renderMaintenanceAlert(alert MaintenanceAlert) (subject, body string, err error) {
	subject = fmt.Sprintf(subjectMaintenanceAlertFmt, alert.EquipmentType)
	body, err = renderEmailTemplate("maintenance_alert.html", maintenanceAlertEmailData{
		baseEmailData: baseEmailData{
			Title:            "Critical maintenance alert",
			Heading:          "Equipment needs attention",
			Subheading:       "Schedule maintenance inside the recommended window.",
			OrganizationName: alert.OrganizationName,
		},
		EquipmentType:        alert.EquipmentType,
		PredictedFailureDate: formatDate(alert.PredictedFailureDate),
		WindowStart:          formatDate(alert.WindowStart),
		WindowEnd:            formatDate(alert.WindowEnd),
		EstimatedCostImpact:  formatCurrencyUSD(alert.EstimatedCostImpact),
		Recommendations:      alert.Recommendations,
	})
	return subject, body, err
}

func displayName(name string) string {
	if name == "" {
		return "Unnamed customer"
	}
	return name
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(emailDateLayout)
}

func formatCurrencyUSD(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}
