package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"backflow_portal_backend/internal/analytics/churn"
	"backflow_portal_backend/internal/analytics/demand"
	"backflow_portal_backend/internal/analytics/domain"
	"backflow_portal_backend/internal/analytics/equipment"
	"backflow_portal_backend/internal/analytics/insights"
	"backflow_portal_backend/internal/analytics/repository"
	"backflow_portal_backend/internal/analytics/sampling"
	"backflow_portal_backend/internal/analytics/service"
	"backflow_portal_backend/platform/httpkit"
	"backflow_portal_backend/platform/logger"
	"backflow_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret"

type jwtConfig struct{}

func (jwtConfig) GetJWTAccessSecret() string { return testSecret }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewWithHandler(slog.NewTextHandler(io.Discard, nil))
	tables := domain.DefaultTables()
	demo := repository.NewDemoSource(5)
	churnScorer := churn.NewScorer()
	equipmentScorer := equipment.NewScorer(tables, sampling.Neutral{})
	engine := insights.New(demo, demand.NewEstimator(tables, sampling.Neutral{}), churnScorer, equipmentScorer, log)
	h := New(service.New(engine, demo, churnScorer, equipmentScorer, nil, log), validator.New())

	r := gin.New()
	group := r.Group("/api/v1/analytics", httpkit.AuthRequired(jwtConfig{}))
	group.GET("/insights", h.Insights)
	group.GET("/demand", h.DemandForecast)
	group.GET("/churn", h.ChurnRisk)
	group.POST("/churn/score", h.ScoreChurn)
	group.POST("/equipment/assess", h.AssessEquipment)
	group.GET("/models", h.Models)
	r.POST("/api/v1/admin/analytics/insights/export", httpkit.AuthRequired(jwtConfig{}), httpkit.RequireRole("admin"), h.ExportInsights)
	return r
}

func signToken(t *testing.T, tenantID *uuid.UUID, roles ...string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   uuid.NewString(),
		"type":  "access",
		"roles": roles,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	if tenantID != nil {
		claims["tenant_id"] = tenantID.String()
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func do(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestInsightsReturnsReport(t *testing.T) {
	r := newTestRouter(t)
	tenantID := repository.DemoTenantID(0)

	w := do(r, http.MethodGet, "/api/v1/analytics/insights?timeframe=30d", signToken(t, &tenantID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var report domain.PredictiveInsights
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.TenantID != tenantID || len(report.DemandForecast) != 30 {
		t.Fatalf("unexpected report: tenant=%s days=%d", report.TenantID, len(report.DemandForecast))
	}
}

func TestInsightsRejectsUnknownTimeframe(t *testing.T) {
	r := newTestRouter(t)
	tenantID := uuid.New()
	w := do(r, http.MethodGet, "/api/v1/analytics/insights?timeframe=2w", signToken(t, &tenantID), "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestTimeframeCaseIsRejectedConsistently(t *testing.T) {
	r := newTestRouter(t)
	tenantID := repository.DemoTenantID(0)
	token := signToken(t, &tenantID, "admin")

	if w := do(r, http.MethodGet, "/api/v1/analytics/insights?timeframe=90D", token, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("insights: expected 400, got %d", w.Code)
	}
	w := do(r, http.MethodPost, "/api/v1/admin/analytics/insights/export", token, `{"timeframe":"90D"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("export: expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestInsightsRequiresToken(t *testing.T) {
	r := newTestRouter(t)
	if w := do(r, http.MethodGet, "/api/v1/analytics/insights", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestInsightsRequiresOrganization(t *testing.T) {
	r := newTestRouter(t)
	if w := do(r, http.MethodGet, "/api/v1/analytics/churn", signToken(t, nil), ""); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestDemandForecastQuery(t *testing.T) {
	r := newTestRouter(t)
	tenantID := uuid.New()
	w := do(r, http.MethodGet, "/api/v1/analytics/demand?from=2026-10-15&days=7", signToken(t, &tenantID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		From  string `json:"from"`
		Items []any  `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.From != "2026-10-15" || len(resp.Items) != 7 {
		t.Fatalf("unexpected forecast: from=%s items=%d", resp.From, len(resp.Items))
	}

	if w := do(r, http.MethodGet, "/api/v1/analytics/demand?days=400", signToken(t, &tenantID), ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for excessive days, got %d", w.Code)
	}
}

func TestScoreChurnValidatesPayload(t *testing.T) {
	r := newTestRouter(t)
	tenantID := uuid.New()
	token := signToken(t, &tenantID)

	bad := `{"lastServiceDate":"2024-01-01T00:00:00Z","paymentHistory":"late","satisfactionScore":3}`
	if w := do(r, http.MethodPost, "/api/v1/analytics/churn/score", token, bad); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown payment history, got %d", w.Code)
	}

	good := `{"appointmentFrequency":0.2,"averageServiceValue":150,"lastServiceDate":"2020-01-01T00:00:00Z",` +
		`"paymentHistory":"poor","satisfactionScore":2,"cancellationRate":0.1}`
	w := do(r, http.MethodPost, "/api/v1/analytics/churn/score", token, good)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var prediction domain.ChurnPrediction
	if err := json.Unmarshal(w.Body.Bytes(), &prediction); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if prediction.RiskLevel != domain.RiskHigh {
		t.Fatalf("expected high risk, got %s", prediction.RiskLevel)
	}
}

func TestAssessEquipment(t *testing.T) {
	r := newTestRouter(t)
	tenantID := uuid.New()
	body := `{"equipmentType":"Service Vehicle","ageYears":6,"usageReading":75000}`
	w := do(r, http.MethodPost, "/api/v1/analytics/equipment/assess", signToken(t, &tenantID), body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var alert domain.MaintenanceAlert
	if err := json.Unmarshal(w.Body.Bytes(), &alert); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if alert.RiskLevel != domain.RiskCritical || alert.EstimatedCostImpact != 5000 {
		t.Fatalf("unexpected alert: %+v", alert)
	}
}

func TestExportWithoutStorageIsUnavailable(t *testing.T) {
	r := newTestRouter(t)
	tenantID := uuid.New()

	if w := do(r, http.MethodPost, "/api/v1/admin/analytics/insights/export", signToken(t, &tenantID), ""); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", w.Code)
	}
	w := do(r, http.MethodPost, "/api/v1/admin/analytics/insights/export", signToken(t, &tenantID, "admin"), `{"timeframe":"30d"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", w.Code, w.Body.String())
	}
}

func TestExportAcceptsEmptyChunkedBody(t *testing.T) {
	r := newTestRouter(t)
	tenantID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/analytics/insights/export", io.MultiReader())
	req.ContentLength = -1
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signToken(t, &tenantID, "admin"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// Reaching the storage check means the empty body bound to the default timeframe.
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", w.Code, w.Body.String())
	}
}

func TestExportRejectsMalformedBody(t *testing.T) {
	r := newTestRouter(t)
	tenantID := uuid.New()
	w := do(r, http.MethodPost, "/api/v1/admin/analytics/insights/export", signToken(t, &tenantID, "admin"), `{"timeframe":`)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "invalid request") {
		t.Fatalf("expected 400 invalid request, got %d: %s", w.Code, w.Body.String())
	}
}

func TestModels(t *testing.T) {
	r := newTestRouter(t)
	tenantID := uuid.New()
	w := do(r, http.MethodGet, "/api/v1/analytics/models", signToken(t, &tenantID), "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "churn_prediction") {
		t.Fatalf("unexpected models response %d: %s", w.Code, w.Body.String())
	}
}
