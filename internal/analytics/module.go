// Package analytics provides the predictive analytics bounded context module:
// demand forecasting, churn risk and equipment maintenance alerts.
package analytics

import (
	"backflow_portal_backend/internal/analytics/churn"
	"backflow_portal_backend/internal/analytics/demand"
	"backflow_portal_backend/internal/analytics/domain"
	"backflow_portal_backend/internal/analytics/equipment"
	"backflow_portal_backend/internal/analytics/handler"
	"backflow_portal_backend/internal/analytics/insights"
	"backflow_portal_backend/internal/analytics/repository"
	"backflow_portal_backend/internal/analytics/sampling"
	"backflow_portal_backend/internal/analytics/service"
	apphttp "backflow_portal_backend/internal/http"
	"backflow_portal_backend/platform/config"
	"backflow_portal_backend/platform/logger"
	"backflow_portal_backend/platform/validator"
)

// Module is the analytics bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	engine  *insights.Engine
	reader  repository.Reader
}

// Components bundles the calculators so the API, worker and CLI share one wiring.
type Components struct {
	Engine    *insights.Engine
	Churn     *churn.Scorer
	Equipment *equipment.Scorer
}

// equipmentStream offsets the equipment scorer's seed from the demand
// estimator's. The two run concurrently, so they must not share a stream.
const equipmentStream int64 = 0x5deece66d

// NewComponents builds the calculators and the façade over reader.
func NewComponents(reader repository.Reader, tables domain.Tables, cfg config.AnalyticsConfig, log *logger.Logger) Components {
	mode, seed := cfg.GetAnalyticsFactorMode(), cfg.GetAnalyticsDemoSeed()
	churnScorer := churn.NewScorer(churn.WithPhoneRegion(cfg.GetPhoneDefaultRegion()))
	equipmentScorer := equipment.NewScorer(tables, sampling.FromMode(mode, seed^equipmentStream))
	engine := insights.New(reader, demand.NewEstimator(tables, sampling.FromMode(mode, seed)), churnScorer, equipmentScorer, log)
	return Components{Engine: engine, Churn: churnScorer, Equipment: equipmentScorer}
}

// NewModule creates and initializes the analytics module with all its dependencies.
// reports may be nil when object storage is disabled.
func NewModule(reader repository.Reader, tables domain.Tables, cfg config.AnalyticsConfig, reports service.ReportStore, val *validator.Validator, log *logger.Logger) *Module {
	c := NewComponents(reader, tables, cfg, log)
	svc := service.New(c.Engine, reader, c.Churn, c.Equipment, reports, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		engine:  c.Engine,
		reader:  reader,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "analytics"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Engine returns the insights façade.
func (m *Module) Engine() *insights.Engine {
	return m.engine
}

// RegisterRoutes mounts analytics routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/analytics")
	group.GET("/insights", m.handler.Insights)
	group.GET("/demand", m.handler.DemandForecast)
	group.GET("/churn", m.handler.ChurnRisk)
	group.POST("/churn/score", m.handler.ScoreChurn)
	group.POST("/equipment/assess", m.handler.AssessEquipment)
	group.GET("/models", m.handler.Models)

	ctx.Admin.POST("/analytics/insights/export", m.handler.ExportInsights)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
