package handler

import (
	"errors"
	"io"
	"net/http"

	"backflow_portal_backend/internal/analytics/service"
	"backflow_portal_backend/internal/analytics/transport"
	"backflow_portal_backend/platform/apperr"
	"backflow_portal_backend/platform/httpkit"
	"backflow_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for predictive analytics.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new analytics handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Insights returns the full predictive report for the caller's organization.
// GET /api/v1/analytics/insights
func (h *Handler) Insights(c *gin.Context) {
	var q transport.InsightsQuery
	if !h.bindQuery(c, &q) {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.Insights(c.Request.Context(), tenantID, q.Timeframe)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DemandForecast returns daily appointment volume estimates.
// GET /api/v1/analytics/demand
func (h *Handler) DemandForecast(c *gin.Context) {
	var q transport.DemandQuery
	if !h.bindQuery(c, &q) {
		return
	}
	if _, ok := httpkit.MustGetTenantID(c); !ok {
		return
	}

	result, err := h.svc.DemandForecast(c.Request.Context(), q)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ChurnRisk lists medium and high risk customers.
// GET /api/v1/analytics/churn
func (h *Handler) ChurnRisk(c *gin.Context) {
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.ChurnRisk(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ScoreChurn scores a posted customer behavior sample.
// POST /api/v1/analytics/churn/score
func (h *Handler) ScoreChurn(c *gin.Context) {
	var req transport.ScoreChurnRequest
	if !h.bindJSON(c, &req) {
		return
	}
	httpkit.OK(c, h.svc.ScoreCustomer(req))
}

// AssessEquipment assesses a posted equipment sample.
// POST /api/v1/analytics/equipment/assess
func (h *Handler) AssessEquipment(c *gin.Context) {
	var req transport.AssessEquipmentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	httpkit.OK(c, h.svc.AssessEquipment(req))
}

// Models lists model display metadata.
// GET /api/v1/analytics/models
func (h *Handler) Models(c *gin.Context) {
	httpkit.OK(c, h.svc.Models())
}

// ExportInsights uploads a report and returns a download link (admin only).
// POST /api/v1/admin/analytics/insights/export
func (h *Handler) ExportInsights(c *gin.Context) {
	var req transport.ExportInsightsRequest
	// An empty body exports the default timeframe.
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.ExportInsights(c.Request.Context(), tenantID, req.Timeframe)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return false
	}
	return h.validate(c, dst)
}

func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return false
	}
	return h.validate(c, dst)
}

// bindOptionalJSON is bindJSON that treats a missing body, sized or chunked,
// as the zero request.
func (h *Handler) bindOptionalJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return false
	}
	return h.validate(c, dst)
}

func (h *Handler) validate(c *gin.Context, dst any) bool {
	if err := h.val.Struct(dst); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(err.Error()))
		return false
	}
	return true
}
