package handler

import (
	"github.com/gin-gonic/gin"
	appdoc "github.com/workshop/backend/internal/application/document"
)

// MetricsHandler exposes aggregate document metrics
type MetricsHandler struct {
	BaseHandler
	service *appdoc.MetricsService
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(service *appdoc.MetricsService) *MetricsHandler {
	return &MetricsHandler{service: service}
}

// RegisterRoutes registers metrics routes on the given group
func (h *MetricsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/quotations/metrics", h.Quotations)
	rg.GET("/work-orders/metrics", h.WorkOrders)
	rg.GET("/invoices/metrics", h.Invoices)
}

// Quotations handles GET /quotations/metrics
func (h *MetricsHandler) Quotations(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	resp, err := h.service.QuotationMetrics(c.Request.Context(), orgID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// WorkOrders handles GET /work-orders/metrics
func (h *MetricsHandler) WorkOrders(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	resp, err := h.service.WorkOrderMetrics(c.Request.Context(), orgID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Invoices handles GET /invoices/metrics
func (h *MetricsHandler) Invoices(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	resp, err := h.service.InvoiceMetrics(c.Request.Context(), orgID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}
