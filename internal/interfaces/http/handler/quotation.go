package handler

import (
	"github.com/gin-gonic/gin"
	appdoc "github.com/workshop/backend/internal/application/document"
)

// QuotationHandler handles quotation endpoints
type QuotationHandler struct {
	BaseHandler
	service    *appdoc.QuotationService
	conversion *appdoc.ConversionService
}

// NewQuotationHandler creates a new quotation handler
func NewQuotationHandler(service *appdoc.QuotationService, conversion *appdoc.ConversionService) *QuotationHandler {
	return &QuotationHandler{service: service, conversion: conversion}
}

// RegisterRoutes registers quotation routes on the given group
func (h *QuotationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	quotations := rg.Group("/quotations")
	quotations.POST("", h.Create)
	quotations.GET("", h.List)
	quotations.GET("/:id", h.GetByID)
	quotations.PUT("/:id", h.Update)
	quotations.DELETE("/:id", h.Cancel)
	quotations.GET("/:id/items", h.ListItems)
	quotations.POST("/:id/items", h.AddItem)
	quotations.PUT("/:id/items/:item_id", h.UpdateItem)
	quotations.DELETE("/:id/items/:item_id", h.RemoveItem)
	quotations.POST("/:id/send", h.Send)
	quotations.POST("/:id/approve", h.Approve)
	quotations.POST("/:id/reject", h.Reject)
	quotations.POST("/:id/cancel", h.Cancel)
	quotations.POST("/:id/duplicate", h.Duplicate)
	quotations.POST("/:id/convert", h.Convert)
}

// Create handles POST /quotations
func (h *QuotationHandler) Create(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var req appdoc.CreateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// List handles GET /quotations
func (h *QuotationHandler) List(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var filter appdoc.QuotationListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetByID handles GET /quotations/:id
func (h *QuotationHandler) GetByID(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	quotationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID")
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), orgID, quotationID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListItems handles GET /quotations/:id/items
func (h *QuotationHandler) ListItems(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	quotationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID")
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), orgID, quotationID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp.Items)
}

// Update handles PUT /quotations/:id
func (h *QuotationHandler) Update(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	quotationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID")
		return
	}

	var req appdoc.UpdateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), orgID, quotationID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// AddItem handles POST /quotations/:id/items
func (h *QuotationHandler) AddItem(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	quotationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID")
		return
	}

	var req appdoc.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.AddItem(c.Request.Context(), orgID, quotationID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// UpdateItem handles PUT /quotations/:id/items/:item_id
func (h *QuotationHandler) UpdateItem(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	quotationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID")
		return
	}

	itemID, err := parseIDParam(c, "item_id")
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var req appdoc.UpdateLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.UpdateItem(c.Request.Context(), orgID, quotationID, itemID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// RemoveItem handles DELETE /quotations/:id/items/:item_id
func (h *QuotationHandler) RemoveItem(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	quotationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID")
		return
	}

	itemID, err := parseIDParam(c, "item_id")
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var req appdoc.VersionedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.RemoveItem(c.Request.Context(), orgID, quotationID, itemID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Send handles POST /quotations/:id/send
func (h *QuotationHandler) Send(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	quotationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID")
		return
	}

	var req appdoc.VersionedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.Send(c.Request.Context(), orgID, quotationID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Approve handles POST /quotations/:id/approve
func (h *QuotationHandler) Approve(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	quotationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID")
		return
	}

	var req appdoc.ApproveQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.Approve(c.Request.Context(), orgID, quotationID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Reject handles POST /quotations/:id/reject
func (h *QuotationHandler) Reject(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	quotationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID")
		return
	}

	var req appdoc.RejectQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.Reject(c.Request.Context(), orgID, quotationID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Cancel handles POST /quotations/:id/cancel and DELETE /quotations/:id
func (h *QuotationHandler) Cancel(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	quotationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID")
		return
	}

	var req appdoc.VersionedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), orgID, quotationID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Duplicate handles POST /quotations/:id/duplicate
func (h *QuotationHandler) Duplicate(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	quotationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID")
		return
	}

	resp, err := h.service.Duplicate(c.Request.Context(), orgID, quotationID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// Convert handles POST /quotations/:id/convert
func (h *QuotationHandler) Convert(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	quotationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID")
		return
	}

	var req appdoc.ConvertQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.conversion.QuotationToWorkOrder(c.Request.Context(), orgID, quotationID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}
