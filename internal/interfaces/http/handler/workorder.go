package handler

import (
	"github.com/gin-gonic/gin"
	appdoc "github.com/workshop/backend/internal/application/document"
)

// WorkOrderHandler handles work order endpoints
type WorkOrderHandler struct {
	BaseHandler
	service    *appdoc.WorkOrderService
	conversion *appdoc.ConversionService
}

// NewWorkOrderHandler creates a new work order handler
func NewWorkOrderHandler(service *appdoc.WorkOrderService, conversion *appdoc.ConversionService) *WorkOrderHandler {
	return &WorkOrderHandler{service: service, conversion: conversion}
}

// RegisterRoutes registers work order routes on the given group
func (h *WorkOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/work-orders")
	orders.POST("", h.Create)
	orders.GET("", h.List)
	orders.GET("/:id", h.GetByID)
	orders.PUT("/:id", h.Update)
	orders.GET("/:id/items", h.ListItems)
	orders.POST("/:id/items", h.AddItem)
	orders.PUT("/:id/items/:item_id", h.UpdateItem)
	orders.DELETE("/:id/items/:item_id", h.RemoveItem)
	orders.POST("/:id/service-lines", h.AddServiceLine)
	orders.PUT("/:id/service-lines/:line_id", h.UpdateServiceLine)
	orders.DELETE("/:id/service-lines/:line_id", h.RemoveServiceLine)
	orders.POST("/:id/advance", h.Advance)
	orders.POST("/:id/revert", h.Revert)
	orders.PUT("/:id/status", h.SetStatus)
	orders.POST("/:id/invoice", h.Invoice)
}

// Create handles POST /work-orders
func (h *WorkOrderHandler) Create(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var req appdoc.CreateWorkOrderRequest
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

// List handles GET /work-orders
func (h *WorkOrderHandler) List(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var filter appdoc.WorkOrderListFilter
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

// GetByID handles GET /work-orders/:id
func (h *WorkOrderHandler) GetByID(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid work order ID")
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), orgID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListItems handles GET /work-orders/:id/items
func (h *WorkOrderHandler) ListItems(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid work order ID")
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), orgID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp.Items)
}

// Update handles PUT /work-orders/:id
func (h *WorkOrderHandler) Update(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid work order ID")
		return
	}

	var req appdoc.UpdateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), orgID, orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// AddItem handles POST /work-orders/:id/items
func (h *WorkOrderHandler) AddItem(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid work order ID")
		return
	}

	var req appdoc.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.AddItem(c.Request.Context(), orgID, orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// UpdateItem handles PUT /work-orders/:id/items/:item_id
func (h *WorkOrderHandler) UpdateItem(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid work order ID")
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

	resp, err := h.service.UpdateItem(c.Request.Context(), orgID, orderID, itemID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// RemoveItem handles DELETE /work-orders/:id/items/:item_id
func (h *WorkOrderHandler) RemoveItem(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid work order ID")
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

	resp, err := h.service.RemoveItem(c.Request.Context(), orgID, orderID, itemID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// AddServiceLine handles POST /work-orders/:id/service-lines
func (h *WorkOrderHandler) AddServiceLine(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid work order ID")
		return
	}

	var req appdoc.AddServiceLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.AddServiceLine(c.Request.Context(), orgID, orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// RemoveServiceLine handles DELETE /work-orders/:id/service-lines/:line_id
func (h *WorkOrderHandler) UpdateServiceLine(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid work order ID")
		return
	}

	lineID, err := parseIDParam(c, "line_id")
	if err != nil {
		h.BadRequest(c, "Invalid service line ID")
		return
	}

	var req appdoc.AddServiceLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.UpdateServiceLine(c.Request.Context(), orgID, orderID, lineID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

func (h *WorkOrderHandler) RemoveServiceLine(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid work order ID")
		return
	}

	lineID, err := parseIDParam(c, "line_id")
	if err != nil {
		h.BadRequest(c, "Invalid service line ID")
		return
	}

	var req appdoc.VersionedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.RemoveServiceLine(c.Request.Context(), orgID, orderID, lineID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Advance handles POST /work-orders/:id/advance
func (h *WorkOrderHandler) Advance(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid work order ID")
		return
	}

	var req appdoc.VersionedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.Advance(c.Request.Context(), orgID, orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Revert handles POST /work-orders/:id/revert
func (h *WorkOrderHandler) Revert(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid work order ID")
		return
	}

	var req appdoc.VersionedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.Revert(c.Request.Context(), orgID, orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// SetStatus handles PUT /work-orders/:id/status
func (h *WorkOrderHandler) SetStatus(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid work order ID")
		return
	}

	var req appdoc.SetWorkOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.SetStatus(c.Request.Context(), orgID, orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Invoice handles POST /work-orders/:id/invoice
func (h *WorkOrderHandler) Invoice(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid work order ID")
		return
	}

	var req appdoc.ConvertWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.conversion.WorkOrderToInvoice(c.Request.Context(), orgID, orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}
