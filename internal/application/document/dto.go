package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/workshop/backend/internal/domain/document"
	"github.com/workshop/backend/internal/domain/shared/valueobject"
)

// ==================== Shared line item DTOs ====================

// LineItemInput represents one line in a create/add request
type LineItemInput struct {
	ServiceID       *uuid.UUID       `json:"service_id"`
	ProductID       *uuid.UUID       `json:"product_id"`
	Description     string           `json:"description" binding:"omitempty,max=500"`
	Quantity        decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice       decimal.Decimal  `json:"unit_price" binding:"required"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
	TaxPercent      *decimal.Decimal `json:"tax_percent"`
}

// UpdateLineItemRequest represents a partial line update
type UpdateLineItemRequest struct {
	Description     *string          `json:"description" binding:"omitempty,max=500"`
	Quantity        *decimal.Decimal `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	TaxPercent      *decimal.Decimal `json:"tax_percent"`
	Version         int              `json:"version" binding:"required,min=1"`
}

// LineItemResponse represents a line item in API responses
type LineItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	ServiceID       *uuid.UUID      `json:"service_id,omitempty"`
	ProductID       *uuid.UUID      `json:"product_id,omitempty"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	Total           decimal.Decimal `json:"total"`
}

// TotalsResponse represents the computed totals block
type TotalsResponse struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
}

// domainLineInput converts the request line to the domain input, applying the
// default tax rate when the caller omits one.
func (in LineItemInput) domainInput() document.LineItemInput {
	taxPercent := document.DefaultTaxPercent
	if in.TaxPercent != nil {
		taxPercent = *in.TaxPercent
	}
	return document.LineItemInput{
		ServiceID:       in.ServiceID,
		ProductID:       in.ProductID,
		Description:     in.Description,
		Quantity:        in.Quantity,
		UnitPrice:       in.UnitPrice,
		DiscountPercent: in.DiscountPercent,
		TaxPercent:      taxPercent,
	}
}

func toLineItemResponse(item document.LineItem) LineItemResponse {
	return LineItemResponse{
		ID:              item.ID,
		ServiceID:       item.ServiceID,
		ProductID:       item.ProductID,
		Description:     item.Description,
		Quantity:        item.Quantity,
		UnitPrice:       item.UnitPrice,
		DiscountPercent: item.DiscountPercent,
		TaxPercent:      item.TaxPercent,
		Subtotal:        item.Subtotal,
		DiscountAmount:  item.DiscountAmount,
		TaxAmount:       item.TaxAmount,
		Total:           item.Total,
	}
}

func toTotalsResponse(totals document.Totals) TotalsResponse {
	return TotalsResponse{
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.DiscountAmount,
		TaxAmount:      totals.TaxAmount,
		Total:          totals.Total,
	}
}

// ==================== Quotation DTOs ====================

// CreateQuotationRequest represents a request to create a quotation
type CreateQuotationRequest struct {
	CustomerID  uuid.UUID       `json:"customer_id" binding:"required"`
	VehicleID   *uuid.UUID      `json:"vehicle_id"`
	Description string          `json:"description" binding:"omitempty,max=1000"`
	ValidUntil  *time.Time      `json:"valid_until"`
	Items       []LineItemInput `json:"items"`
}

// UpdateQuotationRequest represents a request to update a draft quotation
type UpdateQuotationRequest struct {
	Description *string    `json:"description" binding:"omitempty,max=1000"`
	VehicleID   *uuid.UUID `json:"vehicle_id"`
	ValidUntil  *time.Time `json:"valid_until"`
	Version     int        `json:"version" binding:"required,min=1"`
}

// AddItemRequest adds one line to a draft document
type AddItemRequest struct {
	Item    LineItemInput `json:"item" binding:"required"`
	Version int           `json:"version" binding:"required,min=1"`
}

// VersionedRequest carries only the optimistic-concurrency token, for
// mutations with no other payload.
type VersionedRequest struct {
	Version int `json:"version" binding:"required,min=1"`
}

// ApproveQuotationRequest approves a sent quotation. AllowExpired lets the
// caller accept a quotation past its validity date.
type ApproveQuotationRequest struct {
	AllowExpired bool `json:"allow_expired"`
	Version      int  `json:"version" binding:"required,min=1"`
}

// RejectQuotationRequest rejects a sent quotation with a mandatory reason
type RejectQuotationRequest struct {
	Reason  string `json:"reason" binding:"required,min=1,max=500"`
	Version int    `json:"version" binding:"required,min=1"`
}

// QuotationListFilter represents filter options for the quotation list
type QuotationListFilter struct {
	Search     string     `form:"search"`
	CustomerID *uuid.UUID `form:"customer_id"`
	VehicleID  *uuid.UUID `form:"vehicle_id"`
	Status     *string    `form:"status"`
	Statuses   string     `form:"statuses"`
	StartDate  *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate    *time.Time `form:"end_date" time_format:"2006-01-02"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// QuotationResponse represents a quotation in API responses
type QuotationResponse struct {
	ID           uuid.UUID          `json:"id"`
	OrgID        uuid.UUID          `json:"org_id"`
	Number       string             `json:"number"`
	Status       string             `json:"status"`
	CustomerID   uuid.UUID          `json:"customer_id"`
	VehicleID    *uuid.UUID         `json:"vehicle_id,omitempty"`
	Description  string             `json:"description"`
	Currency     string             `json:"currency"`
	Items        []LineItemResponse `json:"items"`
	ItemCount    int                `json:"item_count"`
	Totals       TotalsResponse     `json:"totals"`
	ValidUntil   *time.Time         `json:"valid_until,omitempty"`
	RejectReason string             `json:"reject_reason,omitempty"`
	OrderID      *uuid.UUID         `json:"order_id,omitempty"`
	SentAt       *time.Time         `json:"sent_at,omitempty"`
	ApprovedAt   *time.Time         `json:"approved_at,omitempty"`
	RejectedAt   *time.Time         `json:"rejected_at,omitempty"`
	CancelledAt  *time.Time         `json:"cancelled_at,omitempty"`
	Version      int                `json:"version"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// ToQuotationResponse converts a quotation to its API representation. The
// status field carries the display status, substituting expired where the
// validity date has lapsed.
func ToQuotationResponse(q *document.Quotation, now time.Time) QuotationResponse {
	items := make([]LineItemResponse, len(q.Items))
	for idx := range q.Items {
		items[idx] = toLineItemResponse(q.Items[idx].LineItem)
	}
	return QuotationResponse{
		ID:           q.ID,
		OrgID:        q.OrgID,
		Number:       q.Number,
		Status:       q.DisplayStatus(now).String(),
		CustomerID:   q.CustomerID,
		VehicleID:    q.VehicleID,
		Description:  q.Description,
		Currency:     string(q.Currency),
		Items:        items,
		ItemCount:    q.ItemCount(),
		Totals:       toTotalsResponse(q.Totals),
		ValidUntil:   q.ValidUntil,
		RejectReason: q.RejectReason,
		OrderID:      q.OrderID,
		SentAt:       q.SentAt,
		ApprovedAt:   q.ApprovedAt,
		RejectedAt:   q.RejectedAt,
		CancelledAt:  q.CancelledAt,
		Version:      q.GetVersion(),
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    q.UpdatedAt,
	}
}

// ==================== Work order DTOs ====================

// CreateWorkOrderRequest represents a request to create a work order directly
// (walk-in reception, no prior quotation).
type CreateWorkOrderRequest struct {
	CustomerID  uuid.UUID       `json:"customer_id" binding:"required"`
	VehicleID   *uuid.UUID      `json:"vehicle_id"`
	Description string          `json:"description" binding:"omitempty,max=1000"`
	Items       []LineItemInput `json:"items"`
}

// UpdateWorkOrderRequest represents a request to update a work order
type UpdateWorkOrderRequest struct {
	Description *string    `json:"description" binding:"omitempty,max=1000"`
	VehicleID   *uuid.UUID `json:"vehicle_id"`
	Version     int        `json:"version" binding:"required,min=1"`
}

// SetWorkOrderStatusRequest jumps the order to a specific status
type SetWorkOrderStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Version int    `json:"version" binding:"required,min=1"`
}

// AddServiceLineRequest records technician work on the order
type AddServiceLineRequest struct {
	Description string          `json:"description" binding:"required,min=1,max=500"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
	Total       decimal.Decimal `json:"total" binding:"required"`
	Notes       string          `json:"notes" binding:"omitempty,max=500"`
	Version     int             `json:"version" binding:"required,min=1"`
}

// WorkOrderListFilter represents filter options for the work order list
type WorkOrderListFilter struct {
	Search     string     `form:"search"`
	CustomerID *uuid.UUID `form:"customer_id"`
	VehicleID  *uuid.UUID `form:"vehicle_id"`
	Status     *string    `form:"status"`
	Statuses   string     `form:"statuses"`
	StartDate  *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate    *time.Time `form:"end_date" time_format:"2006-01-02"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ServiceLineResponse represents a service line in API responses
type ServiceLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// WorkOrderResponse represents a work order in API responses
type WorkOrderResponse struct {
	ID           uuid.UUID             `json:"id"`
	OrgID        uuid.UUID             `json:"org_id"`
	Number       string                `json:"number"`
	Status       string                `json:"status"`
	CustomerID   uuid.UUID             `json:"customer_id"`
	VehicleID    *uuid.UUID            `json:"vehicle_id,omitempty"`
	Description  string                `json:"description"`
	Currency     string                `json:"currency"`
	QuotationID  *uuid.UUID            `json:"quotation_id,omitempty"`
	Items        []LineItemResponse    `json:"items"`
	ItemCount    int                   `json:"item_count"`
	ServiceLines []ServiceLineResponse `json:"service_lines"`
	Totals       TotalsResponse        `json:"totals"`
	CompletedAt  *time.Time            `json:"completed_at,omitempty"`
	DeliveredAt  *time.Time            `json:"delivered_at,omitempty"`
	Version      int                   `json:"version"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// ToWorkOrderResponse converts a work order to its API representation
func ToWorkOrderResponse(w *document.WorkOrder) WorkOrderResponse {
	items := make([]LineItemResponse, len(w.Items))
	for idx := range w.Items {
		items[idx] = toLineItemResponse(w.Items[idx].LineItem)
	}
	serviceLines := make([]ServiceLineResponse, len(w.ServiceLines))
	for idx, line := range w.ServiceLines {
		serviceLines[idx] = ServiceLineResponse{
			ID:          line.ID,
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Total:       line.Total,
			Notes:       line.Notes,
			CreatedAt:   line.CreatedAt,
		}
	}
	return WorkOrderResponse{
		ID:           w.ID,
		OrgID:        w.OrgID,
		Number:       w.Number,
		Status:       w.Status.String(),
		CustomerID:   w.CustomerID,
		VehicleID:    w.VehicleID,
		Description:  w.Description,
		Currency:     string(w.Currency),
		QuotationID:  w.QuotationID,
		Items:        items,
		ItemCount:    w.ItemCount(),
		ServiceLines: serviceLines,
		Totals:       toTotalsResponse(w.Totals),
		CompletedAt:  w.CompletedAt,
		DeliveredAt:  w.DeliveredAt,
		Version:      w.GetVersion(),
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}

// ==================== Invoice DTOs ====================

// CreateInvoiceRequest represents a request to create a manual invoice,
// not tied to a work order.
type CreateInvoiceRequest struct {
	CustomerID uuid.UUID       `json:"customer_id" binding:"required"`
	VehicleID  *uuid.UUID      `json:"vehicle_id"`
	Notes      string          `json:"notes" binding:"omitempty,max=1000"`
	DueDate    *time.Time      `json:"due_date"`
	Items      []LineItemInput `json:"items"`
}

// UpdateInvoiceRequest represents a request to update a draft invoice
type UpdateInvoiceRequest struct {
	Notes     *string    `json:"notes" binding:"omitempty,max=1000"`
	VehicleID *uuid.UUID `json:"vehicle_id"`
	DueDate   *time.Time `json:"due_date"`
	Version   int        `json:"version" binding:"required,min=1"`
}

// SendInvoiceRequest issues a draft invoice to the customer
type SendInvoiceRequest struct {
	DueDate *time.Time `json:"due_date"`
	Version int        `json:"version" binding:"required,min=1"`
}

// MarkInvoicePaidRequest records the payment event
type MarkInvoicePaidRequest struct {
	PaymentMethod    string     `json:"payment_method" binding:"required,min=1,max=50"`
	PaidDate         *time.Time `json:"paid_date"`
	PaymentReference string     `json:"payment_reference" binding:"omitempty,max=100"`
	PaymentNotes     string     `json:"payment_notes" binding:"omitempty,max=500"`
	Version          int        `json:"version" binding:"required,min=1"`
}

// InvoiceListFilter represents filter options for the invoice list
type InvoiceListFilter struct {
	Search      string     `form:"search"`
	CustomerID  *uuid.UUID `form:"customer_id"`
	WorkOrderID *uuid.UUID `form:"work_order_id"`
	Status      *string    `form:"status"`
	Statuses    string     `form:"statuses"`
	DueBefore   *time.Time `form:"due_before" time_format:"2006-01-02"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID               uuid.UUID          `json:"id"`
	OrgID            uuid.UUID          `json:"org_id"`
	Number           string             `json:"number"`
	Status           string             `json:"status"`
	CustomerID       uuid.UUID          `json:"customer_id"`
	VehicleID        *uuid.UUID         `json:"vehicle_id,omitempty"`
	WorkOrderID      *uuid.UUID         `json:"work_order_id,omitempty"`
	LineSource       string             `json:"line_source"`
	Notes            string             `json:"notes"`
	Currency         string             `json:"currency"`
	Items            []LineItemResponse `json:"items"`
	ItemCount        int                `json:"item_count"`
	Totals           TotalsResponse     `json:"totals"`
	DueDate          *time.Time         `json:"due_date,omitempty"`
	SentAt           *time.Time         `json:"sent_at,omitempty"`
	PaidDate         *time.Time         `json:"paid_date,omitempty"`
	PaymentMethod    string             `json:"payment_method,omitempty"`
	PaymentReference string             `json:"payment_reference,omitempty"`
	PaymentNotes     string             `json:"payment_notes,omitempty"`
	CancelledAt      *time.Time         `json:"cancelled_at,omitempty"`
	Version          int                `json:"version"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// ToInvoiceResponse converts an invoice to its API representation
func ToInvoiceResponse(i *document.Invoice) InvoiceResponse {
	items := make([]LineItemResponse, len(i.Items))
	for idx := range i.Items {
		items[idx] = toLineItemResponse(i.Items[idx].LineItem)
	}
	return InvoiceResponse{
		ID:               i.ID,
		OrgID:            i.OrgID,
		Number:           i.Number,
		Status:           i.Status.String(),
		CustomerID:       i.CustomerID,
		VehicleID:        i.VehicleID,
		WorkOrderID:      i.WorkOrderID,
		LineSource:       string(i.LineSource),
		Notes:            i.Notes,
		Currency:         string(i.Currency),
		Items:            items,
		ItemCount:        i.ItemCount(),
		Totals:           toTotalsResponse(i.Totals),
		DueDate:          i.DueDate,
		SentAt:           i.SentAt,
		PaidDate:         i.PaidDate,
		PaymentMethod:    i.PaymentMethod,
		PaymentReference: i.PaymentReference,
		PaymentNotes:     i.PaymentNotes,
		CancelledAt:      i.CancelledAt,
		Version:          i.GetVersion(),
		CreatedAt:        i.CreatedAt,
		UpdatedAt:        i.UpdatedAt,
	}
}

// ==================== Conversion DTOs ====================

// ConvertQuotationRequest converts an approved quotation into a work order
type ConvertQuotationRequest struct {
	Version int `json:"version" binding:"required,min=1"`
}

// ConvertWorkOrderRequest converts a completed work order into an invoice.
// LineSource selects the strategy: service_lines (default when the order has
// them) or order_items.
type ConvertWorkOrderRequest struct {
	LineSource *string    `json:"line_source" binding:"omitempty,oneof=service_lines order_items"`
	DueDate    *time.Time `json:"due_date"`
	Version    int        `json:"version" binding:"required,min=1"`
}

// ==================== Metrics DTOs ====================

// QuotationMetricsResponse summarizes quotation volume and conversion
type QuotationMetricsResponse struct {
	Total          int64            `json:"total"`
	ByStatus       map[string]int64 `json:"by_status"`
	ApprovalRate   decimal.Decimal  `json:"approval_rate"`
	ConversionRate decimal.Decimal  `json:"conversion_rate"`
}

// InvoiceMetricsResponse summarizes invoice volume and collection
type InvoiceMetricsResponse struct {
	Total             int64             `json:"total"`
	ByStatus          map[string]int64  `json:"by_status"`
	PaidAmount        valueobject.Money `json:"paid_amount"`
	OutstandingAmount valueobject.Money `json:"outstanding_amount"`
	OverdueAmount     valueobject.Money `json:"overdue_amount"`
	CollectionRate    decimal.Decimal   `json:"collection_rate"`
}

// WorkOrderMetricsResponse summarizes the repair pipeline
type WorkOrderMetricsResponse struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}
