package document

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/workshop/backend/internal/domain/shared"
	"github.com/workshop/backend/internal/domain/shared/valueobject"
)

// WorkOrderStatus represents the status of a work order in the repair pipeline
type WorkOrderStatus string

const (
	WorkOrderStatusPending      WorkOrderStatus = "pending"
	WorkOrderStatusInProgress   WorkOrderStatus = "in_progress"
	WorkOrderStatusDiagnosed    WorkOrderStatus = "diagnosed"
	WorkOrderStatusApproved     WorkOrderStatus = "approved"
	WorkOrderStatusInRepair     WorkOrderStatus = "in_repair"
	WorkOrderStatusWaitingParts WorkOrderStatus = "waiting_parts"
	WorkOrderStatusCompleted    WorkOrderStatus = "completed"
	WorkOrderStatusDelivered    WorkOrderStatus = "delivered"
)

// workOrderPipeline is the main linear progression used by Advance/Revert.
// waiting_parts is a lateral branch off in_repair, reached by SetStatus or
// WaitForParts and left by Advance (back to in_repair).
var workOrderPipeline = []WorkOrderStatus{
	WorkOrderStatusPending,
	WorkOrderStatusInProgress,
	WorkOrderStatusDiagnosed,
	WorkOrderStatusApproved,
	WorkOrderStatusInRepair,
	WorkOrderStatusCompleted,
	WorkOrderStatusDelivered,
}

// IsValid checks if the status is a valid WorkOrderStatus
func (s WorkOrderStatus) IsValid() bool {
	if s == WorkOrderStatusWaitingParts {
		return true
	}
	for _, stage := range workOrderPipeline {
		if s == stage {
			return true
		}
	}
	return false
}

// String returns the string representation of WorkOrderStatus
func (s WorkOrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for delivered, the only terminal state
func (s WorkOrderStatus) IsTerminal() bool {
	return s == WorkOrderStatusDelivered
}

// pipelineIndex returns the position of a status on the main line, or -1
func (s WorkOrderStatus) pipelineIndex() int {
	for idx, stage := range workOrderPipeline {
		if s == stage {
			return idx
		}
	}
	return -1
}

// ServiceLine is a technician-entered work record on a work order. Unlike
// calculator-derived line items its Total is stored as entered and trusted
// when the order is invoiced from service lines.
type ServiceLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	WorkOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"size:500;not null"`
	Quantity    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Total       decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Notes       string          `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the database table name
func (ServiceLine) TableName() string {
	return "service_lines"
}

// NewServiceLine validates and creates a service line
func NewServiceLine(workOrderID uuid.UUID, description string, quantity, unitPrice, total decimal.Decimal, notes string) (*ServiceLine, error) {
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Service line description is required")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TOTAL", "Total cannot be negative")
	}

	now := time.Now()
	return &ServiceLine{
		ID:          uuid.New(),
		WorkOrderID: workOrderID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Total:       total,
		Notes:       notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// WorkOrder is a committed unit of work tracked from reception to delivery.
// It is created either directly (walk-in reception) or by converting an
// approved quotation.
type WorkOrder struct {
	shared.OrgAggregateRoot
	Number       string               `gorm:"size:20;not null"`
	Status       WorkOrderStatus      `gorm:"size:20;not null"`
	CustomerID   uuid.UUID            `gorm:"type:uuid;not null;index"`
	VehicleID    *uuid.UUID           `gorm:"type:uuid;index"`
	Description  string               `gorm:"size:1000"`
	Currency     valueobject.Currency `gorm:"size:3;not null;default:MXN"`
	QuotationID  *uuid.UUID           `gorm:"type:uuid;index"`
	Items        []WorkOrderItem      `gorm:"foreignKey:WorkOrderID"`
	ServiceLines []ServiceLine        `gorm:"foreignKey:WorkOrderID"`
	Totals       Totals               `gorm:"embedded"`
	CompletedAt  *time.Time
	DeliveredAt  *time.Time
}

// TableName returns the database table name
func (WorkOrder) TableName() string {
	return "work_orders"
}

// NewWorkOrder creates a new work order in pending (reception)
func NewWorkOrder(orgID uuid.UUID, number string, customerID uuid.UUID) (*WorkOrder, error) {
	if !NumberPattern.MatchString(number) {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Work order number has an invalid format")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	return &WorkOrder{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Number:           number,
		Status:           WorkOrderStatusPending,
		CustomerID:       customerID,
		Currency:         valueobject.DefaultCurrency,
		Items:            make([]WorkOrderItem, 0),
		ServiceLines:     make([]ServiceLine, 0),
	}, nil
}

// CanModify returns true until the order is delivered
func (w *WorkOrder) CanModify() bool {
	return !w.Status.IsTerminal()
}

func (w *WorkOrder) guardModify() error {
	if !w.CanModify() {
		return shared.NewDomainError("INVALID_STATE", "A delivered work order cannot be modified")
	}
	return nil
}

// UpdateDetails edits core fields while the order is not delivered
func (w *WorkOrder) UpdateDetails(description *string, vehicleID *uuid.UUID) error {
	if err := w.guardModify(); err != nil {
		return err
	}
	if description != nil {
		w.Description = *description
	}
	if vehicleID != nil {
		w.VehicleID = vehicleID
	}
	w.UpdatedAt = time.Now()
	return nil
}

// AddItem adds a new line item
func (w *WorkOrder) AddItem(input LineItemInput) (*WorkOrderItem, error) {
	if err := w.guardModify(); err != nil {
		return nil, err
	}
	line, err := newLineItem(input)
	if err != nil {
		return nil, err
	}
	w.Items = append(w.Items, WorkOrderItem{LineItem: line, WorkOrderID: w.ID})
	w.recalculateTotals()
	w.UpdatedAt = time.Now()
	return &w.Items[len(w.Items)-1], nil
}

// UpdateItem edits an existing line item
func (w *WorkOrder) UpdateItem(itemID uuid.UUID, update LineItemUpdate) error {
	if err := w.guardModify(); err != nil {
		return err
	}
	for idx := range w.Items {
		if w.Items[idx].ID == itemID {
			if err := w.Items[idx].apply(update); err != nil {
				return err
			}
			w.recalculateTotals()
			w.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Work order item not found")
}

// RemoveItem deletes a line item
func (w *WorkOrder) RemoveItem(itemID uuid.UUID) error {
	if err := w.guardModify(); err != nil {
		return err
	}
	for idx := range w.Items {
		if w.Items[idx].ID == itemID {
			w.Items = append(w.Items[:idx], w.Items[idx+1:]...)
			w.recalculateTotals()
			w.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Work order item not found")
}

// GetItem returns a line item by its ID
func (w *WorkOrder) GetItem(itemID uuid.UUID) *WorkOrderItem {
	for idx := range w.Items {
		if w.Items[idx].ID == itemID {
			return &w.Items[idx]
		}
	}
	return nil
}

// AddServiceLine records technician work against the order
func (w *WorkOrder) AddServiceLine(description string, quantity, unitPrice, total decimal.Decimal, notes string) (*ServiceLine, error) {
	if err := w.guardModify(); err != nil {
		return nil, err
	}
	line, err := NewServiceLine(w.ID, description, quantity, unitPrice, total, notes)
	if err != nil {
		return nil, err
	}
	w.ServiceLines = append(w.ServiceLines, *line)
	w.UpdatedAt = time.Now()
	return &w.ServiceLines[len(w.ServiceLines)-1], nil
}

// UpdateServiceLine replaces an existing service line's fields
func (w *WorkOrder) UpdateServiceLine(lineID uuid.UUID, description string, quantity, unitPrice, total decimal.Decimal, notes string) error {
	if err := w.guardModify(); err != nil {
		return err
	}
	for idx := range w.ServiceLines {
		if w.ServiceLines[idx].ID == lineID {
			replacement, err := NewServiceLine(w.ID, description, quantity, unitPrice, total, notes)
			if err != nil {
				return err
			}
			w.ServiceLines[idx].Description = replacement.Description
			w.ServiceLines[idx].Quantity = replacement.Quantity
			w.ServiceLines[idx].UnitPrice = replacement.UnitPrice
			w.ServiceLines[idx].Total = replacement.Total
			w.ServiceLines[idx].Notes = replacement.Notes
			w.ServiceLines[idx].UpdatedAt = time.Now()
			w.UpdatedAt = w.ServiceLines[idx].UpdatedAt
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Service line not found")
}

// RemoveServiceLine deletes a service line
func (w *WorkOrder) RemoveServiceLine(lineID uuid.UUID) error {
	if err := w.guardModify(); err != nil {
		return err
	}
	for idx := range w.ServiceLines {
		if w.ServiceLines[idx].ID == lineID {
			w.ServiceLines = append(w.ServiceLines[:idx], w.ServiceLines[idx+1:]...)
			w.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Service line not found")
}

// HasServiceLines reports whether structured service lines exist
func (w *WorkOrder) HasServiceLines() bool {
	return len(w.ServiceLines) > 0
}

// Advance moves the order one step forward on the pipeline. From
// waiting_parts it returns to in_repair.
func (w *WorkOrder) Advance() error {
	if w.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "A delivered work order cannot change status")
	}
	if w.Status == WorkOrderStatusWaitingParts {
		return w.setStatus(WorkOrderStatusInRepair)
	}
	idx := w.Status.pipelineIndex()
	if idx < 0 || idx == len(workOrderPipeline)-1 {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot advance work order from %s", w.Status))
	}
	return w.setStatus(workOrderPipeline[idx+1])
}

// Revert moves the order one step backward on the pipeline. From
// waiting_parts it returns to in_repair.
func (w *WorkOrder) Revert() error {
	if w.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "A delivered work order cannot change status")
	}
	if w.Status == WorkOrderStatusWaitingParts {
		return w.setStatus(WorkOrderStatusInRepair)
	}
	idx := w.Status.pipelineIndex()
	if idx <= 0 {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot revert work order from %s", w.Status))
	}
	return w.setStatus(workOrderPipeline[idx-1])
}

// WaitForParts parks an in-repair order until parts arrive
func (w *WorkOrder) WaitForParts() error {
	if w.Status != WorkOrderStatusInRepair {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot wait for parts from %s", w.Status))
	}
	return w.setStatus(WorkOrderStatusWaitingParts)
}

// SetStatus jumps directly to any status (kanban drag). The only protection
// is the delivered terminal state.
func (w *WorkOrder) SetStatus(target WorkOrderStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown work order status %q", target))
	}
	if w.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "A delivered work order cannot change status")
	}
	return w.setStatus(target)
}

// setStatus applies the transition and maintains the stage timestamps:
// entering completed stamps CompletedAt, leaving it clears the stamp.
func (w *WorkOrder) setStatus(target WorkOrderStatus) error {
	now := time.Now()
	if target == WorkOrderStatusCompleted && w.Status != WorkOrderStatusCompleted {
		w.CompletedAt = &now
	}
	if w.Status == WorkOrderStatusCompleted && target != WorkOrderStatusCompleted && target != WorkOrderStatusDelivered {
		w.CompletedAt = nil
	}
	if target == WorkOrderStatusDelivered {
		w.DeliveredAt = &now
	}
	w.Status = target
	w.UpdatedAt = now
	return nil
}

// IsCompleted returns true if the order is in completed status
func (w *WorkOrder) IsCompleted() bool {
	return w.Status == WorkOrderStatusCompleted
}

// recalculateTotals re-derives the totals block from the line items
func (w *WorkOrder) recalculateTotals() {
	charges := make([]LineCharges, len(w.Items))
	for idx := range w.Items {
		charges[idx] = w.Items[idx].charges()
	}
	w.Totals = TotalsFromCharges(SumCharges(charges))
}

// ItemCount returns the number of line items
func (w *WorkOrder) ItemCount() int {
	return len(w.Items)
}
