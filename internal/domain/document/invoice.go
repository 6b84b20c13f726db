package document

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/workshop/backend/internal/domain/shared"
	"github.com/workshop/backend/internal/domain/shared/valueobject"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusOverdue,
		InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true for paid and cancelled
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status.
// overdue is sent with a lapsed due date; it keeps the same outgoing edges.
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	if target == InvoiceStatusCancelled {
		return !s.IsTerminal()
	}
	switch s {
	case InvoiceStatusDraft:
		return target == InvoiceStatusSent
	case InvoiceStatusSent:
		return target == InvoiceStatusPaid || target == InvoiceStatusOverdue
	case InvoiceStatusOverdue:
		return target == InvoiceStatusPaid
	}
	return false
}

// LineSource records which strategy produced an invoice's lines, kept for
// auditability because the two conversion sources derive amounts differently.
type LineSource string

const (
	LineSourceServiceLines LineSource = "service_lines"
	LineSourceOrderItems   LineSource = "order_items"
	LineSourceManual       LineSource = "manual"
)

// IsValid checks if the line source is known
func (s LineSource) IsValid() bool {
	switch s {
	case LineSourceServiceLines, LineSourceOrderItems, LineSourceManual:
		return true
	}
	return false
}

// Invoice bills completed work and tracks a payment lifecycle. At most one
// invoice ever references a given work order.
type Invoice struct {
	shared.OrgAggregateRoot
	Number           string               `gorm:"size:20;not null"`
	Status           InvoiceStatus        `gorm:"size:20;not null"`
	CustomerID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	VehicleID        *uuid.UUID           `gorm:"type:uuid;index"`
	WorkOrderID      *uuid.UUID           `gorm:"type:uuid;uniqueIndex"`
	LineSource       LineSource           `gorm:"size:20;not null;default:manual"`
	Notes            string               `gorm:"size:1000"`
	Currency         valueobject.Currency `gorm:"size:3;not null;default:MXN"`
	Items            []InvoiceItem        `gorm:"foreignKey:InvoiceID"`
	Totals           Totals               `gorm:"embedded"`
	DueDate          *time.Time
	SentAt           *time.Time
	PaidDate         *time.Time
	PaymentMethod    string `gorm:"size:50"`
	PaymentReference string `gorm:"size:100"`
	PaymentNotes     string `gorm:"size:500"`
	CancelledAt      *time.Time
}

// TableName returns the database table name
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a new invoice in draft
func NewInvoice(orgID uuid.UUID, number string, customerID uuid.UUID, source LineSource) (*Invoice, error) {
	if !NumberPattern.MatchString(number) {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number has an invalid format")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !source.IsValid() {
		return nil, shared.NewDomainError("INVALID_LINE_SOURCE", fmt.Sprintf("Unknown line source %q", source))
	}

	return &Invoice{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Number:           number,
		Status:           InvoiceStatusDraft,
		CustomerID:       customerID,
		LineSource:       source,
		Currency:         valueobject.DefaultCurrency,
		Items:            make([]InvoiceItem, 0),
	}, nil
}

// CanModify returns true while fields and lines are still mutable
func (i *Invoice) CanModify() bool {
	return i.Status == InvoiceStatusDraft
}

func (i *Invoice) guardModify() error {
	if !i.CanModify() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Invoice in %s status cannot be modified", i.Status))
	}
	return nil
}

// UpdateDetails edits core fields, only allowed in draft
func (i *Invoice) UpdateDetails(notes *string, vehicleID *uuid.UUID, dueDate *time.Time) error {
	if err := i.guardModify(); err != nil {
		return err
	}
	if notes != nil {
		i.Notes = *notes
	}
	if vehicleID != nil {
		i.VehicleID = vehicleID
	}
	if dueDate != nil {
		i.DueDate = dueDate
	}
	i.UpdatedAt = time.Now()
	return nil
}

// AddItem adds a new line, only allowed in draft
func (i *Invoice) AddItem(input LineItemInput) (*InvoiceItem, error) {
	if err := i.guardModify(); err != nil {
		return nil, err
	}
	line, err := newLineItem(input)
	if err != nil {
		return nil, err
	}
	i.Items = append(i.Items, InvoiceItem{LineItem: line, InvoiceID: i.ID})
	i.recalculateTotals()
	i.UpdatedAt = time.Now()
	return &i.Items[len(i.Items)-1], nil
}

// UpdateItem edits an existing line, only allowed in draft
func (i *Invoice) UpdateItem(itemID uuid.UUID, update LineItemUpdate) error {
	if err := i.guardModify(); err != nil {
		return err
	}
	for idx := range i.Items {
		if i.Items[idx].ID == itemID {
			if err := i.Items[idx].apply(update); err != nil {
				return err
			}
			i.recalculateTotals()
			i.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Invoice item not found")
}

// RemoveItem deletes a line, only allowed in draft
func (i *Invoice) RemoveItem(itemID uuid.UUID) error {
	if err := i.guardModify(); err != nil {
		return err
	}
	for idx := range i.Items {
		if i.Items[idx].ID == itemID {
			i.Items = append(i.Items[:idx], i.Items[idx+1:]...)
			i.recalculateTotals()
			i.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Invoice item not found")
}

// GetItem returns a line by its ID
func (i *Invoice) GetItem(itemID uuid.UUID) *InvoiceItem {
	for idx := range i.Items {
		if i.Items[idx].ID == itemID {
			return &i.Items[idx]
		}
	}
	return nil
}

// Send transitions draft -> sent and fixes the due date (30 days out when
// the caller does not provide one). Requires at least one line.
func (i *Invoice) Send(dueDate *time.Time) error {
	if !i.Status.CanTransitionTo(InvoiceStatusSent) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot send invoice in %s status", i.Status))
	}
	if len(i.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot send an invoice without items")
	}

	now := time.Now()
	if dueDate != nil {
		i.DueDate = dueDate
	} else if i.DueDate == nil {
		due := now.AddDate(0, 0, 30)
		i.DueDate = &due
	}
	i.Status = InvoiceStatusSent
	i.SentAt = &now
	i.UpdatedAt = now
	return nil
}

// MarkPaid records the single payment event. The payment method is required;
// the payment date defaults to now. Repeating the operation fails.
func (i *Invoice) MarkPaid(method string, paidDate *time.Time, reference, notes string) error {
	if !i.Status.CanTransitionTo(InvoiceStatusPaid) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot mark invoice paid in %s status", i.Status))
	}
	if method == "" {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is required")
	}

	now := time.Now()
	when := now
	if paidDate != nil {
		when = *paidDate
	}
	i.Status = InvoiceStatusPaid
	i.PaidDate = &when
	i.PaymentMethod = method
	i.PaymentReference = reference
	i.PaymentNotes = notes
	i.UpdatedAt = now
	return nil
}

// MarkOverdue applies the time-derived sent -> overdue transition. It is a
// no-op error when the due date has not lapsed; the periodic sweep relies on
// the transition being idempotent.
func (i *Invoice) MarkOverdue(now time.Time) error {
	if i.Status == InvoiceStatusOverdue {
		return nil
	}
	if !i.Status.CanTransitionTo(InvoiceStatusOverdue) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot mark invoice overdue in %s status", i.Status))
	}
	if i.DueDate == nil || !now.After(*i.DueDate) {
		return shared.NewDomainError("INVALID_STATE", "Invoice due date has not lapsed")
	}

	i.Status = InvoiceStatusOverdue
	i.UpdatedAt = now
	return nil
}

// Cancel transitions any non-terminal state to cancelled
func (i *Invoice) Cancel() error {
	if !i.Status.CanTransitionTo(InvoiceStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel invoice in %s status", i.Status))
	}

	now := time.Now()
	i.Status = InvoiceStatusCancelled
	i.CancelledAt = &now
	i.UpdatedAt = now
	return nil
}

// recalculateTotals re-derives the totals block from the line items
func (i *Invoice) recalculateTotals() {
	charges := make([]LineCharges, len(i.Items))
	for idx := range i.Items {
		charges[idx] = i.Items[idx].charges()
	}
	i.Totals = TotalsFromCharges(SumCharges(charges))
}

// ItemCount returns the number of lines
func (i *Invoice) ItemCount() int {
	return len(i.Items)
}
