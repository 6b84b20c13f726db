package document

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/workshop/backend/internal/domain/shared"
	"github.com/workshop/backend/internal/domain/shared/valueobject"
)

// QuotationStatus represents the stored status of a quotation
type QuotationStatus string

const (
	QuotationStatusDraft     QuotationStatus = "draft"
	QuotationStatusSent      QuotationStatus = "sent"
	QuotationStatusApproved  QuotationStatus = "approved"
	QuotationStatusRejected  QuotationStatus = "rejected"
	QuotationStatusConverted QuotationStatus = "converted"
	QuotationStatusCancelled QuotationStatus = "cancelled"

	// QuotationStatusExpired is a derived display state, never stored: a sent
	// quotation whose valid_until date has passed is presented as expired
	// without mutating the stored status.
	QuotationStatusExpired QuotationStatus = "expired"
)

// IsValid checks if the status is a valid stored QuotationStatus
func (s QuotationStatus) IsValid() bool {
	switch s {
	case QuotationStatusDraft, QuotationStatusSent, QuotationStatusApproved,
		QuotationStatusRejected, QuotationStatusConverted, QuotationStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of QuotationStatus
func (s QuotationStatus) String() string {
	return string(s)
}

// IsTerminal reports states where the sales flow has ended. Of these only
// rejected still accepts a transition, to cancelled, for bookkeeping.
func (s QuotationStatus) IsTerminal() bool {
	switch s {
	case QuotationStatusConverted, QuotationStatusCancelled, QuotationStatusRejected:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s QuotationStatus) CanTransitionTo(target QuotationStatus) bool {
	if target == QuotationStatusCancelled {
		return s != QuotationStatusConverted && s != QuotationStatusCancelled
	}
	if s.IsTerminal() {
		return false
	}
	switch s {
	case QuotationStatusDraft:
		return target == QuotationStatusSent
	case QuotationStatusSent:
		return target == QuotationStatusApproved || target == QuotationStatusRejected
	case QuotationStatusApproved:
		return target == QuotationStatusConverted
	}
	return false
}

// Quotation is a priced offer to a customer, the first document in the
// quotation -> work order -> invoice chain.
type Quotation struct {
	shared.OrgAggregateRoot
	Number           string               `gorm:"size:20;not null"`
	Status           QuotationStatus      `gorm:"size:20;not null"`
	CustomerID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	VehicleID        *uuid.UUID           `gorm:"type:uuid;index"`
	Description      string               `gorm:"size:1000"`
	Currency         valueobject.Currency `gorm:"size:3;not null;default:MXN"`
	Items            []QuotationItem      `gorm:"foreignKey:QuotationID"`
	Totals           Totals               `gorm:"embedded"`
	ValidUntil       *time.Time
	RejectReason     string     `gorm:"size:500"`
	ConvertedToOrder bool       `gorm:"not null;default:false"`
	OrderID          *uuid.UUID `gorm:"type:uuid"`
	SentAt           *time.Time
	ApprovedAt       *time.Time
	RejectedAt       *time.Time
	CancelledAt      *time.Time
}

// TableName returns the database table name
func (Quotation) TableName() string {
	return "quotations"
}

// NewQuotation creates a new quotation in draft
func NewQuotation(orgID uuid.UUID, number string, customerID uuid.UUID) (*Quotation, error) {
	if !NumberPattern.MatchString(number) {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Quotation number has an invalid format")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	return &Quotation{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Number:           number,
		Status:           QuotationStatusDraft,
		CustomerID:       customerID,
		Currency:         valueobject.DefaultCurrency,
		Items:            make([]QuotationItem, 0),
	}, nil
}

// CanModify returns true while fields and lines are still mutable
func (q *Quotation) CanModify() bool {
	return q.Status == QuotationStatusDraft
}

func (q *Quotation) guardModify() error {
	if !q.CanModify() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Quotation in %s status cannot be modified", q.Status))
	}
	return nil
}

// UpdateDetails edits core fields, only allowed in draft
func (q *Quotation) UpdateDetails(description *string, vehicleID *uuid.UUID, validUntil *time.Time) error {
	if err := q.guardModify(); err != nil {
		return err
	}
	if description != nil {
		q.Description = *description
	}
	if vehicleID != nil {
		q.VehicleID = vehicleID
	}
	if validUntil != nil {
		q.ValidUntil = validUntil
	}
	q.UpdatedAt = time.Now()
	return nil
}

// AddItem adds a new line, only allowed in draft
func (q *Quotation) AddItem(input LineItemInput) (*QuotationItem, error) {
	if err := q.guardModify(); err != nil {
		return nil, err
	}
	line, err := newLineItem(input)
	if err != nil {
		return nil, err
	}
	q.Items = append(q.Items, QuotationItem{LineItem: line, QuotationID: q.ID})
	q.recalculateTotals()
	q.UpdatedAt = time.Now()
	return &q.Items[len(q.Items)-1], nil
}

// UpdateItem edits an existing line, only allowed in draft
func (q *Quotation) UpdateItem(itemID uuid.UUID, update LineItemUpdate) error {
	if err := q.guardModify(); err != nil {
		return err
	}
	for idx := range q.Items {
		if q.Items[idx].ID == itemID {
			if err := q.Items[idx].apply(update); err != nil {
				return err
			}
			q.recalculateTotals()
			q.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Quotation item not found")
}

// RemoveItem deletes a line, only allowed in draft
func (q *Quotation) RemoveItem(itemID uuid.UUID) error {
	if err := q.guardModify(); err != nil {
		return err
	}
	for idx := range q.Items {
		if q.Items[idx].ID == itemID {
			q.Items = append(q.Items[:idx], q.Items[idx+1:]...)
			q.recalculateTotals()
			q.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Quotation item not found")
}

// GetItem returns a line by its ID
func (q *Quotation) GetItem(itemID uuid.UUID) *QuotationItem {
	for idx := range q.Items {
		if q.Items[idx].ID == itemID {
			return &q.Items[idx]
		}
	}
	return nil
}

// Send transitions draft -> sent. Requires at least one line.
func (q *Quotation) Send() error {
	if !q.Status.CanTransitionTo(QuotationStatusSent) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot send quotation in %s status", q.Status))
	}
	if len(q.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot send a quotation without items")
	}

	now := time.Now()
	q.Status = QuotationStatusSent
	q.SentAt = &now
	q.UpdatedAt = now
	return nil
}

// Approve transitions sent -> approved. An approval arriving after the
// valid_until date is a domain decision: it is refused unless the caller
// explicitly allows approving an expired quotation.
func (q *Quotation) Approve(now time.Time, allowExpired bool) error {
	if !q.Status.CanTransitionTo(QuotationStatusApproved) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot approve quotation in %s status", q.Status))
	}
	if q.IsExpired(now) && !allowExpired {
		return shared.NewDomainError("INVALID_STATE", "Quotation validity has lapsed")
	}

	q.Status = QuotationStatusApproved
	q.ApprovedAt = &now
	q.UpdatedAt = now
	return nil
}

// Reject transitions sent -> rejected with a mandatory reason
func (q *Quotation) Reject(reason string) error {
	if !q.Status.CanTransitionTo(QuotationStatusRejected) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot reject quotation in %s status", q.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Reject reason is required")
	}

	now := time.Now()
	q.Status = QuotationStatusRejected
	q.RejectReason = reason
	q.RejectedAt = &now
	q.UpdatedAt = now
	return nil
}

// MarkConverted records the one-way conversion into a work order. The flag is
// never cleared and a second conversion attempt fails.
func (q *Quotation) MarkConverted(orderID uuid.UUID) error {
	if q.ConvertedToOrder {
		return shared.ErrAlreadyConverted
	}
	if !q.Status.CanTransitionTo(QuotationStatusConverted) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot convert quotation in %s status", q.Status))
	}
	if orderID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Work order ID cannot be empty")
	}

	q.Status = QuotationStatusConverted
	q.ConvertedToOrder = true
	q.OrderID = &orderID
	q.UpdatedAt = time.Now()
	return nil
}

// Cancel is permitted from any state except converted and is irreversible
func (q *Quotation) Cancel() error {
	if !q.Status.CanTransitionTo(QuotationStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel quotation in %s status", q.Status))
	}

	now := time.Now()
	q.Status = QuotationStatusCancelled
	q.CancelledAt = &now
	q.UpdatedAt = now
	return nil
}

// IsExpired reports whether a still-sent quotation is past its validity date.
// Expiry is computed at read time and never persisted.
func (q *Quotation) IsExpired(now time.Time) bool {
	return q.Status == QuotationStatusSent && q.ValidUntil != nil && now.After(*q.ValidUntil)
}

// DisplayStatus returns the status to present to callers, substituting the
// derived expired state where it applies.
func (q *Quotation) DisplayStatus(now time.Time) QuotationStatus {
	if q.IsExpired(now) {
		return QuotationStatusExpired
	}
	return q.Status
}

// recalculateTotals re-derives the totals block from the line items
func (q *Quotation) recalculateTotals() {
	charges := make([]LineCharges, len(q.Items))
	for idx := range q.Items {
		charges[idx] = q.Items[idx].charges()
	}
	q.Totals = TotalsFromCharges(SumCharges(charges))
}

// ItemCount returns the number of lines
func (q *Quotation) ItemCount() int {
	return len(q.Items)
}
