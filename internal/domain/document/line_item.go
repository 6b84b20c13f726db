package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/workshop/backend/internal/domain/shared"
)

// LineItem is the shared shape of one priced row on a document. It references
// either a catalog service or a catalog product (never both) or neither for a
// free-text line. The derived columns always equal the calculator output for
// the line's own quantity/price/discount/tax.
type LineItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ServiceID       *uuid.UUID      `gorm:"type:uuid;index"`
	ProductID       *uuid.UUID      `gorm:"type:uuid;index"`
	Description     string          `gorm:"size:500;not null"`
	Quantity        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	UnitPrice       decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	DiscountPercent decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	TaxPercent      decimal.Decimal `gorm:"type:numeric(5,2);not null;default:16"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	DiscountAmount  decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	TaxAmount       decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Total           decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LineItemInput carries the caller-controlled fields of a line
type LineItemInput struct {
	ServiceID       *uuid.UUID
	ProductID       *uuid.UUID
	Description     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	TaxPercent      decimal.Decimal
}

// newLineItem validates the input, runs the calculator and returns a fully
// derived line.
func newLineItem(input LineItemInput) (LineItem, error) {
	if input.ServiceID != nil && input.ProductID != nil {
		return LineItem{}, shared.NewDomainError("INVALID_REFERENCE", "A line references a service or a product, not both")
	}
	if input.ServiceID == nil && input.ProductID == nil && input.Description == "" {
		return LineItem{}, shared.NewDomainError("INVALID_DESCRIPTION", "A free-text line requires a description")
	}

	charges, err := CalculateLine(input.Quantity, input.UnitPrice, input.DiscountPercent, input.TaxPercent)
	if err != nil {
		return LineItem{}, err
	}

	now := time.Now()
	return LineItem{
		ID:              uuid.New(),
		ServiceID:       input.ServiceID,
		ProductID:       input.ProductID,
		Description:     input.Description,
		Quantity:        input.Quantity,
		UnitPrice:       input.UnitPrice,
		DiscountPercent: input.DiscountPercent,
		TaxPercent:      input.TaxPercent,
		Subtotal:        charges.Subtotal,
		DiscountAmount:  charges.DiscountAmount,
		TaxAmount:       charges.TaxAmount,
		Total:           charges.Total,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// LineItemUpdate carries optional new values for an existing line
type LineItemUpdate struct {
	Description     *string
	Quantity        *decimal.Decimal
	UnitPrice       *decimal.Decimal
	DiscountPercent *decimal.Decimal
	TaxPercent      *decimal.Decimal
}

// apply mutates the line with the provided values and re-derives the charges
func (l *LineItem) apply(update LineItemUpdate) error {
	quantity := l.Quantity
	unitPrice := l.UnitPrice
	discountPercent := l.DiscountPercent
	taxPercent := l.TaxPercent

	if update.Quantity != nil {
		quantity = *update.Quantity
	}
	if update.UnitPrice != nil {
		unitPrice = *update.UnitPrice
	}
	if update.DiscountPercent != nil {
		discountPercent = *update.DiscountPercent
	}
	if update.TaxPercent != nil {
		taxPercent = *update.TaxPercent
	}

	charges, err := CalculateLine(quantity, unitPrice, discountPercent, taxPercent)
	if err != nil {
		return err
	}

	if update.Description != nil {
		l.Description = *update.Description
	}
	l.Quantity = quantity
	l.UnitPrice = unitPrice
	l.DiscountPercent = discountPercent
	l.TaxPercent = taxPercent
	l.Subtotal = charges.Subtotal
	l.DiscountAmount = charges.DiscountAmount
	l.TaxAmount = charges.TaxAmount
	l.Total = charges.Total
	l.UpdatedAt = time.Now()
	return nil
}

// charges returns the line's derived fields as LineCharges
func (l *LineItem) charges() LineCharges {
	return LineCharges{
		Subtotal:       l.Subtotal,
		DiscountAmount: l.DiscountAmount,
		TaxAmount:      l.TaxAmount,
		Total:          l.Total,
	}
}

// input returns the caller-controlled fields, used when copying lines between
// documents so the receiving document re-derives charges instead of trusting
// the stored values.
func (l *LineItem) input() LineItemInput {
	return LineItemInput{
		ServiceID:       l.ServiceID,
		ProductID:       l.ProductID,
		Description:     l.Description,
		Quantity:        l.Quantity,
		UnitPrice:       l.UnitPrice,
		DiscountPercent: l.DiscountPercent,
		TaxPercent:      l.TaxPercent,
	}
}

// QuotationItem is a line item belonging to a quotation
type QuotationItem struct {
	LineItem    `gorm:"embedded"`
	QuotationID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the database table name
func (QuotationItem) TableName() string {
	return "quotation_items"
}

// WorkOrderItem is a line item belonging to a work order
type WorkOrderItem struct {
	LineItem    `gorm:"embedded"`
	WorkOrderID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the database table name
func (WorkOrderItem) TableName() string {
	return "work_order_items"
}

// InvoiceItem is a line item belonging to an invoice
type InvoiceItem struct {
	LineItem  `gorm:"embedded"`
	InvoiceID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the database table name
func (InvoiceItem) TableName() string {
	return "invoice_items"
}
