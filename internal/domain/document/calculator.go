package document

import (
	"github.com/shopspring/decimal"
	"github.com/workshop/backend/internal/domain/shared"
)

var (
	percentFloor   = decimal.Zero
	percentCeiling = decimal.NewFromInt(100)

	// DefaultTaxPercent is the configurable single tax rate applied when a
	// line does not specify one (IVA 16%).
	DefaultTaxPercent = decimal.NewFromInt(16)
)

// LineCharges holds the four derived monetary fields of a line item.
// The fields are never stored independently of a recalculation pass.
type LineCharges struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// CalculateLine computes the charges for a single line.
//
// Tax applies to the discounted base, never to the gross subtotal, for every
// document type. Arithmetic runs at full precision; each derived field is
// rounded to 2 decimals in sequence so that
// total = subtotal - discount_amount + tax_amount holds exactly on the
// rounded values a caller will store and display.
func CalculateLine(quantity, unitPrice, discountPercent, taxPercent decimal.Decimal) (LineCharges, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return LineCharges{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return LineCharges{}, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if discountPercent.LessThan(percentFloor) || discountPercent.GreaterThan(percentCeiling) {
		return LineCharges{}, shared.NewDomainError("INVALID_DISCOUNT", "Discount percent must be between 0 and 100")
	}
	if taxPercent.LessThan(percentFloor) || taxPercent.GreaterThan(percentCeiling) {
		return LineCharges{}, shared.NewDomainError("INVALID_TAX", "Tax percent must be between 0 and 100")
	}

	subtotal := quantity.Mul(unitPrice).Round(2)
	discountAmount := subtotal.Mul(discountPercent).Div(percentCeiling).Round(2)
	taxAmount := subtotal.Sub(discountAmount).Mul(taxPercent).Div(percentCeiling).Round(2)
	total := subtotal.Sub(discountAmount).Add(taxAmount)

	return LineCharges{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxAmount:      taxAmount,
		Total:          total,
	}, nil
}

// SumCharges returns the field-wise sum of the given line charges.
// Line values are already rounded, so the sums are not re-rounded; a document
// total is always exactly the sum its lines visibly display.
func SumCharges(lines []LineCharges) LineCharges {
	totals := LineCharges{
		Subtotal:       decimal.Zero,
		DiscountAmount: decimal.Zero,
		TaxAmount:      decimal.Zero,
		Total:          decimal.Zero,
	}
	for _, line := range lines {
		totals.Subtotal = totals.Subtotal.Add(line.Subtotal)
		totals.DiscountAmount = totals.DiscountAmount.Add(line.DiscountAmount)
		totals.TaxAmount = totals.TaxAmount.Add(line.TaxAmount)
		totals.Total = totals.Total.Add(line.Total)
	}
	return totals
}

// Totals is the computed totals block persisted on every document.
type Totals struct {
	Subtotal       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	Total          decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
}

// TotalsFromCharges converts summed line charges into a totals block
func TotalsFromCharges(c LineCharges) Totals {
	return Totals{
		Subtotal:       c.Subtotal,
		DiscountAmount: c.DiscountAmount,
		TaxAmount:      c.TaxAmount,
		Total:          c.Total,
	}
}
