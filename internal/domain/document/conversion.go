package document

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/workshop/backend/internal/domain/shared"
)

// BuildWorkOrderFromQuotation materializes a pending work order from an
// approved quotation. Customer, vehicle and description context carry over;
// every line is re-derived through the calculator instead of trusting the
// quotation's stored fields. The caller assigns the WO number, marks the
// quotation converted and persists both inside one transaction.
func BuildWorkOrderFromQuotation(q *Quotation, number string) (*WorkOrder, error) {
	if q.ConvertedToOrder {
		return nil, shared.ErrAlreadyConverted
	}
	if q.Status != QuotationStatusApproved {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot convert quotation in %s status", q.Status))
	}

	order, err := NewWorkOrder(q.OrgID, number, q.CustomerID)
	if err != nil {
		return nil, err
	}
	order.QuotationID = &q.ID
	order.VehicleID = q.VehicleID
	order.Description = q.Description
	order.Currency = q.Currency

	for idx := range q.Items {
		if _, err := order.AddItem(q.Items[idx].input()); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// ResolveLineSource picks the line-sourcing strategy for a work order to
// invoice conversion. An explicit request wins; otherwise service lines are
// authoritative when they exist, else the order items. The choice is made
// once and recorded on the invoice, never mixed.
func ResolveLineSource(w *WorkOrder, requested *LineSource) (LineSource, error) {
	if requested != nil {
		if !requested.IsValid() || *requested == LineSourceManual {
			return "", shared.NewDomainError("INVALID_LINE_SOURCE",
				fmt.Sprintf("Unknown line source %q", *requested))
		}
		return *requested, nil
	}
	if w.HasServiceLines() {
		return LineSourceServiceLines, nil
	}
	return LineSourceOrderItems, nil
}

// BuildInvoiceFromWorkOrder materializes a draft invoice from a completed
// work order using the given line source.
//
// The service-lines strategy bills each technician-entered total verbatim:
// the recorded amount already covers labor and tax as agreed, so the line is
// a single unit at that price with no further tax applied. The order-items
// strategy copies the quantity/price/discount/tax inputs and re-runs the
// calculator.
func BuildInvoiceFromWorkOrder(w *WorkOrder, number string, source LineSource) (*Invoice, error) {
	if !w.IsCompleted() {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot invoice work order in %s status", w.Status))
	}

	invoice, err := NewInvoice(w.OrgID, number, w.CustomerID, source)
	if err != nil {
		return nil, err
	}
	invoice.WorkOrderID = &w.ID
	invoice.VehicleID = w.VehicleID
	invoice.Currency = w.Currency

	switch source {
	case LineSourceServiceLines:
		if !w.HasServiceLines() {
			return nil, shared.NewDomainError("NO_ITEMS", "Work order has no service lines to invoice")
		}
		one := decimal.NewFromInt(1)
		for idx := range w.ServiceLines {
			line := &w.ServiceLines[idx]
			_, err := invoice.AddItem(LineItemInput{
				Description: line.Description,
				Quantity:    one,
				UnitPrice:   line.Total,
			})
			if err != nil {
				return nil, err
			}
		}
	case LineSourceOrderItems:
		if len(w.Items) == 0 {
			return nil, shared.NewDomainError("NO_ITEMS", "Work order has no items to invoice")
		}
		for idx := range w.Items {
			if _, err := invoice.AddItem(w.Items[idx].input()); err != nil {
				return nil, err
			}
		}
	default:
		return nil, shared.NewDomainError("INVALID_LINE_SOURCE",
			fmt.Sprintf("Unknown line source %q", source))
	}

	return invoice, nil
}
