package document

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/workshop/backend/internal/domain/shared"
)

// ErrDuplicateNumber is returned by Save when the generated document number
// collided with a concurrent insert. Callers retry number generation a
// bounded number of times instead of surfacing the conflict.
var ErrDuplicateNumber = shared.NewDomainError("DUPLICATE_NUMBER", "Document number already exists")

// QuotationRepository defines persistence operations for quotations
type QuotationRepository interface {
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Quotation, error)
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]Quotation, error)
	CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error)
	CountByStatus(ctx context.Context, orgID uuid.UUID, status QuotationStatus) (int64, error)
	// NextNumber computes the next sequential number for the org and the
	// calendar year of now. The read-max-then-insert pair is not atomic;
	// Save reports ErrDuplicateNumber when the unique index catches a race.
	NextNumber(ctx context.Context, orgID uuid.UUID, now time.Time) (string, error)
	Save(ctx context.Context, quotation *Quotation) error
	SaveWithLock(ctx context.Context, quotation *Quotation) error
}

// WorkOrderRepository defines persistence operations for work orders
type WorkOrderRepository interface {
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*WorkOrder, error)
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]WorkOrder, error)
	CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error)
	CountByStatus(ctx context.Context, orgID uuid.UUID, status WorkOrderStatus) (int64, error)
	NextNumber(ctx context.Context, orgID uuid.UUID, now time.Time) (string, error)
	Save(ctx context.Context, order *WorkOrder) error
	SaveWithLock(ctx context.Context, order *WorkOrder) error
}

// InvoiceRepository defines persistence operations for invoices
type InvoiceRepository interface {
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Invoice, error)
	// FindByWorkOrder is the reverse lookup backing conversion exclusivity:
	// at most one invoice references a work order.
	FindByWorkOrder(ctx context.Context, orgID, workOrderID uuid.UUID) (*Invoice, error)
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]Invoice, error)
	CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error)
	CountByStatus(ctx context.Context, orgID uuid.UUID, status InvoiceStatus) (int64, error)
	SumTotalByStatus(ctx context.Context, orgID uuid.UUID, status InvoiceStatus) (decimal.Decimal, error)
	NextNumber(ctx context.Context, orgID uuid.UUID, now time.Time) (string, error)
	Save(ctx context.Context, invoice *Invoice) error
	SaveWithLock(ctx context.Context, invoice *Invoice) error
	// MarkOverdue flips every sent invoice whose due date precedes now to
	// overdue in one pass, returning the number of rows affected.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}
