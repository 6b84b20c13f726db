package document

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/workshop/backend/internal/domain/document"
	"github.com/workshop/backend/internal/domain/shared"
)

// InvoiceService handles invoice business operations
type InvoiceService struct {
	invoiceRepo document.InvoiceRepository
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoiceRepo document.InvoiceRepository) *InvoiceService {
	return &InvoiceService{invoiceRepo: invoiceRepo}
}

// Create creates a manual draft invoice, not tied to a work order
func (s *InvoiceService) Create(ctx context.Context, orgID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	var invoice *document.Invoice
	for attempt := 0; ; attempt++ {
		number, err := s.invoiceRepo.NextNumber(ctx, orgID, time.Now())
		if err != nil {
			return nil, err
		}

		invoice, err = document.NewInvoice(orgID, number, req.CustomerID, document.LineSourceManual)
		if err != nil {
			return nil, err
		}
		if err := invoice.UpdateDetails(strPtr(req.Notes), req.VehicleID, req.DueDate); err != nil {
			return nil, err
		}
		for _, item := range req.Items {
			if _, err := invoice.AddItem(item.domainInput()); err != nil {
				return nil, err
			}
		}

		err = s.invoiceRepo.Save(ctx, invoice)
		if err == nil {
			break
		}
		if errors.Is(err, document.ErrDuplicateNumber) && attempt < numberRetries-1 {
			continue
		}
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, orgID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForOrg(ctx, orgID, invoiceID)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, orgID uuid.UUID, filter InvoiceListFilter) (*shared.Paginated[InvoiceResponse], error) {
	domainFilter := buildFilter(filter.Search, filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir)
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.WorkOrderID != nil {
		domainFilter.Filters["work_order_id"] = *filter.WorkOrderID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if statuses := splitStatuses(filter.Statuses); len(statuses) > 0 {
		domainFilter.Filters["statuses"] = statuses
	}
	if filter.DueBefore != nil {
		domainFilter.Filters["due_before"] = *filter.DueBefore
	}

	invoices, err := s.invoiceRepo.FindAllForOrg(ctx, orgID, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.invoiceRepo.CountForOrg(ctx, orgID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]InvoiceResponse, len(invoices))
	for idx := range invoices {
		responses[idx] = ToInvoiceResponse(&invoices[idx])
	}
	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// Update edits a draft invoice's core fields
func (s *InvoiceService) Update(ctx context.Context, orgID, invoiceID uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	return s.mutate(ctx, orgID, invoiceID, req.Version, func(i *document.Invoice) error {
		return i.UpdateDetails(req.Notes, req.VehicleID, req.DueDate)
	})
}

// AddItem appends a line to a draft invoice
func (s *InvoiceService) AddItem(ctx context.Context, orgID, invoiceID uuid.UUID, req AddItemRequest) (*InvoiceResponse, error) {
	return s.mutate(ctx, orgID, invoiceID, req.Version, func(i *document.Invoice) error {
		_, err := i.AddItem(req.Item.domainInput())
		return err
	})
}

// UpdateItem edits a line on a draft invoice
func (s *InvoiceService) UpdateItem(ctx context.Context, orgID, invoiceID, itemID uuid.UUID, req UpdateLineItemRequest) (*InvoiceResponse, error) {
	return s.mutate(ctx, orgID, invoiceID, req.Version, func(i *document.Invoice) error {
		return i.UpdateItem(itemID, document.LineItemUpdate{
			Description:     req.Description,
			Quantity:        req.Quantity,
			UnitPrice:       req.UnitPrice,
			DiscountPercent: req.DiscountPercent,
			TaxPercent:      req.TaxPercent,
		})
	})
}

// RemoveItem deletes a line from a draft invoice
func (s *InvoiceService) RemoveItem(ctx context.Context, orgID, invoiceID, itemID uuid.UUID, req VersionedRequest) (*InvoiceResponse, error) {
	return s.mutate(ctx, orgID, invoiceID, req.Version, func(i *document.Invoice) error {
		return i.RemoveItem(itemID)
	})
}

// Send issues a draft invoice, fixing the due date
func (s *InvoiceService) Send(ctx context.Context, orgID, invoiceID uuid.UUID, req SendInvoiceRequest) (*InvoiceResponse, error) {
	return s.mutate(ctx, orgID, invoiceID, req.Version, func(i *document.Invoice) error {
		return i.Send(req.DueDate)
	})
}

// MarkPaid records the payment event on a sent or overdue invoice
func (s *InvoiceService) MarkPaid(ctx context.Context, orgID, invoiceID uuid.UUID, req MarkInvoicePaidRequest) (*InvoiceResponse, error) {
	return s.mutate(ctx, orgID, invoiceID, req.Version, func(i *document.Invoice) error {
		return i.MarkPaid(req.PaymentMethod, req.PaidDate, req.PaymentReference, req.PaymentNotes)
	})
}

// Cancel cancels a non-terminal invoice
func (s *InvoiceService) Cancel(ctx context.Context, orgID, invoiceID uuid.UUID, req VersionedRequest) (*InvoiceResponse, error) {
	return s.mutate(ctx, orgID, invoiceID, req.Version, func(i *document.Invoice) error {
		return i.Cancel()
	})
}

func (s *InvoiceService) mutate(ctx context.Context, orgID, invoiceID uuid.UUID, version int, fn func(*document.Invoice) error) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForOrg(ctx, orgID, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(invoice, version); err != nil {
		return nil, err
	}
	if err := fn(invoice); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}
