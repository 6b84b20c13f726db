package document

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/workshop/backend/internal/domain/document"
	"github.com/workshop/backend/internal/domain/shared"
)

// QuotationService handles quotation business operations
type QuotationService struct {
	quotationRepo document.QuotationRepository
}

// NewQuotationService creates a new QuotationService
func NewQuotationService(quotationRepo document.QuotationRepository) *QuotationService {
	return &QuotationService{quotationRepo: quotationRepo}
}

// Create creates a new draft quotation, generating its number
func (s *QuotationService) Create(ctx context.Context, orgID uuid.UUID, req CreateQuotationRequest) (*QuotationResponse, error) {
	var quotation *document.Quotation
	for attempt := 0; ; attempt++ {
		number, err := s.quotationRepo.NextNumber(ctx, orgID, time.Now())
		if err != nil {
			return nil, err
		}

		quotation, err = document.NewQuotation(orgID, number, req.CustomerID)
		if err != nil {
			return nil, err
		}
		if err := quotation.UpdateDetails(strPtr(req.Description), req.VehicleID, req.ValidUntil); err != nil {
			return nil, err
		}
		for _, item := range req.Items {
			if _, err := quotation.AddItem(item.domainInput()); err != nil {
				return nil, err
			}
		}

		err = s.quotationRepo.Save(ctx, quotation)
		if err == nil {
			break
		}
		if errors.Is(err, document.ErrDuplicateNumber) && attempt < numberRetries-1 {
			continue
		}
		return nil, err
	}

	response := ToQuotationResponse(quotation, time.Now())
	return &response, nil
}

// GetByID retrieves a quotation by ID
func (s *QuotationService) GetByID(ctx context.Context, orgID, quotationID uuid.UUID) (*QuotationResponse, error) {
	quotation, err := s.quotationRepo.FindByIDForOrg(ctx, orgID, quotationID)
	if err != nil {
		return nil, err
	}
	response := ToQuotationResponse(quotation, time.Now())
	return &response, nil
}

// List retrieves quotations with filtering and pagination
func (s *QuotationService) List(ctx context.Context, orgID uuid.UUID, filter QuotationListFilter) (*shared.Paginated[QuotationResponse], error) {
	domainFilter := buildFilter(filter.Search, filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir)
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.VehicleID != nil {
		domainFilter.Filters["vehicle_id"] = *filter.VehicleID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if statuses := splitStatuses(filter.Statuses); len(statuses) > 0 {
		domainFilter.Filters["statuses"] = statuses
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	quotations, err := s.quotationRepo.FindAllForOrg(ctx, orgID, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.quotationRepo.CountForOrg(ctx, orgID, domainFilter)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	responses := make([]QuotationResponse, len(quotations))
	for idx := range quotations {
		responses[idx] = ToQuotationResponse(&quotations[idx], now)
	}
	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// Update edits a draft quotation's core fields
func (s *QuotationService) Update(ctx context.Context, orgID, quotationID uuid.UUID, req UpdateQuotationRequest) (*QuotationResponse, error) {
	return s.mutate(ctx, orgID, quotationID, req.Version, func(q *document.Quotation) error {
		return q.UpdateDetails(req.Description, req.VehicleID, req.ValidUntil)
	})
}

// AddItem appends a line to a draft quotation
func (s *QuotationService) AddItem(ctx context.Context, orgID, quotationID uuid.UUID, req AddItemRequest) (*QuotationResponse, error) {
	return s.mutate(ctx, orgID, quotationID, req.Version, func(q *document.Quotation) error {
		_, err := q.AddItem(req.Item.domainInput())
		return err
	})
}

// UpdateItem edits a line on a draft quotation
func (s *QuotationService) UpdateItem(ctx context.Context, orgID, quotationID, itemID uuid.UUID, req UpdateLineItemRequest) (*QuotationResponse, error) {
	return s.mutate(ctx, orgID, quotationID, req.Version, func(q *document.Quotation) error {
		return q.UpdateItem(itemID, document.LineItemUpdate{
			Description:     req.Description,
			Quantity:        req.Quantity,
			UnitPrice:       req.UnitPrice,
			DiscountPercent: req.DiscountPercent,
			TaxPercent:      req.TaxPercent,
		})
	})
}

// RemoveItem deletes a line from a draft quotation
func (s *QuotationService) RemoveItem(ctx context.Context, orgID, quotationID, itemID uuid.UUID, req VersionedRequest) (*QuotationResponse, error) {
	return s.mutate(ctx, orgID, quotationID, req.Version, func(q *document.Quotation) error {
		return q.RemoveItem(itemID)
	})
}

// Send transitions a draft quotation to sent
func (s *QuotationService) Send(ctx context.Context, orgID, quotationID uuid.UUID, req VersionedRequest) (*QuotationResponse, error) {
	return s.mutate(ctx, orgID, quotationID, req.Version, func(q *document.Quotation) error {
		return q.Send()
	})
}

// Approve transitions a sent quotation to approved
func (s *QuotationService) Approve(ctx context.Context, orgID, quotationID uuid.UUID, req ApproveQuotationRequest) (*QuotationResponse, error) {
	return s.mutate(ctx, orgID, quotationID, req.Version, func(q *document.Quotation) error {
		return q.Approve(time.Now(), req.AllowExpired)
	})
}

// Reject transitions a sent quotation to rejected
func (s *QuotationService) Reject(ctx context.Context, orgID, quotationID uuid.UUID, req RejectQuotationRequest) (*QuotationResponse, error) {
	return s.mutate(ctx, orgID, quotationID, req.Version, func(q *document.Quotation) error {
		return q.Reject(req.Reason)
	})
}

// Cancel cancels a quotation
func (s *QuotationService) Cancel(ctx context.Context, orgID, quotationID uuid.UUID, req VersionedRequest) (*QuotationResponse, error) {
	return s.mutate(ctx, orgID, quotationID, req.Version, func(q *document.Quotation) error {
		return q.Cancel()
	})
}

// Duplicate copies a quotation into a fresh draft with a new number. Lines
// are re-derived through the calculator, so a stale tax default never
// survives the copy.
func (s *QuotationService) Duplicate(ctx context.Context, orgID, quotationID uuid.UUID) (*QuotationResponse, error) {
	source, err := s.quotationRepo.FindByIDForOrg(ctx, orgID, quotationID)
	if err != nil {
		return nil, err
	}

	req := CreateQuotationRequest{
		CustomerID:  source.CustomerID,
		VehicleID:   source.VehicleID,
		Description: source.Description,
	}
	for _, item := range source.Items {
		taxPercent := item.TaxPercent
		req.Items = append(req.Items, LineItemInput{
			ServiceID:       item.ServiceID,
			ProductID:       item.ProductID,
			Description:     item.Description,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			TaxPercent:      &taxPercent,
		})
	}
	return s.Create(ctx, orgID, req)
}

// mutate loads the quotation, verifies the caller's version, applies the
// mutation and saves with the optimistic lock.
func (s *QuotationService) mutate(ctx context.Context, orgID, quotationID uuid.UUID, version int, fn func(*document.Quotation) error) (*QuotationResponse, error) {
	quotation, err := s.quotationRepo.FindByIDForOrg(ctx, orgID, quotationID)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(quotation, version); err != nil {
		return nil, err
	}
	if err := fn(quotation); err != nil {
		return nil, err
	}
	if err := s.quotationRepo.SaveWithLock(ctx, quotation); err != nil {
		return nil, err
	}
	response := ToQuotationResponse(quotation, time.Now())
	return &response, nil
}

func strPtr(s string) *string {
	return &s
}
