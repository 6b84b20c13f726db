package document

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/workshop/backend/internal/domain/document"
	"github.com/workshop/backend/internal/domain/shared"
)

// WorkOrderService handles work order business operations
type WorkOrderService struct {
	workOrderRepo document.WorkOrderRepository
}

// NewWorkOrderService creates a new WorkOrderService
func NewWorkOrderService(workOrderRepo document.WorkOrderRepository) *WorkOrderService {
	return &WorkOrderService{workOrderRepo: workOrderRepo}
}

// Create creates a work order directly, without a prior quotation
func (s *WorkOrderService) Create(ctx context.Context, orgID uuid.UUID, req CreateWorkOrderRequest) (*WorkOrderResponse, error) {
	var order *document.WorkOrder
	for attempt := 0; ; attempt++ {
		number, err := s.workOrderRepo.NextNumber(ctx, orgID, time.Now())
		if err != nil {
			return nil, err
		}

		order, err = document.NewWorkOrder(orgID, number, req.CustomerID)
		if err != nil {
			return nil, err
		}
		if err := order.UpdateDetails(strPtr(req.Description), req.VehicleID); err != nil {
			return nil, err
		}
		for _, item := range req.Items {
			if _, err := order.AddItem(item.domainInput()); err != nil {
				return nil, err
			}
		}

		err = s.workOrderRepo.Save(ctx, order)
		if err == nil {
			break
		}
		if errors.Is(err, document.ErrDuplicateNumber) && attempt < numberRetries-1 {
			continue
		}
		return nil, err
	}

	response := ToWorkOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a work order by ID
func (s *WorkOrderService) GetByID(ctx context.Context, orgID, orderID uuid.UUID) (*WorkOrderResponse, error) {
	order, err := s.workOrderRepo.FindByIDForOrg(ctx, orgID, orderID)
	if err != nil {
		return nil, err
	}
	response := ToWorkOrderResponse(order)
	return &response, nil
}

// List retrieves work orders with filtering and pagination
func (s *WorkOrderService) List(ctx context.Context, orgID uuid.UUID, filter WorkOrderListFilter) (*shared.Paginated[WorkOrderResponse], error) {
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

	orders, err := s.workOrderRepo.FindAllForOrg(ctx, orgID, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.workOrderRepo.CountForOrg(ctx, orgID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]WorkOrderResponse, len(orders))
	for idx := range orders {
		responses[idx] = ToWorkOrderResponse(&orders[idx])
	}
	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// Update edits a work order's core fields
func (s *WorkOrderService) Update(ctx context.Context, orgID, orderID uuid.UUID, req UpdateWorkOrderRequest) (*WorkOrderResponse, error) {
	return s.mutate(ctx, orgID, orderID, req.Version, func(w *document.WorkOrder) error {
		return w.UpdateDetails(req.Description, req.VehicleID)
	})
}

// AddItem appends a line item to the order
func (s *WorkOrderService) AddItem(ctx context.Context, orgID, orderID uuid.UUID, req AddItemRequest) (*WorkOrderResponse, error) {
	return s.mutate(ctx, orgID, orderID, req.Version, func(w *document.WorkOrder) error {
		_, err := w.AddItem(req.Item.domainInput())
		return err
	})
}

// UpdateItem edits a line item on the order
func (s *WorkOrderService) UpdateItem(ctx context.Context, orgID, orderID, itemID uuid.UUID, req UpdateLineItemRequest) (*WorkOrderResponse, error) {
	return s.mutate(ctx, orgID, orderID, req.Version, func(w *document.WorkOrder) error {
		return w.UpdateItem(itemID, document.LineItemUpdate{
			Description:     req.Description,
			Quantity:        req.Quantity,
			UnitPrice:       req.UnitPrice,
			DiscountPercent: req.DiscountPercent,
			TaxPercent:      req.TaxPercent,
		})
	})
}

// RemoveItem deletes a line item from the order
func (s *WorkOrderService) RemoveItem(ctx context.Context, orgID, orderID, itemID uuid.UUID, req VersionedRequest) (*WorkOrderResponse, error) {
	return s.mutate(ctx, orgID, orderID, req.Version, func(w *document.WorkOrder) error {
		return w.RemoveItem(itemID)
	})
}

// AddServiceLine records technician work against the order
func (s *WorkOrderService) AddServiceLine(ctx context.Context, orgID, orderID uuid.UUID, req AddServiceLineRequest) (*WorkOrderResponse, error) {
	return s.mutate(ctx, orgID, orderID, req.Version, func(w *document.WorkOrder) error {
		_, err := w.AddServiceLine(req.Description, req.Quantity, req.UnitPrice, req.Total, req.Notes)
		return err
	})
}

// UpdateServiceLine edits a recorded service line
func (s *WorkOrderService) UpdateServiceLine(ctx context.Context, orgID, orderID, lineID uuid.UUID, req AddServiceLineRequest) (*WorkOrderResponse, error) {
	return s.mutate(ctx, orgID, orderID, req.Version, func(w *document.WorkOrder) error {
		return w.UpdateServiceLine(lineID, req.Description, req.Quantity, req.UnitPrice, req.Total, req.Notes)
	})
}

// RemoveServiceLine deletes a service line from the order
func (s *WorkOrderService) RemoveServiceLine(ctx context.Context, orgID, orderID, lineID uuid.UUID, req VersionedRequest) (*WorkOrderResponse, error) {
	return s.mutate(ctx, orgID, orderID, req.Version, func(w *document.WorkOrder) error {
		return w.RemoveServiceLine(lineID)
	})
}

// Advance moves the order one step forward on the repair pipeline
func (s *WorkOrderService) Advance(ctx context.Context, orgID, orderID uuid.UUID, req VersionedRequest) (*WorkOrderResponse, error) {
	return s.mutate(ctx, orgID, orderID, req.Version, func(w *document.WorkOrder) error {
		return w.Advance()
	})
}

// Revert moves the order one step backward on the repair pipeline
func (s *WorkOrderService) Revert(ctx context.Context, orgID, orderID uuid.UUID, req VersionedRequest) (*WorkOrderResponse, error) {
	return s.mutate(ctx, orgID, orderID, req.Version, func(w *document.WorkOrder) error {
		return w.Revert()
	})
}

// SetStatus jumps the order to a specific status (kanban drag)
func (s *WorkOrderService) SetStatus(ctx context.Context, orgID, orderID uuid.UUID, req SetWorkOrderStatusRequest) (*WorkOrderResponse, error) {
	return s.mutate(ctx, orgID, orderID, req.Version, func(w *document.WorkOrder) error {
		return w.SetStatus(document.WorkOrderStatus(req.Status))
	})
}

func (s *WorkOrderService) mutate(ctx context.Context, orgID, orderID uuid.UUID, version int, fn func(*document.WorkOrder) error) (*WorkOrderResponse, error) {
	order, err := s.workOrderRepo.FindByIDForOrg(ctx, orgID, orderID)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(order, version); err != nil {
		return nil, err
	}
	if err := fn(order); err != nil {
		return nil, err
	}
	if err := s.workOrderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	response := ToWorkOrderResponse(order)
	return &response, nil
}
