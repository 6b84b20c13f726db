package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/workshop/backend/internal/domain/document"
	"github.com/workshop/backend/internal/domain/shared"
)

// ConversionService orchestrates the two one-way document conversions. Each
// conversion runs inside a single transaction: the new document, its items
// and the source-document bookkeeping land together or not at all.
type ConversionService struct {
	scope TransactionScope
}

// NewConversionService creates a new ConversionService
func NewConversionService(scope TransactionScope) *ConversionService {
	return &ConversionService{scope: scope}
}

// QuotationToWorkOrder converts an approved quotation into a pending work
// order. The quotation is marked converted with the order back-reference in
// the same transaction that creates the order, so a half-converted quotation
// can never be observed.
func (s *ConversionService) QuotationToWorkOrder(ctx context.Context, orgID, quotationID uuid.UUID, req ConvertQuotationRequest) (*WorkOrderResponse, error) {
	var response WorkOrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		quotation, err := repos.QuotationRepo().FindByIDForOrg(ctx, orgID, quotationID)
		if err != nil {
			return err
		}
		// Preconditions are checked against the stored status read inside
		// this transaction, not whatever the caller last saw.
		if err := checkVersion(quotation, req.Version); err != nil {
			return err
		}

		for attempt := 0; ; attempt++ {
			number, err := repos.WorkOrderRepo().NextNumber(ctx, orgID, time.Now())
			if err != nil {
				return err
			}
			order, err := document.BuildWorkOrderFromQuotation(quotation, number)
			if err != nil {
				return err
			}

			err = repos.WorkOrderRepo().Save(ctx, order)
			if err == nil {
				if err := quotation.MarkConverted(order.ID); err != nil {
					return err
				}
				if err := repos.QuotationRepo().SaveWithLock(ctx, quotation); err != nil {
					return err
				}
				response = ToWorkOrderResponse(order)
				return nil
			}
			if errors.Is(err, document.ErrDuplicateNumber) && attempt < numberRetries-1 {
				continue
			}
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// WorkOrderToInvoice converts a completed work order into a draft invoice.
// At most one invoice may reference a work order; the reverse lookup inside
// the transaction plus the unique index on the back-reference enforce it.
func (s *ConversionService) WorkOrderToInvoice(ctx context.Context, orgID, orderID uuid.UUID, req ConvertWorkOrderRequest) (*InvoiceResponse, error) {
	var response InvoiceResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.WorkOrderRepo().FindByIDForOrg(ctx, orgID, orderID)
		if err != nil {
			return err
		}
		if err := checkVersion(order, req.Version); err != nil {
			return err
		}
		if !order.IsCompleted() {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Cannot invoice work order in %s status", order.Status))
		}

		existing, err := repos.InvoiceRepo().FindByWorkOrder(ctx, orgID, orderID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			return shared.ErrAlreadyConverted
		}

		var requested *document.LineSource
		if req.LineSource != nil {
			source := document.LineSource(*req.LineSource)
			requested = &source
		}
		source, err := document.ResolveLineSource(order, requested)
		if err != nil {
			return err
		}

		for attempt := 0; ; attempt++ {
			number, err := repos.InvoiceRepo().NextNumber(ctx, orgID, time.Now())
			if err != nil {
				return err
			}
			invoice, err := document.BuildInvoiceFromWorkOrder(order, number, source)
			if err != nil {
				return err
			}
			if req.DueDate != nil {
				if err := invoice.UpdateDetails(nil, nil, req.DueDate); err != nil {
					return err
				}
			}

			err = repos.InvoiceRepo().Save(ctx, invoice)
			if err == nil {
				response = ToInvoiceResponse(invoice)
				return nil
			}
			if errors.Is(err, document.ErrDuplicateNumber) {
				// The one-invoice-per-work-order unique index surfaces as the
				// same duplicated-key error as a number collision. Check which
				// constraint fired before retrying with a fresh number.
				dup, findErr := repos.InvoiceRepo().FindByWorkOrder(ctx, orgID, orderID)
				if findErr != nil && !errors.Is(findErr, shared.ErrNotFound) {
					return findErr
				}
				if dup != nil {
					return shared.ErrAlreadyConverted
				}
				if attempt < numberRetries-1 {
					continue
				}
			}
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}
