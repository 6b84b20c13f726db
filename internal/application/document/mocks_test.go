package document

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/workshop/backend/internal/domain/document"
	"github.com/workshop/backend/internal/domain/shared"
)

// MockQuotationRepository is a mock implementation of document.QuotationRepository
type MockQuotationRepository struct {
	mock.Mock
}

func (m *MockQuotationRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*document.Quotation, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Quotation), args.Error(1)
}

func (m *MockQuotationRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]document.Quotation, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]document.Quotation), args.Error(1)
}

func (m *MockQuotationRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuotationRepository) CountByStatus(ctx context.Context, orgID uuid.UUID, status document.QuotationStatus) (int64, error) {
	args := m.Called(ctx, orgID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuotationRepository) NextNumber(ctx context.Context, orgID uuid.UUID, now time.Time) (string, error) {
	args := m.Called(ctx, orgID, now)
	return args.String(0), args.Error(1)
}

func (m *MockQuotationRepository) Save(ctx context.Context, quotation *document.Quotation) error {
	args := m.Called(ctx, quotation)
	return args.Error(0)
}

func (m *MockQuotationRepository) SaveWithLock(ctx context.Context, quotation *document.Quotation) error {
	args := m.Called(ctx, quotation)
	return args.Error(0)
}

// MockWorkOrderRepository is a mock implementation of document.WorkOrderRepository
type MockWorkOrderRepository struct {
	mock.Mock
}

func (m *MockWorkOrderRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*document.WorkOrder, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.WorkOrder), args.Error(1)
}

func (m *MockWorkOrderRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]document.WorkOrder, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]document.WorkOrder), args.Error(1)
}

func (m *MockWorkOrderRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWorkOrderRepository) CountByStatus(ctx context.Context, orgID uuid.UUID, status document.WorkOrderStatus) (int64, error) {
	args := m.Called(ctx, orgID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWorkOrderRepository) NextNumber(ctx context.Context, orgID uuid.UUID, now time.Time) (string, error) {
	args := m.Called(ctx, orgID, now)
	return args.String(0), args.Error(1)
}

func (m *MockWorkOrderRepository) Save(ctx context.Context, order *document.WorkOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockWorkOrderRepository) SaveWithLock(ctx context.Context, order *document.WorkOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// MockInvoiceRepository is a mock implementation of document.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*document.Invoice, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByWorkOrder(ctx context.Context, orgID, workOrderID uuid.UUID) (*document.Invoice, error) {
	args := m.Called(ctx, orgID, workOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]document.Invoice, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]document.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) CountByStatus(ctx context.Context, orgID uuid.UUID, status document.InvoiceStatus) (int64, error) {
	args := m.Called(ctx, orgID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) SumTotalByStatus(ctx context.Context, orgID uuid.UUID, status document.InvoiceStatus) (decimal.Decimal, error) {
	args := m.Called(ctx, orgID, status)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockInvoiceRepository) NextNumber(ctx context.Context, orgID uuid.UUID, now time.Time) (string, error) {
	args := m.Called(ctx, orgID, now)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *document.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *document.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
