package document

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/workshop/backend/internal/domain/document"
	"github.com/workshop/backend/internal/domain/shared"
)

type conversionMocks struct {
	quotations *MockQuotationRepository
	workOrders *MockWorkOrderRepository
	invoices   *MockInvoiceRepository
	service    *ConversionService
}

func newConversionMocks() conversionMocks {
	quotations := new(MockQuotationRepository)
	workOrders := new(MockWorkOrderRepository)
	invoices := new(MockInvoiceRepository)
	scope := NewNoOpTransactionScope(quotations, workOrders, invoices)
	return conversionMocks{
		quotations: quotations,
		workOrders: workOrders,
		invoices:   invoices,
		service:    NewConversionService(scope),
	}
}

func approvedQuotation(t *testing.T, orgID uuid.UUID) *document.Quotation {
	t.Helper()
	quotation := draftQuotation(t, orgID, true)
	require.NoError(t, quotation.Send())
	require.NoError(t, quotation.Approve(time.Now(), false))
	return quotation
}

func completedWorkOrder(t *testing.T, orgID uuid.UUID) *document.WorkOrder {
	t.Helper()
	order, err := document.NewWorkOrder(orgID, "WO-2025-0001", uuid.New())
	require.NoError(t, err)
	_, err = order.AddItem(document.LineItemInput{
		Description: "Brake pads",
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.NewFromInt(800),
		TaxPercent:  document.DefaultTaxPercent,
	})
	require.NoError(t, err)
	require.NoError(t, order.SetStatus(document.WorkOrderStatusCompleted))
	return order
}

// ============================================
// Quotation -> WorkOrder Tests
// ============================================

func TestConversionService_QuotationToWorkOrder(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("creates the order and marks the quotation converted", func(t *testing.T) {
		mocks := newConversionMocks()
		quotation := approvedQuotation(t, orgID)

		mocks.quotations.On("FindByIDForOrg", ctx, orgID, quotation.ID).Return(quotation, nil)
		mocks.workOrders.On("NextNumber", ctx, orgID, mock.Anything).Return("WO-2025-0001", nil)
		mocks.workOrders.On("Save", ctx, mock.AnythingOfType("*document.WorkOrder")).Return(nil)
		mocks.quotations.On("SaveWithLock", ctx, quotation).Return(nil)

		response, err := mocks.service.QuotationToWorkOrder(ctx, orgID, quotation.ID, ConvertQuotationRequest{Version: quotation.GetVersion()})
		require.NoError(t, err)

		assert.Regexp(t, `^WO-\d{4}-0001$`, response.Number)
		assert.Equal(t, "pending", response.Status)
		assert.Equal(t, quotation.CustomerID, response.CustomerID)
		require.NotNil(t, response.QuotationID)
		assert.Equal(t, quotation.ID, *response.QuotationID)
		// Lines are re-derived, totals carry over exactly
		require.Len(t, response.Items, 1)
		assert.True(t, response.Totals.Total.Equal(decimal.NewFromInt(348)))

		assert.Equal(t, document.QuotationStatusConverted, quotation.Status)
		assert.True(t, quotation.ConvertedToOrder)
		require.NotNil(t, quotation.OrderID)
		assert.Equal(t, response.ID, *quotation.OrderID)
		mocks.quotations.AssertExpectations(t)
		mocks.workOrders.AssertExpectations(t)
	})

	t.Run("second conversion fails and keeps the first order id", func(t *testing.T) {
		mocks := newConversionMocks()
		quotation := approvedQuotation(t, orgID)

		mocks.quotations.On("FindByIDForOrg", ctx, orgID, quotation.ID).Return(quotation, nil)
		mocks.workOrders.On("NextNumber", ctx, orgID, mock.Anything).Return("WO-2025-0001", nil)
		mocks.workOrders.On("Save", ctx, mock.Anything).Return(nil)
		mocks.quotations.On("SaveWithLock", ctx, quotation).Return(nil)

		first, err := mocks.service.QuotationToWorkOrder(ctx, orgID, quotation.ID, ConvertQuotationRequest{Version: quotation.GetVersion()})
		require.NoError(t, err)

		_, err = mocks.service.QuotationToWorkOrder(ctx, orgID, quotation.ID, ConvertQuotationRequest{Version: quotation.GetVersion()})
		assertServiceCode(t, err, "ALREADY_CONVERTED")
		require.NotNil(t, quotation.OrderID)
		assert.Equal(t, first.ID, *quotation.OrderID)
	})

	t.Run("refuses a sent quotation", func(t *testing.T) {
		mocks := newConversionMocks()
		quotation := draftQuotation(t, orgID, true)
		require.NoError(t, quotation.Send())

		mocks.quotations.On("FindByIDForOrg", ctx, orgID, quotation.ID).Return(quotation, nil)

		_, err := mocks.service.QuotationToWorkOrder(ctx, orgID, quotation.ID, ConvertQuotationRequest{Version: quotation.GetVersion()})
		assertServiceCode(t, err, "INVALID_STATE")
		assert.False(t, quotation.ConvertedToOrder)
		mocks.workOrders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("stale version is refused", func(t *testing.T) {
		mocks := newConversionMocks()
		quotation := approvedQuotation(t, orgID)

		mocks.quotations.On("FindByIDForOrg", ctx, orgID, quotation.ID).Return(quotation, nil)

		_, err := mocks.service.QuotationToWorkOrder(ctx, orgID, quotation.ID, ConvertQuotationRequest{Version: quotation.GetVersion() + 1})
		assertServiceCode(t, err, "CONCURRENCY_CONFLICT")
		assert.False(t, quotation.ConvertedToOrder)
	})

	t.Run("order save failure leaves the quotation unconverted", func(t *testing.T) {
		mocks := newConversionMocks()
		quotation := approvedQuotation(t, orgID)

		mocks.quotations.On("FindByIDForOrg", ctx, orgID, quotation.ID).Return(quotation, nil)
		mocks.workOrders.On("NextNumber", ctx, orgID, mock.Anything).Return("WO-2025-0001", nil)
		mocks.workOrders.On("Save", ctx, mock.Anything).Return(shared.ErrIntegrityFailure)

		_, err := mocks.service.QuotationToWorkOrder(ctx, orgID, quotation.ID, ConvertQuotationRequest{Version: quotation.GetVersion()})
		assertServiceCode(t, err, "INTEGRITY_FAILURE")
		assert.False(t, quotation.ConvertedToOrder)
		assert.Equal(t, document.QuotationStatusApproved, quotation.Status)
		mocks.quotations.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

// ============================================
// WorkOrder -> Invoice Tests
// ============================================

func TestConversionService_WorkOrderToInvoice(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("order items strategy recomputes through the calculator", func(t *testing.T) {
		mocks := newConversionMocks()
		order := completedWorkOrder(t, orgID)

		mocks.workOrders.On("FindByIDForOrg", ctx, orgID, order.ID).Return(order, nil)
		mocks.invoices.On("FindByWorkOrder", ctx, orgID, order.ID).Return(nil, shared.ErrNotFound)
		mocks.invoices.On("NextNumber", ctx, orgID, mock.Anything).Return("INV-2025-0001", nil)
		mocks.invoices.On("Save", ctx, mock.AnythingOfType("*document.Invoice")).Return(nil)

		response, err := mocks.service.WorkOrderToInvoice(ctx, orgID, order.ID, ConvertWorkOrderRequest{Version: order.GetVersion()})
		require.NoError(t, err)

		assert.Equal(t, "INV-2025-0001", response.Number)
		assert.Equal(t, "draft", response.Status)
		assert.Equal(t, "order_items", response.LineSource)
		require.NotNil(t, response.WorkOrderID)
		assert.Equal(t, order.ID, *response.WorkOrderID)
		require.Len(t, response.Items, 1)
		assert.True(t, response.Totals.Total.Equal(decimal.NewFromInt(928)))
		mocks.invoices.AssertExpectations(t)
	})

	t.Run("service lines strategy bills the recorded totals verbatim", func(t *testing.T) {
		mocks := newConversionMocks()
		order := completedWorkOrder(t, orgID)
		_, err := order.AddServiceLine("Diagnostic and labor", decimal.NewFromInt(3), decimal.NewFromInt(400), decimal.NewFromInt(1200), "")
		require.NoError(t, err)

		mocks.workOrders.On("FindByIDForOrg", ctx, orgID, order.ID).Return(order, nil)
		mocks.invoices.On("FindByWorkOrder", ctx, orgID, order.ID).Return(nil, shared.ErrNotFound)
		mocks.invoices.On("NextNumber", ctx, orgID, mock.Anything).Return("INV-2025-0002", nil)
		mocks.invoices.On("Save", ctx, mock.Anything).Return(nil)

		response, err := mocks.service.WorkOrderToInvoice(ctx, orgID, order.ID, ConvertWorkOrderRequest{Version: order.GetVersion()})
		require.NoError(t, err)

		// Service lines win by default when present, never mixed with items
		assert.Equal(t, "service_lines", response.LineSource)
		require.Len(t, response.Items, 1)
		assert.True(t, response.Totals.Total.Equal(decimal.NewFromInt(1200)))
	})

	t.Run("explicit strategy overrides the default", func(t *testing.T) {
		mocks := newConversionMocks()
		order := completedWorkOrder(t, orgID)
		_, err := order.AddServiceLine("Labor", decimal.NewFromInt(1), decimal.NewFromInt(500), decimal.NewFromInt(500), "")
		require.NoError(t, err)

		mocks.workOrders.On("FindByIDForOrg", ctx, orgID, order.ID).Return(order, nil)
		mocks.invoices.On("FindByWorkOrder", ctx, orgID, order.ID).Return(nil, shared.ErrNotFound)
		mocks.invoices.On("NextNumber", ctx, orgID, mock.Anything).Return("INV-2025-0003", nil)
		mocks.invoices.On("Save", ctx, mock.Anything).Return(nil)

		strategy := "order_items"
		response, err := mocks.service.WorkOrderToInvoice(ctx, orgID, order.ID, ConvertWorkOrderRequest{
			LineSource: &strategy,
			Version:    order.GetVersion(),
		})
		require.NoError(t, err)
		assert.Equal(t, "order_items", response.LineSource)
		assert.True(t, response.Totals.Total.Equal(decimal.NewFromInt(928)))
	})

	t.Run("refuses a non-completed order", func(t *testing.T) {
		mocks := newConversionMocks()
		order, err := document.NewWorkOrder(orgID, "WO-2025-0002", uuid.New())
		require.NoError(t, err)

		mocks.workOrders.On("FindByIDForOrg", ctx, orgID, order.ID).Return(order, nil)

		_, err = mocks.service.WorkOrderToInvoice(ctx, orgID, order.ID, ConvertWorkOrderRequest{Version: order.GetVersion()})
		assertServiceCode(t, err, "INVALID_STATE")
		mocks.invoices.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("an existing invoice blocks a second conversion", func(t *testing.T) {
		mocks := newConversionMocks()
		order := completedWorkOrder(t, orgID)
		existing, err := document.NewInvoice(orgID, "INV-2025-0001", order.CustomerID, document.LineSourceOrderItems)
		require.NoError(t, err)

		mocks.workOrders.On("FindByIDForOrg", ctx, orgID, order.ID).Return(order, nil)
		mocks.invoices.On("FindByWorkOrder", ctx, orgID, order.ID).Return(existing, nil)

		_, err = mocks.service.WorkOrderToInvoice(ctx, orgID, order.ID, ConvertWorkOrderRequest{Version: order.GetVersion()})
		assertServiceCode(t, err, "ALREADY_CONVERTED")
		mocks.invoices.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("losing a concurrent conversion race reports already converted", func(t *testing.T) {
		mocks := newConversionMocks()
		order := completedWorkOrder(t, orgID)
		winner, err := document.NewInvoice(orgID, "INV-2025-0007", order.CustomerID, document.LineSourceOrderItems)
		require.NoError(t, err)

		// The winner inserts between the exclusivity check and the save, so
		// the save trips the per-work-order unique index.
		mocks.workOrders.On("FindByIDForOrg", ctx, orgID, order.ID).Return(order, nil)
		mocks.invoices.On("FindByWorkOrder", ctx, orgID, order.ID).Return(nil, shared.ErrNotFound).Once()
		mocks.invoices.On("NextNumber", ctx, orgID, mock.Anything).Return("INV-2025-0008", nil)
		mocks.invoices.On("Save", ctx, mock.Anything).Return(document.ErrDuplicateNumber)
		mocks.invoices.On("FindByWorkOrder", ctx, orgID, order.ID).Return(winner, nil).Once()

		_, err = mocks.service.WorkOrderToInvoice(ctx, orgID, order.ID, ConvertWorkOrderRequest{Version: order.GetVersion()})
		assertServiceCode(t, err, "ALREADY_CONVERTED")
		mocks.invoices.AssertNumberOfCalls(t, "Save", 1)
	})

	t.Run("a genuine number collision still retries", func(t *testing.T) {
		mocks := newConversionMocks()
		order := completedWorkOrder(t, orgID)

		mocks.workOrders.On("FindByIDForOrg", ctx, orgID, order.ID).Return(order, nil)
		mocks.invoices.On("FindByWorkOrder", ctx, orgID, order.ID).Return(nil, shared.ErrNotFound)
		mocks.invoices.On("NextNumber", ctx, orgID, mock.Anything).Return("INV-2025-0009", nil).Once()
		mocks.invoices.On("NextNumber", ctx, orgID, mock.Anything).Return("INV-2025-0010", nil).Once()
		mocks.invoices.On("Save", ctx, mock.Anything).Return(document.ErrDuplicateNumber).Once()
		mocks.invoices.On("Save", ctx, mock.Anything).Return(nil).Once()

		response, err := mocks.service.WorkOrderToInvoice(ctx, orgID, order.ID, ConvertWorkOrderRequest{Version: order.GetVersion()})
		require.NoError(t, err)
		assert.Equal(t, "INV-2025-0010", response.Number)
		mocks.invoices.AssertNumberOfCalls(t, "Save", 2)
	})
}
