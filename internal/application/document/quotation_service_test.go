package document

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/workshop/backend/internal/domain/document"
	"github.com/workshop/backend/internal/domain/shared"
)

func assertServiceCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func testLineInput(description string, quantity, price float64) LineItemInput {
	return LineItemInput{
		Description: description,
		Quantity:    decimal.NewFromFloat(quantity),
		UnitPrice:   decimal.NewFromFloat(price),
	}
}

func draftQuotation(t *testing.T, orgID uuid.UUID, withItems bool) *document.Quotation {
	t.Helper()
	quotation, err := document.NewQuotation(orgID, "Q-2025-0001", uuid.New())
	require.NoError(t, err)
	if withItems {
		_, err = quotation.AddItem(document.LineItemInput{
			Description: "Oil change",
			Quantity:    decimal.NewFromInt(2),
			UnitPrice:   decimal.NewFromInt(150),
			TaxPercent:  document.DefaultTaxPercent,
		})
		require.NoError(t, err)
	}
	return quotation
}

func TestQuotationService_Create(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("creates draft with generated number and default tax", func(t *testing.T) {
		repo := new(MockQuotationRepository)
		repo.On("NextNumber", ctx, orgID, mock.Anything).Return("Q-2025-0001", nil)
		repo.On("Save", ctx, mock.AnythingOfType("*document.Quotation")).Return(nil)

		service := NewQuotationService(repo)
		response, err := service.Create(ctx, orgID, CreateQuotationRequest{
			CustomerID: uuid.New(),
			Items:      []LineItemInput{testLineInput("Oil change", 2, 150.00)},
		})
		require.NoError(t, err)

		assert.Equal(t, "Q-2025-0001", response.Number)
		assert.Equal(t, "draft", response.Status)
		require.Len(t, response.Items, 1)
		assert.True(t, response.Items[0].TaxPercent.Equal(decimal.NewFromInt(16)))
		assert.True(t, response.Totals.Total.Equal(decimal.NewFromInt(348)))
		assert.Equal(t, 1, response.Version)
		repo.AssertExpectations(t)
	})

	t.Run("retries when the number races", func(t *testing.T) {
		repo := new(MockQuotationRepository)
		repo.On("NextNumber", ctx, orgID, mock.Anything).Return("Q-2025-0007", nil).Once()
		repo.On("NextNumber", ctx, orgID, mock.Anything).Return("Q-2025-0008", nil).Once()
		repo.On("Save", ctx, mock.Anything).Return(document.ErrDuplicateNumber).Once()
		repo.On("Save", ctx, mock.Anything).Return(nil).Once()

		service := NewQuotationService(repo)
		response, err := service.Create(ctx, orgID, CreateQuotationRequest{CustomerID: uuid.New()})
		require.NoError(t, err)

		assert.Equal(t, "Q-2025-0008", response.Number)
		repo.AssertExpectations(t)
	})

	t.Run("surfaces the conflict after the retry budget", func(t *testing.T) {
		repo := new(MockQuotationRepository)
		repo.On("NextNumber", ctx, orgID, mock.Anything).Return("Q-2025-0007", nil).Times(3)
		repo.On("Save", ctx, mock.Anything).Return(document.ErrDuplicateNumber).Times(3)

		service := NewQuotationService(repo)
		_, err := service.Create(ctx, orgID, CreateQuotationRequest{CustomerID: uuid.New()})
		assertServiceCode(t, err, "DUPLICATE_NUMBER")
		repo.AssertExpectations(t)
	})

	t.Run("rejects an invalid line before any write", func(t *testing.T) {
		repo := new(MockQuotationRepository)
		repo.On("NextNumber", ctx, orgID, mock.Anything).Return("Q-2025-0001", nil)

		service := NewQuotationService(repo)
		_, err := service.Create(ctx, orgID, CreateQuotationRequest{
			CustomerID: uuid.New(),
			Items:      []LineItemInput{testLineInput("Broken", -1, 100.00)},
		})
		assertServiceCode(t, err, "INVALID_QUANTITY")
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestQuotationService_Update(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("updates a draft and saves with lock", func(t *testing.T) {
		quotation := draftQuotation(t, orgID, false)
		repo := new(MockQuotationRepository)
		repo.On("FindByIDForOrg", ctx, orgID, quotation.ID).Return(quotation, nil)
		repo.On("SaveWithLock", ctx, quotation).Return(nil)

		service := NewQuotationService(repo)
		description := "Brake overhaul"
		response, err := service.Update(ctx, orgID, quotation.ID, UpdateQuotationRequest{
			Description: &description,
			Version:     1,
		})
		require.NoError(t, err)
		assert.Equal(t, "Brake overhaul", response.Description)
		repo.AssertExpectations(t)
	})

	t.Run("stale version is refused before mutating", func(t *testing.T) {
		quotation := draftQuotation(t, orgID, false)
		repo := new(MockQuotationRepository)
		repo.On("FindByIDForOrg", ctx, orgID, quotation.ID).Return(quotation, nil)

		service := NewQuotationService(repo)
		description := "Brake overhaul"
		_, err := service.Update(ctx, orgID, quotation.ID, UpdateQuotationRequest{
			Description: &description,
			Version:     2,
		})
		assertServiceCode(t, err, "CONCURRENCY_CONFLICT")
		assert.Equal(t, "", quotation.Description)
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("sent quotation refuses edits", func(t *testing.T) {
		quotation := draftQuotation(t, orgID, true)
		require.NoError(t, quotation.Send())

		repo := new(MockQuotationRepository)
		repo.On("FindByIDForOrg", ctx, orgID, quotation.ID).Return(quotation, nil)

		service := NewQuotationService(repo)
		description := "Too late"
		_, err := service.Update(ctx, orgID, quotation.ID, UpdateQuotationRequest{
			Description: &description,
			Version:     quotation.GetVersion(),
		})
		assertServiceCode(t, err, "INVALID_STATE")
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("unknown quotation", func(t *testing.T) {
		repo := new(MockQuotationRepository)
		repo.On("FindByIDForOrg", ctx, orgID, mock.Anything).Return(nil, shared.ErrNotFound)

		service := NewQuotationService(repo)
		_, err := service.Update(ctx, orgID, uuid.New(), UpdateQuotationRequest{Version: 1})
		assertServiceCode(t, err, "NOT_FOUND")
	})
}

func TestQuotationService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("send refuses an empty quotation", func(t *testing.T) {
		quotation := draftQuotation(t, orgID, false)
		repo := new(MockQuotationRepository)
		repo.On("FindByIDForOrg", ctx, orgID, quotation.ID).Return(quotation, nil)

		service := NewQuotationService(repo)
		_, err := service.Send(ctx, orgID, quotation.ID, VersionedRequest{Version: 1})
		assertServiceCode(t, err, "NO_ITEMS")
	})

	t.Run("approve then reject is closed", func(t *testing.T) {
		quotation := draftQuotation(t, orgID, true)
		require.NoError(t, quotation.Send())

		repo := new(MockQuotationRepository)
		repo.On("FindByIDForOrg", ctx, orgID, quotation.ID).Return(quotation, nil)
		repo.On("SaveWithLock", ctx, quotation).Return(nil)

		service := NewQuotationService(repo)
		response, err := service.Approve(ctx, orgID, quotation.ID, ApproveQuotationRequest{Version: quotation.GetVersion()})
		require.NoError(t, err)
		assert.Equal(t, "approved", response.Status)

		_, err = service.Reject(ctx, orgID, quotation.ID, RejectQuotationRequest{
			Reason:  "changed my mind",
			Version: quotation.GetVersion(),
		})
		assertServiceCode(t, err, "INVALID_STATE")
	})
}

func TestQuotationService_Duplicate(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	source := draftQuotation(t, orgID, true)
	require.NoError(t, source.Send())

	repo := new(MockQuotationRepository)
	repo.On("FindByIDForOrg", ctx, orgID, source.ID).Return(source, nil)
	repo.On("NextNumber", ctx, orgID, mock.Anything).Return("Q-2025-0002", nil)
	repo.On("Save", ctx, mock.AnythingOfType("*document.Quotation")).Return(nil)

	service := NewQuotationService(repo)
	duplicate, err := service.Duplicate(ctx, orgID, source.ID)
	require.NoError(t, err)

	assert.Equal(t, "Q-2025-0002", duplicate.Number)
	assert.Equal(t, "draft", duplicate.Status)
	assert.NotEqual(t, source.ID, duplicate.ID)
	require.Len(t, duplicate.Items, 1)
	assert.True(t, duplicate.Totals.Total.Equal(source.Totals.Total))
	repo.AssertExpectations(t)
}
