package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appdoc "github.com/workshop/backend/internal/application/document"
	"github.com/workshop/backend/internal/domain/document"
	"github.com/workshop/backend/internal/domain/shared"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupDocumentTestDB creates an in-memory SQLite database with the document
// tables, including the unique indexes the numbering races rely on.
func setupDocumentTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	lineItemColumns := `
			service_id TEXT,
			product_id TEXT,
			description TEXT NOT NULL,
			quantity NUMERIC NOT NULL,
			unit_price NUMERIC NOT NULL,
			discount_percent NUMERIC NOT NULL DEFAULT 0,
			tax_percent NUMERIC NOT NULL DEFAULT 16,
			subtotal NUMERIC NOT NULL,
			discount_amount NUMERIC NOT NULL,
			tax_amount NUMERIC NOT NULL,
			total NUMERIC NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL`

	statements := []string{
		`CREATE TABLE quotations (
			id TEXT PRIMARY KEY,
			org_id TEXT NOT NULL,
			number TEXT NOT NULL,
			status TEXT NOT NULL,
			customer_id TEXT NOT NULL,
			vehicle_id TEXT,
			description TEXT,
			currency TEXT NOT NULL DEFAULT 'MXN',
			subtotal NUMERIC NOT NULL DEFAULT 0,
			discount_amount NUMERIC NOT NULL DEFAULT 0,
			tax_amount NUMERIC NOT NULL DEFAULT 0,
			total NUMERIC NOT NULL DEFAULT 0,
			valid_until DATETIME,
			reject_reason TEXT,
			converted_to_order INTEGER NOT NULL DEFAULT 0,
			order_id TEXT,
			sent_at DATETIME,
			approved_at DATETIME,
			rejected_at DATETIME,
			cancelled_at DATETIME,
			version INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE(org_id, number)
		)`,
		`CREATE TABLE quotation_items (
			id TEXT PRIMARY KEY,
			quotation_id TEXT NOT NULL,` + lineItemColumns + `
		)`,
		`CREATE TABLE work_orders (
			id TEXT PRIMARY KEY,
			org_id TEXT NOT NULL,
			number TEXT NOT NULL,
			status TEXT NOT NULL,
			customer_id TEXT NOT NULL,
			vehicle_id TEXT,
			description TEXT,
			currency TEXT NOT NULL DEFAULT 'MXN',
			quotation_id TEXT,
			subtotal NUMERIC NOT NULL DEFAULT 0,
			discount_amount NUMERIC NOT NULL DEFAULT 0,
			tax_amount NUMERIC NOT NULL DEFAULT 0,
			total NUMERIC NOT NULL DEFAULT 0,
			completed_at DATETIME,
			delivered_at DATETIME,
			version INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE(org_id, number)
		)`,
		`CREATE TABLE work_order_items (
			id TEXT PRIMARY KEY,
			work_order_id TEXT NOT NULL,` + lineItemColumns + `
		)`,
		`CREATE TABLE service_lines (
			id TEXT PRIMARY KEY,
			work_order_id TEXT NOT NULL,
			description TEXT NOT NULL,
			quantity NUMERIC NOT NULL,
			unit_price NUMERIC NOT NULL,
			total NUMERIC NOT NULL,
			notes TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE invoices (
			id TEXT PRIMARY KEY,
			org_id TEXT NOT NULL,
			number TEXT NOT NULL,
			status TEXT NOT NULL,
			customer_id TEXT NOT NULL,
			vehicle_id TEXT,
			work_order_id TEXT UNIQUE,
			line_source TEXT NOT NULL DEFAULT 'manual',
			notes TEXT,
			currency TEXT NOT NULL DEFAULT 'MXN',
			subtotal NUMERIC NOT NULL DEFAULT 0,
			discount_amount NUMERIC NOT NULL DEFAULT 0,
			tax_amount NUMERIC NOT NULL DEFAULT 0,
			total NUMERIC NOT NULL DEFAULT 0,
			due_date DATETIME,
			sent_at DATETIME,
			paid_date DATETIME,
			payment_method TEXT,
			payment_reference TEXT,
			payment_notes TEXT,
			cancelled_at DATETIME,
			version INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE(org_id, number)
		)`,
		`CREATE TABLE invoice_items (
			id TEXT PRIMARY KEY,
			invoice_id TEXT NOT NULL,` + lineItemColumns + `
		)`,
	}

	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return db
}

func newTestQuotation(t *testing.T, orgID uuid.UUID, number string) *document.Quotation {
	t.Helper()

	quotation, err := document.NewQuotation(orgID, number, uuid.New())
	require.NoError(t, err)

	_, err = quotation.AddItem(document.LineItemInput{
		Description: "Brake pad replacement",
		Quantity:    decimal.NewFromInt(2),
		UnitPrice:   decimal.NewFromInt(150),
		TaxPercent:  decimal.NewFromInt(16),
	})
	require.NoError(t, err)

	return quotation
}

// ============================================================================
// Quotation repository
// ============================================================================

func TestGormQuotationRepository_SaveAndFind(t *testing.T) {
	db := setupDocumentTestDB(t)
	repo := NewGormQuotationRepository(db)
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("round-trips a quotation with items", func(t *testing.T) {
		quotation := newTestQuotation(t, orgID, "Q-2026-0001")
		require.NoError(t, repo.Save(ctx, quotation))

		found, err := repo.FindByIDForOrg(ctx, orgID, quotation.ID)
		require.NoError(t, err)
		assert.Equal(t, "Q-2026-0001", found.Number)
		assert.Equal(t, document.QuotationStatusDraft, found.Status)
		require.Len(t, found.Items, 1)
		assert.True(t, found.Totals.Total.Equal(decimal.NewFromInt(348)))
	})

	t.Run("scopes lookups by org", func(t *testing.T) {
		quotation := newTestQuotation(t, orgID, "Q-2026-0002")
		require.NoError(t, repo.Save(ctx, quotation))

		_, err := repo.FindByIDForOrg(ctx, uuid.New(), quotation.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("returns not found for unknown id", func(t *testing.T) {
		_, err := repo.FindByIDForOrg(ctx, orgID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("removed items are deleted on save", func(t *testing.T) {
		quotation := newTestQuotation(t, orgID, "Q-2026-0003")
		_, err := quotation.AddItem(document.LineItemInput{
			Description: "Oil change",
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   decimal.NewFromInt(50),
		})
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, quotation))

		require.NoError(t, quotation.RemoveItem(quotation.Items[1].ID))
		require.NoError(t, repo.Save(ctx, quotation))

		found, err := repo.FindByIDForOrg(ctx, orgID, quotation.ID)
		require.NoError(t, err)
		assert.Len(t, found.Items, 1)
	})
}

func TestGormQuotationRepository_NextNumber(t *testing.T) {
	db := setupDocumentTestDB(t)
	repo := NewGormQuotationRepository(db)
	ctx := context.Background()
	orgID := uuid.New()
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	t.Run("starts at 0001 for an empty year", func(t *testing.T) {
		number, err := repo.NextNumber(ctx, orgID, now)
		require.NoError(t, err)
		assert.Equal(t, "Q-2026-0001", number)
	})

	t.Run("increments past the highest stored number", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, newTestQuotation(t, orgID, "Q-2026-0001")))
		require.NoError(t, repo.Save(ctx, newTestQuotation(t, orgID, "Q-2026-0007")))

		number, err := repo.NextNumber(ctx, orgID, now)
		require.NoError(t, err)
		assert.Equal(t, "Q-2026-0008", number)
	})

	t.Run("restarts per calendar year", func(t *testing.T) {
		number, err := repo.NextNumber(ctx, orgID, time.Date(2027, 1, 2, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, "Q-2027-0001", number)
	})

	t.Run("sequences are independent per org", func(t *testing.T) {
		number, err := repo.NextNumber(ctx, uuid.New(), now)
		require.NoError(t, err)
		assert.Equal(t, "Q-2026-0001", number)
	})
}

func TestGormQuotationRepository_DuplicateNumber(t *testing.T) {
	db := setupDocumentTestDB(t)
	repo := NewGormQuotationRepository(db)
	ctx := context.Background()
	orgID := uuid.New()
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	// Two writers compute the same next number; the unique index lets only
	// the first insert through and the loser sees ErrDuplicateNumber.
	first, err := repo.NextNumber(ctx, orgID, now)
	require.NoError(t, err)
	second, err := repo.NextNumber(ctx, orgID, now)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.NoError(t, repo.Save(ctx, newTestQuotation(t, orgID, first)))

	err = repo.Save(ctx, newTestQuotation(t, orgID, second))
	assert.ErrorIs(t, err, document.ErrDuplicateNumber)

	// Regenerating after the collision yields a fresh number that saves fine
	retry, err := repo.NextNumber(ctx, orgID, now)
	require.NoError(t, err)
	assert.NotEqual(t, first, retry)
	assert.NoError(t, repo.Save(ctx, newTestQuotation(t, orgID, retry)))
}

func TestGormQuotationRepository_SaveWithLock(t *testing.T) {
	db := setupDocumentTestDB(t)
	repo := NewGormQuotationRepository(db)
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("increments version on success", func(t *testing.T) {
		quotation := newTestQuotation(t, orgID, "Q-2026-0010")
		require.NoError(t, repo.Save(ctx, quotation))

		require.NoError(t, quotation.Send())
		require.NoError(t, repo.SaveWithLock(ctx, quotation))
		assert.Equal(t, 2, quotation.Version)

		found, err := repo.FindByIDForOrg(ctx, orgID, quotation.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, found.Version)
		assert.Equal(t, document.QuotationStatusSent, found.Status)
	})

	t.Run("rejects a stale version", func(t *testing.T) {
		quotation := newTestQuotation(t, orgID, "Q-2026-0011")
		require.NoError(t, repo.Save(ctx, quotation))

		stale, err := repo.FindByIDForOrg(ctx, orgID, quotation.ID)
		require.NoError(t, err)

		require.NoError(t, quotation.Send())
		require.NoError(t, repo.SaveWithLock(ctx, quotation))

		require.NoError(t, stale.Cancel())
		err = repo.SaveWithLock(ctx, stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("a vanished quotation reports not found", func(t *testing.T) {
		quotation := newTestQuotation(t, orgID, "Q-2026-0012")
		err := repo.SaveWithLock(ctx, quotation)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormQuotationRepository_Counts(t *testing.T) {
	db := setupDocumentTestDB(t)
	repo := NewGormQuotationRepository(db)
	ctx := context.Background()
	orgID := uuid.New()

	draft := newTestQuotation(t, orgID, "Q-2026-0001")
	require.NoError(t, repo.Save(ctx, draft))

	sent := newTestQuotation(t, orgID, "Q-2026-0002")
	require.NoError(t, sent.Send())
	require.NoError(t, repo.Save(ctx, sent))

	count, err := repo.CountByStatus(ctx, orgID, document.QuotationStatusSent)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	total, err := repo.CountForOrg(ctx, orgID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	filter := shared.DefaultFilter()
	filter.Filters["status"] = string(document.QuotationStatusDraft)
	quotations, err := repo.FindAllForOrg(ctx, orgID, filter)
	require.NoError(t, err)
	require.Len(t, quotations, 1)
	assert.Equal(t, draft.ID, quotations[0].ID)

	filter = shared.DefaultFilter()
	filter.Filters["statuses"] = []string{
		string(document.QuotationStatusDraft),
		string(document.QuotationStatusSent),
	}
	quotations, err = repo.FindAllForOrg(ctx, orgID, filter)
	require.NoError(t, err)
	assert.Len(t, quotations, 2)

	filter = shared.DefaultFilter()
	filter.Filters["statuses"] = []string{string(document.QuotationStatusCancelled)}
	quotations, err = repo.FindAllForOrg(ctx, orgID, filter)
	require.NoError(t, err)
	assert.Empty(t, quotations)
}

// ============================================================================
// Work order repository
// ============================================================================

func newTestWorkOrder(t *testing.T, orgID uuid.UUID, number string) *document.WorkOrder {
	t.Helper()

	order, err := document.NewWorkOrder(orgID, number, uuid.New())
	require.NoError(t, err)

	_, err = order.AddItem(document.LineItemInput{
		Description: "Suspension inspection",
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.NewFromInt(400),
	})
	require.NoError(t, err)

	return order
}

func TestGormWorkOrderRepository_SaveAndFind(t *testing.T) {
	db := setupDocumentTestDB(t)
	repo := NewGormWorkOrderRepository(db)
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("round-trips items and service lines", func(t *testing.T) {
		order := newTestWorkOrder(t, orgID, "WO-2026-0001")
		_, err := order.AddServiceLine("Wheel alignment", decimal.NewFromInt(1), decimal.NewFromInt(350), decimal.NewFromInt(350), "")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, order))

		found, err := repo.FindByIDForOrg(ctx, orgID, order.ID)
		require.NoError(t, err)
		assert.Equal(t, document.WorkOrderStatusPending, found.Status)
		require.Len(t, found.Items, 1)
		require.Len(t, found.ServiceLines, 1)
		assert.Equal(t, "Wheel alignment", found.ServiceLines[0].Description)
	})

	t.Run("duplicate number is reported", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, newTestWorkOrder(t, orgID, "WO-2026-0002")))
		err := repo.Save(ctx, newTestWorkOrder(t, orgID, "WO-2026-0002"))
		assert.ErrorIs(t, err, document.ErrDuplicateNumber)
	})

	t.Run("next number follows stored orders", func(t *testing.T) {
		number, err := repo.NextNumber(ctx, orgID, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, "WO-2026-0003", number)
	})
}

func TestGormWorkOrderRepository_SaveWithLock(t *testing.T) {
	db := setupDocumentTestDB(t)
	repo := NewGormWorkOrderRepository(db)
	ctx := context.Background()
	orgID := uuid.New()

	order := newTestWorkOrder(t, orgID, "WO-2026-0001")
	require.NoError(t, repo.Save(ctx, order))

	require.NoError(t, order.Advance())
	require.NoError(t, repo.SaveWithLock(ctx, order))
	assert.Equal(t, 2, order.Version)

	found, err := repo.FindByIDForOrg(ctx, orgID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, document.WorkOrderStatusInProgress, found.Status)
	assert.Equal(t, 2, found.Version)
}

// ============================================================================
// Invoice repository
// ============================================================================

func newTestInvoice(t *testing.T, orgID uuid.UUID, number string) *document.Invoice {
	t.Helper()

	invoice, err := document.NewInvoice(orgID, number, uuid.New(), document.LineSourceManual)
	require.NoError(t, err)

	_, err = invoice.AddItem(document.LineItemInput{
		Description: "Diagnostic fee",
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	return invoice
}

func TestGormInvoiceRepository_FindByWorkOrder(t *testing.T) {
	db := setupDocumentTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	orgID := uuid.New()
	workOrderID := uuid.New()

	t.Run("returns not found when no invoice references the order", func(t *testing.T) {
		_, err := repo.FindByWorkOrder(ctx, orgID, workOrderID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("finds the referencing invoice", func(t *testing.T) {
		invoice := newTestInvoice(t, orgID, "INV-2026-0001")
		invoice.WorkOrderID = &workOrderID
		require.NoError(t, repo.Save(ctx, invoice))

		found, err := repo.FindByWorkOrder(ctx, orgID, workOrderID)
		require.NoError(t, err)
		assert.Equal(t, invoice.ID, found.ID)
	})

	t.Run("a second invoice for the same order is rejected", func(t *testing.T) {
		invoice := newTestInvoice(t, orgID, "INV-2026-0002")
		invoice.WorkOrderID = &workOrderID
		err := repo.Save(ctx, invoice)
		assert.Error(t, err)
	})
}

func TestGormInvoiceRepository_Filters(t *testing.T) {
	db := setupDocumentTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	orgID := uuid.New()
	workOrderID := uuid.New()
	now := time.Now()

	pastDue := now.Add(-24 * time.Hour)
	futureDue := now.Add(240 * time.Hour)

	billed := newTestInvoice(t, orgID, "INV-2026-0001")
	billed.WorkOrderID = &workOrderID
	require.NoError(t, billed.Send(&pastDue))
	require.NoError(t, repo.Save(ctx, billed))

	direct := newTestInvoice(t, orgID, "INV-2026-0002")
	require.NoError(t, direct.Send(&futureDue))
	require.NoError(t, repo.Save(ctx, direct))

	t.Run("by work order", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["work_order_id"] = workOrderID
		invoices, err := repo.FindAllForOrg(ctx, orgID, filter)
		require.NoError(t, err)
		require.Len(t, invoices, 1)
		assert.Equal(t, billed.ID, invoices[0].ID)
	})

	t.Run("by due date cutoff", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["due_before"] = now
		invoices, err := repo.FindAllForOrg(ctx, orgID, filter)
		require.NoError(t, err)
		require.Len(t, invoices, 1)
		assert.Equal(t, billed.ID, invoices[0].ID)
	})

	t.Run("by status set", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["statuses"] = []string{
			string(document.InvoiceStatusSent),
			string(document.InvoiceStatusOverdue),
		}
		invoices, err := repo.FindAllForOrg(ctx, orgID, filter)
		require.NoError(t, err)
		assert.Len(t, invoices, 2)
	})
}

func TestGormInvoiceRepository_SumTotalByStatus(t *testing.T) {
	db := setupDocumentTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	orgID := uuid.New()

	paid := newTestInvoice(t, orgID, "INV-2026-0001")
	require.NoError(t, paid.Send(nil))
	require.NoError(t, paid.MarkPaid("cash", nil, "", ""))
	require.NoError(t, repo.Save(ctx, paid))

	sent := newTestInvoice(t, orgID, "INV-2026-0002")
	require.NoError(t, sent.Send(nil))
	require.NoError(t, repo.Save(ctx, sent))

	sum, err := repo.SumTotalByStatus(ctx, orgID, document.InvoiceStatusPaid)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(580)), "expected 580, got %s", sum)

	empty, err := repo.SumTotalByStatus(ctx, orgID, document.InvoiceStatusOverdue)
	require.NoError(t, err)
	assert.True(t, empty.IsZero())
}

func TestGormInvoiceRepository_MarkOverdue(t *testing.T) {
	db := setupDocumentTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	orgID := uuid.New()
	now := time.Now()

	pastDue := now.Add(-48 * time.Hour)
	futureDue := now.Add(72 * time.Hour)

	lapsed := newTestInvoice(t, orgID, "INV-2026-0001")
	require.NoError(t, lapsed.Send(&pastDue))
	require.NoError(t, repo.Save(ctx, lapsed))

	current := newTestInvoice(t, orgID, "INV-2026-0002")
	require.NoError(t, current.Send(&futureDue))
	require.NoError(t, repo.Save(ctx, current))

	draft := newTestInvoice(t, orgID, "INV-2026-0003")
	draft.DueDate = &pastDue
	require.NoError(t, repo.Save(ctx, draft))

	affected, err := repo.MarkOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	found, err := repo.FindByIDForOrg(ctx, orgID, lapsed.ID)
	require.NoError(t, err)
	assert.Equal(t, document.InvoiceStatusOverdue, found.Status)
	assert.Equal(t, lapsed.Version+1, found.Version)

	untouched, err := repo.FindByIDForOrg(ctx, orgID, current.ID)
	require.NoError(t, err)
	assert.Equal(t, document.InvoiceStatusSent, untouched.Status)

	// A second sweep finds nothing left to flip
	affected, err = repo.MarkOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

// ============================================================================
// Transaction scope
// ============================================================================

func TestGormTransactionScope(t *testing.T) {
	t.Run("commits all writes on success", func(t *testing.T) {
		db := setupDocumentTestDB(t)
		scope := NewGormTransactionScope(db)
		ctx := context.Background()
		orgID := uuid.New()

		quotation := newTestQuotation(t, orgID, "Q-2026-0001")
		order := newTestWorkOrder(t, orgID, "WO-2026-0001")

		err := scope.Execute(ctx, func(repos appdoc.TransactionalRepositories) error {
			if err := repos.QuotationRepo().Save(ctx, quotation); err != nil {
				return err
			}
			return repos.WorkOrderRepo().Save(ctx, order)
		})
		require.NoError(t, err)

		_, err = NewGormQuotationRepository(db).FindByIDForOrg(ctx, orgID, quotation.ID)
		assert.NoError(t, err)
		_, err = NewGormWorkOrderRepository(db).FindByIDForOrg(ctx, orgID, order.ID)
		assert.NoError(t, err)
	})

	t.Run("rolls back earlier writes when a later step fails", func(t *testing.T) {
		db := setupDocumentTestDB(t)
		scope := NewGormTransactionScope(db)
		ctx := context.Background()
		orgID := uuid.New()

		order := newTestWorkOrder(t, orgID, "WO-2026-0001")

		err := scope.Execute(ctx, func(repos appdoc.TransactionalRepositories) error {
			if err := repos.WorkOrderRepo().Save(ctx, order); err != nil {
				return err
			}
			// Colliding number forces the failure after the first write
			return repos.WorkOrderRepo().Save(ctx, newTestWorkOrder(t, orgID, "WO-2026-0001"))
		})
		require.ErrorIs(t, err, document.ErrDuplicateNumber)

		_, err = NewGormWorkOrderRepository(db).FindByIDForOrg(ctx, orgID, order.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
