package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/workshop/backend/internal/domain/document"
	"github.com/workshop/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements document.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByIDForOrg finds an invoice by ID within an org
func (r *GormInvoiceRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*document.Invoice, error) {
	var invoice document.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("org_id = ? AND id = ?", orgID, id).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByWorkOrder finds the invoice referencing a work order, if any.
// The unique index on work_order_id keeps the result single-valued.
func (r *GormInvoiceRepository) FindByWorkOrder(ctx context.Context, orgID, workOrderID uuid.UUID) (*document.Invoice, error) {
	var invoice document.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("org_id = ? AND work_order_id = ?", orgID, workOrderID).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindAllForOrg finds all invoices for an org with filtering
func (r *GormInvoiceRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]document.Invoice, error) {
	var invoices []document.Invoice
	query := applyInvoiceFilter(
		r.db.WithContext(ctx).Model(&document.Invoice{}).Preload("Items").Where("org_id = ?", orgID),
		filter,
	)

	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// CountForOrg counts invoices for an org with optional filters
func (r *GormInvoiceRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&document.Invoice{}).Where("org_id = ?", orgID)
	query = applyInvoiceFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts invoices by status for an org
func (r *GormInvoiceRepository) CountByStatus(ctx context.Context, orgID uuid.UUID, status document.InvoiceStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&document.Invoice{}).
		Where("org_id = ? AND status = ?", orgID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumTotalByStatus sums invoice totals by status for an org
func (r *GormInvoiceRepository) SumTotalByStatus(ctx context.Context, orgID uuid.UUID, status document.InvoiceStatus) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := r.db.WithContext(ctx).
		Model(&document.Invoice{}).
		Where("org_id = ? AND status = ?", orgID, status).
		Select("COALESCE(SUM(total), 0)").
		Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// NextNumber computes the next invoice number for the org and year.
// Format: INV-YYYY-NNNN (e.g. INV-2026-0001).
func (r *GormInvoiceRepository) NextNumber(ctx context.Context, orgID uuid.UUID, now time.Time) (string, error) {
	return nextDocumentNumber(ctx, r.db, &document.Invoice{}, orgID, document.TypeInvoice, now)
}

// Save creates or updates an invoice together with its items
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *document.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(invoice).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return document.ErrDuplicateNumber
			}
			return err
		}

		return saveInvoiceItems(tx, invoice)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *document.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		versionRead := tx.Model(&document.Invoice{}).
			Where("id = ?", invoice.ID).
			Select("version").
			Scan(&currentVersion)
		if versionRead.Error != nil {
			return versionRead.Error
		}
		// Scan reports zero rows through RowsAffected, not ErrRecordNotFound
		if versionRead.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		if currentVersion != invoice.Version {
			return shared.ErrConcurrencyConflict
		}

		invoice.Version++
		invoice.UpdatedAt = time.Now()

		result := tx.Model(&document.Invoice{}).
			Where("id = ? AND version = ?", invoice.ID, currentVersion).
			Updates(map[string]interface{}{
				"status":            invoice.Status,
				"customer_id":       invoice.CustomerID,
				"vehicle_id":        invoice.VehicleID,
				"work_order_id":     invoice.WorkOrderID,
				"line_source":       invoice.LineSource,
				"notes":             invoice.Notes,
				"currency":          invoice.Currency,
				"subtotal":          invoice.Totals.Subtotal,
				"discount_amount":   invoice.Totals.DiscountAmount,
				"tax_amount":        invoice.Totals.TaxAmount,
				"total":             invoice.Totals.Total,
				"due_date":          invoice.DueDate,
				"sent_at":           invoice.SentAt,
				"paid_date":         invoice.PaidDate,
				"payment_method":    invoice.PaymentMethod,
				"payment_reference": invoice.PaymentReference,
				"payment_notes":     invoice.PaymentNotes,
				"cancelled_at":      invoice.CancelledAt,
				"version":           invoice.Version,
				"updated_at":        invoice.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return saveInvoiceItems(tx, invoice)
	})
}

// MarkOverdue flips every sent invoice past its due date to overdue in one
// UPDATE. Versions advance with the status so optimistic locking still holds
// for callers that loaded an invoice before the sweep.
func (r *GormInvoiceRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&document.Invoice{}).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", document.InvoiceStatusSent, now).
		Updates(map[string]interface{}{
			"status":     document.InvoiceStatusOverdue,
			"version":    gorm.Expr("version + 1"),
			"updated_at": now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// saveInvoiceItems deletes removed lines and upserts the remaining ones
func saveInvoiceItems(tx *gorm.DB, invoice *document.Invoice) error {
	currentItemIDs := make([]uuid.UUID, len(invoice.Items))
	for i, item := range invoice.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("invoice_id = ? AND id NOT IN ?", invoice.ID, currentItemIDs).
			Delete(&document.InvoiceItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("invoice_id = ?", invoice.ID).
			Delete(&document.InvoiceItem{}).Error; err != nil {
			return err
		}
	}

	for i := range invoice.Items {
		invoice.Items[i].InvoiceID = invoice.ID
		if err := tx.Save(&invoice.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// applyInvoiceFilter is the invoice variant of applyDocumentFilter; invoices
// carry notes instead of a description column.
func applyInvoiceFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applyInvoiceFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if filter.OrderDir == "desc" || filter.OrderDir == "DESC" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyInvoiceFilterWithoutPagination applies search and field filters
func applyInvoiceFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("number ILIKE ? OR notes ILIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "vehicle_id":
			query = query.Where("vehicle_id = ?", value)
		case "work_order_id":
			query = query.Where("work_order_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "due_before":
			if t, ok := value.(time.Time); ok {
				query = query.Where("due_date < ?", t)
			}
		}
	}

	return query
}
