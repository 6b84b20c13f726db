package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/workshop/backend/internal/domain/document"
	"github.com/workshop/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormQuotationRepository implements document.QuotationRepository using GORM
type GormQuotationRepository struct {
	db *gorm.DB
}

// NewGormQuotationRepository creates a new GormQuotationRepository
func NewGormQuotationRepository(db *gorm.DB) *GormQuotationRepository {
	return &GormQuotationRepository{db: db}
}

// FindByIDForOrg finds a quotation by ID within an org
func (r *GormQuotationRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*document.Quotation, error) {
	var quotation document.Quotation
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("org_id = ? AND id = ?", orgID, id).
		First(&quotation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &quotation, nil
}

// FindAllForOrg finds all quotations for an org with filtering
func (r *GormQuotationRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]document.Quotation, error) {
	var quotations []document.Quotation
	query := applyDocumentFilter(
		r.db.WithContext(ctx).Model(&document.Quotation{}).Preload("Items").Where("org_id = ?", orgID),
		filter,
	)

	if err := query.Find(&quotations).Error; err != nil {
		return nil, err
	}
	return quotations, nil
}

// CountForOrg counts quotations for an org with optional filters
func (r *GormQuotationRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&document.Quotation{}).Where("org_id = ?", orgID)
	query = applyDocumentFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts quotations by status for an org
func (r *GormQuotationRepository) CountByStatus(ctx context.Context, orgID uuid.UUID, status document.QuotationStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&document.Quotation{}).
		Where("org_id = ? AND status = ?", orgID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextNumber computes the next quotation number for the org and year.
// Format: Q-YYYY-NNNN (e.g. Q-2026-0001). The unique index on
// (org_id, number) catches concurrent winners at Save time.
func (r *GormQuotationRepository) NextNumber(ctx context.Context, orgID uuid.UUID, now time.Time) (string, error) {
	return nextDocumentNumber(ctx, r.db, &document.Quotation{}, orgID, document.TypeQuotation, now)
}

// Save creates or updates a quotation together with its items
func (r *GormQuotationRepository) Save(ctx context.Context, quotation *document.Quotation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(quotation).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return document.ErrDuplicateNumber
			}
			return err
		}

		return saveQuotationItems(tx, quotation)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormQuotationRepository) SaveWithLock(ctx context.Context, quotation *document.Quotation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		versionRead := tx.Model(&document.Quotation{}).
			Where("id = ?", quotation.ID).
			Select("version").
			Scan(&currentVersion)
		if versionRead.Error != nil {
			return versionRead.Error
		}
		// Scan reports zero rows through RowsAffected, not ErrRecordNotFound
		if versionRead.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		if currentVersion != quotation.Version {
			return shared.ErrConcurrencyConflict
		}

		quotation.Version++
		quotation.UpdatedAt = time.Now()

		result := tx.Model(&document.Quotation{}).
			Where("id = ? AND version = ?", quotation.ID, currentVersion).
			Updates(map[string]interface{}{
				"status":             quotation.Status,
				"customer_id":        quotation.CustomerID,
				"vehicle_id":         quotation.VehicleID,
				"description":        quotation.Description,
				"currency":           quotation.Currency,
				"subtotal":           quotation.Totals.Subtotal,
				"discount_amount":    quotation.Totals.DiscountAmount,
				"tax_amount":         quotation.Totals.TaxAmount,
				"total":              quotation.Totals.Total,
				"valid_until":        quotation.ValidUntil,
				"reject_reason":      quotation.RejectReason,
				"converted_to_order": quotation.ConvertedToOrder,
				"order_id":           quotation.OrderID,
				"sent_at":            quotation.SentAt,
				"approved_at":        quotation.ApprovedAt,
				"rejected_at":        quotation.RejectedAt,
				"cancelled_at":       quotation.CancelledAt,
				"version":            quotation.Version,
				"updated_at":         quotation.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return saveQuotationItems(tx, quotation)
	})
}

// saveQuotationItems deletes removed lines and upserts the remaining ones
func saveQuotationItems(tx *gorm.DB, quotation *document.Quotation) error {
	currentItemIDs := make([]uuid.UUID, len(quotation.Items))
	for i, item := range quotation.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("quotation_id = ? AND id NOT IN ?", quotation.ID, currentItemIDs).
			Delete(&document.QuotationItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("quotation_id = ?", quotation.ID).
			Delete(&document.QuotationItem{}).Error; err != nil {
			return err
		}
	}

	for i := range quotation.Items {
		quotation.Items[i].QuotationID = quotation.ID
		if err := tx.Save(&quotation.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// nextDocumentNumber reads the highest number with the year prefix for the
// org and returns the next one in sequence. Shared by all three document
// repositories.
func nextDocumentNumber(ctx context.Context, db *gorm.DB, model interface{}, orgID uuid.UUID, docType document.Type, now time.Time) (string, error) {
	year := document.YearOf(now)
	prefix := document.NumberPrefix(docType, year)

	var lastNumber string
	err := db.WithContext(ctx).
		Model(model).
		Where("org_id = ? AND number LIKE ?", orgID, prefix+"%").
		Order("number DESC").
		Limit(1).
		Pluck("number", &lastNumber).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	nextSeq := 1
	if lastNumber != "" {
		nextSeq = document.SequenceFromNumber(lastNumber) + 1
	}

	return document.FormatNumber(docType, year, nextSeq), nil
}

// applyDocumentFilter applies filter options including pagination
func applyDocumentFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applyDocumentFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyDocumentFilterWithoutPagination applies search and field filters
func applyDocumentFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("number ILIKE ? OR description ILIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "vehicle_id":
			query = query.Where("vehicle_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}
