package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/workshop/backend/internal/domain/document"
	"github.com/workshop/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormWorkOrderRepository implements document.WorkOrderRepository using GORM
type GormWorkOrderRepository struct {
	db *gorm.DB
}

// NewGormWorkOrderRepository creates a new GormWorkOrderRepository
func NewGormWorkOrderRepository(db *gorm.DB) *GormWorkOrderRepository {
	return &GormWorkOrderRepository{db: db}
}

// FindByIDForOrg finds a work order by ID within an org
func (r *GormWorkOrderRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*document.WorkOrder, error) {
	var order document.WorkOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("ServiceLines").
		Where("org_id = ? AND id = ?", orgID, id).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAllForOrg finds all work orders for an org with filtering
func (r *GormWorkOrderRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]document.WorkOrder, error) {
	var orders []document.WorkOrder
	query := applyDocumentFilter(
		r.db.WithContext(ctx).Model(&document.WorkOrder{}).
			Preload("Items").
			Preload("ServiceLines").
			Where("org_id = ?", orgID),
		filter,
	)

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// CountForOrg counts work orders for an org with optional filters
func (r *GormWorkOrderRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&document.WorkOrder{}).Where("org_id = ?", orgID)
	query = applyDocumentFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts work orders by status for an org
func (r *GormWorkOrderRepository) CountByStatus(ctx context.Context, orgID uuid.UUID, status document.WorkOrderStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&document.WorkOrder{}).
		Where("org_id = ? AND status = ?", orgID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextNumber computes the next work order number for the org and year.
// Format: WO-YYYY-NNNN (e.g. WO-2026-0001).
func (r *GormWorkOrderRepository) NextNumber(ctx context.Context, orgID uuid.UUID, now time.Time) (string, error) {
	return nextDocumentNumber(ctx, r.db, &document.WorkOrder{}, orgID, document.TypeWorkOrder, now)
}

// Save creates or updates a work order with its items and service lines
func (r *GormWorkOrderRepository) Save(ctx context.Context, order *document.WorkOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(order).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return document.ErrDuplicateNumber
			}
			return err
		}

		return saveWorkOrderChildren(tx, order)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormWorkOrderRepository) SaveWithLock(ctx context.Context, order *document.WorkOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		versionRead := tx.Model(&document.WorkOrder{}).
			Where("id = ?", order.ID).
			Select("version").
			Scan(&currentVersion)
		if versionRead.Error != nil {
			return versionRead.Error
		}
		// Scan reports zero rows through RowsAffected, not ErrRecordNotFound
		if versionRead.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		if currentVersion != order.Version {
			return shared.ErrConcurrencyConflict
		}

		order.Version++
		order.UpdatedAt = time.Now()

		result := tx.Model(&document.WorkOrder{}).
			Where("id = ? AND version = ?", order.ID, currentVersion).
			Updates(map[string]interface{}{
				"status":          order.Status,
				"customer_id":     order.CustomerID,
				"vehicle_id":      order.VehicleID,
				"description":     order.Description,
				"currency":        order.Currency,
				"quotation_id":    order.QuotationID,
				"subtotal":        order.Totals.Subtotal,
				"discount_amount": order.Totals.DiscountAmount,
				"tax_amount":      order.Totals.TaxAmount,
				"total":           order.Totals.Total,
				"completed_at":    order.CompletedAt,
				"delivered_at":    order.DeliveredAt,
				"version":         order.Version,
				"updated_at":      order.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return saveWorkOrderChildren(tx, order)
	})
}

// saveWorkOrderChildren reconciles items and service lines with the database
func saveWorkOrderChildren(tx *gorm.DB, order *document.WorkOrder) error {
	currentItemIDs := make([]uuid.UUID, len(order.Items))
	for i, item := range order.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("work_order_id = ? AND id NOT IN ?", order.ID, currentItemIDs).
			Delete(&document.WorkOrderItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("work_order_id = ?", order.ID).
			Delete(&document.WorkOrderItem{}).Error; err != nil {
			return err
		}
	}

	for i := range order.Items {
		order.Items[i].WorkOrderID = order.ID
		if err := tx.Save(&order.Items[i]).Error; err != nil {
			return err
		}
	}

	currentLineIDs := make([]uuid.UUID, len(order.ServiceLines))
	for i, line := range order.ServiceLines {
		currentLineIDs[i] = line.ID
	}

	if len(currentLineIDs) > 0 {
		if err := tx.Where("work_order_id = ? AND id NOT IN ?", order.ID, currentLineIDs).
			Delete(&document.ServiceLine{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("work_order_id = ?", order.ID).
			Delete(&document.ServiceLine{}).Error; err != nil {
			return err
		}
	}

	for i := range order.ServiceLines {
		order.ServiceLines[i].WorkOrderID = order.ID
		if err := tx.Save(&order.ServiceLines[i]).Error; err != nil {
			return err
		}
	}

	return nil
}
