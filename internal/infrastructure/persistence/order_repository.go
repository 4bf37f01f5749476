package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/costerbox/backend/internal/domain/order"
	"github.com/costerbox/backend/internal/domain/shared"
	"github.com/costerbox/backend/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

var _ order.Repository = (*GormOrderRepository)(nil)

// FindByID finds an order by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderNumber finds an order by its public order number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("order_number = ?", orderNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByGatewayOrderID finds the order a gateway order was created for
func (r *GormOrderRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*order.Order, error) {
	var payment models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("gateway_order_id = ?", gatewayOrderID).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, payment.OrderID)
}

// FindAll finds orders with filtering
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).Preload("Items").Preload("Payments")
	query = r.applyFieldFilters(query, filter)
	if filter.Search != "" {
		query = query.Where("order_number ILIKE ? OR recipient_email ILIKE ?",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	return r.findAll(query, filter)
}

// FindByCustomer finds orders placed by a customer
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Preload("Items").Preload("Payments").
		Where("customer_id = ?", customerID)
	query = r.applyFieldFilters(query, filter)
	return r.findAll(query, filter)
}

// FindByArtisan finds commissioned orders assigned to an artisan
func (r *GormOrderRepository) FindByArtisan(ctx context.Context, artisanID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Preload("Items").Preload("Payments").
		Where("artisan_id = ?", artisanID)
	query = r.applyFieldFilters(query, filter)
	return r.findAll(query, filter)
}

// FindClaimable finds paid custom orders with no artisan assigned yet
func (r *GormOrderRepository) FindClaimable(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Preload("Items").Preload("Payments").
		Where("kind = ? AND status = ? AND artisan_id IS NULL",
			order.KindCustom, order.StatusPendingAcceptance)
	return r.findAll(query, filter)
}

func (r *GormOrderRepository) findAll(query *gorm.DB, filter shared.Filter) ([]order.Order, error) {
	var orderModels []models.OrderModel
	if err := applyFilter(query, filter, OrderSortFields).Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]order.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, nil
}

// applyFieldFilters narrows the query by the supported filter keys
func (r *GormOrderRepository) applyFieldFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if kind, ok := filter.Filters["kind"]; ok {
		query = query.Where("kind = ?", kind)
	}
	if flagged, ok := filter.Filters["flagged"]; ok {
		query = query.Where("flagged = ?", flagged)
	}
	return query
}

// Save creates or updates an order with its items and payments
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "Payments").Save(model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrDuplicateNumber
			}
			return err
		}
		return r.saveChildren(tx, model)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion := model.Version
		model.Version++
		model.UpdatedAt = time.Now()

		result := tx.Model(&models.OrderModel{}).
			Where("id = ? AND version = ?", model.ID, currentVersion).
			Omit("Items", "Payments").
			Select("*").
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		o.Version = model.Version
		return r.saveChildren(tx, model)
	})
}

// saveChildren upserts line items and payments. Items are immutable
// snapshots and payments are append-only, so stale rows are never removed.
func (r *GormOrderRepository) saveChildren(tx *gorm.DB, model *models.OrderModel) error {
	for i := range model.Items {
		model.Items[i].OrderID = model.ID
		if err := tx.Save(&model.Items[i]).Error; err != nil {
			return err
		}
	}
	for i := range model.Payments {
		model.Payments[i].OrderID = model.ID
		if err := tx.Save(&model.Payments[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// ClaimForArtisan atomically assigns a pending commissioned order to an
// artisan. The conditional update only matches while the order is still
// unclaimed, so concurrent claimants race on a single row and exactly one
// of them wins.
func (r *GormOrderRepository) ClaimForArtisan(ctx context.Context, orderID, artisanID uuid.UUID) (*order.Order, error) {
	now := time.Now()

	result := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("id = ? AND status = ? AND artisan_id IS NULL", orderID, order.StatusPendingAcceptance).
		Updates(map[string]interface{}{
			"artisan_id": artisanID,
			"claimed_at": now,
			"status":     order.StatusInProduction,
			"version":    gorm.Expr("version + 1"),
			"updated_at": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		// Distinguish a lost race from a missing order
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
			Where("id = ?", orderID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, shared.ErrNotFound
		}
		return nil, shared.ErrAlreadyClaimed
	}

	return r.FindByID(ctx, orderID)
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.OrderModel{})
	query = r.applyFieldFilters(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts orders by status
func (r *GormOrderRepository) CountByStatus(ctx context.Context, status order.Status) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateOrderNumber generates the next order number (CB-YYYY-NNNNN).
// The unique index on order_number catches the rare collision under
// concurrent checkouts; Save surfaces it as ErrDuplicateNumber and
// PlaceOrder regenerates before saving again.
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("CB-%d-", year)

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("order_number LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}
