package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/storefront-tracking/internal/domains/orders/domain"
	"github.com/Apurer/storefront-tracking/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM. Deletes are soft.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle and schema.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// orderRecord maps the order aggregate to a relational table.
type orderRecord struct {
	ID              int64                              `gorm:"primaryKey;column:id"`
	Status          int                                `gorm:"column:status;not null;index"`
	PaymentStatus   int                                `gorm:"column:payment_status;not null"`
	Total           decimal.Decimal                    `gorm:"column:total;type:numeric(12,2);not null"`
	ShippingAddress datatypes.JSONType[domain.Address] `gorm:"column:shipping_address;type:jsonb"`
	ItemSKUs        pq.StringArray                     `gorm:"column:item_skus;type:text[]"`
	PlacedAt        time.Time                          `gorm:"column:placed_at;index"`
	CreatedAt       time.Time                          `gorm:"column:created_at"`
	UpdatedAt       time.Time                          `gorm:"column:updated_at"`
	DeletedAt       gorm.DeletedAt                     `gorm:"column:deleted_at;index"`
}

func (orderRecord) TableName() string { return "orders" }

// Save inserts or updates an order. Saving a deleted order restores it.
func (r *Repository) Save(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	if record.PlacedAt.IsZero() {
		record.PlacedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"status":           record.Status,
				"payment_status":   record.PaymentStatus,
				"total":            record.Total,
				"shipping_address": record.ShippingAddress,
				"item_skus":        record.ItemSKUs,
				"deleted_at":       nil,
				"updated_at":       gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches a live order by identifier.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Delete soft-deletes an order by identifier.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&orderRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// List returns all live orders.
func (r *Repository) List(ctx context.Context) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

// Exists reports whether a live order has the identifier.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&orderRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	return orderRecord{
		ID:              order.ID,
		Status:          int(order.Status),
		PaymentStatus:   int(order.PaymentStatus),
		Total:           order.Total,
		ShippingAddress: datatypes.NewJSONType(order.ShippingAddress),
		ItemSKUs:        pq.StringArray(order.ItemSKUs),
		PlacedAt:        order.PlacedAt,
	}
}

func (r orderRecord) toDomain() *domain.Order {
	return &domain.Order{
		ID:              r.ID,
		Status:          domain.Status(r.Status),
		PaymentStatus:   domain.PaymentStatus(r.PaymentStatus),
		Total:           r.Total,
		ShippingAddress: r.ShippingAddress.Data(),
		ItemSKUs:        []string(r.ItemSKUs),
		PlacedAt:        r.PlacedAt,
	}
}
