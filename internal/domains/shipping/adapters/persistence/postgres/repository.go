package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Apurer/storefront-tracking/internal/domains/shipping/domain"
	"github.com/Apurer/storefront-tracking/internal/domains/shipping/ports"
)

var _ ports.Repository = (*Repository)(nil)

// pgForeignKeyViolation is the SQLSTATE raised when a step references a missing order.
const pgForeignKeyViolation = "23503"

// Repository persists shipment steps in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle and schema.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// stepRecord maps a shipment step to the shipment_steps table.
type stepRecord struct {
	ID                int64               `gorm:"primaryKey;column:id"`
	OrderID           int64               `gorm:"column:order_id;not null;index:idx_shipment_steps_order_position"`
	Position          int                 `gorm:"column:position;not null;index:idx_shipment_steps_order_position"`
	LocationName      string              `gorm:"column:location_name;not null"`
	StatusDescription *string             `gorm:"column:status_description"`
	Latitude          decimal.NullDecimal `gorm:"column:latitude;type:decimal(10,7)"`
	Longitude         decimal.NullDecimal `gorm:"column:longitude;type:decimal(10,7)"`
	IsReached         bool                `gorm:"column:is_reached;not null;default:false"`
	ReachedAt         *time.Time          `gorm:"column:reached_at"`
	EstimatedArrival  *time.Time          `gorm:"column:estimated_arrival"`
	CreatedAt         time.Time           `gorm:"column:created_at"`
	UpdatedAt         time.Time           `gorm:"column:updated_at"`
}

func (stepRecord) TableName() string { return "shipment_steps" }

// ReplaceRoute deletes the order's current steps and inserts the new ones in one transaction.
func (r *Repository) ReplaceRoute(ctx context.Context, orderID int64, steps []domain.ShipmentStep) ([]domain.ShipmentStep, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	records := make([]stepRecord, 0, len(steps))
	for i := range steps {
		rec := toRecord(&steps[i])
		rec.ID = 0
		rec.OrderID = orderID
		records = append(records, rec)
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockOrder(tx, orderID); err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", orderID).Delete(&stepRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Create(&records).Error
	})
	if err != nil {
		return nil, mapError(err)
	}
	saved := make([]domain.ShipmentStep, 0, len(records))
	for i := range records {
		saved = append(saved, records[i].toDomain())
	}
	return saved, nil
}

// ListByOrder returns the order's steps sorted by position.
func (r *Repository) ListByOrder(ctx context.Context, orderID int64) ([]domain.ShipmentStep, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []stepRecord
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("position ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	route := make([]domain.ShipmentStep, 0, len(records))
	for i := range records {
		route = append(route, records[i].toDomain())
	}
	return route, nil
}

// GetByID fetches a step by identifier.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.ShipmentStep, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record stepRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	step := record.toDomain()
	return &step, nil
}

// Save overwrites the mutable columns of an existing step.
func (r *Repository) Save(ctx context.Context, step *domain.ShipmentStep) (*domain.ShipmentStep, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if step == nil {
		return nil, errors.New("shipment step is nil")
	}
	rec := toRecord(step)
	result := r.db.WithContext(ctx).
		Model(&stepRecord{}).
		Where("id = ?", step.ID).
		Updates(map[string]any{
			"position":           rec.Position,
			"location_name":      rec.LocationName,
			"status_description": rec.StatusDescription,
			"latitude":           rec.Latitude,
			"longitude":          rec.Longitude,
			"is_reached":         rec.IsReached,
			"reached_at":         rec.ReachedAt,
			"estimated_arrival":  rec.EstimatedArrival,
			"updated_at":         gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, step.ID)
}

// Delete removes a step by identifier.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&stepRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// AdvanceNext serializes advancement per order with a transaction-scoped advisory lock,
// then reaches the lowest-position unreached step.
func (r *Repository) AdvanceNext(ctx context.Context, orderID int64, reachedAt time.Time) (*domain.ShipmentStep, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var advanced *domain.ShipmentStep
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockOrder(tx, orderID); err != nil {
			return err
		}
		var record stepRecord
		err := tx.Where("order_id = ? AND is_reached = ?", orderID, false).
			Order("position ASC, id ASC").
			First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		result := tx.Model(&stepRecord{}).
			Where("id = ? AND is_reached = ?", record.ID, false).
			Updates(map[string]any{
				"is_reached": true,
				"reached_at": reachedAt,
				"updated_at": gorm.Expr("NOW()"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		record.IsReached = true
		at := reachedAt
		record.ReachedAt = &at
		step := record.toDomain()
		advanced = &step
		return nil
	})
	if err != nil {
		return nil, err
	}
	return advanced, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres shipment repository not configured")
	}
	return nil
}

func lockOrder(tx *gorm.DB, orderID int64) error {
	return tx.Exec("SELECT pg_advisory_xact_lock(?)", orderID).Error
}

func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return ports.ErrOrderNotFound
	}
	return err
}

func toRecord(step *domain.ShipmentStep) stepRecord {
	return stepRecord{
		ID:                step.ID,
		OrderID:           step.OrderID,
		Position:          step.Position,
		LocationName:      step.LocationName,
		StatusDescription: step.StatusDescription,
		Latitude:          step.Latitude,
		Longitude:         step.Longitude,
		IsReached:         step.IsReached,
		ReachedAt:         step.ReachedAt,
		EstimatedArrival:  step.EstimatedArrival,
	}
}

func (r stepRecord) toDomain() domain.ShipmentStep {
	return domain.ShipmentStep{
		ID:                r.ID,
		OrderID:           r.OrderID,
		Position:          r.Position,
		LocationName:      r.LocationName,
		StatusDescription: r.StatusDescription,
		Latitude:          r.Latitude,
		Longitude:         r.Longitude,
		IsReached:         r.IsReached,
		ReachedAt:         r.ReachedAt,
		EstimatedArrival:  r.EstimatedArrival,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}
