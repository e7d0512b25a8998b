package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Orders must exist before shipment steps reference them.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&orderRecord{},
		&shipmentStepRecord{},
	)
}

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID              int64                       `gorm:"primaryKey;column:id"`
	Status          int                         `gorm:"column:status;not null;index"`
	PaymentStatus   int                         `gorm:"column:payment_status;not null"`
	Total           decimal.Decimal             `gorm:"column:total;type:numeric(12,2);not null"`
	ShippingAddress datatypes.JSONType[address] `gorm:"column:shipping_address;type:jsonb"`
	ItemSKUs        pq.StringArray              `gorm:"column:item_skus;type:text[]"`
	PlacedAt        time.Time                   `gorm:"column:placed_at;index"`
	CreatedAt       time.Time                   `gorm:"column:created_at"`
	UpdatedAt       time.Time                   `gorm:"column:updated_at"`
	DeletedAt       gorm.DeletedAt              `gorm:"column:deleted_at;index"`
}

func (orderRecord) TableName() string { return "orders" }

type address struct {
	Recipient  string `json:"recipient"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// Shipment step schema mirrors the shipping Postgres adapter. Hard-deleting an order removes its route.
type shipmentStepRecord struct {
	ID                int64               `gorm:"primaryKey;column:id"`
	OrderID           int64               `gorm:"column:order_id;not null;index:idx_shipment_steps_order_position"`
	Order             orderRecord         `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
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

func (shipmentStepRecord) TableName() string { return "shipment_steps" }
