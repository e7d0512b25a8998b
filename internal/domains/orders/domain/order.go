package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates order progression. Values are persisted as integers.
type Status int

const (
	StatusPending Status = iota
	StatusProcessing
	StatusShipped
	StatusDelivered
	StatusCancelled
)

// PaymentStatus enumerates the payment lifecycle of an order.
type PaymentStatus int

const (
	PaymentUnpaid PaymentStatus = iota
	PaymentPaid
	PaymentRefunded
	PaymentFailed
)

var (
	ErrInvalidStatus        = errors.New("order status is invalid")
	ErrInvalidPaymentStatus = errors.New("order payment status is invalid")
	ErrNegativeTotal        = errors.New("order total must not be negative")
	ErrMissingRecipient     = errors.New("shipping address requires a recipient name")
)

var statusNames = map[Status]string{
	StatusPending:    "pending",
	StatusProcessing: "processing",
	StatusShipped:    "shipped",
	StatusDelivered:  "delivered",
	StatusCancelled:  "cancelled",
}

var paymentStatusNames = map[PaymentStatus]string{
	PaymentUnpaid:   "unpaid",
	PaymentPaid:     "paid",
	PaymentRefunded: "refunded",
	PaymentFailed:   "failed",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether the status is a known value.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

func (p PaymentStatus) String() string {
	if name, ok := paymentStatusNames[p]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether the payment status is a known value.
func (p PaymentStatus) Valid() bool {
	_, ok := paymentStatusNames[p]
	return ok
}

// Address is the shipping address captured at checkout.
type Address struct {
	Recipient  string `json:"recipient"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// Order models the checkout aggregate that owns a shipment route.
type Order struct {
	ID              int64
	Status          Status
	PaymentStatus   PaymentStatus
	Total           decimal.Decimal
	ShippingAddress Address
	ItemSKUs        []string
	PlacedAt        time.Time
	DeletedAt       *time.Time
}

// NewOrder validates and constructs a pending, unpaid order.
func NewOrder(id int64, total decimal.Decimal, address Address, skus []string, placedAt time.Time) (*Order, error) {
	order := &Order{
		ID:              id,
		Status:          StatusPending,
		PaymentStatus:   PaymentUnpaid,
		Total:           total,
		ShippingAddress: address,
		ItemSKUs:        append([]string(nil), skus...),
		PlacedAt:        placedAt,
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if o.Total.IsNegative() {
		return ErrNegativeTotal
	}
	if !o.Status.Valid() {
		return ErrInvalidStatus
	}
	if !o.PaymentStatus.Valid() {
		return ErrInvalidPaymentStatus
	}
	if strings.TrimSpace(o.ShippingAddress.Recipient) == "" {
		return ErrMissingRecipient
	}
	return nil
}

// UpdateStatus moves the order to a known status.
func (o *Order) UpdateStatus(status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	o.Status = status
	return nil
}

// UpdatePaymentStatus records a payment transition.
func (o *Order) UpdatePaymentStatus(status PaymentStatus) error {
	if !status.Valid() {
		return ErrInvalidPaymentStatus
	}
	o.PaymentStatus = status
	return nil
}

// Clone returns a deep copy.
func (o Order) Clone() Order {
	clone := o
	clone.ItemSKUs = append([]string(nil), o.ItemSKUs...)
	if o.DeletedAt != nil {
		v := *o.DeletedAt
		clone.DeletedAt = &v
	}
	return clone
}
