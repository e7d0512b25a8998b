package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	orderdomain "github.com/Apurer/storefront-tracking/internal/domains/orders/domain"
)

// Address represents the transport shape of a shipping address.
type Address struct {
	Recipient  string `json:"recipient" binding:"required"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// PlaceOrderRequest is the checkout payload.
type PlaceOrderRequest struct {
	ID              int64           `json:"id"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress Address         `json:"shippingAddress" binding:"required"`
	ItemSKUs        []string        `json:"itemSkus"`
}

// StatusRequest carries a numeric status transition.
type StatusRequest struct {
	Status *int `json:"status" binding:"required"`
}

// Order represents the transport-layer shape of an order.
type Order struct {
	ID                int64           `json:"id"`
	Status            int             `json:"status"`
	StatusName        string          `json:"statusName"`
	PaymentStatus     int             `json:"paymentStatus"`
	PaymentStatusName string          `json:"paymentStatusName"`
	Total             decimal.Decimal `json:"total"`
	ShippingAddress   Address         `json:"shippingAddress"`
	ItemSKUs          []string        `json:"itemSkus"`
	PlacedAt          time.Time       `json:"placedAt"`
}

// ToDomainOrder converts a checkout payload into a pending order.
func ToDomainOrder(req PlaceOrderRequest, placedAt time.Time) (*orderdomain.Order, error) {
	return orderdomain.NewOrder(req.ID, req.Total, orderdomain.Address(req.ShippingAddress), req.ItemSKUs, placedAt)
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *orderdomain.Order) Order {
	if order == nil {
		return Order{}
	}
	skus := order.ItemSKUs
	if skus == nil {
		skus = []string{}
	}
	return Order{
		ID:                order.ID,
		Status:            int(order.Status),
		StatusName:        order.Status.String(),
		PaymentStatus:     int(order.PaymentStatus),
		PaymentStatusName: order.PaymentStatus.String(),
		Total:             order.Total,
		ShippingAddress:   Address(order.ShippingAddress),
		ItemSKUs:          skus,
		PlacedAt:          order.PlacedAt,
	}
}

// FromDomainOrders converts a list of orders.
func FromDomainOrders(orders []*orderdomain.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, FromDomainOrder(order))
	}
	return result
}
