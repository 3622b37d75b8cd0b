package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/meridianlabs/backoffice/pkg"
)

// Order maps to table `orders`
type Order struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Status     pkg.OrderStatus
	TotalCents int64
	Items      []OrderItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderItem maps to table `order_items`
type OrderItem struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	ProductID  uuid.UUID
	Quantity   int
	PriceCents int64
}
