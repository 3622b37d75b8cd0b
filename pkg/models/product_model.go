package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/meridianlabs/backoffice/pkg"
)

// Product maps to table `products`
type Product struct {
	ID          uuid.UUID
	SKU         string
	Name        string
	Description string
	PriceCents  int64
	Stock       int
	Status      pkg.ProductStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
