package views

import (
	"time"

	"github.com/meridianlabs/backoffice/pkg"
	"github.com/meridianlabs/backoffice/pkg/models"
)

type ProductRequest struct {
	SKU         string `json:"sku" binding:"required,min=3,max=64"`
	Name        string `json:"name" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"max=2000"`
	PriceCents  int64  `json:"priceCents" binding:"required,gt=0"`
	Stock       int    `json:"stock" binding:"gte=0"`
	Status      string `json:"status" binding:"omitempty,oneof=ACTIVE ARCHIVED"`
}

type StockAdjustRequest struct {
	Delta int `json:"delta" binding:"required"`
}

type ProductView struct {
	ID          string    `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"priceCents"`
	Stock       int       `json:"stock"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ProductListView struct {
	Products []ProductView `json:"products"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	Size     int           `json:"size"`
}

func NewProductView(p models.Product) ProductView {
	return ProductView{
		ID:          p.ID.String(),
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Stock:       p.Stock,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (r ProductRequest) StatusOrDefault() pkg.ProductStatus {
	if r.Status == "" {
		return pkg.ProductStatusActive
	}
	return pkg.ProductStatus(r.Status)
}
