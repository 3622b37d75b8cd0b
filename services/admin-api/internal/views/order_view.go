package views

import (
	"time"

	"github.com/meridianlabs/backoffice/pkg/models"
)

type OrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING PAID SHIPPED DELIVERED CANCELLED"`
}

type OrderItemView struct {
	ID         string `json:"id"`
	ProductID  string `json:"productId"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"priceCents"`
}

type OrderView struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	Status     string          `json:"status"`
	TotalCents int64           `json:"totalCents"`
	Items      []OrderItemView `json:"items,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

type OrderListView struct {
	Orders []OrderView `json:"orders"`
	Total  int         `json:"total"`
	Page   int         `json:"page"`
	Size   int         `json:"size"`
}

func NewOrderView(o models.Order) OrderView {
	v := OrderView{
		ID:         o.ID.String(),
		UserID:     o.UserID.String(),
		Status:     string(o.Status),
		TotalCents: o.TotalCents,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
	for _, item := range o.Items {
		v.Items = append(v.Items, OrderItemView{
			ID:         item.ID.String(),
			ProductID:  item.ProductID.String(),
			Quantity:   item.Quantity,
			PriceCents: item.PriceCents,
		})
	}
	return v
}
