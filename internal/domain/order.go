package domain

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type OrderLine struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type Order struct {
	ID       int64           `json:"id"`
	UserID   int64           `json:"user_id"`
	Total    decimal.Decimal `json:"total"`
	Status   OrderStatus     `json:"status"`
	Products []OrderLine     `json:"products"`
}

func (o Order) EntityID() int64 { return o.ID }
