package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	URLImage    string          `json:"url_image"`
}

func (p Product) EntityID() int64 { return p.ID }

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (c Category) EntityID() int64 { return c.ID }

// CategoryProduct links a product to a category. Admin screens edit these
// through the same generic store as every other collection.
type CategoryProduct struct {
	ID         int64 `json:"id"`
	CategoryID int64 `json:"category_id"`
	ProductID  int64 `json:"product_id"`
}

func (cp CategoryProduct) EntityID() int64 { return cp.ID }
