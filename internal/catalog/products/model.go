package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalog item. Price and cost are numeric(12,2)
// columns; stock is an integer that only completed sales decrement.
type Product struct {
	ID          int64           `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	Stock       int             `json:"stock"`
	MinStock    int             `json:"min_stock"`
	CategoryID  int64           `json:"category_id"`
	Image       *string         `json:"image,omitempty"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// WithCategory joins the product with its category name for listings.
type WithCategory struct {
	Product
	CategoryName string `json:"category_name"`
}

// IsLowStock reports whether the product is at or below its minimum stock.
func (p Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}

// DefaultMinStock is applied when a product is created without a threshold.
const DefaultMinStock = 5
