package pos

// CreateSaleRequest is the cart submitted to record a sale.
type CreateSaleRequest struct {
	CustomerID    *int64            `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	Items         []SaleLineRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash card transfer"`
	Discount      string            `json:"discount,omitempty"`
	Notes         *string           `json:"notes,omitempty"`
}

// SaleLineRequest is one requested (product, quantity) pair.
type SaleLineRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}
