package products

// ProductForm carries product fields for create and update requests.
// Monetary amounts arrive as decimal strings to avoid float parsing.
type ProductForm struct {
	Code        string  `json:"code" validate:"required,max=64"`
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description,omitempty"`
	Price       string  `json:"price" validate:"required"`
	Cost        string  `json:"cost" validate:"required"`
	Stock       int     `json:"stock" validate:"gte=0"`
	MinStock    *int    `json:"min_stock,omitempty" validate:"omitempty,gte=0"`
	CategoryID  int64   `json:"category_id" validate:"required,gt=0"`
	Active      bool    `json:"active"`
}
