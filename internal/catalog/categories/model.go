package categories

import "time"

// Category groups products. Deleting a category cascades to its products
// (ON DELETE CASCADE on products.category_id).
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
