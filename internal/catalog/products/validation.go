package products

import (
	"strings"

	"github.com/tienda-pos/tienda/internal/shared"
)

func validateFields(p Product) error {
	errs := shared.FieldErrors{}
	if strings.TrimSpace(p.Code) == "" {
		errs["code"] = "product code is required"
	}
	if strings.TrimSpace(p.Name) == "" {
		errs["name"] = "product name is required"
	}
	if p.Price.IsNegative() {
		errs["price"] = "price must not be negative"
	}
	if p.Cost.IsNegative() {
		errs["cost"] = "cost must not be negative"
	}
	if p.Stock < 0 {
		errs["stock"] = "stock must not be negative"
	}
	if p.MinStock < 0 {
		errs["min_stock"] = "min_stock must not be negative"
	}
	if p.CategoryID <= 0 {
		errs["category_id"] = "category is required"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
