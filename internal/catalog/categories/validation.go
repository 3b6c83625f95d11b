package categories

import (
	"strings"

	"github.com/tienda-pos/tienda/internal/shared"
)

func validate(c Category) error {
	errs := shared.FieldErrors{}
	if strings.TrimSpace(c.Name) == "" {
		errs["name"] = "category name is required"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
