// Package shared holds listing helpers common to the catalog packages.
package shared

// ListFilters represents standard list page filters.
type ListFilters struct {
	Page       int
	Limit      int
	Search     string
	SortBy     string
	SortDir    string
	IsActive   *bool
	CategoryID *int64
}

const (
	// DefaultPage is the first page of a listing.
	DefaultPage = 1
	// DefaultLimit matches the product listing page size.
	DefaultLimit = 15

	SortAsc  = "asc"
	SortDesc = "desc"
)

// Offset converts page/limit into a row offset.
func (f ListFilters) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}
