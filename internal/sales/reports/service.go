package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tienda-pos/tienda/internal/money"
	"github.com/tienda-pos/tienda/internal/shared"
)

// Report is the aggregated view over a date range.
type Report struct {
	Sales           []Row           `json:"sales"`
	TotalSales      decimal.Decimal `json:"total_sales"`
	TotalSalesLabel string          `json:"total_sales_label"`
	TotalItems      int             `json:"total_items"`
	StartDate       *string         `json:"start_date,omitempty"`
	EndDate         *string         `json:"end_date,omitempty"`
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

const dateLayout = "2006-01-02"

// Build aggregates sales within the inclusive date range. Empty bounds leave
// the range open on that side; a start after the end is rejected.
func (s *Service) Build(ctx context.Context, startDate, endDate string) (Report, error) {
	start, err := parseDate(startDate, "start_date")
	if err != nil {
		return Report{}, err
	}
	end, err := parseDate(endDate, "end_date")
	if err != nil {
		return Report{}, err
	}
	if start != nil && end != nil && start.After(*end) {
		return Report{}, shared.FieldErrors{"start_date": "start date must not be after end date"}
	}

	rows, err := s.repo.SalesBetween(ctx, start, end)
	if err != nil {
		return Report{}, err
	}

	report := Report{Sales: rows, TotalSales: decimal.Zero}
	if startDate != "" {
		report.StartDate = &startDate
	}
	if endDate != "" {
		report.EndDate = &endDate
	}
	for _, row := range rows {
		report.TotalSales = report.TotalSales.Add(row.Total)
		report.TotalItems += row.ItemCount
	}
	report.TotalSales = money.Round2(report.TotalSales)
	report.TotalSalesLabel = money.Format(report.TotalSales)
	return report, nil
}

func parseDate(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, shared.FieldErrors{field: "date must be formatted YYYY-MM-DD"}
	}
	return &t, nil
}
