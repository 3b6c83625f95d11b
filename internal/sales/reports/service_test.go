package reports

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tienda-pos/tienda/internal/shared"
)

type memoryRepo struct {
	rows []Row

	gotStart *time.Time
	gotEnd   *time.Time
}

func (r *memoryRepo) SalesBetween(_ context.Context, start, end *time.Time) ([]Row, error) {
	r.gotStart, r.gotEnd = start, end
	return r.rows, nil
}

func row(id int64, total string, itemCount int) Row {
	return Row{
		SaleID:    id,
		Total:     decimal.RequireFromString(total),
		ItemCount: itemCount,
	}
}

func TestBuildAggregates(t *testing.T) {
	repo := &memoryRepo{rows: []Row{
		row(2, "33.60", 3),
		row(1, "100.80", 2),
	}}
	svc := NewService(repo)

	report, err := svc.Build(context.Background(), "", "")
	require.NoError(t, err)

	require.Len(t, report.Sales, 2)
	require.Equal(t, "134.40", report.TotalSales.StringFixed(2))
	require.Equal(t, "134.40", report.TotalSalesLabel)
	require.Equal(t, 5, report.TotalItems)
	require.Nil(t, report.StartDate)
	require.Nil(t, report.EndDate)
	require.Nil(t, repo.gotStart)
	require.Nil(t, repo.gotEnd)
}

func TestBuildPassesBounds(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)

	report, err := svc.Build(context.Background(), "2026-08-01", "2026-08-28")
	require.NoError(t, err)

	require.NotNil(t, repo.gotStart)
	require.NotNil(t, repo.gotEnd)
	require.Equal(t, "2026-08-01", repo.gotStart.Format("2006-01-02"))
	require.Equal(t, "2026-08-28", repo.gotEnd.Format("2006-01-02"))
	require.Equal(t, "2026-08-01", *report.StartDate)
	require.Equal(t, "0.00", report.TotalSales.StringFixed(2))
	require.Zero(t, report.TotalItems)
}

func TestBuildRejectsMalformedDate(t *testing.T) {
	svc := NewService(&memoryRepo{})

	_, err := svc.Build(context.Background(), "08/01/2026", "")
	var fields shared.FieldErrors
	require.ErrorAs(t, err, &fields)
	require.Contains(t, fields, "start_date")
}

func TestBuildRejectsInvertedRange(t *testing.T) {
	svc := NewService(&memoryRepo{})

	_, err := svc.Build(context.Background(), "2026-08-28", "2026-08-01")
	var fields shared.FieldErrors
	require.ErrorAs(t, err, &fields)
	require.Contains(t, fields, "start_date")
}
