package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	todayTotal decimal.Decimal
	monthTotal decimal.Decimal
	lowStock   int
	products   int
	recent     []RecentSale
	top        []TopProduct

	calls   atomic.Int32
	release chan struct{}

	mu        sync.Mutex
	sinceArgs []time.Time
}

func (r *memoryRepo) SalesTotalSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	if r.release != nil {
		<-r.release
	}
	if err := ctx.Err(); err != nil {
		return decimal.Decimal{}, err
	}
	r.calls.Add(1)
	r.mu.Lock()
	r.sinceArgs = append(r.sinceArgs, since)
	r.mu.Unlock()
	if since.Day() == 1 && since.Hour() == 0 {
		return r.monthTotal, nil
	}
	return r.todayTotal, nil
}

func (r *memoryRepo) LowStockCount(context.Context) (int, error) { return r.lowStock, nil }
func (r *memoryRepo) ProductCount(context.Context) (int, error)  { return r.products, nil }

func (r *memoryRepo) RecentSales(_ context.Context, limit int) ([]RecentSale, error) {
	if len(r.recent) > limit {
		return r.recent[:limit], nil
	}
	return r.recent, nil
}

func (r *memoryRepo) TopProducts(_ context.Context, limit int) ([]TopProduct, error) {
	if len(r.top) > limit {
		return r.top[:limit], nil
	}
	return r.top, nil
}

func TestSummaryAggregates(t *testing.T) {
	repo := &memoryRepo{
		todayTotal: decimal.RequireFromString("33.60"),
		monthTotal: decimal.RequireFromString("1234.50"),
		lowStock:   2,
		products:   40,
		recent: []RecentSale{
			{ID: 6, InvoiceNumber: "INV-000006"},
			{ID: 5, InvoiceNumber: "INV-000005"},
		},
		top: []TopProduct{
			{ProductID: 1, ProductName: "Keyboard", QuantitySold: 12},
			{ProductID: 9, ProductName: "Webcam", QuantitySold: 0},
		},
	}
	svc := NewService(repo)
	svc.now = func() time.Time {
		return time.Date(2026, time.August, 28, 15, 4, 5, 0, time.UTC)
	}

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	require.Equal(t, "33.60", summary.TodaySales.StringFixed(2))
	require.Equal(t, "33.60", summary.TodaySalesLabel)
	require.Equal(t, "1234.50", summary.MonthSales.StringFixed(2))
	require.Equal(t, "1,234.50", summary.MonthSalesLabel)
	require.Equal(t, 2, summary.LowStockCount)
	require.Equal(t, 40, summary.ProductCount)
	require.Len(t, summary.RecentSales, 2)
	require.Len(t, summary.TopProducts, 2)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.Equal(t, time.Date(2026, time.August, 28, 0, 0, 0, 0, time.UTC), repo.sinceArgs[0])
	require.Equal(t, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), repo.sinceArgs[1])
}

func TestSummaryCollapsesConcurrentCalls(t *testing.T) {
	repo := &memoryRepo{
		todayTotal: decimal.Zero,
		monthTotal: decimal.Zero,
		release:    make(chan struct{}),
	}
	svc := NewService(repo)

	const callers = 8
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Summary(context.Background())
			errs <- err
		}()
	}
	close(start)
	time.Sleep(20 * time.Millisecond)
	close(repo.release)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// one shared build: two SalesTotalSince calls, not two per caller
	require.Equal(t, int32(2), repo.calls.Load())
}

func TestSummarySurvivesCancelledLeader(t *testing.T) {
	repo := &memoryRepo{
		todayTotal: decimal.RequireFromString("33.60"),
		monthTotal: decimal.RequireFromString("33.60"),
	}
	svc := NewService(repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, "33.60", summary.TodaySales.StringFixed(2))
}
