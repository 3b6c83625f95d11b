package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/tienda-pos/tienda/internal/money"
)

// Summary is the dashboard payload, recomputed on every request.
type Summary struct {
	TodaySales      decimal.Decimal `json:"today_sales"`
	TodaySalesLabel string          `json:"today_sales_label"`
	MonthSales      decimal.Decimal `json:"month_sales"`
	MonthSalesLabel string          `json:"month_sales_label"`
	LowStockCount   int             `json:"low_stock_count"`
	ProductCount    int             `json:"product_count"`
	RecentSales     []RecentSale    `json:"recent_sales"`
	TopProducts     []TopProduct    `json:"top_products"`
	GeneratedAt     time.Time       `json:"generated_at"`
}

const (
	recentSalesLimit = 5
	topProductsLimit = 5
	buildTimeout     = 10 * time.Second
)

type Service struct {
	repo  Repository
	now   func() time.Time
	group singleflight.Group
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Summary computes the dashboard aggregate. Concurrent callers share a
// single computation through the singleflight group; nothing is cached
// beyond the in-flight call. The build runs on a context detached from
// the leading caller so one cancelled request cannot fail the followers
// sharing its flight.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	v, err, _ := s.group.Do("summary", func() (interface{}, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), buildTimeout)
		defer cancel()
		return s.build(buildCtx)
	})
	if err != nil {
		return Summary{}, err
	}
	return v.(Summary), nil
}

func (s *Service) build(ctx context.Context) (Summary, error) {
	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	today, err := s.repo.SalesTotalSince(ctx, startOfDay)
	if err != nil {
		return Summary{}, err
	}
	month, err := s.repo.SalesTotalSince(ctx, startOfMonth)
	if err != nil {
		return Summary{}, err
	}
	lowStock, err := s.repo.LowStockCount(ctx)
	if err != nil {
		return Summary{}, err
	}
	productCount, err := s.repo.ProductCount(ctx)
	if err != nil {
		return Summary{}, err
	}
	recent, err := s.repo.RecentSales(ctx, recentSalesLimit)
	if err != nil {
		return Summary{}, err
	}
	top, err := s.repo.TopProducts(ctx, topProductsLimit)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		TodaySales:      money.Round2(today),
		TodaySalesLabel: money.Format(today),
		MonthSales:      money.Round2(month),
		MonthSalesLabel: money.Format(month),
		LowStockCount:   lowStock,
		ProductCount:    productCount,
		RecentSales:     recent,
		TopProducts:     top,
		GeneratedAt:     now,
	}, nil
}
