package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/tienda-pos/tienda/internal/catalog/products"
	"github.com/tienda-pos/tienda/internal/observability"
)

// LowStockLister lists products at or below their minimum stock.
type LowStockLister interface {
	ListLowStock(ctx context.Context) ([]products.WithCategory, error)
}

// LowStockScanJob periodically inventories products running low and
// publishes the count as a gauge.
type LowStockScanJob struct {
	catalog LowStockLister
	metrics *observability.Metrics
	logger  *slog.Logger
}

func NewLowStockScanJob(catalog LowStockLister, metrics *observability.Metrics, logger *slog.Logger) *LowStockScanJob {
	return &LowStockScanJob{catalog: catalog, metrics: metrics, logger: logger}
}

// Handle processes TaskTypeLowStockScan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, _ *asynq.Task) error {
	low, err := j.catalog.ListLowStock(ctx)
	if err != nil {
		return fmt.Errorf("list low stock: %w", err)
	}

	j.metrics.SetLowStockCount(len(low))
	for _, p := range low {
		j.logger.Warn("product low on stock",
			slog.Int64("product_id", p.ID),
			slog.String("code", p.Code),
			slog.Int("stock", p.Stock),
			slog.Int("min_stock", p.MinStock))
	}
	j.logger.Info("low stock scan complete", slog.Int("count", len(low)))
	return nil
}
