package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSaleReceipt emails a receipt for a completed sale.
	TaskTypeSaleReceipt = "sales:receipt"
	// TaskTypeLowStockScan scans the catalog for products at or below
	// their minimum stock.
	TaskTypeLowStockScan = "catalog:lowstock-scan"
)

// SaleReceiptPayload identifies the sale whose receipt should be sent.
type SaleReceiptPayload struct {
	SaleID int64 `json:"sale_id"`
}

// NewSaleReceiptTask constructs the receipt task for a sale.
func NewSaleReceiptTask(payload SaleReceiptPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSaleReceipt, data), nil
}

// NewLowStockScanTask constructs the periodic low-stock scan task.
func NewLowStockScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeLowStockScan, nil)
}
