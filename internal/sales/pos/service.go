package pos

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/tienda-pos/tienda/internal/money"
	"github.com/tienda-pos/tienda/internal/observability"
	"github.com/tienda-pos/tienda/internal/shared"
)

// AuditPort abstracts audit logging for recorded sales.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ReceiptEnqueuer schedules a receipt email for a completed sale.
// Enqueue failures must not fail the sale; they are logged and dropped.
type ReceiptEnqueuer interface {
	EnqueueReceipt(ctx context.Context, saleID int64) error
}

type Service struct {
	logger   *slog.Logger
	repo     Repository
	audit    AuditPort
	receipts ReceiptEnqueuer
	metrics  *observability.Metrics
}

func NewService(logger *slog.Logger, repo Repository, audit AuditPort, receipts ReceiptEnqueuer, metrics *observability.Metrics) *Service {
	return &Service{logger: logger, repo: repo, audit: audit, receipts: receipts, metrics: metrics}
}

func (s *Service) Get(ctx context.Context, id int64) (*Sale, error) {
	if id <= 0 {
		return nil, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, page, limit int) ([]Sale, int, error) {
	return s.repo.List(ctx, page, limit)
}

// Create records a completed sale atomically: every product row is locked,
// stock is verified and decremented, and the invoice number is allocated,
// all inside one transaction. Any failure rolls the whole sale back.
//
// Totals follow the register rule: each line subtotal is price times
// quantity rounded to 2 decimals, the discount is subtracted from the
// summed subtotal, tax is 12% of that taxable amount, and the grand total
// is taxable plus tax.
func (s *Service) Create(ctx context.Context, req CreateSaleRequest, userID int64) (*Sale, error) {
	discount, err := money.Parse(req.Discount)
	if err != nil {
		return nil, shared.FieldErrors{"discount": "discount must be a non-negative decimal"}
	}
	if !PaymentMethod(req.PaymentMethod).Valid() {
		return nil, shared.FieldErrors{"payment_method": "payment method must be cash, card or transfer"}
	}
	if len(req.Items) == 0 {
		return nil, shared.FieldErrors{"items": "at least one item is required"}
	}
	for i, line := range req.Items {
		if line.ProductID <= 0 || line.Quantity < 1 {
			return nil, shared.FieldErrors{"items": "item " + strconv.Itoa(i+1) + " has an invalid product or quantity"}
		}
	}

	var saleID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		subtotal := decimal.Zero
		items := make([]SaleItem, 0, len(req.Items))
		for _, line := range req.Items {
			product, err := tx.LockProduct(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if product.Stock < line.Quantity {
				return &shared.InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   line.Quantity,
					Available:   product.Stock,
				}
			}
			lineSubtotal := money.Round2(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			subtotal = subtotal.Add(lineSubtotal)
			items = append(items, SaleItem{
				ProductID: product.ID,
				Quantity:  line.Quantity,
				Price:     product.Price,
				Subtotal:  lineSubtotal,
			})
		}

		if discount.GreaterThan(subtotal) {
			return shared.FieldErrors{"discount": "discount cannot exceed the subtotal"}
		}
		taxable := subtotal.Sub(discount)
		tax := money.Tax(taxable)
		total := money.Round2(taxable.Add(tax))

		invoice, err := tx.NextInvoiceNumber(ctx)
		if err != nil {
			return err
		}

		saleID, err = tx.InsertSale(ctx, Sale{
			InvoiceNumber: invoice,
			CustomerID:    req.CustomerID,
			UserID:        userID,
			Subtotal:      money.Round2(subtotal),
			Tax:           tax,
			Discount:      money.Round2(discount),
			Total:         total,
			Status:        SaleStatusCompleted,
			PaymentMethod: PaymentMethod(req.PaymentMethod),
			Notes:         req.Notes,
		})
		if err != nil {
			return err
		}
		if err := tx.InsertItems(ctx, saleID, items); err != nil {
			return err
		}
		for _, item := range items {
			if err := tx.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sale, err := s.repo.Get(ctx, saleID)
	if err != nil {
		return nil, err
	}

	s.metrics.SaleRecorded()

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  userID,
			Action:   "sales:sale:create",
			Entity:   "sale",
			EntityID: strconv.FormatInt(sale.ID, 10),
			Meta:     map[string]any{"invoice": sale.InvoiceNumber, "total": sale.Total.StringFixed(2)},
		})
	}
	if s.receipts != nil && sale.CustomerID != nil {
		if err := s.receipts.EnqueueReceipt(ctx, sale.ID); err != nil {
			s.logger.Warn("enqueue receipt failed",
				slog.Int64("sale_id", sale.ID), slog.Any("error", err))
		}
	}
	return sale, nil
}
