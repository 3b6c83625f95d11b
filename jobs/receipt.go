package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/tienda-pos/tienda/internal/money"
	"github.com/tienda-pos/tienda/internal/sales/customers"
	"github.com/tienda-pos/tienda/internal/sales/pos"
)

// SaleReader loads a persisted sale with its items.
type SaleReader interface {
	Get(ctx context.Context, id int64) (*pos.Sale, error)
}

// CustomerReader resolves the customer a receipt is addressed to.
type CustomerReader interface {
	Get(ctx context.Context, id int64) (customers.Customer, error)
}

// MailSender delivers a composed message. The default implementation only
// logs; SMTP delivery slots in behind the same interface.
type MailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailSender logs outgoing mail instead of delivering it.
type LogMailSender struct {
	Logger *slog.Logger
}

func (s LogMailSender) Send(_ context.Context, to, subject, _ string) error {
	s.Logger.Info("send mail", slog.String("to", to), slog.String("subject", subject))
	return nil
}

// SaleReceiptJob renders and sends the receipt email for a completed sale.
type SaleReceiptJob struct {
	sales     SaleReader
	customers CustomerReader
	mailer    MailSender
	logger    *slog.Logger
}

func NewSaleReceiptJob(sales SaleReader, custs CustomerReader, mailer MailSender, logger *slog.Logger) *SaleReceiptJob {
	return &SaleReceiptJob{sales: sales, customers: custs, mailer: mailer, logger: logger}
}

// Handle processes TaskTypeSaleReceipt tasks. Sales without a customer or
// without a customer email are skipped without retrying.
func (j *SaleReceiptJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SaleReceiptPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	sale, err := j.sales.Get(ctx, payload.SaleID)
	if err != nil {
		return fmt.Errorf("load sale %d: %w", payload.SaleID, err)
	}
	if sale.CustomerID == nil {
		j.logger.Info("receipt skipped, anonymous sale", slog.Int64("sale_id", sale.ID))
		return nil
	}

	customer, err := j.customers.Get(ctx, *sale.CustomerID)
	if err != nil {
		return fmt.Errorf("load customer %d: %w", *sale.CustomerID, err)
	}
	if customer.Email == nil || *customer.Email == "" {
		j.logger.Info("receipt skipped, customer has no email", slog.Int64("sale_id", sale.ID))
		return nil
	}

	subject := "Receipt " + sale.InvoiceNumber
	if err := j.mailer.Send(ctx, *customer.Email, subject, receiptBody(sale, customer.Name)); err != nil {
		return fmt.Errorf("send receipt for sale %d: %w", sale.ID, err)
	}
	j.logger.Info("receipt sent", slog.Int64("sale_id", sale.ID), slog.String("invoice", sale.InvoiceNumber))
	return nil
}

func receiptBody(sale *pos.Sale, customerName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nThank you for your purchase. Invoice %s\n\n", customerName, sale.InvoiceNumber)
	for _, item := range sale.Items {
		fmt.Fprintf(&b, "  %d x %s @ %s = %s\n", item.Quantity, item.ProductName, money.Format(item.Price), money.Format(item.Subtotal))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\n", money.Format(sale.Subtotal))
	if !sale.Discount.IsZero() {
		fmt.Fprintf(&b, "Discount: -%s\n", money.Format(sale.Discount))
	}
	fmt.Fprintf(&b, "Tax: %s\nTotal: %s\n", money.Format(sale.Tax), money.Format(sale.Total))
	return b.String()
}
