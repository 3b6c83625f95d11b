package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tienda-pos/tienda/internal/sales/customers"
	"github.com/tienda-pos/tienda/internal/sales/pos"
)

type fakeSales struct {
	sale *pos.Sale
}

func (f *fakeSales) Get(context.Context, int64) (*pos.Sale, error) { return f.sale, nil }

type fakeCustomers struct {
	customer customers.Customer
}

func (f *fakeCustomers) Get(context.Context, int64) (customers.Customer, error) {
	return f.customer, nil
}

type captureMailer struct {
	to, subject, body string
	sent              bool
}

func (m *captureMailer) Send(_ context.Context, to, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	m.sent = true
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSaleReceiptJobSendsMail(t *testing.T) {
	customerID := int64(3)
	email := "ana@tienda.test"
	sale := &pos.Sale{
		ID:            1,
		InvoiceNumber: "INV-000001",
		CustomerID:    &customerID,
		Subtotal:      decimal.RequireFromString("30.00"),
		Tax:           decimal.RequireFromString("3.60"),
		Discount:      decimal.Zero,
		Total:         decimal.RequireFromString("33.60"),
		Items: []pos.SaleItem{
			{ProductName: "Keyboard", Quantity: 3, Price: decimal.RequireFromString("10.00"), Subtotal: decimal.RequireFromString("30.00")},
		},
	}
	mailer := &captureMailer{}
	job := NewSaleReceiptJob(
		&fakeSales{sale: sale},
		&fakeCustomers{customer: customers.Customer{ID: customerID, Name: "Ana", Email: &email}},
		mailer,
		discardLogger(),
	)

	task, err := NewSaleReceiptTask(SaleReceiptPayload{SaleID: 1})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.True(t, mailer.sent)
	require.Equal(t, email, mailer.to)
	require.Equal(t, "Receipt INV-000001", mailer.subject)
	require.Contains(t, mailer.body, "3 x Keyboard")
	require.Contains(t, mailer.body, "Total: 33.60")
}

func TestSaleReceiptJobSkipsAnonymousSale(t *testing.T) {
	mailer := &captureMailer{}
	job := NewSaleReceiptJob(
		&fakeSales{sale: &pos.Sale{ID: 2, InvoiceNumber: "INV-000002"}},
		&fakeCustomers{},
		mailer,
		discardLogger(),
	)

	task, err := NewSaleReceiptTask(SaleReceiptPayload{SaleID: 2})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.False(t, mailer.sent)
}
