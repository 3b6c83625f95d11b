package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// RecentSale is a compact sale row for the dashboard feed.
type RecentSale struct {
	ID            int64           `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerName  *string         `json:"customer_name,omitempty"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TopProduct ranks a product by lifetime quantity sold. Products never sold
// rank last with a zero quantity.
type TopProduct struct {
	ProductID    int64  `json:"product_id"`
	ProductName  string `json:"product_name"`
	QuantitySold int    `json:"quantity_sold"`
}

type Repository interface {
	SalesTotalSince(ctx context.Context, since time.Time) (decimal.Decimal, error)
	LowStockCount(ctx context.Context) (int, error)
	ProductCount(ctx context.Context) (int, error)
	RecentSales(ctx context.Context, limit int) ([]RecentSale, error)
	TopProducts(ctx context.Context, limit int) ([]TopProduct, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) SalesTotalSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var total string
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(total), 0)::text FROM sales WHERE created_at >= $1`, since,
	).Scan(&total)
	if err != nil {
		return decimal.Decimal{}, err
	}
	d, err := decimal.NewFromString(total)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("dashboard: parse sales total: %w", err)
	}
	return d, nil
}

func (r *repository) LowStockCount(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE stock <= min_stock`).Scan(&n)
	return n, err
}

func (r *repository) ProductCount(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}

func (r *repository) RecentSales(ctx context.Context, limit int) ([]RecentSale, error) {
	rows, err := r.db.Query(ctx,
		`SELECT s.id, s.invoice_number, c.name, s.total::text, s.created_at
		 FROM sales s LEFT JOIN customers c ON c.id = s.customer_id
		 ORDER BY s.created_at DESC, s.id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []RecentSale
	for rows.Next() {
		var s RecentSale
		var total string
		if err := rows.Scan(&s.ID, &s.InvoiceNumber, &s.CustomerName, &total, &s.CreatedAt); err != nil {
			return nil, err
		}
		if s.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("dashboard: parse sale total: %w", err)
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

func (r *repository) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	rows, err := r.db.Query(ctx,
		`SELECT p.id, p.name, COALESCE(SUM(i.quantity), 0)
		 FROM products p LEFT JOIN sale_items i ON i.product_id = p.id
		 GROUP BY p.id, p.name
		 ORDER BY COALESCE(SUM(i.quantity), 0) DESC, p.id ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []TopProduct
	for rows.Next() {
		var p TopProduct
		if err := rows.Scan(&p.ProductID, &p.ProductName, &p.QuantitySold); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
