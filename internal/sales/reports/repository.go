package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Row is one sale in a report, flattened with its customer name.
type Row struct {
	SaleID        int64           `json:"sale_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerName  *string         `json:"customer_name,omitempty"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"item_count"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []Item          `json:"items"`
}

// Item is one sold line within a report row.
type Item struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type Repository interface {
	SalesBetween(ctx context.Context, start, end *time.Time) ([]Row, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// SalesBetween returns sales whose creation date falls inside the inclusive
// [start, end] range; a nil bound leaves that side open.
func (r *repository) SalesBetween(ctx context.Context, start, end *time.Time) ([]Row, error) {
	query := `SELECT s.id, s.invoice_number, c.name, s.total::text, s.created_at
		 FROM sales s LEFT JOIN customers c ON c.id = s.customer_id`
	args := []interface{}{}
	where := ``
	if start != nil {
		args = append(args, *start)
		where = ` WHERE s.created_at::date >= $1::date`
	}
	if end != nil {
		args = append(args, *end)
		clause := fmt.Sprintf(` s.created_at::date <= $%d::date`, len(args))
		if where == "" {
			where = ` WHERE` + clause
		} else {
			where += ` AND` + clause
		}
	}
	query += where + ` ORDER BY s.created_at DESC, s.id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var report []Row
	var ids []int64
	index := make(map[int64]int)
	for rows.Next() {
		var row Row
		var total string
		if err := rows.Scan(&row.SaleID, &row.InvoiceNumber, &row.CustomerName, &total, &row.CreatedAt); err != nil {
			return nil, err
		}
		if row.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("reports: parse total: %w", err)
		}
		index[row.SaleID] = len(report)
		report = append(report, row)
		ids = append(ids, row.SaleID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return report, nil
	}

	itemRows, err := r.db.Query(ctx,
		`SELECT i.sale_id, i.product_id, p.name, i.quantity, i.price::text, i.subtotal::text
		 FROM sale_items i JOIN products p ON p.id = i.product_id
		 WHERE i.sale_id = ANY($1) ORDER BY i.id ASC`, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var saleID int64
		var item Item
		var price, subtotal string
		if err := itemRows.Scan(&saleID, &item.ProductID, &item.ProductName, &item.Quantity, &price, &subtotal); err != nil {
			return nil, err
		}
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("reports: parse item price: %w", err)
		}
		if item.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
			return nil, fmt.Errorf("reports: parse item subtotal: %w", err)
		}
		i := index[saleID]
		report[i].Items = append(report[i].Items, item)
		report[i].ItemCount += item.Quantity
	}
	return report, itemRows.Err()
}
