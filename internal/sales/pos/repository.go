package pos

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tienda-pos/tienda/internal/platform/db"
	"github.com/tienda-pos/tienda/internal/shared"
)

// LockedProduct is a product row locked for the duration of a sale
// transaction.
type LockedProduct struct {
	ID    int64
	Name  string
	Price decimal.Decimal
	Stock int
}

// TxRepository exposes the operations available inside a sale transaction.
// Rows fetched through LockProduct stay locked until commit, so concurrent
// sales against the same product serialize their stock checks.
type TxRepository interface {
	LockProduct(ctx context.Context, productID int64) (LockedProduct, error)
	NextInvoiceNumber(ctx context.Context) (string, error)
	InsertSale(ctx context.Context, sale Sale) (int64, error)
	InsertItems(ctx context.Context, saleID int64, items []SaleItem) error
	DecrementStock(ctx context.Context, productID int64, quantity int) error
}

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (*Sale, error)
	List(ctx context.Context, page, limit int) ([]Sale, int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx executes fn inside a RepeatableRead transaction.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

// LockProduct fetches the product row FOR UPDATE.
func (r *txRepo) LockProduct(ctx context.Context, productID int64) (LockedProduct, error) {
	var p LockedProduct
	var price string
	err := r.tx.QueryRow(ctx,
		`SELECT id, name, price::text, stock FROM products WHERE id = $1 FOR UPDATE`,
		productID,
	).Scan(&p.ID, &p.Name, &price, &p.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LockedProduct{}, fmt.Errorf("product %d: %w", productID, shared.ErrNotFound)
		}
		return LockedProduct{}, err
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return LockedProduct{}, fmt.Errorf("pos: parse price: %w", err)
	}
	return p, nil
}

// NextInvoiceNumber allocates a sequential invoice number from a dedicated
// sequence, formatted as INV- plus a zero-padded six digit index. The
// sequence is monotonic and race-free; gaps on rollback are acceptable.
func (r *txRepo) NextInvoiceNumber(ctx context.Context) (string, error) {
	var seq int64
	if err := r.tx.QueryRow(ctx, `SELECT nextval('sales_invoice_seq')`).Scan(&seq); err != nil {
		return "", fmt.Errorf("pos: next invoice number: %w", err)
	}
	return FormatInvoiceNumber(seq), nil
}

func (r *txRepo) InsertSale(ctx context.Context, sale Sale) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx,
		`INSERT INTO sales (invoice_number, customer_id, user_id, subtotal, tax, discount, total, status, payment_method, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW()) RETURNING id`,
		sale.InvoiceNumber, sale.CustomerID, sale.UserID,
		sale.Subtotal.StringFixed(2), sale.Tax.StringFixed(2), sale.Discount.StringFixed(2), sale.Total.StringFixed(2),
		string(sale.Status), string(sale.PaymentMethod), sale.Notes,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return 0, fmt.Errorf("invoice number %s: %w", sale.InvoiceNumber, shared.ErrDuplicate)
			case "23503":
				return 0, fmt.Errorf("customer does not exist: %w", shared.ErrValidation)
			}
		}
		return 0, err
	}
	return id, nil
}

func (r *txRepo) InsertItems(ctx context.Context, saleID int64, items []SaleItem) error {
	for _, item := range items {
		_, err := r.tx.Exec(ctx,
			`INSERT INTO sale_items (sale_id, product_id, quantity, price, subtotal)
			 VALUES ($1, $2, $3, $4, $5)`,
			saleID, item.ProductID, item.Quantity, item.Price.StringFixed(2), item.Subtotal.StringFixed(2),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// DecrementStock subtracts the sold quantity. The guard clause backs up the
// FOR UPDATE check; a zero row count means the stock invariant would break.
func (r *txRepo) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = NOW() WHERE id = $1 AND stock >= $2`,
		productID, quantity,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pos: stock underflow for product %d", productID)
	}
	return nil
}

const saleColumns = `s.id, s.invoice_number, s.customer_id, c.name, s.user_id, s.subtotal::text, s.tax::text, s.discount::text, s.total::text, s.status, s.payment_method, s.notes, s.created_at`

func (r *repository) Get(ctx context.Context, id int64) (*Sale, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+saleColumns+` FROM sales s LEFT JOIN customers c ON c.id = s.customer_id WHERE s.id = $1`, id)
	sale, err := scanSale(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	items, err := r.itemsFor(ctx, []int64{sale.ID})
	if err != nil {
		return nil, err
	}
	sale.Items = items[sale.ID]
	return sale, nil
}

func (r *repository) List(ctx context.Context, page, limit int) ([]Sale, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + saleColumns + ` FROM sales s LEFT JOIN customers c ON c.id = s.customer_id ORDER BY s.created_at DESC, s.id DESC`
	args := []interface{}{}
	if limit > 0 {
		offset := 0
		if page > 1 {
			offset = (page - 1) * limit
		}
		args = append(args, limit, offset)
		query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	sales, ids, err := scanSales(rows)
	if err != nil {
		return nil, 0, err
	}

	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range sales {
		sales[i].Items = items[sales[i].ID]
	}
	return sales, total, nil
}

func (r *repository) itemsFor(ctx context.Context, saleIDs []int64) (map[int64][]SaleItem, error) {
	if len(saleIDs) == 0 {
		return map[int64][]SaleItem{}, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT i.id, i.sale_id, i.product_id, p.name, i.quantity, i.price::text, i.subtotal::text
		 FROM sale_items i JOIN products p ON p.id = i.product_id
		 WHERE i.sale_id = ANY($1) ORDER BY i.id ASC`, saleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[int64][]SaleItem)
	for rows.Next() {
		var item SaleItem
		var price, subtotal string
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.ProductName, &item.Quantity, &price, &subtotal); err != nil {
			return nil, err
		}
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("pos: parse item price: %w", err)
		}
		if item.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
			return nil, fmt.Errorf("pos: parse item subtotal: %w", err)
		}
		items[item.SaleID] = append(items[item.SaleID], item)
	}
	return items, rows.Err()
}

func scanSale(row pgx.Row) (*Sale, error) {
	var s Sale
	var subtotal, tax, discount, total string
	err := row.Scan(&s.ID, &s.InvoiceNumber, &s.CustomerID, &s.CustomerName, &s.UserID, &subtotal, &tax, &discount, &total, &s.Status, &s.PaymentMethod, &s.Notes, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := parseAmounts(&s, subtotal, tax, discount, total); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanSales(rows pgx.Rows) ([]Sale, []int64, error) {
	var sales []Sale
	var ids []int64
	for rows.Next() {
		var s Sale
		var subtotal, tax, discount, total string
		err := rows.Scan(&s.ID, &s.InvoiceNumber, &s.CustomerID, &s.CustomerName, &s.UserID, &subtotal, &tax, &discount, &total, &s.Status, &s.PaymentMethod, &s.Notes, &s.CreatedAt)
		if err != nil {
			return nil, nil, err
		}
		if err := parseAmounts(&s, subtotal, tax, discount, total); err != nil {
			return nil, nil, err
		}
		sales = append(sales, s)
		ids = append(ids, s.ID)
	}
	return sales, ids, rows.Err()
}

func parseAmounts(s *Sale, subtotal, tax, discount, total string) error {
	var err error
	if s.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return fmt.Errorf("pos: parse subtotal: %w", err)
	}
	if s.Tax, err = decimal.NewFromString(tax); err != nil {
		return fmt.Errorf("pos: parse tax: %w", err)
	}
	if s.Discount, err = decimal.NewFromString(discount); err != nil {
		return fmt.Errorf("pos: parse discount: %w", err)
	}
	if s.Total, err = decimal.NewFromString(total); err != nil {
		return fmt.Errorf("pos: parse total: %w", err)
	}
	return nil
}

// FormatInvoiceNumber renders a sequence value as INV-000042.
func FormatInvoiceNumber(seq int64) string {
	return fmt.Sprintf("INV-%06d", seq)
}
