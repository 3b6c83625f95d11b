package products

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tienda-pos/tienda/internal/catalog/shared"
	internalshared "github.com/tienda-pos/tienda/internal/shared"
)

const productColumns = `p.id, p.code, p.name, p.description, p.price::text, p.cost::text, p.stock, p.min_stock, p.category_id, p.image, p.active, p.created_at, p.updated_at`

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]WithCategory, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id int64, product Product) error
	Delete(ctx context.Context, id int64) error
	ListLowStock(ctx context.Context) ([]WithCategory, error)
	ListSellable(ctx context.Context) ([]WithCategory, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]WithCategory, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}

	if filters.CategoryID != nil {
		args = append(args, *filters.CategoryID)
		where += ` AND p.category_id = $` + strconv.Itoa(len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (p.name ILIKE $` + n + ` OR p.code ILIKE $` + n + `)`
	}
	if filters.IsActive != nil {
		args = append(args, *filters.IsActive)
		where += ` AND p.active = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + `, c.name AS category_name FROM products p JOIN categories c ON c.id = p.category_id` + where
	query += ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	if filters.Limit > 0 {
		args = append(args, filters.Limit, filters.Offset())
		query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list, err := scanWithCategory(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, internalshared.ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO products (code, name, description, price, cost, stock, min_stock, category_id, image, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		 RETURNING id, created_at, updated_at`,
		product.Code, product.Name, product.Description, product.Price.StringFixed(2), product.Cost.StringFixed(2),
		product.Stock, product.MinStock, product.CategoryID, product.Image, product.Active,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return Product{}, translateConstraint(err)
	}
	return product, nil
}

func (r *repository) Update(ctx context.Context, id int64, product Product) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET code = $1, name = $2, description = $3, price = $4, cost = $5, stock = $6, min_stock = $7, category_id = $8, image = $9, active = $10, updated_at = NOW() WHERE id = $11`,
		product.Code, product.Name, product.Description, product.Price.StringFixed(2), product.Cost.StringFixed(2),
		product.Stock, product.MinStock, product.CategoryID, product.Image, product.Active, id,
	)
	if err != nil {
		return translateConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return internalshared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return internalshared.ErrNotFound
	}
	return nil
}

// ListLowStock returns products whose stock is at or below min_stock,
// joined with their category. A product at exactly min_stock is included.
func (r *repository) ListLowStock(ctx context.Context) ([]WithCategory, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+`, c.name AS category_name
		 FROM products p JOIN categories c ON c.id = p.category_id
		 WHERE p.stock <= p.min_stock ORDER BY p.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWithCategory(rows)
}

// ListSellable returns active products with stock on hand, for the sale form.
func (r *repository) ListSellable(ctx context.Context) ([]WithCategory, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+`, c.name AS category_name
		 FROM products p JOIN categories c ON c.id = p.category_id
		 WHERE p.active AND p.stock > 0 ORDER BY p.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWithCategory(rows)
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	var price, cost string
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &price, &cost, &p.Stock, &p.MinStock, &p.CategoryID, &p.Image, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return Product{}, fmt.Errorf("products: parse price: %w", err)
	}
	if p.Cost, err = decimal.NewFromString(cost); err != nil {
		return Product{}, fmt.Errorf("products: parse cost: %w", err)
	}
	return p, nil
}

func scanWithCategory(rows pgx.Rows) ([]WithCategory, error) {
	var list []WithCategory
	for rows.Next() {
		var p WithCategory
		var price, cost string
		err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &price, &cost, &p.Stock, &p.MinStock, &p.CategoryID, &p.Image, &p.Active, &p.CreatedAt, &p.UpdatedAt, &p.CategoryName)
		if err != nil {
			return nil, err
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("products: parse price: %w", err)
		}
		if p.Cost, err = decimal.NewFromString(cost); err != nil {
			return nil, fmt.Errorf("products: parse cost: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// translateConstraint maps storage constraint violations onto domain errors
// so the handler can surface them as recoverable validation failures.
func translateConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("product code already exists: %w", internalshared.ErrDuplicate)
		case "23503":
			return fmt.Errorf("category does not exist: %w", internalshared.ErrValidation)
		}
	}
	return err
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "code":
		return "p.code " + dir
	case "price":
		return "p.price " + dir
	case "stock":
		return "p.stock " + dir
	case "created_at":
		return "p.created_at " + dir
	default:
		return "p.name " + dir
	}
}
