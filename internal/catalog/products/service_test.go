package products

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tienda-pos/tienda/internal/catalog/categories"
	"github.com/tienda-pos/tienda/internal/catalog/shared"
	internalshared "github.com/tienda-pos/tienda/internal/shared"
)

type memoryRepo struct {
	products map[int64]Product
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[int64]Product)}
}

func (r *memoryRepo) List(ctx context.Context, filters shared.ListFilters) ([]WithCategory, int, error) {
	var list []WithCategory
	for _, p := range r.products {
		list = append(list, WithCategory{Product: p})
	}
	return list, len(list), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Product, error) {
	p, ok := r.products[id]
	if !ok {
		return Product{}, internalshared.ErrNotFound
	}
	return p, nil
}

func (r *memoryRepo) Create(ctx context.Context, product Product) (Product, error) {
	for _, existing := range r.products {
		if existing.Code == product.Code {
			return Product{}, fmt.Errorf("product code already exists: %w", internalshared.ErrDuplicate)
		}
	}
	r.nextID++
	product.ID = r.nextID
	r.products[product.ID] = product
	return product, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, product Product) error {
	if _, ok := r.products[id]; !ok {
		return internalshared.ErrNotFound
	}
	for otherID, existing := range r.products {
		if otherID != id && existing.Code == product.Code {
			return fmt.Errorf("product code already exists: %w", internalshared.ErrDuplicate)
		}
	}
	product.ID = id
	r.products[id] = product
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.products[id]; !ok {
		return internalshared.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *memoryRepo) ListLowStock(ctx context.Context) ([]WithCategory, error) {
	var list []WithCategory
	for _, p := range r.products {
		if p.Stock <= p.MinStock {
			list = append(list, WithCategory{Product: p})
		}
	}
	return list, nil
}

func (r *memoryRepo) ListSellable(ctx context.Context) ([]WithCategory, error) {
	var list []WithCategory
	for _, p := range r.products {
		if p.Active && p.Stock > 0 {
			list = append(list, WithCategory{Product: p})
		}
	}
	return list, nil
}

type memoryCategoryRepo struct {
	ids map[int64]bool
}

func (r *memoryCategoryRepo) List(ctx context.Context, filters shared.ListFilters) ([]categories.Category, int, error) {
	return nil, 0, nil
}

func (r *memoryCategoryRepo) Get(ctx context.Context, id int64) (categories.Category, error) {
	if !r.ids[id] {
		return categories.Category{}, internalshared.ErrNotFound
	}
	return categories.Category{ID: id, Name: "Category"}, nil
}

func (r *memoryCategoryRepo) Create(ctx context.Context, c categories.Category) (categories.Category, error) {
	return c, nil
}

func (r *memoryCategoryRepo) Update(ctx context.Context, id int64, c categories.Category) error {
	return nil
}

func (r *memoryCategoryRepo) Delete(ctx context.Context, id int64) error {
	return nil
}

func newTestService(repo *memoryRepo) *Service {
	return NewService(repo, &memoryCategoryRepo{ids: map[int64]bool{1: true}}, nil)
}

func validProduct(code string) Product {
	return Product{
		Code:       code,
		Name:       "Coffee Beans 1kg",
		Price:      decimal.RequireFromString("10.00"),
		Cost:       decimal.RequireFromString("6.50"),
		Stock:      20,
		MinStock:   5,
		CategoryID: 1,
		Active:     true,
	}
}

func TestCreateKeepsExplicitZeroMinStock(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	p := validProduct("SKU-1")
	p.MinStock = 0
	created, err := svc.Create(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, 0, created.MinStock)
}

func TestCreateRejectsInvalidFields(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	p := validProduct("SKU-1")
	p.Name = "  "
	p.Price = decimal.RequireFromString("-1")
	_, err := svc.Create(context.Background(), p)
	require.ErrorIs(t, err, internalshared.ErrValidation)

	var fields internalshared.FieldErrors
	require.ErrorAs(t, err, &fields)
	require.Contains(t, fields, "name")
	require.Contains(t, fields, "price")
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	p := validProduct("SKU-1")
	p.CategoryID = 99
	_, err := svc.Create(context.Background(), p)
	require.ErrorIs(t, err, internalshared.ErrValidation)
}

func TestDuplicateCodeRejectedOnSecondCreate(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	_, err := svc.Create(context.Background(), validProduct("SKU-1"))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validProduct("SKU-1"))
	require.ErrorIs(t, err, internalshared.ErrDuplicate)
}

func TestUpdateCodeUniquenessExcludesOwnRecord(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	created, err := svc.Create(context.Background(), validProduct("SKU-1"))
	require.NoError(t, err)

	// Re-saving the record with its own code is not a conflict.
	updated := validProduct("SKU-1")
	updated.Name = "Coffee Beans 2kg"
	require.NoError(t, svc.Update(context.Background(), created.ID, updated))

	other, err := svc.Create(context.Background(), validProduct("SKU-2"))
	require.NoError(t, err)
	clash := validProduct("SKU-1")
	err = svc.Update(context.Background(), other.ID, clash)
	require.ErrorIs(t, err, internalshared.ErrDuplicate)
}

func TestLowStockBoundary(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	at := validProduct("AT-MIN")
	at.Stock = 5
	at.MinStock = 5
	_, err := svc.Create(context.Background(), at)
	require.NoError(t, err)

	above := validProduct("ABOVE-MIN")
	above.Stock = 6
	above.MinStock = 5
	_, err = svc.Create(context.Background(), above)
	require.NoError(t, err)

	low, err := svc.ListLowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, "AT-MIN", low[0].Code)
}
