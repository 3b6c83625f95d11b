package products

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/tienda-pos/tienda/internal/catalog/categories"
	"github.com/tienda-pos/tienda/internal/catalog/shared"
	internalshared "github.com/tienda-pos/tienda/internal/shared"
)

// AuditPort abstracts audit logging for catalog mutations.
type AuditPort interface {
	Record(ctx context.Context, log internalshared.AuditLog) error
}

type Service struct {
	repo         Repository
	categoryRepo categories.Repository
	audit        AuditPort
}

func NewService(repo Repository, categoryRepo categories.Repository, audit AuditPort) *Service {
	return &Service{repo: repo, categoryRepo: categoryRepo, audit: audit}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]WithCategory, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, internalshared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	if err := s.validate(ctx, product); err != nil {
		return Product{}, err
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return Product{}, err
	}
	s.record(ctx, "catalog:product:create", created.ID, map[string]any{"code": created.Code})
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, product Product) error {
	if id <= 0 {
		return internalshared.ErrNotFound
	}
	if err := s.validate(ctx, product); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, product); err != nil {
		return err
	}
	s.record(ctx, "catalog:product:update", id, map[string]any{"code": product.Code})
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return internalshared.ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "catalog:product:delete", id, nil)
	return nil
}

// ListLowStock returns every product at or below its minimum stock.
func (s *Service) ListLowStock(ctx context.Context) ([]WithCategory, error) {
	return s.repo.ListLowStock(ctx)
}

// ListSellable returns active products with stock available for sale.
func (s *Service) ListSellable(ctx context.Context) ([]WithCategory, error) {
	return s.repo.ListSellable(ctx)
}

func (s *Service) validate(ctx context.Context, p Product) error {
	if err := validateFields(p); err != nil {
		return err
	}
	if _, err := s.categoryRepo.Get(ctx, p.CategoryID); err != nil {
		if errors.Is(err, internalshared.ErrNotFound) {
			return internalshared.FieldErrors{"category_id": "category does not exist"}
		}
		return fmt.Errorf("verify category: %w", err)
	}
	return nil
}

func (s *Service) record(ctx context.Context, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, internalshared.AuditLog{
		ActorID:  internalshared.ActorID(ctx),
		Action:   action,
		Entity:   "product",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}
