package customers

import (
	"context"
	"strings"

	"github.com/tienda-pos/tienda/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, page, limit int, search string) ([]Customer, int, error) {
	return s.repo.List(ctx, page, limit, search)
}

func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	if id <= 0 {
		return Customer{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, customer Customer) (Customer, error) {
	if err := validate(customer); err != nil {
		return Customer{}, err
	}
	return s.repo.Create(ctx, customer)
}

func (s *Service) Update(ctx context.Context, id int64, customer Customer) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	if err := validate(customer); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, customer)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

func validate(c Customer) error {
	errs := shared.FieldErrors{}
	if strings.TrimSpace(c.Name) == "" {
		errs["name"] = "customer name is required"
	}
	if c.Email != nil && !strings.Contains(*c.Email, "@") {
		errs["email"] = "email is malformed"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
