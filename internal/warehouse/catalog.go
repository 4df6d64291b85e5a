package warehouse

import (
	"context"
	"strings"
	"time"

	"github.com/UnknownOlympus/storekeeper/internal/models"
)

// Products lists the catalog. Anyone may browse it.
func (s *Service) Products(ctx context.Context) ([]models.Product, error) {
	defer s.observe("list_products", time.Now())
	return s.store.ListProducts(ctx)
}

// Product returns one product.
func (s *Service) Product(ctx context.Context, id int) (models.Product, error) {
	defer s.observe("get_product", time.Now())
	return s.store.GetProduct(ctx, id)
}

// Faculties lists faculties. Anyone may browse them.
func (s *Service) Faculties(ctx context.Context) ([]models.Faculty, error) {
	defer s.observe("list_faculties", time.Now())
	return s.store.ListFaculties(ctx)
}

// Faculty returns one faculty.
func (s *Service) Faculty(ctx context.Context, id int) (models.Faculty, error) {
	defer s.observe("get_faculty", time.Now())
	return s.store.GetFaculty(ctx, id)
}

// CreateProduct adds a product with its initial stock.
func (s *Service) CreateProduct(ctx context.Context, actor models.Account, name string, quantity int) (models.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return models.Product{}, err
	}
	if name = strings.TrimSpace(name); name == "" {
		return models.Product{}, ErrEmptyName
	}
	if quantity < 0 || quantity > maxQuantity {
		return models.Product{}, ErrInvalidQuantity
	}

	defer s.observe("create_product", time.Now())
	return s.store.CreateProduct(ctx, name, quantity)
}

// DeleteProduct removes a product no order references.
func (s *Service) DeleteProduct(ctx context.Context, actor models.Account, id int) (models.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return models.Product{}, err
	}

	defer s.observe("delete_product", time.Now())
	return s.store.DeleteProduct(ctx, id)
}

// CreateFaculty adds a faculty.
func (s *Service) CreateFaculty(ctx context.Context, actor models.Account, name string) (models.Faculty, error) {
	if err := requireAdmin(actor); err != nil {
		return models.Faculty{}, err
	}
	if name = strings.TrimSpace(name); name == "" {
		return models.Faculty{}, ErrEmptyName
	}

	defer s.observe("create_faculty", time.Now())
	return s.store.CreateFaculty(ctx, name)
}

// DeleteFaculty removes a faculty no order references.
func (s *Service) DeleteFaculty(ctx context.Context, actor models.Account, id int) (models.Faculty, error) {
	if err := requireAdmin(actor); err != nil {
		return models.Faculty{}, err
	}

	defer s.observe("delete_faculty", time.Now())
	return s.store.DeleteFaculty(ctx, id)
}
