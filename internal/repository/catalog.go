package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/storekeeper/internal/models"
)

// ListProducts returns the catalog ordered by name.
func (r *Repository) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := r.db.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var product models.Product
		if errScan := rows.Scan(&product.ID, &product.Name, &product.Quantity); errScan != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", errScan)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read product rows: %w", err)
	}

	return products, nil
}

// GetProduct returns one product or ErrNotFound.
func (r *Repository) GetProduct(ctx context.Context, id int) (models.Product, error) {
	var product models.Product

	err := r.db.QueryRow(ctx, selectProductSQL, id).Scan(&product.ID, &product.Name, &product.Quantity)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to get product %d: %w", id, translate(err))
	}

	return product, nil
}

// CreateProduct inserts a product. A taken name yields ErrDuplicate.
func (r *Repository) CreateProduct(ctx context.Context, name string, quantity int) (models.Product, error) {
	var product models.Product

	err := r.db.QueryRow(ctx, insertProductSQL, name, quantity).Scan(&product.ID, &product.Name, &product.Quantity)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to create product %q: %w", name, translate(err))
	}

	return product, nil
}

// DeleteProduct removes a product nobody ordered. Referenced products yield ErrReferenced.
func (r *Repository) DeleteProduct(ctx context.Context, id int) (models.Product, error) {
	var product models.Product

	err := r.db.QueryRow(ctx, deleteProductSQL, id).Scan(&product.ID, &product.Name, &product.Quantity)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to delete product %d: %w", id, translate(err))
	}

	return product, nil
}

// ListFaculties returns all faculties ordered by name.
func (r *Repository) ListFaculties(ctx context.Context) ([]models.Faculty, error) {
	rows, err := r.db.Query(ctx, listFacultiesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query faculties: %w", err)
	}
	defer rows.Close()

	var faculties []models.Faculty
	for rows.Next() {
		var faculty models.Faculty
		if errScan := rows.Scan(&faculty.ID, &faculty.Name); errScan != nil {
			return nil, fmt.Errorf("failed to scan faculty row: %w", errScan)
		}
		faculties = append(faculties, faculty)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read faculty rows: %w", err)
	}

	return faculties, nil
}

// GetFaculty returns one faculty or ErrNotFound.
func (r *Repository) GetFaculty(ctx context.Context, id int) (models.Faculty, error) {
	var faculty models.Faculty

	if err := r.db.QueryRow(ctx, selectFacultySQL, id).Scan(&faculty.ID, &faculty.Name); err != nil {
		return models.Faculty{}, fmt.Errorf("failed to get faculty %d: %w", id, translate(err))
	}

	return faculty, nil
}

// CreateFaculty inserts a faculty. A taken name yields ErrDuplicate.
func (r *Repository) CreateFaculty(ctx context.Context, name string) (models.Faculty, error) {
	var faculty models.Faculty

	if err := r.db.QueryRow(ctx, insertFacultySQL, name).Scan(&faculty.ID, &faculty.Name); err != nil {
		return models.Faculty{}, fmt.Errorf("failed to create faculty %q: %w", name, translate(err))
	}

	return faculty, nil
}

// DeleteFaculty removes a faculty no order points at. Referenced faculties yield ErrReferenced.
func (r *Repository) DeleteFaculty(ctx context.Context, id int) (models.Faculty, error) {
	var faculty models.Faculty

	if err := r.db.QueryRow(ctx, deleteFacultySQL, id).Scan(&faculty.ID, &faculty.Name); err != nil {
		return models.Faculty{}, fmt.Errorf("failed to delete faculty %d: %w", id, translate(err))
	}

	return faculty, nil
}
