package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/storekeeper/internal/models"
	"github.com/jackc/pgx/v5"
)

// PlaceOrder stores a new order and takes the allocated units out of stock in one transaction.
// The product row stays locked while allocate runs, so concurrent orders see each other's
// decrements and stock never goes negative.
func (r *Repository) PlaceOrder(
	ctx context.Context,
	draft models.OrderDraft,
	allocate func(available int) models.Allocation,
) (models.Order, error) {
	var order models.Order

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		var product models.Product
		err := tx.QueryRow(ctx, lockProductSQL, draft.ProductID).Scan(&product.ID, &product.Name, &product.Quantity)
		if err != nil {
			return fmt.Errorf("failed to lock product %d: %w", draft.ProductID, translate(err))
		}

		var faculty models.Faculty
		err = tx.QueryRow(ctx, selectFacultySQL, draft.FacultyID).Scan(&faculty.ID, &faculty.Name)
		if err != nil {
			return fmt.Errorf("failed to get faculty %d: %w", draft.FacultyID, translate(err))
		}

		alloc := allocate(product.Quantity)
		order = models.Order{
			AccountID:   draft.AccountID,
			ProductID:   product.ID,
			FacultyID:   faculty.ID,
			Comment:     draft.Comment,
			Wanted:      draft.Wanted,
			Given:       alloc.Given,
			Missing:     alloc.Missing,
			Status:      alloc.Status,
			ProductName: product.Name,
			FacultyName: faculty.Name,
		}

		err = tx.QueryRow(ctx, insertOrderSQL,
			order.AccountID, order.ProductID, order.FacultyID, order.Comment,
			order.Wanted, order.Given, order.Missing, string(order.Status),
		).Scan(&order.ID, &order.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", translate(err))
		}

		if order.Given == 0 {
			return nil
		}
		if _, err = tx.Exec(ctx, decrementProductSQL, product.ID, order.Given); err != nil {
			return fmt.Errorf("failed to decrement stock of product %d: %w", product.ID, err)
		}

		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	return order, nil
}

// AdjustStock replaces a product quantity with apply(current) under a row lock.
func (r *Repository) AdjustStock(
	ctx context.Context, productID int, apply func(current int) int,
) (models.StockChange, error) {
	var change models.StockChange

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		var product models.Product
		err := tx.QueryRow(ctx, lockProductSQL, productID).Scan(&product.ID, &product.Name, &product.Quantity)
		if err != nil {
			return fmt.Errorf("failed to lock product %d: %w", productID, translate(err))
		}

		change.Previous = product.Quantity
		change.Updated = apply(product.Quantity)

		if _, err = tx.Exec(ctx, updateProductQuantitySQL, product.ID, change.Updated); err != nil {
			return fmt.Errorf("failed to update stock of product %d: %w", productID, err)
		}

		product.Quantity = change.Updated
		change.Product = product

		return nil
	})
	if err != nil {
		return models.StockChange{}, err
	}

	return change, nil
}

func (r *Repository) queryOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, errScan := scanOrder(rows)
		if errScan != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", errScan)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order rows: %w", err)
	}

	return orders, nil
}

func scanOrder(row pgx.Row) (models.Order, error) {
	var (
		order  models.Order
		status string
	)

	err := row.Scan(
		&order.ID, &order.AccountID, &order.ProductID, &order.FacultyID, &order.Comment,
		&order.Wanted, &order.Given, &order.Missing, &status, &order.CreatedAt,
		&order.ProductName, &order.FacultyName,
		&order.Requester.TelegramID, &order.Requester.Username, &order.Requester.FullName, &order.Requester.Language,
	)
	order.Status = models.OrderStatus(status)
	order.Requester.ID = order.AccountID

	return order, err
}

// ListRecentOrders returns the newest orders first, at most limit of them.
func (r *Repository) ListRecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	return r.queryOrders(ctx, listRecentOrdersSQL, limit)
}

// ListWaitingOrders returns open orders of a product that were not fully served when placed.
func (r *Repository) ListWaitingOrders(ctx context.Context, productID int) ([]models.Order, error) {
	return r.queryOrders(ctx, listWaitingOrdersSQL, productID)
}

// CompleteOrder marks a PENDING or READY order as COMPLETED.
func (r *Repository) CompleteOrder(ctx context.Context, orderID int) error {
	tag, err := r.db.Exec(ctx, completeOrderSQL, orderID)
	if err != nil {
		return fmt.Errorf("failed to complete order %d: %w", orderID, err)
	}

	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err = r.db.QueryRow(ctx, orderExistsSQL, orderID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check order %d: %w", orderID, err)
	}
	if !exists {
		return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}

	return fmt.Errorf("order %d: %w", orderID, ErrNotCompletable)
}
