package warehouse

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/storekeeper/internal/models"
)

// OrderRequest is a completed user dialogue ready to be allocated.
type OrderRequest struct {
	ProductID int
	FacultyID int
	Comment   string
	Quantity  int
}

// Allocate splits a request against the stock on hand. Given never exceeds either side,
// and the status is READY exactly when something was handed out.
func Allocate(requested, available int) models.Allocation {
	available = max(available, 0)
	given := min(requested, available)
	alloc := models.Allocation{
		Given:   given,
		Missing: max(0, requested-available),
		Status:  models.OrderPending,
	}
	if given > 0 {
		alloc.Status = models.OrderReady
	}
	return alloc
}

// ParseOrderQuantity accepts a positive integer.
func ParseOrderQuantity(text string) (int, error) {
	quantity, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || quantity <= 0 || quantity > maxQuantity {
		return 0, ErrInvalidQuantity
	}
	return quantity, nil
}

// PlaceOrder allocates stock for the request, stores the order and tells the admins.
// Admin notification failures are logged and never undo the order.
func (s *Service) PlaceOrder(ctx context.Context, requester models.Account, req OrderRequest) (models.Order, error) {
	if req.Quantity <= 0 {
		return models.Order{}, ErrInvalidQuantity
	}

	start := time.Now()
	order, err := s.store.PlaceOrder(ctx, models.OrderDraft{
		AccountID: requester.ID,
		ProductID: req.ProductID,
		FacultyID: req.FacultyID,
		Comment:   req.Comment,
		Wanted:    req.Quantity,
	}, func(available int) models.Allocation {
		return Allocate(req.Quantity, available)
	})
	s.observe("place_order", start)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to place order: %w", err)
	}

	order.Requester = requester
	s.metrics.OrdersPlaced.WithLabelValues(string(order.Outcome())).Inc()
	s.log.InfoContext(ctx, "Order placed",
		"order", order.ID, "user", requester.TelegramID, "given", order.Given, "missing", order.Missing)

	admins, err := s.store.ListAdmins(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to list admins for order notification", "order", order.ID, "error", err)
		return order, nil
	}

	report := s.notifier.OrderPlaced(ctx, admins, order, requester)
	if failed := report.Failed(); len(failed) > 0 {
		s.log.WarnContext(ctx, "Some admins were not notified about the order",
			"order", order.ID, "failed", len(failed), "delivered", report.Delivered())
	}

	return order, nil
}
