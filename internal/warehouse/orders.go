package warehouse

import (
	"context"
	"time"

	"github.com/UnknownOlympus/storekeeper/internal/models"
)

// RecentOrdersLimit is how many orders the admin order screen shows.
const RecentOrdersLimit = 20

// ExportOrdersLimit caps the rows of an order export.
const ExportOrdersLimit = 1000

// RecentOrders returns the newest orders, at most limit.
func (s *Service) RecentOrders(ctx context.Context, actor models.Account, limit int) ([]models.Order, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	defer s.observe("list_orders", time.Now())
	return s.store.ListRecentOrders(ctx, limit)
}

// CompleteOrder closes a PENDING or READY order.
func (s *Service) CompleteOrder(ctx context.Context, actor models.Account, orderID int) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	start := time.Now()
	err := s.store.CompleteOrder(ctx, orderID)
	s.observe("complete_order", start)
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "Order completed", "order", orderID, "admin", actor.TelegramID)

	return nil
}
