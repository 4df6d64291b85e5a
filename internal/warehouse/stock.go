package warehouse

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/storekeeper/internal/models"
)

// maxQuantity is the largest value the quantity columns hold.
const maxQuantity = math.MaxInt32

// EditMode tells how a StockEdit combines with the current quantity.
type EditMode int

const (
	EditSet EditMode = iota
	EditAdd
	EditSubtract
)

// StockEdit is a parsed admin stock instruction.
type StockEdit struct {
	Mode  EditMode
	Value int
}

// ParseStockEdit reads "+N" (add), "-N" (subtract) or "N" (set) with N a non-negative integer.
func ParseStockEdit(text string) (StockEdit, error) {
	text = strings.TrimSpace(text)

	edit := StockEdit{Mode: EditSet}
	switch {
	case strings.HasPrefix(text, "+"):
		edit.Mode, text = EditAdd, text[1:]
	case strings.HasPrefix(text, "-"):
		edit.Mode, text = EditSubtract, text[1:]
	}

	if !isDigits(text) {
		return StockEdit{}, ErrInvalidStockEdit
	}

	value, err := strconv.Atoi(text)
	if err != nil || value > maxQuantity {
		return StockEdit{}, ErrInvalidStockEdit
	}
	edit.Value = value

	return edit, nil
}

// ParseStockQuantity accepts a non-negative integer for a new product.
func ParseStockQuantity(text string) (int, error) {
	edit, err := ParseStockEdit(text)
	if err != nil || edit.Mode != EditSet {
		return 0, ErrInvalidQuantity
	}
	return edit.Value, nil
}

// Apply returns the quantity after the edit. The result stays within [0, maxQuantity].
func (e StockEdit) Apply(current int) int {
	var updated int
	switch e.Mode {
	case EditAdd:
		updated = current + e.Value
	case EditSubtract:
		updated = current - e.Value
	default:
		updated = e.Value
	}
	return min(max(updated, 0), maxQuantity)
}

// AdjustStock applies an admin edit to a product. When the quantity went up, every requester
// still waiting on that product hears about it once per order. Nothing is reallocated.
func (s *Service) AdjustStock(
	ctx context.Context, actor models.Account, productID int, text string,
) (models.StockChange, error) {
	if err := requireAdmin(actor); err != nil {
		return models.StockChange{}, err
	}

	edit, err := ParseStockEdit(text)
	if err != nil {
		return models.StockChange{}, err
	}

	start := time.Now()
	change, err := s.store.AdjustStock(ctx, productID, edit.Apply)
	s.observe("adjust_stock", start)
	if err != nil {
		return models.StockChange{}, fmt.Errorf("failed to adjust stock: %w", err)
	}

	s.log.InfoContext(ctx, "Stock adjusted",
		"product", productID, "admin", actor.TelegramID, "previous", change.Previous, "updated", change.Updated)

	switch {
	case change.Increased():
		s.metrics.StockAdjustments.WithLabelValues("up").Inc()
		s.notifyWaiting(ctx, productID)
	case change.Updated < change.Previous:
		s.metrics.StockAdjustments.WithLabelValues("down").Inc()
	default:
		s.metrics.StockAdjustments.WithLabelValues("same").Inc()
	}

	return change, nil
}

func (s *Service) notifyWaiting(ctx context.Context, productID int) {
	orders, err := s.store.ListWaitingOrders(ctx, productID)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to list waiting orders", "product", productID, "error", err)
		return
	}
	if len(orders) == 0 {
		return
	}

	report := s.notifier.StockReplenished(ctx, orders)
	s.log.InfoContext(ctx, "Waiting requesters notified",
		"product", productID, "delivered", report.Delivered(), "failed", len(report.Failed()))
}
