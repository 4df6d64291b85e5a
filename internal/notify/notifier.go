package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/storekeeper/internal/i18n"
	"github.com/UnknownOlympus/storekeeper/internal/metrics"
	"github.com/UnknownOlympus/storekeeper/internal/models"
	"gopkg.in/telebot.v4"
)

// Notification kinds, used as metric labels.
const (
	KindOrderPlaced      = "order_placed"
	KindStockReplenished = "stock_replenished"
	KindAdminGranted     = "admin_granted"
	KindAlert            = "alert"
)

// DateLayout is how order timestamps are printed in chat.
const DateLayout = "02.01.2006 15:04"

// Notifier renders localized notifications and hands them to a Fanout.
type Notifier struct {
	fanout *Fanout
	loc    *i18n.Localizer
}

func New(sender Sender, loc *i18n.Localizer, limit int, log *slog.Logger, m *metrics.Metrics) *Notifier {
	return &Notifier{fanout: NewFanout(sender, limit, log, m), loc: loc}
}

// OrderPlaced tells every admin about a new order, each in their own language.
func (n *Notifier) OrderPlaced(
	ctx context.Context, admins []models.Account, order models.Order, requester models.Account,
) Report {
	msgs := make([]Message, 0, len(admins))
	for _, admin := range admins {
		msgs = append(msgs, Message{ChatID: admin.TelegramID, Text: n.RenderOrderPlaced(admin.Language, order, requester)})
	}

	return n.fanout.Deliver(ctx, KindOrderPlaced, msgs)
}

// StockReplenished sends one message per waiting order to its requester.
func (n *Notifier) StockReplenished(ctx context.Context, orders []models.Order) Report {
	msgs := make([]Message, 0, len(orders))
	for _, order := range orders {
		text := n.loc.GetWithData(order.Requester.Language, "notify.stock_replenished", map[string]any{
			"product": order.ProductName,
			"missing": order.Missing,
		})
		msgs = append(msgs, Message{ChatID: order.Requester.TelegramID, Text: text})
	}

	return n.fanout.Deliver(ctx, KindStockReplenished, msgs)
}

// AdminGranted congratulates a freshly promoted admin.
func (n *Notifier) AdminGranted(ctx context.Context, admin models.Account) error {
	report := n.fanout.Deliver(ctx, KindAdminGranted, []Message{{
		ChatID: admin.TelegramID,
		Text:   n.loc.Get(admin.Language, "notify.admin_granted"),
	}})

	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("failed to notify admin %d: %w", admin.TelegramID, failed[0].Err)
	}

	return nil
}

// Alert forwards a preformatted Markdown text to every admin.
func (n *Notifier) Alert(ctx context.Context, admins []models.Account, text string) Report {
	msgs := make([]Message, 0, len(admins))
	for _, admin := range admins {
		msgs = append(msgs, Message{ChatID: admin.TelegramID, Text: text, Opts: []any{telebot.ModeMarkdown}})
	}

	return n.fanout.Deliver(ctx, KindAlert, msgs)
}

// RenderOrderPlaced builds the admin-facing summary of a new order.
func (n *Notifier) RenderOrderPlaced(lang string, order models.Order, requester models.Account) string {
	commentLine := ""
	if order.Comment != "" {
		commentLine = n.loc.GetWithData(lang, "order.comment_line", map[string]any{"comment": order.Comment})
	}

	missingLine := ""
	if order.Missing > 0 {
		missingLine = n.loc.GetWithData(lang, "notify.missing_line", map[string]any{"missing": order.Missing})
	}

	return n.loc.GetWithData(lang, "notify.order_placed", map[string]any{
		"requester":    requester.Handle(),
		"product":      order.ProductName,
		"faculty":      order.FacultyName,
		"comment_line": commentLine,
		"wanted":       order.Wanted,
		"given":        order.Given,
		"missing_line": missingLine,
		"date":         order.CreatedAt.Format(DateLayout),
	})
}
