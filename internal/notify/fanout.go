// Package notify delivers bot-initiated messages to many Telegram chats at once.
package notify

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/storekeeper/internal/metrics"
	"golang.org/x/sync/errgroup"
	"gopkg.in/telebot.v4"
)

// Sender delivers a message to a chat. *telebot.Bot satisfies it.
type Sender interface {
	Send(to telebot.Recipient, what any, opts ...any) (*telebot.Message, error)
}

// Message is one outgoing text for one chat.
type Message struct {
	ChatID int64
	Text   string
	Opts   []any
}

// Outcome is the delivery result for one recipient.
type Outcome struct {
	ChatID int64
	Err    error
}

// Report collects outcomes in the order messages were given.
type Report struct {
	Outcomes []Outcome
}

// Delivered counts successful sends.
func (r Report) Delivered() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the outcomes that carry an error.
func (r Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// Fanout sends messages concurrently with at most limit sends in flight.
// A failed send never stops the others.
type Fanout struct {
	sender  Sender
	limit   int
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewFanout(sender Sender, limit int, log *slog.Logger, m *metrics.Metrics) *Fanout {
	if limit < 1 {
		limit = 1
	}
	return &Fanout{sender: sender, limit: limit, log: log, metrics: m}
}

// Deliver sends every message and waits for all of them. kind labels logs and metrics.
func (f *Fanout) Deliver(ctx context.Context, kind string, msgs []Message) Report {
	report := Report{Outcomes: make([]Outcome, len(msgs))}

	var group errgroup.Group
	group.SetLimit(f.limit)

	for i, msg := range msgs {
		group.Go(func() error {
			err := ctx.Err()
			if err == nil {
				_, err = f.sender.Send(telebot.ChatID(msg.ChatID), msg.Text, msg.Opts...)
			}
			report.Outcomes[i] = Outcome{ChatID: msg.ChatID, Err: err}

			result := "ok"
			if err != nil {
				result = "error"
				f.log.WarnContext(ctx, "Failed to deliver notification", "kind", kind, "chat_id", msg.ChatID, "error", err)
			}
			f.metrics.NotificationsSent.WithLabelValues(kind, result).Inc()

			return nil
		})
	}

	_ = group.Wait()

	return report
}
