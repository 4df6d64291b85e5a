package bot

import (
	"errors"
	"io"

	"github.com/UnknownOlympus/storekeeper/internal/metrics"
	"gopkg.in/telebot.v4"
)

// Conversation is what a handler may do in reply to one inbound event.
type Conversation interface {
	// Send posts a new message.
	Send(text string, kb Keyboard) error
	// Edit replaces the message a button was pressed on, or sends a new one when there is none.
	Edit(text string, kb Keyboard) error
	// Respond acknowledges a button press, optionally with a toast.
	Respond(toast string) error
	// SendFile posts a document.
	SendFile(name string, data io.Reader, caption string) error
}

// telebotConversation adapts a telebot context to Conversation.
type telebotConversation struct {
	ctx     telebot.Context
	metrics *metrics.Metrics
}

func newConversation(ctx telebot.Context, m *metrics.Metrics) *telebotConversation {
	return &telebotConversation{ctx: ctx, metrics: m}
}

func (c *telebotConversation) Send(text string, kb Keyboard) error {
	c.metrics.SentMessages.WithLabelValues("text").Inc()
	if markup := inlineMarkup(kb); markup != nil {
		return c.ctx.Send(text, markup)
	}
	return c.ctx.Send(text)
}

func (c *telebotConversation) Edit(text string, kb Keyboard) error {
	if c.ctx.Callback() == nil {
		return c.Send(text, kb)
	}

	c.metrics.SentMessages.WithLabelValues("edit").Inc()
	markup := inlineMarkup(kb)
	if markup == nil {
		markup = &telebot.ReplyMarkup{}
	}

	err := c.ctx.Edit(text, markup)
	switch {
	case err == nil, errors.Is(err, telebot.ErrSameMessageContent):
		return nil
	default:
		// documents and stale messages cannot be edited
		return c.Send(text, kb)
	}
}

func (c *telebotConversation) Respond(toast string) error {
	if c.ctx.Callback() == nil {
		return nil
	}
	c.metrics.SentMessages.WithLabelValues("respond").Inc()
	return c.ctx.Respond(&telebot.CallbackResponse{Text: toast})
}

func (c *telebotConversation) SendFile(name string, data io.Reader, caption string) error {
	c.metrics.SentMessages.WithLabelValues("file").Inc()
	return c.ctx.Send(&telebot.Document{
		File:     telebot.FromReader(data),
		FileName: name,
		Caption:  caption,
	})
}

// inlineMarkup renders a keyboard with raw callback data so payloads reach the OnCallback route as-is.
func inlineMarkup(kb Keyboard) *telebot.ReplyMarkup {
	if len(kb) == 0 {
		return nil
	}

	rows := make([][]telebot.InlineButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]telebot.InlineButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, telebot.InlineButton{Text: btn.Label, Data: btn.Data})
		}
		rows = append(rows, buttons)
	}

	return &telebot.ReplyMarkup{InlineKeyboard: rows}
}
