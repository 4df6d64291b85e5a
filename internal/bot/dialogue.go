package bot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/UnknownOlympus/storekeeper/internal/i18n"
	"github.com/UnknownOlympus/storekeeper/internal/metrics"
	"github.com/UnknownOlympus/storekeeper/internal/models"
	"github.com/UnknownOlympus/storekeeper/internal/session"
	"github.com/UnknownOlympus/storekeeper/internal/warehouse"
)

// Dialogue routes chat events through the per-user session to the warehouse service.
// It never talks to Telegram directly; replies go through a Conversation.
type Dialogue struct {
	svc      *warehouse.Service
	sessions session.Store
	loc      *i18n.Localizer
	menus    *MenuBuilder
	log      *slog.Logger
	metrics  *metrics.Metrics
	language string
}

func NewDialogue(
	svc *warehouse.Service,
	sessions session.Store,
	loc *i18n.Localizer,
	log *slog.Logger,
	m *metrics.Metrics,
	language string,
) *Dialogue {
	return &Dialogue{
		svc:      svc,
		sessions: sessions,
		loc:      loc,
		menus:    NewMenuBuilder(loc),
		log:      log,
		metrics:  m,
		language: language,
	}
}

// Start handles /start: the account is resolved, any flow is dropped and the home screen is sent.
func (d *Dialogue) Start(ctx context.Context, conv Conversation, id models.Identity) error {
	d.metrics.CommandReceived.WithLabelValues("/start").Inc()

	acct, err := d.svc.ResolveAccount(ctx, id)
	if err != nil {
		d.log.ErrorContext(ctx, "Failed to resolve account", "user", id.TelegramID, "error", err)
		return conv.Send(d.loc.Get(d.language, "error.generic"), nil)
	}

	d.log.InfoContext(ctx, "User started the bot", "user", acct.TelegramID, "role", acct.Role)
	d.sessions.Clear(ctx, acct.TelegramID)

	text, kb := d.home(acct)
	return conv.Send(text, kb)
}

// Callback handles an inline button press. The press is always acknowledged exactly once.
func (d *Dialogue) Callback(ctx context.Context, conv Conversation, id models.Identity, data string) error {
	cb := ParseCallback(data)
	d.metrics.CommandReceived.WithLabelValues(cb.Kind.Name()).Inc()

	if cb.Kind == KindUnknown {
		d.log.DebugContext(ctx, "Ignoring unknown callback", "user", id.TelegramID, "data", data)
		return conv.Respond("")
	}

	acct, err := d.svc.ResolveAccount(ctx, id)
	if err != nil {
		d.log.ErrorContext(ctx, "Failed to resolve account", "user", id.TelegramID, "error", err)
		return conv.Respond(d.loc.Get(d.language, "error.toast"))
	}

	toast, err := d.handleCallback(ctx, conv, acct, cb)
	if err != nil {
		d.log.ErrorContext(ctx, "Failed to handle callback", "user", acct.TelegramID, "data", data, "error", err)
		return conv.Respond(d.loc.Get(d.lang(acct), "error.toast"))
	}

	return conv.Respond(toast)
}

// Text handles free text. Only a flow waiting for typed input consumes it; anything else is dropped.
func (d *Dialogue) Text(ctx context.Context, conv Conversation, id models.Identity, text string) error {
	state := d.sessions.Get(ctx, id.TelegramID)
	if !awaitsText(state) {
		return nil
	}
	d.metrics.CommandReceived.WithLabelValues("text").Inc()

	acct, err := d.svc.ResolveAccount(ctx, id)
	if err != nil {
		d.log.ErrorContext(ctx, "Failed to resolve account", "user", id.TelegramID, "error", err)
		return conv.Send(d.loc.Get(d.language, "error.generic"), nil)
	}

	switch flow := state.(type) {
	case session.UserFlow:
		err = d.userText(ctx, conv, acct, flow, text)
	case session.AdminFlow:
		err = d.adminText(ctx, conv, acct, flow, text)
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, warehouse.ErrForbidden):
		d.sessions.Clear(ctx, acct.TelegramID)
		return conv.Send(d.loc.Get(d.lang(acct), "error.access_denied"), nil)
	default:
		d.log.ErrorContext(ctx, "Failed to handle text", "user", acct.TelegramID, "error", err)
		return conv.Send(d.loc.Get(d.lang(acct), "error.generic"), nil)
	}
}

func (d *Dialogue) handleCallback(ctx context.Context, conv Conversation, acct models.Account, cb Callback) (string, error) {
	if (cb.Kind.AdminOnly() && !acct.IsAdmin()) || (cb.Kind.SuperAdminOnly() && !acct.IsSuperAdmin()) {
		d.log.InfoContext(ctx, "Access denied", "user", acct.TelegramID, "action", cb.Kind.Name())
		return d.loc.Get(d.lang(acct), "error.access_denied"), nil
	}

	switch cb.Kind {
	case KindShopEnter, KindBackToProducts:
		return "", d.showProducts(ctx, conv, acct)
	case KindProduct:
		return "", d.selectProduct(ctx, conv, acct, cb.ID)
	case KindFaculty:
		return "", d.selectFaculty(ctx, conv, acct, cb.ID)
	case KindBackToStart, KindBackToAdmin:
		d.sessions.Clear(ctx, acct.TelegramID)
		text, kb := d.home(acct)
		return "", conv.Edit(text, kb)
	case KindAdminProducts:
		return "", d.adminProducts(ctx, conv, acct)
	case KindAdminOrders:
		return "", d.adminOrders(ctx, conv, acct)
	case KindAdminFaculties:
		return "", d.adminFaculties(ctx, conv, acct)
	case KindManageAdmins:
		return "", d.manageAdmins(ctx, conv, acct)
	case KindAddProduct:
		return "", d.prompt(ctx, conv, acct, session.AdminFlow{Action: session.ActionAddProductName},
			"admin.enter_product_name", Callback{Kind: KindAdminProducts})
	case KindAddFaculty:
		return "", d.prompt(ctx, conv, acct, session.AdminFlow{Action: session.ActionAddFaculty},
			"admin.enter_faculty_name", Callback{Kind: KindAdminFaculties})
	case KindAddAdmin:
		return "", d.prompt(ctx, conv, acct, session.AdminFlow{Action: session.ActionAddAdmin},
			"admin.enter_admin_id", Callback{Kind: KindManageAdmins})
	case KindUpdateStock:
		return d.updateStock(ctx, conv, acct, cb.ID)
	case KindDeleteProduct:
		return d.deleteProduct(ctx, conv, acct, cb.ID)
	case KindDeleteFaculty:
		return d.deleteFaculty(ctx, conv, acct, cb.ID)
	case KindCompleteOrder:
		return d.completeOrder(ctx, conv, acct, cb.ID)
	case KindExportOrders:
		return d.exportOrders(ctx, conv, acct)
	default:
		// faculty_info only labels a row
		return "", nil
	}
}

// home is the start screen: the admin panel for admins, the welcome screen for everyone else.
func (d *Dialogue) home(acct models.Account) (string, Keyboard) {
	lang := d.lang(acct)

	switch {
	case acct.IsSuperAdmin():
		return d.loc.Get(lang, "admin.panel_super"), d.menus.Build(lang, MenuAdmin, acct)
	case acct.IsAdmin():
		return d.loc.Get(lang, "admin.panel"), d.menus.Build(lang, MenuAdmin, acct)
	default:
		return d.loc.Get(lang, "welcome"), d.menus.Build(lang, MenuWelcome, acct)
	}
}

func (d *Dialogue) lang(acct models.Account) string {
	if acct.Language != "" {
		return acct.Language
	}
	return d.language
}

func (d *Dialogue) homeKeyboard(lang string) Keyboard {
	return d.menus.Single(lang, "button.home", Callback{Kind: KindBackToStart})
}

// awaitsText reports whether the state is a step that reads typed input.
func awaitsText(state session.State) bool {
	switch s := state.(type) {
	case session.UserFlow:
		return s.Step == session.StepEnterComment || s.Step == session.StepEnterQuantity
	case session.AdminFlow:
		return true
	default:
		return false
	}
}
