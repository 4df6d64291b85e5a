package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/UnknownOlympus/storekeeper/internal/models"
	"github.com/UnknownOlympus/storekeeper/internal/repository"
	"github.com/UnknownOlympus/storekeeper/internal/session"
	"github.com/UnknownOlympus/storekeeper/internal/warehouse"
)

// showProducts starts (or restarts) the ordering flow at product selection.
func (d *Dialogue) showProducts(ctx context.Context, conv Conversation, acct models.Account) error {
	lang := d.lang(acct)

	products, err := d.svc.Products(ctx)
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}

	if len(products) == 0 {
		d.sessions.Clear(ctx, acct.TelegramID)
		return conv.Edit(d.loc.Get(lang, "shop.empty"), d.homeKeyboard(lang))
	}

	kb := make(Keyboard, 0, len(products)+1)
	for _, product := range products {
		kb = append(kb, []Button{{
			Label: d.loc.GetWithData(lang, "shop.product_line", map[string]any{
				"name":     product.Name,
				"quantity": product.Quantity,
			}),
			Data: Callback{Kind: KindProduct, ID: product.ID}.String(),
		}})
	}
	kb = append(kb, []Button{d.menus.Button(lang, "button.home", Callback{Kind: KindBackToStart})})

	d.sessions.Set(ctx, acct.TelegramID, session.UserFlow{Step: session.StepSelectProduct})
	return conv.Edit(d.loc.Get(lang, "shop.header"), kb)
}

func (d *Dialogue) selectProduct(ctx context.Context, conv Conversation, acct models.Account, productID int) error {
	lang := d.lang(acct)

	product, err := d.svc.Product(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return d.endFlow(ctx, conv, acct, "shop.product_not_found")
	}
	if err != nil {
		return fmt.Errorf("failed to get product %d: %w", productID, err)
	}

	faculties, err := d.svc.Faculties(ctx)
	if err != nil {
		return fmt.Errorf("failed to list faculties: %w", err)
	}
	if len(faculties) == 0 {
		return d.endFlow(ctx, conv, acct, "shop.no_faculties")
	}

	kb := make(Keyboard, 0, len(faculties)+1)
	for _, faculty := range faculties {
		kb = append(kb, []Button{{
			Label: faculty.Name,
			Data:  Callback{Kind: KindFaculty, ID: faculty.ID}.String(),
		}})
	}
	kb = append(kb, []Button{d.menus.Button(lang, "button.back", Callback{Kind: KindBackToProducts})})

	d.sessions.Set(ctx, acct.TelegramID, session.UserFlow{Step: session.StepSelectFaculty, ProductID: product.ID})
	return conv.Edit(d.loc.Get(lang, "shop.choose_faculty"), kb)
}

// selectFaculty only advances a flow that is waiting for a faculty; a stray press restarts the shop.
func (d *Dialogue) selectFaculty(ctx context.Context, conv Conversation, acct models.Account, facultyID int) error {
	flow, ok := d.sessions.Get(ctx, acct.TelegramID).(session.UserFlow)
	if !ok || flow.Step != session.StepSelectFaculty {
		return d.showProducts(ctx, conv, acct)
	}

	faculty, err := d.svc.Faculty(ctx, facultyID)
	if errors.Is(err, repository.ErrNotFound) {
		return d.endFlow(ctx, conv, acct, "shop.faculty_not_found")
	}
	if err != nil {
		return fmt.Errorf("failed to get faculty %d: %w", facultyID, err)
	}

	flow.Step = session.StepEnterComment
	flow.FacultyID = faculty.ID
	d.sessions.Set(ctx, acct.TelegramID, flow)

	lang := d.lang(acct)
	return conv.Edit(
		d.loc.Get(lang, "shop.enter_comment"),
		d.menus.Single(lang, "button.cancel", Callback{Kind: KindBackToStart}),
	)
}

func (d *Dialogue) userText(
	ctx context.Context, conv Conversation, acct models.Account, flow session.UserFlow, text string,
) error {
	switch flow.Step {
	case session.StepEnterComment:
		return d.enterComment(ctx, conv, acct, flow, text)
	case session.StepEnterQuantity:
		return d.enterQuantity(ctx, conv, acct, flow, text)
	default:
		return nil
	}
}

func (d *Dialogue) enterComment(
	ctx context.Context, conv Conversation, acct models.Account, flow session.UserFlow, text string,
) error {
	lang := d.lang(acct)

	comment := strings.TrimSpace(text)
	if comment == "-" || strings.EqualFold(comment, d.loc.Get(lang, "shop.no_comment_word")) {
		comment = ""
	}

	product, err := d.svc.Product(ctx, flow.ProductID)
	if errors.Is(err, repository.ErrNotFound) {
		return d.endFlow(ctx, conv, acct, "shop.product_not_found")
	}
	if err != nil {
		return fmt.Errorf("failed to get product %d: %w", flow.ProductID, err)
	}

	flow.Step = session.StepEnterQuantity
	flow.Comment = comment
	d.sessions.Set(ctx, acct.TelegramID, flow)

	return conv.Send(
		d.loc.GetWithData(lang, "shop.enter_quantity", map[string]any{
			"name":     product.Name,
			"quantity": product.Quantity,
		}),
		d.menus.Single(lang, "button.cancel", Callback{Kind: KindBackToStart}),
	)
}

func (d *Dialogue) enterQuantity(
	ctx context.Context, conv Conversation, acct models.Account, flow session.UserFlow, text string,
) error {
	lang := d.lang(acct)

	quantity, err := warehouse.ParseOrderQuantity(text)
	if err != nil {
		return conv.Send(d.loc.Get(lang, "shop.invalid_quantity"), nil)
	}

	order, err := d.svc.PlaceOrder(ctx, acct, warehouse.OrderRequest{
		ProductID: flow.ProductID,
		FacultyID: flow.FacultyID,
		Comment:   flow.Comment,
		Quantity:  quantity,
	})
	if errors.Is(err, repository.ErrNotFound) {
		key := "shop.faculty_not_found"
		if _, perr := d.svc.Product(ctx, flow.ProductID); errors.Is(perr, repository.ErrNotFound) {
			key = "shop.product_not_found"
		}
		return d.endFlow(ctx, conv, acct, key)
	}
	if err != nil {
		return fmt.Errorf("failed to place order: %w", err)
	}

	d.sessions.Clear(ctx, acct.TelegramID)
	return conv.Send(d.renderOutcome(lang, order), d.homeKeyboard(lang))
}

// renderOutcome picks the full, partial or none template for a placed order.
func (d *Dialogue) renderOutcome(lang string, order models.Order) string {
	commentLine := ""
	if order.Comment != "" {
		commentLine = d.loc.GetWithData(lang, "order.comment_line", map[string]any{"comment": order.Comment})
	}

	return d.loc.GetWithData(lang, "order."+string(order.Outcome()), map[string]any{
		"product":      order.ProductName,
		"faculty":      order.FacultyName,
		"comment_line": commentLine,
		"wanted":       order.Wanted,
		"given":        order.Given,
		"missing":      order.Missing,
	})
}

// endFlow clears the session and tells the user why the flow cannot continue.
func (d *Dialogue) endFlow(ctx context.Context, conv Conversation, acct models.Account, key string) error {
	d.sessions.Clear(ctx, acct.TelegramID)
	lang := d.lang(acct)
	return conv.Edit(d.loc.Get(lang, key), d.homeKeyboard(lang))
}
