package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/UnknownOlympus/storekeeper/internal/models"
	"github.com/UnknownOlympus/storekeeper/internal/notify"
	"github.com/UnknownOlympus/storekeeper/internal/report"
	"github.com/UnknownOlympus/storekeeper/internal/repository"
	"github.com/UnknownOlympus/storekeeper/internal/session"
	"github.com/UnknownOlympus/storekeeper/internal/warehouse"
)

// maxMessageLength stays below Telegram's 4096 character limit to leave room for the truncation note.
const maxMessageLength = 3800

// maxCompleteButtons caps the completion shortcuts on the orders screen.
const maxCompleteButtons = 10

var statusEmoji = map[models.OrderStatus]string{
	models.OrderPending:   "⏳",
	models.OrderReady:     "✅",
	models.OrderCompleted: "✔️",
	models.OrderCancelled: "❌",
}

func (d *Dialogue) adminProducts(ctx context.Context, conv Conversation, acct models.Account) error {
	d.sessions.Clear(ctx, acct.TelegramID)
	lang := d.lang(acct)

	products, err := d.svc.Products(ctx)
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}

	var builder strings.Builder
	builder.WriteString(d.loc.Get(lang, "admin.products_header"))
	builder.WriteString("\n\n")
	if len(products) == 0 {
		builder.WriteString(d.loc.Get(lang, "admin.products_empty"))
	}

	kb := make(Keyboard, 0, len(products)+2)
	for _, product := range products {
		builder.WriteString(d.loc.GetWithData(lang, "admin.product_line", map[string]any{
			"name":     product.Name,
			"quantity": product.Quantity,
		}))
		builder.WriteString("\n")

		kb = append(kb, []Button{
			{
				Label: d.loc.GetWithData(lang, "button.edit_product", map[string]any{"name": product.Name}),
				Data:  Callback{Kind: KindUpdateStock, ID: product.ID}.String(),
			},
			d.menus.Button(lang, "button.delete", Callback{Kind: KindDeleteProduct, ID: product.ID}),
		})
	}
	kb = append(kb,
		[]Button{d.menus.Button(lang, "button.add_product", Callback{Kind: KindAddProduct})},
		[]Button{d.menus.Button(lang, "button.admin_panel", Callback{Kind: KindBackToAdmin})},
	)

	return conv.Edit(builder.String(), kb)
}

func (d *Dialogue) adminFaculties(ctx context.Context, conv Conversation, acct models.Account) error {
	d.sessions.Clear(ctx, acct.TelegramID)
	lang := d.lang(acct)

	faculties, err := d.svc.Faculties(ctx)
	if err != nil {
		return fmt.Errorf("failed to list faculties: %w", err)
	}

	var builder strings.Builder
	builder.WriteString(d.loc.Get(lang, "admin.faculties_header"))
	builder.WriteString("\n\n")
	if len(faculties) == 0 {
		builder.WriteString(d.loc.Get(lang, "admin.faculties_empty"))
	}

	kb := make(Keyboard, 0, len(faculties)+2)
	for _, faculty := range faculties {
		builder.WriteString(d.loc.GetWithData(lang, "admin.faculty_line", map[string]any{"name": faculty.Name}))
		builder.WriteString("\n")

		kb = append(kb, []Button{
			{Label: faculty.Name, Data: Callback{Kind: KindFacultyInfo, ID: faculty.ID}.String()},
			d.menus.Button(lang, "button.delete", Callback{Kind: KindDeleteFaculty, ID: faculty.ID}),
		})
	}
	kb = append(kb,
		[]Button{d.menus.Button(lang, "button.add_faculty", Callback{Kind: KindAddFaculty})},
		[]Button{d.menus.Button(lang, "button.admin_panel", Callback{Kind: KindBackToAdmin})},
	)

	return conv.Edit(builder.String(), kb)
}

func (d *Dialogue) adminOrders(ctx context.Context, conv Conversation, acct models.Account) error {
	d.sessions.Clear(ctx, acct.TelegramID)
	lang := d.lang(acct)

	orders, err := d.svc.RecentOrders(ctx, acct, warehouse.RecentOrdersLimit)
	if err != nil {
		return fmt.Errorf("failed to list orders: %w", err)
	}

	var builder strings.Builder
	builder.WriteString(d.loc.Get(lang, "admin.orders_header"))
	builder.WriteString("\n\n")
	if len(orders) == 0 {
		builder.WriteString(d.loc.Get(lang, "admin.orders_empty"))
	}

	var completable []Button
	for _, order := range orders {
		entry := d.renderOrderEntry(lang, order)
		if utf8.RuneCountInString(builder.String())+utf8.RuneCountInString(entry) > maxMessageLength {
			builder.WriteString(d.loc.Get(lang, "admin.orders_truncated"))
			break
		}
		builder.WriteString(entry)
		builder.WriteString("\n")

		if order.Status.Open() && len(completable) < maxCompleteButtons {
			completable = append(completable, Button{
				Label: d.loc.GetWithData(lang, "button.complete_order", map[string]any{"id": order.ID}),
				Data:  Callback{Kind: KindCompleteOrder, ID: order.ID}.String(),
			})
		}
	}

	kb := make(Keyboard, 0, len(completable)/2+3) //nolint:mnd // two buttons per row plus footer rows
	for i := 0; i < len(completable); i += 2 {
		kb = append(kb, completable[i:min(i+2, len(completable))])
	}
	if len(orders) > 0 {
		kb = append(kb, []Button{d.menus.Button(lang, "button.export_orders", Callback{Kind: KindExportOrders})})
	}
	kb = append(kb, []Button{d.menus.Button(lang, "button.admin_panel", Callback{Kind: KindBackToAdmin})})

	return conv.Edit(builder.String(), kb)
}

func (d *Dialogue) renderOrderEntry(lang string, order models.Order) string {
	commentLine := ""
	if order.Comment != "" {
		commentLine = d.loc.GetWithData(lang, "admin.comment_line", map[string]any{"comment": order.Comment})
	}
	missingLine := ""
	if order.Missing > 0 {
		missingLine = d.loc.GetWithData(lang, "admin.missing_line", map[string]any{"missing": order.Missing})
	}

	return d.loc.GetWithData(lang, "admin.order_entry", map[string]any{
		"emoji":        statusEmoji[order.Status],
		"id":           order.ID,
		"requester":    order.Requester.Handle(),
		"product":      order.ProductName,
		"faculty":      order.FacultyName,
		"comment_line": commentLine,
		"wanted":       order.Wanted,
		"given":        order.Given,
		"missing_line": missingLine,
		"date":         order.CreatedAt.Format(notify.DateLayout),
	})
}

func (d *Dialogue) manageAdmins(ctx context.Context, conv Conversation, acct models.Account) error {
	d.sessions.Clear(ctx, acct.TelegramID)
	lang := d.lang(acct)

	admins, err := d.svc.Admins(ctx, acct)
	if err != nil {
		return fmt.Errorf("failed to list admins: %w", err)
	}

	var builder strings.Builder
	builder.WriteString(d.loc.Get(lang, "admin.admins_header"))
	builder.WriteString("\n\n")
	for _, admin := range admins {
		emoji := "👤"
		if admin.IsSuperAdmin() {
			emoji = "👑"
		}
		builder.WriteString(d.loc.GetWithData(lang, "admin.admin_entry", map[string]any{
			"emoji": emoji,
			"name":  admin.Handle(),
			"id":    admin.TelegramID,
			"role":  admin.Role,
		}))
		builder.WriteString("\n")
	}

	return conv.Edit(builder.String(), Keyboard{
		{d.menus.Button(lang, "button.add_admin", Callback{Kind: KindAddAdmin})},
		{d.menus.Button(lang, "button.admin_panel", Callback{Kind: KindBackToAdmin})},
	})
}

// prompt starts an admin text-entry flow.
func (d *Dialogue) prompt(
	ctx context.Context, conv Conversation, acct models.Account, flow session.AdminFlow, key string, cancel Callback,
) error {
	d.sessions.Set(ctx, acct.TelegramID, flow)
	lang := d.lang(acct)
	return conv.Edit(d.loc.Get(lang, key), d.menus.Single(lang, "button.cancel", cancel))
}

func (d *Dialogue) updateStock(ctx context.Context, conv Conversation, acct models.Account, productID int) (string, error) {
	lang := d.lang(acct)

	product, err := d.svc.Product(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return d.loc.Get(lang, "admin.not_found"), d.adminProducts(ctx, conv, acct)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get product %d: %w", productID, err)
	}

	d.sessions.Set(ctx, acct.TelegramID, session.AdminFlow{Action: session.ActionUpdateStock, ProductID: product.ID})
	return "", conv.Edit(
		d.loc.GetWithData(lang, "admin.enter_stock", map[string]any{"name": product.Name, "quantity": product.Quantity}),
		d.menus.Single(lang, "button.cancel", Callback{Kind: KindAdminProducts}),
	)
}

func (d *Dialogue) deleteProduct(ctx context.Context, conv Conversation, acct models.Account, productID int) (string, error) {
	lang := d.lang(acct)

	product, err := d.svc.DeleteProduct(ctx, acct, productID)
	switch {
	case errors.Is(err, repository.ErrReferenced):
		return d.loc.Get(lang, "admin.product_referenced"), nil
	case errors.Is(err, repository.ErrNotFound):
		return d.loc.Get(lang, "admin.not_found"), d.adminProducts(ctx, conv, acct)
	case err != nil:
		return "", fmt.Errorf("failed to delete product %d: %w", productID, err)
	}

	d.log.InfoContext(ctx, "Product deleted", "product", product.ID, "admin", acct.TelegramID)
	return d.loc.GetWithData(lang, "admin.product_deleted", map[string]any{"name": product.Name}),
		d.adminProducts(ctx, conv, acct)
}

func (d *Dialogue) deleteFaculty(ctx context.Context, conv Conversation, acct models.Account, facultyID int) (string, error) {
	lang := d.lang(acct)

	faculty, err := d.svc.DeleteFaculty(ctx, acct, facultyID)
	switch {
	case errors.Is(err, repository.ErrReferenced):
		return d.loc.Get(lang, "admin.faculty_referenced"), nil
	case errors.Is(err, repository.ErrNotFound):
		return d.loc.Get(lang, "admin.not_found"), d.adminFaculties(ctx, conv, acct)
	case err != nil:
		return "", fmt.Errorf("failed to delete faculty %d: %w", facultyID, err)
	}

	d.log.InfoContext(ctx, "Faculty deleted", "faculty", faculty.ID, "admin", acct.TelegramID)
	return d.loc.GetWithData(lang, "admin.faculty_deleted", map[string]any{"name": faculty.Name}),
		d.adminFaculties(ctx, conv, acct)
}

func (d *Dialogue) completeOrder(ctx context.Context, conv Conversation, acct models.Account, orderID int) (string, error) {
	lang := d.lang(acct)

	err := d.svc.CompleteOrder(ctx, acct, orderID)
	switch {
	case errors.Is(err, repository.ErrNotCompletable):
		return d.loc.Get(lang, "admin.order_not_completable"), nil
	case errors.Is(err, repository.ErrNotFound):
		return d.loc.Get(lang, "admin.not_found"), nil
	case err != nil:
		return "", fmt.Errorf("failed to complete order %d: %w", orderID, err)
	}

	return d.loc.Get(lang, "admin.order_completed"), d.adminOrders(ctx, conv, acct)
}

func (d *Dialogue) exportOrders(ctx context.Context, conv Conversation, acct models.Account) (string, error) {
	lang := d.lang(acct)
	start := time.Now()

	orders, err := d.svc.RecentOrders(ctx, acct, warehouse.ExportOrdersLimit)
	if err != nil {
		return "", fmt.Errorf("failed to list orders for export: %w", err)
	}

	buffer, err := report.GenerateOrdersReport(orders)
	if errors.Is(err, report.ErrNoOrders) {
		return d.loc.Get(lang, "admin.export_empty"), nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate orders report: %w", err)
	}
	d.metrics.ReportGeneration.Observe(time.Since(start).Seconds())

	fileName := fmt.Sprintf("orders_%s.xlsx", time.Now().Format("2006-01-02"))
	if err = conv.SendFile(fileName, buffer, d.loc.Get(lang, "admin.export_caption")); err != nil {
		return "", fmt.Errorf("failed to send orders report: %w", err)
	}

	d.log.InfoContext(ctx, "Orders exported", "admin", acct.TelegramID, "orders", len(orders))
	return "", nil
}

func (d *Dialogue) adminText(
	ctx context.Context, conv Conversation, acct models.Account, flow session.AdminFlow, text string,
) error {
	if !acct.IsAdmin() {
		return warehouse.ErrForbidden
	}

	switch flow.Action {
	case session.ActionAddProductName:
		return d.enterProductName(ctx, conv, acct, text)
	case session.ActionAddProductQuantity:
		return d.enterProductQuantity(ctx, conv, acct, flow, text)
	case session.ActionUpdateStock:
		return d.enterStock(ctx, conv, acct, flow, text)
	case session.ActionAddFaculty:
		return d.enterFacultyName(ctx, conv, acct, text)
	case session.ActionAddAdmin:
		return d.enterAdminID(ctx, conv, acct, text)
	default:
		d.sessions.Clear(ctx, acct.TelegramID)
		return nil
	}
}

func (d *Dialogue) enterProductName(ctx context.Context, conv Conversation, acct models.Account, text string) error {
	lang := d.lang(acct)

	name := strings.TrimSpace(text)
	if name == "" {
		return conv.Send(d.loc.Get(lang, "admin.enter_product_name"), nil)
	}

	d.sessions.Set(ctx, acct.TelegramID, session.AdminFlow{Action: session.ActionAddProductQuantity, ProductName: name})
	return conv.Send(
		d.loc.Get(lang, "admin.enter_product_quantity"),
		d.menus.Single(lang, "button.cancel", Callback{Kind: KindAdminProducts}),
	)
}

func (d *Dialogue) enterProductQuantity(
	ctx context.Context, conv Conversation, acct models.Account, flow session.AdminFlow, text string,
) error {
	lang := d.lang(acct)
	back := d.menus.Single(lang, "button.products_back", Callback{Kind: KindAdminProducts})

	quantity, err := warehouse.ParseStockQuantity(text)
	if err != nil {
		return conv.Send(d.loc.Get(lang, "admin.invalid_product_quantity"), nil)
	}

	product, err := d.svc.CreateProduct(ctx, acct, flow.ProductName, quantity)
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		d.sessions.Clear(ctx, acct.TelegramID)
		return conv.Send(d.loc.Get(lang, "admin.product_exists"), back)
	case err != nil:
		return fmt.Errorf("failed to create product: %w", err)
	}

	d.sessions.Clear(ctx, acct.TelegramID)
	d.log.InfoContext(ctx, "Product added", "product", product.ID, "admin", acct.TelegramID)
	return conv.Send(d.loc.GetWithData(lang, "admin.product_added", map[string]any{
		"name":     product.Name,
		"quantity": product.Quantity,
	}), back)
}

func (d *Dialogue) enterStock(
	ctx context.Context, conv Conversation, acct models.Account, flow session.AdminFlow, text string,
) error {
	lang := d.lang(acct)
	back := d.menus.Single(lang, "button.products_back", Callback{Kind: KindAdminProducts})

	change, err := d.svc.AdjustStock(ctx, acct, flow.ProductID, text)
	switch {
	case errors.Is(err, warehouse.ErrInvalidStockEdit):
		return conv.Send(d.loc.Get(lang, "admin.invalid_stock"), nil)
	case errors.Is(err, repository.ErrNotFound):
		d.sessions.Clear(ctx, acct.TelegramID)
		return conv.Send(d.loc.Get(lang, "admin.not_found"), back)
	case err != nil:
		return fmt.Errorf("failed to adjust stock: %w", err)
	}

	d.sessions.Clear(ctx, acct.TelegramID)
	return conv.Send(d.loc.GetWithData(lang, "admin.stock_updated", map[string]any{
		"name":     change.Product.Name,
		"previous": change.Previous,
		"updated":  change.Updated,
	}), back)
}

func (d *Dialogue) enterFacultyName(ctx context.Context, conv Conversation, acct models.Account, text string) error {
	lang := d.lang(acct)
	back := d.menus.Single(lang, "button.faculties_back", Callback{Kind: KindAdminFaculties})

	faculty, err := d.svc.CreateFaculty(ctx, acct, text)
	switch {
	case errors.Is(err, warehouse.ErrEmptyName):
		return conv.Send(d.loc.Get(lang, "admin.enter_faculty_name"), nil)
	case errors.Is(err, repository.ErrDuplicate):
		d.sessions.Clear(ctx, acct.TelegramID)
		return conv.Send(d.loc.Get(lang, "admin.faculty_exists"), back)
	case err != nil:
		return fmt.Errorf("failed to create faculty: %w", err)
	}

	d.sessions.Clear(ctx, acct.TelegramID)
	d.log.InfoContext(ctx, "Faculty added", "faculty", faculty.ID, "admin", acct.TelegramID)
	return conv.Send(d.loc.GetWithData(lang, "admin.faculty_added", map[string]any{"name": faculty.Name}), back)
}

func (d *Dialogue) enterAdminID(ctx context.Context, conv Conversation, acct models.Account, text string) error {
	lang := d.lang(acct)
	back := d.menus.Single(lang, "button.admins_back", Callback{Kind: KindManageAdmins})

	admin, err := d.svc.AddAdmin(ctx, acct, text)
	switch {
	case errors.Is(err, warehouse.ErrInvalidTelegramID):
		return conv.Send(d.loc.Get(lang, "admin.invalid_admin_id"), nil)
	case errors.Is(err, repository.ErrAlreadyAdmin):
		d.sessions.Clear(ctx, acct.TelegramID)
		return conv.Send(d.loc.Get(lang, "admin.already_admin"), back)
	case err != nil:
		return fmt.Errorf("failed to add admin: %w", err)
	}

	d.sessions.Clear(ctx, acct.TelegramID)
	return conv.Send(d.loc.GetWithData(lang, "admin.admin_added", map[string]any{"id": admin.TelegramID}), back)
}
