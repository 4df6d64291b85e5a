package bot

import (
	"github.com/UnknownOlympus/storekeeper/internal/i18n"
	"github.com/UnknownOlympus/storekeeper/internal/models"
)

// Button is one inline control: the visible label and the callback it sends.
type Button struct {
	Label string
	Data  string
}

// Keyboard is an inline keyboard, row by row.
type Keyboard [][]Button

// MenuType represents the static menu screens.
type MenuType string

const (
	MenuWelcome MenuType = "welcome"
	MenuAdmin   MenuType = "admin"
)

// MenuButton represents a single button in a menu.
type MenuButton struct {
	TextKey      string                    // i18n key for button text
	Callback     Callback                  // what the button sends
	RequiresRole func(models.Account) bool // optional role check
}

// MenuDefinition represents a complete menu screen.
type MenuDefinition struct {
	Type    MenuType
	Buttons []MenuButton
	Layout  []int // Button layout: [2, 1] means 2+1 buttons per row
}

// MenuRegistry holds all menu definitions.
type MenuRegistry struct {
	menus map[MenuType]*MenuDefinition
}

// NewMenuRegistry creates and initializes the menu registry with all menu definitions.
func NewMenuRegistry() *MenuRegistry {
	registry := &MenuRegistry{
		menus: make(map[MenuType]*MenuDefinition),
	}

	registry.menus[MenuWelcome] = &MenuDefinition{
		Type:   MenuWelcome,
		Layout: []int{1},
		Buttons: []MenuButton{
			{TextKey: "button.shop_enter", Callback: Callback{Kind: KindShopEnter}},
		},
	}

	registry.menus[MenuAdmin] = &MenuDefinition{
		Type:   MenuAdmin,
		Layout: []int{2, 1, 1},
		Buttons: []MenuButton{
			{TextKey: "button.products", Callback: Callback{Kind: KindAdminProducts}},
			{TextKey: "button.orders", Callback: Callback{Kind: KindAdminOrders}},
			{TextKey: "button.faculties", Callback: Callback{Kind: KindAdminFaculties}},
			{
				TextKey:      "button.manage_admins",
				Callback:     Callback{Kind: KindManageAdmins},
				RequiresRole: models.Account.IsSuperAdmin,
			},
		},
	}

	return registry
}

// Get returns a menu definition by type.
func (r *MenuRegistry) Get(menuType MenuType) *MenuDefinition {
	return r.menus[menuType]
}

// MenuBuilder renders menus and ad-hoc keyboards in the account's language.
type MenuBuilder struct {
	loc      *i18n.Localizer
	registry *MenuRegistry
}

// NewMenuBuilder creates a new menu builder instance.
func NewMenuBuilder(loc *i18n.Localizer) *MenuBuilder {
	return &MenuBuilder{
		loc:      loc,
		registry: NewMenuRegistry(),
	}
}

// Build generates a keyboard from a menu definition, hiding buttons the account may not use.
func (mb *MenuBuilder) Build(lang string, menuType MenuType, acct models.Account) Keyboard {
	menuDef := mb.registry.Get(menuType)
	if menuDef == nil {
		return nil
	}

	visible := make([]MenuButton, 0, len(menuDef.Buttons))
	for _, btn := range menuDef.Buttons {
		if btn.RequiresRole != nil && !btn.RequiresRole(acct) {
			continue
		}
		visible = append(visible, btn)
	}

	return mb.buildRows(lang, visible, menuDef.Layout)
}

// buildRows lays buttons out by layout; buttons past the layout get a row each.
func (mb *MenuBuilder) buildRows(lang string, buttons []MenuButton, layout []int) Keyboard {
	rows := make(Keyboard, 0, len(layout))
	buttonIdx := 0

	for _, rowSize := range layout {
		if buttonIdx >= len(buttons) {
			break
		}

		row := make([]Button, 0, rowSize)
		for i := 0; i < rowSize && buttonIdx < len(buttons); i++ {
			btn := buttons[buttonIdx]
			buttonIdx++
			row = append(row, mb.Button(lang, btn.TextKey, btn.Callback))
		}
		rows = append(rows, row)
	}

	for ; buttonIdx < len(buttons); buttonIdx++ {
		btn := buttons[buttonIdx]
		rows = append(rows, []Button{mb.Button(lang, btn.TextKey, btn.Callback)})
	}

	return rows
}

// Button builds a single localized button.
func (mb *MenuBuilder) Button(lang, key string, cb Callback) Button {
	return Button{Label: mb.loc.Get(lang, key), Data: cb.String()}
}

// Single is a keyboard with one localized button.
func (mb *MenuBuilder) Single(lang, key string, cb Callback) Keyboard {
	return Keyboard{{mb.Button(lang, key, cb)}}
}
