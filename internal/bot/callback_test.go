package bot_test

import (
	"testing"

	"github.com/UnknownOlympus/storekeeper/internal/bot"
	"github.com/stretchr/testify/assert"
)

func TestParseCallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		data     string
		expected bot.Callback
	}{
		{data: "shop_enter", expected: bot.Callback{Kind: bot.KindShopEnter}},
		{data: "product_12", expected: bot.Callback{Kind: bot.KindProduct, ID: 12}},
		{data: "faculty_3", expected: bot.Callback{Kind: bot.KindFaculty, ID: 3}},
		{data: "faculty_info_3", expected: bot.Callback{Kind: bot.KindFacultyInfo, ID: 3}},
		{data: "back_to_start", expected: bot.Callback{Kind: bot.KindBackToStart}},
		{data: "back_to_products", expected: bot.Callback{Kind: bot.KindBackToProducts}},
		{data: "admin_update_stock_7", expected: bot.Callback{Kind: bot.KindUpdateStock, ID: 7}},
		{data: "admin_delete_product_8", expected: bot.Callback{Kind: bot.KindDeleteProduct, ID: 8}},
		{data: "admin_delete_faculty_9", expected: bot.Callback{Kind: bot.KindDeleteFaculty, ID: 9}},
		{data: "admin_complete_order_10", expected: bot.Callback{Kind: bot.KindCompleteOrder, ID: 10}},
		{data: "admin_export_orders", expected: bot.Callback{Kind: bot.KindExportOrders}},
		{data: "admin_manage_admins", expected: bot.Callback{Kind: bot.KindManageAdmins}},
		{data: "product_", expected: bot.Callback{Kind: bot.KindUnknown}},
		{data: "product_abc", expected: bot.Callback{Kind: bot.KindUnknown}},
		{data: "product_-1", expected: bot.Callback{Kind: bot.KindUnknown}},
		{data: "product_+1", expected: bot.Callback{Kind: bot.KindUnknown}},
		{data: "admin_update_stock_", expected: bot.Callback{Kind: bot.KindUnknown}},
		{data: "something_else", expected: bot.Callback{Kind: bot.KindUnknown}},
		{data: "", expected: bot.Callback{Kind: bot.KindUnknown}},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, bot.ParseCallback(tt.data))
		})
	}
}

func TestCallback_StringRoundTrip(t *testing.T) {
	t.Parallel()

	for kind := bot.KindShopEnter; kind <= bot.KindExportOrders; kind++ {
		cb := bot.Callback{Kind: kind}
		if bot.ParseCallback(cb.String()).Kind != kind {
			cb.ID = 42
		}
		assert.Equal(t, cb, bot.ParseCallback(cb.String()), kind.Name())
	}
}

func TestKind_Roles(t *testing.T) {
	t.Parallel()

	assert.False(t, bot.KindShopEnter.AdminOnly())
	assert.False(t, bot.KindProduct.AdminOnly())
	assert.False(t, bot.KindBackToStart.AdminOnly())
	assert.True(t, bot.KindDeleteFaculty.AdminOnly())
	assert.True(t, bot.KindExportOrders.AdminOnly())
	assert.True(t, bot.KindAddAdmin.AdminOnly())
	assert.True(t, bot.KindAddAdmin.SuperAdminOnly())
	assert.False(t, bot.KindAdminOrders.SuperAdminOnly())
	assert.Equal(t, "admin_update_stock", bot.KindUpdateStock.Name())
	assert.Equal(t, "unknown", bot.KindUnknown.Name())
}
