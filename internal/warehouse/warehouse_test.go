package warehouse_test

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/UnknownOlympus/storekeeper/internal/metrics"
	"github.com/UnknownOlympus/storekeeper/internal/models"
	"github.com/UnknownOlympus/storekeeper/internal/repository"
	"github.com/UnknownOlympus/storekeeper/internal/warehouse"
	"github.com/UnknownOlympus/storekeeper/internal/warehouse/warehousetest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *warehousetest.Store
	notifier *warehousetest.Notifier
	service  *warehouse.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := warehousetest.NewStore()
	notifier := &warehousetest.Notifier{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewMetrics(prometheus.NewRegistry())

	return fixture{
		store:    store,
		notifier: notifier,
		service:  warehouse.NewService(store, notifier, log, m, "uz"),
	}
}

func TestAllocate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		requested int
		available int
		expected  models.Allocation
	}{
		{name: "full", requested: 3, available: 10, expected: models.Allocation{Given: 3, Status: models.OrderReady}},
		{name: "exact", requested: 5, available: 5, expected: models.Allocation{Given: 5, Status: models.OrderReady}},
		{name: "partial", requested: 8, available: 5, expected: models.Allocation{Given: 5, Missing: 3, Status: models.OrderReady}},
		{name: "none", requested: 4, available: 0, expected: models.Allocation{Missing: 4, Status: models.OrderPending}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, warehouse.Allocate(tt.requested, tt.available))
		})
	}
}

func TestAllocate_Properties(t *testing.T) {
	t.Parallel()
	for requested := 1; requested <= 30; requested++ {
		for available := 0; available <= 30; available++ {
			alloc := warehouse.Allocate(requested, available)

			require.Equal(t, min(requested, available), alloc.Given)
			require.Equal(t, requested, alloc.Given+alloc.Missing)
			require.GreaterOrEqual(t, available-alloc.Given, 0)
			require.Equal(t, alloc.Given > 0, alloc.Status == models.OrderReady)
			require.Equal(t, alloc.Given == 0, alloc.Status == models.OrderPending)
		}
	}
}

func TestParseOrderQuantity(t *testing.T) {
	t.Parallel()
	for _, text := range []string{"0", "-1", "abc", "", "1.5", "99999999999"} {
		_, err := warehouse.ParseOrderQuantity(text)
		require.ErrorIs(t, err, warehouse.ErrInvalidQuantity, text)
	}

	quantity, err := warehouse.ParseOrderQuantity(" 12 ")
	require.NoError(t, err)
	assert.Equal(t, 12, quantity)
}

func TestParseStockEdit(t *testing.T) {
	t.Parallel()
	tests := []struct {
		text    string
		current int
		want    int
		wantErr bool
	}{
		{text: "+5", current: 10, want: 15},
		{text: "-5", current: 3, want: 0},
		{text: "-2", current: 3, want: 1},
		{text: "20", current: 7, want: 20},
		{text: " 0 ", current: 7, want: 0},
		{text: "+0", current: 7, want: 7},
		{text: "-abc", wantErr: true},
		{text: "abc", wantErr: true},
		{text: "+-3", wantErr: true},
		{text: "--3", wantErr: true},
		{text: "", wantErr: true},
		{text: "+", wantErr: true},
		{text: "1e3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			edit, err := warehouse.ParseStockEdit(tt.text)
			if tt.wantErr {
				require.ErrorIs(t, err, warehouse.ErrInvalidStockEdit)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, edit.Apply(tt.current))
		})
	}
}

func TestParseStockQuantity(t *testing.T) {
	t.Parallel()
	quantity, err := warehouse.ParseStockQuantity("0")
	require.NoError(t, err)
	assert.Equal(t, 0, quantity)

	for _, text := range []string{"+3", "-1", "x"} {
		_, err = warehouse.ParseStockQuantity(text)
		require.ErrorIs(t, err, warehouse.ErrInvalidQuantity, text)
	}
}

func TestResolveAccount(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := t.Context()

	account, err := f.service.ResolveAccount(ctx, models.Identity{
		TelegramID: 42, FirstName: "Ali", LastName: "Valiyev", Username: "ali", LanguageCode: "en-US",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, account.Role)
	assert.Equal(t, "Ali Valiyev", account.FullName)
	assert.Equal(t, "en", account.Language)

	again, err := f.service.ResolveAccount(ctx, models.Identity{TelegramID: 42, FirstName: "Changed"})
	require.NoError(t, err)
	assert.Equal(t, account.ID, again.ID)
	assert.Equal(t, "Ali Valiyev", again.FullName)

	onlyLast, err := f.service.ResolveAccount(ctx, models.Identity{TelegramID: 43, LastName: "Karimov"})
	require.NoError(t, err)
	assert.Equal(t, "Karimov", onlyLast.FullName)
	assert.Equal(t, "uz", onlyLast.Language)
}

func TestResolveAccount_StoreError(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.store.Err = assert.AnError

	_, err := f.service.ResolveAccount(t.Context(), models.Identity{TelegramID: 1})

	require.ErrorIs(t, err, assert.AnError)
}

func TestSeedSuperAdmin(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("creates and is idempotent", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		require.NoError(t, f.service.SeedSuperAdmin(ctx, "777"))
		require.NoError(t, f.service.SeedSuperAdmin(ctx, "777"))

		account, err := f.store.GetAccount(ctx, 777)
		require.NoError(t, err)
		assert.Equal(t, models.RoleSuperAdmin, account.Role)
		assert.Equal(t, "SuperAdmin", account.FullName)
	})

	t.Run("promotes existing user", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.store.AddAccount(models.Account{TelegramID: 777, FullName: "Boss", Role: models.RoleUser})

		require.NoError(t, f.service.SeedSuperAdmin(ctx, "777"))

		account, err := f.store.GetAccount(ctx, 777)
		require.NoError(t, err)
		assert.Equal(t, models.RoleSuperAdmin, account.Role)
		assert.Equal(t, "Boss", account.FullName)
	})

	t.Run("empty and invalid are skipped", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		require.NoError(t, f.service.SeedSuperAdmin(ctx, ""))
		require.NoError(t, f.service.SeedSuperAdmin(ctx, "abc"))

		admins, err := f.store.ListAdmins(ctx)
		require.NoError(t, err)
		assert.Empty(t, admins)
	})
}

func TestPlaceOrder_PenScenario(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := t.Context()

	f.store.AddAccount(models.Account{TelegramID: 1, Role: models.RoleSuperAdmin})
	user := f.store.AddAccount(models.Account{TelegramID: 2, Username: "ali", Role: models.RoleUser})
	pen := f.store.AddProduct("Pen", 5)
	math := f.store.AddFaculty("Math")

	order, err := f.service.PlaceOrder(ctx, user, warehouse.OrderRequest{
		ProductID: pen.ID, FacultyID: math.ID, Comment: "room 5", Quantity: 8,
	})

	require.NoError(t, err)
	assert.Equal(t, 8, order.Wanted)
	assert.Equal(t, 5, order.Given)
	assert.Equal(t, 3, order.Missing)
	assert.Equal(t, models.OrderReady, order.Status)
	assert.Equal(t, models.OutcomePartial, order.Outcome())

	stored, err := f.store.GetProduct(ctx, pen.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Quantity)
	require.Len(t, f.notifier.OrderEvents, 1)
	assert.Equal(t, order.ID, f.notifier.OrderEvents[0].ID)
}

func TestPlaceOrder_NotFound(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	user := f.store.AddAccount(models.Account{TelegramID: 2, Role: models.RoleUser})
	math := f.store.AddFaculty("Math")

	_, err := f.service.PlaceOrder(t.Context(), user, warehouse.OrderRequest{ProductID: 999, FacultyID: math.ID, Quantity: 1})

	require.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, f.store.Orders())
	assert.Empty(t, f.notifier.OrderEvents)
}

func TestPlaceOrder_InvalidQuantity(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.service.PlaceOrder(t.Context(), models.Account{}, warehouse.OrderRequest{Quantity: 0})

	require.ErrorIs(t, err, warehouse.ErrInvalidQuantity)
}

func TestPlaceOrder_ConcurrentNeverOverdraws(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := t.Context()
	user := f.store.AddAccount(models.Account{TelegramID: 2, Role: models.RoleUser})
	pen := f.store.AddProduct("Pen", 17)
	math := f.store.AddFaculty("Math")

	var wg sync.WaitGroup
	for range 25 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.PlaceOrder(ctx, user, warehouse.OrderRequest{ProductID: pen.ID, FacultyID: math.ID, Quantity: 2})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	given := 0
	for _, order := range f.store.Orders() {
		given += order.Given
		assert.Equal(t, 2, order.Given+order.Missing)
	}
	stored, err := f.store.GetProduct(ctx, pen.ID)
	require.NoError(t, err)
	assert.Equal(t, 17, given)
	assert.Equal(t, 0, stored.Quantity)
}

func TestAdjustStock_Backfill(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := t.Context()
	admin := f.store.AddAccount(models.Account{TelegramID: 1, Role: models.RoleAdmin})
	alice := f.store.AddAccount(models.Account{TelegramID: 2, Role: models.RoleUser})
	bob := f.store.AddAccount(models.Account{TelegramID: 3, Role: models.RoleUser})
	pen := f.store.AddProduct("Pen", 2)
	paper := f.store.AddProduct("Paper", 0)
	math := f.store.AddFaculty("Math")

	full, err := f.service.PlaceOrder(ctx, alice, warehouse.OrderRequest{ProductID: pen.ID, FacultyID: math.ID, Quantity: 2})
	require.NoError(t, err)
	waiting, err := f.service.PlaceOrder(ctx, bob, warehouse.OrderRequest{ProductID: pen.ID, FacultyID: math.ID, Quantity: 4})
	require.NoError(t, err)
	completed, err := f.service.PlaceOrder(ctx, alice, warehouse.OrderRequest{ProductID: pen.ID, FacultyID: math.ID, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, f.service.CompleteOrder(ctx, admin, completed.ID))
	_, err = f.service.PlaceOrder(ctx, bob, warehouse.OrderRequest{ProductID: paper.ID, FacultyID: math.ID, Quantity: 1})
	require.NoError(t, err)
	require.Equal(t, models.OutcomeFull, full.Outcome())

	change, err := f.service.AdjustStock(ctx, admin, pen.ID, "+10")

	require.NoError(t, err)
	assert.Equal(t, 0, change.Previous)
	assert.Equal(t, 10, change.Updated)
	require.Len(t, f.notifier.Replenished, 1)
	assert.Equal(t, waiting.ID, f.notifier.Replenished[0].ID)
	assert.Equal(t, 4, f.notifier.Replenished[0].Missing)

	// No reallocation happens.
	for _, order := range f.store.Orders() {
		if order.ID == waiting.ID {
			assert.Equal(t, 0, order.Given)
			assert.Equal(t, 4, order.Missing)
		}
	}
}

func TestAdjustStock_DecreaseDoesNotNotify(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := t.Context()
	admin := f.store.AddAccount(models.Account{TelegramID: 1, Role: models.RoleAdmin})
	user := f.store.AddAccount(models.Account{TelegramID: 2, Role: models.RoleUser})
	pen := f.store.AddProduct("Pen", 0)
	math := f.store.AddFaculty("Math")
	_, err := f.service.PlaceOrder(ctx, user, warehouse.OrderRequest{ProductID: pen.ID, FacultyID: math.ID, Quantity: 3})
	require.NoError(t, err)

	change, err := f.service.AdjustStock(ctx, admin, pen.ID, "-5")
	require.NoError(t, err)
	assert.Equal(t, 0, change.Updated)

	_, err = f.service.AdjustStock(ctx, admin, pen.ID, "0")
	require.NoError(t, err)

	assert.Empty(t, f.notifier.Replenished)
}

func TestAdjustStock_Rejections(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := t.Context()
	admin := f.store.AddAccount(models.Account{TelegramID: 1, Role: models.RoleAdmin})
	user := f.store.AddAccount(models.Account{TelegramID: 2, Role: models.RoleUser})
	pen := f.store.AddProduct("Pen", 4)

	_, err := f.service.AdjustStock(ctx, user, pen.ID, "+1")
	require.ErrorIs(t, err, warehouse.ErrForbidden)

	_, err = f.service.AdjustStock(ctx, admin, pen.ID, "abc")
	require.ErrorIs(t, err, warehouse.ErrInvalidStockEdit)

	_, err = f.service.AdjustStock(ctx, admin, 999, "+1")
	require.ErrorIs(t, err, repository.ErrNotFound)

	stored, err := f.store.GetProduct(ctx, pen.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Quantity)
}

func TestAddAdmin(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("promotes user once", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		super := f.store.AddAccount(models.Account{TelegramID: 1, Role: models.RoleSuperAdmin})
		f.store.AddAccount(models.Account{TelegramID: 50, FullName: "Vali", Role: models.RoleUser})

		admin, err := f.service.AddAdmin(ctx, super, "50")
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, admin.Role)
		assert.Equal(t, "Vali", admin.FullName)

		_, err = f.service.AddAdmin(ctx, super, "50")
		require.ErrorIs(t, err, repository.ErrAlreadyAdmin)

		admins, err := f.service.Admins(ctx, super)
		require.NoError(t, err)
		assert.Len(t, admins, 2)
		assert.Len(t, f.notifier.Granted, 1)
	})

	t.Run("creates unknown account as admin", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		super := f.store.AddAccount(models.Account{TelegramID: 1, Role: models.RoleSuperAdmin})
		f.notifier.GrantErr = assert.AnError

		admin, err := f.service.AddAdmin(ctx, super, " 60 ")

		require.NoError(t, err)
		assert.Equal(t, "Admin", admin.FullName)
		assert.Equal(t, models.RoleAdmin, admin.Role)
	})

	t.Run("super admin is never demoted", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		super := f.store.AddAccount(models.Account{TelegramID: 1, Role: models.RoleSuperAdmin})

		_, err := f.service.AddAdmin(ctx, super, "1")

		require.ErrorIs(t, err, repository.ErrAlreadyAdmin)
		account, err := f.store.GetAccount(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, models.RoleSuperAdmin, account.Role)
	})

	t.Run("rejections", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		super := f.store.AddAccount(models.Account{TelegramID: 1, Role: models.RoleSuperAdmin})
		admin := f.store.AddAccount(models.Account{TelegramID: 2, Role: models.RoleAdmin})

		_, err := f.service.AddAdmin(ctx, admin, "50")
		require.ErrorIs(t, err, warehouse.ErrForbidden)

		_, err = f.service.Admins(ctx, admin)
		require.ErrorIs(t, err, warehouse.ErrForbidden)

		for _, text := range []string{"abc", "-5", "12a", ""} {
			_, err = f.service.AddAdmin(ctx, super, text)
			require.ErrorIs(t, err, warehouse.ErrInvalidTelegramID, text)
		}
	})
}

func TestCatalogAdmin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := t.Context()
	admin := f.store.AddAccount(models.Account{TelegramID: 1, Role: models.RoleAdmin})
	user := f.store.AddAccount(models.Account{TelegramID: 2, Role: models.RoleUser})

	_, err := f.service.CreateProduct(ctx, user, "Pen", 1)
	require.ErrorIs(t, err, warehouse.ErrForbidden)

	pen, err := f.service.CreateProduct(ctx, admin, " Pen ", 3)
	require.NoError(t, err)
	assert.Equal(t, "Pen", pen.Name)

	_, err = f.service.CreateProduct(ctx, admin, "Pen", 3)
	require.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = f.service.CreateProduct(ctx, admin, "  ", 3)
	require.ErrorIs(t, err, warehouse.ErrEmptyName)

	math, err := f.service.CreateFaculty(ctx, admin, "Math")
	require.NoError(t, err)

	_, err = f.service.PlaceOrder(ctx, user, warehouse.OrderRequest{ProductID: pen.ID, FacultyID: math.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = f.service.DeleteFaculty(ctx, admin, math.ID)
	require.ErrorIs(t, err, repository.ErrReferenced)
	_, err = f.service.Faculty(ctx, math.ID)
	require.NoError(t, err)

	_, err = f.service.DeleteProduct(ctx, user, pen.ID)
	require.ErrorIs(t, err, warehouse.ErrForbidden)

	physics, err := f.service.CreateFaculty(ctx, admin, "Physics")
	require.NoError(t, err)
	deleted, err := f.service.DeleteFaculty(ctx, admin, physics.ID)
	require.NoError(t, err)
	assert.Equal(t, "Physics", deleted.Name)
}

func TestOrdersAdmin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := t.Context()
	admin := f.store.AddAccount(models.Account{TelegramID: 1, Role: models.RoleAdmin})
	user := f.store.AddAccount(models.Account{TelegramID: 2, Role: models.RoleUser})
	pen := f.store.AddProduct("Pen", 10)
	math := f.store.AddFaculty("Math")

	first, err := f.service.PlaceOrder(ctx, user, warehouse.OrderRequest{ProductID: pen.ID, FacultyID: math.ID, Quantity: 1})
	require.NoError(t, err)
	second, err := f.service.PlaceOrder(ctx, user, warehouse.OrderRequest{ProductID: pen.ID, FacultyID: math.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = f.service.RecentOrders(ctx, user, 20)
	require.ErrorIs(t, err, warehouse.ErrForbidden)

	orders, err := f.service.RecentOrders(ctx, admin, 1)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, second.ID, orders[0].ID)

	require.ErrorIs(t, f.service.CompleteOrder(ctx, user, first.ID), warehouse.ErrForbidden)
	require.NoError(t, f.service.CompleteOrder(ctx, admin, first.ID))
	require.ErrorIs(t, f.service.CompleteOrder(ctx, admin, first.ID), repository.ErrNotCompletable)
	require.ErrorIs(t, f.service.CompleteOrder(ctx, admin, 999), repository.ErrNotFound)
}
