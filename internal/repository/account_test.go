package repository_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/UnknownOlympus/storekeeper/internal/models"
	"github.com/UnknownOlympus/storekeeper/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accountCols = []string{"id", "telegram_id", "username", "full_name", "language", "role", "created_at"}

const (
	selectAccount  = "SELECT id, telegram_id, username, full_name, language, role, created_at FROM accounts WHERE telegram_id = $1"
	insertAccount  = "INSERT INTO accounts (telegram_id, username, full_name, language, role)"
	upsertSuper    = "ON CONFLICT (telegram_id) DO UPDATE SET role = 'SUPERADMIN'"
	promoteAdmin   = "ON CONFLICT (telegram_id) DO UPDATE SET role = 'ADMIN' WHERE accounts.role = 'USER'"
	listAdminsStmt = "WHERE role IN ('ADMIN', 'SUPERADMIN')"
)

func TestGetAccount(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	createdAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock)

		mock.ExpectQuery(regexp.QuoteMeta(selectAccount)).
			WithArgs(int64(42)).
			WillReturnRows(pgxmock.NewRows(accountCols).
				AddRow(7, int64(42), "ali", "Ali Valiyev", "uz", "ADMIN", createdAt))

		account, err := repo.GetAccount(ctx, 42)

		require.NoError(t, err)
		assert.Equal(t, models.Account{
			ID: 7, TelegramID: 42, Username: "ali", FullName: "Ali Valiyev",
			Language: "uz", Role: models.RoleAdmin, CreatedAt: createdAt,
		}, account)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - not found", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock)

		mock.ExpectQuery(regexp.QuoteMeta(selectAccount)).WithArgs(int64(42)).WillReturnError(pgx.ErrNoRows)

		_, err = repo.GetAccount(ctx, 42)

		require.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - query failed", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock)

		mock.ExpectQuery(regexp.QuoteMeta(selectAccount)).WithArgs(int64(42)).WillReturnError(assert.AnError)

		_, err = repo.GetAccount(ctx, 42)

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to get account 42")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreateAccount(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	createdAt := time.Now()

	t.Run("success - returns stored row", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock)

		mock.ExpectQuery(regexp.QuoteMeta(insertAccount)).
			WithArgs(int64(42), "ali", "Ali", "en", "USER").
			WillReturnRows(pgxmock.NewRows(accountCols).
				AddRow(3, int64(42), "old", "Stored Name", "uz", "USER", createdAt))

		account, err := repo.CreateAccount(ctx, models.Account{
			TelegramID: 42, Username: "ali", FullName: "Ali", Language: "en", Role: models.RoleUser,
		})

		require.NoError(t, err)
		assert.Equal(t, "Stored Name", account.FullName)
		assert.Equal(t, 3, account.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - insert failed", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock)

		mock.ExpectQuery(regexp.QuoteMeta(insertAccount)).
			WithArgs(int64(42), "", "", "uz", "USER").
			WillReturnError(assert.AnError)

		_, err = repo.CreateAccount(ctx, models.Account{TelegramID: 42, Language: "uz", Role: models.RoleUser})

		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEnsureSuperAdmin(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := repository.NewRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(upsertSuper)).
		WithArgs(int64(1), "SuperAdmin", "uz").
		WillReturnRows(pgxmock.NewRows(accountCols).
			AddRow(1, int64(1), "", "SuperAdmin", "uz", "SUPERADMIN", time.Now()))

	account, err := repo.EnsureSuperAdmin(t.Context(), 1, "SuperAdmin", "uz")

	require.NoError(t, err)
	assert.True(t, account.IsSuperAdmin())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromoteAdmin(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock)

		mock.ExpectQuery(regexp.QuoteMeta(promoteAdmin)).
			WithArgs(int64(55), "Admin", "uz").
			WillReturnRows(pgxmock.NewRows(accountCols).
				AddRow(9, int64(55), "", "Admin", "uz", "ADMIN", time.Now()))

		account, err := repo.PromoteAdmin(ctx, 55, "Admin", "uz")

		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, account.Role)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - already admin", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock)

		mock.ExpectQuery(regexp.QuoteMeta(promoteAdmin)).
			WithArgs(int64(55), "Admin", "uz").
			WillReturnError(pgx.ErrNoRows)

		_, err = repo.PromoteAdmin(ctx, 55, "Admin", "uz")

		require.ErrorIs(t, err, repository.ErrAlreadyAdmin)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListAdmins(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock)

		mock.ExpectQuery(regexp.QuoteMeta(listAdminsStmt)).
			WillReturnRows(pgxmock.NewRows(accountCols).
				AddRow(1, int64(1), "", "SuperAdmin", "uz", "SUPERADMIN", time.Now()).
				AddRow(2, int64(2), "bob", "Bob", "en", "ADMIN", time.Now()))

		admins, err := repo.ListAdmins(ctx)

		require.NoError(t, err)
		require.Len(t, admins, 2)
		assert.Equal(t, int64(2), admins[1].TelegramID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - rows error", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock)

		mock.ExpectQuery(regexp.QuoteMeta(listAdminsStmt)).
			WillReturnRows(pgxmock.NewRows(accountCols).
				AddRow(1, int64(1), "", "SuperAdmin", "uz", "SUPERADMIN", time.Now()).
				RowError(0, assert.AnError))

		_, err = repo.ListAdmins(ctx)

		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
