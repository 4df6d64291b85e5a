package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/storekeeper/internal/models"
	"github.com/jackc/pgx/v5"
)

func scanAccount(row pgx.Row) (models.Account, error) {
	var (
		account models.Account
		role    string
	)

	err := row.Scan(
		&account.ID, &account.TelegramID, &account.Username, &account.FullName,
		&account.Language, &role, &account.CreatedAt,
	)
	account.Role = models.Role(role)

	return account, err
}

// GetAccount returns the account bound to a Telegram ID or ErrNotFound.
func (r *Repository) GetAccount(ctx context.Context, telegramID int64) (models.Account, error) {
	account, err := scanAccount(r.db.QueryRow(ctx, selectAccountSQL, telegramID))
	if err != nil {
		return models.Account{}, fmt.Errorf("failed to get account %d: %w", telegramID, translate(err))
	}

	return account, nil
}

// CreateAccount inserts a new account. If a concurrent request already created it,
// the stored row is returned unchanged.
func (r *Repository) CreateAccount(ctx context.Context, account models.Account) (models.Account, error) {
	stored, err := scanAccount(r.db.QueryRow(ctx, insertAccountSQL,
		account.TelegramID, account.Username, account.FullName, account.Language, string(account.Role),
	))
	if err != nil {
		return models.Account{}, fmt.Errorf("failed to create account %d: %w", account.TelegramID, err)
	}

	return stored, nil
}

// EnsureSuperAdmin creates the account as SUPERADMIN or raises an existing one to that role.
func (r *Repository) EnsureSuperAdmin(
	ctx context.Context, telegramID int64, fullName, language string,
) (models.Account, error) {
	account, err := scanAccount(r.db.QueryRow(ctx, upsertSuperAdminSQL, telegramID, fullName, language))
	if err != nil {
		return models.Account{}, fmt.Errorf("failed to seed super admin %d: %w", telegramID, err)
	}

	return account, nil
}

// PromoteAdmin creates the account as ADMIN or promotes an existing USER.
// Accounts that already hold ADMIN or SUPERADMIN yield ErrAlreadyAdmin.
func (r *Repository) PromoteAdmin(
	ctx context.Context, telegramID int64, fullName, language string,
) (models.Account, error) {
	account, err := scanAccount(r.db.QueryRow(ctx, promoteAdminSQL, telegramID, fullName, language))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, ErrAlreadyAdmin
		}
		return models.Account{}, fmt.Errorf("failed to promote account %d: %w", telegramID, err)
	}

	return account, nil
}

// ListAdmins returns every ADMIN and SUPERADMIN account, oldest first.
func (r *Repository) ListAdmins(ctx context.Context) ([]models.Account, error) {
	rows, err := r.db.Query(ctx, listAdminsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query admins: %w", err)
	}
	defer rows.Close()

	var admins []models.Account
	for rows.Next() {
		account, errScan := scanAccount(rows)
		if errScan != nil {
			return nil, fmt.Errorf("failed to scan admin row: %w", errScan)
		}
		admins = append(admins, account)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read admin rows: %w", err)
	}

	return admins, nil
}
