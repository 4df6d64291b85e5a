package warehouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/UnknownOlympus/storekeeper/internal/models"
)

const newAdminName = "Admin"

// AddAdmin grants ADMIN to the account with the typed Telegram ID, creating it if unknown.
// Only a super admin may call it. Accounts that already are admins yield repository.ErrAlreadyAdmin.
// The greeting to the new admin is best-effort.
func (s *Service) AddAdmin(ctx context.Context, actor models.Account, text string) (models.Account, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return models.Account{}, err
	}

	telegramID, err := parseTelegramID(strings.TrimSpace(text))
	if err != nil {
		return models.Account{}, err
	}

	start := time.Now()
	admin, err := s.store.PromoteAdmin(ctx, telegramID, newAdminName, s.language)
	s.observe("promote_admin", start)
	if err != nil {
		return models.Account{}, fmt.Errorf("failed to add admin %d: %w", telegramID, err)
	}

	s.log.InfoContext(ctx, "Admin added", "admin", admin.TelegramID, "by", actor.TelegramID)

	if err = s.notifier.AdminGranted(ctx, admin); err != nil {
		s.log.WarnContext(ctx, "New admin could not be greeted", "admin", admin.TelegramID, "error", err)
	}

	return admin, nil
}

// Admins lists the roster. Only a super admin may see it.
func (s *Service) Admins(ctx context.Context, actor models.Account) ([]models.Account, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return nil, err
	}

	defer s.observe("list_admins", time.Now())
	return s.store.ListAdmins(ctx)
}

// AdminRecipients lists every admin for system notifications such as monitoring alerts.
func (s *Service) AdminRecipients(ctx context.Context) ([]models.Account, error) {
	defer s.observe("list_admins", time.Now())
	return s.store.ListAdmins(ctx)
}
