package warehouse

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/storekeeper/internal/i18n"
	"github.com/UnknownOlympus/storekeeper/internal/models"
	"github.com/UnknownOlympus/storekeeper/internal/repository"
)

const superAdminName = "SuperAdmin"

// ResolveAccount returns the stored account for the sender, creating a USER on first contact.
// Name hints are only used at creation.
func (s *Service) ResolveAccount(ctx context.Context, id models.Identity) (models.Account, error) {
	defer s.observe("resolve_account", time.Now())

	account, err := s.store.GetAccount(ctx, id.TelegramID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return models.Account{}, err
	}

	account, err = s.store.CreateAccount(ctx, models.Account{
		TelegramID: id.TelegramID,
		Username:   id.Username,
		FullName:   joinName(id.FirstName, id.LastName),
		Language:   i18n.NormalizeLanguageCode(id.LanguageCode, s.language),
		Role:       models.RoleUser,
	})
	if err != nil {
		return models.Account{}, err
	}

	s.metrics.NewUsers.Inc()
	s.log.InfoContext(ctx, "New account created", "user", account.TelegramID)

	return account, nil
}

func joinName(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.Join(nonEmpty, " ")
}

// SeedSuperAdmin makes sure the configured account exists with the SUPERADMIN role.
// An empty rawID is a no-op; a non-numeric one is logged and ignored.
func (s *Service) SeedSuperAdmin(ctx context.Context, rawID string) error {
	rawID = strings.TrimSpace(rawID)
	if rawID == "" {
		return nil
	}

	telegramID, err := parseTelegramID(rawID)
	if err != nil {
		s.log.ErrorContext(ctx, "Configured super admin ID is invalid, skipping seeding", "value", rawID)
		return nil
	}

	account, err := s.store.EnsureSuperAdmin(ctx, telegramID, superAdminName, s.language)
	if err != nil {
		return fmt.Errorf("failed to seed super admin: %w", err)
	}

	s.log.InfoContext(ctx, "Super admin ensured", "user", account.TelegramID)

	return nil
}

func parseTelegramID(text string) (int64, error) {
	if !isDigits(text) {
		return 0, ErrInvalidTelegramID
	}

	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, ErrInvalidTelegramID
	}

	return id, nil
}

func isDigits(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
