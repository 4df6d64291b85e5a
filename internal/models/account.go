package models

import "time"

// Role is the privilege tier of an account.
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
)

// Account represents a Telegram user known to the warehouse.
type Account struct {
	ID         int       // Internal identifier of the account
	TelegramID int64     // Telegram user ID, unique
	Username   string    // Telegram handle without '@', may be empty
	FullName   string    // Display name taken from Telegram first and last name
	Language   string    // Preferred interface language
	Role       Role      // Privilege tier
	CreatedAt  time.Time // Timestamp of the first interaction
}

// IsAdmin reports whether the account may use the admin panel.
func (a Account) IsAdmin() bool {
	return a.Role == RoleAdmin || a.Role == RoleSuperAdmin
}

// IsSuperAdmin reports whether the account may manage the admin roster.
func (a Account) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}

// Identity carries what Telegram tells us about a sender.
type Identity struct {
	TelegramID   int64
	FirstName    string
	LastName     string
	Username     string
	LanguageCode string
}

// Handle is how the account is shown to admins: @username when set, the full name otherwise.
func (a Account) Handle() string {
	if a.Username != "" {
		return "@" + a.Username
	}
	return a.FullName
}
