// Package warehouse holds the ordering rules: who may do what, how much stock an order
// receives, and who hears about it.
package warehouse

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/storekeeper/internal/metrics"
	"github.com/UnknownOlympus/storekeeper/internal/models"
	"github.com/UnknownOlympus/storekeeper/internal/notify"
)

var (
	// ErrForbidden is returned when the acting account lacks the required role.
	ErrForbidden = errors.New("not allowed for this account")
	// ErrInvalidQuantity is returned for quantity text that is not an accepted integer.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrInvalidStockEdit is returned for stock edit text other than +N, -N or N.
	ErrInvalidStockEdit = errors.New("invalid stock edit")
	// ErrInvalidTelegramID is returned when an admin candidate ID is not all digits.
	ErrInvalidTelegramID = errors.New("telegram id must contain digits only")
	// ErrEmptyName is returned when a product or faculty name is blank.
	ErrEmptyName = errors.New("name must not be empty")
)

// Store is the persistence the service relies on. *repository.Repository implements it.
type Store interface {
	GetAccount(ctx context.Context, telegramID int64) (models.Account, error)
	CreateAccount(ctx context.Context, account models.Account) (models.Account, error)
	EnsureSuperAdmin(ctx context.Context, telegramID int64, fullName, language string) (models.Account, error)
	PromoteAdmin(ctx context.Context, telegramID int64, fullName, language string) (models.Account, error)
	ListAdmins(ctx context.Context) ([]models.Account, error)

	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int) (models.Product, error)
	CreateProduct(ctx context.Context, name string, quantity int) (models.Product, error)
	DeleteProduct(ctx context.Context, id int) (models.Product, error)
	ListFaculties(ctx context.Context) ([]models.Faculty, error)
	GetFaculty(ctx context.Context, id int) (models.Faculty, error)
	CreateFaculty(ctx context.Context, name string) (models.Faculty, error)
	DeleteFaculty(ctx context.Context, id int) (models.Faculty, error)

	PlaceOrder(
		ctx context.Context, draft models.OrderDraft, allocate func(available int) models.Allocation,
	) (models.Order, error)
	AdjustStock(ctx context.Context, productID int, apply func(current int) int) (models.StockChange, error)
	ListRecentOrders(ctx context.Context, limit int) ([]models.Order, error)
	ListWaitingOrders(ctx context.Context, productID int) ([]models.Order, error)
	CompleteOrder(ctx context.Context, orderID int) error
}

// Notifier delivers the service's best-effort messages. *notify.Notifier implements it.
type Notifier interface {
	OrderPlaced(ctx context.Context, admins []models.Account, order models.Order, requester models.Account) notify.Report
	StockReplenished(ctx context.Context, orders []models.Order) notify.Report
	AdminGranted(ctx context.Context, admin models.Account) error
}

// Service implements the warehouse operations on top of a Store.
type Service struct {
	store    Store
	notifier Notifier
	log      *slog.Logger
	metrics  *metrics.Metrics
	language string
}

// NewService wires the service. language is the default for accounts created without a hint.
func NewService(store Store, notifier Notifier, log *slog.Logger, m *metrics.Metrics, language string) *Service {
	return &Service{store: store, notifier: notifier, log: log, metrics: m, language: language}
}

// observe records how long a store call took.
func (s *Service) observe(queryType string, start time.Time) {
	s.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(start).Seconds())
}

func requireAdmin(actor models.Account) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func requireSuperAdmin(actor models.Account) error {
	if !actor.IsSuperAdmin() {
		return ErrForbidden
	}
	return nil
}
