// Package warehousetest provides in-memory stand-ins for the warehouse Store and Notifier.
package warehousetest

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/UnknownOlympus/storekeeper/internal/models"
	"github.com/UnknownOlympus/storekeeper/internal/notify"
	"github.com/UnknownOlympus/storekeeper/internal/repository"
)

// Store keeps accounts, catalog and orders in memory with the same error contract
// as the PostgreSQL repository. Set Err to make every call fail.
type Store struct {
	mu        sync.Mutex
	nextID    int
	accounts  map[int64]models.Account
	products  map[int]models.Product
	faculties map[int]models.Faculty
	orders    []models.Order

	Err error
}

func NewStore() *Store {
	return &Store{
		accounts:  make(map[int64]models.Account),
		products:  make(map[int]models.Product),
		faculties: make(map[int]models.Faculty),
	}
}

func (s *Store) id() int {
	s.nextID++
	return s.nextID
}

// AddAccount seeds an account and returns it with an ID.
func (s *Store) AddAccount(account models.Account) models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	account.ID = s.id()
	s.accounts[account.TelegramID] = account
	return account
}

// AddProduct seeds a product and returns it with an ID.
func (s *Store) AddProduct(name string, quantity int) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	product := models.Product{ID: s.id(), Name: name, Quantity: quantity}
	s.products[product.ID] = product
	return product
}

// AddFaculty seeds a faculty and returns it with an ID.
func (s *Store) AddFaculty(name string) models.Faculty {
	s.mu.Lock()
	defer s.mu.Unlock()

	faculty := models.Faculty{ID: s.id(), Name: name}
	s.faculties[faculty.ID] = faculty
	return faculty
}

// Orders returns a copy of all stored orders, oldest first.
func (s *Store) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.orders)
}

func (s *Store) GetAccount(_ context.Context, telegramID int64) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return models.Account{}, s.Err
	}
	account, ok := s.accounts[telegramID]
	if !ok {
		return models.Account{}, fmt.Errorf("account %d: %w", telegramID, repository.ErrNotFound)
	}
	return account, nil
}

func (s *Store) CreateAccount(_ context.Context, account models.Account) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return models.Account{}, s.Err
	}
	if stored, ok := s.accounts[account.TelegramID]; ok {
		return stored, nil
	}
	account.ID = s.id()
	account.CreatedAt = time.Now()
	s.accounts[account.TelegramID] = account
	return account, nil
}

func (s *Store) EnsureSuperAdmin(_ context.Context, telegramID int64, fullName, language string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return models.Account{}, s.Err
	}
	account, ok := s.accounts[telegramID]
	if !ok {
		account = models.Account{ID: s.id(), TelegramID: telegramID, FullName: fullName, Language: language}
	}
	account.Role = models.RoleSuperAdmin
	s.accounts[telegramID] = account
	return account, nil
}

func (s *Store) PromoteAdmin(_ context.Context, telegramID int64, fullName, language string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return models.Account{}, s.Err
	}
	account, ok := s.accounts[telegramID]
	switch {
	case !ok:
		account = models.Account{ID: s.id(), TelegramID: telegramID, FullName: fullName, Language: language}
	case account.IsAdmin():
		return models.Account{}, repository.ErrAlreadyAdmin
	}
	account.Role = models.RoleAdmin
	s.accounts[telegramID] = account
	return account, nil
}

func (s *Store) ListAdmins(_ context.Context) ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	var admins []models.Account
	for _, account := range s.accounts {
		if account.IsAdmin() {
			admins = append(admins, account)
		}
	}
	slices.SortFunc(admins, func(a, b models.Account) int { return a.ID - b.ID })
	return admins, nil
}

func (s *Store) ListProducts(_ context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	products := make([]models.Product, 0, len(s.products))
	for _, product := range s.products {
		products = append(products, product)
	}
	slices.SortFunc(products, func(a, b models.Product) int { return a.ID - b.ID })
	return products, nil
}

func (s *Store) GetProduct(_ context.Context, id int) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return models.Product{}, s.Err
	}
	product, ok := s.products[id]
	if !ok {
		return models.Product{}, fmt.Errorf("product %d: %w", id, repository.ErrNotFound)
	}
	return product, nil
}

func (s *Store) CreateProduct(_ context.Context, name string, quantity int) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return models.Product{}, s.Err
	}
	for _, product := range s.products {
		if product.Name == name {
			return models.Product{}, repository.ErrDuplicate
		}
	}
	product := models.Product{ID: s.id(), Name: name, Quantity: quantity}
	s.products[product.ID] = product
	return product, nil
}

func (s *Store) DeleteProduct(_ context.Context, id int) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return models.Product{}, s.Err
	}
	product, ok := s.products[id]
	if !ok {
		return models.Product{}, repository.ErrNotFound
	}
	if slices.ContainsFunc(s.orders, func(o models.Order) bool { return o.ProductID == id }) {
		return models.Product{}, repository.ErrReferenced
	}
	delete(s.products, id)
	return product, nil
}

func (s *Store) ListFaculties(_ context.Context) ([]models.Faculty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	faculties := make([]models.Faculty, 0, len(s.faculties))
	for _, faculty := range s.faculties {
		faculties = append(faculties, faculty)
	}
	slices.SortFunc(faculties, func(a, b models.Faculty) int { return a.ID - b.ID })
	return faculties, nil
}

func (s *Store) GetFaculty(_ context.Context, id int) (models.Faculty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return models.Faculty{}, s.Err
	}
	faculty, ok := s.faculties[id]
	if !ok {
		return models.Faculty{}, fmt.Errorf("faculty %d: %w", id, repository.ErrNotFound)
	}
	return faculty, nil
}

func (s *Store) CreateFaculty(_ context.Context, name string) (models.Faculty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return models.Faculty{}, s.Err
	}
	for _, faculty := range s.faculties {
		if faculty.Name == name {
			return models.Faculty{}, repository.ErrDuplicate
		}
	}
	faculty := models.Faculty{ID: s.id(), Name: name}
	s.faculties[faculty.ID] = faculty
	return faculty, nil
}

func (s *Store) DeleteFaculty(_ context.Context, id int) (models.Faculty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return models.Faculty{}, s.Err
	}
	faculty, ok := s.faculties[id]
	if !ok {
		return models.Faculty{}, repository.ErrNotFound
	}
	if slices.ContainsFunc(s.orders, func(o models.Order) bool { return o.FacultyID == id }) {
		return models.Faculty{}, repository.ErrReferenced
	}
	delete(s.faculties, id)
	return faculty, nil
}

// PlaceOrder holds the store lock for the whole read-allocate-write sequence,
// mirroring the row lock of the real repository.
func (s *Store) PlaceOrder(
	_ context.Context, draft models.OrderDraft, allocate func(available int) models.Allocation,
) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return models.Order{}, s.Err
	}
	product, ok := s.products[draft.ProductID]
	if !ok {
		return models.Order{}, fmt.Errorf("product %d: %w", draft.ProductID, repository.ErrNotFound)
	}
	faculty, ok := s.faculties[draft.FacultyID]
	if !ok {
		return models.Order{}, fmt.Errorf("faculty %d: %w", draft.FacultyID, repository.ErrNotFound)
	}

	alloc := allocate(product.Quantity)
	if alloc.Given > product.Quantity {
		return models.Order{}, fmt.Errorf("allocation of %d exceeds stock %d", alloc.Given, product.Quantity)
	}
	product.Quantity -= alloc.Given
	s.products[product.ID] = product

	order := models.Order{
		ID: s.id(), AccountID: draft.AccountID, ProductID: product.ID, FacultyID: faculty.ID,
		Comment: draft.Comment, Wanted: draft.Wanted, Given: alloc.Given, Missing: alloc.Missing,
		Status: alloc.Status, CreatedAt: time.Now(), ProductName: product.Name, FacultyName: faculty.Name,
	}
	for _, account := range s.accounts {
		if account.ID == draft.AccountID {
			order.Requester = account
		}
	}
	s.orders = append(s.orders, order)

	return order, nil
}

func (s *Store) AdjustStock(_ context.Context, productID int, apply func(current int) int) (models.StockChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return models.StockChange{}, s.Err
	}
	product, ok := s.products[productID]
	if !ok {
		return models.StockChange{}, fmt.Errorf("product %d: %w", productID, repository.ErrNotFound)
	}
	change := models.StockChange{Previous: product.Quantity, Updated: apply(product.Quantity)}
	product.Quantity = change.Updated
	s.products[productID] = product
	change.Product = product
	return change, nil
}

func (s *Store) ListRecentOrders(_ context.Context, limit int) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	orders := slices.Clone(s.orders)
	slices.Reverse(orders)
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (s *Store) ListWaitingOrders(_ context.Context, productID int) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	var waiting []models.Order
	for _, order := range s.orders {
		if order.ProductID == productID && order.Missing > 0 && order.Status.Open() {
			waiting = append(waiting, order)
		}
	}
	return waiting, nil
}

func (s *Store) CompleteOrder(_ context.Context, orderID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}
	for i, order := range s.orders {
		if order.ID != orderID {
			continue
		}
		if !order.Status.Open() {
			return repository.ErrNotCompletable
		}
		s.orders[i].Status = models.OrderCompleted
		return nil
	}
	return repository.ErrNotFound
}

// Notifier records what the service asked to deliver.
type Notifier struct {
	mu          sync.Mutex
	OrderEvents []models.Order
	Replenished []models.Order
	Granted     []models.Account
	GrantErr    error
}

func (n *Notifier) OrderPlaced(
	_ context.Context, admins []models.Account, order models.Order, _ models.Account,
) notify.Report {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.OrderEvents = append(n.OrderEvents, order)
	report := notify.Report{}
	for _, admin := range admins {
		report.Outcomes = append(report.Outcomes, notify.Outcome{ChatID: admin.TelegramID})
	}
	return report
}

func (n *Notifier) StockReplenished(_ context.Context, orders []models.Order) notify.Report {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.Replenished = append(n.Replenished, orders...)
	report := notify.Report{}
	for _, order := range orders {
		report.Outcomes = append(report.Outcomes, notify.Outcome{ChatID: order.Requester.TelegramID})
	}
	return report
}

func (n *Notifier) AdminGranted(_ context.Context, admin models.Account) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.Granted = append(n.Granted, admin)
	return n.GrantErr
}
