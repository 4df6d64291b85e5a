package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderReady     OrderStatus = "READY"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Open reports whether an admin can still complete the order.
func (s OrderStatus) Open() bool {
	return s == OrderPending || s == OrderReady
}

// Order is a single product request. Wanted, Given and Missing are fixed at creation.
type Order struct {
	ID        int
	AccountID int
	ProductID int
	FacultyID int
	Comment   string
	Wanted    int
	Given     int
	Missing   int
	Status    OrderStatus
	CreatedAt time.Time

	// Joined for display.
	ProductName string
	FacultyName string
	Requester   Account
}

// OrderDraft is what the requester asked for, before allocation.
type OrderDraft struct {
	AccountID int
	ProductID int
	FacultyID int
	Comment   string
	Wanted    int
}

// Allocation is the split of a request between stock handed out now and the shortfall.
type Allocation struct {
	Given   int
	Missing int
	Status  OrderStatus
}

// Outcome classifies a placed order for messaging.
type Outcome string

const (
	OutcomeFull    Outcome = "full"
	OutcomePartial Outcome = "partial"
	OutcomeNone    Outcome = "none"
)

// Outcome derives the fulfillment class from the stored quantities.
func (o Order) Outcome() Outcome {
	switch {
	case o.Given > 0 && o.Missing == 0:
		return OutcomeFull
	case o.Given > 0:
		return OutcomePartial
	default:
		return OutcomeNone
	}
}

// StockChange is the result of a stock edit.
type StockChange struct {
	Product  Product
	Previous int
	Updated  int
}

// Increased reports whether the edit added stock.
func (c StockChange) Increased() bool {
	return c.Updated > c.Previous
}
