// Package session keeps the per-user dialogue position between chat events.
package session

// Step is a position in the user ordering flow.
type Step string

const (
	StepSelectProduct Step = "SELECT_PRODUCT"
	StepSelectFaculty Step = "SELECT_FACULTY"
	StepEnterComment  Step = "ENTER_COMMENT"
	StepEnterQuantity Step = "ENTER_QUANTITY"
)

// Action is an admin data-entry flow awaiting text input.
type Action string

const (
	ActionAddProductName     Action = "ADD_PRODUCT_NAME"
	ActionAddProductQuantity Action = "ADD_PRODUCT_QUANTITY"
	ActionUpdateStock        Action = "UPDATE_STOCK"
	ActionAddFaculty         Action = "ADD_FACULTY"
	ActionAddAdmin           Action = "ADD_ADMIN"
)

// State is one of Idle, UserFlow or AdminFlow. A user is in at most one flow at a time.
type State interface {
	isState()
}

// Idle means no flow is in progress.
type Idle struct{}

// UserFlow tracks a user placing an order.
type UserFlow struct {
	Step      Step
	ProductID int
	FacultyID int
	Comment   string
}

// AdminFlow tracks an admin typing data for a catalog or roster change.
type AdminFlow struct {
	Action      Action
	ProductName string // pending name while asking for the initial quantity
	ProductID   int    // target of a stock update
}

func (Idle) isState()      {}
func (UserFlow) isState()  {}
func (AdminFlow) isState() {}
