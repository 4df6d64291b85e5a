package models

// Product is a warehouse item with its quantity on hand.
type Product struct {
	ID       int    // Unique identifier of the product
	Name     string // Unique product name
	Quantity int    // Units on hand, never negative
}

// Faculty is a department that orders are placed for.
type Faculty struct {
	ID   int    // Unique identifier of the faculty
	Name string // Unique faculty name
}
