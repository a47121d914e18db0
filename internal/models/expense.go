package models

// Expense is an amount paid by one member on behalf of the group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// PaidBy is the ID of the member who fronted the money.
	PaidBy string

	// Amount is the total paid. Always positive.
	Amount float64

	// Description is a short human-readable label (e.g., "Groceries").
	Description string

	// Category groups expenses for reporting (e.g., "food", "transport").
	Category string

	// Date is the Unix timestamp of the day the expense happened.
	Date int64

	// Settled marks the expense as fully paid back.
	Settled bool

	// Notes is optional receipt information.
	Notes string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// ExpenseSplit is one member's share of an expense.
// For a given expense the split amounts sum to the expense amount.
type ExpenseSplit struct {
	// ID is the unique identifier for the split.
	ID string

	// ExpenseID is the expense this share belongs to.
	ExpenseID string

	// MemberID is the member who consumed this share.
	MemberID string

	// Amount is the owed amount. Never negative.
	Amount float64

	// Percentage is set only for percentage-based splits (0-100).
	Percentage *float64

	// Settled marks this share as paid back.
	Settled bool
}
