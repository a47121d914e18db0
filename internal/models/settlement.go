package models

// Settlement represents a payment between group members to clear debts.
// Settlements never modify expenses or splits; they are applied on top of
// computed balances at read time.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// FromMemberID is the member who paid (debtor settling up).
	FromMemberID string

	// ToMemberID is the member who received payment (creditor being paid).
	ToMemberID string

	// Amount is the payment amount. Always positive.
	Amount float64

	// Description is an optional note for the settlement.
	Description string

	// SettledAt is the Unix timestamp when the payment happened.
	SettledAt int64

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}
