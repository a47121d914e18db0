package models

// Group is a named set of members sharing expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// Description is optional free text.
	Description string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change to the group.
	UpdatedAt int64
}

// Member is a participant of exactly one group.
type Member struct {
	// ID is the unique identifier for the member (UUID format).
	ID string

	// GroupID is the group this member belongs to.
	GroupID string

	// Name is the display name used in summaries and debts.
	Name string

	// Email is optional.
	Email string

	// JoinedAt is the Unix timestamp when the member was added.
	JoinedAt int64
}
