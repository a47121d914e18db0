// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

// ErrNotFound is wrapped by every lookup that finds no row.
var ErrNotFound = errors.New("not found")

// Store defines the persistence operations the services depend on.
// This abstraction allows swapping storage backends without changing the
// service layer.
type Store interface {
	// CreateGroup persists a new group. ID and timestamps are assigned
	// by the store when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by its ID.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups returns every group, oldest first.
	ListGroups(ctx context.Context) ([]models.Group, error)

	// CreateMember adds a member to an existing group.
	CreateMember(ctx context.Context, member *models.Member) error

	// GetMember retrieves a member by its ID.
	GetMember(ctx context.Context, memberID string) (*models.Member, error)

	// ListMembersByGroup returns a group's members in join order.
	ListMembersByGroup(ctx context.Context, groupID string) ([]models.Member, error)

	// CreateExpense persists an expense together with its splits, atomically.
	CreateExpense(ctx context.Context, expense *models.Expense, splits []models.ExpenseSplit) error

	// GetExpense retrieves an expense by its ID.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup returns a group's expenses, oldest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error)

	// ReplaceExpense updates an expense and swaps its splits for new ones
	// in a single transaction.
	ReplaceExpense(ctx context.Context, expense *models.Expense, splits []models.ExpenseSplit) error

	// DeleteExpense removes an expense and all of its splits.
	DeleteExpense(ctx context.Context, expenseID string) error

	// ListSplitsByExpense returns the splits of one expense.
	ListSplitsByExpense(ctx context.Context, expenseID string) ([]models.ExpenseSplit, error)

	// ListSplitsByMember returns every split assigned to a member.
	ListSplitsByMember(ctx context.Context, memberID string) ([]models.ExpenseSplit, error)

	// CreateSettlement records a payment between two members.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// GetSettlement retrieves a settlement by its ID.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// ListSettlementsByGroup returns a group's settlements, newest first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]models.Settlement, error)

	// DeleteSettlement removes a settlement by its ID.
	DeleteSettlement(ctx context.Context, settlementID string) error

	// Close releases any resources held by the store.
	Close() error
}
