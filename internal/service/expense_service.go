package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Invalidator drops derived data for a group after it changes.
type Invalidator interface {
	Invalidate(groupID string)
}

// ExpenseInput describes an expense to create or the new state of one being
// updated.
type ExpenseInput struct {
	GroupID     string
	PaidBy      string
	Amount      float64
	Description string
	Category    string
	Date        int64
	Notes       string
	Strategy    calculator.Strategy
}

// ExpenseDetail is an expense together with its splits.
type ExpenseDetail struct {
	Expense models.Expense
	Splits  []models.ExpenseSplit
}

// ExpenseService records expenses and generates their splits.
type ExpenseService struct {
	store       storage.Store
	invalidator Invalidator
	metrics     *metrics.Metrics
}

// NewExpenseService creates an ExpenseService. invalidator is notified of
// every change and may be nil; so may m.
func NewExpenseService(store storage.Store, invalidator Invalidator, m *metrics.Metrics) *ExpenseService {
	return &ExpenseService{store: store, invalidator: invalidator, metrics: m}
}

// CreateExpense validates the input, computes splits with its strategy and
// stores both atomically.
func (s *ExpenseService) CreateExpense(ctx context.Context, in ExpenseInput) (*ExpenseDetail, error) {
	slog.Info("CreateExpense request received",
		"group_id", in.GroupID,
		"paid_by", in.PaidBy,
		"amount", in.Amount,
	)

	expense := models.Expense{
		ID:          uuid.New().String(),
		GroupID:     in.GroupID,
		PaidBy:      in.PaidBy,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Date:        in.Date,
		Notes:       in.Notes,
	}

	splits, err := s.prepare(ctx, &expense, in.Strategy)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateExpense(ctx, &expense, splits); err != nil {
		slog.Error("CreateExpense failed", "group_id", in.GroupID, "error", err)
		return nil, err
	}
	s.invalidate(expense.GroupID)

	slog.Info("Expense created", "expense_id", expense.ID, "splits", len(splits))
	return &ExpenseDetail{Expense: expense, Splits: splits}, nil
}

// UpdateExpense replaces an expense's fields and regenerates its splits.
// The expense stays in its original group.
func (s *ExpenseService) UpdateExpense(ctx context.Context, expenseID string, in ExpenseInput) (*ExpenseDetail, error) {
	slog.Info("UpdateExpense request received", "expense_id", expenseID)

	existing, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	expense := *existing
	expense.PaidBy = in.PaidBy
	expense.Amount = in.Amount
	expense.Description = strings.TrimSpace(in.Description)
	expense.Category = strings.TrimSpace(in.Category)
	expense.Notes = in.Notes
	if in.Date != 0 {
		expense.Date = in.Date
	}

	splits, err := s.prepare(ctx, &expense, in.Strategy)
	if err != nil {
		return nil, err
	}

	if err := s.store.ReplaceExpense(ctx, &expense, splits); err != nil {
		slog.Error("UpdateExpense failed", "expense_id", expenseID, "error", err)
		return nil, err
	}
	s.invalidate(expense.GroupID)

	slog.Info("Expense updated", "expense_id", expenseID, "splits", len(splits))
	return &ExpenseDetail{Expense: expense, Splits: splits}, nil
}

// DeleteExpense removes an expense and its splits.
func (s *ExpenseService) DeleteExpense(ctx context.Context, expenseID string) error {
	slog.Info("DeleteExpense request received", "expense_id", expenseID)

	existing, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expenseID, "error", err)
		return err
	}
	s.invalidate(existing.GroupID)
	return nil
}

// GetExpense retrieves an expense with its splits.
func (s *ExpenseService) GetExpense(ctx context.Context, expenseID string) (*ExpenseDetail, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	splits, err := s.store.ListSplitsByExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	return &ExpenseDetail{Expense: *expense, Splits: splits}, nil
}

// ListExpenses returns a group's expenses, oldest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, groupID string) ([]models.Expense, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListExpensesByGroup(ctx, groupID)
}

// prepare validates an expense against its group and computes its splits.
func (s *ExpenseService) prepare(ctx context.Context, expense *models.Expense, strategy calculator.Strategy) ([]models.ExpenseSplit, error) {
	if errs := expense.Validate(); len(errs) > 0 {
		return nil, invalid(errs...)
	}

	if _, err := s.store.GetGroup(ctx, expense.GroupID); err != nil {
		return nil, err
	}
	members, err := s.store.ListMembersByGroup(ctx, expense.GroupID)
	if err != nil {
		return nil, err
	}
	inGroup := memberSet(members)

	var errs []string
	if !inGroup[expense.PaidBy] {
		errs = append(errs, fmt.Sprintf("payer %s is not a member of this group", expense.PaidBy))
	}

	result := calculator.ComputeSplits(expense.ID, expense.Amount, strategy)
	strategyName := "none"
	if strategy != nil {
		strategyName = string(strategy.Type())
	}
	s.metrics.SplitComputed(strategyName, result.IsValid)
	if !result.IsValid {
		errs = append(errs, result.Messages()...)
	}

	for _, split := range result.Splits {
		if !inGroup[split.MemberID] {
			errs = append(errs, fmt.Sprintf("member %s is not a member of this group", split.MemberID))
		}
	}

	if len(errs) > 0 {
		slog.Warn("Expense rejected", "expense_id", expense.ID, "strategy", strategyName, "errors", errs)
		return nil, invalid(errs...)
	}
	return result.Splits, nil
}

func (s *ExpenseService) invalidate(groupID string) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(groupID)
	}
}
