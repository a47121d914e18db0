package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// splitLoadConcurrency bounds parallel split queries per group load.
const splitLoadConcurrency = 8

// loadGroup fetches an existing group with its members and expenses.
func loadGroup(ctx context.Context, store storage.Store, groupID string) (*models.Group, []models.Member, []models.Expense, error) {
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, nil, nil, err
	}

	members, err := store.ListMembersByGroup(ctx, groupID)
	if err != nil {
		return nil, nil, nil, err
	}
	expenses, err := store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, nil, nil, err
	}
	return group, members, expenses, nil
}

// loadSplits fetches the splits of every expense in parallel and re-checks
// each set against its expense. Inconsistent sets are logged and kept.
func loadSplits(ctx context.Context, store storage.Store, expenses []models.Expense) ([]models.ExpenseSplit, error) {
	perExpense := make([][]models.ExpenseSplit, len(expenses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(splitLoadConcurrency)
	for i, e := range expenses {
		g.Go(func() error {
			splits, err := store.ListSplitsByExpense(gctx, e.ID)
			if err != nil {
				return fmt.Errorf("failed to load splits for expense %s: %w", e.ID, err)
			}
			if res := calculator.ValidateSplits(e.Amount, splits); !res.Valid {
				slog.Warn("Stored splits are inconsistent",
					"expense_id", e.ID,
					"group_id", e.GroupID,
					"errors", res.Messages(),
				)
			}
			perExpense[i] = splits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []models.ExpenseSplit
	for _, splits := range perExpense {
		all = append(all, splits...)
	}
	return all, nil
}
