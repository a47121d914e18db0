package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const expenseColumns = "id, group_id, paid_by, amount, description, category, date, settled, notes, created_at"

const splitColumns = "id, expense_id, member_id, amount, percentage, settled"

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// CreateExpense persists an expense and its splits in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense, splits []models.ExpenseSplit) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Date == 0 {
		expense.Date = expense.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		expense.ID, expense.GroupID, expense.PaidBy, expense.Amount, expense.Description,
		expense.Category, expense.Date, expense.Settled, nullString(expense.Notes), expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertSplits(ctx, tx, expense.ID, splits); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?",
		expenseID,
	)
	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %w: %s", storage.ErrNotFound, expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return &expense, nil
}

// ListExpensesByGroup returns a group's expenses, oldest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE group_id = ? ORDER BY date, created_at, rowid",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// ReplaceExpense updates an expense and swaps out all of its splits.
func (s *SQLiteStore) ReplaceExpense(ctx context.Context, expense *models.Expense, splits []models.ExpenseSplit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE expenses SET paid_by = ?, amount = ?, description = ?, category = ?, date = ?, settled = ?, notes = ?
		 WHERE id = ?`,
		expense.PaidBy, expense.Amount, expense.Description, expense.Category,
		expense.Date, expense.Settled, nullString(expense.Notes), expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	} else if n == 0 {
		return fmt.Errorf("expense %w: %s", storage.ErrNotFound, expense.ID)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to delete old splits: %w", err)
	}

	if err := insertSplits(ctx, tx, expense.ID, splits); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense and its splits.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", expenseID); err != nil {
		return fmt.Errorf("failed to delete splits: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	} else if n == 0 {
		return fmt.Errorf("expense %w: %s", storage.ErrNotFound, expenseID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListSplitsByExpense returns the splits of one expense.
func (s *SQLiteStore) ListSplitsByExpense(ctx context.Context, expenseID string) ([]models.ExpenseSplit, error) {
	return s.listSplits(ctx, "expense_id", expenseID)
}

// ListSplitsByMember returns every split assigned to a member.
func (s *SQLiteStore) ListSplitsByMember(ctx context.Context, memberID string) ([]models.ExpenseSplit, error) {
	return s.listSplits(ctx, "member_id", memberID)
}

func (s *SQLiteStore) listSplits(ctx context.Context, column, value string) ([]models.ExpenseSplit, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+splitColumns+" FROM expense_splits WHERE "+column+" = ? ORDER BY rowid",
		value,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits by %s: %w", column, err)
	}
	defer rows.Close()

	splits := []models.ExpenseSplit{}
	for rows.Next() {
		var split models.ExpenseSplit
		var percentage sql.NullFloat64
		if err := rows.Scan(&split.ID, &split.ExpenseID, &split.MemberID, &split.Amount, &percentage, &split.Settled); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		if percentage.Valid {
			p := percentage.Float64
			split.Percentage = &p
		}
		splits = append(splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return splits, nil
}

// insertSplits writes splits for expenseID inside tx, assigning IDs as needed.
func insertSplits(ctx context.Context, tx *sql.Tx, expenseID string, splits []models.ExpenseSplit) error {
	for i := range splits {
		split := &splits[i]
		split.ExpenseID = expenseID
		if split.ID == "" {
			split.ID = uuid.New().String()
		}

		var percentage any
		if split.Percentage != nil {
			percentage = *split.Percentage
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_splits ("+splitColumns+") VALUES (?, ?, ?, ?, ?, ?)",
			split.ID, split.ExpenseID, split.MemberID, split.Amount, percentage, split.Settled,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}
	return nil
}

func scanExpense(row rowScanner) (models.Expense, error) {
	var e models.Expense
	var notes sql.NullString
	err := row.Scan(&e.ID, &e.GroupID, &e.PaidBy, &e.Amount, &e.Description,
		&e.Category, &e.Date, &e.Settled, &notes, &e.CreatedAt)
	e.Notes = notes.String
	return e, err
}
