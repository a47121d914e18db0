package sqlite

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := New(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedGroup(t *testing.T, store *SQLiteStore, names ...string) (*models.Group, []models.Member) {
	t.Helper()
	ctx := context.Background()

	group := &models.Group{Name: "Roommates"}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	var members []models.Member
	for _, name := range names {
		m := &models.Member{GroupID: group.ID, Name: name}
		if err := store.CreateMember(ctx, m); err != nil {
			t.Fatalf("CreateMember failed: %v", err)
		}
		members = append(members, *m)
	}
	return group, members
}

func TestSQLiteStoreGroupsAndMembers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group, members := seedGroup(t, store, "Alice", "Bob", "Charlie")

	t.Run("CreateGroup generates ID and timestamps", func(t *testing.T) {
		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}
		if group.CreatedAt == 0 || group.UpdatedAt == 0 {
			t.Error("Expected timestamps to be set")
		}
	})

	t.Run("GetGroup round trips", func(t *testing.T) {
		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.Name != "Roommates" {
			t.Errorf("Name mismatch: got %s", got.Name)
		}
	})

	t.Run("GetGroup returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListMembersByGroup keeps join order", func(t *testing.T) {
		got, err := store.ListMembersByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListMembersByGroup failed: %v", err)
		}
		if len(got) != len(members) {
			t.Fatalf("Expected %d members, got %d", len(members), len(got))
		}
		for i := range members {
			if got[i].ID != members[i].ID {
				t.Errorf("member %d: got %s, want %s", i, got[i].Name, members[i].Name)
			}
		}
	})

	t.Run("CreateMember requires an existing group", func(t *testing.T) {
		err := store.CreateMember(ctx, &models.Member{GroupID: "missing", Name: "Ghost"})
		if err == nil {
			t.Error("Expected foreign key error, got nil")
		}
	})

	t.Run("ListGroups", func(t *testing.T) {
		groups, err := store.ListGroups(ctx)
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(groups) != 1 {
			t.Errorf("Expected 1 group, got %d", len(groups))
		}
	})
}

func TestSQLiteStoreExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group, members := seedGroup(t, store, "Alice", "Bob")
	alice, bob := members[0].ID, members[1].ID

	pct := 25.0
	expense := &models.Expense{GroupID: group.ID, PaidBy: alice, Amount: 80, Category: "food", Description: "Dinner"}
	splits := []models.ExpenseSplit{
		{MemberID: alice, Amount: 20, Percentage: &pct},
		{MemberID: bob, Amount: 60},
	}

	t.Run("CreateExpense stores expense and splits", func(t *testing.T) {
		if err := store.CreateExpense(ctx, expense, splits); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if expense.ID == "" || expense.Date == 0 {
			t.Error("Expected ID and Date to be set")
		}

		got, err := store.ListSplitsByExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("ListSplitsByExpense failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("Expected 2 splits, got %d", len(got))
		}
		if got[0].Percentage == nil || *got[0].Percentage != 25 {
			t.Errorf("Expected percentage 25 on first split, got %v", got[0].Percentage)
		}
		if got[1].Percentage != nil {
			t.Errorf("Expected nil percentage on second split")
		}
	})

	t.Run("ListSplitsByMember", func(t *testing.T) {
		got, err := store.ListSplitsByMember(ctx, bob)
		if err != nil {
			t.Fatalf("ListSplitsByMember failed: %v", err)
		}
		if len(got) != 1 || math.Abs(got[0].Amount-60) > 0.01 {
			t.Errorf("Unexpected splits for Bob: %+v", got)
		}
	})

	t.Run("ReplaceExpense swaps splits atomically", func(t *testing.T) {
		expense.Amount = 50
		expense.Category = "drinks"
		replacement := []models.ExpenseSplit{
			{MemberID: alice, Amount: 25},
			{MemberID: bob, Amount: 25},
		}
		if err := store.ReplaceExpense(ctx, expense, replacement); err != nil {
			t.Fatalf("ReplaceExpense failed: %v", err)
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Amount != 50 || got.Category != "drinks" {
			t.Errorf("Expense not updated: %+v", got)
		}

		gotSplits, _ := store.ListSplitsByExpense(ctx, expense.ID)
		var total float64
		for _, s := range gotSplits {
			total += s.Amount
		}
		if len(gotSplits) != 2 || total != 50 {
			t.Errorf("Expected 2 splits totalling 50, got %d totalling %v", len(gotSplits), total)
		}
	})

	t.Run("ReplaceExpense rolls back on bad split", func(t *testing.T) {
		before, _ := store.ListSplitsByExpense(ctx, expense.ID)
		dup := []models.ExpenseSplit{
			{ID: "same", MemberID: alice, Amount: 25},
			{ID: "same", MemberID: bob, Amount: 25},
		}
		if err := store.ReplaceExpense(ctx, expense, dup); err == nil {
			t.Fatal("Expected duplicate split ID to fail")
		}
		after, _ := store.ListSplitsByExpense(ctx, expense.ID)
		if len(after) != len(before) {
			t.Errorf("Splits changed despite rollback: before %d, after %d", len(before), len(after))
		}
	})

	t.Run("ListExpensesByGroup", func(t *testing.T) {
		got, err := store.ListExpensesByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(got) != 1 {
			t.Errorf("Expected 1 expense, got %d", len(got))
		}
	})

	t.Run("DeleteExpense cascades to splits", func(t *testing.T) {
		if err := store.DeleteExpense(ctx, expense.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
		got, _ := store.ListSplitsByExpense(ctx, expense.ID)
		if len(got) != 0 {
			t.Errorf("Expected splits to be deleted, got %d", len(got))
		}
		if err := store.DeleteExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestSQLiteStoreSettlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group, members := seedGroup(t, store, "Alice", "Bob")

	first := &models.Settlement{GroupID: group.ID, FromMemberID: members[1].ID, ToMemberID: members[0].ID, Amount: 10, SettledAt: 100}
	second := &models.Settlement{GroupID: group.ID, FromMemberID: members[1].ID, ToMemberID: members[0].ID, Amount: 5, SettledAt: 200, Description: "cash"}
	for _, s := range []*models.Settlement{first, second} {
		if err := store.CreateSettlement(ctx, s); err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}
	}

	got, err := store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListSettlementsByGroup failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != second.ID {
		t.Fatalf("Expected newest settlement first, got %+v", got)
	}
	if got[0].Description != "cash" {
		t.Errorf("Description mismatch: %q", got[0].Description)
	}

	fetched, err := store.GetSettlement(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetSettlement failed: %v", err)
	}
	if fetched.Amount != 10 {
		t.Errorf("Amount mismatch: %v", fetched.Amount)
	}

	if err := store.DeleteSettlement(ctx, first.ID); err != nil {
		t.Fatalf("DeleteSettlement failed: %v", err)
	}
	if err := store.DeleteSettlement(ctx, first.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestNewIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "again.db")
	for i := 0; i < 2; i++ {
		store, err := New(path)
		if err != nil {
			t.Fatalf("New #%d failed: %v", i+1, err)
		}
		store.Close()
	}
}
