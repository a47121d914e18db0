package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/mmynk/splitledger/internal/storage"
)

func TestSettlementService(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	inv := &recordingInvalidator{}
	svc := NewSettlementService(store, inv)
	group, ids := seedGroup(t, NewGroupService(store), "Roommates", "Alice", "Bob")
	alice, bob := ids[0], ids[1]

	settlement, err := svc.RecordSettlement(ctx, SettlementInput{
		GroupID:      group.ID,
		FromMemberID: bob,
		ToMemberID:   alice,
		Amount:       30,
		Description:  "rent share",
	})
	if err != nil {
		t.Fatalf("RecordSettlement failed: %v", err)
	}
	if settlement.ID == "" || settlement.SettledAt == 0 {
		t.Error("expected ID and SettledAt to be set")
	}
	if len(inv.groups) != 1 {
		t.Errorf("expected one invalidation, got %d", len(inv.groups))
	}

	list, err := svc.ListSettlements(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListSettlements failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 settlement, got %d", len(list))
	}

	if err := svc.DeleteSettlement(ctx, settlement.ID); err != nil {
		t.Fatalf("DeleteSettlement failed: %v", err)
	}
	if err := svc.DeleteSettlement(ctx, settlement.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if len(inv.groups) != 2 {
		t.Errorf("expected delete to invalidate, got %d invalidations", len(inv.groups))
	}
}

func TestSettlementService_Rejects(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	svc := NewSettlementService(store, nil)
	group, ids := seedGroup(t, NewGroupService(store), "Roommates", "Alice", "Bob")
	alice, bob := ids[0], ids[1]

	tests := []struct {
		name  string
		input SettlementInput
		want  error
	}{
		{"zero amount", SettlementInput{GroupID: group.ID, FromMemberID: bob, ToMemberID: alice, Amount: 0}, ErrInvalidInput},
		{"negative amount", SettlementInput{GroupID: group.ID, FromMemberID: bob, ToMemberID: alice, Amount: -5}, ErrInvalidInput},
		{"rounds to zero", SettlementInput{GroupID: group.ID, FromMemberID: bob, ToMemberID: alice, Amount: 0.004}, ErrInvalidInput},
		{"NaN amount", SettlementInput{GroupID: group.ID, FromMemberID: bob, ToMemberID: alice, Amount: math.NaN()}, ErrInvalidInput},
		{"self settlement", SettlementInput{GroupID: group.ID, FromMemberID: bob, ToMemberID: bob, Amount: 5}, ErrInvalidInput},
		{"outsider", SettlementInput{GroupID: group.ID, FromMemberID: "stranger", ToMemberID: alice, Amount: 5}, ErrInvalidInput},
		{"unknown group", SettlementInput{GroupID: "missing", FromMemberID: bob, ToMemberID: alice, Amount: 5}, storage.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordSettlement(ctx, tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSettlementService_RoundsAmount(t *testing.T) {
	store := newTestStore(t)
	svc := NewSettlementService(store, nil)
	group, ids := seedGroup(t, NewGroupService(store), "Roommates", "Alice", "Bob")

	settlement, err := svc.RecordSettlement(context.Background(), SettlementInput{
		GroupID:      group.ID,
		FromMemberID: ids[1],
		ToMemberID:   ids[0],
		Amount:       0.005,
	})
	if err != nil {
		t.Fatalf("RecordSettlement failed: %v", err)
	}
	if settlement.Amount != 0.01 {
		t.Errorf("expected amount rounded to 0.01, got %v", settlement.Amount)
	}
}
