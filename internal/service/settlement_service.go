package service

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// SettlementInput describes a payment from one member to another.
type SettlementInput struct {
	GroupID      string
	FromMemberID string
	ToMemberID   string
	Amount       float64
	Description  string
	SettledAt    int64
}

// SettlementService records payments that offset balances.
type SettlementService struct {
	store       storage.Store
	invalidator Invalidator
}

// NewSettlementService creates a SettlementService. invalidator may be nil.
func NewSettlementService(store storage.Store, invalidator Invalidator) *SettlementService {
	return &SettlementService{store: store, invalidator: invalidator}
}

// RecordSettlement stores a payment between two members of the same group.
func (s *SettlementService) RecordSettlement(ctx context.Context, in SettlementInput) (*models.Settlement, error) {
	slog.Info("RecordSettlement request received",
		"group_id", in.GroupID,
		"from", in.FromMemberID,
		"to", in.ToMemberID,
		"amount", in.Amount,
	)

	amount := math.Round(in.Amount*100) / 100

	var errs []string
	if !(amount > 0) || math.IsInf(amount, 0) {
		errs = append(errs, "settlement amount must be a positive number")
	}
	if in.FromMemberID == "" || in.ToMemberID == "" {
		errs = append(errs, "settlement requires both a payer and a receiver")
	} else if in.FromMemberID == in.ToMemberID {
		errs = append(errs, "a member cannot settle with themselves")
	}
	if len(errs) > 0 {
		return nil, invalid(errs...)
	}

	if _, err := s.store.GetGroup(ctx, in.GroupID); err != nil {
		return nil, err
	}
	members, err := s.store.ListMembersByGroup(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}
	inGroup := memberSet(members)
	for _, id := range []string{in.FromMemberID, in.ToMemberID} {
		if !inGroup[id] {
			errs = append(errs, "member "+id+" is not a member of this group")
		}
	}
	if len(errs) > 0 {
		return nil, invalid(errs...)
	}

	settlement := &models.Settlement{
		GroupID:      in.GroupID,
		FromMemberID: in.FromMemberID,
		ToMemberID:   in.ToMemberID,
		Amount:       amount,
		Description:  strings.TrimSpace(in.Description),
		SettledAt:    in.SettledAt,
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("RecordSettlement failed", "group_id", in.GroupID, "error", err)
		return nil, err
	}
	s.invalidate(in.GroupID)

	slog.Info("Settlement recorded", "settlement_id", settlement.ID, "group_id", in.GroupID)
	return settlement, nil
}

// ListSettlements returns a group's settlements, newest first.
func (s *SettlementService) ListSettlements(ctx context.Context, groupID string) ([]models.Settlement, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListSettlementsByGroup(ctx, groupID)
}

// DeleteSettlement removes a settlement.
func (s *SettlementService) DeleteSettlement(ctx context.Context, settlementID string) error {
	slog.Info("DeleteSettlement request received", "settlement_id", settlementID)

	existing, err := s.store.GetSettlement(ctx, settlementID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteSettlement(ctx, settlementID); err != nil {
		slog.Error("DeleteSettlement failed", "settlement_id", settlementID, "error", err)
		return err
	}
	s.invalidate(existing.GroupID)
	return nil
}

func (s *SettlementService) invalidate(groupID string) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(groupID)
	}
}
