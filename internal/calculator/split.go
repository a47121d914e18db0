// Package calculator implements the expense-splitting core: turning an
// expense amount into member shares, aggregating shares into net balances,
// and reducing balances to a short list of debts.
//
// Every function here is pure. Callers load a snapshot from storage and
// pass it in; nothing in this package does I/O or holds state across calls.
package calculator

import (
	"errors"
	"math"

	"github.com/mmynk/splitledger/internal/models"
)

// Tolerance is the largest difference treated as equal when comparing
// currency amounts.
const Tolerance = 0.01

// SplitType identifies a split strategy on the wire and in metrics.
type SplitType string

const (
	SplitTypeEqual      SplitType = "equal"
	SplitTypeCustom     SplitType = "custom"
	SplitTypePercentage SplitType = "percentage"
)

// MemberValue pairs a member with an amount or a percentage.
// Slices of MemberValue keep input order, which decides who absorbs the
// rounding residual.
type MemberValue struct {
	MemberID string
	Value    float64
}

// Strategy is one of Equal, Custom or Percentage.
type Strategy interface {
	Type() SplitType
	sealed()
}

// Equal divides the amount evenly among MemberIDs.
type Equal struct {
	MemberIDs []string
}

// Custom assigns an exact amount to each member.
type Custom struct {
	Amounts []MemberValue
}

// Percentage assigns a percentage (0-100) of the amount to each member.
type Percentage struct {
	Percentages []MemberValue
}

func (Equal) Type() SplitType      { return SplitTypeEqual }
func (Custom) Type() SplitType     { return SplitTypeCustom }
func (Percentage) Type() SplitType { return SplitTypePercentage }

func (Equal) sealed()      {}
func (Custom) sealed()     {}
func (Percentage) sealed() {}

// SplitResult is the uniform output of every split strategy.
type SplitResult struct {
	Splits  []models.ExpenseSplit
	Total   float64
	IsValid bool
	// Errors holds every violated rule as a *SplitError.
	Errors []error
}

// Messages returns the user-facing text of every error.
func (r SplitResult) Messages() []string {
	return messages(r.Errors)
}

// Err joins all errors into one, or returns nil for a valid result.
func (r SplitResult) Err() error {
	return errors.Join(r.Errors...)
}

// ComputeSplits dispatches to the calculation matching the strategy.
func ComputeSplits(expenseID string, amount float64, strategy Strategy) SplitResult {
	switch s := strategy.(type) {
	case Equal:
		return CalculateEqualSplit(amount, s.MemberIDs, expenseID)
	case Custom:
		return CalculateCustomSplit(amount, s.Amounts, expenseID)
	case Percentage:
		return CalculatePercentageSplit(amount, s.Percentages, expenseID)
	default:
		return invalidResult([]error{newSplitError(ErrUnknownStrategy, "", "a split strategy must be selected")})
	}
}

// CalculateEqualSplit divides amount evenly among memberIDs.
// Shares are rounded to cents and whatever is left over goes to the first
// member, so the splits always sum to amount. Each member may appear once.
func CalculateEqualSplit(amount float64, memberIDs []string, expenseID string) SplitResult {
	if len(memberIDs) == 0 {
		return invalidResult([]error{newSplitError(ErrEmptyMemberSet, "", "at least one member must be selected")})
	}

	var errs []error
	seen := make(map[string]bool, len(memberIDs))
	for _, memberID := range memberIDs {
		if seen[memberID] {
			errs = append(errs, duplicateMemberError(memberID))
		}
		seen[memberID] = true
	}
	if len(errs) > 0 {
		return invalidResult(errs)
	}

	share := roundToTwoDecimals(amount / float64(len(memberIDs)))
	splits := make([]models.ExpenseSplit, len(memberIDs))
	var total float64
	for i, memberID := range memberIDs {
		splits[i] = newSplit(expenseID, memberID, share)
		total += share
	}
	splits[0].Amount += amount - total

	return SplitResult{
		Splits:  splits,
		Total:   amount,
		IsValid: true,
	}
}

// CalculateCustomSplit uses the given amounts as-is.
// Negative amounts and repeated members are all reported and left out; the
// remaining amounts must add up to amount within Tolerance.
func CalculateCustomSplit(amount float64, customAmounts []MemberValue, expenseID string) SplitResult {
	var errs []error
	splits := make([]models.ExpenseSplit, 0, len(customAmounts))
	seen := make(map[string]bool, len(customAmounts))

	var total float64
	for _, c := range customAmounts {
		if seen[c.MemberID] {
			errs = append(errs, duplicateMemberError(c.MemberID))
			continue
		}
		seen[c.MemberID] = true
		if c.Value < 0 {
			errs = append(errs, newSplitError(ErrNegativeAmount, c.MemberID,
				"amount for member %s cannot be negative", c.MemberID))
			continue
		}
		splits = append(splits, newSplit(expenseID, c.MemberID, c.Value))
		total += c.Value
	}

	if math.Abs(amount-total) > Tolerance {
		errs = append(errs, newSplitError(ErrAmountMismatch, "",
			"custom amounts total (%.2f) does not match expense amount (%.2f)", total, amount))
	}

	return SplitResult{
		Splits:  splits,
		Total:   total,
		IsValid: len(errs) == 0,
		Errors:  errs,
	}
}

// CalculatePercentageSplit assigns amount*percentage/100 to each member.
// Percentages must each be within [0, 100] and sum to 100 within Tolerance,
// and each member may appear once. Computed amounts are rounded to cents and the residual goes to the first
// member. Each split records its percentage.
func CalculatePercentageSplit(amount float64, percentages []MemberValue, expenseID string) SplitResult {
	var errs []error

	seen := make(map[string]bool, len(percentages))

	var totalPercentage float64
	for _, p := range percentages {
		if seen[p.MemberID] {
			errs = append(errs, duplicateMemberError(p.MemberID))
			continue
		}
		seen[p.MemberID] = true
		if p.Value < 0 || p.Value > 100 {
			errs = append(errs, newSplitError(ErrPercentageOutOfRange, p.MemberID,
				"percentage for member %s must be between 0 and 100", p.MemberID))
			continue
		}
		totalPercentage += p.Value
	}

	if math.Abs(totalPercentage-100) > Tolerance {
		errs = append(errs, newSplitError(ErrPercentageSumMismatch, "",
			"percentages must sum to 100%% (current: %.2f%%)", totalPercentage))
	}

	if len(errs) > 0 {
		return invalidResult(errs)
	}

	splits := make([]models.ExpenseSplit, len(percentages))
	var total float64
	for i, p := range percentages {
		share := roundToTwoDecimals(amount * p.Value / 100)
		pct := p.Value
		splits[i] = newSplit(expenseID, p.MemberID, share)
		splits[i].Percentage = &pct
		total += share
	}
	splits[0].Amount += amount - total

	return SplitResult{
		Splits:  splits,
		Total:   amount,
		IsValid: true,
	}
}

func newSplit(expenseID, memberID string, amount float64) models.ExpenseSplit {
	return models.ExpenseSplit{
		ID:        expenseID + "-" + memberID,
		ExpenseID: expenseID,
		MemberID:  memberID,
		Amount:    amount,
	}
}

func invalidResult(errs []error) SplitResult {
	return SplitResult{
		Splits:  []models.ExpenseSplit{},
		IsValid: false,
		Errors:  errs,
	}
}

// roundToTwoDecimals rounds a float to 2 decimal places
func roundToTwoDecimals(value float64) float64 {
	return math.Round(value*100) / 100
}
