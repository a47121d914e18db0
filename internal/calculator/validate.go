package calculator

import (
	"math"

	"github.com/mmynk/splitledger/internal/models"
)

// ValidationResult reports whether a split set is consistent with its expense.
type ValidationResult struct {
	Valid  bool
	Errors []error
}

// Messages returns the user-facing text of every error.
func (r ValidationResult) Messages() []string {
	return messages(r.Errors)
}

// ValidateSplits re-checks an arbitrary split set against an expense amount.
// It is used when splits are created and whenever they are read back from
// storage, where hand-edited or corrupted rows may show up.
func ValidateSplits(amount float64, splits []models.ExpenseSplit) ValidationResult {
	var errs []error

	var total float64
	for _, s := range splits {
		total += s.Amount
	}
	if math.Abs(total-amount) > Tolerance {
		errs = append(errs, newSplitError(ErrAmountMismatch, "",
			"splits total (%.2f) does not match expense amount (%.2f)", total, amount))
	}

	seen := make(map[string]bool, len(splits))
	for _, s := range splits {
		if seen[s.MemberID] {
			errs = append(errs, duplicateMemberError(s.MemberID))
		}
		seen[s.MemberID] = true
		if s.Amount < 0 {
			errs = append(errs, newSplitError(ErrNegativeAmount, s.MemberID,
				"split amount for member %s cannot be negative", s.MemberID))
		}
		if s.Percentage != nil && (*s.Percentage < 0 || *s.Percentage > 100) {
			errs = append(errs, newSplitError(ErrPercentageOutOfRange, s.MemberID,
				"split percentage for member %s must be between 0 and 100", s.MemberID))
		}
	}

	return ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}
