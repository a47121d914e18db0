package calculator

import (
	"math"
	"sort"

	"github.com/mmynk/splitledger/internal/models"
)

// UnknownMemberName is shown for members missing from the name directory.
const UnknownMemberName = "Unknown"

// Debt is a simplified directed edge: From owes To the Amount.
type Debt struct {
	FromMemberID   string
	FromMemberName string
	ToMemberID     string
	ToMemberName   string
	Amount         float64
}

// party is a creditor or debtor with the amount still outstanding, in cents.
type party struct {
	memberID string
	cents    int64
}

// MemberNames builds the id -> name directory used by SimplifyDebts.
func MemberNames(members []models.Member) map[string]string {
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}
	return names
}

// SimplifyDebts reduces net balances to a short list of who pays whom.
//
// Greedy matching: creditors (negative balance) and debtors (positive
// balance) are each sorted largest first, ties broken by member ID, and the
// largest of each side settle min(creditor, debtor). Edges of a cent or less
// are dropped; a side advances once its remainder falls under a cent.
// Matching runs on whole cents so repeated subtraction cannot drift.
// Every step retires at least one side, so n members with a non-zero
// balance produce at most n-1 edges.
func SimplifyDebts(balances []Balance, names map[string]string) []Debt {
	var creditors, debtors []party
	for _, b := range balances {
		cents := toCents(b.TotalOwed)
		if cents < 0 {
			creditors = append(creditors, party{memberID: b.MemberID, cents: -cents})
		} else if cents > 0 {
			debtors = append(debtors, party{memberID: b.MemberID, cents: cents})
		}
	}

	sortParties(creditors)
	sortParties(debtors)

	debts := []Debt{}
	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		creditor := &creditors[i]
		debtor := &debtors[j]

		cents := min(creditor.cents, debtor.cents)
		if cents > toleranceCents {
			debts = append(debts, Debt{
				FromMemberID:   debtor.memberID,
				FromMemberName: nameOf(names, debtor.memberID),
				ToMemberID:     creditor.memberID,
				ToMemberName:   nameOf(names, creditor.memberID),
				Amount:         float64(cents) / 100,
			})
		}

		creditor.cents -= cents
		debtor.cents -= cents

		if creditor.cents < toleranceCents {
			i++
		}
		if debtor.cents < toleranceCents {
			j++
		}
	}

	return debts
}

func sortParties(parties []party) {
	sort.SliceStable(parties, func(a, b int) bool {
		if parties[a].cents != parties[b].cents {
			return parties[a].cents > parties[b].cents
		}
		return parties[a].memberID < parties[b].memberID
	})
}

const toleranceCents = 1

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func nameOf(names map[string]string, memberID string) string {
	if name, ok := names[memberID]; ok && name != "" {
		return name
	}
	return UnknownMemberName
}
