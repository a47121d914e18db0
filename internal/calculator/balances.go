package calculator

import "github.com/mmynk/splitledger/internal/models"

// Balance is one member's net position within a group.
type Balance struct {
	MemberID string
	GroupID  string
	// TotalOwed is positive when the member owes the group and negative
	// when the member is owed.
	TotalOwed float64
	// Expenses are the group expenses this member paid.
	Expenses []models.Expense
}

// Ledger is an immutable snapshot of one group's members, expenses and
// splits. Build one per computation; it is safe for concurrent reads.
type Ledger struct {
	groupID         string
	members         []models.Member
	memberSet       map[string]bool
	expenses        []models.Expense
	splitsByExpense map[string][]models.ExpenseSplit
}

// NewLedger indexes a snapshot. Expenses outside groupID and splits for
// expenses outside the group are dropped.
func NewLedger(groupID string, members []models.Member, expenses []models.Expense, splits []models.ExpenseSplit) *Ledger {
	l := &Ledger{
		groupID:         groupID,
		memberSet:       make(map[string]bool, len(members)),
		splitsByExpense: make(map[string][]models.ExpenseSplit),
	}

	for _, m := range members {
		if l.memberSet[m.ID] {
			continue
		}
		l.memberSet[m.ID] = true
		l.members = append(l.members, m)
	}

	inGroup := make(map[string]bool, len(expenses))
	for _, e := range expenses {
		if e.GroupID != groupID {
			continue
		}
		inGroup[e.ID] = true
		l.expenses = append(l.expenses, e)
	}

	for _, s := range splits {
		if inGroup[s.ExpenseID] {
			l.splitsByExpense[s.ExpenseID] = append(l.splitsByExpense[s.ExpenseID], s)
		}
	}

	return l
}

// GroupID returns the group this ledger covers.
func (l *Ledger) GroupID() string {
	return l.groupID
}

// Members returns the member set in input order, without duplicates.
func (l *Ledger) Members() []models.Member {
	return l.members
}

// MemberBalance computes the net balance of one member.
//
// Algorithm, for every expense whose payer is a current member:
//   - the payer is credited the full sum of the expense's splits, their own
//     share included (totalOwed -= sum)
//   - every member with a split is debited that share (totalOwed += share)
//
// A payer with a share on their own expense therefore nets out to what the
// others consumed. Splits of members outside the member set are ignored on
// both sides, so balances across the group always sum to zero.
func (l *Ledger) MemberBalance(memberID string) Balance {
	balance := Balance{
		MemberID: memberID,
		GroupID:  l.groupID,
		Expenses: []models.Expense{},
	}
	if !l.memberSet[memberID] {
		return balance
	}

	for _, e := range l.expenses {
		if !l.memberSet[e.PaidBy] {
			continue
		}

		if e.PaidBy == memberID {
			balance.TotalOwed -= l.creditFor(e.ID)
			balance.Expenses = append(balance.Expenses, e)
		}

		for _, s := range l.splitsByExpense[e.ID] {
			if s.MemberID == memberID {
				balance.TotalOwed += s.Amount
			}
		}
	}

	return balance
}

// Balances computes every member's balance, in member order.
func (l *Ledger) Balances() []Balance {
	balances := make([]Balance, len(l.members))
	for i, m := range l.members {
		balances[i] = l.MemberBalance(m.ID)
	}
	return balances
}

// Splits returns the splits recorded for one expense of the group.
func (l *Ledger) Splits(expenseID string) []models.ExpenseSplit {
	return l.splitsByExpense[expenseID]
}

// Expenses returns the group's expenses in input order.
func (l *Ledger) Expenses() []models.Expense {
	return l.expenses
}

// creditFor sums the splits of an expense that belong to current members.
func (l *Ledger) creditFor(expenseID string) float64 {
	var sum float64
	for _, s := range l.splitsByExpense[expenseID] {
		if l.memberSet[s.MemberID] {
			sum += s.Amount
		}
	}
	return sum
}

// ApplySettlements offsets balances by recorded settlements: the paying
// member's balance drops by the amount and the receiving member's rises.
// The input slice is not modified. Settlements naming members absent from
// balances only affect the side that is present.
func ApplySettlements(balances []Balance, settlements []models.Settlement) []Balance {
	adjusted := make([]Balance, len(balances))
	copy(adjusted, balances)

	index := make(map[string]int, len(adjusted))
	for i, b := range adjusted {
		index[b.MemberID] = i
	}

	for _, s := range settlements {
		if i, ok := index[s.FromMemberID]; ok {
			adjusted[i].TotalOwed -= s.Amount
		}
		if i, ok := index[s.ToMemberID]; ok {
			adjusted[i].TotalOwed += s.Amount
		}
	}

	return adjusted
}
