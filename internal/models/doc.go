// Package models defines the core domain models for splitledger.
//
// # Entities
//
//   - Group: a set of members who share expenses
//   - Member: a participant inside one group
//   - Expense: an amount paid by one member on behalf of the group
//   - ExpenseSplit: one member's share of an expense
//   - Settlement: an out-of-band payment between two members
//
// Balances and debts are not stored. They are projections computed by the
// calculator package from a snapshot of these entities.
//
// # Conventions
//
//  1. Relationships are expressed as ID strings, never pointers.
//  2. Timestamps are Unix seconds.
//  3. Amounts are decimal currency units held in float64; anything derived
//     is rounded to two decimal places and compared with a 0.01 tolerance.
package models
