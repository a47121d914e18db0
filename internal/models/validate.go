package models

import (
	"math"
	"regexp"
	"strings"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 500
	maxExpenseAmount     = 1_000_000
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate reports every problem with the group. An empty slice means valid.
// The ID is not checked since stores assign it on create.
func (g *Group) Validate() []string {
	var errs []string
	if strings.TrimSpace(g.Name) == "" {
		errs = append(errs, "group name is required")
	}
	if len(g.Name) > maxNameLength {
		errs = append(errs, "group name must be 100 characters or less")
	}
	if len(g.Description) > maxDescriptionLength {
		errs = append(errs, "group description must be 500 characters or less")
	}
	return errs
}

// Validate reports every problem with the member.
func (m *Member) Validate() []string {
	var errs []string
	if strings.TrimSpace(m.GroupID) == "" {
		errs = append(errs, "member group_id is required")
	}
	if strings.TrimSpace(m.Name) == "" {
		errs = append(errs, "member name is required")
	}
	if len(m.Name) > maxNameLength {
		errs = append(errs, "member name must be 100 characters or less")
	}
	if m.Email != "" && !emailPattern.MatchString(m.Email) {
		errs = append(errs, "member email must be a valid email address")
	}
	return errs
}

// Validate reports every problem with the expense.
func (e *Expense) Validate() []string {
	var errs []string
	if strings.TrimSpace(e.GroupID) == "" {
		errs = append(errs, "expense group_id is required")
	}
	if strings.TrimSpace(e.PaidBy) == "" {
		errs = append(errs, "expense paid_by is required")
	}
	if !(e.Amount > 0) || math.IsInf(e.Amount, 0) {
		errs = append(errs, "expense amount must be a positive number")
	} else if e.Amount > maxExpenseAmount {
		errs = append(errs, "expense amount must be less than or equal to 1,000,000")
	}
	if len(e.Description) > maxDescriptionLength {
		errs = append(errs, "expense description must be 500 characters or less")
	}
	if strings.TrimSpace(e.Category) == "" {
		errs = append(errs, "expense category is required")
	}
	return errs
}
