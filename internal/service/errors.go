// Package service implements the group, expense, settlement and balance
// operations on top of a storage.Store.
package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/splitledger/internal/models"
)

// ErrInvalidInput is wrapped by every error caused by a bad request rather
// than a storage failure.
var ErrInvalidInput = errors.New("invalid input")

func invalid(messages ...string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(messages, "; "))
}

// memberSet returns the IDs of members.
func memberSet(members []models.Member) map[string]bool {
	set := make(map[string]bool, len(members))
	for _, m := range members {
		set[m.ID] = true
	}
	return set
}
