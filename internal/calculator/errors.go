package calculator

import (
	"errors"
	"fmt"
)

// Kinds of validation failure. A *SplitError unwraps to exactly one of these,
// so callers can test with errors.Is.
var (
	ErrEmptyMemberSet        = errors.New("empty member set")
	ErrDuplicateMember       = errors.New("duplicate member")
	ErrNegativeAmount        = errors.New("negative amount")
	ErrAmountMismatch        = errors.New("amount mismatch")
	ErrPercentageOutOfRange  = errors.New("percentage out of range")
	ErrPercentageSumMismatch = errors.New("percentage sum mismatch")
	ErrUnknownStrategy       = errors.New("unknown split strategy")
)

// SplitError is one violated rule, optionally tied to a member.
type SplitError struct {
	Kind     error
	MemberID string
	msg      string
}

func newSplitError(kind error, memberID, format string, args ...any) *SplitError {
	return &SplitError{Kind: kind, MemberID: memberID, msg: fmt.Sprintf(format, args...)}
}

// Error returns the user-facing message.
func (e *SplitError) Error() string {
	return e.msg
}

// Unwrap returns the kind sentinel.
func (e *SplitError) Unwrap() error {
	return e.Kind
}

func duplicateMemberError(memberID string) *SplitError {
	return newSplitError(ErrDuplicateMember, memberID, "member %s appears more than once", memberID)
}

// messages flattens errors into their user-facing strings.
func messages(errs []error) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}
