// Package lending holds the loan-domain rules: renewal date windows, author
// lifespan checks and the copy state machine. The rules are pure functions
// over model values so they can be exercised without a database.
package lending

import (
	"errors"
	"time"
)

const (
	// DefaultLoanPeriod is the proposed loan extension offered to
	// librarians when presenting a renewal.
	DefaultLoanPeriod = 21 * 24 * time.Hour

	// MaxRenewalAhead is the hard ceiling on how far in the future a due
	// date may be pushed.
	MaxRenewalAhead = 28 * 24 * time.Hour
)

var (
	ErrRenewalInPast    = errors.New("lending: renewal date in the past")
	ErrRenewalTooFar    = errors.New("lending: renewal date more than 4 weeks ahead")
	ErrDeathBeforeBirth = errors.New("lending: date of death earlier than date of birth")
	ErrNotOnLoan        = errors.New("lending: copy is not on loan")
	ErrNotAvailable     = errors.New("lending: copy is not available")
)

// dateOnly truncates a timestamp to its calendar date in UTC so that all
// window comparisons operate on whole days.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ProposedDueDate is the default renewal date presented for input:
// today plus three weeks.
func ProposedDueDate(now time.Time) time.Time {
	return dateOnly(now.Add(DefaultLoanPeriod))
}

// CheckRenewalDate validates a requested due date against the renewal
// window. Dates strictly before today fail with ErrRenewalInPast; dates more
// than four weeks out fail with ErrRenewalTooFar. Both bounds are inclusive:
// today and today+28d are accepted.
func CheckRenewalDate(now, renewal time.Time) error {
	today := dateOnly(now)
	d := dateOnly(renewal)

	if d.Before(today) {
		return ErrRenewalInPast
	}
	if d.After(today.Add(MaxRenewalAhead)) {
		return ErrRenewalTooFar
	}
	return nil
}

// CheckDueBack guards staff edits of a copy's due date. Unlike a renewal, a
// past date is allowed (an overdue copy legitimately has one); only the
// four-week ceiling applies.
func CheckDueBack(now, due time.Time) error {
	if dateOnly(due).After(dateOnly(now).Add(MaxRenewalAhead)) {
		return ErrRenewalTooFar
	}
	return nil
}

// CheckLifespan validates an author's dates. The rule only fires when both
// are present.
func CheckLifespan(birth, death *time.Time) error {
	if birth == nil || death == nil {
		return nil
	}
	if dateOnly(*death).Before(dateOnly(*birth)) {
		return ErrDeathBeforeBirth
	}
	return nil
}
