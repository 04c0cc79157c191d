package lending

import (
	"time"

	"github.com/google/uuid"

	"locallibrary/internal/model"
)

// The copy state machine:
//
//	available --checkout--> on_loan
//	on_loan   --return----> available
//	any       --withdraw--> maintenance
//
// Checkout, Return and Withdraw mutate the instance in memory; persisting
// the change is the caller's job. Concurrent checkouts of one copy are
// arbitrated at the repository with a conditional update, these functions
// encode the legal transitions only.

// Checkout moves an available copy on loan to borrower. The due date is the
// proposed default; callers never pick it, which is what keeps a
// self-checkout from claiming arbitrary terms.
func Checkout(inst *model.BookInstance, borrower uuid.UUID, now time.Time) error {
	if inst.Status != model.StatusAvailable {
		return ErrNotAvailable
	}

	due := ProposedDueDate(now)
	b := borrower
	inst.Status = model.StatusOnLoan
	inst.BorrowerID = &b
	inst.DueBack = &due
	return nil
}

// Return puts a loaned copy back in circulation, clearing borrower and due
// date.
func Return(inst *model.BookInstance) error {
	if inst.Status != model.StatusOnLoan {
		return ErrNotOnLoan
	}
	inst.Status = model.StatusAvailable
	inst.BorrowerID = nil
	inst.DueBack = nil
	return nil
}

// Withdraw pulls a copy out of circulation from any state.
func Withdraw(inst *model.BookInstance) {
	inst.Status = model.StatusMaintenance
	inst.BorrowerID = nil
	inst.DueBack = nil
}

// Renew extends the due date of a loaned copy. Renewal is only defined for
// copies on loan; status is never touched.
func Renew(inst *model.BookInstance, now, newDue time.Time) error {
	if inst.Status != model.StatusOnLoan {
		return ErrNotOnLoan
	}
	if err := CheckRenewalDate(now, newDue); err != nil {
		return err
	}
	d := dateOnly(newDue)
	inst.DueBack = &d
	return nil
}
