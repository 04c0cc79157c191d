package lending

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locallibrary/internal/model"
)

func TestCheckout(t *testing.T) {
	borrower := uuid.New()

	inst := &model.BookInstance{ID: uuid.New(), Status: model.StatusAvailable}
	require.NoError(t, Checkout(inst, borrower, now))

	assert.Equal(t, model.StatusOnLoan, inst.Status)
	require.NotNil(t, inst.BorrowerID)
	assert.Equal(t, borrower, *inst.BorrowerID)
	require.NotNil(t, inst.DueBack)
	assert.Equal(t, ProposedDueDate(now), *inst.DueBack)
}

func TestCheckout_RejectsNonAvailable(t *testing.T) {
	for _, status := range []model.Status{
		model.StatusOnLoan, model.StatusMaintenance, model.StatusReserved,
	} {
		inst := &model.BookInstance{Status: status}
		assert.ErrorIs(t, Checkout(inst, uuid.New(), now), ErrNotAvailable, "status %s", status)
	}
}

func TestReturn(t *testing.T) {
	borrower := uuid.New()
	due := date(2026, time.March, 31)
	inst := &model.BookInstance{
		Status:     model.StatusOnLoan,
		BorrowerID: &borrower,
		DueBack:    &due,
	}

	require.NoError(t, Return(inst))
	assert.Equal(t, model.StatusAvailable, inst.Status)
	assert.Nil(t, inst.BorrowerID)
	assert.Nil(t, inst.DueBack)
}

func TestReturn_RejectsNonLoaned(t *testing.T) {
	inst := &model.BookInstance{Status: model.StatusAvailable}
	assert.ErrorIs(t, Return(inst), ErrNotOnLoan)
}

func TestWithdraw_ClearsLoanState(t *testing.T) {
	borrower := uuid.New()
	due := date(2026, time.March, 31)
	inst := &model.BookInstance{
		Status:     model.StatusOnLoan,
		BorrowerID: &borrower,
		DueBack:    &due,
	}

	Withdraw(inst)
	assert.Equal(t, model.StatusMaintenance, inst.Status)
	assert.Nil(t, inst.BorrowerID)
	assert.Nil(t, inst.DueBack)
}

func TestRenew(t *testing.T) {
	borrower := uuid.New()
	oldDue := date(2026, time.March, 12)
	inst := &model.BookInstance{
		Status:     model.StatusOnLoan,
		BorrowerID: &borrower,
		DueBack:    &oldDue,
	}

	newDue := date(2026, time.March, 31)
	require.NoError(t, Renew(inst, now, newDue))

	require.NotNil(t, inst.DueBack)
	assert.Equal(t, newDue, *inst.DueBack)
	assert.Equal(t, model.StatusOnLoan, inst.Status, "renewal never changes status")
	assert.Equal(t, borrower, *inst.BorrowerID)
}

func TestRenew_RejectsBadDatesAndStates(t *testing.T) {
	borrower := uuid.New()
	oldDue := date(2026, time.March, 12)

	onLoan := func() *model.BookInstance {
		d := oldDue
		return &model.BookInstance{Status: model.StatusOnLoan, BorrowerID: &borrower, DueBack: &d}
	}

	inst := onLoan()
	assert.ErrorIs(t, Renew(inst, now, date(2026, time.March, 1)), ErrRenewalInPast)
	assert.Equal(t, oldDue, *inst.DueBack, "failed renewal must not touch due date")

	inst = onLoan()
	assert.ErrorIs(t, Renew(inst, now, date(2026, time.June, 1)), ErrRenewalTooFar)

	maint := &model.BookInstance{Status: model.StatusMaintenance}
	assert.ErrorIs(t, Renew(maint, now, date(2026, time.March, 31)), ErrNotOnLoan)
}
