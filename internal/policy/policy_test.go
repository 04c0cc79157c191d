package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"locallibrary/internal/model"
)

func userWith(codes ...string) *model.User {
	perms := make([]model.Permission, 0, len(codes))
	for _, c := range codes {
		perms = append(perms, model.Permission{Code: c})
	}
	return &model.User{Username: "reader", Permissions: perms}
}

func TestTable_AnonymousOperations(t *testing.T) {
	table := NewTable()

	for _, op := range []Operation{
		OpListBooks, OpListAuthors, OpViewSummary, OpViewAvailability, OpSearch, OpSignUp,
	} {
		assert.NoError(t, table.Authorize(nil, op), "op %s", op)
	}
}

func TestTable_AuthenticatedOperations(t *testing.T) {
	table := NewTable()

	for _, op := range []Operation{OpViewBook, OpViewAuthor, OpViewMyLoans, OpSelfCheckout} {
		assert.ErrorIs(t, table.Authorize(nil, op), ErrAuthenticationRequired, "op %s", op)
		assert.NoError(t, table.Authorize(userWith(), op), "op %s", op)
	}
}

func TestTable_PermissionOperations(t *testing.T) {
	table := NewTable()

	tests := []struct {
		op   Operation
		perm string
	}{
		{OpViewAllLoans, PermViewAllLoans},
		{OpRenewLoan, PermRenewLoans},
		{OpAddAuthor, PermAddAuthors},
		{OpChangeAuthor, PermChangeAuthors},
		{OpDeleteAuthor, PermDeleteAuthors},
		{OpAddBook, PermAddBooks},
		{OpChangeBook, PermChangeBooks},
		{OpDeleteBook, PermDeleteBooks},
		{OpAddGenre, PermManageTaxonomy},
		{OpAddLanguage, PermManageTaxonomy},
		{OpAddInstance, PermAddInstances},
		{OpStaffEditInstance, PermEditInstances},
	}

	for _, tt := range tests {
		assert.ErrorIs(t, table.Authorize(userWith(), tt.op), ErrPermissionDenied, "op %s without perm", tt.op)
		assert.NoError(t, table.Authorize(userWith(tt.perm), tt.op), "op %s with perm", tt.op)
	}
}

func TestTable_PermissionsAreGranular(t *testing.T) {
	table := NewTable()
	u := userWith(PermAddAuthors)

	assert.NoError(t, table.Authorize(u, OpAddAuthor))
	assert.ErrorIs(t, table.Authorize(u, OpChangeAuthor), ErrPermissionDenied)
	assert.ErrorIs(t, table.Authorize(u, OpDeleteAuthor), ErrPermissionDenied)
}

func TestTable_StaffOperations(t *testing.T) {
	table := NewTable()
	staff := &model.User{Username: "librarian", IsStaff: true}

	for _, op := range []Operation{OpAPIWriteAuthor, OpAPIWriteBook} {
		assert.ErrorIs(t, table.Authorize(userWith(PermAddAuthors, PermAddBooks), op), ErrPermissionDenied)
		assert.NoError(t, table.Authorize(staff, op))
	}
}

func TestTable_StaffHoldEveryPermission(t *testing.T) {
	table := NewTable()
	staff := &model.User{IsStaff: true}

	assert.NoError(t, table.Authorize(staff, OpRenewLoan))
	assert.NoError(t, table.Authorize(staff, OpDeleteBook))
}

func TestTable_UnknownOperationDenied(t *testing.T) {
	table := NewTable()
	assert.ErrorIs(t, table.Authorize(userWith(), Operation("nonsense")), ErrPermissionDenied)
}
