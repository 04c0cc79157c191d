// Package policy decides who may perform which catalog operation. Every
// operation is listed explicitly in the rule table; an operation missing
// from the table is denied rather than falling through to some default.
package policy

import (
	"errors"

	"locallibrary/internal/model"
)

type Operation string

const (
	OpListBooks         Operation = "books.list"
	OpViewBook          Operation = "books.view"
	OpAddBook           Operation = "books.add"
	OpChangeBook        Operation = "books.change"
	OpDeleteBook        Operation = "books.delete"
	OpListAuthors       Operation = "authors.list"
	OpViewAuthor        Operation = "authors.view"
	OpAddAuthor         Operation = "authors.add"
	OpChangeAuthor      Operation = "authors.change"
	OpDeleteAuthor      Operation = "authors.delete"
	OpViewTaxonomy      Operation = "taxonomy.view"
	OpAddGenre          Operation = "genres.add"
	OpChangeGenre       Operation = "genres.change"
	OpDeleteGenre       Operation = "genres.delete"
	OpAddLanguage       Operation = "languages.add"
	OpChangeLanguage    Operation = "languages.change"
	OpDeleteLanguage    Operation = "languages.delete"
	OpAddInstance       Operation = "instances.add"
	OpStaffEditInstance Operation = "instances.staff_edit"
	OpDeleteInstance    Operation = "instances.delete"
	OpSelfCheckout      Operation = "instances.self_checkout"
	OpViewInstance      Operation = "instances.view"
	OpViewSummary       Operation = "catalog.summary"
	OpViewAvailability  Operation = "catalog.availability"
	OpSearch            Operation = "catalog.search"
	OpViewMyLoans       Operation = "loans.view_own"
	OpViewAllLoans      Operation = "loans.view_all"
	OpRenewLoan         Operation = "loans.renew"
	OpSignUp            Operation = "accounts.signup"

	// API write operations on the catalog are coarser than their web
	// counterparts: staff only.
	OpAPIWriteAuthor Operation = "api.authors.write"
	OpAPIWriteBook   Operation = "api.books.write"
)

// Permission codes attached to users.
const (
	PermViewAllLoans   = "loans.view_all"
	PermRenewLoans     = "loans.renew"
	PermAddAuthors     = "authors.add"
	PermChangeAuthors  = "authors.change"
	PermDeleteAuthors  = "authors.delete"
	PermAddBooks       = "books.add"
	PermChangeBooks    = "books.change"
	PermDeleteBooks    = "books.delete"
	PermManageTaxonomy = "taxonomy.add"
	PermAddInstances   = "instances.add"
	PermEditInstances  = "instances.change"
)

// AllPermissions is the closed set of grantable codes, used for seeding.
var AllPermissions = []string{
	PermViewAllLoans, PermRenewLoans,
	PermAddAuthors, PermChangeAuthors, PermDeleteAuthors,
	PermAddBooks, PermChangeBooks, PermDeleteBooks,
	PermManageTaxonomy, PermAddInstances, PermEditInstances,
}

var (
	ErrAuthenticationRequired = errors.New("policy: authentication required")
	ErrPermissionDenied       = errors.New("policy: permission denied")
)

// Authorizer gates an operation for an actor. A nil actor is an anonymous
// caller.
type Authorizer interface {
	Authorize(actor *model.User, op Operation) error
}

type level int

const (
	levelAnonymous level = iota
	levelAuthenticated
	levelPermission
	levelStaff
)

type requirement struct {
	level      level
	permission string
}

// Table is the default Authorizer, a literal map from operation to minimum
// authorization.
type Table struct {
	rules map[Operation]requirement
}

func NewTable() *Table {
	return &Table{rules: map[Operation]requirement{
		OpListBooks:        {level: levelAnonymous},
		OpListAuthors:      {level: levelAnonymous},
		OpViewSummary:      {level: levelAnonymous},
		OpViewAvailability: {level: levelAnonymous},
		OpSearch:           {level: levelAnonymous},
		OpViewTaxonomy:     {level: levelAnonymous},
		OpSignUp:           {level: levelAnonymous},

		OpViewBook:     {level: levelAuthenticated},
		OpViewAuthor:   {level: levelAuthenticated},
		OpViewMyLoans:  {level: levelAuthenticated},
		OpSelfCheckout: {level: levelAuthenticated},
		OpViewInstance: {level: levelAuthenticated},

		OpViewAllLoans: {level: levelPermission, permission: PermViewAllLoans},
		OpRenewLoan:    {level: levelPermission, permission: PermRenewLoans},

		OpAddAuthor:    {level: levelPermission, permission: PermAddAuthors},
		OpChangeAuthor: {level: levelPermission, permission: PermChangeAuthors},
		OpDeleteAuthor: {level: levelPermission, permission: PermDeleteAuthors},

		OpAddBook:    {level: levelPermission, permission: PermAddBooks},
		OpChangeBook: {level: levelPermission, permission: PermChangeBooks},
		OpDeleteBook: {level: levelPermission, permission: PermDeleteBooks},

		OpAddGenre:       {level: levelPermission, permission: PermManageTaxonomy},
		OpChangeGenre:    {level: levelPermission, permission: PermManageTaxonomy},
		OpDeleteGenre:    {level: levelPermission, permission: PermManageTaxonomy},
		OpAddLanguage:    {level: levelPermission, permission: PermManageTaxonomy},
		OpChangeLanguage: {level: levelPermission, permission: PermManageTaxonomy},
		OpDeleteLanguage: {level: levelPermission, permission: PermManageTaxonomy},

		OpAddInstance:       {level: levelPermission, permission: PermAddInstances},
		OpStaffEditInstance: {level: levelPermission, permission: PermEditInstances},
		OpDeleteInstance:    {level: levelPermission, permission: PermEditInstances},

		OpAPIWriteAuthor: {level: levelStaff},
		OpAPIWriteBook:   {level: levelStaff},
	}}
}

func (t *Table) Authorize(actor *model.User, op Operation) error {
	rule, ok := t.rules[op]
	if !ok {
		return ErrPermissionDenied
	}

	if rule.level == levelAnonymous {
		return nil
	}
	if actor == nil {
		return ErrAuthenticationRequired
	}

	switch rule.level {
	case levelAuthenticated:
		return nil
	case levelStaff:
		if actor.IsStaff {
			return nil
		}
	case levelPermission:
		if actor.HasPermission(rule.permission) {
			return nil
		}
	}
	return ErrPermissionDenied
}
