package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status is the loan state of a single copy. Codes are stored, labels are
// what API consumers see.
type Status string

const (
	StatusMaintenance Status = "m"
	StatusOnLoan      Status = "o"
	StatusAvailable   Status = "a"
	StatusReserved    Status = "r"
)

var statusLabels = map[Status]string{
	StatusMaintenance: "Maintenance",
	StatusOnLoan:      "On loan",
	StatusAvailable:   "Available",
	StatusReserved:    "Reserved",
}

func (s Status) Label() string {
	return statusLabels[s]
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// ParseStatus accepts either the stored code or its label.
func ParseStatus(v string) (Status, error) {
	if s := Status(v); s.Valid() {
		return s, nil
	}
	for code, label := range statusLabels {
		if label == v {
			return code, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", v)
}

// BookInstance is one physical, lendable copy of a Book. Its id is exposed
// externally, so it is an opaque UUID rather than a sequential key.
type BookInstance struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Book       Book
	Imprint    string     `gorm:"not null"`
	DueBack    *time.Time `gorm:"index"`
	BorrowerID *uuid.UUID `gorm:"type:uuid;index"`
	Borrower   *User
	Status     Status `gorm:"type:varchar(1);not null;default:m"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (i *BookInstance) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Status == "" {
		i.Status = StatusMaintenance
	}
	return
}
