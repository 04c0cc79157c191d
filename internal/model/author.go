package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Author struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	FirstName   string    `gorm:"not null;index"`
	LastName    string    `gorm:"not null;index"`
	DateOfBirth *time.Time
	DateOfDeath *time.Time
	Books       []Book `gorm:"foreignKey:AuthorID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (a *Author) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

// FullName renders the catalog display form, "Last, First".
func (a *Author) FullName() string {
	return a.LastName + ", " + a.FirstName
}
