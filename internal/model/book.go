package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Book is a catalog title, not a physical copy; copies are BookInstances.
type Book struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title      string    `gorm:"not null;index"`
	AuthorID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Author     Author
	Summary    string
	ISBN       string    `gorm:"column:isbn"`
	LanguageID uuid.UUID `gorm:"type:uuid;not null"`
	Language   Language
	Genres     []Genre `gorm:"many2many:book_genres"`
	CoverURL   string
	Instances  []BookInstance `gorm:"foreignKey:BookID"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (b *Book) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}
