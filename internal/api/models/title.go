package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrFutureYear marks a release year beyond the current one.
var ErrFutureYear = errors.New("year cannot be greater than the current year")

type Title struct {
	ID          int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string  `json:"name" gorm:"size:200;index;not null"`
	Year        *int    `json:"year,omitempty"`
	Description *string `json:"description,omitempty"`
	CategoryID  *int64  `json:"-" gorm:"index"`

	// Associations
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	Genres   []Genre   `json:"genres,omitempty" gorm:"many2many:title_genres;constraint:OnDelete:CASCADE;"`

	// Rating is annotated at query time as the mean of review scores,
	// NULL while the title has no reviews. It is not a column.
	Rating *float64 `json:"rating" gorm:"->;-:migration"`
}

func (Title) TableName() string {
	return "titles"
}

// ValidateYear rejects release years later than the current year.
func ValidateYear(year int) error {
	if current := time.Now().Year(); year > current {
		return fmt.Errorf("%w: got %d, current year is %d", ErrFutureYear, year, current)
	}
	return nil
}
