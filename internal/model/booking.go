package model

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var (
	// AllowedDurations are the job lengths, in hours, a booking may have.
	AllowedDurations = []int{2, 4}

	ErrInvalidDuration = errors.New("duration must be 2 or 4 hours")
	ErrInvalidCrewSize = errors.New("required workers must be between 1 and 3")
)

const (
	MinCrewSize = 1
	MaxCrewSize = 3
)

// Booking is a time-bounded service job. EndTime is always StartTime + Duration.
type Booking struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	StartTime       time.Time `gorm:"not null;index" json:"startTime"`
	EndTime         time.Time `gorm:"not null;index" json:"endTime"`
	Duration        int       `gorm:"not null" json:"duration"`
	RequiredWorkers int       `gorm:"not null" json:"requiredWorkers"`
	CreatedAt       time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"not null" json:"updatedAt"`

	// Associations
	Occupancies []Occupancy `gorm:"foreignKey:BookingID" json:"-"`
}

// ValidDuration reports whether hours is an allowed job length.
func ValidDuration(hours int) bool {
	for _, d := range AllowedDurations {
		if d == hours {
			return true
		}
	}
	return false
}

// ValidCrewSize reports whether n workers may be requested.
func ValidCrewSize(n int) bool {
	return n >= MinCrewSize && n <= MaxCrewSize
}

// BeforeSave keeps EndTime derived from StartTime and Duration on every write path.
func (b *Booking) BeforeSave(tx *gorm.DB) error {
	if !ValidDuration(b.Duration) {
		return fmt.Errorf("booking %d: %w", b.ID, ErrInvalidDuration)
	}
	if !ValidCrewSize(b.RequiredWorkers) {
		return fmt.Errorf("booking %d: %w", b.ID, ErrInvalidCrewSize)
	}
	b.StartTime = b.StartTime.UTC().Truncate(time.Minute)
	b.EndTime = b.StartTime.Add(time.Duration(b.Duration) * time.Hour)
	return nil
}
