package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"crew-booking-backend/internal/parse"
)

// Worker is a member of the shared field crew pool.
type Worker struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:128;not null" json:"name"`
	WorkingHours   string    `gorm:"size:16;not null" json:"workingHours"`
	WorksOnRestDay bool      `gorm:"not null;default:false" json:"worksOnRestDay"`
	VehicleID      *int64    `gorm:"index" json:"vehicleId"`
	ExternalRef    *string   `gorm:"uniqueIndex;size:64" json:"externalRef,omitempty"` // Upstream roster ID
	CreatedAt      time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"not null" json:"updatedAt"`

	// Associations
	Vehicle *Vehicle `gorm:"constraint:OnDelete:SET NULL" json:"vehicle,omitempty"`
}

// BeforeSave defaults the working hours. Format validation happens at the
// directory boundary; the resolver treats a malformed value as a data integrity error.
func (w *Worker) BeforeSave(tx *gorm.DB) error {
	if w.WorkingHours == "" {
		w.WorkingHours = parse.DefaultWorkingHours
	}
	return nil
}

// Hours parses the stored working hours.
func (w *Worker) Hours() (parse.WorkingHours, error) {
	wh, err := parse.ParseWorkingHours(w.WorkingHours)
	if err != nil {
		return parse.WorkingHours{}, fmt.Errorf("worker %d: %w", w.ID, err)
	}
	return wh, nil
}

// SharesVehicle reports whether both workers ride the same vehicle.
// A worker without a vehicle shares with nobody.
func (w *Worker) SharesVehicle(other *Worker) bool {
	if w.VehicleID == nil || other.VehicleID == nil {
		return false
	}
	return *w.VehicleID == *other.VehicleID
}
