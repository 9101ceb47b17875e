package model

import "time"

// Vehicle is a support vehicle. A crew assigned to one booking always shares a vehicle.
type Vehicle struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`

	// Associations
	Workers []Worker `gorm:"foreignKey:VehicleID" json:"workers,omitempty"`
}
