package model

import "time"

// Occupancy records that one worker is committed to one booking. A worker is
// busy at T exactly when one of their occupancies references a booking covering T.
type Occupancy struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	BookingID int64     `gorm:"not null;uniqueIndex:idx_occupancy_booking_worker" json:"bookingId"`
	WorkerID  int64     `gorm:"not null;uniqueIndex:idx_occupancy_booking_worker;index" json:"workerId"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`

	// Associations
	Booking *Booking `gorm:"constraint:OnDelete:CASCADE" json:"booking,omitempty"`
	Worker  *Worker  `gorm:"constraint:OnDelete:CASCADE" json:"worker,omitempty"`
}
